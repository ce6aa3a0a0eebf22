// Package metadata reads the project manifest that carries the API version.
package metadata

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var ErrMissingVersion = errors.New("version field is missing or empty")

// Project is the subset of package.json (or an equivalent YAML manifest)
// the generator needs.
type Project struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Description string `koanf:"description"`
}

// Error reports unreadable or incomplete project metadata.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("reading project metadata %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Read loads a JSON or YAML manifest. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func Read(path string) (*Project, error) {
	var parser koanf.Parser = json.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}

	k := koanf.New("::")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var p Project
	if err := k.Unmarshal("", &p); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	p.Version = strings.TrimSpace(p.Version)
	if p.Version == "" {
		return nil, &Error{Path: path, Err: ErrMissingVersion}
	}

	return &p, nil
}
