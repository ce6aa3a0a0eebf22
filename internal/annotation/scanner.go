package annotation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v4"
)

// Extractor turns annotated source files into an OpenAPI document built on
// top of base.
type Extractor interface {
	Extract(globs []string, base *yaml.Node) (*Document, error)
}

// Scanner extracts @openapi and @swagger comment blocks from source files.
// Files ending in .yaml or .yml are merged whole. An alias may refer to an
// anchor defined in any other fragment of the scanned files.
//
// With FailOnErrors set, an empty glob match or any malformed annotation
// aborts extraction; every malformed annotation is reported in the returned
// error. Otherwise the problems are recorded as warnings and the offending
// fragments are skipped.
type Scanner struct {
	FailOnErrors bool
	Logger       *zap.SugaredLogger
}

// source is a matched file and the fragments read from it.
type source struct {
	file  string
	err   error
	units []*unit
}

type unit struct {
	frag fragment
	node *yaml.Node
	err  error
}

func (s *Scanner) Extract(globs []string, base *yaml.Node) (*Document, error) {
	doc, err := NewDocument(base)
	if err != nil {
		return nil, err
	}

	files, err := expandGlobs(globs)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		err := &Error{Err: fmt.Errorf("%w: %s", ErrNoSources, strings.Join(globs, ", "))}
		if s.FailOnErrors {
			return nil, err
		}
		doc.warn(err)
	}

	doc.prepare()

	sources := make([]*source, 0, len(files))
	anchors := make(anchorSet)
	for _, file := range files {
		src := readSource(file)
		for _, u := range src.units {
			u.node, u.err = parseFragment(u.frag.body)
			if u.err == nil {
				anchors.collect(u.node, u.frag.body)
			}
		}
		sources = append(sources, src)
	}

	var errs []error
	for _, src := range sources {
		if src.err != nil {
			errs = append(errs, &Error{File: src.file, Err: src.err})
			continue
		}

		failed := 0
		for _, u := range src.units {
			if u.err != nil {
				u.node, u.err = anchors.resolve(u.frag.body, u.err)
			}
			if u.err != nil {
				errs = append(errs, &Error{File: src.file, Line: u.frag.line, Err: u.err})
				failed++
				continue
			}
			if u.node != nil {
				doc.Merge(u.node)
			}
		}
		s.logger().Debugw("scanned source file", "file", src.file, "fragments", len(src.units), "errors", failed)
		doc.Sources = append(doc.Sources, src.file)
	}

	if len(errs) > 0 {
		if s.FailOnErrors {
			return nil, errors.Join(errs...)
		}
		for _, err := range errs {
			doc.warn(err)
		}
	}

	doc.finalize()
	return doc, nil
}

func (s *Scanner) logger() *zap.SugaredLogger {
	if s.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return s.Logger
}

// expandGlobs resolves patterns in order, dropping directories and duplicates.
func expandGlobs(globs []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			clean := filepath.Clean(m)
			if seen[clean] {
				continue
			}
			info, err := os.Stat(clean)
			if err != nil || info.IsDir() {
				continue
			}
			seen[clean] = true
			files = append(files, clean)
		}
	}

	return files, nil
}

func readSource(path string) *source {
	src := &source{file: path}

	data, err := os.ReadFile(path)
	if err != nil {
		src.err = err
		return src
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		src.units = []*unit{{frag: fragment{line: 1, body: string(data)}}}
		return src
	}

	for _, frag := range extractFragments(string(data)) {
		src.units = append(src.units, &unit{frag: frag})
	}
	return src
}

// parseFragment returns nil for an empty body.
func parseFragment(body string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := resolve(doc.Content[0])
	switch {
	case root.Kind == yaml.MappingNode:
		return root, nil
	case root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return nil, nil
	default:
		return nil, ErrNotMapping
	}
}
