// Package spec renders a Go source file that embeds a generated OpenAPI document.
package spec

import (
	"encoding/base64"
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/zeusln/swapspec/internal/golang"
	"github.com/zeusln/swapspec/internal/templates"
)

const templateName = "go/spec.tmpl"

type Target struct {
	Package string
	Func    string
}

// New returns a target writing package pkg. fn names the accessor and
// defaults to Spec.
func New(pkg, fn string) (*Target, error) {
	if !token.IsIdentifier(pkg) || token.IsKeyword(pkg) {
		return nil, fmt.Errorf("invalid Go package name: %q", pkg)
	}
	if fn == "" {
		fn = "Spec"
	}
	name := accessorName(fn)
	if name == "" {
		return nil, fmt.Errorf("invalid accessor name: %q", fn)
	}
	return &Target{Package: pkg, Func: name}, nil
}

var initialisms = map[string]bool{
	"API":  true,
	"HTTP": true,
	"ID":   true,
	"JSON": true,
	"URL":  true,
	"YAML": true,
}

// accessorName turns fn into an exported identifier: swaps_api_spec becomes
// SwapsAPISpec.
func accessorName(fn string) string {
	words := strings.FieldsFunc(fn, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, word := range words {
		if upper := strings.ToUpper(word); initialisms[upper] {
			b.WriteString(upper)
			continue
		}
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}

	name := b.String()
	if name != "" && unicode.IsDigit(rune(name[0])) {
		name = "X" + name
	}
	return name
}

type templateData struct {
	Package  string
	Func     string
	Var      string
	Title    string
	Version  string
	SpecData string
}

func (t *Target) Generate(engine templates.Engine, specData []byte, title, version string) ([]byte, error) {
	data := templateData{
		Package:  t.Package,
		Func:     t.Func,
		Var:      "encoded" + t.Func,
		Title:    title,
		Version:  version,
		SpecData: base64.StdEncoding.EncodeToString(specData),
	}

	content, err := engine.Execute(templateName, data)
	if err != nil {
		return nil, err
	}

	return golang.Format(templateName, []byte(content))
}
