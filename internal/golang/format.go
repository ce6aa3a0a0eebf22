package golang

import (
	"fmt"

	"golang.org/x/tools/imports"
)

// Format gofmts generated source and fixes its import block. filename is
// only used in error messages and for resolving imports relative to it.
func Format(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated %s: %w", filename, err)
	}
	return out, nil
}
