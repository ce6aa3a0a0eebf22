package templates

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestEngineExecute(t *testing.T) {
	tree := fstest.MapFS{
		"go/hello.tmpl": {Data: []byte("hello {{ .Name }}")},
		"README.md":     {Data: []byte("ignored")},
	}

	engine, err := NewEngine(tree, "", nil)
	require.NoError(t, err)

	out, err := engine.Execute("go/hello.tmpl", map[string]string{"Name": "swaps"})
	require.NoError(t, err)
	require.Equal(t, "hello swaps", out)

	_, err = engine.Execute("README.md", nil)
	require.ErrorContains(t, err, "template not found")
}

func TestEngineOverride(t *testing.T) {
	tree := fstest.MapFS{
		"go/hello.tmpl": {Data: []byte("embedded")},
	}
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "go"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go", "hello.tmpl"), []byte("custom"), 0644))

	engine, err := NewEngine(tree, dir, nil)
	require.NoError(t, err)

	out, err := engine.Execute("go/hello.tmpl", nil)
	require.NoError(t, err)
	require.Equal(t, "custom", out)
}

func TestEngineErrors(t *testing.T) {
	_, err := NewEngine(fstest.MapFS{"bad.tmpl": {Data: []byte("{{ .Name ")}}, "", nil)
	require.ErrorContains(t, err, "parsing embedded template bad.tmpl")

	_, err = NewEngine(fstest.MapFS{}, filepath.Join(t.TempDir(), "missing"), nil)
	require.ErrorContains(t, err, "template override directory")
}
