package generator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeusln/swapspec/internal/annotation"
	"github.com/zeusln/swapspec/internal/loader"
	"github.com/zeusln/swapspec/internal/model"
	"go.uber.org/zap/zaptest"
	"go.yaml.in/yaml/v4"
)

// fakeExtractor merges a canned YAML fragment into the base definition.
type fakeExtractor struct {
	fragment string
	err      error
	globs    []string
}

func (f *fakeExtractor) Extract(globs []string, base *yaml.Node) (*annotation.Document, error) {
	f.globs = globs
	if f.err != nil {
		return nil, f.err
	}
	doc, err := annotation.NewDocument(base)
	if err != nil {
		return nil, err
	}
	if f.fragment != "" {
		var n yaml.Node
		if err := yaml.Unmarshal([]byte(f.fragment), &n); err != nil {
			return nil, err
		}
		doc.Merge(n.Content[0])
	}
	return doc, nil
}

const swapRoute = `/**
 * @openapi
 * /swap:
 *   get:
 *     summary: List swaps
 *     responses:
 *       200:
 *         description: OK
 */
router.get('/swap', listSwaps);
`

const expectedSwapDocument = `{
  "openapi": "3.0.0",
  "info": {
    "title": "ZEUS Swaps API",
    "version": "1.2.3"
  },
  "paths": {
    "/swap": {
      "get": {
        "summary": "List swaps",
        "responses": {
          "200": {
            "description": "OK"
          }
        }
      }
    }
  },
  "components": {},
  "tags": [],
  "servers": [
    {
      "url": "https://swaps.zeuslsp.com/api/v2",
      "description": "Mainnet"
    },
    {
      "url": "https://testnet-swaps.zeuslsp.com/api/v2",
      "description": "Testnet"
    },
    {
      "url": "http://localhost:9006/v2",
      "description": "Regtest"
    }
  ]
}`

type outputServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type outputDocument struct {
	OpenAPI string                    `json:"openapi"`
	Info    json.RawMessage           `json:"info"`
	Paths   map[string]map[string]any `json:"paths"`
	Servers []outputServer            `json:"servers"`
}

func swapsConfig(globs ...string) model.SpecConfig {
	return model.SpecConfig{
		Title:        "ZEUS Swaps API",
		Version:      "1.2.3",
		SourceGlobs:  globs,
		FailOnErrors: true,
	}
}

func writeRouter(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func readOutput(t *testing.T, path string) outputDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc outputDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestGenerateSwapRoute(t *testing.T) {
	dir := t.TempDir()
	routers := filepath.Join(dir, "lib", "api", "v2", "routers")
	writeRouter(t, routers, "SwapRouter.js", swapRoute)
	output := filepath.Join(dir, "swagger-spec.json")

	gen, err := New(swapsConfig(filepath.Join(routers, "*")), Options{
		Output: output,
		Logger: zaptest.NewLogger(t).Sugar(),
	})
	require.NoError(t, err)

	result, err := gen.Generate()
	require.NoError(t, err)
	require.Equal(t, output, result.Output)
	require.Empty(t, result.Warnings)
	require.Equal(t, []string{filepath.Join(routers, "SwapRouter.js")}, result.Sources)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, expectedSwapDocument, string(data))
	require.Equal(t, data, result.Data)

	doc := readOutput(t, output)
	require.Equal(t, "3.0.0", doc.OpenAPI)
	require.JSONEq(t, `{"title":"ZEUS Swaps API","version":"1.2.3"}`, string(doc.Info))
	require.Contains(t, doc.Paths, "/swap")
	require.Contains(t, doc.Paths["/swap"], "get")

	require.NotNil(t, result.Spec)
	require.Len(t, result.Spec.Operations, 1)
	require.Equal(t, model.MethodGet, result.Spec.Operations[0].Method)
	require.Equal(t, model.DefaultServers(), result.Spec.Servers)
}

func TestGenerateIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeRouter(t, dir, "a.js", swapRoute)
	writeRouter(t, dir, "b.yaml", "components:\n  schemas:\n    Pair:\n      type: object\n")

	var outputs [][]byte
	for i := 0; i < 3; i++ {
		output := filepath.Join(t.TempDir(), "swagger-spec.json")
		gen, err := New(swapsConfig(filepath.Join(dir, "*")), Options{Output: output})
		require.NoError(t, err)
		_, err = gen.Generate()
		require.NoError(t, err)

		data, err := os.ReadFile(output)
		require.NoError(t, err)
		outputs = append(outputs, data)
	}

	require.Equal(t, outputs[0], outputs[1])
	require.Equal(t, outputs[1], outputs[2])
}

func TestGenerateOverwritesServers(t *testing.T) {
	fake := &fakeExtractor{fragment: `
servers:
  - url: https://example.com
    description: Extracted
paths:
  /swap:
    get:
      responses:
        "200":
          description: OK
`}
	output := filepath.Join(t.TempDir(), "swagger-spec.json")

	gen, err := New(swapsConfig("routers/*"), Options{Extractor: fake, Output: output})
	require.NoError(t, err)
	_, err = gen.Generate()
	require.NoError(t, err)
	require.Equal(t, []string{"routers/*"}, fake.globs)

	doc := readOutput(t, output)
	require.Len(t, doc.Servers, 3)
	for i, want := range model.DefaultServers() {
		require.Equal(t, want.URL, doc.Servers[i].URL)
		require.Equal(t, want.Description, doc.Servers[i].Description)
	}
}

func TestGenerateCustomServers(t *testing.T) {
	fake := &fakeExtractor{fragment: "paths: {}"}
	output := filepath.Join(t.TempDir(), "swagger-spec.json")
	servers := []model.Server{{URL: "http://127.0.0.1:9001/v2", Description: "Local"}}

	gen, err := New(swapsConfig(), Options{Extractor: fake, Output: output, Servers: servers})
	require.NoError(t, err)
	result, err := gen.Generate()
	require.NoError(t, err)
	require.Equal(t, servers, result.Spec.Servers)
}

func TestGenerateMalformedAnnotationKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	routers := filepath.Join(dir, "routers")
	writeRouter(t, routers, "bad.js", "/**\n * @openapi\n * /swap:\n *   get: [\n */\n")

	outDir := t.TempDir()
	output := filepath.Join(outDir, "swagger-spec.json")
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0644))

	gen, err := New(swapsConfig(filepath.Join(routers, "*")), Options{Output: output})
	require.NoError(t, err)

	_, err = gen.Generate()
	require.Error(t, err)
	var annErr *annotation.Error
	require.True(t, errors.As(err, &annErr))
	require.Equal(t, 2, annErr.Line)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestGenerateNoSources(t *testing.T) {
	output := filepath.Join(t.TempDir(), "swagger-spec.json")

	gen, err := New(swapsConfig(filepath.Join(t.TempDir(), "*")), Options{Output: output})
	require.NoError(t, err)

	_, err = gen.Generate()
	require.ErrorIs(t, err, annotation.ErrNoSources)
	_, statErr := os.Stat(output)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestGenerateNoSourcesWithoutFailOnErrors(t *testing.T) {
	output := filepath.Join(t.TempDir(), "swagger-spec.json")
	cfg := swapsConfig(filepath.Join(t.TempDir(), "*"))
	cfg.FailOnErrors = false

	gen, err := New(cfg, Options{Output: output})
	require.NoError(t, err)

	result, err := gen.Generate()
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)

	doc := readOutput(t, output)
	require.Empty(t, doc.Paths)
	require.Len(t, doc.Servers, 3)
}

func TestGenerateInvalidDocument(t *testing.T) {
	fragment := `
paths:
  /swap:
    get:
      summary: missing responses
`
	t.Run("fail on errors", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "swagger-spec.json")
		gen, err := New(swapsConfig(), Options{Extractor: &fakeExtractor{fragment: fragment}, Output: output})
		require.NoError(t, err)

		_, err = gen.Generate()
		var ve *loader.ValidationError
		require.True(t, errors.As(err, &ve))

		_, statErr := os.Stat(output)
		require.ErrorIs(t, statErr, os.ErrNotExist)
	})

	t.Run("warn", func(t *testing.T) {
		output := filepath.Join(t.TempDir(), "swagger-spec.json")
		cfg := swapsConfig()
		cfg.FailOnErrors = false
		gen, err := New(cfg, Options{Extractor: &fakeExtractor{fragment: fragment}, Output: output})
		require.NoError(t, err)

		result, err := gen.Generate()
		require.NoError(t, err)
		require.NotEmpty(t, result.Warnings)
		_, err = os.Stat(output)
		require.NoError(t, err)
	})
}

func TestGenerateExtractorError(t *testing.T) {
	boom := errors.New("boom")
	gen, err := New(swapsConfig(), Options{
		Extractor: &fakeExtractor{err: boom},
		Output:    filepath.Join(t.TempDir(), "swagger-spec.json"),
	})
	require.NoError(t, err)

	_, err = gen.Generate()
	require.ErrorIs(t, err, boom)
}

func TestGenerateWriteError(t *testing.T) {
	output := filepath.Join(t.TempDir(), "missing", "swagger-spec.json")
	gen, err := New(swapsConfig(), Options{Extractor: &fakeExtractor{fragment: "paths: {}"}, Output: output})
	require.NoError(t, err)

	_, err = gen.Generate()
	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	require.Equal(t, output, writeErr.Path)
}

func TestGenerateEmbed(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "swagger-spec.json")
	embedOutput := filepath.Join(dir, "spec_gen.go")

	gen, err := New(swapsConfig(), Options{
		Extractor: &fakeExtractor{fragment: "paths: {}"},
		Output:    output,
		Embed:     &EmbedOptions{Output: embedOutput, Package: "apispec"},
	})
	require.NoError(t, err)

	result, err := gen.Generate()
	require.NoError(t, err)
	require.Equal(t, embedOutput, result.Embedded)

	src, err := os.ReadFile(embedOutput)
	require.NoError(t, err)
	require.Contains(t, string(src), "package apispec")
	require.Contains(t, string(src), "func Spec() ([]byte, error)")
}

func TestGenerateEmbedWriteErrorKeepsPreviousFile(t *testing.T) {
	outDir := t.TempDir()
	output := filepath.Join(outDir, "swagger-spec.json")
	require.NoError(t, os.WriteFile(output, []byte("previous"), 0644))
	embedOutput := filepath.Join(t.TempDir(), "missing", "spec_gen.go")

	gen, err := New(swapsConfig(), Options{
		Extractor: &fakeExtractor{fragment: "paths: {}"},
		Output:    output,
		Embed:     &EmbedOptions{Output: embedOutput, Package: "apispec"},
	})
	require.NoError(t, err)

	_, err = gen.Generate()
	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	require.Equal(t, embedOutput, writeErr.Path)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestNewRejectsInvalidEmbedPackage(t *testing.T) {
	_, err := New(swapsConfig(), Options{Embed: &EmbedOptions{Output: "spec.go", Package: "not-a-package"}})
	require.Error(t, err)
}

func TestNewClonesConfig(t *testing.T) {
	cfg := swapsConfig("a/*")
	fake := &fakeExtractor{fragment: "paths: {}"}
	gen, err := New(cfg, Options{Extractor: fake, Output: filepath.Join(t.TempDir(), "out.json")})
	require.NoError(t, err)

	cfg.SourceGlobs[0] = "b/*"
	_, err = gen.Generate()
	require.NoError(t, err)
	require.Equal(t, []string{"a/*"}, fake.globs)
}
