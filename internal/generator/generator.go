package generator

import (
	"fmt"

	"github.com/zeusln/swapspec/internal/annotation"
	"github.com/zeusln/swapspec/internal/loader"
	"github.com/zeusln/swapspec/internal/model"
	"github.com/zeusln/swapspec/internal/render"
	spectarget "github.com/zeusln/swapspec/internal/targets/spec"
	"github.com/zeusln/swapspec/internal/templates"
	embeddedtmpl "github.com/zeusln/swapspec/templates"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v4"
)

const (
	DefaultOutput = "swagger-spec.json"
	Indent        = "  "
)

// Options configure everything outside SpecConfig. Zero values select the
// annotation scanner, the default servers, swagger-spec.json and no logging.
type Options struct {
	Extractor annotation.Extractor
	Servers   []model.Server
	Output    string
	Embed     *EmbedOptions
	Logger    *zap.SugaredLogger
}

// EmbedOptions request an additional Go source file embedding the document.
type EmbedOptions struct {
	Output    string
	Package   string
	Func      string
	Templates string
}

type Generator struct {
	config    model.SpecConfig
	extractor annotation.Extractor
	servers   []model.Server
	output    string
	logger    *zap.SugaredLogger

	embed       *spectarget.Target
	embedOutput string
	engine      templates.Engine
}

type Result struct {
	Output   string
	Data     []byte
	Spec     *model.Spec
	Sources  []string
	Warnings []string
	Embedded string
}

func New(cfg model.SpecConfig, opts Options) (*Generator, error) {
	g := &Generator{
		config:    cfg.Clone(),
		extractor: opts.Extractor,
		servers:   opts.Servers,
		output:    opts.Output,
		logger:    opts.Logger,
	}

	if g.logger == nil {
		g.logger = zap.NewNop().Sugar()
	}
	if g.extractor == nil {
		g.extractor = &annotation.Scanner{FailOnErrors: cfg.FailOnErrors, Logger: g.logger}
	}
	if len(g.servers) == 0 {
		g.servers = model.DefaultServers()
	}
	if g.output == "" {
		g.output = DefaultOutput
	}

	if opts.Embed != nil && opts.Embed.Output != "" {
		target, err := spectarget.New(opts.Embed.Package, opts.Embed.Func)
		if err != nil {
			return nil, err
		}
		engine, err := templates.NewEngine(embeddedtmpl.FS, opts.Embed.Templates, nil)
		if err != nil {
			return nil, fmt.Errorf("creating template engine: %w", err)
		}
		g.embed = target
		g.embedOutput = opts.Embed.Output
		g.engine = engine
	}

	return g, nil
}

// Generate runs extraction, assigns servers, renders the document and writes
// it. Nothing is written unless every step before the write succeeds.
func (g *Generator) Generate() (*Result, error) {
	doc, err := g.extractor.Extract(g.config.SourceGlobs, BaseDefinition(g.config))
	if err != nil {
		return nil, fmt.Errorf("extracting annotations: %w", err)
	}
	g.logger.Debugw("extracted annotations", "sources", len(doc.Sources), "fragments", doc.Fragments)

	doc.Set("servers", serversNode(g.servers))

	data, err := render.JSON(doc.Root, Indent)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	result := &Result{
		Output:   g.output,
		Data:     data,
		Sources:  doc.Sources,
		Warnings: append([]string(nil), doc.Warnings...),
	}

	if err := g.check(data, result); err != nil {
		return nil, err
	}

	var files []outputFile
	if g.embed != nil {
		embedded, err := g.embed.Generate(g.engine, data, g.config.Title, g.config.Version)
		if err != nil {
			return nil, fmt.Errorf("generating embedded spec: %w", err)
		}
		files = append(files, outputFile{path: g.embedOutput, data: embedded})
	}
	// the main document is renamed into place last
	files = append(files, outputFile{path: g.output, data: data})

	if err := writeFiles(files); err != nil {
		return nil, err
	}
	g.logger.Infow("wrote OpenAPI document", "path", g.output, "bytes", len(data))

	if g.embed != nil {
		result.Embedded = g.embedOutput
		g.logger.Infow("wrote embedded spec", "path", g.embedOutput, "package", g.embed.Package)
	}

	return result, nil
}

// check loads the rendered bytes back and validates them against the
// OpenAPI meta-schema. Failures are fatal only with FailOnErrors.
func (g *Generator) check(data []byte, result *Result) error {
	loaded, err := loader.Load(data)
	if err == nil {
		result.Spec = loader.Transform(loaded)
		err = loader.Validate(loaded)
	}
	if err == nil {
		return nil
	}

	if g.config.FailOnErrors {
		return fmt.Errorf("checking generated document: %w", err)
	}
	g.logger.Warnw("generated document failed validation", "error", err)
	result.Warnings = append(result.Warnings, err.Error())
	return nil
}

// BaseDefinition is the document every extraction starts from.
func BaseDefinition(cfg model.SpecConfig) *yaml.Node {
	return annotation.Map(
		annotation.Str("openapi"), annotation.Str(model.OpenAPIVersion),
		annotation.Str("info"), annotation.Map(
			annotation.Str("title"), annotation.Str(cfg.Title),
			annotation.Str("version"), annotation.Str(cfg.Version),
		),
	)
}

func serversNode(servers []model.Server) *yaml.Node {
	items := make([]*yaml.Node, 0, len(servers))
	for _, s := range servers {
		items = append(items, annotation.Map(
			annotation.Str("url"), annotation.Str(s.URL),
			annotation.Str("description"), annotation.Str(s.Description),
		))
	}
	return annotation.Seq(items...)
}
