package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeusln/swapspec/internal/config"
	"github.com/zeusln/swapspec/internal/generator"
	"github.com/zeusln/swapspec/internal/loader"
	"github.com/zeusln/swapspec/internal/metadata"
	"github.com/zeusln/swapspec/internal/model"
	"go.uber.org/zap"
)

func GenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Extract annotations and write the OpenAPI document",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	version := cfg.Version
	if version == "" {
		project, err := metadata.Read(cfg.Metadata)
		if err != nil {
			return err
		}
		version = project.Version
		logger.Debugw("read project metadata", "path", cfg.Metadata, "name", project.Name, "version", version)
	}

	opts := generator.Options{
		Servers: cfg.Servers,
		Output:  cfg.Output,
		Logger:  logger,
	}
	if cfg.Embed.Output != "" {
		opts.Embed = &generator.EmbedOptions{
			Output:    cfg.Embed.Output,
			Package:   cfg.Embed.Package,
			Func:      cfg.Embed.Func,
			Templates: cfg.Embed.Templates,
		}
	}

	gen, err := generator.New(cfg.SpecConfig(version), opts)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	result, err := gen.Generate()
	if err != nil {
		var ve *loader.ValidationError
		if errors.As(err, &ve) {
			for _, d := range ve.Details() {
				cmd.PrintErrf("  %s\n", d)
			}
		}
		return err
	}

	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	cmd.PrintErrf("Generated OpenAPI %s: %s v%s\n", model.OpenAPIVersion, cfg.Title, version)
	cmd.PrintErrf("  Sources: %d\n", len(result.Sources))
	if result.Spec != nil {
		cmd.PrintErrf("  Paths: %d\n", len(result.Spec.Paths))
		cmd.PrintErrf("  Operations: %d\n", len(result.Spec.Operations))
	}
	cmd.PrintErrf("Written: %s\n", result.Output)
	if result.Embedded != "" {
		cmd.PrintErrf("Written: %s\n", result.Embedded)
	}

	return nil
}

// newLogger logs warnings to stderr, or everything in development format
// when verbose.
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		zcfg.Sampling = nil
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
