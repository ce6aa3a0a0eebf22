package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeusln/swapspec/internal/config"
	"github.com/zeusln/swapspec/internal/loader"
)

func ValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a generated OpenAPI document (default: the configured output)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(cmd, args)
			if err != nil {
				return err
			}

			result, err := loader.LoadFile(path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}

			if err := loader.Validate(result); err != nil {
				var ve *loader.ValidationError
				if errors.As(err, &ve) {
					for _, d := range ve.Details() {
						cmd.PrintErrf("  %s\n", d)
					}
				}
				return fmt.Errorf("%s: %w", path, err)
			}

			cmd.Printf("%s: valid OpenAPI %s document\n", path, result.Version)
			return nil
		},
	}
}

// documentPath returns the explicit argument or the configured output file.
func documentPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := config.Load(cmd)
	if err != nil {
		return "", err
	}
	return cfg.Output, nil
}
