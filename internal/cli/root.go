package cli

import (
	"github.com/spf13/cobra"
	"github.com/zeusln/swapspec/internal/config"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "swapspec",
		Short: "Generate the Swaps API OpenAPI document from annotated route sources",
		Long: `swapspec extracts @openapi annotations from the route sources, assigns the
Mainnet, Testnet and Regtest servers and writes swagger-spec.json.

Running swapspec without a subcommand is the same as running swapspec generate.`,
		Version:       "1.0.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: runGenerate,
	}

	config.BindFlags(root)

	root.AddCommand(
		GenerateCommand(),
		ValidateCommand(),
		RoutesCommand(),
	)

	return root
}
