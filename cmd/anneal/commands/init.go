package commands

import (
	"github.com/spf13/cobra"

	"github.com/anneal-io/anneal/cmd/anneal/handlers"
)

// Init returns the command for interactively creating a run configuration.
//
// This command guides users through creating a configuration YAML file
// using an interactive wizard with text inputs, single-select, and
// multi-select prompts.
//
// Flags:
//
//	--output, -o: Path to output file (default "anneal.yaml")
//	--advanced, -a: Show advanced configuration options
//	--full, -f: Output full YAML with all options (default: minimal output)
func Init() *cobra.Command {
	var (
		outputPath string
		advanced   bool
		fullOutput bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a run configuration",
		Long: `Interactively create a run configuration file.

This command guides you through configuring the provisioner step by
step. It will ask about:

  - Cluster identity (name, OIDC issuer, kubeconfig)
  - AWS region
  - Ingress controller chart
  - Service account binding (namespace, name, IAM role)
  - IAM policy document
  - Subnets to tag for load balancers

Use --advanced for engine tuning (concurrency, failure policy) and
diagnostics archiving options.

Use --full to output the complete YAML with all configuration
options (useful for manual editing). By default, a minimal
YAML is generated with only essential values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, advanced, fullOutput)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "anneal.yaml", "Output file path")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "Show advanced configuration options")
	cmd.Flags().BoolVarP(&fullOutput, "full", "f", false, "Output full YAML with all options")

	return cmd
}
