package commands

import (
	"github.com/spf13/cobra"

	"github.com/anneal-io/anneal/cmd/anneal/handlers"
)

// Plan returns the command for previewing a run without mutating anything.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: anneal.yaml)
//	--output, -o: Plan format, text or json (default: text)
func Plan() *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the actions a run would take",
		Long: `Preview the actions a run would take.

This command probes every configured resource and reports what apply
would do: create it, update drifted attributes, skip it, or leave it
alone. Nothing is mutated. Probe failures are reported per resource
instead of aborting the preview.

Examples:
  # Preview using anneal.yaml in current directory
  anneal plan

  # Preview a specific config file as JSON
  anneal plan -c production.yaml -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath, output)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: anneal.yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Plan format: text or json")

	return cmd
}
