package commands

import (
	"github.com/spf13/cobra"

	"github.com/anneal-io/anneal/cmd/anneal/handlers"
)

// Apply returns the command for converging the configured resources.
//
// This command runs the full provisioning pass: probing every configured
// resource, creating or updating whatever is missing or drifted, waiting for
// the controller rollout, and printing a per-resource report.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: anneal.yaml)
//	--output, -o: Report format, text or json (default: text)
//	--force-reinstall: Remove owned resources before recreating them
//	--no-tui: Disable the live dashboard even on a terminal
//	--metrics-listen: Serve Prometheus metrics on this address during the run
//
// Environment variables:
//
//	AWS credentials via the default chain (environment, profile, or IMDS)
//	ANNEAL_ROLLOUT_TIMEOUT and friends for timeout tuning
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Probe and converge every configured resource",
		Long: `Probe and converge every configured resource.

This command provisions the ingress prerequisites in dependency order:
the IAM OIDC identity provider and IAM policy first, then the service
account binding and subnet tags, and finally the controller Helm release,
which is watched until its workload rolls out.

Resources that already match the desired state are left untouched, so
re-running apply after a partial failure only converges what is missing.

If no config file is specified, it looks for anneal.yaml in the current
directory. Use 'anneal init' to create a configuration file.

The exit code follows the run verdict: 0 when everything converged,
2 when best-effort failures were tolerated, 1 when a fatal failure
aborted the run.

Examples:
  # Converge using anneal.yaml in current directory
  anneal apply

  # Converge using a specific config file
  anneal apply -c production.yaml

  # Tear down owned resources and recreate them
  anneal apply --force-reinstall

  # Machine-readable report, no dashboard
  anneal apply -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: anneal.yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Report format: text or json")
	cmd.Flags().BoolVar(&opts.ForceReinstall, "force-reinstall", false, "Remove owned resources before recreating them")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Disable the live dashboard even on a terminal")
	cmd.Flags().StringVar(&opts.MetricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address during the run")

	return cmd
}
