package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Cluster identity
	ClusterName string
	OIDCIssuer  string
	Kubeconfig  string

	// AWS account surface
	Region string

	// Controller chart
	Controller   string
	ChartRepo    string
	ChartName    string
	ChartVersion string

	// Service account binding
	Namespace      string
	ServiceAccount string
	RoleARN        string

	// IAM policy document, YAML or JSON text
	PolicyDocument string

	// Subnets to tag (optional)
	SubnetIDs  []string
	SubnetRole string

	// Advanced options (only set in advanced mode)
	AdvancedOptions *AdvancedOptions
}

// AdvancedOptions holds advanced configuration options.
type AdvancedOptions struct {
	// Engine tuning
	Concurrency   int
	FailurePolicy string

	// Diagnostics archive
	ArchiveBundles bool
	ArchiveBucket  string
	ArchivePrefix  string
	ArchiveRegion  string
}

// RunWizard runs the interactive configuration wizard.
// If advanced is true, engine tuning and diagnostics options are shown.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context, advanced bool) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runClusterGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("cluster identity: %w", err)
	}

	if err := runRegionGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("aws region: %w", err)
	}

	// Controller selection narrows down the chart coordinates
	if err := runControllerGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("controller chart: %w", err)
	}

	if err := runBindingGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("service account binding: %w", err)
	}

	if err := runPolicyGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("iam policy: %w", err)
	}

	if err := runSubnetsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("subnets: %w", err)
	}

	if advanced {
		advOpts := &AdvancedOptions{}

		if err := runTuningGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("engine tuning: %w", err)
		}

		if err := runArchiveGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("diagnostics archive: %w", err)
		}

		result.AdvancedOptions = advOpts
	}

	return result, nil
}
