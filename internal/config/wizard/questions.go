package wizard

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	sigsyaml "sigs.k8s.io/yaml"
)

// clusterNameRegex validates cluster name format: 1-32 lowercase alphanumeric with hyphens.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// runClusterGroup prompts for cluster identity.
func runClusterGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Name").
				Description("1-32 lowercase alphanumeric characters or hyphens").
				Placeholder("my-cluster").
				Value(&result.ClusterName).
				Validate(validateClusterName),
			huh.NewInput().
				Title("OIDC Issuer URL").
				Description("The cluster's OIDC issuer, from 'aws eks describe-cluster'").
				Placeholder("https://oidc.eks.eu-central-1.amazonaws.com/id/...").
				Value(&result.OIDCIssuer).
				Validate(validateIssuer),
			huh.NewInput().
				Title("Kubeconfig Path (Optional)").
				Description("Leave empty for the standard kubeconfig resolution").
				Value(&result.Kubeconfig),
		).Title("Cluster Identity"),
	).RunWithContext(ctx)
}

// runRegionGroup prompts for the AWS region.
func runRegionGroup(ctx context.Context, result *WizardResult) error {
	result.Region = "eu-central-1" // default

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("AWS Region").
				Description("Region the IAM and subnet resources live in").
				Options(RegionsToOptions()...).
				Value(&result.Region),
		).Title("AWS"),
	).RunWithContext(ctx)
}

// runControllerGroup prompts for the ingress controller chart.
func runControllerGroup(ctx context.Context, result *WizardResult) error {
	result.Controller = ControllerALB // default

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Ingress Controller").
				Description("The chart the run installs and waits on").
				Options(ControllersToOptions()...).
				Value(&result.Controller),
		).Title("Controller"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	// Custom charts need all three coordinates
	if result.Controller == ControllerCustom {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Chart Repository URL").
					Placeholder("https://charts.example.com").
					Value(&result.ChartRepo).
					Validate(validateRepoURL),
				huh.NewInput().
					Title("Chart Name").
					Value(&result.ChartName).
					Validate(validateChartName),
				huh.NewInput().
					Title("Chart Version").
					Value(&result.ChartVersion).
					Validate(validateChartVersion),
			).Title("Custom Chart"),
		).RunWithContext(ctx)
	}

	controller, _ := ControllerByValue(result.Controller)
	result.ChartRepo = controller.Repo
	result.ChartName = controller.Chart
	result.ChartVersion = controller.Version

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chart Version").
				Description("Pinned version the run installs").
				Value(&result.ChartVersion).
				Validate(validateChartVersion),
		).Title("Chart Version"),
	).RunWithContext(ctx)
}

// runBindingGroup prompts for the IRSA service account binding.
func runBindingGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IAM Role ARN").
				Description("Pre-existing role the controller's service account assumes").
				Placeholder("arn:aws:iam::123456789012:role/my-cluster-ingress").
				Value(&result.RoleARN).
				Validate(validateRoleARN),
			huh.NewInput().
				Title("Namespace (Optional)").
				Description("Defaults to kube-system").
				Placeholder("kube-system").
				Value(&result.Namespace),
			huh.NewInput().
				Title("Service Account (Optional)").
				Description("Defaults to ingress-controller").
				Placeholder("ingress-controller").
				Value(&result.ServiceAccount),
		).Title("Service Account Binding"),
	).RunWithContext(ctx)
}

// runPolicyGroup prompts for the IAM policy document.
func runPolicyGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("IAM Policy Document").
				Description("Permissions the controller role needs, as YAML or JSON").
				Value(&result.PolicyDocument).
				Validate(validatePolicyDocument),
		).Title("IAM Policy"),
	).RunWithContext(ctx)
}

// runSubnetsGroup prompts for subnets to tag (optional).
func runSubnetsGroup(ctx context.Context, result *WizardResult) error {
	var subnetsInput string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subnet IDs (Optional)").
				Description("Comma-separated subnets to tag for load balancer discovery. Leave empty to skip.").
				Placeholder("subnet-0abc..., subnet-0def... (or leave empty)").
				Value(&subnetsInput).
				Validate(validateSubnetIDs),
		).Title("Subnets"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	result.SubnetIDs = parseSubnetIDs(subnetsInput)
	if len(result.SubnetIDs) == 0 {
		return nil
	}

	result.SubnetRole = SubnetRolePublic // default

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Subnet Role").
				Description("Which load balancers the subnets should attract").
				Options(SubnetRoleOptions...).
				Value(&result.SubnetRole),
		).Title("Subnet Role"),
	).RunWithContext(ctx)
}

// runTuningGroup prompts for engine tuning (advanced mode).
func runTuningGroup(ctx context.Context, opts *AdvancedOptions) error {
	opts.Concurrency = 4

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Concurrency").
				Description("Independent resources reconciled in parallel").
				Options(ConcurrencyOptions...).
				Value(&opts.Concurrency),
			huh.NewSelect[string]().
				Title("Failure Policy").
				Description("What a resource failure does to the rest of the run").
				Options(FailurePolicyOptions...).
				Value(&opts.FailurePolicy),
		).Title("Engine Tuning"),
	).RunWithContext(ctx)
}

// runArchiveGroup prompts for the diagnostics archive (advanced mode).
func runArchiveGroup(ctx context.Context, opts *AdvancedOptions) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Archive Diagnostic Bundles?").
				Description("Ship failure diagnostics to an S3 bucket after the run").
				Value(&opts.ArchiveBundles),
		).Title("Diagnostics"),
	).RunWithContext(ctx)

	if err != nil {
		return err
	}

	if !opts.ArchiveBundles {
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Value(&opts.ArchiveBucket).
				Validate(validateBucket),
			huh.NewInput().
				Title("Key Prefix (Optional)").
				Placeholder("anneal/").
				Value(&opts.ArchivePrefix),
			huh.NewInput().
				Title("Bucket Region (Optional)").
				Description("Leave empty to use the account region").
				Value(&opts.ArchiveRegion),
		).Title("Archive Destination"),
	).RunWithContext(ctx)
}

// validateClusterName validates the cluster name format.
func validateClusterName(s string) error {
	if s == "" {
		return errClusterNameRequired
	}
	if !clusterNameRegex.MatchString(s) {
		return errClusterNameInvalid
	}
	return nil
}

// validateIssuer validates the OIDC issuer URL.
func validateIssuer(s string) error {
	if s == "" {
		return errIssuerRequired
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		return errIssuerInvalid
	}
	return nil
}

// validateRoleARN validates the IAM role ARN shape.
func validateRoleARN(s string) error {
	if s == "" {
		return errRoleARNRequired
	}
	if !strings.HasPrefix(s, "arn:") {
		return errRoleARNInvalid
	}
	return nil
}

// validateRepoURL validates the chart repository URL.
func validateRepoURL(s string) error {
	if s == "" {
		return errRepoRequired
	}
	parsed, err := url.Parse(s)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errRepoInvalid
	}
	return nil
}

// validateChartName validates the chart name is present.
func validateChartName(s string) error {
	if s == "" {
		return errChartNameRequired
	}
	return nil
}

// validateChartVersion validates the chart version is present.
func validateChartVersion(s string) error {
	if s == "" {
		return errChartVersionRequired
	}
	return nil
}

// validatePolicyDocument checks the document converts to JSON.
func validatePolicyDocument(s string) error {
	if strings.TrimSpace(s) == "" {
		return errDocumentRequired
	}
	if _, err := sigsyaml.YAMLToJSON([]byte(s)); err != nil {
		return errDocumentInvalid
	}
	return nil
}

// validateSubnetIDs checks every comma-separated token looks like a subnet ID.
func validateSubnetIDs(s string) error {
	for _, id := range parseSubnetIDs(s) {
		if !strings.HasPrefix(id, "subnet-") {
			return errSubnetIDInvalid
		}
	}
	return nil
}

// validateBucket validates the bucket name is present.
func validateBucket(s string) error {
	if s == "" {
		return errBucketRequired
	}
	return nil
}

// parseSubnetIDs parses a comma-separated list of subnet IDs.
func parseSubnetIDs(input string) []string {
	parts := strings.Split(input, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
