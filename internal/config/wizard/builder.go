package wizard

import "github.com/anneal-io/anneal/internal/config"

// BuildConfig creates a Config struct from the wizard result.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		Cluster: config.ClusterConfig{
			Name:       result.ClusterName,
			OIDCIssuer: result.OIDCIssuer,
			Kubeconfig: result.Kubeconfig,
		},
		AWS: config.AWSConfig{
			Region: result.Region,
		},
		Ingress: config.IngressConfig{
			Namespace:      result.Namespace,
			ServiceAccount: result.ServiceAccount,
			RoleARN:        result.RoleARN,
			Policy: config.PolicyConfig{
				Document: result.PolicyDocument,
			},
			Chart: config.ChartConfig{
				Repo:    result.ChartRepo,
				Name:    result.ChartName,
				Version: result.ChartVersion,
			},
		},
	}

	tagKey := SubnetRoleTag(result.SubnetRole)
	for _, id := range result.SubnetIDs {
		cfg.Subnets = append(cfg.Subnets, config.SubnetConfig{
			ID:   id,
			Tags: map[string]string{tagKey: "1"},
		})
	}

	if result.AdvancedOptions != nil {
		applyAdvancedOptions(cfg, result.AdvancedOptions)
	}

	return cfg
}

// applyAdvancedOptions applies advanced options to the config.
func applyAdvancedOptions(cfg *config.Config, opts *AdvancedOptions) {
	cfg.Run.Concurrency = opts.Concurrency
	cfg.Run.FailurePolicy = opts.FailurePolicy

	if opts.ArchiveBundles {
		cfg.Diagnostics.Archive = &config.ArchiveConfig{
			Bucket: opts.ArchiveBucket,
			Prefix: opts.ArchivePrefix,
			Region: opts.ArchiveRegion,
		}
	}
}
