package config

import (
	"encoding/json"
	"fmt"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/resources"
)

// BuildSpecs turns a validated config into the resource specs the engine
// reconciles. The graph is fixed by the domain: the service account binding
// needs the identity provider and the policy, the release needs the
// binding, and subnet tags stand alone.
func BuildSpecs(cfg *Config) ([]provision.ResourceSpec, error) {
	specs := make([]provision.ResourceSpec, 0, 4+len(cfg.Subnets))

	issuerKey := cfg.Cluster.OIDCIssuer
	identityProvider := provision.ResourceSpec{
		Kind: provision.KindIdentityProvider,
		Key:  issuerKey,
		Attributes: map[string]string{
			resources.AttrClientID: cfg.Cluster.Audience,
		},
	}
	if cfg.Cluster.Thumbprint != "" {
		identityProvider.Attributes[resources.AttrThumbprint] = cfg.Cluster.Thumbprint
	}
	specs = append(specs, identityProvider)

	document, err := policyDocumentJSON(cfg.Ingress.Policy.Document)
	if err != nil {
		return nil, fmt.Errorf("ingress.policy.document: %w", err)
	}
	policyKey := cfg.Ingress.Policy.Name
	specs = append(specs, provision.ResourceSpec{
		Kind: provision.KindPolicy,
		Key:  policyKey,
		Attributes: map[string]string{
			resources.AttrDocument: document,
		},
	})

	bindingKey := cfg.Ingress.Namespace + "/" + cfg.Ingress.ServiceAccount
	specs = append(specs, provision.ResourceSpec{
		Kind: provision.KindServiceAccountBinding,
		Key:  bindingKey,
		Attributes: map[string]string{
			resources.AttrRoleARN: cfg.Ingress.RoleARN,
		},
		DependsOn: []string{issuerKey, policyKey},
	})

	for _, subnet := range cfg.Subnets {
		specs = append(specs, provision.ResourceSpec{
			Kind:       provision.KindSubnetTag,
			Key:        subnet.ID,
			Attributes: subnet.Tags,
		})
	}

	release := provision.ResourceSpec{
		Kind: provision.KindHelmRelease,
		Key:  cfg.Ingress.Chart.Release,
		Attributes: map[string]string{
			resources.AttrChart:     cfg.Ingress.Chart.Name,
			resources.AttrVersion:   cfg.Ingress.Chart.Version,
			resources.AttrRepo:      cfg.Ingress.Chart.Repo,
			resources.AttrNamespace: cfg.Ingress.Namespace,
			resources.AttrWorkload:  cfg.Ingress.Chart.Workload,
		},
		DependsOn: []string{bindingKey},
	}
	if cfg.Ingress.Chart.Selector != "" {
		release.Attributes[resources.AttrSelector] = cfg.Ingress.Chart.Selector
	}
	if len(cfg.Ingress.Chart.Values) > 0 {
		values, err := json.Marshal(cfg.Ingress.Chart.Values)
		if err != nil {
			return nil, fmt.Errorf("ingress.chart.values: %w", err)
		}
		release.Attributes[resources.AttrValues] = string(values)
	}
	specs = append(specs, release)

	return specs, nil
}

// EngineOptions maps the config and environment tuning onto engine options.
// Metrics and force-reinstall are command-line concerns and stay zero here.
func (c *Config) EngineOptions(timeouts *Timeouts) provision.Options {
	return provision.Options{
		Concurrency:       c.Run.Concurrency,
		FailurePolicy:     provision.FailurePolicy(c.Run.FailurePolicy),
		RolloutTimeout:    timeouts.Rollout,
		PollInterval:      timeouts.PollInterval,
		RetryMaxAttempts:  timeouts.RetryMaxAttempts,
		RetryInitialDelay: timeouts.RetryInitialDelay,
		TailLines:         c.Diagnostics.TailLines,
	}
}

// policyDocumentJSON converts the configured document, YAML or JSON, into
// the canonical JSON the policy handler compares against live state.
func policyDocumentJSON(document string) (string, error) {
	jsonBytes, err := sigsyaml.YAMLToJSON([]byte(document))
	if err != nil {
		return "", fmt.Errorf("invalid policy document: %w", err)
	}
	return resources.CanonicalJSON(string(jsonBytes))
}
