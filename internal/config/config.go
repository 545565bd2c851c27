package config

// Config is the desired state of one provisioning run.
type Config struct {
	Cluster     ClusterConfig     `yaml:"cluster" validate:"required"`
	AWS         AWSConfig         `yaml:"aws" validate:"required"`
	Ingress     IngressConfig     `yaml:"ingress" validate:"required"`
	Subnets     []SubnetConfig    `yaml:"subnets,omitempty" validate:"dive"`
	Run         RunConfig         `yaml:"run,omitempty"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics,omitempty"`
}

// ClusterConfig identifies the target cluster and its OIDC issuer.
type ClusterConfig struct {
	Name string `yaml:"name" validate:"required"`

	// OIDCIssuer is the cluster's OIDC issuer URL, the key of the IAM
	// identity provider.
	OIDCIssuer string `yaml:"oidc_issuer" validate:"required,url,startswith=https://"`

	// Audience the provider accepts. Defaults to sts.amazonaws.com.
	Audience string `yaml:"audience,omitempty"`

	// Thumbprint of the issuer's CA certificate. Optional: recent IAM
	// validates issuers against trusted roots itself.
	Thumbprint string `yaml:"thumbprint,omitempty" validate:"omitempty,hexadecimal,len=40"`

	// Kubeconfig is the path to the kubeconfig used for cluster-plane
	// kinds. Empty means the standard client-go resolution.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
}

// AWSConfig selects the account surface the cloud plane talks to.
type AWSConfig struct {
	Region       string `yaml:"region" validate:"required"`
	RateLimitRPS int    `yaml:"rate_limit_rps,omitempty" validate:"omitempty,min=1,max=100"`
}

// IngressConfig describes the ingress controller the run provisions for.
type IngressConfig struct {
	// Namespace and ServiceAccount locate the IRSA binding. Default
	// kube-system/ingress-controller.
	Namespace      string `yaml:"namespace,omitempty"`
	ServiceAccount string `yaml:"service_account,omitempty"`

	// RoleARN is the pre-existing IAM role the service account assumes.
	RoleARN string `yaml:"role_arn" validate:"required,startswith=arn:"`

	Policy PolicyConfig `yaml:"policy" validate:"required"`
	Chart  ChartConfig  `yaml:"chart" validate:"required"`
}

// PolicyConfig is the IAM managed policy attached to the ingress role.
type PolicyConfig struct {
	// Name defaults to <cluster name>-ingress.
	Name string `yaml:"name,omitempty"`

	// Document is the policy document, as YAML or JSON text.
	Document string `yaml:"document" validate:"required"`
}

// ChartConfig locates the controller chart and its rollout.
type ChartConfig struct {
	Repo    string `yaml:"repo" validate:"required,url"`
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version" validate:"required"`

	// Release defaults to the chart name; Workload, the Deployment whose
	// rollout gates convergence, defaults to the release name.
	Release  string `yaml:"release,omitempty"`
	Workload string `yaml:"workload,omitempty"`

	// Selector overrides the pod label selector used for diagnostics.
	Selector string `yaml:"selector,omitempty"`

	Values map[string]interface{} `yaml:"values,omitempty"`
}

// SubnetConfig is one subnet and the role tags it should carry.
type SubnetConfig struct {
	ID   string            `yaml:"id" validate:"required,startswith=subnet-"`
	Tags map[string]string `yaml:"tags" validate:"required,min=1"`
}

// RunConfig tunes the engine.
type RunConfig struct {
	// Concurrency bounds parallel reconciliations within a level. Zero
	// means the engine default.
	Concurrency int `yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=64"`

	// FailurePolicy is the run-level default: fatal, best-effort, or empty
	// to follow the dependency graph.
	FailurePolicy string `yaml:"failure_policy,omitempty" validate:"omitempty,oneof=fatal best-effort"`
}

// DiagnosticsConfig tunes failure triage.
type DiagnosticsConfig struct {
	// TailLines bounds log collection per bundle. Zero means the collector
	// default.
	TailLines int `yaml:"tail_lines,omitempty" validate:"omitempty,min=1,max=1000"`

	// Archive, when set, ships bundles to an S3 bucket after the run.
	Archive *ArchiveConfig `yaml:"archive,omitempty"`
}

// ArchiveConfig is the S3 destination for diagnostic bundles.
type ArchiveConfig struct {
	Bucket string `yaml:"bucket" validate:"required"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`

	// Endpoint switches to an S3-compatible store with path-style
	// addressing. Credentials are optional; empty means the default chain.
	Endpoint  string `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// applyDefaults fills the documented defaults in place.
func applyDefaults(cfg *Config) {
	if cfg.Cluster.Audience == "" {
		cfg.Cluster.Audience = "sts.amazonaws.com"
	}
	if cfg.Ingress.Namespace == "" {
		cfg.Ingress.Namespace = "kube-system"
	}
	if cfg.Ingress.ServiceAccount == "" {
		cfg.Ingress.ServiceAccount = "ingress-controller"
	}
	if cfg.Ingress.Policy.Name == "" && cfg.Cluster.Name != "" {
		cfg.Ingress.Policy.Name = cfg.Cluster.Name + "-ingress"
	}
	if cfg.Ingress.Chart.Release == "" {
		cfg.Ingress.Chart.Release = cfg.Ingress.Chart.Name
	}
	if cfg.Ingress.Chart.Workload == "" {
		cfg.Ingress.Chart.Workload = cfg.Ingress.Chart.Release
	}
}
