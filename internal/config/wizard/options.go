package wizard

import "github.com/charmbracelet/huh"

// RegionOption represents an AWS region.
type RegionOption struct {
	Value       string
	Label       string
	Description string
}

// Regions contains the regions the wizard offers. Any region works in a
// hand-written config file; these are the common ones.
var Regions = []RegionOption{
	{Value: "us-east-1", Label: "us-east-1", Description: "N. Virginia, USA"},
	{Value: "us-west-2", Label: "us-west-2", Description: "Oregon, USA"},
	{Value: "eu-central-1", Label: "eu-central-1", Description: "Frankfurt, Germany"},
	{Value: "eu-west-1", Label: "eu-west-1", Description: "Dublin, Ireland"},
	{Value: "ap-southeast-1", Label: "ap-southeast-1", Description: "Singapore"},
	{Value: "ap-northeast-1", Label: "ap-northeast-1", Description: "Tokyo, Japan"},
}

// Controller choice constants.
const (
	ControllerALB     = "aws-load-balancer-controller"
	ControllerNginx   = "ingress-nginx"
	ControllerTraefik = "traefik"
	ControllerCustom  = "custom"
)

// ControllerOption represents an ingress controller chart the wizard knows
// how to prefill.
type ControllerOption struct {
	Value       string
	Label       string
	Description string

	Repo    string
	Chart   string
	Version string
}

// Controllers contains the charts offered out of the box. The custom entry
// carries no chart coordinates; the wizard asks for them instead.
var Controllers = []ControllerOption{
	{
		Value:       ControllerALB,
		Label:       "AWS Load Balancer Controller",
		Description: "Provisions ALBs and NLBs for Ingress and Service",
		Repo:        "https://aws.github.io/eks-charts",
		Chart:       "aws-load-balancer-controller",
		Version:     "1.8.1",
	},
	{
		Value:       ControllerNginx,
		Label:       "Ingress NGINX",
		Description: "HTTP/HTTPS ingress behind an NLB",
		Repo:        "https://kubernetes.github.io/ingress-nginx",
		Chart:       "ingress-nginx",
		Version:     "4.11.2",
	},
	{
		Value:       ControllerTraefik,
		Label:       "Traefik",
		Description: "HTTP/HTTPS ingress with dynamic configuration",
		Repo:        "https://traefik.github.io/charts",
		Chart:       "traefik",
		Version:     "30.1.0",
	},
	{
		Value:       ControllerCustom,
		Label:       "Custom",
		Description: "Bring your own chart",
	},
}

// Subnet role constants.
const (
	SubnetRolePublic   = "elb"
	SubnetRoleInternal = "internal-elb"
)

// SubnetRoleOptions selects which load balancer role tag subnets receive.
var SubnetRoleOptions = []huh.Option[string]{
	huh.NewOption("Public load balancers (kubernetes.io/role/elb)", SubnetRolePublic),
	huh.NewOption("Internal load balancers (kubernetes.io/role/internal-elb)", SubnetRoleInternal),
}

// ConcurrencyOptions contains common reconciliation widths.
var ConcurrencyOptions = []huh.Option[int]{
	huh.NewOption("1 (Serial)", 1),
	huh.NewOption("2", 2),
	huh.NewOption("4 (Recommended)", 4),
	huh.NewOption("8", 8),
	huh.NewOption("16", 16),
}

// FailurePolicyOptions contains run-level failure policies.
var FailurePolicyOptions = []huh.Option[string]{
	huh.NewOption("Follow the dependency graph (recommended)", ""),
	huh.NewOption("Fatal - stop on the first failure", "fatal"),
	huh.NewOption("Best effort - reconcile everything reachable", "best-effort"),
}

// RegionsToOptions converts RegionOption slice to huh.Option slice.
func RegionsToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Regions))
	for i, r := range Regions {
		opts[i] = huh.NewOption(r.Label+" - "+r.Description, r.Value)
	}
	return opts
}

// ControllersToOptions converts ControllerOption slice to huh.Option slice.
func ControllersToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Controllers))
	for i, c := range Controllers {
		opts[i] = huh.NewOption(c.Label+" - "+c.Description, c.Value)
	}
	return opts
}

// ControllerByValue returns the catalog entry for the given choice.
func ControllerByValue(value string) (ControllerOption, bool) {
	for _, c := range Controllers {
		if c.Value == value {
			return c, true
		}
	}
	return ControllerOption{}, false
}

// SubnetRoleTag maps a subnet role choice onto the tag key subnets carry.
func SubnetRoleTag(role string) string {
	if role == SubnetRoleInternal {
		return "kubernetes.io/role/internal-elb"
	}
	return "kubernetes.io/role/elb"
}
