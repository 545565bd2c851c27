package resources

import (
	"github.com/anneal-io/anneal/internal/provision"
)

// Dependencies aggregates the platform clients the handlers are built on.
// The AWS fields are all satisfied by *aws.Client and the cluster fields by
// *kube.Client; they are split per handler so tests can fake one slice at a
// time.
type Dependencies struct {
	IdentityProviders IdentityProviderAPI
	Policies          PolicyAPI
	Subnets           SubnetAPI
	ServiceAccounts   ServiceAccountAPI
	Releases          ReleaseClientFactory
	Workloads         WorkloadClient
}

// RegisterAll wires a handler for every resource kind into the registry.
func RegisterAll(registry *provision.Registry, deps Dependencies) error {
	handlers := []provision.Handler{
		NewIdentityProvider(deps.IdentityProviders),
		NewPolicy(deps.Policies),
		NewServiceAccountBinding(deps.ServiceAccounts),
		NewSubnetTag(deps.Subnets),
		NewHelmRelease(deps.Releases, deps.Workloads),
	}
	for _, handler := range handlers {
		if err := registry.Register(handler); err != nil {
			return err
		}
	}
	return nil
}
