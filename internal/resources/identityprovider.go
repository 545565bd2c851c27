package resources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anneal-io/anneal/internal/platform/aws"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/util/ownership"
)

// IdentityProviderAPI is the slice of the AWS client the identity provider
// handler needs.
type IdentityProviderAPI interface {
	GetOIDCProvider(ctx context.Context, issuerURL string) (*aws.OIDCProvider, error)
	CreateOIDCProvider(ctx context.Context, issuerURL string, clientIDs, thumbprints []string, tags map[string]string) (string, error)
}

// IdentityProvider reconciles IAM OIDC identity providers, keyed by issuer
// URL. The provider is immutable once registered: a drifted audience or
// thumbprint needs manual replacement, so drift yields a skip.
type IdentityProvider struct {
	api IdentityProviderAPI
}

// NewIdentityProvider builds the handler on the given AWS client.
func NewIdentityProvider(api IdentityProviderAPI) *IdentityProvider {
	return &IdentityProvider{api: api}
}

func (h *IdentityProvider) Kind() provision.Kind { return provision.KindIdentityProvider }

func (h *IdentityProvider) Mutable() bool { return false }

// Probe looks the provider up by issuer URL. Only the attributes the spec
// asks for are observed; the audience and thumbprint report the desired
// value when the provider carries it and the actual list otherwise.
func (h *IdentityProvider) Probe(ctx context.Context, spec provision.ResourceSpec) (provision.ObservedState, error) {
	provider, err := h.api.GetOIDCProvider(ctx, spec.Key)
	if err != nil {
		return provision.ObservedState{}, err
	}
	if provider == nil {
		return provision.ObservedState{Present: false, FetchedAt: time.Now()}, nil
	}

	attrs := map[string]string{}
	if want := spec.Attr(AttrClientID); want != "" {
		attrs[AttrClientID] = matchedOrActual(want, provider.ClientIDs)
	}
	if want := spec.Attr(AttrThumbprint); want != "" {
		attrs[AttrThumbprint] = matchedOrActual(want, provider.Thumbprints)
	}
	return provision.ObservedState{Present: true, Attributes: attrs, FetchedAt: time.Now()}, nil
}

// Create registers the provider with the desired audience and thumbprint,
// stamped with the ownership tag.
func (h *IdentityProvider) Create(ctx context.Context, spec provision.ResourceSpec) (*provision.RolloutHandle, error) {
	var clientIDs, thumbprints []string
	if v := spec.Attr(AttrClientID); v != "" {
		clientIDs = append(clientIDs, v)
	}
	if v := spec.Attr(AttrThumbprint); v != "" {
		thumbprints = append(thumbprints, v)
	}
	if _, err := h.api.CreateOIDCProvider(ctx, spec.Key, clientIDs, thumbprints, ownership.Tags()); err != nil {
		return nil, err
	}
	return nil, nil
}

// Update is never reached: the kind reports immutable and the engine skips
// drifted providers instead of converging them.
func (h *IdentityProvider) Update(_ context.Context, spec provision.ResourceSpec, _ provision.ObservedState) (*provision.RolloutHandle, error) {
	return nil, fmt.Errorf("identity provider %s is immutable", spec.Key)
}

// matchedOrActual returns want when the provider carries it, otherwise the
// actual list so the drift report names what is really registered.
func matchedOrActual(want string, actual []string) string {
	for _, v := range actual {
		if v == want {
			return want
		}
	}
	return strings.Join(actual, ",")
}
