package resources

import (
	"context"
	"time"

	"github.com/anneal-io/anneal/internal/platform/kube"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/util/ownership"
)

// roleARNAnnotation is the annotation IRSA-aware admission webhooks read to
// inject role credentials into pods.
const roleARNAnnotation = "eks.amazonaws.com/role-arn"

// ServiceAccountAPI is the slice of the cluster client the binding handler
// needs.
type ServiceAccountAPI interface {
	GetServiceAccount(ctx context.Context, namespace, name string) (*kube.ServiceAccount, error)
	ApplyServiceAccount(ctx context.Context, sa kube.ServiceAccount) error
}

// ServiceAccountBinding reconciles the ServiceAccount that binds a workload
// to its IAM role, keyed by namespace/name. Create and update are the same
// server-side apply, so convergence is a single idempotent call either way.
type ServiceAccountBinding struct {
	api ServiceAccountAPI
}

// NewServiceAccountBinding builds the handler on the given cluster client.
func NewServiceAccountBinding(api ServiceAccountAPI) *ServiceAccountBinding {
	return &ServiceAccountBinding{api: api}
}

func (h *ServiceAccountBinding) Kind() provision.Kind { return provision.KindServiceAccountBinding }

func (h *ServiceAccountBinding) Mutable() bool { return true }

// Probe reads the ServiceAccount and reports the role annotation it carries.
func (h *ServiceAccountBinding) Probe(ctx context.Context, spec provision.ResourceSpec) (provision.ObservedState, error) {
	namespace, name, err := splitObjectKey(spec.Key)
	if err != nil {
		return provision.ObservedState{}, provision.NewConfigurationError("service account binding: %v", err)
	}

	sa, err := h.api.GetServiceAccount(ctx, namespace, name)
	if err != nil {
		return provision.ObservedState{}, err
	}
	if sa == nil {
		return provision.ObservedState{Present: false, FetchedAt: time.Now()}, nil
	}
	return provision.ObservedState{
		Present:    true,
		Attributes: map[string]string{AttrRoleARN: sa.Annotations[roleARNAnnotation]},
		FetchedAt:  time.Now(),
	}, nil
}

// Create applies the annotated ServiceAccount.
func (h *ServiceAccountBinding) Create(ctx context.Context, spec provision.ResourceSpec) (*provision.RolloutHandle, error) {
	return nil, h.apply(ctx, spec)
}

// Update converges the role annotation with the same apply.
func (h *ServiceAccountBinding) Update(ctx context.Context, spec provision.ResourceSpec, _ provision.ObservedState) (*provision.RolloutHandle, error) {
	return nil, h.apply(ctx, spec)
}

func (h *ServiceAccountBinding) apply(ctx context.Context, spec provision.ResourceSpec) error {
	namespace, name, err := splitObjectKey(spec.Key)
	if err != nil {
		return provision.NewConfigurationError("service account binding: %v", err)
	}
	return h.api.ApplyServiceAccount(ctx, kube.ServiceAccount{
		Namespace:   namespace,
		Name:        name,
		Annotations: map[string]string{roleARNAnnotation: spec.Attr(AttrRoleARN)},
		Labels:      ownership.Labels(),
	})
}
