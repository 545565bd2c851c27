package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/anneal-io/anneal/internal/platform/aws"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/util/ownership"
)

// PolicyAPI is the slice of the AWS client the policy handler needs.
type PolicyAPI interface {
	GetPolicy(ctx context.Context, name string) (*aws.Policy, error)
	CreatePolicy(ctx context.Context, name, documentJSON string, tags map[string]string) (string, error)
	CreatePolicyVersion(ctx context.Context, arn, documentJSON string) error
}

// observedPolicyARN carries the policy ARN from probe to update inside the
// observation. It is never part of a desired spec, so it cannot drift.
const observedPolicyARN = "arn"

// Policy reconciles IAM managed policies, keyed by policy name. A drifted
// document converges by publishing a new default version.
type Policy struct {
	api PolicyAPI
}

// NewPolicy builds the handler on the given AWS client.
func NewPolicy(api PolicyAPI) *Policy {
	return &Policy{api: api}
}

func (h *Policy) Kind() provision.Kind { return provision.KindPolicy }

func (h *Policy) Mutable() bool { return true }

// Probe reads the policy and its default version's document. The document
// is canonicalized so it compares as a plain string against the spec.
func (h *Policy) Probe(ctx context.Context, spec provision.ResourceSpec) (provision.ObservedState, error) {
	policy, err := h.api.GetPolicy(ctx, spec.Key)
	if err != nil {
		return provision.ObservedState{}, err
	}
	if policy == nil {
		return provision.ObservedState{Present: false, FetchedAt: time.Now()}, nil
	}

	document, err := CanonicalJSON(policy.DocumentJSON)
	if err != nil {
		return provision.ObservedState{}, fmt.Errorf("policy %s has an unreadable document: %w", spec.Key, err)
	}
	return provision.ObservedState{
		Present: true,
		Attributes: map[string]string{
			AttrDocument:      document,
			observedPolicyARN: policy.ARN,
		},
		FetchedAt: time.Now(),
	}, nil
}

// Create creates the policy with the desired document and ownership tags.
func (h *Policy) Create(ctx context.Context, spec provision.ResourceSpec) (*provision.RolloutHandle, error) {
	if _, err := h.api.CreatePolicy(ctx, spec.Key, spec.Attr(AttrDocument), ownership.Tags()); err != nil {
		return nil, err
	}
	return nil, nil
}

// Update publishes the desired document as a new default version on the
// probed ARN.
func (h *Policy) Update(ctx context.Context, spec provision.ResourceSpec, observed provision.ObservedState) (*provision.RolloutHandle, error) {
	arn := observed.Attributes[observedPolicyARN]
	if arn == "" {
		return nil, fmt.Errorf("policy %s: observation is missing the ARN", spec.Key)
	}
	if err := h.api.CreatePolicyVersion(ctx, arn, spec.Attr(AttrDocument)); err != nil {
		return nil, err
	}
	return nil, nil
}
