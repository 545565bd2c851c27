package resources

import (
	"context"
	"time"

	"github.com/anneal-io/anneal/internal/platform/aws"
	"github.com/anneal-io/anneal/internal/provision"
)

// SubnetAPI is the slice of the AWS client the subnet tag handler needs.
type SubnetAPI interface {
	GetSubnet(ctx context.Context, id string) (*aws.Subnet, error)
	TagSubnet(ctx context.Context, id string, tags map[string]string) error
}

// SubnetTag reconciles role tags on VPC subnets, keyed by subnet ID. The
// desired attributes are the tags themselves. A subnet that does not exist
// is a missing environmental precondition, not a failure: the resource is
// skipped with the warning as its reason. Subnets are shared infrastructure
// and are never stamped with the ownership tag.
type SubnetTag struct {
	api SubnetAPI
}

// NewSubnetTag builds the handler on the given AWS client.
func NewSubnetTag(api SubnetAPI) *SubnetTag {
	return &SubnetTag{api: api}
}

func (h *SubnetTag) Kind() provision.Kind { return provision.KindSubnetTag }

func (h *SubnetTag) Mutable() bool { return true }

// Probe describes the subnet and reports its current tags.
func (h *SubnetTag) Probe(ctx context.Context, spec provision.ResourceSpec) (provision.ObservedState, error) {
	subnet, err := h.api.GetSubnet(ctx, spec.Key)
	if err != nil {
		return provision.ObservedState{}, err
	}
	if subnet == nil {
		return provision.ObservedState{}, provision.NewSkipError("subnet %s not found", spec.Key)
	}
	return provision.ObservedState{
		Present:    true,
		Attributes: subnet.Tags,
		FetchedAt:  time.Now(),
	}, nil
}

// Create applies the desired tags. An existing subnet always probes as
// present, so this path only runs when probing is bypassed.
func (h *SubnetTag) Create(ctx context.Context, spec provision.ResourceSpec) (*provision.RolloutHandle, error) {
	return nil, h.api.TagSubnet(ctx, spec.Key, spec.Attributes)
}

// Update converges missing or drifted tags. CreateTags overwrites matching
// keys and leaves unrelated tags alone.
func (h *SubnetTag) Update(ctx context.Context, spec provision.ResourceSpec, _ provision.ObservedState) (*provision.RolloutHandle, error) {
	return nil, h.api.TagSubnet(ctx, spec.Key, spec.Attributes)
}
