package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anneal-io/anneal/internal/platform/kube/helm"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/util/ownership"
)

// ReleaseClient drives Helm actions in one namespace.
type ReleaseClient interface {
	InstallOrUpgrade(ctx context.Context, spec helm.ReleaseSpec) (*helm.ReleaseInfo, error)
	ReleaseStatus(name string) (*helm.ReleaseInfo, error)
	Uninstall(name string) error
}

// ReleaseClientFactory yields a ReleaseClient bound to the given namespace.
// Helm scopes its release storage per namespace, so the handler asks for a
// client lazily instead of holding one.
type ReleaseClientFactory func(namespace string) (ReleaseClient, error)

// WorkloadClient observes the workload a release rolls out.
type WorkloadClient interface {
	DeploymentStatus(ctx context.Context, namespace, name string) (bool, string, error)
	PodLogs(ctx context.Context, namespace, labelSelector string, tailLines int) ([]string, error)
}

// HelmRelease reconciles installed charts, keyed by release name. Install
// and upgrade return before the workload is ready; when the spec names a
// workload, the mutation hands back a rollout handle and the engine's
// waiter polls the Deployment to convergence.
type HelmRelease struct {
	clients   ReleaseClientFactory
	workloads WorkloadClient
}

// NewHelmRelease builds the handler on a release client factory and the
// cluster client used for rollout observation.
func NewHelmRelease(clients ReleaseClientFactory, workloads WorkloadClient) *HelmRelease {
	return &HelmRelease{clients: clients, workloads: workloads}
}

func (h *HelmRelease) Kind() provision.Kind { return provision.KindHelmRelease }

func (h *HelmRelease) Mutable() bool { return true }

// Probe reads the latest release revision. Chart name, version, namespace,
// and values come from the release store; the repo URL and rollout workload
// are not recorded there and echo the spec, since they cannot drift.
func (h *HelmRelease) Probe(ctx context.Context, spec provision.ResourceSpec) (provision.ObservedState, error) {
	client, err := h.clients(releaseNamespace(spec))
	if err != nil {
		return provision.ObservedState{}, err
	}

	info, err := client.ReleaseStatus(spec.Key)
	if err != nil {
		return provision.ObservedState{}, err
	}
	if info == nil {
		return provision.ObservedState{Present: false, FetchedAt: time.Now()}, nil
	}

	attrs := map[string]string{
		AttrChart:     info.ChartName,
		AttrVersion:   info.ChartVersion,
		AttrNamespace: info.Namespace,
	}
	for _, name := range []string{AttrRepo, AttrWorkload, AttrSelector} {
		if v := spec.Attr(name); v != "" {
			attrs[name] = v
		}
	}
	if spec.Attr(AttrValues) != "" {
		observed, err := canonicalValues(info.Values)
		if err != nil {
			return provision.ObservedState{}, fmt.Errorf("release %s has unreadable values: %w", spec.Key, err)
		}
		attrs[AttrValues] = observed
	}
	return provision.ObservedState{Present: true, Attributes: attrs, FetchedAt: time.Now()}, nil
}

// Create installs the chart.
func (h *HelmRelease) Create(ctx context.Context, spec provision.ResourceSpec) (*provision.RolloutHandle, error) {
	return h.converge(ctx, spec)
}

// Update upgrades the release onto the desired chart and values.
func (h *HelmRelease) Update(ctx context.Context, spec provision.ResourceSpec, _ provision.ObservedState) (*provision.RolloutHandle, error) {
	return h.converge(ctx, spec)
}

func (h *HelmRelease) converge(ctx context.Context, spec provision.ResourceSpec) (*provision.RolloutHandle, error) {
	namespace := releaseNamespace(spec)
	client, err := h.clients(namespace)
	if err != nil {
		return nil, err
	}

	values, err := parseValues(spec.Attr(AttrValues))
	if err != nil {
		return nil, provision.NewConfigurationError("release %s: %v", spec.Key, err)
	}

	if _, err := client.InstallOrUpgrade(ctx, helm.ReleaseSpec{
		Name:    spec.Key,
		RepoURL: spec.Attr(AttrRepo),
		Chart:   spec.Attr(AttrChart),
		Version: spec.Attr(AttrVersion),
		Values:  values,
	}); err != nil {
		return nil, err
	}

	workload := spec.Attr(AttrWorkload)
	if workload == "" {
		return nil, nil
	}
	return &provision.RolloutHandle{
		ResourceKey: spec.Key,
		StartedAt:   time.Now(),
		Poll: func(ctx context.Context) (bool, string, error) {
			return h.workloads.DeploymentStatus(ctx, namespace, workload)
		},
	}, nil
}

// Delete uninstalls the release for force-reinstall. Releases that do not
// carry the ownership label are refused.
func (h *HelmRelease) Delete(ctx context.Context, spec provision.ResourceSpec, _ provision.ObservedState) error {
	client, err := h.clients(releaseNamespace(spec))
	if err != nil {
		return err
	}

	info, err := client.ReleaseStatus(spec.Key)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}
	if !ownership.IsOwned(info.Labels) {
		return fmt.Errorf("release %s is not managed by %s, refusing to uninstall", spec.Key, ownership.Manager)
	}
	return client.Uninstall(spec.Key)
}

// Status snapshots the rollout. With a workload named it reports replica
// readiness, otherwise the release state from the store.
func (h *HelmRelease) Status(ctx context.Context, spec provision.ResourceSpec) (string, error) {
	namespace := releaseNamespace(spec)
	if workload := spec.Attr(AttrWorkload); workload != "" {
		_, status, err := h.workloads.DeploymentStatus(ctx, namespace, workload)
		return status, err
	}

	client, err := h.clients(namespace)
	if err != nil {
		return "", err
	}
	info, err := client.ReleaseStatus(spec.Key)
	if err != nil {
		return "", err
	}
	if info == nil {
		return "release not installed", nil
	}
	return fmt.Sprintf("release %s revision %d is %s", info.Name, info.Revision, info.Status), nil
}

// Logs fetches recent pod logs, selected by the spec's selector or Helm's
// instance label as a fallback.
func (h *HelmRelease) Logs(ctx context.Context, spec provision.ResourceSpec, tail int) ([]string, error) {
	selector := spec.Attr(AttrSelector)
	if selector == "" {
		selector = "app.kubernetes.io/instance=" + spec.Key
	}
	return h.workloads.PodLogs(ctx, releaseNamespace(spec), selector, tail)
}

func releaseNamespace(spec provision.ResourceSpec) string {
	if ns := spec.Attr(AttrNamespace); ns != "" {
		return ns
	}
	return "default"
}

func parseValues(encoded string) (map[string]interface{}, error) {
	if encoded == "" {
		return nil, nil
	}
	var values map[string]interface{}
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil, fmt.Errorf("invalid values document: %w", err)
	}
	return values, nil
}

// canonicalValues renders stored release values in the same canonical form
// CanonicalJSON produces for the spec.
func canonicalValues(values map[string]interface{}) (string, error) {
	if len(values) == 0 {
		return "{}", nil
	}
	out, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
