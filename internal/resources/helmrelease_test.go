package resources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anneal-io/anneal/internal/platform/kube/helm"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/util/ownership"
)

type fakeReleaseClient struct {
	installOrUpgrade func(ctx context.Context, spec helm.ReleaseSpec) (*helm.ReleaseInfo, error)
	releaseStatus    func(name string) (*helm.ReleaseInfo, error)
	uninstall        func(name string) error
}

func (f *fakeReleaseClient) InstallOrUpgrade(ctx context.Context, spec helm.ReleaseSpec) (*helm.ReleaseInfo, error) {
	if f.installOrUpgrade == nil {
		return nil, errors.New("unexpected InstallOrUpgrade call")
	}
	return f.installOrUpgrade(ctx, spec)
}

func (f *fakeReleaseClient) ReleaseStatus(name string) (*helm.ReleaseInfo, error) {
	if f.releaseStatus == nil {
		return nil, errors.New("unexpected ReleaseStatus call")
	}
	return f.releaseStatus(name)
}

func (f *fakeReleaseClient) Uninstall(name string) error {
	if f.uninstall == nil {
		return errors.New("unexpected Uninstall call")
	}
	return f.uninstall(name)
}

type fakeWorkloadClient struct {
	deploymentStatus func(ctx context.Context, namespace, name string) (bool, string, error)
	podLogs          func(ctx context.Context, namespace, labelSelector string, tailLines int) ([]string, error)
}

func (f *fakeWorkloadClient) DeploymentStatus(ctx context.Context, namespace, name string) (bool, string, error) {
	if f.deploymentStatus == nil {
		return false, "", errors.New("unexpected DeploymentStatus call")
	}
	return f.deploymentStatus(ctx, namespace, name)
}

func (f *fakeWorkloadClient) PodLogs(ctx context.Context, namespace, labelSelector string, tailLines int) ([]string, error) {
	if f.podLogs == nil {
		return nil, errors.New("unexpected PodLogs call")
	}
	return f.podLogs(ctx, namespace, labelSelector, tailLines)
}

// staticFactory hands out the same release client for every namespace and
// records which namespace was asked for.
func staticFactory(client ReleaseClient, gotNamespace *string) ReleaseClientFactory {
	return func(namespace string) (ReleaseClient, error) {
		if gotNamespace != nil {
			*gotNamespace = namespace
		}
		return client, nil
	}
}

func releaseSpec(attrs map[string]string) provision.ResourceSpec {
	return provision.ResourceSpec{
		Kind:       provision.KindHelmRelease,
		Key:        "ingress",
		Attributes: attrs,
	}
}

func TestHelmReleaseProbe_Absent(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		releaseStatus: func(name string) (*helm.ReleaseInfo, error) {
			assert.Equal(t, "ingress", name)
			return nil, nil
		},
	}
	var gotNamespace string
	handler := NewHelmRelease(staticFactory(client, &gotNamespace), &fakeWorkloadClient{})

	observed, err := handler.Probe(context.Background(), releaseSpec(map[string]string{AttrNamespace: "kube-system"}))
	require.NoError(t, err)
	assert.False(t, observed.Present)
	assert.Equal(t, "kube-system", gotNamespace)
}

func TestHelmReleaseProbe_EchoesUnrecordedAttributes(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		releaseStatus: func(string) (*helm.ReleaseInfo, error) {
			return &helm.ReleaseInfo{
				Name:         "ingress",
				Namespace:    "kube-system",
				Revision:     1,
				ChartName:    "ingress-controller",
				ChartVersion: "1.2.3",
				Status:       "deployed",
				Values:       map[string]interface{}{"replicaCount": float64(2)},
			}, nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	spec := releaseSpec(map[string]string{
		AttrChart:     "ingress-controller",
		AttrVersion:   "1.2.3",
		AttrRepo:      "https://charts.example.com",
		AttrNamespace: "kube-system",
		AttrValues:    `{"replicaCount":2}`,
		AttrWorkload:  "ingress-controller",
	})
	observed, err := handler.Probe(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, observed.Present)

	// Every desired attribute matches, so a re-run is AlreadySatisfied.
	for name, want := range spec.Attributes {
		assert.Equal(t, want, observed.Attributes[name], "attribute %s", name)
	}
}

func TestHelmReleaseProbe_CanonicalizesValues(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		releaseStatus: func(string) (*helm.ReleaseInfo, error) {
			return &helm.ReleaseInfo{
				Name:      "ingress",
				Namespace: "kube-system",
				Values: map[string]interface{}{
					"service":      map[string]interface{}{"type": "LoadBalancer", "port": float64(443)},
					"replicaCount": float64(2),
				},
			}, nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	desired, err := CanonicalJSON(`{"replicaCount": 2, "service": {"port": 443, "type": "LoadBalancer"}}`)
	require.NoError(t, err)

	observed, err := handler.Probe(context.Background(), releaseSpec(map[string]string{
		AttrNamespace: "kube-system",
		AttrValues:    desired,
	}))
	require.NoError(t, err)
	assert.Equal(t, desired, observed.Attributes[AttrValues])
}

func TestHelmReleaseConverge_PassesSpec(t *testing.T) {
	t.Parallel()

	var got helm.ReleaseSpec
	client := &fakeReleaseClient{
		installOrUpgrade: func(_ context.Context, spec helm.ReleaseSpec) (*helm.ReleaseInfo, error) {
			got = spec
			return &helm.ReleaseInfo{Name: spec.Name, Revision: 1}, nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	handle, err := handler.Create(context.Background(), releaseSpec(map[string]string{
		AttrChart:     "ingress-controller",
		AttrVersion:   "1.2.3",
		AttrRepo:      "https://charts.example.com",
		AttrNamespace: "kube-system",
		AttrValues:    `{"replicaCount":2}`,
	}))
	require.NoError(t, err)
	assert.Nil(t, handle, "no workload named, nothing to await")
	assert.Equal(t, "ingress", got.Name)
	assert.Equal(t, "ingress-controller", got.Chart)
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "https://charts.example.com", got.RepoURL)
	assert.Equal(t, map[string]interface{}{"replicaCount": float64(2)}, got.Values)
}

func TestHelmReleaseConverge_ReturnsRolloutHandle(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		installOrUpgrade: func(_ context.Context, spec helm.ReleaseSpec) (*helm.ReleaseInfo, error) {
			return &helm.ReleaseInfo{Name: spec.Name, Revision: 1}, nil
		},
	}
	var polledNamespace, polledName string
	workloads := &fakeWorkloadClient{
		deploymentStatus: func(_ context.Context, namespace, name string) (bool, string, error) {
			polledNamespace = namespace
			polledName = name
			return true, "2/2 replicas updated, 2/2 available", nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), workloads)

	handle, err := handler.Update(context.Background(), releaseSpec(map[string]string{
		AttrChart:     "ingress-controller",
		AttrNamespace: "kube-system",
		AttrWorkload:  "ingress-controller",
	}), provision.ObservedState{Present: true})
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "ingress", handle.ResourceKey)
	assert.False(t, handle.StartedAt.IsZero())

	done, status, err := handle.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "2/2 replicas updated, 2/2 available", status)
	assert.Equal(t, "kube-system", polledNamespace)
	assert.Equal(t, "ingress-controller", polledName)
}

func TestHelmReleaseConverge_InvalidValues(t *testing.T) {
	t.Parallel()

	handler := NewHelmRelease(staticFactory(&fakeReleaseClient{}, nil), &fakeWorkloadClient{})

	_, err := handler.Create(context.Background(), releaseSpec(map[string]string{
		AttrChart:  "ingress-controller",
		AttrValues: "replicaCount: 2",
	}))
	require.Error(t, err)
	assert.True(t, provision.IsConfiguration(err))
}

func TestHelmReleaseDelete_RefusesUnowned(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		releaseStatus: func(string) (*helm.ReleaseInfo, error) {
			return &helm.ReleaseInfo{Name: "ingress", Labels: map[string]string{"owner": "someone-else"}}, nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	err := handler.Delete(context.Background(), releaseSpec(nil), provision.ObservedState{Present: true})
	assert.ErrorContains(t, err, "refusing to uninstall")
}

func TestHelmReleaseDelete_UninstallsOwned(t *testing.T) {
	t.Parallel()

	var uninstalled string
	client := &fakeReleaseClient{
		releaseStatus: func(string) (*helm.ReleaseInfo, error) {
			return &helm.ReleaseInfo{Name: "ingress", Labels: ownership.Labels()}, nil
		},
		uninstall: func(name string) error {
			uninstalled = name
			return nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	err := handler.Delete(context.Background(), releaseSpec(nil), provision.ObservedState{Present: true})
	require.NoError(t, err)
	assert.Equal(t, "ingress", uninstalled)
}

func TestHelmReleaseDelete_MissingReleaseIsNoop(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		releaseStatus: func(string) (*helm.ReleaseInfo, error) {
			return nil, nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	err := handler.Delete(context.Background(), releaseSpec(nil), provision.ObservedState{})
	assert.NoError(t, err)
}

func TestHelmReleaseStatus_WithWorkload(t *testing.T) {
	t.Parallel()

	workloads := &fakeWorkloadClient{
		deploymentStatus: func(_ context.Context, namespace, name string) (bool, string, error) {
			assert.Equal(t, "kube-system", namespace)
			assert.Equal(t, "ingress-controller", name)
			return false, "2/2 replicas updated, 1/2 available", nil
		},
	}
	handler := NewHelmRelease(staticFactory(&fakeReleaseClient{}, nil), workloads)

	status, err := handler.Status(context.Background(), releaseSpec(map[string]string{
		AttrNamespace: "kube-system",
		AttrWorkload:  "ingress-controller",
	}))
	require.NoError(t, err)
	assert.Equal(t, "2/2 replicas updated, 1/2 available", status)
}

func TestHelmReleaseStatus_WithoutWorkload(t *testing.T) {
	t.Parallel()

	client := &fakeReleaseClient{
		releaseStatus: func(string) (*helm.ReleaseInfo, error) {
			return &helm.ReleaseInfo{Name: "ingress", Revision: 2, Status: "deployed"}, nil
		},
	}
	handler := NewHelmRelease(staticFactory(client, nil), &fakeWorkloadClient{})

	status, err := handler.Status(context.Background(), releaseSpec(nil))
	require.NoError(t, err)
	assert.Equal(t, "release ingress revision 2 is deployed", status)
}

func TestHelmReleaseLogs_DefaultSelector(t *testing.T) {
	t.Parallel()

	workloads := &fakeWorkloadClient{
		podLogs: func(_ context.Context, namespace, labelSelector string, tailLines int) ([]string, error) {
			assert.Equal(t, "kube-system", namespace)
			assert.Equal(t, "app.kubernetes.io/instance=ingress", labelSelector)
			assert.Equal(t, 80, tailLines)
			return []string{"(ingress-controller-abc): started"}, nil
		},
	}
	handler := NewHelmRelease(staticFactory(&fakeReleaseClient{}, nil), workloads)

	lines, err := handler.Logs(context.Background(), releaseSpec(map[string]string{AttrNamespace: "kube-system"}), 80)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
