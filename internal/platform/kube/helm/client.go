// Package helm installs and inspects Helm releases without shelling out to
// the helm binary.
package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage/driver"

	"github.com/anneal-io/anneal/internal/util/ownership"
)

// hookTimeout bounds chart hook execution during install, upgrade, and
// uninstall. The workload rollout itself is not waited on here; convergence
// is polled by the caller.
const hookTimeout = 5 * time.Minute

// ReleaseSpec describes one chart installation.
type ReleaseSpec struct {
	Name    string
	RepoURL string
	Chart   string
	Version string
	Values  map[string]interface{}
}

// ReleaseInfo is the observed state of an installed release.
type ReleaseInfo struct {
	Name         string
	Namespace    string
	Revision     int
	ChartName    string
	ChartVersion string
	Status       string
	Values       map[string]interface{}
	Labels       map[string]string
}

// ChartLoader resolves a chart reference to a loaded chart.
type ChartLoader func(repoURL, name, version string) (*chart.Chart, error)

// Client runs Helm actions against one namespace.
type Client struct {
	namespace    string
	actionConfig *action.Configuration
	loadChart    ChartLoader
}

// NewClient builds a Helm client from kubeconfig bytes. Release state is
// stored in secrets, matching the helm CLI default.
func NewClient(kubeconfig []byte, namespace string) (*Client, error) {
	actionConfig := new(action.Configuration)
	restGetter := newKubeConfigGetter(kubeconfig, namespace)

	if err := actionConfig.Init(restGetter, namespace, "secret", func(string, ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return &Client{
		namespace:    namespace,
		actionConfig: actionConfig,
		loadChart:    fetchChart,
	}, nil
}

// NewClientWithConfig wraps a pre-built action configuration and chart
// loader. Tests use this with helm's in-memory storage driver.
func NewClientWithConfig(actionConfig *action.Configuration, namespace string, loadChart ChartLoader) *Client {
	return &Client{
		namespace:    namespace,
		actionConfig: actionConfig,
		loadChart:    loadChart,
	}
}

// InstallOrUpgrade converges the release onto the spec, installing on first
// contact and upgrading afterwards. It returns once the manifests are
// applied.
func (c *Client) InstallOrUpgrade(ctx context.Context, spec ReleaseSpec) (*ReleaseInfo, error) {
	chrt, err := c.loadChart(spec.RepoURL, spec.Chart, spec.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", spec.Chart, err)
	}

	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(spec.Name); err != nil {
		if !errors.Is(err, driver.ErrReleaseNotFound) {
			return nil, fmt.Errorf("failed to read history of release %s: %w", spec.Name, err)
		}
		return c.install(ctx, spec, chrt)
	}
	return c.upgrade(ctx, spec, chrt)
}

func (c *Client) install(ctx context.Context, spec ReleaseSpec, chrt *chart.Chart) (*ReleaseInfo, error) {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = spec.Name
	installClient.Namespace = c.namespace
	installClient.CreateNamespace = true
	installClient.Version = spec.Version
	installClient.Wait = false
	installClient.Timeout = hookTimeout
	installClient.Labels = ownership.Labels()

	rel, err := installClient.RunWithContext(ctx, chrt, spec.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to install release %s: %w", spec.Name, err)
	}
	return releaseInfo(rel), nil
}

func (c *Client) upgrade(ctx context.Context, spec ReleaseSpec, chrt *chart.Chart) (*ReleaseInfo, error) {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = c.namespace
	upgradeClient.Version = spec.Version
	upgradeClient.Wait = false
	upgradeClient.Timeout = hookTimeout
	upgradeClient.ReuseValues = false
	upgradeClient.MaxHistory = 10
	upgradeClient.Labels = ownership.Labels()

	rel, err := upgradeClient.RunWithContext(ctx, spec.Name, chrt, spec.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade release %s: %w", spec.Name, err)
	}
	return releaseInfo(rel), nil
}

// ReleaseStatus returns the latest revision of the release, or nil when no
// release with that name exists.
func (c *Client) ReleaseStatus(name string) (*ReleaseInfo, error) {
	getClient := action.NewGet(c.actionConfig)
	rel, err := getClient.Run(name)
	if err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get release %s: %w", name, err)
	}
	return releaseInfo(rel), nil
}

// Uninstall removes the release and its history. A release that does not
// exist is not an error.
func (c *Client) Uninstall(name string) error {
	uninstallClient := action.NewUninstall(c.actionConfig)
	uninstallClient.Wait = false
	uninstallClient.Timeout = hookTimeout

	_, err := uninstallClient.Run(name)
	if err != nil && !errors.Is(err, driver.ErrReleaseNotFound) {
		return fmt.Errorf("failed to uninstall release %s: %w", name, err)
	}
	return nil
}

func releaseInfo(rel *release.Release) *ReleaseInfo {
	info := &ReleaseInfo{
		Name:      rel.Name,
		Namespace: rel.Namespace,
		Revision:  rel.Version,
		Values:    rel.Config,
		Labels:    rel.Labels,
	}
	if rel.Chart != nil && rel.Chart.Metadata != nil {
		info.ChartName = rel.Chart.Metadata.Name
		info.ChartVersion = rel.Chart.Metadata.Version
	}
	if rel.Info != nil {
		info.Status = rel.Info.Status.String()
	}
	return info
}

// fetchChart downloads a chart archive from an HTTP repository and loads
// it. The archive is removed once loaded.
func fetchChart(repoURL, name, version string) (*chart.Chart, error) {
	settings := cli.New()

	chartPath, err := repo.FindChartInRepoURL(repoURL, name, version, "", "", "", getter.All(settings))
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", name, repoURL, err)
	}
	defer func() {
		_ = os.Remove(chartPath)
	}()

	return loader.Load(chartPath)
}
