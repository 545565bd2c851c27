// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/anneal-io/anneal/internal/config"
	"github.com/anneal-io/anneal/internal/platform/aws"
	"github.com/anneal-io/anneal/internal/platform/kube"
	"github.com/anneal-io/anneal/internal/platform/kube/helm"
	"github.com/anneal-io/anneal/internal/platform/s3"
	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/reporting"
	"github.com/anneal-io/anneal/internal/resources"
	"github.com/anneal-io/anneal/internal/ui/tui"
)

const defaultConfigFile = "anneal.yaml"

// Runner interface for testing - matches provision.Engine.
type Runner interface {
	Run(ctx context.Context, specs []provision.ResourceSpec) (*provision.Report, error)
	Plan(ctx context.Context, specs []provision.ResourceSpec) ([]provision.PlannedAction, error)
}

// awsAPI is the slice of the AWS client the resource handlers consume.
type awsAPI interface {
	resources.IdentityProviderAPI
	resources.PolicyAPI
	resources.SubnetAPI
}

// clusterAPI is the slice of the Kubernetes client the resource handlers
// consume.
type clusterAPI interface {
	resources.ServiceAccountAPI
	resources.WorkloadClient
}

// reportArchiver uploads run artifacts to object storage.
type reportArchiver interface {
	EnsureBucket(ctx context.Context) error
	Archive(ctx context.Context, key string, payload []byte) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.Load

	// loadTimeouts reads timeout tuning from ANNEAL_* environment variables.
	loadTimeouts = config.LoadTimeouts

	// buildSpecs expands the config into dependency-ordered resource specs.
	buildSpecs = config.BuildSpecs

	// newAWSClient creates the IAM/EC2 platform client.
	newAWSClient = func(ctx context.Context, opts aws.Options) (awsAPI, error) {
		return aws.NewClient(ctx, opts)
	}

	// newKubeClient creates the cluster platform client.
	newKubeClient = func(kubeconfig []byte) (clusterAPI, error) {
		return kube.NewFromKubeconfig(kubeconfig)
	}

	// newReleaseFactory yields per-namespace Helm clients off one kubeconfig.
	newReleaseFactory = func(kubeconfig []byte) resources.ReleaseClientFactory {
		return func(namespace string) (resources.ReleaseClient, error) {
			return helm.NewClient(kubeconfig, namespace)
		}
	}

	// newEngine creates the provisioning engine.
	newEngine = func(registry *provision.Registry, observer provision.Observer, opts provision.Options) Runner {
		return provision.NewEngine(registry, observer, opts)
	}

	// newArchiver creates the S3 report archiver.
	newArchiver = func(ctx context.Context, opts s3.Options) (reportArchiver, error) {
		return s3.NewArchiver(ctx, opts)
	}

	// runApplyTUI drives the run through the interactive dashboard.
	runApplyTUI = tui.RunApplyTUI

	// readKubeconfig loads kubeconfig bytes (for testing injection).
	readKubeconfig = defaultReadKubeconfig

	// stdoutIsTerminal reports whether stdout is an interactive terminal.
	stdoutIsTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd())
	}
)

// ApplyOptions carries the apply command's flag values.
type ApplyOptions struct {
	// ConfigPath is the configuration file; empty means anneal.yaml.
	ConfigPath string

	// Output selects the report format, text or json.
	Output string

	// ForceReinstall removes owned resources before recreating them.
	ForceReinstall bool

	// NoTUI forces the console observer even when stdout is a terminal.
	NoTUI bool

	// MetricsListen serves Prometheus metrics on this address for the
	// duration of the run, e.g. ":9090". Empty disables the listener.
	MetricsListen string
}

// Apply converges the configured resources and prints a run report.
//
// This function orchestrates the complete provisioning workflow:
//  1. Loads and validates the run configuration
//  2. Expands it into dependency-ordered resource specs
//  3. Builds the AWS and cluster clients and registers the resource handlers
//  4. Runs the engine under the live dashboard or the console observer
//  5. Prints the per-resource report and archives it when configured
//
// The returned error carries the exit code for the run verdict: 0 when
// every resource converged, 2 when best-effort failures were tolerated,
// 1 when a fatal failure aborted the run.
func Apply(ctx context.Context, opts ApplyOptions) error {
	if err := validateOutput(opts.Output); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	specs, err := buildSpecs(cfg)
	if err != nil {
		return fmt.Errorf("failed to expand resource specs: %w", err)
	}

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	engineOpts := cfg.EngineOptions(loadTimeouts())
	engineOpts.ForceReinstall = opts.ForceReinstall
	engineOpts.EnableMetrics = opts.MetricsListen != ""

	if opts.MetricsListen != "" {
		startMetricsServer(opts.MetricsListen)
	}

	report, err := runEngine(ctx, cfg, registry, specs, engineOpts, opts)
	if err != nil {
		return err
	}

	printReport(report, opts.Output)

	if err := archiveReport(ctx, cfg, report); err != nil {
		log.Printf("Failed to archive run report: %v", err)
	}

	return runVerdict(report)
}

// loadConfig loads and validates the run configuration.
// If configPath is empty, it looks for anneal.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = defaultConfigFile
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no config file at %s: %w\nRun 'anneal init' to create one", configPath, err)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Using config: %s", configPath)
	return cfg, nil
}

// validateOutput rejects unknown report formats before any work happens.
func validateOutput(output string) error {
	switch output {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", output)
	}
}

// buildRegistry connects the platform clients and registers a handler for
// every resource kind. The kubeconfig is read once and shared by the typed
// cluster client and the Helm action factory.
func buildRegistry(ctx context.Context, cfg *config.Config) (*provision.Registry, error) {
	awsClient, err := newAWSClient(ctx, aws.Options{
		Region:       cfg.AWS.Region,
		RateLimitRPS: cfg.AWS.RateLimitRPS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS client: %w", err)
	}

	kubeconfig, err := readKubeconfig(cfg.Cluster.Kubeconfig)
	if err != nil {
		return nil, err
	}

	kubeClient, err := newKubeClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build cluster client: %w", err)
	}

	registry := provision.NewRegistry()
	err = resources.RegisterAll(registry, resources.Dependencies{
		IdentityProviders: awsClient,
		Policies:          awsClient,
		Subnets:           awsClient,
		ServiceAccounts:   kubeClient,
		Releases:          newReleaseFactory(kubeconfig),
		Workloads:         kubeClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register resource handlers: %w", err)
	}

	return registry, nil
}

// defaultReadKubeconfig loads kubeconfig bytes from the configured path,
// falling back to the standard client-go resolution ($KUBECONFIG or
// ~/.kube/config).
func defaultReadKubeconfig(configuredPath string) ([]byte, error) {
	if configuredPath == "" {
		configuredPath = clientcmd.NewDefaultClientConfigLoadingRules().GetDefaultFilename()
	}

	// #nosec G304
	data, err := os.ReadFile(configuredPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", configuredPath, err)
	}
	return data, nil
}

// runEngine executes the run under the dashboard when stdout is an
// interactive terminal, falling back to plain console logging otherwise.
// JSON mode always takes the console path so stdout stays parseable.
func runEngine(ctx context.Context, cfg *config.Config, registry *provision.Registry, specs []provision.ResourceSpec, engineOpts provision.Options, opts ApplyOptions) (*provision.Report, error) {
	run := func(runCtx context.Context, observer provision.Observer) (*provision.Report, error) {
		return newEngine(registry, observer, engineOpts).Run(runCtx, specs)
	}

	if useDashboard(opts) {
		return runApplyTUI(ctx, cfg.Cluster.Name, cfg.AWS.Region, specs, run)
	}

	log.Printf("Applying %d resources for cluster %s", len(specs), cfg.Cluster.Name)
	return run(ctx, provision.NewConsoleObserver())
}

// useDashboard reports whether the live TUI should drive the run.
func useDashboard(opts ApplyOptions) bool {
	return !opts.NoTUI && opts.Output != "json" && stdoutIsTerminal()
}

// printReport renders the report to stdout in the requested format. The
// dashboard path prints too, leaving a durable record in the scrollback
// after the alternate screen closes.
func printReport(report *provision.Report, output string) {
	formatter := reporting.NewFormatter()
	if output == "json" {
		fmt.Println(formatter.FormatJSON(report))
		return
	}
	fmt.Print(formatter.Format(report))
}

// archiveReport uploads the JSON report when an archive target is
// configured. Failures here are logged by the caller, never fatal: the
// report has already been printed.
func archiveReport(ctx context.Context, cfg *config.Config, report *provision.Report) error {
	target := cfg.Diagnostics.Archive
	if target == nil {
		return nil
	}

	archiver, err := newArchiver(ctx, s3.Options{
		Bucket:    target.Bucket,
		Prefix:    target.Prefix,
		Region:    target.Region,
		Endpoint:  target.Endpoint,
		AccessKey: target.AccessKey,
		SecretKey: target.SecretKey,
	})
	if err != nil {
		return err
	}

	if err := archiver.EnsureBucket(ctx); err != nil {
		return err
	}

	key := report.RunID + ".json"
	payload := []byte(reporting.NewFormatter().FormatJSON(report))
	if err := archiver.Archive(ctx, key, payload); err != nil {
		return err
	}

	log.Printf("Run report archived to s3://%s/%s", target.Bucket, path.Join(target.Prefix, key))
	return nil
}

// startMetricsServer exposes the Prometheus registry for scraping while the
// run is active. Runs are short-lived, so the listener simply dies with the
// process.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		// #nosec G114
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
}

// runVerdict maps the run status onto the process exit code: 0 for a
// converged run, 2 when best-effort failures were tolerated, 1 when a
// fatal failure aborted the run.
func runVerdict(report *provision.Report) error {
	switch report.Status {
	case provision.RunSuccess:
		return nil
	case provision.RunPartialFailure:
		return &ExitError{Code: 2, Err: fmt.Errorf("run %s finished with status %s", report.RunID, report.Status)}
	default:
		return &ExitError{Code: 1, Err: fmt.Errorf("run %s finished with status %s", report.RunID, report.Status)}
	}
}
