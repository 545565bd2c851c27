package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/anneal-io/anneal/internal/provision"
	"github.com/anneal-io/anneal/internal/reporting"
)

// Plan probes every configured resource and prints the actions a run would
// take. Nothing is mutated; probe failures show up as rows in the preview
// instead of aborting it.
func Plan(ctx context.Context, configPath, output string) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
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

	log.Printf("Planning %d resources for cluster %s", len(specs), cfg.Cluster.Name)

	engine := newEngine(registry, provision.NewNopObserver(), cfg.EngineOptions(loadTimeouts()))
	actions, err := engine.Plan(ctx, specs)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	formatter := reporting.NewFormatter()
	if output == "json" {
		fmt.Println(formatter.FormatPlanJSON(actions))
		return nil
	}
	fmt.Print(formatter.FormatPlan(actions))
	return nil
}
