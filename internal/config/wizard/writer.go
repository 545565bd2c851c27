package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anneal-io/anneal/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// If fullOutput is false, values covered by the documented defaults are
// dropped so the file stays short.
func WriteConfig(cfg *config.Config, outputPath string, fullOutput bool) error {
	out := cfg
	if !fullOutput {
		out = buildMinimalConfig(cfg)
	}

	yamlBytes, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath, fullOutput))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// buildMinimalConfig returns a copy of cfg with values the loader would
// fill back in cleared, so the omitempty tags drop them from the YAML.
// Workload must be cleared before Release: its default chains off it.
func buildMinimalConfig(cfg *config.Config) *config.Config {
	out := *cfg

	if out.Cluster.Audience == "sts.amazonaws.com" {
		out.Cluster.Audience = ""
	}
	if out.Ingress.Namespace == "kube-system" {
		out.Ingress.Namespace = ""
	}
	if out.Ingress.ServiceAccount == "ingress-controller" {
		out.Ingress.ServiceAccount = ""
	}
	if out.Ingress.Policy.Name == out.Cluster.Name+"-ingress" {
		out.Ingress.Policy.Name = ""
	}
	if out.Ingress.Chart.Workload == out.Ingress.Chart.Release {
		out.Ingress.Chart.Workload = ""
	}
	if out.Ingress.Chart.Release == out.Ingress.Chart.Name {
		out.Ingress.Chart.Release = ""
	}

	return &out
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string, fullOutput bool) string {
	mode := "minimal"
	note := "\n# Note: This is a minimal config. Use --full flag for all options."
	if fullOutput {
		mode = "full"
		note = ""
	}
	return fmt.Sprintf(`# anneal provisioning configuration
# Generated by: anneal init
# Generated at: %s
# Output mode: %s
# Docs: https://github.com/anneal-io/anneal%s
#
# Required credentials:
#   AWS credentials via the default chain (environment, profile, or IMDS)
#   kubeconfig for the target cluster
#
# Usage:
#   anneal apply -c %s
`, time.Now().Format(time.RFC3339), mode, note, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
