package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anneal-io/anneal/internal/config"
	"github.com/anneal-io/anneal/internal/config/wizard"
)

// saveAndRestoreInitFactories saves and restores init factory functions.
func saveAndRestoreInitFactories(t *testing.T) {
	origFileExists := wizardFileExists
	origConfirmOverwrite := wizardConfirmOverwrite
	origRunWizard := wizardRunWizard
	origBuildConfig := wizardBuildConfig
	origWriteConfig := wizardWriteConfig

	t.Cleanup(func() {
		wizardFileExists = origFileExists
		wizardConfirmOverwrite = origConfirmOverwrite
		wizardRunWizard = origRunWizard
		wizardBuildConfig = origBuildConfig
		wizardWriteConfig = origWriteConfig
	})
}

func validWizardResult() *wizard.WizardResult {
	return &wizard.WizardResult{
		ClusterName:    "fleet-a",
		OIDCIssuer:     "https://oidc.eks.eu-central-1.amazonaws.com/id/EXAMPLE",
		Region:         "eu-central-1",
		Controller:     wizard.ControllerNginx,
		ChartRepo:      "https://kubernetes.github.io/ingress-nginx",
		ChartName:      "ingress-nginx",
		ChartVersion:   "4.11.2",
		Namespace:      "kube-system",
		ServiceAccount: "ingress-controller",
		RoleARN:        "arn:aws:iam::123456789012:role/fleet-a-ingress",
		PolicyDocument: `{"Version": "2012-10-17", "Statement": []}`,
		SubnetIDs:      []string{"subnet-0a1b2c3d", "subnet-4e5f6a7b"},
		SubnetRole:     wizard.SubnetRolePublic,
	}
}

func TestPrintWelcome(t *testing.T) {
	t.Run("basic mode", func(t *testing.T) {
		output := captureOutput(func() {
			printWelcome(false, false)
		})

		assert.Contains(t, output, "anneal - ingress prerequisites")
		assert.Contains(t, output, "This wizard will help you create")
		assert.NotContains(t, output, "advanced mode")
		assert.Contains(t, output, "Minimal output mode")
	})

	t.Run("advanced mode", func(t *testing.T) {
		output := captureOutput(func() {
			printWelcome(true, false)
		})

		assert.Contains(t, output, "Running in advanced mode")
	})

	t.Run("full output mode", func(t *testing.T) {
		output := captureOutput(func() {
			printWelcome(false, true)
		})

		assert.Contains(t, output, "Full output mode")
		assert.NotContains(t, output, "Minimal output mode")
	})
}

func TestPrintInitSuccess(t *testing.T) {
	t.Run("with subnets", func(t *testing.T) {
		result := validWizardResult()

		output := captureOutput(func() {
			printInitSuccess("anneal.yaml", result, false)
		})

		assert.Contains(t, output, "Configuration saved successfully")
		assert.Contains(t, output, "anneal.yaml")
		assert.Contains(t, output, "fleet-a")
		assert.Contains(t, output, "eu-central-1")
		assert.Contains(t, output, "ingress-nginx 4.11.2")
		assert.Contains(t, output, "kube-system/ingress-controller")
		assert.Contains(t, output, "2 tagged kubernetes.io/role/elb")
		assert.Contains(t, output, "Subnet role tags")
		assert.Contains(t, output, "anneal apply")
		assert.Contains(t, output, "anneal plan")
	})

	t.Run("without subnets", func(t *testing.T) {
		result := validWizardResult()
		result.SubnetIDs = nil

		output := captureOutput(func() {
			printInitSuccess("anneal.yaml", result, false)
		})

		assert.NotContains(t, output, "Subnet role tags")
		assert.NotContains(t, output, "tagged kubernetes.io/role")
	})

	t.Run("minimal output hint", func(t *testing.T) {
		output := captureOutput(func() {
			printInitSuccess("anneal.yaml", validWizardResult(), false)
		})

		assert.Contains(t, output, "minimal output")
		assert.Contains(t, output, "--full")
	})

	t.Run("full output mode", func(t *testing.T) {
		output := captureOutput(func() {
			printInitSuccess("anneal.yaml", validWizardResult(), true)
		})

		assert.NotContains(t, output, "minimal output")
		assert.NotContains(t, output, "--full")
	})
}

func TestPrintInitSuccess_OutputPath(t *testing.T) {
	customPath := "/custom/path/config.yaml"
	output := captureOutput(func() {
		printInitSuccess(customPath, validWizardResult(), false)
	})

	// The path appears in the file location and both follow-up commands.
	assert.True(t, strings.Count(output, customPath) >= 3,
		"Output path should appear in the file location and the plan/apply commands")
}

func TestInit_WithInjection(t *testing.T) {
	saveAndRestoreInitFactories(t)

	t.Run("success flow - new file", func(t *testing.T) {
		wizardFileExists = func(_ string) bool { return false }

		wizardRunWizard = func(_ context.Context, _ bool) (*wizard.WizardResult, error) {
			return validWizardResult(), nil
		}

		wizardBuildConfig = func(_ *wizard.WizardResult) *config.Config {
			return testConfig()
		}

		var wrotePath string
		wizardWriteConfig = func(_ *config.Config, path string, _ bool) error {
			wrotePath = path
			return nil
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "anneal.yaml", false, false)
			require.NoError(t, err)
		})

		assert.Equal(t, "anneal.yaml", wrotePath)
	})

	t.Run("success flow - overwrite confirmed", func(t *testing.T) {
		wizardFileExists = func(_ string) bool { return true }

		wizardConfirmOverwrite = func(_ string) (bool, error) { return true, nil }

		wizardRunWizard = func(_ context.Context, _ bool) (*wizard.WizardResult, error) {
			return validWizardResult(), nil
		}

		wizardBuildConfig = func(_ *wizard.WizardResult) *config.Config {
			return testConfig()
		}

		wizardWriteConfig = func(_ *config.Config, _ string, _ bool) error { return nil }

		_ = captureOutput(func() {
			err := Init(context.Background(), "existing.yaml", false, false)
			require.NoError(t, err)
		})
	})

	t.Run("user aborts overwrite", func(t *testing.T) {
		wizardFileExists = func(_ string) bool { return true }

		wizardConfirmOverwrite = func(_ string) (bool, error) {
			return false, nil // User says no
		}

		wizardWriteConfig = func(_ *config.Config, _ string, _ bool) error {
			t.Error("config must not be written after an aborted overwrite")
			return nil
		}

		output := captureOutput(func() {
			err := Init(context.Background(), "existing.yaml", false, false)
			require.NoError(t, err) // Abort is not an error
		})

		assert.Contains(t, output, "Aborted")
	})

	t.Run("confirm overwrite error", func(t *testing.T) {
		wizardFileExists = func(_ string) bool { return true }

		wizardConfirmOverwrite = func(_ string) (bool, error) {
			return false, errors.New("terminal not interactive")
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "existing.yaml", false, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to prompt for confirmation")
		})
	})

	t.Run("wizard error", func(t *testing.T) {
		wizardFileExists = func(_ string) bool { return false }

		wizardRunWizard = func(_ context.Context, _ bool) (*wizard.WizardResult, error) {
			return nil, errors.New("user cancelled")
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "anneal.yaml", false, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "wizard failed")
		})
	})

	t.Run("write config error", func(t *testing.T) {
		wizardFileExists = func(_ string) bool { return false }

		wizardRunWizard = func(_ context.Context, _ bool) (*wizard.WizardResult, error) {
			return validWizardResult(), nil
		}

		wizardBuildConfig = func(_ *wizard.WizardResult) *config.Config {
			return testConfig()
		}

		wizardWriteConfig = func(_ *config.Config, _ string, _ bool) error {
			return errors.New("permission denied")
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "/readonly/anneal.yaml", false, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to write config")
		})
	})

	t.Run("advanced mode passes through", func(t *testing.T) {
		var capturedAdvanced bool

		wizardFileExists = func(_ string) bool { return false }

		wizardRunWizard = func(_ context.Context, advanced bool) (*wizard.WizardResult, error) {
			capturedAdvanced = advanced
			return validWizardResult(), nil
		}

		wizardBuildConfig = func(_ *wizard.WizardResult) *config.Config {
			return testConfig()
		}

		wizardWriteConfig = func(_ *config.Config, _ string, _ bool) error { return nil }

		_ = captureOutput(func() {
			err := Init(context.Background(), "anneal.yaml", true, false)
			require.NoError(t, err)
		})

		assert.True(t, capturedAdvanced)
	})

	t.Run("full output passes through", func(t *testing.T) {
		var capturedFull bool

		wizardFileExists = func(_ string) bool { return false }

		wizardRunWizard = func(_ context.Context, _ bool) (*wizard.WizardResult, error) {
			return validWizardResult(), nil
		}

		wizardBuildConfig = func(_ *wizard.WizardResult) *config.Config {
			return testConfig()
		}

		wizardWriteConfig = func(_ *config.Config, _ string, fullOutput bool) error {
			capturedFull = fullOutput
			return nil
		}

		_ = captureOutput(func() {
			err := Init(context.Background(), "anneal.yaml", false, true)
			require.NoError(t, err)
		})

		assert.True(t, capturedFull)
	})
}
