package handlers

import (
	"context"
	"fmt"

	"github.com/anneal-io/anneal/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	// wizardFileExists checks if a file exists.
	wizardFileExists = wizard.FileExists

	// wizardConfirmOverwrite prompts before clobbering an existing file.
	wizardConfirmOverwrite = wizard.ConfirmOverwrite

	// wizardRunWizard runs the interactive wizard.
	wizardRunWizard = wizard.RunWizard

	// wizardBuildConfig converts wizard answers into a config.
	wizardBuildConfig = wizard.BuildConfig

	// wizardWriteConfig writes the config to a file.
	wizardWriteConfig = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string, advanced, fullOutput bool) error {
	if wizardFileExists(outputPath) {
		confirmed, err := wizardConfirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to prompt for confirmation: %w", err)
		}
		if !confirmed {
			fmt.Println("Aborted. The existing file was left untouched.")
			return nil
		}
	}

	printWelcome(advanced, fullOutput)

	result, err := wizardRunWizard(ctx, advanced)
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	cfg := wizardBuildConfig(result)

	if err := wizardWriteConfig(cfg, outputPath, fullOutput); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, result, fullOutput)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome(advanced, fullOutput bool) {
	fmt.Println()
	fmt.Println("anneal - ingress prerequisites for AWS-backed clusters")
	fmt.Println("=======================================================")
	fmt.Println()
	fmt.Println("This wizard will help you create a provisioning configuration.")
	fmt.Println("It covers the cluster identity, the controller chart, the IAM")
	fmt.Println("surface, and the subnets to tag.")
	if advanced {
		fmt.Println()
		fmt.Println("Running in advanced mode: engine tuning and diagnostics")
		fmt.Println("archiving are included.")
	}
	fmt.Println()
	if fullOutput {
		fmt.Println("Full output mode: every option is written, including defaults.")
	} else {
		fmt.Println("Minimal output mode: defaults are omitted. Use --full for everything.")
	}
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, result *wizard.WizardResult, fullOutput bool) {
	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	// Summary
	fmt.Println("Provisioning Summary")
	fmt.Println("--------------------")
	fmt.Printf("  Cluster:         %s\n", result.ClusterName)
	fmt.Printf("  Region:          %s\n", result.Region)
	fmt.Printf("  OIDC Issuer:     %s\n", result.OIDCIssuer)
	fmt.Printf("  Chart:           %s %s\n", result.ChartName, result.ChartVersion)
	fmt.Printf("  Binding:         %s/%s\n", result.Namespace, result.ServiceAccount)
	if len(result.SubnetIDs) > 0 {
		fmt.Printf("  Subnets:         %d tagged %s\n", len(result.SubnetIDs), wizard.SubnetRoleTag(result.SubnetRole))
	}
	fmt.Println()

	// What a run will manage
	fmt.Println("Resources To Provision")
	fmt.Println("----------------------")
	fmt.Println("  - IAM OIDC identity provider (cluster issuer trust)")
	fmt.Println("  - IAM policy (controller permissions)")
	fmt.Println("  - Service account binding (IRSA role annotation)")
	if len(result.SubnetIDs) > 0 {
		fmt.Println("  - Subnet role tags")
	}
	fmt.Println("  - Controller Helm release (watched until rolled out)")
	fmt.Println()

	// Next steps
	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Make sure AWS credentials are available:")
	fmt.Println("     export AWS_PROFILE=<profile>")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Preview the run:")
	fmt.Printf("     anneal plan -c %s\n", outputPath)
	fmt.Println()
	fmt.Println("  4. Converge the environment:")
	fmt.Printf("     anneal apply -c %s\n", outputPath)
	fmt.Println()

	if !fullOutput {
		fmt.Println("  Note: minimal output was written. Re-run with --full to include")
		fmt.Println("  every option for manual editing.")
		fmt.Println()
	}
}
