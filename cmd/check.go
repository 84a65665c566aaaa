package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the storage backend is usable",
	Long: `Verifies the configured storage backend can be used: for the gcloud
backend the CLI must be on PATH (or at storage.tool).`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := cloud.NewProvider(cmd.Context(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage provider: %w", err)
	}

	if err := cloud.CheckAvailable(provider); err != nil {
		printToolError(err)
		return fmt.Errorf("%s is not available", provider.Name())
	}

	ui.PrintSuccess("%s is available", provider.Name())
	ui.PrintVerbose("bucket root: %s", cfg.BucketRoot)
	ui.PrintVerbose("output root: %s", cfg.OutputRoot)
	return nil
}
