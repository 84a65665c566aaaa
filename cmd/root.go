package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tilefetch/tilefetch/internal/config"
	tferrors "github.com/tilefetch/tilefetch/internal/errors"
	"github.com/tilefetch/tilefetch/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "tilefetch",
	Short: "Download recent, cloud-free Sentinel-2 tiles",
	Long: `tilefetch mirrors recent Sentinel-2 Level-2A products from the public
archive to local storage.

For every configured MGRS tile it:
  - Lists the product folders under the tile prefix
  - Keeps those acquired within the last N days (default 15)
  - Skips products already downloaded
  - Reads the cloud cover from the product metadata and keeps clear scenes
  - Copies the accepted products with 'gcloud storage cp -r'

Settings come from tilefetch.yaml, a .env file and TILEFETCH_* variables.`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is the normal case
		_ = godotenv.Load()
		ui.Verbose = verbose
	},
}

var (
	configPath string
	verbose    bool
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printCommandError(err)
		os.Exit(1)
	}
}

// printCommandError reports a failed command, with the fix for
// configuration problems.
func printCommandError(err error) {
	var te *tferrors.Error
	if tferrors.IsConfigError(err) && errors.As(err, &te) {
		ui.PrintErrorWithSolution(err.Error(), te.Suggestion, te.Alternative)
		return
	}
	fmt.Fprintln(os.Stderr, ui.Error(ui.IconError), err)
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./tilefetch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with debug logging")
}

// loadConfig loads and validates the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}
