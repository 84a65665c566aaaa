package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tilefetch/tilefetch/internal/config"
	"github.com/tilefetch/tilefetch/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tilefetch configuration",
	Long: `Manage the tilefetch configuration file (./tilefetch.yaml).

The config command provides subcommands to:
  - Initialize a default configuration file
  - Display the effective configuration
  - Show the config file path

Any value can also be overridden with a TILEFETCH_* environment variable,
for example TILEFETCH_DAYS=7 or TILEFETCH_STORAGE_TOOL=/usr/local/bin/gcloud.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long: `Creates a default configuration file at ./tilefetch.yaml (or --config).

If the file already exists, it will not be overwritten unless --force is used.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long:  `Displays the effective configuration, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Displays the path of the configuration file in use.`,
	RunE:  runConfigPath,
}

var (
	configForce bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite existing configuration file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.FileName
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("configuration file already exists at %s\nUse --force to overwrite", path)
	}

	cfg := config.Default()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	ui.PrintSuccess("Configuration file created at %s", path)
	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "📝 Default configuration includes:")
	fmt.Fprintf(ui.Out, "   • %d tiles in zones 23K and 24K\n", len(cfg.Regions))
	fmt.Fprintf(ui.Out, "   • Products from the last %d days\n", cfg.Days)
	fmt.Fprintf(ui.Out, "   • Cloud cover at most %.0f%%\n", cfg.Threshold)
	fmt.Fprintf(ui.Out, "   • Output to %s, logs in %s\n", cfg.OutputRoot, cfg.Log.File)
	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "View current configuration:")
	fmt.Fprintf(ui.Out, "  %s\n", ui.Info("tilefetch config show"))

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ui.PrintSectionHeader("⚙️", "Current Configuration")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	fmt.Fprintln(ui.Out, string(data))

	if path := config.Path(configPath); path == "" {
		fmt.Fprintf(ui.Out, "%s Using default configuration (no config file found)\n", ui.Info("📝"))
		fmt.Fprintf(ui.Out, "   Create one with: %s\n", ui.Info("tilefetch config init"))
	} else {
		fmt.Fprintf(ui.Out, "%s Configuration loaded from: %s\n", ui.Info("📝"), path)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintWarning("Configuration is not valid: %v", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := config.Path(configPath)
	if path == "" {
		path = config.FileName
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fmt.Fprintln(ui.Out, abs)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "\n%s File does not exist. Create it with: tilefetch config init\n", ui.Warning("⚠️"))
	}

	return nil
}
