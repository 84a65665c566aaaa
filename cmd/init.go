package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tilefetch/tilefetch/internal/config"
	"github.com/tilefetch/tilefetch/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up a tilefetch working directory",
	Long: `Initialize tilefetch in the current directory by creating what a run
needs if it doesn't already exist:
  - tilefetch.yaml (configuration file)
  - the output root (Output_GCS by default)
  - the log directory (logs/ by default)`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.FileName
	}

	var cfg *config.Config
	if _, err := os.Stat(path); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		fmt.Fprintf(ui.Out, "✓ Config already exists: %s\n", path)
	} else {
		cfg = config.Default()
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Fprintf(ui.Out, "✓ Created config: %s\n", path)
	}

	dirs := []string{cfg.OutputRoot}
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Fprintf(ui.Out, "✓ Directory already exists: %s\n", dir)
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		fmt.Fprintf(ui.Out, "✓ Created directory: %s\n", dir)
	}

	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "Next steps:")
	fmt.Fprintf(ui.Out, "  %s   check the gcloud CLI is installed\n", ui.Info("tilefetch check"))
	fmt.Fprintf(ui.Out, "  %s    preview recent products\n", ui.Info("tilefetch list"))
	fmt.Fprintf(ui.Out, "  %s     download them\n", ui.Info("tilefetch run"))
	return nil
}
