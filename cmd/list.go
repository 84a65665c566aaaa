package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tilefetch/tilefetch/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent products per tile (dry-run)",
	Long: `Shows the product folders inside the date window for every configured
tile and whether each one is already downloaded.

No metadata is read and nothing is copied.`,
	RunE: runList,
}

var listDays int

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listDays, "days", 0, "Date window size in days (default from config)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("days") {
		cfg.Days = listDays
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner, err := newRunner(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := runner.Check(); err != nil {
		printToolError(err)
		return nil
	}

	w := runner.Filter.Window
	fmt.Fprintf(ui.Out, "📋 Products from %s to %s\n", w.Oldest(), w.Newest())
	fmt.Fprintln(ui.Out, "==================================")

	candidates := runner.Scan(ctx)
	byTile := make(map[string]int)
	for _, c := range candidates {
		byTile[c.Code.String()]++
	}

	pending := 0
	for _, code := range runner.Config.Codes {
		n := byTile[code.String()]
		if n == 0 {
			ui.PrintDim("%s: none", code)
			continue
		}
		fmt.Fprintf(ui.Out, "\n🗺  %s (%d found):\n", ui.Bold(code.String()), n)
		for _, c := range candidates {
			if c.Code != code {
				continue
			}
			if c.Downloaded {
				fmt.Fprintf(ui.Out, "  %s %s %s\n", ui.Success(ui.IconSuccess), c.Folder.Name, ui.Dim("(downloaded)"))
			} else {
				pending++
				fmt.Fprintf(ui.Out, "  %s %s\n", ui.Info("•"), c.Folder.Name)
			}
			ui.PrintVerbose("%s -> %s", c.Folder.URI, c.LocalPath)
		}
	}

	fmt.Fprintln(ui.Out)
	ui.PrintInfo("%d products in window, %d not downloaded yet", len(candidates), pending)
	return nil
}
