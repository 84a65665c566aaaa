package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilefetch/tilefetch/internal/config"
	tferrors "github.com/tilefetch/tilefetch/internal/errors"
	"github.com/tilefetch/tilefetch/internal/pipeline"
	"github.com/tilefetch/tilefetch/internal/selection"
	"github.com/tilefetch/tilefetch/internal/tile"
	"github.com/tilefetch/tilefetch/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download new products for every configured tile",
	Long: `Processes every configured tile in order. For each product folder in
the date window that is not on disk yet, the cloud cover is read from the
product metadata and the folder is copied when it is at or below the
threshold.

A failure on one product or tile is logged and the run moves on. Press
Ctrl+C to stop after the current product.`,
	RunE: runRun,
}

var (
	runDryRun      bool
	runNoCloudGate bool
	runDays        int
	runThreshold   float64
	runOutput      string
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Select products but do not copy them")
	runCmd.Flags().BoolVar(&runNoCloudGate, "no-cloud-gate", false, "Download every recent product regardless of cloud cover")
	runCmd.Flags().IntVar(&runDays, "days", 0, "Date window size in days (default from config, 15)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 0, "Maximum accepted cloud cover percentage (default from config, 30)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output root directory (default from config, Output_GCS)")
}

// applyRunFlags overlays explicitly set flags on cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		cfg.Download.DryRun = runDryRun
	}
	if flags.Changed("no-cloud-gate") {
		cfg.CloudGate = !runNoCloudGate
	}
	if flags.Changed("days") {
		cfg.Days = runDays
	}
	if flags.Changed("threshold") {
		cfg.Threshold = runThreshold
	}
	if flags.Changed("output") {
		cfg.OutputRoot = runOutput
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := newRunner(ctx, cfg, log)
	if err != nil {
		return err
	}

	if err := runner.Check(); err != nil {
		// a missing tool ends the run quietly, there is nothing to retry
		printToolError(err)
		return nil
	}

	ui.PrintHeader(fmt.Sprintf("🛰  tilefetch: %d tiles, last %d days, cloud cover ≤ %.1f%%",
		len(runner.Config.Codes), cfg.Days, cfg.Threshold))
	if cfg.Download.DryRun {
		ui.PrintWarning("Dry run: nothing will be copied")
	}
	if !cfg.CloudGate {
		ui.PrintWarning("Cloud gate disabled: every recent product will be copied")
	}

	switch {
	case ui.ShowProgress():
		bar := ui.NewProgressBar(len(runner.Config.Codes), "Tiles")
		runner.OnRegion = func(code tile.Code, done, total int) {
			bar.Describe(code.String())
			_ = bar.Add(1)
		}
	case ui.Verbose:
		runner.OnRegion = func(code tile.Code, done, total int) {
			ui.PrintVerbose("finished %s (%d/%d)", code, done, total)
		}
	}

	rep := runner.Run(ctx)
	printReport(rep, cfg)

	if rep.Cancelled {
		return errors.New("run interrupted")
	}
	return nil
}

func printToolError(err error) {
	var te *tferrors.Error
	if tferrors.IsToolNotFound(err) && errors.As(err, &te) {
		ui.PrintErrorWithSolution(te.Message, te.Suggestion, te.Alternative)
		return
	}
	ui.PrintError("%v", err)
}

func printReport(rep pipeline.Report, cfg *config.Config) {
	ui.PrintSectionHeader("📊", "Run summary")
	ui.PrintSummaryTable([]ui.Row{
		{Key: "Run ID", Value: rep.RunID},
		{Key: "Tiles processed", Value: fmt.Sprint(rep.Regions)},
		{Key: "Folders listed", Value: fmt.Sprint(rep.Listed)},
		{Key: "Undated", Value: fmt.Sprint(rep.Undated)},
		{Key: "Out of window", Value: fmt.Sprint(rep.Verdicts[selection.SkipOutOfWindow])},
		{Key: "Already downloaded", Value: fmt.Sprint(rep.Verdicts[selection.SkipExisting])},
		{Key: "Unknown cover", Value: fmt.Sprint(rep.Verdicts[selection.SkipUnknownCover])},
		{Key: "Too cloudy", Value: fmt.Sprint(rep.Verdicts[selection.RejectCloudy])},
		{Key: "Accepted", Value: fmt.Sprint(rep.Accepted())},
		{Key: "Copied", Value: ui.Success(rep.Copied)},
		{Key: "Copy failures", Value: failureCount(rep.CopyFailed)},
		{Key: "Unexpected errors", Value: failureCount(rep.Panics)},
		{Key: "Duration", Value: rep.Duration.Round(time.Millisecond).String()},
	})

	for _, f := range rep.Failures {
		ui.PrintError("%s: %v", ui.TruncateMiddle(f.URI, 90), f.Err)
		var te *tferrors.Error
		if errors.As(f.Err, &te) && te.Suggestion != "" {
			ui.PrintDim("🔧 %s", te.Suggestion)
		}
	}

	switch {
	case rep.Cancelled:
		ui.PrintWarning("Run interrupted before all tiles were processed")
	case rep.DryRun:
		ui.PrintInfo("Dry run finished: %d products would be copied to %s", rep.Accepted(), cfg.OutputRoot)
	case rep.OK():
		ui.PrintSuccess("Run complete: %d products copied to %s", rep.Copied, cfg.OutputRoot)
	default:
		ui.PrintWarning("Run finished with %d failures, see %s", len(rep.Failures), cfg.Log.File)
	}
}

func failureCount(n int) string {
	if n == 0 {
		return "0"
	}
	return ui.Error(n)
}
