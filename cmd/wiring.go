package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/config"
	"github.com/tilefetch/tilefetch/internal/datewindow"
	"github.com/tilefetch/tilefetch/internal/download"
	"github.com/tilefetch/tilefetch/internal/logger"
	"github.com/tilefetch/tilefetch/internal/metadata"
	"github.com/tilefetch/tilefetch/internal/pipeline"
	"github.com/tilefetch/tilefetch/internal/selection"
	"github.com/tilefetch/tilefetch/internal/ui"
)

var timeNow = time.Now

// newLogger builds the run logger. Console logs are only shown in verbose
// mode; otherwise they go to the log file alone and the console carries the
// ui output.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	var console io.Writer = io.Discard
	if ui.Verbose {
		console = os.Stderr
	}
	return logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     console,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

// newRunner wires the pipeline components from configuration.
func newRunner(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pipeline.Runner, error) {
	codes, err := cfg.Codes()
	if err != nil {
		return nil, err
	}

	provider, err := cloud.NewProvider(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage provider: %w", err)
	}

	fetcher := metadata.NewFetcher(provider, cfg.Metadata.File, cfg.Metadata.Fields, log)
	fetcher.ScratchDir = cfg.Metadata.ScratchDir

	return &pipeline.Runner{
		Provider: provider,
		Filter: &selection.Filter{
			Window:    datewindow.New(cfg.Days, timeNow()),
			Cover:     fetcher,
			Threshold: cfg.Threshold,
			CloudGate: cfg.CloudGate,
			Log:       log,
			Exists:    download.ExistsFunc(cfg.Download.Marker),
		},
		Copier: download.NewCopier(provider, cfg.Download.Marker, log),
		Config: pipeline.Config{
			Codes:         codes,
			BucketRoot:    cfg.BucketRoot,
			OutputRoot:    cfg.OutputRoot,
			Suffix:        cfg.Suffix,
			BenignMarkers: cfg.BenignMarkers,
			DryRun:        cfg.Download.DryRun,
		},
		Log: log,
	}, nil
}
