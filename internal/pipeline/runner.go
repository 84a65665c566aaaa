// Package pipeline drives a download run: for every configured tile it
// lists the remote product folders, selects the ones worth fetching and
// copies them locally. A failure on one entry never stops the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/download"
	tferrors "github.com/tilefetch/tilefetch/internal/errors"
	"github.com/tilefetch/tilefetch/internal/logger"
	"github.com/tilefetch/tilefetch/internal/selection"
	"github.com/tilefetch/tilefetch/internal/tile"
)

// Copier copies an accepted folder into a local tile directory.
type Copier interface {
	Copy(ctx context.Context, folder tile.Folder, localDir string) download.Result
}

// Config holds the run parameters that are not owned by a component.
type Config struct {
	Codes         []tile.Code
	BucketRoot    string
	OutputRoot    string
	Suffix        string
	BenignMarkers []string
	DryRun        bool
}

// Runner processes the configured tiles through listing, selection and
// copy. Build one per run; it is not safe for concurrent use.
type Runner struct {
	Provider cloud.Provider
	Filter   *selection.Filter
	Copier   Copier
	Config   Config
	Log      *logger.Logger

	// OnRegion, when set, is called after each region is processed.
	OnRegion func(code tile.Code, done, total int)
}

// Check verifies the storage backend can be used at all. It is the only
// condition that prevents a run from starting.
func (r *Runner) Check() error {
	if err := cloud.CheckAvailable(r.Provider); err != nil {
		fields := map[string]interface{}{"provider": r.Provider.Name()}
		var te *tferrors.Error
		if errors.As(err, &te) && te.Suggestion != "" {
			fields["hint"] = te.Suggestion
		}
		r.Log.ErrorWith("storage tool is not available", err, fields)
		return err
	}
	r.Log.InfoWith("storage tool is available", map[string]interface{}{"provider": r.Provider.Name()})
	return nil
}

// Run processes every configured region in order and returns the report.
func (r *Runner) Run(ctx context.Context) Report {
	rep := newReport(r.Config.DryRun)
	log := r.Log.With().Str("run_id", rep.RunID).Logger()

	log.InfoWith("run started", map[string]interface{}{
		"regions":  len(r.Config.Codes),
		"provider": r.Provider.Name(),
		"dry_run":  r.Config.DryRun,
		"from":     r.Filter.Window.Oldest(),
		"to":       r.Filter.Window.Newest(),
	})

	total := len(r.Config.Codes)
	for i, code := range r.Config.Codes {
		if ctx.Err() != nil {
			rep.Cancelled = true
			break
		}
		rep.Regions++
		regionLog := log.With().Str("tile", code.String()).Int("tile_index", i+1).Logger()
		r.runRegion(ctx, regionLog, code, &rep)
		if r.OnRegion != nil {
			r.OnRegion(code, i+1, total)
		}
	}

	if ctx.Err() != nil {
		rep.Cancelled = true
		log.Warn("run cancelled, remaining entries not processed")
	}

	rep.Duration = time.Since(rep.Started)
	log.InfoWith("run finished", map[string]interface{}{
		"copied":      rep.Copied,
		"copy_failed": rep.CopyFailed,
		"accepted":    rep.Accepted(),
		"skipped":     rep.Skipped(),
		"panics":      rep.Panics,
		"duration":    rep.Duration.Round(time.Millisecond).String(),
	})
	return rep
}

func (r *Runner) runRegion(ctx context.Context, log *logger.Logger, code tile.Code, rep *Report) {
	log.Infof("=== processing tile %s ===", code)

	prefix := code.RemotePrefix(r.Config.BucketRoot)
	entries := cloud.ListProducts(ctx, r.Provider, prefix, r.Config.Suffix, r.Config.BenignMarkers, log)
	rep.Listed += len(entries)

	for _, uri := range entries {
		if ctx.Err() != nil {
			return
		}
		r.runEntry(ctx, log, code, uri, rep)
	}
}

func (r *Runner) runEntry(ctx context.Context, log *logger.Logger, code tile.Code, uri string, rep *Report) {
	defer func() {
		if p := recover(); p != nil {
			rep.Panics++
			rep.fail(uri, fmt.Errorf("panic: %v", p))
			log.ErrorWith("unexpected failure while processing entry", nil, map[string]interface{}{
				"uri":   uri,
				"panic": fmt.Sprint(p),
			})
		}
	}()

	folder, err := tile.ParseFolder(uri)
	if err != nil {
		rep.Undated++
		log.Debugf("no acquisition date in %s, skipping", uri)
		return
	}

	d := r.Filter.Decide(ctx, folder, code, r.Config.OutputRoot)
	rep.Verdicts[d.Verdict]++
	if d.Verdict != selection.Accept {
		return
	}

	if r.Config.DryRun {
		log.Infof("dry run: would copy %s to %s", folder.URI, d.LocalDir)
		return
	}

	if err := os.MkdirAll(d.LocalDir, 0755); err != nil {
		werr := tferrors.WrapWithDetection(err, "could not create local directory").WithTarget(d.LocalDir)
		rep.CopyFailed++
		rep.fail(uri, werr)
		log.ErrorWith("could not create local directory", werr, map[string]interface{}{
			"dir":  d.LocalDir,
			"hint": werr.Suggestion,
		})
		return
	}

	res := r.Copier.Copy(ctx, folder, d.LocalDir)
	if !res.OK() {
		rep.CopyFailed++
		rep.fail(uri, res.Err)
		return
	}
	rep.Copied++
}
