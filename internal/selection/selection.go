// Package selection decides whether a listed product folder should be
// downloaded: it must be recent, not already on disk and, when the cloud
// gate is enabled, clear enough.
package selection

import (
	"context"
	"os"

	"github.com/tilefetch/tilefetch/internal/datewindow"
	"github.com/tilefetch/tilefetch/internal/logger"
	"github.com/tilefetch/tilefetch/internal/metadata"
	"github.com/tilefetch/tilefetch/internal/tile"
)

// DefaultThreshold is the highest accepted cloud-cover percentage.
const DefaultThreshold = 30.0

// Verdict is the disposition of a candidate folder.
type Verdict int

const (
	Accept Verdict = iota
	SkipOutOfWindow
	SkipExisting
	SkipUnknownCover
	RejectCloudy
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case SkipOutOfWindow:
		return "out_of_window"
	case SkipExisting:
		return "already_downloaded"
	case SkipUnknownCover:
		return "unknown_cover"
	case RejectCloudy:
		return "too_cloudy"
	default:
		return "unknown"
	}
}

// Decision carries the verdict and the paths computed on the way.
type Decision struct {
	Verdict   Verdict
	LocalDir  string
	LocalPath string
	Reading   *metadata.Reading // set once the metadata was consulted
}

// CoverReader looks up the cloud cover of a remote folder.
type CoverReader interface {
	CloudCover(ctx context.Context, folderURI string) metadata.Reading
}

// Filter applies the selection rules in order, stopping at the first that
// fails, so the metadata is fetched only for recent folders not yet on disk.
type Filter struct {
	Window    datewindow.Window
	Cover     CoverReader
	Threshold float64
	CloudGate bool
	Log       *logger.Logger

	// Exists reports whether a local path is already present. Defaults to
	// an os.Stat check.
	Exists func(path string) bool
}

// Decide returns the disposition of folder for tile code under outputRoot.
func (f *Filter) Decide(ctx context.Context, folder tile.Folder, code tile.Code, outputRoot string) Decision {
	d := Decision{LocalDir: code.LocalDir(outputRoot)}
	d.LocalPath = folder.LocalPath(d.LocalDir)

	if !f.Window.Contains(folder.Date) {
		f.Log.Debugf("%s dated %s is outside the window", folder.Name, folder.Date)
		d.Verdict = SkipOutOfWindow
		return d
	}

	f.Log.InfoWith("recent folder found", map[string]interface{}{"date": folder.Date, "uri": folder.URI})

	if f.HasLocal(d.LocalPath) {
		f.Log.Infof("local directory already exists, skipping download: %s", d.LocalPath)
		d.Verdict = SkipExisting
		return d
	}

	if !f.CloudGate {
		d.Verdict = Accept
		return d
	}

	reading := f.Cover.CloudCover(ctx, folder.URI)
	d.Reading = &reading

	if !reading.Known() {
		f.Log.WarnWith("could not determine cloud cover, skipping", reading.Err,
			map[string]interface{}{"folder": folder.Name, "outcome": reading.Outcome.String()})
		d.Verdict = SkipUnknownCover
		return d
	}

	if reading.Percent <= f.Threshold {
		f.Log.Infof("cloud cover %.2f%% is within the %.1f%% limit, downloading", reading.Percent, f.Threshold)
		d.Verdict = Accept
		return d
	}

	f.Log.Infof("cloud cover %.2f%% exceeds the %.1f%% limit, skipping %s", reading.Percent, f.Threshold, folder.Name)
	d.Verdict = RejectCloudy
	return d
}

// HasLocal reports whether path is already downloaded.
func (f *Filter) HasLocal(path string) bool {
	if f.Exists != nil {
		return f.Exists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}
