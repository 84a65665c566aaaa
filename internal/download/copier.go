package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/logger"
	"github.com/tilefetch/tilefetch/internal/tile"
)

// Result is the outcome of copying one product folder.
type Result struct {
	Folder   tile.Folder
	Target   string
	Duration time.Duration
	Err      error
}

// OK reports whether the copy succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Copier copies accepted product folders to local storage.
type Copier struct {
	Provider cloud.Provider
	// Marker, when set, names a file written inside the product folder
	// after a successful copy.
	Marker string
	Log    *logger.Logger
}

// NewCopier creates a copier. An empty marker disables completion markers.
func NewCopier(provider cloud.Provider, marker string, log *logger.Logger) *Copier {
	return &Copier{Provider: provider, Marker: marker, Log: log}
}

// Copy recursively copies folder into localDir. Failures are logged and
// returned in the Result.
func (c *Copier) Copy(ctx context.Context, folder tile.Folder, localDir string) Result {
	res := Result{Folder: folder, Target: folder.LocalPath(localDir)}
	start := time.Now()

	c.Log.Infof("copying %s to %s", folder.URI, localDir)

	err := c.Provider.CopyRecursive(ctx, folder.URI, localDir)
	res.Duration = time.Since(start)
	if err != nil {
		c.Log.ErrorWith("copy failed", err, map[string]interface{}{"uri": folder.URI, "target": localDir})
		res.Err = err
		return res
	}

	if c.Marker != "" {
		if err := writeMarker(res.Target, c.Marker); err != nil {
			c.Log.WarnWith("could not write completion marker", err, map[string]interface{}{"target": res.Target})
			res.Err = err
			return res
		}
	}

	c.Log.InfoWith("download complete", map[string]interface{}{
		"folder":   folder.Name,
		"duration": res.Duration.Round(time.Millisecond).String(),
	})
	return res
}

func writeMarker(dir, name string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	stamp := time.Now().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(stamp), 0644); err != nil {
		return fmt.Errorf("failed to write marker: %w", err)
	}
	return nil
}

// ExistsFunc returns the idempotence check matching the marker setting.
// Without a marker a folder counts as downloaded once its directory exists;
// with one, only once the marker file is present, so interrupted copies
// are retried.
func ExistsFunc(marker string) func(path string) bool {
	return func(path string) bool {
		if marker != "" {
			path = filepath.Join(path, marker)
		}
		_, err := os.Stat(path)
		return err == nil
	}
}
