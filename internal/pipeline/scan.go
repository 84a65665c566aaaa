package pipeline

import (
	"context"

	"github.com/tilefetch/tilefetch/internal/cloud"
	"github.com/tilefetch/tilefetch/internal/tile"
)

// Candidate is an in-window product folder found by Scan.
type Candidate struct {
	Code       tile.Code
	Folder     tile.Folder
	LocalPath  string
	Downloaded bool
}

// Scan lists every region and returns the dated folders inside the date
// window. It neither fetches metadata nor copies anything.
func (r *Runner) Scan(ctx context.Context) []Candidate {
	var out []Candidate
	for _, code := range r.Config.Codes {
		if ctx.Err() != nil {
			break
		}
		prefix := code.RemotePrefix(r.Config.BucketRoot)
		localDir := code.LocalDir(r.Config.OutputRoot)

		for _, uri := range cloud.ListProducts(ctx, r.Provider, prefix, r.Config.Suffix, r.Config.BenignMarkers, r.Log) {
			folder, err := tile.ParseFolder(uri)
			if err != nil || !r.Filter.Window.Contains(folder.Date) {
				continue
			}
			local := folder.LocalPath(localDir)
			out = append(out, Candidate{
				Code:       code,
				Folder:     folder,
				LocalPath:  local,
				Downloaded: r.Filter.HasLocal(local),
			})
		}
	}
	return out
}
