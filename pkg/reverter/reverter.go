// Package reverter undoes an applied journal and removes the side-store.
package reverter

import (
	"path/filepath"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/executor"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/arthur-debert/mirage/pkg/wal"
	"github.com/rs/zerolog"
)

// Options configures a Reverter.
type Options struct {
	// DryRun logs the inverse actions without touching the filesystem
	DryRun bool
	// FS defaults to the OS filesystem
	FS types.FS
	// Logger defaults to the "reverter" component logger
	Logger *zerolog.Logger
}

// Report summarizes one revert.
type Report struct {
	DryRun   bool         `json:"dry_run"`
	Reverted int          `json:"reverted"`
	Restored []string     `json:"restored"`
	Planned  []wal.Action `json:"planned,omitempty"`
}

// Reverter restores trees.
type Reverter struct {
	dryRun bool
	fs     types.FS
	logger zerolog.Logger
}

// New creates a Reverter.
func New(opts Options) *Reverter {
	logger := logging.GetLogger("reverter")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	return &Reverter{dryRun: opts.DryRun, fs: fsys, logger: logger}
}

// Revert replays the applied actions of the session in inverse order,
// then removes the side-store. The journal is not updated while
// reverting: every inverse action is safe to repeat, so an interrupted
// revert is simply run again.
func (r *Reverter) Revert(session *wal.Session) (*Report, error) {
	inverse := session.Journal.Inverse()
	report := &Report{DryRun: r.dryRun, Restored: []string{}}

	r.logger.Debug().Int("actions", len(inverse)).Msg("Reverting")

	for _, action := range inverse {
		if r.dryRun {
			r.logger.Info().Stringer("action", action).Msg("Would revert")
			report.Planned = append(report.Planned, action)
			continue
		}

		if action.Kind == wal.KindCopy {
			if err := executor.RemoveEntry(r.fs, action.Target); err != nil {
				return report, err
			}
			report.Restored = append(report.Restored, action.Target)
		}
		if err := executor.Perform(r.fs, action, false); err != nil {
			r.logger.Error().Err(err).Stringer("action", action).Msg("Inverse action failed")
			return report, err
		}
		if action.Kind == wal.KindCopy {
			r.removeCopyTemps(filepath.Dir(action.Target))
		}
		report.Reverted++
	}

	if r.dryRun {
		return report, nil
	}

	sideStore := session.SideStore()
	if err := r.fs.RemoveAll(sideStore); err != nil {
		return report, errors.IOf(err, sideStore, "failed to remove side-store %s", sideStore)
	}
	r.logger.Info().Int("reverted", report.Reverted).Str("side_store", sideStore).Msg("Revert complete")

	return report, nil
}

// removeCopyTemps deletes what an interrupted earlier revert left beside
// restored files. Those directories are outside the side-store, so nothing
// else would ever clean them.
func (r *Reverter) removeCopyTemps(dir string) {
	removed, err := filesystem.RemoveCopyTemps(r.fs, dir)
	for _, path := range removed {
		r.logger.Debug().Str("path", path).Msg("Removed stale copy")
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove stale copies")
	}
}
