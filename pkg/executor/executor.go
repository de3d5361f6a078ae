// Package executor applies the pending actions of a journal, advancing
// and committing the checkpoint after each one.
package executor

import (
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/arthur-debert/mirage/pkg/wal"
	"github.com/rs/zerolog"
)

// Committer persists the journal of a session.
type Committer interface {
	Commit(session *wal.Session) error
}

// StepHook runs after the action at index has been applied and
// committed. Returning an error stops execution.
type StepHook func(index int, action wal.Action) error

// Options configures an Executor.
type Options struct {
	Committer Committer
	// DryRun logs pending actions without touching the filesystem or
	// the checkpoint
	DryRun bool
	// Fsync flushes copied content before it replaces the target
	Fsync bool
	// OnStep is called after every committed action
	OnStep StepHook
	// FS defaults to the OS filesystem
	FS types.FS
	// Logger defaults to the "executor" component logger
	Logger *zerolog.Logger
}

// Report summarizes one execution.
type Report struct {
	DryRun     bool         `json:"dry_run"`
	Applied    int          `json:"applied"`
	Checkpoint int          `json:"checkpoint"`
	Total      int          `json:"total"`
	Planned    []wal.Action `json:"planned,omitempty"`
}

// Executor replays journals.
type Executor struct {
	committer Committer
	dryRun    bool
	fsync     bool
	onStep    StepHook
	fs        types.FS
	logger    zerolog.Logger
}

// New creates an Executor. A Committer is required unless DryRun is set.
func New(opts Options) (*Executor, error) {
	if opts.Committer == nil && !opts.DryRun {
		return nil, errors.New(errors.ErrInvalidInput, "executor requires a committer")
	}

	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	return &Executor{
		committer: opts.Committer,
		dryRun:    opts.DryRun,
		fsync:     opts.Fsync,
		onStep:    opts.OnStep,
		fs:        fsys,
		logger:    logger,
	}, nil
}

// Execute applies every action from the checkpoint on. On failure the
// checkpoint stays at the last committed action, so a later call resumes
// with the action that failed.
func (e *Executor) Execute(session *wal.Session) (*Report, error) {
	j := session.Journal
	report := &Report{DryRun: e.dryRun, Checkpoint: j.Checkpoint, Total: len(j.Actions)}

	if e.dryRun {
		for _, action := range j.Pending() {
			e.logger.Info().
				Str("action", string(action.Kind)).
				Str("source", action.Source).
				Str("target", action.Target).
				Msg("Would apply")
			report.Planned = append(report.Planned, action)
		}
		return report, nil
	}

	for !j.IsComplete() {
		index := j.Checkpoint
		action := j.Actions[index]

		if err := Perform(e.fs, action, e.fsync); err != nil {
			e.logger.Error().Err(err).Int("index", index).Stringer("action", action).Msg("Action failed")
			return report, err
		}

		j.Advance()
		if err := e.committer.Commit(session); err != nil {
			return report, err
		}
		report.Applied++
		report.Checkpoint = j.Checkpoint

		e.logger.Debug().Int("index", index).Stringer("action", action).Msg("Applied")

		if e.onStep != nil {
			if err := e.onStep(index, action); err != nil {
				return report, err
			}
		}
	}

	e.logger.Info().Int("applied", report.Applied).Msg("Execution complete")
	return report, nil
}

// Perform applies a single action:
//
//	Copy     writes Source's bytes over Target
//	Symlink  removes whatever is at Source and links it to Target
//	NOP      does nothing
//
// Every action is safe to repeat, which is what makes resuming after a
// crash between apply and commit correct.
func Perform(fsys types.FS, action wal.Action, sync bool) error {
	switch action.Kind {
	case wal.KindCopy:
		if err := copyAction(fsys, action, sync); err != nil {
			return errors.IOf(err, action.Target, "failed to copy %s to %s", action.Source, action.Target)
		}

	case wal.KindSymlink:
		if err := RemoveEntry(fsys, action.Source); err != nil {
			return err
		}
		if err := fsys.Symlink(action.Target, action.Source); err != nil {
			return errors.IOf(err, action.Source, "failed to link %s to %s", action.Source, action.Target)
		}

	case wal.KindNoOp:

	default:
		return errors.Newf(errors.ErrCorruptJournal, "unknown action kind %q", action.Kind)
	}
	return nil
}

// copyAction keeps the source's mode unless the action names one.
func copyAction(fsys types.FS, action wal.Action, sync bool) error {
	if action.Mode != 0 {
		return filesystem.CopyFileMode(fsys, action.Source, action.Target, action.Mode, sync)
	}
	return filesystem.CopyFile(fsys, action.Source, action.Target, sync)
}

// RemoveEntry removes the file or symlink at path, if any. A directory
// is never removed.
func RemoveEntry(fsys types.FS, path string) error {
	info, err := fsys.Lstat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.IOf(err, path, "failed to stat %s", path)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrLayoutConflict, "%s is a directory", path).WithDetail("path", path)
	}
	if err := fsys.Remove(path); err != nil {
		return errors.IOf(err, path, "failed to remove %s", path)
	}
	return nil
}
