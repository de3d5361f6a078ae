package mirage

import (
	"github.com/arthur-debert/mirage/pkg/lock"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/reverter"
	"github.com/arthur-debert/mirage/pkg/wal"
)

// RevertResult describes one Revert.
type RevertResult struct {
	Target string `json:"target"`
	DryRun bool   `json:"dry_run"`
	// Initialized is false when the tree had no side-store
	Initialized bool             `json:"initialized"`
	Report      *reverter.Report `json:"report,omitempty"`
}

// Revert restores every file the journal redirected and removes the
// side-store. A tree without a side-store is left alone and reported as
// not initialized; reverting twice therefore succeeds.
func Revert(opts Options) (*RevertResult, error) {
	e, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	defer logging.LogOperationStart(e.logger, "revert")()

	held, err := lock.Acquire(e.target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = held.Release() }()

	result := &RevertResult{Target: e.target, DryRun: opts.DryRun}

	exists, _, err := e.store.Exists(e.target)
	if err != nil {
		return nil, err
	}
	if !exists {
		e.logger.Info().Str("target", e.target).Msg("No side-store, nothing to revert")
		return result, nil
	}
	result.Initialized = true

	var session *wal.Session
	if opts.DryRun {
		session, err = e.store.Load(e.target)
	} else {
		session, err = e.store.Open(e.target)
	}
	if err != nil {
		return result, err
	}

	r := reverter.New(reverter.Options{DryRun: opts.DryRun, FS: e.fs, Logger: &e.logger})
	result.Report, err = r.Revert(session)
	return result, err
}
