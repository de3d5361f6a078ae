package mirage

import (
	"github.com/arthur-debert/mirage/pkg/compare"
	"github.com/arthur-debert/mirage/pkg/config"
	"github.com/arthur-debert/mirage/pkg/executor"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/lock"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/planner"
	"github.com/arthur-debert/mirage/pkg/scanner"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/arthur-debert/mirage/pkg/wal"
	"github.com/rs/zerolog"
)

// Options configures one operation.
type Options struct {
	// Path is the target directory, "." when empty
	Path string
	// DryRun reports what would change without touching the tree or
	// creating the side-store
	DryRun bool
	// Config defaults to config.Load for the target directory
	Config *config.Config
	// OnStep is called after each committed apply action
	OnStep executor.StepHook
	// FS defaults to the OS filesystem
	FS types.FS
	// Logger defaults to the "mirage" component logger
	Logger *zerolog.Logger
}

// ApplyResult describes one Apply.
type ApplyResult struct {
	Target    string            `json:"target"`
	SideStore string            `json:"side_store"`
	DryRun    bool              `json:"dry_run"`
	Plan      *planner.Report   `json:"plan"`
	Execution *executor.Report  `json:"execution"`
	Skipped   []scanner.Skipped `json:"-"`
}

// env is what every operation resolves before it starts.
type env struct {
	target string
	cfg    *config.Config
	fs     types.FS
	logger zerolog.Logger
	store  *wal.Store
}

func prepare(opts Options) (*env, error) {
	e := &env{fs: opts.FS, logger: logging.GetLogger("mirage")}
	if e.fs == nil {
		e.fs = filesystem.NewOS()
	}
	if opts.Logger != nil {
		e.logger = *opts.Logger
	}

	path := opts.Path
	if path == "" {
		path = "."
	}
	target, err := wal.ResolveTarget(e.fs, path)
	if err != nil {
		return nil, err
	}
	e.target = target

	e.cfg = opts.Config
	if e.cfg == nil {
		e.cfg, err = config.Load(config.LoadOptions{TargetDir: target})
		if err != nil {
			return nil, err
		}
	}

	e.store = wal.NewStore(wal.Options{
		Fsync:  e.cfg.Journal.Fsync,
		Indent: e.cfg.Journal.Indent,
		FS:     e.fs,
		Logger: &e.logger,
	})
	return e, nil
}

// Apply deduplicates the target tree: it plans every equal-content pair
// into the journal, then executes the pending actions.
func Apply(opts Options) (*ApplyResult, error) {
	e, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	defer logging.LogOperationStart(e.logger, "apply")()

	held, err := lock.Acquire(e.target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = held.Release() }()

	session, committer, err := e.applySession(opts.DryRun)
	if err != nil {
		return nil, err
	}

	s, err := scanner.New(scanner.Options{
		SkipHidden: e.cfg.Scan.SkipHidden,
		Ignore:     e.cfg.Scan.Ignore,
		FS:         e.fs,
		Logger:     &e.logger,
	})
	if err != nil {
		return nil, err
	}
	c, err := compare.New(compare.Options{
		FS:        e.fs,
		ChunkSize: e.cfg.Compare.ChunkSize,
		Digest:    e.cfg.Compare.Digest,
	})
	if err != nil {
		return nil, err
	}
	p, err := planner.New(planner.Options{
		Scanner:    s,
		Comparator: c,
		Committer:  committer,
		FS:         e.fs,
		Logger:     &e.logger,
	})
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{Target: e.target, SideStore: session.SideStore(), DryRun: opts.DryRun}

	result.Plan, err = p.Plan(session)
	if result.Plan != nil {
		result.Skipped = result.Plan.Skipped
	}
	if err != nil {
		return result, err
	}

	x, err := executor.New(executor.Options{
		Committer: committer,
		DryRun:    opts.DryRun,
		Fsync:     e.cfg.Journal.Fsync,
		OnStep:    opts.OnStep,
		FS:        e.fs,
		Logger:    &e.logger,
	})
	if err != nil {
		return result, err
	}
	result.Execution, err = x.Execute(session)
	return result, err
}

// applySession opens the side-store for a real run. A dry run reads an
// existing journal if there is one and otherwise plans against an empty
// in-memory journal; nothing is ever committed.
func (e *env) applySession(dryRun bool) (*wal.Session, planner.Committer, error) {
	if !dryRun {
		session, err := e.store.Open(e.target)
		return session, e.store, err
	}

	exists, layout, err := e.store.Exists(e.target)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return &wal.Session{Layout: layout, Journal: wal.NewJournal()}, discard{}, nil
	}
	session, err := e.store.Load(e.target)
	return session, discard{}, err
}

// discard is the committer of dry runs.
type discard struct{}

func (discard) Commit(*wal.Session) error { return nil }
