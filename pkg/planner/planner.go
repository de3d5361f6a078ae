package planner

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/mirage/pkg/compare"
	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/scanner"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/arthur-debert/mirage/pkg/wal"
	"github.com/rs/zerolog"
)

// Committer persists the journal of a session.
type Committer interface {
	Commit(session *wal.Session) error
}

// Options configures a Planner.
type Options struct {
	Scanner    *scanner.Scanner
	Comparator *compare.Comparator
	Committer  Committer
	// FS defaults to the OS filesystem
	FS types.FS
	// Logger defaults to the "planner" component logger
	Logger *zerolog.Logger
}

// InconsistentPair is a content-equal pair whose files are redirected to
// different canonical copies. No action is planned for it.
type InconsistentPair struct {
	Here        string `json:"here"`
	There       string `json:"there"`
	HereTarget  string `json:"here_target"`
	ThereTarget string `json:"there_target"`
}

// Report summarizes one planning pass.
type Report struct {
	Candidates      int                `json:"candidates"`
	Skipped         []scanner.Skipped  `json:"-"`
	Classes         int                `json:"classes"`
	ActionsAppended int                `json:"actions_appended"`
	BytesReclaimed  int64              `json:"bytes_reclaimed"`
	Inconsistent    []InconsistentPair `json:"inconsistent,omitempty"`
}

// Planner appends dedup actions to a session's journal.
type Planner struct {
	scanner    *scanner.Scanner
	comparator *compare.Comparator
	committer  Committer
	fs         types.FS
	logger     zerolog.Logger
}

// New creates a Planner. Scanner, Comparator and Committer are required.
func New(opts Options) (*Planner, error) {
	if opts.Scanner == nil || opts.Comparator == nil || opts.Committer == nil {
		return nil, errors.New(errors.ErrInvalidInput, "planner requires a scanner, a comparator and a committer")
	}

	logger := logging.GetLogger("planner")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	return &Planner{
		scanner:    opts.Scanner,
		comparator: opts.Comparator,
		committer:  opts.Committer,
		fs:         fsys,
		logger:     logger,
	}, nil
}

// Plan scans the session's tree and appends the actions that deduplicate
// it. Every journal mutation is committed before the next pair is
// considered.
func (p *Planner) Plan(session *wal.Session) (*Report, error) {
	result, err := p.scanner.Scan(session.Layout.TargetDir())
	if err != nil {
		return nil, err
	}

	report := &Report{
		Candidates: len(result.Files),
		Skipped:    result.Skipped,
	}

	ix, err := p.buildIndex(result.Files)
	if err != nil {
		return nil, err
	}
	report.Classes = len(ix.classes)

	p.logger.Debug().
		Int("candidates", report.Candidates).
		Int("classes", report.Classes).
		Msg("Indexed candidates")

	modes := make(map[string]fs.FileMode, len(result.Files))
	for _, f := range result.Files {
		modes[f.Path] = f.Mode
	}

	reported := map[[2]string]bool{}
	for _, here := range result.Files {
		c := ix.classOf(here.Path)
		if c == nil {
			continue
		}
		for _, there := range c.members {
			if there == here.Path {
				continue
			}
			if err := p.pair(session, report, reported, modes, here.Path, there, c.size); err != nil {
				return report, err
			}
		}
	}

	p.logger.Info().
		Int("actions", report.ActionsAppended).
		Int64("bytes", report.BytesReclaimed).
		Msg("Planning complete")

	return report, nil
}

func (p *Planner) pair(session *wal.Session, report *Report, reported map[[2]string]bool, modes map[string]fs.FileMode, here, there string, size int64) error {
	j := session.Journal
	hereTarget, hereOK := j.RedirectionFor(here)
	thereTarget, thereOK := j.RedirectionFor(there)

	switch {
	case hereOK && thereOK:
		if hereTarget != thereTarget {
			key := [2]string{here, there}
			if here > there {
				key = [2]string{there, here}
			}
			if !reported[key] {
				reported[key] = true
				p.logger.Warn().
					Str("here", here).Str("here_target", hereTarget).
					Str("there", there).Str("there_target", thereTarget).
					Msg("Equal files redirected to different canonical copies")
				report.Inconsistent = append(report.Inconsistent, InconsistentPair{
					Here: here, There: there, HereTarget: hereTarget, ThereTarget: thereTarget,
				})
			}
		}
		return nil

	case hereOK:
		p.logger.Debug().Str("path", there).Str("canonical", hereTarget).Msg("Reusing canonical copy")
		j.Append(wal.NewSymlink(there, hereTarget).WithMode(modes[there]))
		j.Redirect(there, hereTarget)
		report.ActionsAppended++
		report.BytesReclaimed += size

	case thereOK:
		p.logger.Debug().Str("path", here).Str("canonical", thereTarget).Msg("Reusing canonical copy")
		j.Append(wal.NewSymlink(here, thereTarget).WithMode(modes[here]))
		j.Redirect(here, thereTarget)
		report.ActionsAppended++
		report.BytesReclaimed += size

	default:
		canonical, err := p.canonicalPath(session, here)
		if err != nil {
			return err
		}
		p.logger.Debug().Str("here", here).Str("there", there).Str("canonical", canonical).Msg("New canonical copy")
		j.Append(
			wal.NewCopy(here, canonical),
			wal.NewSymlink(here, canonical).WithMode(modes[here]),
			wal.NewSymlink(there, canonical).WithMode(modes[there]),
		)
		j.Redirect(here, canonical)
		j.Redirect(there, canonical)
		report.ActionsAppended += 3
		report.BytesReclaimed += size
	}

	return p.committer.Commit(session)
}

// canonicalPath picks originals/<basename of source>, adding a numeric
// suffix before the extension while the name is claimed by the journal
// or taken on disk.
func (p *Planner) canonicalPath(session *wal.Session, source string) (string, error) {
	name := filepath.Base(source)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}

	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := session.Layout.CanonicalPath(candidate)

		if session.Journal.CanonicalInUse(path) {
			continue
		}
		taken, err := p.exists(path)
		if err != nil {
			return "", err
		}
		if !taken {
			return path, nil
		}
	}
}

func (p *Planner) exists(path string) (bool, error) {
	_, err := p.fs.Lstat(path)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.IOf(err, path, "failed to stat %s", path)
}
