// Package scanner lists the files of a tree that are candidates for
// deduplication.
//
// The walk is recursive and lexicographic per directory level. It never
// follows symlinks, never descends into the side-store, and treats
// unreadable entries as soft failures: they are logged, recorded in the
// result and skipped.
package scanner

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/paths"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/rs/zerolog"
)

// File is one candidate regular file.
type File struct {
	// Path is absolute
	Path string
	Size int64
	// Mode holds the permission bits
	Mode fs.FileMode
}

// Skipped is an entry the scan could not read.
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of one scan.
type Result struct {
	Root    string
	Files   []File
	Skipped []Skipped
}

// Paths returns the candidate paths in scan order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Path
	}
	return out
}

// Options configures a Scanner.
type Options struct {
	// SkipHidden skips every dot-prefixed entry
	SkipHidden bool
	// Ignore holds glob patterns matched against the entry name and
	// against its slash-separated path relative to the root
	Ignore []string
	// FS defaults to the OS filesystem
	FS types.FS
	// Logger defaults to the "scanner" component logger
	Logger *zerolog.Logger
}

// Scanner walks trees.
type Scanner struct {
	fs         types.FS
	skipHidden bool
	ignore     []string
	logger     zerolog.Logger
}

// New creates a Scanner. Malformed ignore patterns are rejected.
func New(opts Options) (*Scanner, error) {
	for _, pattern := range opts.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid ignore pattern %q", pattern).
				WithDetail("pattern", pattern)
		}
	}

	logger := logging.GetLogger("scanner")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	return &Scanner{
		fs:         fsys,
		skipHidden: opts.SkipHidden,
		ignore:     opts.Ignore,
		logger:     logger,
	}, nil
}

// Scan walks root, which must be an absolute directory path. Only a
// failure to read root itself is returned as an error.
func (s *Scanner) Scan(root string) (*Result, error) {
	root = filepath.Clean(root)
	result := &Result{Root: root, Files: []File{}, Skipped: []Skipped{}}

	entries, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, errors.IOf(err, root, "failed to read %s", root)
	}

	s.logger.Debug().Str("root", root).Msg("Scanning tree")
	s.walk(result, root, "", entries)
	s.logger.Debug().
		Int("files", len(result.Files)).
		Int("skipped", len(result.Skipped)).
		Msg("Scan complete")

	return result, nil
}

func (s *Scanner) walk(result *Result, dir, relDir string, entries []fs.DirEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)
		rel := path.Join(relDir, name)

		if s.excluded(name, rel) {
			s.logger.Trace().Str("path", full).Msg("Excluded")
			continue
		}

		mode := entry.Type()
		switch {
		case mode&fs.ModeSymlink != 0:
			s.logger.Trace().Str("path", full).Msg("Skipping symlink")

		case entry.IsDir():
			children, err := s.fs.ReadDir(full)
			if err != nil {
				s.skip(result, full, err)
				continue
			}
			s.walk(result, full, rel, children)

		case mode.IsRegular():
			info, err := entry.Info()
			if err != nil {
				s.skip(result, full, err)
				continue
			}
			result.Files = append(result.Files, File{Path: full, Size: info.Size(), Mode: info.Mode().Perm()})

		default:
			s.logger.Trace().Str("path", full).Str("mode", mode.String()).Msg("Skipping special file")
		}
	}
}

func (s *Scanner) excluded(name, rel string) bool {
	if paths.IsSideStoreName(name) {
		return true
	}
	if s.skipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range s.ignore {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) skip(result *Result, full string, cause error) {
	err := errors.Wrapf(cause, errors.ErrScanEntry, "cannot access %s", full).WithDetail("path", full)
	s.logger.Warn().Err(cause).Str("path", full).Msg("Skipping unreadable entry")
	result.Skipped = append(result.Skipped, Skipped{Path: full, Err: err})
}
