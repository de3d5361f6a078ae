package wal

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/logging"
	"github.com/arthur-debert/mirage/pkg/paths"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/rs/zerolog"
)

const tempPattern = ".wal-*.tmp"

// Session is the state one apply or revert invocation works on. It is
// loaded fresh for every invocation and never shared.
type Session struct {
	Layout  paths.Layout
	Journal *Journal
}

// SideStore returns the absolute side-store path.
func (s *Session) SideStore() string {
	return s.Layout.SideStore()
}

// Options tunes how the journal is persisted.
type Options struct {
	// Fsync flushes the journal to stable storage before it replaces
	// the previous record.
	Fsync bool
	// Indent writes human readable JSON.
	Indent bool
	// FS defaults to the OS filesystem
	FS types.FS
	// Logger defaults to the "wal" component logger
	Logger *zerolog.Logger
}

// Store creates, loads and persists journals.
type Store struct {
	fs     types.FS
	fsync  bool
	indent bool
	logger zerolog.Logger
}

// NewStore creates a Store.
func NewStore(opts Options) *Store {
	logger := logging.GetLogger("wal")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	return &Store{
		fs:     fsys,
		fsync:  opts.Fsync,
		indent: opts.Indent,
		logger: logger,
	}
}

// ResolveTarget turns targetDir into the absolute, symlink-resolved
// directory every side-store path is derived from.
func ResolveTarget(fsys types.FS, targetDir string) (string, error) {
	if err := paths.ValidatePath(targetDir); err != nil {
		return "", err
	}

	resolved, err := fsys.EvalSymlinks(paths.SanitizePath(targetDir))
	if err != nil {
		return "", errors.IOf(err, targetDir, "failed to resolve target directory %s", targetDir)
	}

	info, err := fsys.Stat(resolved)
	if err != nil {
		return "", errors.IOf(err, resolved, "failed to stat target directory %s", resolved)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidInput, "target %s is not a directory", resolved).
			WithDetail("path", resolved)
	}

	return resolved, nil
}

// Exists reports whether the tree at targetDir has a side-store entry.
// It never creates anything.
func (s *Store) Exists(targetDir string) (bool, paths.Layout, error) {
	resolved, err := ResolveTarget(s.fs, targetDir)
	if err != nil {
		return false, paths.Layout{}, err
	}

	layout := paths.NewLayout(resolved)
	if _, err := s.fs.Lstat(layout.SideStore()); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return false, layout, nil
		}
		return false, layout, errors.IOf(err, layout.SideStore(), "failed to stat side-store")
	}

	return true, layout, nil
}

// Open prepares the side-store of targetDir and loads its journal,
// creating an empty journal on first access.
func (s *Store) Open(targetDir string) (*Session, error) {
	resolved, err := ResolveTarget(s.fs, targetDir)
	if err != nil {
		return nil, err
	}
	layout := paths.NewLayout(resolved)

	s.logger.Debug().Str("target", resolved).Msg("Opening side-store")

	if err := s.ensureDir(layout.SideStore()); err != nil {
		return nil, err
	}
	if err := s.ensureDir(layout.Originals()); err != nil {
		return nil, err
	}
	s.removeStaleTemps(layout)

	session := &Session{Layout: layout}

	journal, found, err := s.readJournal(layout)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Debug().Str("path", layout.Journal()).Msg("Journal is empty, creating new journal")
		session.Journal = NewJournal()
		if err := s.Commit(session); err != nil {
			return nil, err
		}
		return session, nil
	}

	session.Journal = journal
	s.logger.Debug().
		Int("actions", len(journal.Actions)).
		Int("checkpoint", journal.Checkpoint).
		Int("redirections", len(journal.Redirections)).
		Msg("Journal loaded")

	return session, nil
}

// Load opens an existing side-store read-only. It fails with
// NOT_INITIALIZED when the tree was never applied.
func (s *Store) Load(targetDir string) (*Session, error) {
	exists, layout, err := s.Exists(targetDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Newf(errors.ErrNotInitialized, "%s has no side-store", layout.TargetDir()).
			WithDetail("path", layout.TargetDir())
	}

	if err := s.checkDir(layout.SideStore()); err != nil {
		return nil, err
	}

	journal, found, err := s.readJournal(layout)
	if err != nil {
		return nil, err
	}
	if !found {
		journal = NewJournal()
	}

	return &Session{Layout: layout, Journal: journal}, nil
}

// Commit serializes the whole journal and atomically replaces wal.json:
// the new record is written to a temporary file beside it and renamed
// over the old one.
func (s *Store) Commit(session *Session) error {
	data, err := Encode(session.Journal, s.indent)
	if err != nil {
		return err
	}

	walPath := session.Layout.Journal()
	tmp, err := s.fs.CreateTemp(filepath.Dir(walPath), tempPattern)
	if err != nil {
		return errors.IOf(err, walPath, "failed to create temporary journal")
	}
	tmpPath := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpPath)
		return errors.IOf(cause, walPath, "failed to write journal")
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if s.fsync {
		if err := tmp.Sync(); err != nil {
			return cleanup(err)
		}
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.IOf(err, walPath, "failed to close temporary journal")
	}
	if err := s.fs.Chmod(tmpPath, 0644); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.IOf(err, tmpPath, "failed to set journal permissions")
	}
	if err := s.fs.Rename(tmpPath, walPath); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.IOf(err, walPath, "failed to replace journal")
	}

	s.logger.Trace().
		Int("actions", len(session.Journal.Actions)).
		Int("checkpoint", session.Journal.Checkpoint).
		Msg("Journal committed")

	return nil
}

// readJournal returns found=false for an absent or zero-length journal.
func (s *Store) readJournal(layout paths.Layout) (*Journal, bool, error) {
	walPath := layout.Journal()

	info, err := s.fs.Lstat(walPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.IOf(err, walPath, "failed to stat journal")
	}
	if !info.Mode().IsRegular() {
		return nil, false, errors.Newf(errors.ErrLayoutConflict, "%s exists and is not a regular file", walPath).
			WithDetail("path", walPath)
	}
	if info.Size() == 0 {
		return nil, false, nil
	}

	data, err := s.fs.ReadFile(walPath)
	if err != nil {
		return nil, false, errors.IOf(err, walPath, "failed to read journal")
	}

	journal, err := Decode(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrCorruptJournal, "journal %s is unreadable", walPath).
			WithDetail("path", walPath)
	}
	if err := journal.Validate(layout); err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrCorruptJournal, "journal %s is inconsistent", walPath).
			WithDetail("path", walPath)
	}

	return journal, true, nil
}

// ensureDir creates path unless something already occupies it. A
// foreign non-directory is never repurposed.
func (s *Store) ensureDir(path string) error {
	err := s.checkDir(path)
	if err == nil {
		return nil
	}
	if !errors.IsErrorCode(err, errors.ErrNotInitialized) {
		return err
	}

	if err := s.fs.Mkdir(path, 0755); err != nil {
		return errors.IOf(err, path, "failed to create %s", path)
	}
	s.logger.Debug().Str("path", path).Msg("Created side-store directory")
	return nil
}

// checkDir returns NOT_INITIALIZED when path is absent and
// LAYOUT_CONFLICT when it is not a real directory.
func (s *Store) checkDir(path string) error {
	info, err := s.fs.Lstat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.Newf(errors.ErrNotInitialized, "%s does not exist", path)
		}
		return errors.IOf(err, path, "failed to stat %s", path)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrLayoutConflict, "%s exists and is not a directory", path).
			WithDetail("path", path)
	}
	return nil
}

// removeStaleTemps deletes temporary journals left by a crash mid-commit.
func (s *Store) removeStaleTemps(layout paths.Layout) {
	entries, err := s.fs.ReadDir(layout.SideStore())
	if err != nil {
		return
	}
	for _, entry := range entries {
		if ok, _ := filepath.Match(tempPattern, entry.Name()); !ok {
			continue
		}
		stale := filepath.Join(layout.SideStore(), entry.Name())
		if err := s.fs.Remove(stale); err != nil {
			s.logger.Warn().Err(err).Str("path", stale).Msg("Failed to remove stale journal")
			continue
		}
		s.logger.Debug().Str("path", stale).Msg("Removed stale journal")
	}
}
