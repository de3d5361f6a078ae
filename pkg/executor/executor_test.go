// pkg/executor/executor_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real filesystem (symlinks), wal.Store
// PURPOSE: Test action replay, checkpoint commits and resumption

package executor_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/executor"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/testutil"
	"github.com/arthur-debert/mirage/pkg/wal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root      string
	canonical string
	store     *wal.Store
	session   *wal.Session
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.root, name)
}

// setup opens a tree with two equal files and plans their deduplication.
func setup(t *testing.T) *fixture {
	t.Helper()

	root := testutil.NewTree(t, map[string]string{"a.txt": "same", "b.txt": "same", "c.txt": "diff"})
	store := wal.NewStore(wal.Options{})
	session, err := store.Open(root)
	require.NoError(t, err)

	f := &fixture{root: root, store: store, session: session}
	f.canonical = session.Layout.CanonicalPath("a.txt")

	session.Journal.Append(
		wal.NewCopy(f.path("a.txt"), f.canonical),
		wal.NewSymlink(f.path("a.txt"), f.canonical),
		wal.NewSymlink(f.path("b.txt"), f.canonical),
	)
	session.Journal.Redirect(f.path("a.txt"), f.canonical)
	session.Journal.Redirect(f.path("b.txt"), f.canonical)
	require.NoError(t, store.Commit(session))

	return f
}

func (f *fixture) assertApplied(t *testing.T) {
	t.Helper()

	testutil.AssertRegularFile(t, f.canonical, "same")
	testutil.AssertSymlinkTo(t, f.path("a.txt"), f.canonical)
	testutil.AssertSymlinkTo(t, f.path("b.txt"), f.canonical)
	testutil.AssertRegularFile(t, f.path("c.txt"), "diff")
}

func newExecutor(t *testing.T, opts executor.Options) *executor.Executor {
	t.Helper()
	e, err := executor.New(opts)
	require.NoError(t, err)
	return e
}

func TestExecute(t *testing.T) {
	f := setup(t)

	report, err := newExecutor(t, executor.Options{Committer: f.store}).Execute(f.session)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, 3, report.Checkpoint)
	assert.True(t, f.session.Journal.IsComplete())
	f.assertApplied(t)

	reloaded, err := f.store.Load(f.root)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Journal.Checkpoint)
}

func TestExecute_CompleteJournalIsNoOp(t *testing.T) {
	f := setup(t)
	e := newExecutor(t, executor.Options{Committer: f.store})

	_, err := e.Execute(f.session)
	require.NoError(t, err)

	report, err := e.Execute(f.session)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	f.assertApplied(t)
}

func TestExecute_ResumesAfterInterruption(t *testing.T) {
	for stop := 0; stop < 3; stop++ {
		t.Run(fmt.Sprintf("after %d commits", stop+1), func(t *testing.T) {
			f := setup(t)
			crash := fmt.Errorf("crash")

			interrupted := newExecutor(t, executor.Options{
				Committer: f.store,
				OnStep: func(index int, _ wal.Action) error {
					if index == stop {
						return crash
					}
					return nil
				},
			})
			_, err := interrupted.Execute(f.session)
			require.ErrorIs(t, err, crash)

			// a fresh invocation loads the journal from disk
			session, err := f.store.Open(f.root)
			require.NoError(t, err)
			assert.Equal(t, stop+1, session.Journal.Checkpoint)

			report, err := newExecutor(t, executor.Options{Committer: f.store}).Execute(session)
			require.NoError(t, err)
			assert.Equal(t, 3-(stop+1), report.Applied)
			f.assertApplied(t)
		})
	}
}

func TestExecute_FailureKeepsCheckpoint(t *testing.T) {
	f := setup(t)
	faulty := testutil.NewFaultyFS(filesystem.NewOS(),
		testutil.Fault{Op: "Symlink", Path: f.path("b.txt"), Err: os.ErrPermission})

	_, err := newExecutor(t, executor.Options{Committer: f.store, FS: faulty}).Execute(f.session)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	assert.Equal(t, f.path("b.txt"), errors.GetErrorDetails(err)["path"])

	session, err := f.store.Load(f.root)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Journal.Checkpoint)

	_, err = newExecutor(t, executor.Options{Committer: f.store}).Execute(session)
	require.NoError(t, err)
	f.assertApplied(t)
}

func TestExecute_DryRun(t *testing.T) {
	f := setup(t)
	before := testutil.Snapshot(t, f.root)

	report, err := newExecutor(t, executor.Options{DryRun: true}).Execute(f.session)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 0, report.Applied)
	assert.Len(t, report.Planned, 3)
	assert.Equal(t, 0, f.session.Journal.Checkpoint)
	assert.Equal(t, before, testutil.Snapshot(t, f.root))
	testutil.AssertNotExists(t, f.canonical)
}

func TestNew_RequiresCommitter(t *testing.T) {
	_, err := executor.New(executor.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestPerform(t *testing.T) {
	fsys := filesystem.NewOS()

	t.Run("copy overwrites a partial copy", func(t *testing.T) {
		root := testutil.NewTree(t, map[string]string{"src": "complete content", "dst": "compl"})

		err := executor.Perform(fsys, wal.NewCopy(filepath.Join(root, "src"), filepath.Join(root, "dst")), false)
		require.NoError(t, err)
		testutil.AssertRegularFile(t, filepath.Join(root, "dst"), "complete content")
	})

	t.Run("symlink over a missing source", func(t *testing.T) {
		root := testutil.NewTree(t, map[string]string{"target": "x"})
		source := filepath.Join(root, "gone")

		require.NoError(t, executor.Perform(fsys, wal.NewSymlink(source, filepath.Join(root, "target")), false))
		testutil.AssertSymlinkTo(t, source, filepath.Join(root, "target"))
	})

	t.Run("symlink is repeatable", func(t *testing.T) {
		root := testutil.NewTree(t, map[string]string{"source": "x", "target": "x"})
		action := wal.NewSymlink(filepath.Join(root, "source"), filepath.Join(root, "target"))

		require.NoError(t, executor.Perform(fsys, action, false))
		require.NoError(t, executor.Perform(fsys, action, false))
		testutil.AssertSymlinkTo(t, filepath.Join(root, "source"), filepath.Join(root, "target"))
	})

	t.Run("symlink never removes a directory", func(t *testing.T) {
		root := testutil.NewTree(t, map[string]string{"dir/inner": "x", "target": "x"})

		err := executor.Perform(fsys, wal.NewSymlink(filepath.Join(root, "dir"), filepath.Join(root, "target")), false)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLayoutConflict))
		testutil.AssertRegularFile(t, filepath.Join(root, "dir", "inner"), "x")
	})

	t.Run("nop", func(t *testing.T) {
		assert.NoError(t, executor.Perform(fsys, wal.NewNoOp("/nowhere/a", "/nowhere/b"), false))
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := executor.Perform(fsys, wal.Action{Kind: "Move", Source: "/a", Target: "/b"}, false)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCorruptJournal))
	})
}
