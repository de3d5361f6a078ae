package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Entry kinds reported by Snapshot
const (
	KindFile    = "file"
	KindSymlink = "symlink"
)

// SnapshotEntry is what one path of a tree looks like from the outside.
type SnapshotEntry struct {
	Kind    string
	Content string
}

// NewTree creates files (slash-separated relative path -> content) under a
// fresh temporary directory and returns its symlink-resolved root.
func NewTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	for rel, content := range files {
		CreateFile(t, root, rel, content)
	}

	return root
}

// CreateFile creates a file with the given content in the specified directory.
// It fails the test if the file cannot be created.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

// Snapshot walks root, skipping the side-store, and records every regular
// file and symlink by slash-separated relative path. Symlinks record the
// content they resolve to.
func Snapshot(t *testing.T, root string) map[string]SnapshotEntry {
	t.Helper()

	snap := map[string]SnapshotEntry{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".mirage") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		kind := KindFile
		if d.Type()&fs.ModeSymlink != 0 {
			kind = KindSymlink
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snap[filepath.ToSlash(rel)] = SnapshotEntry{Kind: kind, Content: string(content)}
		return nil
	})
	require.NoError(t, err)

	return snap
}

// AssertRegularFile checks path is a regular file holding content.
func AssertRegularFile(t *testing.T, path, content string) {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "%s should be a regular file, mode %v", path, info.Mode())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

// AssertSymlinkTo checks path is a symlink whose target is target.
func AssertSymlinkTo(t *testing.T, path, target string) {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&os.ModeSymlink, "%s should be a symlink", path)

	got, err := os.Readlink(path)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

// AssertNotExists checks nothing occupies path.
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist (err=%v)", path, err)
}
