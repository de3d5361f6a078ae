// pkg/scanner/scanner_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real filesystem (symlink detection needs Lstat semantics)
// PURPOSE: Test candidate selection, ordering and soft failures

package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/filesystem"
	"github.com/arthur-debert/mirage/pkg/scanner"
	"github.com/arthur-debert/mirage/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relPaths(t *testing.T, root string, result *scanner.Result) []string {
	t.Helper()
	out := make([]string, 0, len(result.Files))
	for _, p := range result.Paths() {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScan_OrderAndExclusions(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"b.txt":                   "b",
		"a.txt":                   "a",
		"sub/z.txt":               "z",
		"sub/deeper/y.txt":        "y",
		".hidden":                 "h",
		".mirage.toml":            "[scan]",
		".mirage/wal.json":        "{}",
		".mirage/originals/a.txt": "a",
		".mirage-old/x":           "x",
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "sub"), filepath.Join(root, "sublink")))

	s, err := scanner.New(scanner.Options{})
	require.NoError(t, err)

	result, err := s.Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{".hidden", "a.txt", "b.txt", "sub/deeper/y.txt", "sub/z.txt"}, relPaths(t, root, result))
	assert.Empty(t, result.Skipped)
	assert.Equal(t, root, result.Root)
	for _, f := range result.Files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.Equal(t, int64(1), f.Size)
	}
}

func TestScan_SkipHidden(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"a.txt":          "a",
		".hidden":        "h",
		".config/app.rc": "c",
	})

	s, err := scanner.New(scanner.Options{SkipHidden: true})
	require.NoError(t, err)

	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, relPaths(t, root, result))
}

func TestScan_IgnorePatterns(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"keep.txt":         "k",
		"drop.log":         "d",
		"build/out.bin":    "o",
		"src/build/gen.go": "g",
		"src/main.go":      "m",
	})

	s, err := scanner.New(scanner.Options{Ignore: []string{"*.log", "build", "src/*.go"}})
	require.NoError(t, err)

	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, relPaths(t, root, result))
}

func TestScan_EmptyTree(t *testing.T) {
	root := testutil.NewTree(t, nil)

	s, err := scanner.New(scanner.Options{})
	require.NoError(t, err)

	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Skipped)
}

func TestScan_UnreadableDirectoryIsSkipped(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"a.txt":        "a",
		"locked/b.txt": "b",
		"open/c.txt":   "c",
	})
	locked := filepath.Join(root, "locked")

	faulty := testutil.NewFaultyFS(filesystem.NewOS(),
		testutil.Fault{Op: "ReadDir", Path: locked, Err: os.ErrPermission})

	s, err := scanner.New(scanner.Options{FS: faulty})
	require.NoError(t, err)

	result, err := s.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "open/c.txt"}, relPaths(t, root, result))

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, locked, result.Skipped[0].Path)
	assert.True(t, errors.IsErrorCode(result.Skipped[0].Err, errors.ErrScanEntry))
	assert.ErrorIs(t, result.Skipped[0].Err, os.ErrPermission)
}

func TestScan_UnreadableRootFails(t *testing.T) {
	s, err := scanner.New(scanner.Options{})
	require.NoError(t, err)

	_, err = s.Scan(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := scanner.New(scanner.Options{Ignore: []string{"[unclosed"}})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
