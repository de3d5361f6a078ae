package filesystem

import (
	"io"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/mirage/pkg/types"
)

// CopyTempPattern names the temporary files CopyFile writes. The prefix
// keeps leftovers of an interrupted copy out of every scan.
const CopyTempPattern = ".mirage-copy-*"

// CopyFile copies src's bytes and permission bits to dst. The content is
// written to a temporary file in dst's directory and renamed over dst, so
// dst is either untouched or complete. With sync set the data is flushed
// before the rename.
func CopyFile(fsys types.FS, src, dst string, sync bool) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	return CopyFileMode(fsys, src, dst, info.Mode().Perm(), sync)
}

// CopyFileMode is CopyFile with the permission bits of dst given by perm.
func CopyFileMode(fsys types.FS, src, dst string, perm fs.FileMode, sync bool) (err error) {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp, err := fsys.CreateTemp(filepath.Dir(dst), CopyTempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fsys.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if sync {
		if err = tmp.Sync(); err != nil {
			return err
		}
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(tmpPath, perm.Perm()); err != nil {
		return err
	}
	return fsys.Rename(tmpPath, dst)
}

// RemoveCopyTemps deletes the temporary files an interrupted CopyFile left
// in dir. It returns the paths it removed.
func RemoveCopyTemps(fsys types.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(CopyTempPattern, entry.Name()); !ok {
			continue
		}
		stale := filepath.Join(dir, entry.Name())
		if err := fsys.Remove(stale); err != nil {
			return removed, err
		}
		removed = append(removed, stale)
	}
	return removed, nil
}
