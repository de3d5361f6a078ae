//go:build unix

package lock

import (
	stderrors "errors"
	"os"

	"github.com/arthur-debert/mirage/pkg/errors"
	"golang.org/x/sys/unix"
)

type flockHandle struct {
	file *os.File
}

func (h *flockHandle) release() error {
	if err := unix.Flock(int(h.file.Fd()), unix.LOCK_UN); err != nil {
		_ = h.file.Close()
		return err
	}
	return h.file.Close()
}

// Acquire takes an exclusive flock(2) on dir itself. It fails with
// LOCKED when another open handle holds it.
func Acquire(dir string) (*Lock, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, errors.IOf(err, dir, "failed to open %s for locking", dir)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if stderrors.Is(err, unix.EWOULDBLOCK) {
			return nil, errors.Newf(errors.ErrLocked, "%s is being processed by another mirage invocation", dir).
				WithDetail("path", dir)
		}
		return nil, errors.IOf(err, dir, "failed to lock %s", dir)
	}

	return &Lock{path: dir, handle: &flockHandle{file: f}}, nil
}
