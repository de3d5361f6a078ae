// Package lock serializes mirage invocations on one target directory.
//
// The lock is advisory and non-blocking: a second apply or revert on a
// directory that is already being processed fails fast with a LOCKED
// error instead of interleaving its journal writes with the first one.
// Locks are released on Release or when the process exits.
package lock

// Lock is a held lock on a target directory.
type Lock struct {
	path   string
	handle handle
}

// Path returns the locked directory.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.handle == nil {
		return nil
	}
	err := l.handle.release()
	l.handle = nil
	return err
}

type handle interface {
	release() error
}
