package testutil

import (
	"io/fs"

	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/stretchr/testify/mock"
)

// Fault makes one operation on one path fail.
type Fault struct {
	Op   string // "Symlink", "Rename", "Remove", "Open", "CreateTemp", "ReadDir"
	Path string // the path the operation creates or reads
	Err  error
	// Times limits how often the fault fires; 0 means always.
	Times int
}

// FaultyFS wraps a real filesystem and fails the registered faults.
// Every intercepted call is recorded, so tests can also assert on what
// the code under test attempted.
type FaultyFS struct {
	types.FS
	mock.Mock
}

// NewFaultyFS wraps base. Calls not matching a fault pass through.
func NewFaultyFS(base types.FS, faults ...Fault) *FaultyFS {
	f := &FaultyFS{FS: base}
	for _, fault := range faults {
		call := f.On("fault", fault.Op, fault.Path).Return(fault.Err)
		if fault.Times > 0 {
			call.Times(fault.Times)
		}
	}
	f.On("fault", mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *FaultyFS) fault(op, path string) error {
	return f.Called(op, path).Error(0)
}

func (f *FaultyFS) Symlink(oldname, newname string) error {
	if err := f.fault("Symlink", newname); err != nil {
		return err
	}
	return f.FS.Symlink(oldname, newname)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if err := f.fault("Rename", newpath); err != nil {
		return err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Remove(name string) error {
	if err := f.fault("Remove", name); err != nil {
		return err
	}
	return f.FS.Remove(name)
}

func (f *FaultyFS) Open(name string) (types.File, error) {
	if err := f.fault("Open", name); err != nil {
		return nil, err
	}
	return f.FS.Open(name)
}

func (f *FaultyFS) CreateTemp(dir, pattern string) (types.File, error) {
	if err := f.fault("CreateTemp", dir); err != nil {
		return nil, err
	}
	return f.FS.CreateTemp(dir, pattern)
}

func (f *FaultyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.fault("ReadDir", name); err != nil {
		return nil, err
	}
	return f.FS.ReadDir(name)
}
