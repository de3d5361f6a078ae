package wal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvert(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   Action
	}{
		{
			name:   "copy_becomes_noop_swapped",
			action: NewCopy("/t/a.txt", "/t/.mirage/originals/a.txt"),
			want:   NewNoOp("/t/.mirage/originals/a.txt", "/t/a.txt"),
		},
		{
			name:   "symlink_becomes_copy_swapped",
			action: NewSymlink("/t/b.txt", "/t/.mirage/originals/a.txt"),
			want:   NewCopy("/t/.mirage/originals/a.txt", "/t/b.txt"),
		},
		{
			name:   "symlink_mode_travels_to_copy",
			action: NewSymlink("/t/b.sh", "/t/.mirage/originals/a.sh").WithMode(0755),
			want:   NewCopy("/t/.mirage/originals/a.sh", "/t/b.sh").WithMode(0755),
		},
		{
			name:   "noop_is_unchanged",
			action: NewNoOp("/t/x", "/t/y"),
			want:   NewNoOp("/t/x", "/t/y"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.Invert())
		})
	}
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindCopy.Valid())
	assert.True(t, KindSymlink.Valid())
	assert.True(t, KindNoOp.Valid())
	assert.False(t, Kind("Move").Valid())
	assert.False(t, Kind("").Valid())
}

func TestActionString(t *testing.T) {
	a := NewSymlink("/t/b", "/t/.mirage/originals/b")
	assert.Equal(t, "Symlink /t/b -> /t/.mirage/originals/b", a.String())
}

func TestWithMode_KeepsPermissionBitsOnly(t *testing.T) {
	a := NewSymlink("/t/b", "/t/.mirage/originals/b").WithMode(0755 | os.ModeSetuid | os.ModeDir)
	assert.Equal(t, os.FileMode(0755), a.Mode)
}
