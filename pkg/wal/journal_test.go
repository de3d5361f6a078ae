package wal

import (
	"testing"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannedPair() *Journal {
	j := NewJournal()
	canonical := "/t/.mirage/originals/a.txt"
	j.Append(
		NewCopy("/t/a.txt", canonical),
		NewSymlink("/t/a.txt", canonical),
		NewSymlink("/t/b.txt", canonical),
	)
	j.Redirect("/t/a.txt", canonical)
	j.Redirect("/t/b.txt", canonical)
	return j
}

func TestJournalCheckpoint(t *testing.T) {
	j := plannedPair()

	assert.Len(t, j.Pending(), 3)
	assert.Empty(t, j.Applied())
	assert.False(t, j.IsComplete())

	j.Advance()
	j.Advance()
	assert.Len(t, j.Applied(), 2)
	assert.Equal(t, NewSymlink("/t/b.txt", "/t/.mirage/originals/a.txt"), j.Pending()[0])

	j.Advance()
	j.Advance() // never moves past the end
	assert.Equal(t, 3, j.Checkpoint)
	assert.True(t, j.IsComplete())
}

func TestJournalInverse(t *testing.T) {
	j := plannedPair()
	j.Advance()
	j.Advance()

	inverse := j.Inverse()
	require.Len(t, inverse, 2)
	assert.Equal(t, NewCopy("/t/.mirage/originals/a.txt", "/t/a.txt"), inverse[0])
	assert.Equal(t, NewNoOp("/t/.mirage/originals/a.txt", "/t/a.txt"), inverse[1])
}

func TestJournalRedirections(t *testing.T) {
	j := plannedPair()

	canonical, ok := j.RedirectionFor("/t/b.txt")
	assert.True(t, ok)
	assert.Equal(t, "/t/.mirage/originals/a.txt", canonical)

	_, ok = j.RedirectionFor("/t/c.txt")
	assert.False(t, ok)

	assert.True(t, j.CanonicalInUse("/t/.mirage/originals/a.txt"))
	assert.False(t, j.CanonicalInUse("/t/.mirage/originals/c.txt"))
}

func TestJournalValidate(t *testing.T) {
	layout := paths.NewLayout("/t")

	tests := []struct {
		name    string
		mutate  func(j *Journal)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(j *Journal) {},
		},
		{
			name:    "negative_checkpoint",
			mutate:  func(j *Journal) { j.Checkpoint = -1 },
			wantErr: true,
		},
		{
			name:    "checkpoint_past_end",
			mutate:  func(j *Journal) { j.Checkpoint = 4 },
			wantErr: true,
		},
		{
			name:    "unknown_kind",
			mutate:  func(j *Journal) { j.Actions[1].Kind = "Move" },
			wantErr: true,
		},
		{
			name:    "relative_path",
			mutate:  func(j *Journal) { j.Actions[0].Source = "a.txt" },
			wantErr: true,
		},
		{
			name:    "path_outside_tree",
			mutate:  func(j *Journal) { j.Actions[2].Source = "/etc/passwd" },
			wantErr: true,
		},
		{
			name:    "redirection_outside_originals",
			mutate:  func(j *Journal) { j.Redirect("/t/c.txt", "/t/c-copy.txt") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := plannedPair()
			tt.mutate(j)

			err := j.Validate(layout)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrCorruptJournal))
				return
			}
			assert.NoError(t, err)
		})
	}
}
