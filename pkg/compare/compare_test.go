// pkg/compare/compare_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: In-memory filesystem (afero)
// PURPOSE: Test byte-identical comparison and content digests

package compare_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/mirage/pkg/compare"
	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/testutil"
	"github.com/arthur-debert/mirage/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComparator(t *testing.T, files map[string]string, opts compare.Options) (*compare.Comparator, types.FS) {
	t.Helper()

	fsys := testutil.NewTestFS()
	require.NoError(t, fsys.MkdirAll("/t", 0755))
	for name, content := range files {
		require.NoError(t, fsys.WriteFile("/t/"+name, []byte(content), 0644))
	}

	opts.FS = fsys
	c, err := compare.New(opts)
	require.NoError(t, err)
	return c, fsys
}

func TestSame(t *testing.T) {
	big := strings.Repeat("0123456789", 3000)

	tests := []struct {
		name      string
		a, b      string
		chunkSize int
		want      bool
	}{
		{name: "identical", a: "hello", b: "hello", want: true},
		{name: "different content same size", a: "hello", b: "world", want: false},
		{name: "different size", a: "hello", b: "hello!", want: false},
		{name: "both empty", a: "", b: "", want: true},
		{name: "multi chunk identical", a: big, b: big, chunkSize: 7, want: true},
		{name: "multi chunk differs in last byte", a: big, b: big[:len(big)-1] + "x", chunkSize: 1000, want: false},
		{name: "exact chunk multiple", a: "abcdef", b: "abcdef", chunkSize: 3, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newComparator(t, map[string]string{"a": tt.a, "b": tt.b}, compare.Options{ChunkSize: tt.chunkSize})

			got, err := c.Same("/t/a", "/t/b")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullMatch_PrefixIsNotEqual(t *testing.T) {
	c, _ := newComparator(t, map[string]string{"a": "abcdef", "b": "abc"}, compare.Options{ChunkSize: 3})

	got, err := c.FullMatch("/t/a", "/t/b")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = c.FullMatch("/t/b", "/t/a")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSame_MissingFileIsIOError(t *testing.T) {
	c, _ := newComparator(t, map[string]string{"a": "x"}, compare.Options{})

	_, err := c.Same("/t/a", "/t/missing")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	assert.Equal(t, "/t/missing", errors.GetErrorDetails(err)["path"])
}

func TestFullMatch_OpenFailureIsIOError(t *testing.T) {
	fsys := testutil.NewTestFS()
	require.NoError(t, fsys.MkdirAll("/t", 0755))
	require.NoError(t, fsys.WriteFile("/t/a", []byte("x"), 0644))
	require.NoError(t, fsys.WriteFile("/t/b", []byte("x"), 0644))

	faulty := testutil.NewFaultyFS(fsys, testutil.Fault{Op: "Open", Path: "/t/b", Err: assert.AnError})
	c, err := compare.New(compare.Options{FS: faulty})
	require.NoError(t, err)

	_, err = c.FullMatch("/t/a", "/t/b")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDigest(t *testing.T) {
	files := map[string]string{"a": "same", "b": "same", "c": "other"}

	t.Run("xxhash default", func(t *testing.T) {
		c, _ := newComparator(t, files, compare.Options{})

		a, err := c.Digest("/t/a")
		require.NoError(t, err)
		b, err := c.Digest("/t/b")
		require.NoError(t, err)
		other, err := c.Digest("/t/c")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(a, "xxhash:"))
		assert.Equal(t, a, b)
		assert.NotEqual(t, a, other)
	})

	t.Run("sha256", func(t *testing.T) {
		c, _ := newComparator(t, files, compare.Options{Digest: compare.DigestSHA256, ChunkSize: 2})

		a, err := c.Digest("/t/a")
		require.NoError(t, err)
		// sha256("same")
		assert.Equal(t, "sha256:0967115f2813a3541eaef77de9d9d5773f1c0c04314b0bbfe4ff3b3b1c55b5d5", a)
	})
}

func TestNew_UnknownDigest(t *testing.T) {
	_, err := compare.New(compare.Options{Digest: "md5"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
