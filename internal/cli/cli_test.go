// internal/cli/cli_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real filesystem, full command tree
// PURPOSE: Test the commands end to end as a user runs them

package cli_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/mirage/internal/cli"
	"github.com/arthur-debert/mirage/pkg/testutil"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("MIRAGE_CONFIG_DIR", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("MIRAGE_JOURNAL_FSYNC", "false")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestApplyStatusRevert(t *testing.T) {
	isolate(t)
	root := testutil.NewTree(t, map[string]string{
		"a.txt":      "same",
		"docs/b.txt": "same",
		"c.txt":      "different",
	})

	out, _, err := run(t, "apply", "--format", "json", root)
	require.NoError(t, err)

	var applied map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &applied))
	assert.Equal(t, root, applied["target"])
	plan := applied["plan"].(map[string]interface{})
	assert.Equal(t, float64(1), plan["classes"])

	canonical := filepath.Join(root, ".mirage", "originals", "a.txt")
	testutil.AssertSymlinkTo(t, filepath.Join(root, "a.txt"), canonical)

	out, _, err = run(t, "status", "--format", "text", root)
	require.NoError(t, err)
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, ".mirage/originals/a.txt")

	_, _, err = run(t, "revert", "-f", "json", root)
	require.NoError(t, err)
	testutil.AssertRegularFile(t, filepath.Join(root, "a.txt"), "same")
	testutil.AssertNotExists(t, filepath.Join(root, ".mirage"))
}

func TestApply_DryRunAndFlags(t *testing.T) {
	isolate(t)
	root := testutil.NewTree(t, map[string]string{
		"a.log":   "same",
		"b.log":   "same",
		".x/c.md": "twin",
		"d.md":    "twin",
	})

	out, _, err := run(t, "apply", "--dry-run", "--ignore", "*.log", "--skip-hidden", "--format", "text", root)
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "Files scanned:     1")
	testutil.AssertNotExists(t, filepath.Join(root, ".mirage"))
}

func TestStatus_NotInitialized(t *testing.T) {
	isolate(t)
	root := t.TempDir()

	_, stderr, err := run(t, "status", "--format", "json", root)
	require.Error(t, err)
	assert.True(t, cli.Reported(err))

	var rendered map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stderr), &rendered))
	assert.Equal(t, "NOT_INITIALIZED", rendered["code"])
}

func TestApply_TooManyArgs(t *testing.T) {
	isolate(t)
	_, _, err := run(t, "apply", "one", "two")
	require.Error(t, err)
	assert.False(t, cli.Reported(err))
}

func TestConfig(t *testing.T) {
	isolate(t)
	root := testutil.NewTree(t, map[string]string{
		".mirage.toml": "[scan]\nignore = [\"*.tmp\"]\n",
	})

	out, _, err := run(t, "config", root)
	require.NoError(t, err)
	assert.Contains(t, out, "# sources: defaults, ")
	assert.Contains(t, out, "*.tmp")
	assert.Contains(t, out, "fsync = false")

	out, _, err = run(t, "config", "--template")
	require.NoError(t, err)
	assert.Contains(t, out, "# chunk_size")
}

func TestTopics(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "topics")
	require.NoError(t, err)
	for _, name := range []string{"overview", "journal", "config", "--dry-run"} {
		assert.Contains(t, out, name)
	}

	out, _, err = run(t, "topics", "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "checkpoint")

	_, _, err = run(t, "topics", "nope")
	assert.Error(t, err)
}

func TestVersionAndCompletion(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mirage version dev")

	out, _, err = run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "mirage")

	_, _, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}
