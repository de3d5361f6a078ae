package topics_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/mirage/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS() fstest.MapFS {
	return fstest.MapFS{
		"help/journal.md":         {Data: []byte("# Journal\n\nThe write-ahead log.")},
		"help/option-dry-run.txt": {Data: []byte("Plan without changing anything")},
		"help/notes.json":         {Data: []byte("{}")},
	}
}

func TestLoad(t *testing.T) {
	m, err := topics.Load(topicFS(), "help", topics.Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"journal", "option-dry-run"}, m.Names())

	topic, ok := m.Get("journal")
	require.True(t, ok)
	assert.Equal(t, ".md", topic.Ext)
	assert.Contains(t, topic.Content, "write-ahead")

	_, ok = m.Get("notes")
	assert.False(t, ok)
}

func TestLoad_CustomExtensions(t *testing.T) {
	m, err := topics.Load(topicFS(), "help", topics.Options{Extensions: []string{".json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, m.Names())
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := topics.Load(topicFS(), "nowhere", topics.Options{})
	assert.Error(t, err)
}

func TestGet_FlagStyle(t *testing.T) {
	m, err := topics.Load(topicFS(), "help", topics.Options{})
	require.NoError(t, err)

	for _, name := range []string{"dry-run", "--dry-run", "-dry-run", "option-dry-run"} {
		topic, ok := m.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, "option-dry-run", topic.Name)
	}
}

func TestWriteIndex(t *testing.T) {
	m, err := topics.Load(topicFS(), "help", topics.Options{})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	m.WriteIndex(buf, "mirage")

	out := buf.String()
	assert.Contains(t, out, "General topics:\n  journal")
	assert.Contains(t, out, "Option topics:\n  --dry-run")
	assert.Contains(t, out, "mirage help <topic>")

	empty, err := topics.Load(fstest.MapFS{"help/x.bin": {}}, "help", topics.Options{})
	require.NoError(t, err)
	buf.Reset()
	empty.WriteIndex(buf, "mirage")
	assert.Equal(t, "No help topics available.\n", buf.String())
}

func TestInstall(t *testing.T) {
	root := &cobra.Command{Use: "mirage", Short: "root"}
	root.AddCommand(&cobra.Command{Use: "apply", Short: "Deduplicate a tree", Run: func(*cobra.Command, []string) {}})

	m, err := topics.Load(topicFS(), "help", topics.Options{})
	require.NoError(t, err)
	m.Install(root)

	run := func(args ...string) string {
		buf := &bytes.Buffer{}
		root.SetOut(buf)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return buf.String()
	}

	assert.Equal(t, "Plan without changing anything", run("help", "dry-run"))
	assert.Contains(t, run("help", "topics"), "journal")
	assert.True(t, strings.Contains(run("help", "apply"), "Deduplicate a tree"))
}

func TestGlamourRenderer_NonMarkdown(t *testing.T) {
	r := topics.NewGlamourRenderer()
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
	assert.NotEmpty(t, r.Render("# Title", ".md"))
}
