package mirage

import (
	stderrors "errors"
	"io/fs"
	"sort"

	"github.com/arthur-debert/mirage/pkg/errors"
)

// Canonical is one canonical copy and the paths redirected to it.
type Canonical struct {
	Path    string   `json:"path"`
	Size    int64    `json:"size"`
	Present bool     `json:"present"`
	Members []string `json:"members"`
}

// StatusResult summarizes a tree's journal.
type StatusResult struct {
	Target     string `json:"target"`
	SideStore  string `json:"side_store"`
	Actions    int    `json:"actions"`
	Checkpoint int    `json:"checkpoint"`
	Pending    int    `json:"pending"`
	Complete   bool   `json:"complete"`
	// BytesReclaimed counts the content of every redirected path beyond
	// the first of each canonical copy that exists on disk
	BytesReclaimed int64       `json:"bytes_reclaimed"`
	Canonicals     []Canonical `json:"canonicals"`
}

// Status reads a tree's journal without changing anything. It fails
// with NOT_INITIALIZED when the tree has no side-store.
func Status(opts Options) (*StatusResult, error) {
	e, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	session, err := e.store.Load(e.target)
	if err != nil {
		return nil, err
	}
	j := session.Journal

	result := &StatusResult{
		Target:     e.target,
		SideStore:  session.SideStore(),
		Actions:    len(j.Actions),
		Checkpoint: j.Checkpoint,
		Pending:    len(j.Pending()),
		Complete:   j.IsComplete(),
		Canonicals: []Canonical{},
	}

	byTarget := map[string]*Canonical{}
	for path, target := range j.Redirections {
		c, ok := byTarget[target]
		if !ok {
			c = &Canonical{Path: target}
			byTarget[target] = c
		}
		c.Members = append(c.Members, path)
	}

	for _, c := range byTarget {
		sort.Strings(c.Members)
		info, err := e.fs.Stat(c.Path)
		switch {
		case err == nil:
			c.Present = true
			c.Size = info.Size()
			result.BytesReclaimed += int64(len(c.Members)-1) * c.Size
		case stderrors.Is(err, fs.ErrNotExist):
		default:
			return nil, errors.IOf(err, c.Path, "failed to stat canonical copy %s", c.Path)
		}
		result.Canonicals = append(result.Canonicals, *c)
	}
	sort.Slice(result.Canonicals, func(i, k int) bool {
		return result.Canonicals[i].Path < result.Canonicals[k].Path
	})

	return result, nil
}
