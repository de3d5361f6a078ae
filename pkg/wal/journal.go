package wal

import (
	"path/filepath"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/paths"
)

// Journal is the unit of durable state for one target directory.
//
// Actions before Checkpoint have been applied exactly once, in order;
// actions at or after it are planned but not yet applied.
type Journal struct {
	Actions      []Action          `json:"actions"`
	Redirections map[string]string `json:"redirections"`
	Checkpoint   int               `json:"checkpoint"`
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{
		Actions:      []Action{},
		Redirections: map[string]string{},
	}
}

// Append adds planned actions to the end of the journal.
func (j *Journal) Append(actions ...Action) {
	j.Actions = append(j.Actions, actions...)
}

// Redirect records that path is served by the canonical copy.
func (j *Journal) Redirect(path, canonical string) {
	if j.Redirections == nil {
		j.Redirections = map[string]string{}
	}
	j.Redirections[path] = canonical
}

// RedirectionFor returns the canonical copy recorded for path.
func (j *Journal) RedirectionFor(path string) (string, bool) {
	canonical, ok := j.Redirections[path]
	return canonical, ok
}

// Applied returns the actions already applied to the filesystem.
func (j *Journal) Applied() []Action {
	return j.Actions[:j.Checkpoint]
}

// Pending returns the actions not yet applied.
func (j *Journal) Pending() []Action {
	return j.Actions[j.Checkpoint:]
}

// Advance moves the checkpoint past one more applied action.
func (j *Journal) Advance() {
	if j.Checkpoint < len(j.Actions) {
		j.Checkpoint++
	}
}

// IsComplete reports whether every planned action has been applied.
func (j *Journal) IsComplete() bool {
	return j.Checkpoint == len(j.Actions)
}

// Inverse returns the applied actions, reversed and inverted: the
// sequence that restores the tree to its pre-apply state.
func (j *Journal) Inverse() []Action {
	applied := j.Applied()
	inverse := make([]Action, 0, len(applied))
	for i := len(applied) - 1; i >= 0; i-- {
		inverse = append(inverse, applied[i].Invert())
	}
	return inverse
}

// CanonicalInUse reports whether a canonical path is already claimed by
// a redirection or a planned copy.
func (j *Journal) CanonicalInUse(canonical string) bool {
	for _, target := range j.Redirections {
		if target == canonical {
			return true
		}
	}
	for _, a := range j.Actions {
		if a.Kind == KindCopy && a.Target == canonical {
			return true
		}
	}
	return false
}

// Validate checks the journal invariants against the tree it belongs to.
// A journal that fails validation is never replayed.
func (j *Journal) Validate(layout paths.Layout) error {
	if j.Checkpoint < 0 || j.Checkpoint > len(j.Actions) {
		return errors.Newf(errors.ErrCorruptJournal,
			"checkpoint %d outside [0, %d]", j.Checkpoint, len(j.Actions)).
			WithDetail("checkpoint", j.Checkpoint)
	}

	root := layout.TargetDir()
	for i, a := range j.Actions {
		if !a.Kind.Valid() {
			return errors.Newf(errors.ErrCorruptJournal, "action %d has unknown kind %q", i, a.Kind).
				WithDetail("index", i)
		}
		for _, p := range []string{a.Source, a.Target} {
			if !filepath.IsAbs(p) || !paths.ContainsPath(root, p) {
				return errors.Newf(errors.ErrCorruptJournal,
					"action %d path %q is not inside %s", i, p, root).
					WithDetail("index", i)
			}
		}
	}

	for from, to := range j.Redirections {
		if !filepath.IsAbs(from) || !paths.ContainsPath(root, from) {
			return errors.Newf(errors.ErrCorruptJournal, "redirection source %q is not inside %s", from, root)
		}
		if !filepath.IsAbs(to) || !paths.ContainsPath(layout.Originals(), to) {
			return errors.Newf(errors.ErrCorruptJournal,
				"redirection target %q is not inside %s", to, layout.Originals())
		}
	}

	return nil
}
