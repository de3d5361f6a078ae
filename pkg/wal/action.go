package wal

import (
	"fmt"
	"io/fs"
)

// Kind is the operation class of an Action. The string values are the
// on-disk encoding.
type Kind string

const (
	// KindCopy copies Source's bytes to Target.
	KindCopy Kind = "Copy"
	// KindSymlink replaces Source with a symlink pointing at Target.
	KindSymlink Kind = "Symlink"
	// KindNoOp has no filesystem effect.
	KindNoOp Kind = "NOP"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCopy, KindSymlink, KindNoOp:
		return true
	}
	return false
}

// Action is a single planned filesystem mutation. Paths are absolute.
// Mode is set on symlinks to the permission bits the replaced file had,
// so that reverting restores them; zero means "as the source".
type Action struct {
	Kind   Kind        `json:"action"`
	Source string      `json:"source"`
	Target string      `json:"target"`
	Mode   fs.FileMode `json:"mode,omitempty"`
}

// NewCopy plans copying source's content to target.
func NewCopy(source, target string) Action {
	return Action{Kind: KindCopy, Source: source, Target: target}
}

// NewSymlink plans turning source into a symlink to target.
func NewSymlink(source, target string) Action {
	return Action{Kind: KindSymlink, Source: source, Target: target}
}

// WithMode returns a copy of a carrying the permission bits of mode.
func (a Action) WithMode(mode fs.FileMode) Action {
	a.Mode = mode.Perm()
	return a
}

// NewNoOp plans nothing.
func NewNoOp(source, target string) Action {
	return Action{Kind: KindNoOp, Source: source, Target: target}
}

// Invert returns the action that undoes a when the inverted sequence is
// replayed in reverse order. Source and target are swapped:
//
//	Copy{s,t}    -> NOP{t,s}    the canonical copy goes away with the side-store
//	Symlink{s,t} -> Copy{t,s}   content is copied back over the link, with
//	                            the mode the file had before
//	NOP{s,t}     -> NOP{s,t}
func (a Action) Invert() Action {
	switch a.Kind {
	case KindCopy:
		return NewNoOp(a.Target, a.Source)
	case KindSymlink:
		return NewCopy(a.Target, a.Source).WithMode(a.Mode)
	default:
		return NewNoOp(a.Source, a.Target)
	}
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s -> %s", a.Kind, a.Source, a.Target)
}
