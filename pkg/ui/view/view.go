// Package view turns operation results into a format-neutral document
// of titled sections. Renderers decide how each style name looks.
package view

import (
	"fmt"

	"github.com/arthur-debert/mirage/pkg/mirage"
	"github.com/arthur-debert/mirage/pkg/paths"
	"github.com/dustin/go-humanize"
)

// Style names understood by every renderer
const (
	StyleHeader  = "Header"
	StyleBanner  = "DryRunBanner"
	StyleLabel   = "Label"
	StyleValue   = "Value"
	StylePath    = "FilePath"
	StyleSuccess = "Success"
	StyleWarning = "Warning"
	StyleMuted   = "Muted"
)

// Line is a label/value pair. A line without a label is free text.
type Line struct {
	Label  string
	Value  string
	Style  string
	Indent int
}

// Section is a titled group of lines.
type Section struct {
	Title string
	Lines []Line
}

// Document is everything one result renders to.
type Document struct {
	Banner   string
	Sections []Section
}

// Build creates the document for a result. It reports false for result
// types it does not know.
func Build(result interface{}) (*Document, bool) {
	switch r := result.(type) {
	case *mirage.ApplyResult:
		return apply(r), true
	case *mirage.RevertResult:
		return revert(r), true
	case *mirage.StatusResult:
		return status(r), true
	default:
		return nil, false
	}
}

func apply(r *mirage.ApplyResult) *Document {
	doc := &Document{}
	if r.DryRun {
		doc.Banner = "DRY RUN: nothing was changed"
	}

	summary := Section{Title: "Deduplicated " + r.Target}
	if plan := r.Plan; plan != nil {
		summary.Lines = append(summary.Lines,
			value("Files scanned", fmt.Sprint(plan.Candidates)),
			value("Duplicate groups", fmt.Sprint(plan.Classes)),
			value("Actions planned", fmt.Sprint(plan.ActionsAppended)),
		)
	}
	if exec := r.Execution; exec != nil {
		if exec.DryRun {
			summary.Lines = append(summary.Lines, value("Actions pending", fmt.Sprint(len(exec.Planned))))
		} else {
			summary.Lines = append(summary.Lines,
				value("Actions applied", fmt.Sprint(exec.Applied)),
				value("Journal", fmt.Sprintf("%d of %d", exec.Checkpoint, exec.Total)),
			)
		}
	}
	if r.Plan != nil {
		summary.Lines = append(summary.Lines, Line{
			Label: "Space reclaimed",
			Value: humanize.IBytes(uint64(r.Plan.BytesReclaimed)),
			Style: StyleSuccess,
		})
	}
	doc.Sections = append(doc.Sections, summary)

	if r.Execution != nil && len(r.Execution.Planned) > 0 {
		pending := Section{Title: "Would apply"}
		for _, a := range r.Execution.Planned {
			pending.Lines = append(pending.Lines, Line{
				Label:  string(a.Kind),
				Value:  rel(r.Target, a.Source) + " -> " + rel(r.Target, a.Target),
				Style:  StylePath,
				Indent: 1,
			})
		}
		doc.Sections = append(doc.Sections, pending)
	}

	if len(r.Skipped) > 0 {
		skipped := Section{Title: "Skipped"}
		for _, s := range r.Skipped {
			skipped.Lines = append(skipped.Lines, Line{
				Label:  rel(r.Target, s.Path),
				Value:  s.Err.Error(),
				Style:  StyleWarning,
				Indent: 1,
			})
		}
		doc.Sections = append(doc.Sections, skipped)
	}

	if r.Plan != nil && len(r.Plan.Inconsistent) > 0 {
		inconsistent := Section{Title: "Equal files with different canonical copies"}
		for _, p := range r.Plan.Inconsistent {
			inconsistent.Lines = append(inconsistent.Lines,
				Line{Label: rel(r.Target, p.Here), Value: rel(r.Target, p.HereTarget), Style: StyleWarning, Indent: 1},
				Line{Label: rel(r.Target, p.There), Value: rel(r.Target, p.ThereTarget), Style: StyleWarning, Indent: 1},
			)
		}
		doc.Sections = append(doc.Sections, inconsistent)
	}

	return doc
}

func revert(r *mirage.RevertResult) *Document {
	doc := &Document{}
	if r.DryRun {
		doc.Banner = "DRY RUN: nothing was changed"
	}

	if !r.Initialized {
		doc.Sections = append(doc.Sections, Section{
			Title: "Reverted " + r.Target,
			Lines: []Line{{Value: "Nothing to revert", Style: StyleMuted}},
		})
		return doc
	}

	section := Section{Title: "Reverted " + r.Target}
	if r.Report != nil {
		if r.DryRun {
			section.Lines = append(section.Lines, value("Actions pending", fmt.Sprint(len(r.Report.Planned))))
		} else {
			section.Lines = append(section.Lines,
				value("Actions reverted", fmt.Sprint(r.Report.Reverted)),
				Line{Label: "Files restored", Value: fmt.Sprint(len(r.Report.Restored)), Style: StyleSuccess},
			)
			for _, p := range r.Report.Restored {
				section.Lines = append(section.Lines, Line{Value: rel(r.Target, p), Style: StylePath, Indent: 1})
			}
		}
	}
	doc.Sections = append(doc.Sections, section)
	return doc
}

func status(r *mirage.StatusResult) *Document {
	state := Line{Label: "State", Value: "complete", Style: StyleSuccess}
	if !r.Complete {
		state = Line{
			Label: "State",
			Value: fmt.Sprintf("interrupted, %d actions pending (run apply to finish)", r.Pending),
			Style: StyleWarning,
		}
	}

	summary := Section{
		Title: "Status of " + r.Target,
		Lines: []Line{
			state,
			value("Journal", fmt.Sprintf("%d of %d", r.Checkpoint, r.Actions)),
			value("Canonical copies", fmt.Sprint(len(r.Canonicals))),
			{Label: "Space reclaimed", Value: humanize.IBytes(uint64(r.BytesReclaimed)), Style: StyleSuccess},
		},
	}
	doc := &Document{Sections: []Section{summary}}

	if len(r.Canonicals) == 0 {
		return doc
	}
	canonicals := Section{Title: "Canonical copies"}
	for _, c := range r.Canonicals {
		size := humanize.IBytes(uint64(c.Size))
		if !c.Present {
			size = "not yet copied"
		}
		canonicals.Lines = append(canonicals.Lines, Line{
			Label:  rel(r.Target, c.Path),
			Value:  fmt.Sprintf("%s, %d files", size, len(c.Members)),
			Style:  StylePath,
			Indent: 1,
		})
		for _, m := range c.Members {
			canonicals.Lines = append(canonicals.Lines, Line{Value: rel(r.Target, m), Style: StyleMuted, Indent: 2})
		}
	}
	doc.Sections = append(doc.Sections, canonicals)
	return doc
}

func value(label, v string) Line {
	return Line{Label: label, Value: v, Style: StyleValue}
}

// rel shortens p relative to the target, falling back to p.
func rel(target, p string) string {
	if r, err := paths.RelativePath(target, p); err == nil && paths.ContainsPath(target, p) {
		return r
	}
	return p
}
