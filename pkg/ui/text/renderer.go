// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/ui/view"
)

const labelWidth = 18

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	doc, ok := view.Build(result)
	if !ok {
		// For unknown types, just print them
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	var b strings.Builder
	if doc.Banner != "" {
		fmt.Fprintf(&b, "*** %s ***\n\n", doc.Banner)
	}
	for i, section := range doc.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintln(&b, section.Title)
		for _, line := range section.Lines {
			b.WriteString(strings.Repeat("  ", line.Indent+1))
			if line.Label == "" {
				fmt.Fprintln(&b, line.Value)
				continue
			}
			fmt.Fprintf(&b, "%-*s %s\n", labelWidth, line.Label+":", line.Value)
		}
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	code := errors.GetErrorCode(err)
	if code == errors.ErrUnknown {
		_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
		return werr
	}
	_, werr := fmt.Fprintf(r.output, "Error (%s): %v\n", code, err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
