// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/mirage/pkg/errors"
	"github.com/arthur-debert/mirage/pkg/ui/styles"
	"github.com/arthur-debert/mirage/pkg/ui/view"
)

// Renderer provides rich terminal output using the style sheet
type Renderer struct {
	output io.Writer
	sheet  *styles.Sheet
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{
		output: w,
		sheet:  styles.Default(),
	}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	doc, ok := view.Build(result)
	if !ok {
		// For unknown types, just print them
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	var b strings.Builder
	if doc.Banner != "" {
		b.WriteString(r.sheet.Get(view.StyleBanner).Render(doc.Banner))
		b.WriteString("\n\n")
	}
	for i, section := range doc.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.sheet.Get(view.StyleHeader).Render(section.Title))
		b.WriteString("\n")
		for _, line := range section.Lines {
			b.WriteString(strings.Repeat("  ", line.Indent+1))
			if line.Label != "" {
				b.WriteString(r.sheet.Get(view.StyleLabel).Render(line.Label))
				b.WriteString(" ")
			}
			b.WriteString(r.sheet.Get(line.Style).Render(line.Value))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	prefix := "Error"
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		prefix = fmt.Sprintf("Error (%s)", code)
	}
	line := r.sheet.Get("Error").Render(prefix+":") + " " + err.Error()
	if path, ok := errors.GetErrorDetails(err)["path"]; ok {
		line += "\n  " + r.sheet.Get(view.StylePath).Render(fmt.Sprint(path))
	}
	_, werr := fmt.Fprintln(r.output, line)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, r.sheet.Get(view.StyleMuted).Render(msg))
	return err
}
