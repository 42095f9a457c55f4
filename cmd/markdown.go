package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders md for the terminal, or returns it verbatim if it
// cannot.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printMarkdown(md string) { fprintMarkdown(os.Stdout, md) }

func fprintMarkdown(w io.Writer, md string) { fmt.Fprint(w, renderMarkdown(md)) }
