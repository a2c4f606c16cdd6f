package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders markdown content with glamour
func renderMarkdown(content string, width int) string {
	if width < 40 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	out, err := r.Render(content)
	if err != nil {
		return content
	}

	// Trim excessive trailing newlines from glamour output
	return strings.TrimRight(out, "\n")
}
