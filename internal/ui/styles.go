package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	primaryColor   = lipgloss.Color("#0EA5E9") // Sky blue for FlightPulse branding
	secondaryColor = lipgloss.Color("#7C3AED") // Purple accent
	successColor   = lipgloss.Color("#10B981")
	noticeColor    = lipgloss.Color("#F59E0B")
	dimColor       = lipgloss.Color("#6B7280") // Gray for hints
	errorColor     = lipgloss.Color("#EF4444")
)

// styles are bound to the presenter's renderer so color output follows the
// writer, not os.Stdout
type styles struct {
	header  lipgloss.Style
	option  lipgloss.Style
	detail  lipgloss.Style
	help    lipgloss.Style
	system  lipgloss.Style
	notice  lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1),
		option: r.NewStyle().
			Bold(true).
			Foreground(secondaryColor),
		detail: r.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB")),
		help: r.NewStyle().
			Foreground(dimColor).
			Italic(true),
		system: r.NewStyle().
			Foreground(dimColor),
		notice: r.NewStyle().
			Foreground(noticeColor).
			Bold(true),
		success: r.NewStyle().
			Foreground(successColor).
			Bold(true),
		err: r.NewStyle().
			Foreground(errorColor).
			Bold(true),
	}
}

func (s styles) systemMessage(text string) string {
	return s.system.Render("• " + text)
}

func (s styles) noticeMessage(text string) string {
	return s.notice.Render("⏰ " + text)
}

func (s styles) successMessage(text string) string {
	return s.success.Render("✓ " + text)
}

func (s styles) errorMessage(text string) string {
	return s.err.Render("✗ " + text)
}
