package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#06B6D4") // Cyan
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Danger  = lipgloss.Color("#EF4444") // Red
	Muted   = lipgloss.Color("#6B7280") // Gray

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	StatusOK = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusOutOfRange = lipgloss.NewStyle().
				Foreground(Warning).
				Bold(true)

	StatusInvalid = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)

	// Result box around the retained section and breaker
	ResultBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Success).
			Padding(0, 2)

	FailureBox = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Warning).
			Padding(0, 2)
)

// Status renders a circuit status word in its color.
func Status(status string) string {
	switch status {
	case "ok":
		return StatusOK.Render("OK")
	case "out-of-range":
		return StatusOutOfRange.Render("OUT OF RANGE")
	case "invalid":
		return StatusInvalid.Render("INVALID")
	}
	return StatusInvalid.Render(status)
}
