package ui

import "github.com/charmbracelet/lipgloss"

// A cool violet theme, matching the default hypercube palette.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1A1A2E", Dark: "#E0E0FF"})

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A4A6A", Dark: "#8F8FB8"})

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#5F5F87", Dark: "#7D7DA8"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#3A3A5C", Dark: "#A8A8D0"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9090B0", Dark: "#55557A"})
)
