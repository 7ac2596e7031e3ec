package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// useColor gates styling: plain output for pipes and JSON mode.
func useColor() bool {
	if jsonOutput {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func styled(s lipgloss.Style) lipgloss.Style {
	if !useColor() {
		return lipgloss.NewStyle()
	}
	return s
}

func titleStyle() lipgloss.Style {
	return styled(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")))
}

func subtitleStyle() lipgloss.Style {
	return styled(lipgloss.NewStyle().Foreground(lipgloss.Color("8")))
}

func winnerStyle() lipgloss.Style {
	return styled(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")))
}

func warnStyle() lipgloss.Style {
	return styled(lipgloss.NewStyle().Foreground(lipgloss.Color("11")))
}

func errorStyle() lipgloss.Style {
	return styled(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")))
}
