package format

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var tierStyles = map[int]lipgloss.Style{
	5: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	4: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
	3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
	1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
}

// Terminal renders lines for a terminal, colouring score tokens by tier.
// Colours are dropped automatically when the output is not a TTY.
func Terminal(lines []Line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if !l.Scored() {
			sb.WriteString(l.Text)
			continue
		}
		sb.WriteString(l.prefix)
		sb.WriteString(tierStyles[l.Score].Render(strconv.Itoa(l.Score) + "/5"))
		sb.WriteString(l.suffix)
	}
	return sb.String()
}
