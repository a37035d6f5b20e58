package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

// StatusKind picks the color of the status bar message.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusOK
	StatusError
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// last action's message in the middle and the session context on the right.
func RenderStatusBar(width int, hints, msg string, kind StatusKind, where string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgColor := t.TextPrimary
	switch kind {
	case StatusOK:
		msgColor = t.Green
	case StatusError:
		msgColor = t.Red
	}
	msgStyle := lipgloss.NewStyle().Foreground(msgColor).Background(t.Surface).Bold(kind != StatusInfo)
	ctxStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	left := base.Render(" " + hints)
	right := ctxStyle.Render(where + " ")
	middle := ""
	if msg != "" {
		middle = msgStyle.Render("  " + msg)
	}

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(middle)-lipgloss.Width(right))
	spacer := base.Render(strings.Repeat(" ", padding))

	return lipgloss.NewStyle().MaxWidth(width).Render(left + middle + spacer + right)
}
