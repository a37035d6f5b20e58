package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "History", Key: 'h', KeyPos: 0},
	{Name: "Roadmap", Key: 'r', KeyPos: 0},
	{Name: "Stage", Key: 's', KeyPos: 0},
	{Name: "Advice", Key: 'a', KeyPos: 0},
}

func tabStyles() (active, inactive, key, dimKey lipgloss.Style) {
	t := theme.Active
	active = lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactive = lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	key = lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	dimKey = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)
	return
}

func renderTab(tab Tab, isActive bool) string {
	active, inactive, key, dimKey := tabStyles()
	if isActive {
		return active.Render(tab.Name)
	}
	pad := inactive.Render(" ")
	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		return pad +
			inactive.Render(tab.Name[:tab.KeyPos]) +
			dimKey.Render("[") + key.Render(string(tab.Name[tab.KeyPos])) + dimKey.Render("]") +
			inactive.Render(tab.Name[tab.KeyPos+1:]) +
			pad
	}
	return pad + inactive.Render(tab.Name) +
		dimKey.Render("[") + key.Render(string(tab.Key)) + dimKey.Render("]") + pad
}

// TabVisualWidth returns the rendered width of a tab. Mouse hit testing
// relies on this matching RenderTabBar exactly.
func TabVisualWidth(tab Tab, isActive bool) int {
	return lipgloss.Width(renderTab(tab, isActive))
}

// RenderTabBar renders the tab bar with the given active index, followed
// by right-aligned context such as the selected month.
func RenderTabBar(activeIdx int, width int, context string) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	bar := strings.Join(parts, sep)

	ctx := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Render(context + " ")
	gap := max(0, width-lipgloss.Width(bar)-lipgloss.Width(ctx))
	fill := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap))

	return bar + fill + ctx
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
