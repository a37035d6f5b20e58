// Package components provides reusable widgets for the unitecon dashboard.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// Metric is one headline figure. DeltaColor tints the delta line; leave it
// empty for the dim default.
type Metric struct {
	Label      string
	Value      string
	Delta      string
	DeltaColor lipgloss.Color
	Accent     lipgloss.Color
}

func cardStyle(outerWidth int, border lipgloss.Color) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(10, outerWidth-2)).
		Padding(0, 1)
}

// MetricCard renders a small metric card with label, value and delta.
// outerWidth is the total rendered width including border.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	border := t.Border
	valueColor := t.TextPrimary
	if m.Accent != "" {
		border, valueColor = m.Accent, m.Accent
	}
	deltaColor := t.TextDim
	if m.DeltaColor != "" {
		deltaColor = m.DeltaColor
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(valueColor).Background(t.Surface).Bold(true)
	deltaStyle := lipgloss.NewStyle().Foreground(deltaColor).Background(t.Surface)

	content := labelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Delta != "" {
		content += "\n" + deltaStyle.Render(m.Delta)
	}
	return cardStyle(outerWidth, border).Render(content)
}

// MetricCardRow renders a row of metric cards side by side.
// totalWidth is the full row width; cards sum to exactly that.
func MetricCardRow(cards []Metric, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(cards))

	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = MetricCard(c, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body

	return cardStyle(outerWidth, t.Border).Render(content)
}

// CardRow joins pre-rendered cards horizontally. Shorter cards are padded
// with the background color so the row has no unstyled gaps.
func CardRow(cards []string) string {
	var nonEmpty []string
	for _, c := range cards {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}

	tallest := 0
	for _, c := range nonEmpty {
		tallest = max(tallest, lipgloss.Height(c))
	}
	for i, c := range nonEmpty {
		if lipgloss.Height(c) < tallest {
			nonEmpty[i] = lipgloss.PlaceVertical(tallest, lipgloss.Top, c,
				lipgloss.WithWhitespaceBackground(theme.Active.Background))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, nonEmpty...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(10, outerWidth-4)
}

// Badge renders a short colored label, like a runway band.
func Badge(text string, color lipgloss.Color) string {
	t := theme.Active
	return lipgloss.NewStyle().
		Foreground(t.Background).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(text)
}
