package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	moneyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	countStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// StatusColor maps a runway band to its display color.
func StatusColor(s model.RunwayStatus) lipgloss.Color {
	switch s {
	case model.RunwayCritical:
		return ColorRed
	case model.RunwayCaution:
		return ColorYellow
	case model.RunwayHealthy:
		return ColorGreen
	}
	return ColorTextMuted
}

// RenderStatus renders the runway band label in its color.
func RenderStatus(s model.RunwayStatus) string {
	return lipgloss.NewStyle().Bold(true).Foreground(StatusColor(s)).Render(FormatStatus(s))
}

// RenderWarning renders a one-line warning.
func RenderWarning(msg string) string {
	return warnStyle.Render("! " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderMoney renders an already formatted amount.
func RenderMoney(s string) string {
	return moneyStyle.Render(s)
}

// RenderCount renders an already formatted count.
func RenderCount(s string) string {
	return countStyle.Render(s)
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

func (t Table) columns() []int {
	n := len(t.Headers)
	if n == 0 && len(t.Rows) > 0 {
		n = len(t.Rows[0])
	}
	widths := make([]int, n)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < n {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func rule(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
}

// pad fills cell to w display columns. Cells may carry ANSI styling.
func pad(cell string, w int, right bool) string {
	gap := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
	if right {
		return " " + gap + cell + " "
	}
	return " " + cell + gap + " "
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest are figures and right-aligned. A row
// holding the single cell "---" draws a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	widths := t.columns()

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], false)))
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule(&b, widths, "├", "┼", "┤")
			continue
		}
		b.WriteString(dimStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, w, i > 0)))
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := min(float64(current)/float64(total), 1)
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of
// values. The series is scaled between its own minimum and maximum, so a
// falling cash balance still shows its shape.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := len(blocks) - 1
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a labelled bar for a share in [0, 1].
// e.g., "Paid ads        ████████░░░░░░░░░░░░  40%"
func RenderHorizontalBar(label string, share float64, labelWidth, barWidth int) string {
	share = max(0, min(share, 1))
	filled := int(share*float64(barWidth) + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("  %-*s %s %3.0f%%", labelWidth, label, countStyle.Render(bar), share*100)
}
