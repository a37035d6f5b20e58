package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline scaled between the series minimum
// and maximum. A flat series renders as full blocks.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(sparkBlocks) - 1
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		buf.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders one vertical bar per value with a y-axis labelled at the
// top and at zero, and optional x labels under the bars. Negative values
// draw as empty bars.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	top := FormatChartLabel(peak)
	yLabelW := max(4, len(top)+1)
	chartW := max(5, width-yLabelW-1)

	n := len(values)
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := max(1, min(6, (chartW-(n-1)*gap)/n))
	if n*(barW+gap) > chartW+gap {
		// Too many bars; keep the most recent ones that fit.
		keep := max(1, (chartW+gap)/(barW+gap))
		values = values[n-keep:]
		if len(labels) == n {
			labels = labels[n-keep:]
		}
		n = keep
	}
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	eighths := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		rowTop := peak * float64(row) / float64(height)
		rowBottom := peak * float64(row-1) / float64(height)

		label := ""
		if row == height {
			label = top
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := max(1, min(8, int((v-rowBottom)/(rowTop-rowBottom)*8)))
				b.WriteString(barStyle.Render(strings.Repeat(string(eighths[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		row := []rune(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + gap)
			if pos <= lastEnd || pos+len(lbl) > axisLen {
				continue
			}
			copy(row[pos:], []rune(lbl))
			lastEnd = pos + len(lbl)
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(row), " ")))
	}

	return b.String()
}

// FormatChartLabel renders an axis value with a k/M/B suffix.
func FormatChartLabel(v float64) string {
	trim := func(x float64, suffix string) string {
		if x == math.Trunc(x) {
			return fmt.Sprintf("%.0f%s", x, suffix)
		}
		return fmt.Sprintf("%.1f%s", x, suffix)
	}
	switch {
	case v >= 1e9:
		return trim(v/1e9, "B")
	case v >= 1e6:
		return trim(v/1e6, "M")
	case v >= 1e3:
		return trim(v/1e3, "k")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
