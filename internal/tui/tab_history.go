package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/pipeline"
	"github.com/theirongolddev/unitecon/internal/tui/components"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

func (a App) renderHistoryTab(cw int) string {
	t := theme.Active
	f := a.format
	if len(a.trend) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("History",
			muted.Render("No months recorded yet. Press e to record "+cli.FormatMonthLabel(a.sess.Month())+"."),
			min(cw, 72))
	}
	s := a.summary
	var b strings.Builder

	// Row 1: summary
	growth := components.Metric{
		Label:      "MRR Growth",
		Value:      cli.FormatPercent(s.MRRGrowth),
		Delta:      fmt.Sprintf("month %d → %d", s.FirstMonth, s.LastMonth),
		Accent:     t.Trend(sign(s.MRRGrowth), false),
		DeltaColor: t.TextDim,
	}
	recorded := components.Metric{Label: "Months Recorded", Value: f.Number(int64(s.Months))}
	if len(s.Gaps) > 0 {
		recorded.Delta = "gaps: " + joinInts(s.Gaps)
		recorded.DeltaColor = t.Orange
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		recorded,
		{Label: "Latest MRR", Value: f.Money(s.LatestMRR)},
		growth,
		{Label: "Avg Burn", Value: f.Money(s.AvgBurnRate), Delta: "per month"},
		{
			Label:      "Latest Runway",
			Value:      cli.FormatMonths(s.LatestRunway),
			Delta:      cli.FormatStatus(s.LatestStatus),
			Accent:     t.Status(s.LatestStatus),
			DeltaColor: t.Status(s.LatestStatus),
		},
	}, cw))
	b.WriteString("\n")

	// Row 2: MRR chart
	labels := make([]string, len(a.trend))
	for i, p := range a.trend {
		labels[i] = fmt.Sprintf("M%d", p.Month)
	}
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	mrr := pipeline.Sparkline(a.trend, func(p model.TrendPoint) float64 { return p.MRR.InexactFloat64() })
	b.WriteString(components.ContentCard("MRR by Month",
		components.BarChart(mrr, labels, t.Green, components.CardInnerWidth(cw), chartH), cw))
	b.WriteString("\n")

	// Row 3: trend table + sparklines
	if a.isCompactLayout() {
		b.WriteString(a.renderTrendTable(cw))
		b.WriteString("\n")
		b.WriteString(a.renderSparklines(cw))
	} else {
		widths := []int{cw * 2 / 3, cw - cw*2/3}
		b.WriteString(components.CardRow([]string{
			a.renderTrendTable(widths[0]),
			a.renderSparklines(widths[1]),
		}))
	}
	return b.String()
}

func (a App) renderTrendTable(w int) string {
	t := theme.Active
	f := a.format
	innerW := components.CardInnerWidth(w)

	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)

	col := max(9, (innerW-8)/5)
	line := func(cells ...string) string {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%-8s", cells[0]))
		for _, c := range cells[1:] {
			sb.WriteString(fmt.Sprintf("%*s", col, truncStr(c, col-1)))
		}
		return sb.String()
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(line("Month", "Customers", "MRR", "Cash", "Burn", "Runway")))
	// Newest first.
	for i := len(a.trend) - 1; i >= 0; i-- {
		p := a.trend[i]
		style := rowStyle
		if p.Month == a.sess.Month() {
			style = selStyle
		}
		row := line(
			fmt.Sprintf("M%d", p.Month),
			f.Number(int64(p.Customers)),
			f.CompactMoney(p.MRR),
			f.CompactMoney(p.CashBalance),
			f.CompactMoney(p.BurnRate),
			fmt.Sprintf("%.1f", p.RunwayMonths),
		)
		b.WriteString("\n")
		b.WriteString(style.Render(row))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Status(p.RunwayStatus)).Background(t.Surface).Render(" ●"))
	}
	return components.ContentCard("Monthly Trend", b.String(), w)
}

func (a App) renderSparklines(w int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	series := []struct {
		label string
		color lipgloss.Color
		pick  func(model.TrendPoint) float64
	}{
		{"Customers", t.Blue, func(p model.TrendPoint) float64 { return float64(p.Customers) }},
		{"MRR", t.Green, func(p model.TrendPoint) float64 { return p.MRR.InexactFloat64() }},
		{"Cash", t.Cyan, func(p model.TrendPoint) float64 { return p.CashBalance.InexactFloat64() }},
		{"Burn", t.Orange, func(p model.TrendPoint) float64 { return p.BurnRate.InexactFloat64() }},
		{"Runway", t.Yellow, func(p model.TrendPoint) float64 { return p.RunwayMonths }},
	}

	lines := make([]string, len(series))
	for i, s := range series {
		lines[i] = labelStyle.Render(fmt.Sprintf("%-10s", s.label)) + space +
			components.Sparkline(pipeline.Sparkline(a.trend, s.pick), s.color)
	}
	return components.ContentCard("Trends", strings.Join(lines, "\n"), w)
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
