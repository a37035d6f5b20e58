package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/tui/components"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

func (a App) renderRoadmapTab(cw int) string {
	tables := a.sess.Tables()
	current, inYear := reference.QuarterOfMonth(a.sess.Month())

	plans := tables.Roadmap()
	cards := make([]string, len(plans))

	perRow := 2
	if a.isCompactLayout() {
		perRow = 1
	}
	widths := components.LayoutRow(cw, perRow)
	for i, qp := range plans {
		cards[i] = a.renderQuarter(qp, inYear && qp.Quarter == current, widths[i%perRow])
	}

	var b strings.Builder
	for i := 0; i < len(cards); i += perRow {
		b.WriteString(components.CardRow(cards[i:min(i+perRow, len(cards))]))
		b.WriteString("\n")
	}

	visions := tables.Vision()
	vcards := make([]string, len(visions))
	vw := components.LayoutRow(cw, max(1, min(len(visions), perRow)))
	for i, v := range visions {
		vcards[i] = renderVisionYear(v, i+2, vw[i%len(vw)])
	}
	for i := 0; i < len(vcards); i += len(vw) {
		b.WriteString(components.CardRow(vcards[i:min(i+len(vw), len(vcards))]))
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderQuarter(qp reference.QuarterPlan, current bool, w int) string {
	t := theme.Active
	f := a.format
	innerW := components.CardInnerWidth(w)

	themeStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	itemStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(themeStyle.Render(truncStr(qp.Theme, innerW)))
	b.WriteString("\n\n")

	rows := make([]kv, len(qp.Targets))
	for i, tg := range qp.Targets {
		rows[i] = kv{cli.HumanizeKey(tg.Name), f.Target(tg.Name, tg.Value), ""}
	}
	b.WriteString(renderKV(rows, innerW))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Budget allocation"))
	labelW := 12
	barW := max(10, innerW-labelW-6)
	alloc := qp.Allocation
	for _, s := range []struct {
		label string
		share float64
		color lipgloss.Color
	}{
		{"Product", alloc.ProductDevelopment, t.Blue},
		{"Acquisition", alloc.CustomerAcquisition, t.Green},
		{"Operations", alloc.Operations, t.Yellow},
	} {
		b.WriteString("\n")
		b.WriteString(components.ShareBar(s.label, s.share, s.color, labelW, barW))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Activities"))
	for _, act := range qp.Activities {
		b.WriteString("\n")
		b.WriteString(itemStyle.Render("• " + truncStr(act, innerW-2)))
	}

	title := strings.ToUpper(string(qp.Quarter))
	if current {
		title += " " + components.Badge("NOW", t.Accent)
	}
	return components.ContentCard(title, b.String(), w)
}

func renderVisionYear(v reference.VisionYear, year int, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	themeStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	itemStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	targets := func(ts []reference.TextTarget) string {
		rows := make([]kv, len(ts))
		for i, tg := range ts {
			rows[i] = kv{cli.HumanizeKey(tg.Name), tg.Value, ""}
		}
		return renderKV(rows, innerW)
	}

	var b strings.Builder
	b.WriteString(themeStyle.Render(truncStr(v.Theme, innerW)))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Financial"))
	b.WriteString("\n")
	b.WriteString(targets(v.FinancialTargets))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Operational"))
	b.WriteString("\n")
	b.WriteString(targets(v.OperationalTargets))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Initiatives"))
	for _, in := range v.Initiatives {
		b.WriteString("\n")
		b.WriteString(itemStyle.Render("• " + truncStr(in, innerW-2)))
	}
	return components.ContentCard(fmt.Sprintf("Year %d", year), b.String(), w)
}
