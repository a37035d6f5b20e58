package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/planner"
	"github.com/theirongolddev/unitecon/internal/tui/components"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	if a.report == nil {
		return a.renderNotRecorded(cw)
	}
	t := theme.Active
	r := a.report
	f := a.format
	var b strings.Builder

	// Row 1: headline metrics with month-over-month deltas
	mrr := components.Metric{Label: "MRR", Value: f.Money(r.Current.CurrentMRR)}
	customers := components.Metric{Label: "Customers", Value: f.Number(int64(r.Current.CurrentCustomers))}
	cash := components.Metric{Label: "Cash Balance", Value: f.Money(r.Current.CashBalance)}
	if c := r.Comparison; c != nil {
		mrr.Delta = fmt.Sprintf("%s (%s)", f.MoneyDelta(c.MRR.Amount), cli.FormatPercent(c.MRR.Percent))
		mrr.DeltaColor = t.Trend(c.MRR.Amount.Sign(), false)
		customers.Delta = fmt.Sprintf("%s (%s)", cli.FormatCountDelta(c.CustomerDelta), cli.FormatPercent(c.CustomerPercent))
		customers.DeltaColor = t.Trend(c.CustomerDelta, false)
		cash.Delta = fmt.Sprintf("%s (%s)", f.MoneyDelta(c.CashBalance.Amount), cli.FormatPercent(c.CashBalance.Percent))
		cash.DeltaColor = t.Trend(c.CashBalance.Amount.Sign(), false)
	} else {
		mrr.Delta = "no previous month"
	}
	runway := components.Metric{
		Label:      "Runway",
		Value:      cli.FormatMonths(r.RunwayMonths),
		Delta:      cli.FormatStatus(r.RunwayStatus),
		DeltaColor: t.Status(r.RunwayStatus),
		Accent:     t.Status(r.RunwayStatus),
	}
	b.WriteString(components.MetricCardRow([]components.Metric{mrr, customers, cash, runway}, cw))
	b.WriteString("\n")

	// Row 2: unit economics + budget guidance
	plan := planner.OptimizeBudget(r.Current, a.sess.Tables())
	if a.isCompactLayout() {
		b.WriteString(a.renderUnitEconomics(cw))
		b.WriteString("\n")
		b.WriteString(a.renderBudgetPlan(plan, cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderUnitEconomics(halves[0]),
			a.renderBudgetPlan(plan, halves[1]),
		}))
	}
	return b.String()
}

func (a App) renderUnitEconomics(w int) string {
	t := theme.Active
	r := a.report
	f := a.format
	innerW := components.CardInnerWidth(w)

	potential := "n/a (no target CAC)"
	if r.PotentialCustomers != nil {
		potential = f.Number(int64(*r.PotentialCustomers))
	}
	ratioColor := t.Red
	switch {
	case r.LTVToCAC >= 3:
		ratioColor = t.Green
	case r.LTVToCAC >= 1:
		ratioColor = t.Yellow
	}

	rows := []kv{
		{"Burn rate", f.Money(r.BurnRate), t.Orange},
		{"Estimated CAC", f.Money(r.EstimatedCAC), ""},
		{"Potential customers", potential, ""},
		{"Estimated LTV", f.Money(r.EstimatedLTV), ""},
		{"LTV : CAC", fmt.Sprintf("%.2f", r.LTVToCAC), ratioColor},
		{"Subscription price", f.Money(r.Current.SubscriptionPrice), ""},
		{"Team size", f.Number(int64(r.Current.TeamSize)), ""},
		{"Expected churn", cli.FormatRatio(r.Current.ExpectedChurnRate), ""},
	}
	return components.ContentCard("Unit Economics", renderKV(rows, innerW), w)
}

func (a App) renderBudgetPlan(plan model.BudgetPlan, w int) string {
	t := theme.Active
	f := a.format
	innerW := components.CardInnerWidth(w)

	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(innerW)
	var b strings.Builder
	b.WriteString(components.Badge(cli.FormatStatus(plan.Status), t.Status(plan.Status)))
	b.WriteString("\n")
	b.WriteString(textStyle.Render(plan.Recommendation))
	b.WriteString("\n")
	b.WriteString(renderKV([]kv{
		{"Suggested allocation", cli.FormatRatio(plan.SuggestedAllocation), ""},
		{"Suggested marketing", f.Money(plan.SuggestedMarketingBudget), t.Accent},
	}, innerW))
	b.WriteString("\n")

	labelW := min(22, innerW/2)
	barW := max(10, innerW-labelW-6)
	colors := []lipgloss.Color{t.Blue, t.Magenta, t.Cyan, t.Yellow}
	for i, ch := range plan.Channels {
		b.WriteString("\n")
		b.WriteString(components.ShareBar(ch.Channel, ch.Share, colors[i%len(colors)], labelW, barW))
	}
	return components.ContentCard("Marketing Budget", b.String(), w)
}

// renderNotRecorded shows what the check-in form will be pre-filled with
// for a month that has no snapshot yet.
func (a App) renderNotRecorded(cw int) string {
	t := theme.Active
	f := a.format
	month := a.sess.Month()
	in := a.prefill.Inputs

	var from string
	switch a.prefill.Source {
	case model.CarryDraft:
		from = "your unsaved edits"
	case model.CarryPrevious:
		from = fmt.Sprintf("month %d", month-1)
	default:
		from = "the starting defaults"
	}

	hint := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	w := min(cw, 72)
	innerW := components.CardInnerWidth(w)
	body := muted.Render("No check-in recorded for this month. The form starts from "+from+".") + "\n\n" +
		renderKV([]kv{
			{"Marketing budget", f.Money(in.MarketingBudget), ""},
			{"Cash balance", f.Money(in.CashBalance), ""},
			{"Subscription price", f.Money(in.SubscriptionPrice), ""},
			{"Customers", f.Number(int64(in.CurrentCustomers)), ""},
			{"MRR", f.Money(in.CurrentMRR), ""},
			{"Target CAC", f.Money(in.TargetCAC), ""},
			{"Team size", f.Number(int64(in.TeamSize)), ""},
			{"Expected churn", cli.FormatRatio(in.ExpectedChurnRate), ""},
		}, innerW) + "\n\n" +
		hint.Render("Press e to check in")

	return components.ContentCard(cli.FormatMonthLabel(month), body, w)
}

type kv struct {
	label string
	value string
	color lipgloss.Color
}

// renderKV renders label/value rows with values right-aligned to width.
func renderKV(rows []kv, width int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(rows))
	for i, row := range rows {
		color := row.color
		if color == "" {
			color = t.TextPrimary
		}
		value := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(row.value)
		label := labelStyle.Render(truncStr(row.label, max(1, width-lipgloss.Width(value)-1)))
		gap := max(1, width-lipgloss.Width(label)-lipgloss.Width(value))
		lines[i] = label + spaceStyle.Render(strings.Repeat(" ", gap)) + value
	}
	return strings.Join(lines, "\n")
}
