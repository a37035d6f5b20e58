package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/planner"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/tui/components"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

// stageInputs are the figures the planners work from: the recorded month
// if there is one, else what the form would be pre-filled with.
func (a App) stageInputs() model.Inputs {
	if a.report != nil {
		return a.report.Current
	}
	return a.prefill.Inputs
}

func (a App) renderStageTab(cw int) string {
	in := a.stageInputs()
	cohort := planner.CohortProjection(in, a.sess.BusinessModel(), a.sess.Tables())

	var b strings.Builder
	b.WriteString(a.renderStageMetrics(a.sess.StageMetrics(), cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(a.renderForecast(in, cw))
		b.WriteString("\n")
		b.WriteString(a.renderCohort(cohort, cw))
		return b.String()
	}
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.renderForecast(in, halves[0]),
		a.renderCohort(cohort, halves[1]),
	}))
	return b.String()
}

func (a App) renderStageMetrics(sm reference.StageMetrics, w int) string {
	t := theme.Active
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	half := components.LayoutRow(components.CardInnerWidth(w), 2)
	col := func(title string, ms []reference.MetricTarget, width int) string {
		rows := make([]kv, len(ms))
		for i, m := range ms {
			rows[i] = kv{m.Name, m.Target, ""}
		}
		return sectionStyle.Render(title) + "\n" + renderKV(rows, width-2)
	}

	body := col("Critical", sm.Critical, half[0])
	if len(sm.Important) > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half[0]).Background(t.Surface).Render(body),
			col("Important", sm.Important, half[1]))
	}
	body += "\n\n" + mutedStyle.Render("c cycles the stage")

	title := fmt.Sprintf("%s · %s", sm.Label, sm.Horizon)
	return components.ContentCard(title, body, w)
}

func (a App) renderForecast(in model.Inputs, w int) string {
	t := theme.Active
	f := a.format
	innerW := components.CardInnerWidth(w)

	plan, err := planner.Forecast(in, a.sess.Tables())
	if err != nil {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Width(innerW)
		return components.ContentCard("Six-Month Forecast", warn.Render(err.Error()+". Set a target CAC in the check-in form."), w)
	}

	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	itemStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(renderKV([]kv{{"Customers the budget can buy", f.Number(int64(plan.PotentialCustomers)), t.Accent}}, innerW))
	for _, ph := range plan.Phases {
		b.WriteString("\n\n")
		b.WriteString(sectionStyle.Render(ph.Label))
		b.WriteString("\n")
		b.WriteString(renderKV([]kv{
			{"Target customers", f.Number(int64(ph.TargetCustomers)), ""},
			{"Target MRR", f.Money(ph.TargetMRR), t.Green},
		}, innerW))
		for _, act := range ph.Activities {
			b.WriteString("\n")
			b.WriteString(itemStyle.Render("• " + truncStr(act, innerW-2)))
		}
	}
	return components.ContentCard("Six-Month Forecast", b.String(), w)
}

func (a App) renderCohort(c planner.CohortReport, w int) string {
	t := theme.Active
	f := a.format
	innerW := components.CardInnerWidth(w)

	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	itemStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(innerW)

	bm := string(c.BusinessModel)
	if bm == "" {
		bm = "unspecified"
	}

	var b strings.Builder
	b.WriteString(renderKV([]kv{
		{"Business model", bm, ""},
		{"Estimated LTV", f.Money(c.EstimatedLTV), t.Green},
	}, innerW))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Retention"))
	labelW := 9
	barW := max(10, innerW-labelW-6)
	for _, p := range c.Curve {
		b.WriteString("\n")
		b.WriteString(components.ShareBar(fmt.Sprintf("Month %d", p.Month), p.Rate, t.Blue, labelW, barW))
	}

	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Growth scenarios"))
	rows := make([]kv, len(c.GrowthScenarios))
	for i, g := range c.GrowthScenarios {
		rows[i] = kv{cli.HumanizeKey(g.Name), fmt.Sprintf("%d → %d customers", g.Customers6M, g.Customers12M), ""}
	}
	b.WriteString("\n")
	b.WriteString(renderKV(rows, innerW))

	for _, ins := range c.Insights {
		b.WriteString("\n")
		b.WriteString(itemStyle.Render("• " + ins))
	}
	return components.ContentCard("Cohort Projection", b.String(), w)
}
