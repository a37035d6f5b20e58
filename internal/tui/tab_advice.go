package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/tui/components"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

func (a App) renderAdviceTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	w := min(cw, 110)

	switch {
	case a.report == nil:
		return components.ContentCard("Recommendations",
			muted.Render("Record this month first. Advice is based on its figures."), w)
	case a.recsLoading:
		return components.ContentCard("Recommendations",
			a.spinner.View()+muted.Render(" Asking the advisor..."), w)
	case a.recsErr != nil:
		warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return components.ContentCard("Recommendations",
			warn.Render(a.recsErr.Error())+"\n"+muted.Render("Press R to try again."), w)
	case len(a.recs) == 0:
		return components.ContentCard("Recommendations", muted.Render("No recommendations."), w)
	}

	source := "demo recommendations"
	if advisor.IsLive(a.sess.Recommender()) {
		source = "live advisor"
	}
	var b strings.Builder
	b.WriteString(muted.Render(fmt.Sprintf("%d recommendation(s) from the %s · R to re-ask", len(a.recs), source)))
	b.WriteString("\n")
	for _, r := range a.recs {
		b.WriteString(renderRecommendation(r, w))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRecommendation(r advisor.Recommendation, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	descStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(innerW)
	actionStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(innerW)
	bullet := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("→ ")

	var b strings.Builder
	b.WriteString(descStyle.Render(r.Description))
	for _, act := range r.Actions {
		b.WriteString("\n")
		b.WriteString(bullet + actionStyle.Width(innerW-2).Render(act))
	}

	title := r.Title + " " + components.Badge(fmt.Sprintf("priority %.0f%%", r.Priority*100), t.Priority(r.Priority))
	return components.ContentCard(title, b.String(), w)
}
