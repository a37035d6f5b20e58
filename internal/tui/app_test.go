package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/pipeline"
	"github.com/theirongolddev/unitecon/internal/session"
	"github.com/theirongolddev/unitecon/internal/store"
	"github.com/theirongolddev/unitecon/internal/tui/components"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// loadedApp returns an app past the import phase, sized like a roomy terminal.
func loadedApp(t *testing.T) App {
	t.Helper()
	sess := session.New(store.NewMemoryStore(store.Options{}), session.Options{})
	var m tea.Model = NewApp(sess, Options{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 60})
	m, _ = m.Update(ImportDoneMsg{})
	return m.(App)
}

func press(t *testing.T, a App, keys string) App {
	t.Helper()
	var m tea.Model = a
	for _, r := range keys {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m.(App)
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			// Active tabs are padded by one column each side; inactive ones
			// add the "[k]" brackets plus a space each side.
			w := len(tab.Name) + 4
			if i == active {
				w = len(tab.Name) + 2
			}
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d: x past the last tab -> %d, want -1", active, got)
		}
	}
}

func TestMonthNavigation(t *testing.T) {
	a := loadedApp(t)
	assert.Equal(t, 1, a.sess.Month())

	a = press(t, a, "]]")
	assert.Equal(t, 3, a.sess.Month())
	assert.Equal(t, model.CarryDefaults, a.prefill.Source)

	a = press(t, a, "[[[[")
	assert.Equal(t, 1, a.sess.Month(), "never below month 1")
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "h")
	assert.Equal(t, tabHistory, a.activeTab)
	a = press(t, a, "a")
	assert.Equal(t, tabAdvice, a.activeTab)

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabOverview, m.(App).activeTab, "right wraps around")
}

func TestSubmitCheckin(t *testing.T) {
	a := loadedApp(t)

	vals := CheckinValuesFrom(model.DefaultInputs())
	vals.CurrentCustomers = "2"
	vals.CurrentMRR = "10 000"
	a.formVals = vals
	a.submitCheckin()

	require.NotNil(t, a.report)
	assert.Equal(t, components.StatusOK, a.statusKind)
	assert.Equal(t, model.RunwayCritical, a.report.RunwayStatus)
	assert.True(t, a.report.BurnRate.Equal(decimal.NewFromInt(550_000)))
	assert.Equal(t, 1, a.summary.Months)

	// Same month again is rejected and the history is unchanged.
	a.formVals = CheckinValuesFrom(model.DefaultInputs())
	a.submitCheckin()
	assert.Equal(t, components.StatusError, a.statusKind)
	assert.Contains(t, a.statusMsg, "already recorded")
	assert.Equal(t, 1, a.summary.Months)
	assert.Equal(t, 2, a.report.Current.CurrentCustomers)
}

func TestSubmitCheckinInvalid(t *testing.T) {
	a := loadedApp(t)
	vals := CheckinValuesFrom(model.DefaultInputs())
	vals.ExpectedChurnPct = "150"
	a.formVals = vals
	a.submitCheckin()

	assert.Equal(t, components.StatusError, a.statusKind)
	assert.Nil(t, a.report)
	assert.Equal(t, 0, a.summary.Months)
}

func TestEditOpensForm(t *testing.T) {
	a := loadedApp(t)
	a = press(t, a, "e")
	require.NotNil(t, a.form)
	require.NotNil(t, a.formVals)
	assert.Equal(t, "100000", a.formVals.MarketingBudget)
	assert.Contains(t, a.View(), "Check-in")
}

func TestDiscardDraft(t *testing.T) {
	a := loadedApp(t)
	in := model.DefaultInputs()
	in.TeamSize = 7
	a.sess.Edit(in)
	a.refresh()
	require.True(t, a.hasDraft)

	a = press(t, a, "d")
	assert.False(t, a.hasDraft)
	assert.Equal(t, 3, a.prefill.Inputs.TeamSize)
}

func TestImportDoneSelectsLastRecorded(t *testing.T) {
	sess := session.New(store.NewMemoryStore(store.Options{}), session.Options{})
	for _, m := range []int{1, 2, 4} {
		require.NoError(t, sess.Select(m))
		_, err := sess.SubmitInputs(model.DefaultInputs())
		require.NoError(t, err)
	}
	require.NoError(t, sess.Select(1))

	var m tea.Model = NewApp(sess, Options{})
	m, _ = m.Update(ImportDoneMsg{Result: &pipeline.ImportResult{
		TotalFiles:  1,
		ParsedFiles: 1,
		Recorded:    []int{1, 2, 4},
		Duplicates:  []int{2},
	}})
	a := m.(App)

	assert.Equal(t, 4, a.sess.Month())
	assert.Equal(t, components.StatusError, a.statusKind)
	assert.Contains(t, a.statusMsg, "1 duplicate(s) skipped")
	assert.Equal(t, []int{3}, a.summary.Gaps)
}

func TestRecsCmdDemo(t *testing.T) {
	a := loadedApp(t)
	a.formVals = CheckinValuesFrom(model.DefaultInputs())
	a.submitCheckin()
	require.NotNil(t, a.report)

	msg := recsCmd(advisor.NewDemo(nil), *a.report)()
	recs, ok := msg.(RecsMsg)
	require.True(t, ok)
	require.NoError(t, recs.Err)
	assert.Len(t, recs.Recs, 2)

	m, _ := a.Update(recs)
	a = m.(App)
	a.activeTab = tabAdvice
	assert.Contains(t, a.View(), recs.Recs[0].Title)
}

func TestRecsForOtherMonthIgnored(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(RecsMsg{Month: 9, Recs: []advisor.Recommendation{{Title: "stale"}}})
	assert.Empty(t, m.(App).recs)
}

func TestViewsRenderEveryTab(t *testing.T) {
	a := loadedApp(t)
	a.formVals = CheckinValuesFrom(model.DefaultInputs())
	a.submitCheckin()

	want := []string{"Unit Economics", "MRR by Month", "Q1", "Six-Month Forecast", "Recommendations"}
	for tab := range components.Tabs {
		a.activeTab = tab
		out := a.View()
		if !strings.Contains(out, want[tab]) {
			t.Errorf("tab %d: view missing %q", tab, want[tab])
		}
		if h := lipgloss.Height(out); h != a.height {
			t.Errorf("tab %d: view height %d, want %d", tab, h, a.height)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, m.(App).View(), "too narrow")
}

func TestCheckinValuesRoundTrip(t *testing.T) {
	in := model.DefaultInputs()
	in.CurrentMRR = decimal.RequireFromString("12500.50")
	got, err := CheckinValuesFrom(in).Inputs()
	require.NoError(t, err)
	assert.True(t, sameInputs(in, got), "got %+v", got)
}

func TestCheckinValuesErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*CheckinValues)
		field string
	}{
		{"bad money", func(v *CheckinValues) { v.CashBalance = "lots" }, "cash_balance"},
		{"negative money", func(v *CheckinValues) { v.TargetCAC = "-1" }, "target_cac"},
		{"fractional customers", func(v *CheckinValues) { v.CurrentCustomers = "2.5" }, "current_customers"},
		{"churn over 100", func(v *CheckinValues) { v.ExpectedChurnPct = "101" }, "expected_churn_rate"},
		{"churn NaN", func(v *CheckinValues) { v.ExpectedChurnPct = "NaN" }, "expected_churn_rate"},
		{"churn Inf", func(v *CheckinValues) { v.ExpectedChurnPct = "Inf" }, "expected_churn_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckinValuesFrom(model.DefaultInputs())
			tt.edit(v)
			_, err := v.Inputs()
			var inv *model.InvalidInputError
			require.True(t, errors.As(err, &inv), "err = %v", err)
			assert.Equal(t, tt.field, inv.Field)
		})
	}
}

func TestFormValidators(t *testing.T) {
	assert.NoError(t, validateMoney("1 000 000"))
	assert.Error(t, validateMoney("-5"))
	assert.Error(t, validateMoney("abc"))
	assert.NoError(t, validateCount("12"))
	assert.Error(t, validateCount("-1"))
	assert.NoError(t, validatePercent("5.5"))
	assert.Error(t, validatePercent("120"))
	for _, s := range []string{"NaN", "nan", "Inf", "-Inf", "+Inf"} {
		assert.Error(t, validatePercent(s), "validatePercent(%q)", s)
	}
}
