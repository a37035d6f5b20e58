// Package tui provides the interactive Bubble Tea dashboard for unitecon.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/cli"
	"github.com/theirongolddev/unitecon/internal/config"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/pipeline"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/session"
	"github.com/theirongolddev/unitecon/internal/tui/components"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

// ImportDoneMsg is sent when the check-in file import finishes.
type ImportDoneMsg struct {
	Result   *pipeline.ImportResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RecsMsg carries recommendations for Month.
type RecsMsg struct {
	Month int
	Recs  []advisor.Recommendation
	Err   error
}

// Options configures NewApp.
type Options struct {
	Files     []string
	Month     int // selected once the import is done; 0 means the last imported month
	Config    config.Config
	NeedSetup bool
	Formatter *cli.Formatter
}

const (
	tabOverview = iota
	tabHistory
	tabRoadmap
	tabStage
	tabAdvice
)

// App is the root Bubble Tea model.
type App struct {
	sess   *session.Session
	cfg    config.Config
	format *cli.Formatter
	files  []string
	month  int

	// Derived for the selected month
	report   *model.MonthReport
	prefill  model.Prefill
	hasDraft bool
	trend    []model.TrendPoint
	summary  model.HistorySummary

	// Advisor results are cached per month until the history changes.
	recs        []advisor.Recommendation
	recsMonth   int
	recsErr     error
	recsLoading bool

	loaded    bool
	loadTime  time.Duration
	importRes *pipeline.ImportResult

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	keys      keyMap
	help      help.Model

	statusMsg  string
	statusKind components.StatusKind

	// Check-in form (huh)
	form     *huh.Form
	formVals *CheckinValues

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	recsTimeout = 15 * time.Second
)

// NewApp creates the dashboard over sess. Files named in opts are imported
// before the first render.
func NewApp(sess *session.Session, opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	f := opts.Formatter
	if f == nil {
		f = cli.Default()
	}

	h := help.New()
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(theme.Active.Cyan).Bold(true)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(theme.Active.TextMuted)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(theme.Active.TextDim)

	return App{
		sess:      sess,
		cfg:       opts.Config,
		format:    f,
		files:     opts.Files,
		month:     opts.Month,
		needSetup: opts.NeedSetup,
		keys:      newKeyMap(),
		help:      h,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		importCmd(a.sess, a.files, a.loadSub),
		a.spinner.Tick,
	)
}

// refresh re-derives everything shown for the selected month. It runs on
// the update goroutine, which is the only one that touches the session.
func (a *App) refresh() {
	month := a.sess.Month()

	a.report = nil
	if r, err := a.sess.ReportFor(month); err == nil {
		a.report = &r
	} else if !errors.Is(err, model.ErrMonthNotRecorded) {
		a.setStatus(err.Error(), components.StatusError)
	}

	pf, draft, err := a.sess.Draft()
	if err != nil {
		a.setStatus(err.Error(), components.StatusError)
	}
	a.prefill, a.hasDraft = pf, draft

	trend, err := a.sess.Trend()
	if err != nil {
		a.setStatus(err.Error(), components.StatusError)
	}
	a.trend = trend
	a.summary = pipeline.Summarize(trend)

	if a.recsMonth != month {
		a.recs, a.recsErr = nil, nil
	}
}

func (a *App) setStatus(msg string, kind components.StatusKind) {
	a.statusMsg = msg
	a.statusKind = kind
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil || a.setupForm != nil {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				return a.switchTab(tab)
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.form != nil {
			return a.updateCheckinForm(msg)
		}
		return a.handleKey(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case ImportDoneMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.importRes = msg.Result
		if msg.Err != nil {
			a.setStatus("import failed: "+msg.Err.Error(), components.StatusError)
		} else if msg.Result != nil && msg.Result.TotalFiles > 0 {
			a.setStatus(importSummary(msg.Result), importKind(msg.Result))
			if n := len(msg.Result.Recorded); n > 0 && a.month == 0 {
				_ = a.sess.Select(msg.Result.Recorded[n-1])
			}
		}
		if a.month > 0 {
			_ = a.sess.Select(a.month)
		}
		a.refresh()

		if a.needSetup {
			a.setupVals = SetupValuesFrom(a.cfg)
			a.setupForm = NewSetupForm(a.setupVals).WithKeyMap(formKeyMap())
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case RecsMsg:
		a.recsLoading = false
		if msg.Month == a.sess.Month() {
			a.recs, a.recsErr, a.recsMonth = msg.Recs, msg.Err, msg.Month
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.recsLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.) to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.form != nil {
		return a.updateCheckinForm(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Help) {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.PrevTab):
		return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case key.Matches(msg, a.keys.NextTab):
		return a.switchTab((a.activeTab + 1) % len(components.Tabs))
	case key.Matches(msg, a.keys.PrevMonth):
		a.sess.Prev()
		a.statusMsg = ""
		a.refresh()
		return a, a.maybeFetchRecs()
	case key.Matches(msg, a.keys.NextMonth):
		a.sess.Next()
		a.statusMsg = ""
		a.refresh()
		return a, a.maybeFetchRecs()
	case key.Matches(msg, a.keys.Edit):
		return a.openCheckinForm()
	case key.Matches(msg, a.keys.Discard):
		if a.hasDraft {
			a.sess.Discard()
			a.setStatus(fmt.Sprintf("Discarded edits for month %d", a.sess.Month()), components.StatusInfo)
			a.refresh()
		}
		return a, nil
	case key.Matches(msg, a.keys.Stage):
		a.sess.SetStage(nextStage(a.sess.Stage()))
		a.setStatus("Stage: "+string(a.sess.Stage()), components.StatusInfo)
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		if a.activeTab == tabAdvice && a.report != nil && !a.recsLoading {
			a.recsMonth = 0
			return a, a.fetchRecs()
		}
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			return a.switchTab(idx)
		}
	}
	return a, nil
}

func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	a.activeTab = idx
	return a, a.maybeFetchRecs()
}

// maybeFetchRecs starts a recommendations request when the Advice tab is
// showing a recorded month that has no cached answer.
func (a *App) maybeFetchRecs() tea.Cmd {
	if a.activeTab != tabAdvice || a.report == nil || a.recsLoading || a.recsMonth == a.sess.Month() {
		return nil
	}
	return a.fetchRecs()
}

func (a *App) fetchRecs() tea.Cmd {
	a.recsLoading = true
	return tea.Batch(a.spinner.Tick, recsCmd(a.sess.Recommender(), *a.report))
}

func nextStage(cur reference.Stage) reference.Stage {
	for i, st := range reference.Stages {
		if st == cur {
			return reference.Stages[(i+1)%len(reference.Stages)]
		}
	}
	return reference.StagePreSeed
}

// ─── Check-in form ──────────────────────────────────────────────

func (a App) formWidth() int {
	return min(72, max(40, a.contentWidth()-8))
}

func (a App) openCheckinForm() (tea.Model, tea.Cmd) {
	a.formVals = CheckinValuesFrom(a.prefill.Inputs)
	a.form = NewCheckinForm(a.sess.Month(), a.prefill.Source, a.formVals).
		WithKeyMap(formKeyMap()).
		WithWidth(a.formWidth())
	a.statusMsg = ""
	return a, a.form.Init()
}

func (a App) updateCheckinForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		a.form = nil
		a.submitCheckin()
		return a, a.maybeFetchRecs()
	case huh.StateAborted:
		a.form = nil
		// Keep what was typed as a draft so reopening the form restores it.
		if in, err := a.formVals.Inputs(); err == nil && !sameInputs(in, a.prefill.Inputs) {
			a.sess.Edit(in)
			a.setStatus("Edits kept as draft, press d to discard", components.StatusInfo)
			a.refresh()
		}
		return a, nil
	}
	return a, cmd
}

func (a *App) submitCheckin() {
	month := a.sess.Month()
	in, err := a.formVals.Inputs()
	if err != nil {
		a.setStatus(err.Error(), components.StatusError)
		return
	}
	a.sess.Edit(in)

	_, err = a.sess.Submit()
	switch {
	case errors.Is(err, model.ErrDuplicateMonth):
		a.setStatus(fmt.Sprintf("Month %d is already recorded, nothing saved", month), components.StatusError)
	case errors.Is(err, model.ErrInvalidInput):
		a.setStatus(err.Error(), components.StatusError)
	case err != nil:
		a.setStatus("saving check-in: "+err.Error(), components.StatusError)
	default:
		a.setStatus(fmt.Sprintf("Month %d recorded", month), components.StatusOK)
		a.recsMonth = 0
	}
	a.refresh()
}

// ─── Setup wizard ───────────────────────────────────────────────

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		if err := config.Save(a.cfg); err != nil {
			a.setStatus("could not save config: "+err.Error(), components.StatusError)
		} else {
			a.setStatus("Saved "+config.ConfigPath(), components.StatusOK)
		}
		if p, err := config.ResolveProfile(a.cfg, ""); err == nil {
			a.sess.SetStage(p.Stage)
		}
		a.format = cli.NewFormatter(a.cfg.General.Locale, a.cfg.General.CurrencySymbol)
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// formKeyMap lets esc close a form without quitting the program.
func formKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	return km
}

// ─── View ───────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  unitecon needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ unitecon"))
	b.WriteString(subtitleStyle.Render(" · Unit Economics"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Importing check-ins\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(a.format.Number(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(a.format.Number(int64(a.progressMax))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Starting session..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	body := titleStyle.Render("◈ Keyboard Shortcuts") + "\n\n" +
		a.help.FullHelpView(a.keys.FullHelp()) + "\n\n" +
		dimStyle.Render("Press any key to close")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) tabContext() string {
	label := cli.FormatMonthLabel(a.sess.Month())
	switch {
	case a.report != nil:
		label += " ✓"
	case a.hasDraft:
		label += " (draft)"
	}
	return label + " · " + string(a.sess.Stage())
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w, a.tabContext())

	mode := "demo"
	if advisor.IsLive(a.sess.Recommender()) {
		mode = "live"
	}
	hints := "[ ] month · e check-in · ? help"
	statusBar := components.RenderStatusBar(w, hints, a.statusMsg, a.statusKind,
		fmt.Sprintf("%d recorded · advisor %s", a.summary.Months, mode))

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	if a.form != nil {
		content = a.renderCheckinForm(cw)
	} else {
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabHistory:
			content = a.renderHistoryTab(cw)
		case tabRoadmap:
			content = a.renderRoadmapTab(cw)
		case tabStage:
			content = a.renderStageTab(cw)
		case tabAdvice:
			content = a.renderAdviceTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderCheckinForm(cw int) string {
	return components.ContentCard(
		fmt.Sprintf("Check-in · %s", cli.FormatMonthLabel(a.sess.Month())),
		a.form.View(),
		min(cw, a.formWidth()+4),
	)
}

// ─── Commands ───────────────────────────────────────────────────

// importCmd runs the file import in a background goroutine and streams
// ProgressMsg updates and a final ImportDoneMsg through sub. The session's
// store is not touched by anything else until ImportDoneMsg arrives.
func importCmd(sess *session.Session, files []string, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			if len(files) == 0 {
				sub <- ImportDoneMsg{LoadTime: time.Since(start)}
				return
			}
			// Non-blocking send so parser workers aren't stalled; the next
			// update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			res, err := pipeline.Import(sess.Store(), files, progressFn)
			sub <- ImportDoneMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func recsCmd(rec advisor.Recommender, r model.MonthReport) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), recsTimeout)
		defer cancel()
		recs, err := rec.GenerateRecommendations(ctx, r.Current, r)
		return RecsMsg{Month: r.Month, Recs: recs, Err: err}
	}
}

func importSummary(res *pipeline.ImportResult) string {
	msg := fmt.Sprintf("Imported %d month(s) from %d file(s)", len(res.Recorded), res.ParsedFiles)
	if n := len(res.Duplicates); n > 0 {
		msg += fmt.Sprintf(", %d duplicate(s) skipped", n)
	}
	if n := len(res.Invalid) + res.ParseErrors + res.FileErrors; n > 0 {
		msg += fmt.Sprintf(", %d rejected", n)
	}
	return msg
}

func importKind(res *pipeline.ImportResult) components.StatusKind {
	if len(res.Duplicates)+len(res.Invalid)+res.ParseErrors+res.FileErrors > 0 {
		return components.StatusError
	}
	return components.StatusOK
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color
// so gaps between cards don't show the terminal default.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

func sameInputs(x, y model.Inputs) bool {
	return x.MarketingBudget.Equal(y.MarketingBudget) &&
		x.CashBalance.Equal(y.CashBalance) &&
		x.SubscriptionPrice.Equal(y.SubscriptionPrice) &&
		x.CurrentMRR.Equal(y.CurrentMRR) &&
		x.TargetCAC.Equal(y.TargetCAC) &&
		x.CurrentCustomers == y.CurrentCustomers &&
		x.TeamSize == y.TeamSize &&
		x.ExpectedChurnRate == y.ExpectedChurnRate
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
