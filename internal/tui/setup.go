package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/unitecon/internal/advisor"
	"github.com/theirongolddev/unitecon/internal/config"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/tui/theme"
)

// SetupValues are the answers collected by the first-run wizard.
type SetupValues struct {
	Stage         string
	BusinessModel string
	Currency      string
	Locale        string
	Theme         string
	APIKey        string
}

// SetupValuesFrom seeds the wizard with the current config.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	return &SetupValues{
		Stage:         cfg.General.Stage,
		BusinessModel: cfg.General.BusinessModel,
		Currency:      cfg.General.CurrencySymbol,
		Locale:        cfg.General.Locale,
		Theme:         cfg.Appearance.Theme,
		APIKey:        cfg.Advisor.APIKey,
	}
}

// Apply writes the answers into cfg. A blank key leaves the stored one.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Stage = v.Stage
	cfg.General.BusinessModel = v.BusinessModel
	if c := strings.TrimSpace(v.Currency); c != "" {
		cfg.General.CurrencySymbol = c
	}
	if l := strings.TrimSpace(v.Locale); l != "" {
		cfg.General.Locale = l
	}
	cfg.Appearance.Theme = v.Theme
	if key := strings.TrimSpace(v.APIKey); key != "" {
		cfg.Advisor.APIKey = key
	}
	theme.SetActive(cfg.Appearance.Theme)
}

var errPlaceholderKey = errors.New("that looks like a placeholder, leave blank for demo mode")

var stageLabels = map[reference.Stage]string{
	reference.StagePreSeed: "Pre-seed (finding product-market fit)",
	reference.StageSeed:    "Seed (repeatable acquisition)",
	reference.StageScale:   "Scale (growth and efficiency)",
}

// NewSetupForm builds the setup wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	stages := make([]huh.Option[string], 0, len(reference.Stages))
	for _, st := range reference.Stages {
		stages = append(stages, huh.NewOption(stageLabels[st], string(st)))
	}
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to unitecon").
				Description("A few questions about your company. Run `unitecon setup` anytime to change them."),
			huh.NewSelect[string]().Title("Company stage").Options(stages...).Value(&v.Stage),
			huh.NewSelect[string]().Title("Business model").
				Description("Scales the retention curve used for LTV.").
				Options(
					huh.NewOption("Not sure", string(reference.BusinessModelUnset)),
					huh.NewOption("B2B enterprise", string(reference.BusinessModelB2BEnterprise)),
					huh.NewOption("B2C", string(reference.BusinessModelB2C)),
				).
				Value(&v.BusinessModel),
		),
		huh.NewGroup(
			huh.NewInput().Title("Currency symbol").Placeholder("₽").Value(&v.Currency),
			huh.NewInput().Title("Number locale").Placeholder("en, ru, de...").Value(&v.Locale),
			huh.NewSelect[string]().Title("Color theme").Options(themes...).Value(&v.Theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("GigaChat API key").
				Description("Enables live recommendations. Leave blank for demo advice.").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey).
				Validate(func(s string) error {
					if s != "" && advisor.IsPlaceholderKey(s) {
						return errPlaceholderKey
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase16())
}
