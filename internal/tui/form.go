package tui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/source"
)

// CheckinValues holds the check-in form fields as typed text.
type CheckinValues struct {
	MarketingBudget   string
	CashBalance       string
	SubscriptionPrice string
	CurrentCustomers  string
	CurrentMRR        string
	TargetCAC         string
	TeamSize          string
	ExpectedChurnPct  string // percent, e.g. "5" for 0.05
}

// CheckinValuesFrom pre-fills the form from in.
func CheckinValuesFrom(in model.Inputs) *CheckinValues {
	return &CheckinValues{
		MarketingBudget:   in.MarketingBudget.String(),
		CashBalance:       in.CashBalance.String(),
		SubscriptionPrice: in.SubscriptionPrice.String(),
		CurrentCustomers:  strconv.Itoa(in.CurrentCustomers),
		CurrentMRR:        in.CurrentMRR.String(),
		TargetCAC:         in.TargetCAC.String(),
		TeamSize:          strconv.Itoa(in.TeamSize),
		ExpectedChurnPct:  strconv.FormatFloat(in.ExpectedChurnRate*100, 'f', -1, 64),
	}
}

func validateMoney(s string) error {
	a, err := source.ParseAmount(s)
	if err != nil {
		return errors.New("enter an amount, e.g. 100 000")
	}
	if a.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validatePercent(s string) error {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a percentage, e.g. 5")
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 100 {
		return errors.New("must be between 0 and 100")
	}
	return nil
}

// Inputs converts the form text into validated inputs.
func (v CheckinValues) Inputs() (model.Inputs, error) {
	var in model.Inputs
	money := []struct {
		field string
		raw   string
		dst   *decimal.Decimal
	}{
		{"marketing_budget", v.MarketingBudget, &in.MarketingBudget},
		{"cash_balance", v.CashBalance, &in.CashBalance},
		{"subscription_price", v.SubscriptionPrice, &in.SubscriptionPrice},
		{"current_mrr", v.CurrentMRR, &in.CurrentMRR},
		{"target_cac", v.TargetCAC, &in.TargetCAC},
	}
	for _, m := range money {
		a, err := source.ParseAmount(m.raw)
		if err != nil {
			return model.Inputs{}, &model.InvalidInputError{Field: m.field, Reason: err.Error()}
		}
		*m.dst = a.Decimal
	}

	var err error
	if in.CurrentCustomers, err = strconv.Atoi(strings.TrimSpace(v.CurrentCustomers)); err != nil {
		return model.Inputs{}, &model.InvalidInputError{Field: "current_customers", Reason: "not a whole number"}
	}
	if in.TeamSize, err = strconv.Atoi(strings.TrimSpace(v.TeamSize)); err != nil {
		return model.Inputs{}, &model.InvalidInputError{Field: "team_size", Reason: "not a whole number"}
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(v.ExpectedChurnPct), 64)
	if err != nil {
		return model.Inputs{}, &model.InvalidInputError{Field: "expected_churn_rate", Reason: "not a number"}
	}
	in.ExpectedChurnRate = pct / 100

	return in, in.Validate()
}

// NewCheckinForm builds the monthly check-in form bound to v. The same form
// runs inside the dashboard and standalone from the checkin command.
func NewCheckinForm(month int, from model.CarrySource, v *CheckinValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Month %d check-in", month)).
				Description(prefillNote(from)),
			huh.NewInput().Title("Marketing budget").Value(&v.MarketingBudget).Validate(validateMoney),
			huh.NewInput().Title("Cash balance").Value(&v.CashBalance).Validate(validateMoney),
			huh.NewInput().Title("Subscription price").Value(&v.SubscriptionPrice).Validate(validateMoney),
			huh.NewInput().Title("Target CAC").Value(&v.TargetCAC).Validate(validateMoney),
		),
		huh.NewGroup(
			huh.NewInput().Title("Current customers").Value(&v.CurrentCustomers).Validate(validateCount),
			huh.NewInput().Title("Current MRR").Value(&v.CurrentMRR).Validate(validateMoney),
			huh.NewInput().Title("Team size").Value(&v.TeamSize).Validate(validateCount),
			huh.NewInput().Title("Expected churn (%)").Value(&v.ExpectedChurnPct).Validate(validatePercent),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}

func prefillNote(src model.CarrySource) string {
	switch src {
	case model.CarryRecorded:
		return "Already recorded. Submitting again will be rejected."
	case model.CarryPrevious:
		return "Pre-filled from last month."
	case model.CarryDraft:
		return "Your unsaved edits."
	}
	return "Pre-filled with starting defaults."
}
