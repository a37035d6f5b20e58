package config

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/model"
)

// DefaultsOverride lets the user replace entries of the system default
// table used to pre-fill a month with no history. Nil fields keep the
// built-in value.
type DefaultsOverride struct {
	MarketingBudget   *float64 `toml:"marketing_budget,omitempty"`
	CashBalance       *float64 `toml:"cash_balance,omitempty"`
	SubscriptionPrice *float64 `toml:"subscription_price,omitempty"`
	CurrentCustomers  *int     `toml:"current_customers,omitempty"`
	CurrentMRR        *float64 `toml:"current_mrr,omitempty"`
	TargetCAC         *float64 `toml:"target_cac,omitempty"`
	TeamSize          *int     `toml:"team_size,omitempty"`
	ExpectedChurnRate *float64 `toml:"expected_churn_rate,omitempty"`
}

// Apply writes the set overrides over base.
func (o DefaultsOverride) Apply(base model.Inputs) model.Inputs {
	in := base
	money := func(dst *decimal.Decimal, v *float64) {
		if v != nil {
			*dst = decimal.NewFromFloat(*v)
		}
	}
	money(&in.MarketingBudget, o.MarketingBudget)
	money(&in.CashBalance, o.CashBalance)
	money(&in.SubscriptionPrice, o.SubscriptionPrice)
	money(&in.CurrentMRR, o.CurrentMRR)
	money(&in.TargetCAC, o.TargetCAC)
	if o.CurrentCustomers != nil {
		in.CurrentCustomers = *o.CurrentCustomers
	}
	if o.TeamSize != nil {
		in.TeamSize = *o.TeamSize
	}
	if o.ExpectedChurnRate != nil {
		in.ExpectedChurnRate = *o.ExpectedChurnRate
	}
	return in
}

// SystemDefaults returns the built-in default table with the configured
// overrides applied. An override that would make the table invalid is an
// error so a bad config surfaces at startup rather than on first submit.
func (c Config) SystemDefaults() (model.Inputs, error) {
	in := c.Defaults.Apply(model.DefaultInputs())
	if err := in.Validate(); err != nil {
		return model.DefaultInputs(), err
	}
	return in, nil
}
