// Package model defines domain types for unitecon check-ins and derived metrics.
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inputs holds the user-entered figures of one monthly check-in.
type Inputs struct {
	MarketingBudget   decimal.Decimal `json:"marketing_budget"`
	CashBalance       decimal.Decimal `json:"cash_balance"`
	SubscriptionPrice decimal.Decimal `json:"subscription_price"`
	CurrentCustomers  int             `json:"current_customers"`
	CurrentMRR        decimal.Decimal `json:"current_mrr"`
	TargetCAC         decimal.Decimal `json:"target_cac"`
	TeamSize          int             `json:"team_size"`
	ExpectedChurnRate float64         `json:"expected_churn_rate"`
}

// Validate rejects negative money, negative counts and churn that is not a
// finite number in [0, 1].
func (in Inputs) Validate() error {
	money := []struct {
		field string
		v     decimal.Decimal
	}{
		{"marketing_budget", in.MarketingBudget},
		{"cash_balance", in.CashBalance},
		{"subscription_price", in.SubscriptionPrice},
		{"current_mrr", in.CurrentMRR},
		{"target_cac", in.TargetCAC},
	}
	for _, m := range money {
		if m.v.IsNegative() {
			return &InvalidInputError{Field: m.field, Reason: "must not be negative"}
		}
	}
	if in.CurrentCustomers < 0 {
		return &InvalidInputError{Field: "current_customers", Reason: "must not be negative"}
	}
	if in.TeamSize < 0 {
		return &InvalidInputError{Field: "team_size", Reason: "must not be negative"}
	}
	if c := in.ExpectedChurnRate; math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c > 1 {
		return &InvalidInputError{Field: "expected_churn_rate", Reason: "must be between 0 and 1"}
	}
	return nil
}

// DefaultInputs returns the system default table used when neither the
// requested month nor its predecessor has been recorded.
func DefaultInputs() Inputs {
	return Inputs{
		MarketingBudget:   decimal.NewFromInt(100_000),
		CashBalance:       decimal.NewFromInt(2_000_000),
		SubscriptionPrice: decimal.NewFromInt(5_000),
		CurrentCustomers:  0,
		CurrentMRR:        decimal.Zero,
		TargetCAC:         decimal.NewFromInt(15_000),
		TeamSize:          3,
		ExpectedChurnRate: 0.05,
	}
}

// MonthlySnapshot is one recorded check-in. Snapshots are never mutated
// after they are recorded.
type MonthlySnapshot struct {
	ID         uuid.UUID `json:"id"`
	Month      int       `json:"month"`
	Inputs     `json:"inputs"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CarrySource says where a pre-filled set of inputs came from.
type CarrySource string

const (
	CarryRecorded CarrySource = "recorded" // the month itself
	CarryPrevious CarrySource = "previous" // month - 1
	CarryDefaults CarrySource = "defaults" // system default table
	CarryDraft    CarrySource = "draft"    // unsubmitted edits
)

// Prefill is the carry-forward result used to pre-populate input widgets.
type Prefill struct {
	Month  int         `json:"month"`
	Inputs Inputs      `json:"inputs"`
	Source CarrySource `json:"source"`
}
