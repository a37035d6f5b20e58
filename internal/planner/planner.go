// Package planner holds the forward-looking helpers built on the formula
// library: budget guidance, the pre-seed forecast, cohort projection and the
// product-market-fit score.
package planner

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/formula"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
)

// OptimizeBudget maps the runway band onto a marketing allocation and the
// default channel split.
func OptimizeBudget(in model.Inputs, tables *reference.Tables) model.BudgetPlan {
	burn := formula.BurnRate(in.MarketingBudget, in.TeamSize)
	runway := formula.RunwayMonths(burn, in.CashBalance)
	status := formula.RunwayStatusBand(runway)
	guide := tables.RunwayGuidance(status)

	return model.BudgetPlan{
		BurnRate:                 burn,
		RunwayMonths:             runway,
		Status:                   status,
		Recommendation:           guide.Recommendation,
		SuggestedAllocation:      guide.Allocation,
		SuggestedMarketingBudget: in.MarketingBudget.Mul(decimal.NewFromFloat(guide.Allocation)),
		Channels:                 tables.MarketingChannels(),
	}
}

// ForecastPhase is one phase of the pre-seed forecast.
type ForecastPhase struct {
	Label           string          `json:"label"`
	TargetCustomers int             `json:"target_customers"`
	TargetMRR       decimal.Decimal `json:"target_mrr"`
	Activities      []string        `json:"activities"`
}

// ForecastPlan is the six-month pre-seed outlook.
type ForecastPlan struct {
	PotentialCustomers int             `json:"potential_customers"`
	Phases             []ForecastPhase `json:"phases"`
}

// Forecast splits what the marketing budget can buy at the target CAC into
// a months 1-3 and a months 4-6 phase.
func Forecast(in model.Inputs, tables *reference.Tables) (ForecastPlan, error) {
	potential, err := formula.PotentialCustomers(in.MarketingBudget, in.TargetCAC)
	if err != nil {
		return ForecastPlan{}, err
	}

	p1, p2 := tables.ForecastPhases()
	plan := ForecastPlan{PotentialCustomers: potential}
	for _, ph := range []reference.ForecastPhase{p1, p2} {
		customers := int(decimal.NewFromInt(int64(potential)).Mul(decimal.NewFromFloat(ph.CustomerShare)).IntPart())
		customers = max(customers, ph.MinCustomers)

		mrr := decimal.NewFromInt(ph.TargetMRR)
		if ph.TargetMRR == 0 {
			mrr = in.SubscriptionPrice.Mul(decimal.NewFromInt(int64(customers)))
		}
		plan.Phases = append(plan.Phases, ForecastPhase{
			Label:           ph.Label,
			TargetCustomers: customers,
			TargetMRR:       mrr,
			Activities:      ph.Activities,
		})
	}
	return plan, nil
}

// LowFirstMonthRetention is the month-1 rate below which onboarding needs
// attention.
const LowFirstMonthRetention = 0.7

// CohortReport is a retention projection for a company without cohort data.
type CohortReport struct {
	BusinessModel   reference.BusinessModel    `json:"business_model"`
	Curve           model.RetentionCurve       `json:"retention_curve"`
	EstimatedLTV    decimal.Decimal            `json:"estimated_ltv"`
	GrowthScenarios []reference.GrowthScenario `json:"growth_scenarios"`
	Insights        []string                   `json:"insights"`
}

// CohortProjection applies the business-model retention curve to the
// subscription price.
func CohortProjection(in model.Inputs, bm reference.BusinessModel, tables *reference.Tables) CohortReport {
	curve := tables.RetentionCurve(bm)
	insights, lowWarning := tables.CohortInsights()
	if m1, ok := curve.At(1); ok && m1 < LowFirstMonthRetention {
		insights = append(insights, lowWarning)
	}
	return CohortReport{
		BusinessModel:   bm,
		Curve:           curve,
		EstimatedLTV:    formula.EstimatedLTV(curve, in.SubscriptionPrice, formula.DefaultRiskDiscount),
		GrowthScenarios: tables.GrowthScenarios(),
		Insights:        insights,
	}
}
