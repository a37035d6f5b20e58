// Package formula implements the unit-economics formulas behind every
// dashboard figure. All functions are pure; callers validate inputs as
// non-negative before calling.
package formula

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/model"
)

// FixedCostPerHead is the monthly cost of one team member.
var FixedCostPerHead = decimal.NewFromInt(150_000)

// DefaultRiskDiscount is the haircut applied to early-stage LTV estimates.
const DefaultRiskDiscount = 0.3

// Runway band thresholds in months. Both boundaries belong to caution.
const (
	RunwayCriticalBelow = 6.0
	RunwayHealthyAbove  = 12.0
)

var hundred = decimal.NewFromInt(100)

// BurnRate returns the total monthly cash outflow: marketing spend plus headcount.
func BurnRate(marketingBudget decimal.Decimal, teamSize int) decimal.Decimal {
	return marketingBudget.Add(FixedCostPerHead.Mul(decimal.NewFromInt(int64(teamSize))))
}

// RunwayMonths returns cashBalance / burnRate, or 0 when nothing is burned.
func RunwayMonths(burnRate, cashBalance decimal.Decimal) float64 {
	if !burnRate.IsPositive() {
		return 0
	}
	return cashBalance.Div(burnRate).InexactFloat64()
}

// EstimatedCAC spreads the marketing budget over targetCustomers, treating
// zero customers as one.
func EstimatedCAC(marketingBudget decimal.Decimal, targetCustomers int) decimal.Decimal {
	return marketingBudget.Div(decimal.NewFromInt(int64(max(targetCustomers, 1))))
}

var (
	maxInt = decimal.NewFromInt(math.MaxInt)
	minInt = decimal.NewFromInt(math.MinInt)
)

// PotentialCustomers returns how many customers the budget buys at targetCAC.
// A count that does not fit in an int saturates at math.MaxInt.
func PotentialCustomers(marketingBudget, targetCAC decimal.Decimal) (int, error) {
	if !targetCAC.IsPositive() {
		return 0, &model.InvalidInputError{Field: "target_cac", Reason: "must be greater than zero"}
	}
	q, _ := marketingBudget.QuoRem(targetCAC, 0)
	switch {
	case q.GreaterThan(maxInt):
		return math.MaxInt, nil
	case q.LessThan(minInt):
		return math.MinInt, nil
	}
	return int(q.IntPart()), nil
}

// PercentGrowth returns the change from previous to current in percent.
// A zero baseline is unmeasurable and reported as 0.
func PercentGrowth(previous, current decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).InexactFloat64()
}

// PercentGrowthInt is PercentGrowth for counts.
func PercentGrowthInt(previous, current int) float64 {
	return PercentGrowth(decimal.NewFromInt(int64(previous)), decimal.NewFromInt(int64(current)))
}

// EstimatedLTV sums monthlyPrice weighted by each retention checkpoint and
// discounts the total by riskDiscount.
func EstimatedLTV(curve model.RetentionCurve, monthlyPrice decimal.Decimal, riskDiscount float64) decimal.Decimal {
	total := decimal.Zero
	for _, p := range curve {
		total = total.Add(monthlyPrice.Mul(decimal.NewFromFloat(p.Rate)))
	}
	return total.Mul(decimal.NewFromFloat(1 - riskDiscount))
}

// LTVToCAC returns ltv / cac, or 0 without a positive CAC.
func LTVToCAC(ltv, cac decimal.Decimal) float64 {
	if !cac.IsPositive() {
		return 0
	}
	return ltv.Div(cac).InexactFloat64()
}

// RunwayStatusBand maps runway months onto critical (< 6), caution (6..12)
// or healthy (> 12).
func RunwayStatusBand(runwayMonths float64) model.RunwayStatus {
	switch {
	case runwayMonths < RunwayCriticalBelow:
		return model.RunwayCritical
	case runwayMonths <= RunwayHealthyAbove:
		return model.RunwayCaution
	default:
		return model.RunwayHealthy
	}
}
