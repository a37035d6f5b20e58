// Package pipeline derives reports and trends from recorded snapshots and
// bulk-imports check-in files into a store.
package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/formula"
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/store"
)

// ReportOptions tunes the LTV side of a report.
type ReportOptions struct {
	// Curve feeds EstimatedLTV. Nil means no LTV figures.
	Curve        model.RetentionCurve
	RiskDiscount float64
}

// DefaultReportOptions uses curve with the standard risk discount.
func DefaultReportOptions(curve model.RetentionCurve) ReportOptions {
	return ReportOptions{Curve: curve, RiskDiscount: formula.DefaultRiskDiscount}
}

// Report derives the figures for month and compares them against month-1
// when that month is recorded. It only reads from st.
func Report(st *store.Store, month int, opts ReportOptions) (model.MonthReport, error) {
	cur, ok, err := st.Snapshot(month)
	if err != nil {
		return model.MonthReport{}, err
	}
	if !ok {
		return model.MonthReport{}, fmt.Errorf("report for month %d: %w", month, model.ErrMonthNotRecorded)
	}

	r := Derive(cur.Month, cur.Inputs, opts)

	prev, ok, err := st.Previous(month)
	if err != nil {
		return model.MonthReport{}, err
	}
	if ok {
		c := Compare(prev, cur)
		r.Comparison = &c
	}
	return r, nil
}

// Derive computes the single-month figures for in.
func Derive(month int, in model.Inputs, opts ReportOptions) model.MonthReport {
	burn := formula.BurnRate(in.MarketingBudget, in.TeamSize)
	runway := formula.RunwayMonths(burn, in.CashBalance)
	cac := formula.EstimatedCAC(in.MarketingBudget, in.CurrentCustomers)

	r := model.MonthReport{
		Month:        month,
		Current:      in,
		BurnRate:     burn,
		RunwayMonths: runway,
		RunwayStatus: formula.RunwayStatusBand(runway),
		EstimatedCAC: cac,
		EstimatedLTV: decimal.Zero,
	}
	if n, err := formula.PotentialCustomers(in.MarketingBudget, in.TargetCAC); err == nil {
		r.PotentialCustomers = &n
	}
	if len(opts.Curve) > 0 {
		r.EstimatedLTV = formula.EstimatedLTV(opts.Curve, in.SubscriptionPrice, opts.RiskDiscount)
		r.LTVToCAC = formula.LTVToCAC(r.EstimatedLTV, cac)
	}
	return r
}

// Compare returns the month-over-month deltas between two snapshots.
func Compare(prev, cur model.MonthlySnapshot) model.Comparison {
	return model.Comparison{
		PreviousMonth:     prev.Month,
		PreviousCustomers: prev.CurrentCustomers,
		CustomerDelta:     cur.CurrentCustomers - prev.CurrentCustomers,
		CustomerPercent:   formula.PercentGrowthInt(prev.CurrentCustomers, cur.CurrentCustomers),
		MRR:               delta(prev.CurrentMRR, cur.CurrentMRR),
		CashBalance:       delta(prev.CashBalance, cur.CashBalance),
	}
}

func delta(prev, cur decimal.Decimal) model.Delta {
	return model.Delta{
		Previous: prev,
		Amount:   cur.Sub(prev),
		Percent:  formula.PercentGrowth(prev, cur),
	}
}

// Trend returns one point per recorded month, oldest first.
func Trend(st *store.Store) ([]model.TrendPoint, error) {
	snaps, err := st.All()
	if err != nil {
		return nil, err
	}

	points := make([]model.TrendPoint, 0, len(snaps))
	for _, s := range snaps {
		burn := formula.BurnRate(s.MarketingBudget, s.TeamSize)
		runway := formula.RunwayMonths(burn, s.CashBalance)
		points = append(points, model.TrendPoint{
			Month:        s.Month,
			Customers:    s.CurrentCustomers,
			MRR:          s.CurrentMRR,
			CashBalance:  s.CashBalance,
			BurnRate:     burn,
			RunwayMonths: runway,
			RunwayStatus: formula.RunwayStatusBand(runway),
		})
	}
	return points, nil
}

// Summarize rolls a trend up into totals for the history view.
func Summarize(points []model.TrendPoint) model.HistorySummary {
	var s model.HistorySummary
	s.Months = len(points)
	s.LatestMRR = decimal.Zero
	s.AvgBurnRate = decimal.Zero
	if len(points) == 0 {
		return s
	}

	first, last := points[0], points[len(points)-1]
	s.FirstMonth = first.Month
	s.LastMonth = last.Month
	s.LatestMRR = last.MRR
	s.MRRGrowth = formula.PercentGrowth(first.MRR, last.MRR)
	s.LatestRunway = last.RunwayMonths
	s.LatestStatus = last.RunwayStatus

	total := decimal.Zero
	for i, p := range points {
		total = total.Add(p.BurnRate)
		if i > 0 {
			for m := points[i-1].Month + 1; m < p.Month; m++ {
				s.Gaps = append(s.Gaps, m)
			}
		}
	}
	s.AvgBurnRate = total.Div(decimal.NewFromInt(int64(len(points))))
	return s
}

// Sparkline extracts one series from a trend for charting.
func Sparkline(points []model.TrendPoint, pick func(model.TrendPoint) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = pick(p)
	}
	return out
}
