package model

import "github.com/shopspring/decimal"

// RunwayStatus is the coarse health band of a runway figure.
type RunwayStatus string

const (
	RunwayCritical RunwayStatus = "critical"
	RunwayCaution  RunwayStatus = "caution"
	RunwayHealthy  RunwayStatus = "healthy"
)

// Delta holds the change of one money figure between two months.
type Delta struct {
	Previous decimal.Decimal `json:"previous"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  float64         `json:"percent"`
}

// Comparison holds month N vs month N-1 deltas. It only exists when both
// snapshots are recorded.
type Comparison struct {
	PreviousMonth     int     `json:"previous_month"`
	PreviousCustomers int     `json:"previous_customers"`
	CustomerDelta     int     `json:"customer_delta"`
	CustomerPercent   float64 `json:"customer_percent"`
	MRR               Delta   `json:"mrr"`
	CashBalance       Delta   `json:"cash_balance"`
}

// MonthReport is the derived view of one recorded month. It is computed on
// demand and never stored.
type MonthReport struct {
	Month              int             `json:"month"`
	Current            Inputs          `json:"current"`
	BurnRate           decimal.Decimal `json:"burn_rate"`
	RunwayMonths       float64         `json:"runway_months"`
	RunwayStatus       RunwayStatus    `json:"runway_status"`
	EstimatedCAC       decimal.Decimal `json:"estimated_cac"`
	PotentialCustomers *int            `json:"potential_customers,omitempty"`
	EstimatedLTV       decimal.Decimal `json:"estimated_ltv"`
	LTVToCAC           float64         `json:"ltv_to_cac"`
	Comparison         *Comparison     `json:"comparison,omitempty"`
}

// TrendPoint is one month of the history used for charts.
type TrendPoint struct {
	Month        int             `json:"month"`
	Customers    int             `json:"customers"`
	MRR          decimal.Decimal `json:"mrr"`
	CashBalance  decimal.Decimal `json:"cash_balance"`
	BurnRate     decimal.Decimal `json:"burn_rate"`
	RunwayMonths float64         `json:"runway_months"`
	RunwayStatus RunwayStatus    `json:"runway_status"`
}

// RetentionCheckpoint is the fraction of a cohort still paying at Month.
type RetentionCheckpoint struct {
	Month int     `json:"month" yaml:"month"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// RetentionCurve is an ordered list of checkpoints, earliest first.
type RetentionCurve []RetentionCheckpoint

// At returns the rate at the given checkpoint month.
func (c RetentionCurve) At(month int) (float64, bool) {
	for _, p := range c {
		if p.Month == month {
			return p.Rate, true
		}
	}
	return 0, false
}

// HistorySummary rolls up the whole recorded history.
type HistorySummary struct {
	Months       int             `json:"months"`
	FirstMonth   int             `json:"first_month,omitempty"`
	LastMonth    int             `json:"last_month,omitempty"`
	Gaps         []int           `json:"gaps,omitempty"`
	LatestMRR    decimal.Decimal `json:"latest_mrr"`
	MRRGrowth    float64         `json:"mrr_growth"`
	AvgBurnRate  decimal.Decimal `json:"avg_burn_rate"`
	LatestRunway float64         `json:"latest_runway_months"`
	LatestStatus RunwayStatus    `json:"latest_runway_status,omitempty"`
}
