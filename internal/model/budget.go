package model

import "github.com/shopspring/decimal"

// ChannelShare is one slice of a marketing budget split.
type ChannelShare struct {
	Channel string  `json:"channel" yaml:"channel"`
	Share   float64 `json:"share" yaml:"share"`
}

// BudgetPlan holds the runway-driven marketing budget guidance.
type BudgetPlan struct {
	BurnRate                 decimal.Decimal `json:"burn_rate"`
	RunwayMonths             float64         `json:"runway_months"`
	Status                   RunwayStatus    `json:"status"`
	Recommendation           string          `json:"recommendation"`
	SuggestedAllocation      float64         `json:"suggested_allocation"`
	SuggestedMarketingBudget decimal.Decimal `json:"suggested_marketing_budget"`
	Channels                 []ChannelShare  `json:"channels"`
}

// WeeklyMetrics is one week of manually tracked product usage.
type WeeklyMetrics struct {
	WeekStart      string `json:"week_start" yaml:"week_start"`
	NewSignups     int    `json:"new_signups" yaml:"new_signups"`
	ActivatedUsers int    `json:"activated_users" yaml:"activated_users"`
	ActiveUsers    int    `json:"active_users" yaml:"active_users"`
	ChurnedUsers   int    `json:"churned_users" yaml:"churned_users"`
}
