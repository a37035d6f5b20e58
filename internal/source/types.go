package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/unitecon/internal/model"
)

// Format is the on-disk encoding of a check-in file.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSONL Format = "jsonl"
)

// CheckinFile is a check-in file found on disk.
type CheckinFile struct {
	Path   string
	Format Format
}

// Amount is a money value that accepts bare numbers or strings like
// "2_000_000" or "1 500.50" in either YAML or JSON.
type Amount struct {
	decimal.Decimal
}

// groupSeparators are dropped before parsing. Commas are handled by
// normalizeCommas.
var groupSeparators = strings.NewReplacer("_", "", " ", "", "\u00a0", "", "\u202f", "")

// ParseAmount reads a money amount, ignoring digit-group separators.
// A single comma followed by one or two digits is a decimal comma, so
// "1 500,50" is 1500.50 as the ru and de dashboards print it.
func ParseAmount(s string) (Amount, error) {
	clean, ok := normalizeCommas(groupSeparators.Replace(strings.TrimSpace(s)))
	if !ok {
		return Amount{}, fmt.Errorf("ambiguous amount %q: use a dot or a comma for decimals, not both", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return Amount{}, fmt.Errorf("bad amount %q", s)
	}
	return Amount{d}, nil
}

// normalizeCommas rewrites s so it has no commas. Commas are thousands
// separators only when every group after one has exactly three digits.
func normalizeCommas(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	parts := strings.Split(s, ",")
	last := parts[len(parts)-1]
	if len(parts) == 2 && !strings.Contains(s, ".") && len(last) >= 1 && len(last) <= 2 {
		return parts[0] + "." + last, true
	}
	if parts[0] == "" {
		return "", false
	}
	for i, p := range parts[1:] {
		group := p
		if i == len(parts)-2 {
			group, _, _ = strings.Cut(p, ".")
		}
		if len(group) != 3 || strings.Contains(group, ".") {
			return "", false
		}
	}
	return strings.Join(parts, ""), true
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	v, err := ParseAmount(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// RawCheckin is one check-in as written in a file. Missing fields are nil
// and get filled from a base set of inputs.
type RawCheckin struct {
	Month             int      `json:"month" yaml:"month"`
	MarketingBudget   *Amount  `json:"marketing_budget,omitempty" yaml:"marketing_budget"`
	CashBalance       *Amount  `json:"cash_balance,omitempty" yaml:"cash_balance"`
	SubscriptionPrice *Amount  `json:"subscription_price,omitempty" yaml:"subscription_price"`
	CurrentCustomers  *int     `json:"current_customers,omitempty" yaml:"current_customers"`
	CurrentMRR        *Amount  `json:"current_mrr,omitempty" yaml:"current_mrr"`
	TargetCAC         *Amount  `json:"target_cac,omitempty" yaml:"target_cac"`
	TeamSize          *int     `json:"team_size,omitempty" yaml:"team_size"`
	ExpectedChurnRate *float64 `json:"expected_churn_rate,omitempty" yaml:"expected_churn_rate"`
}

// Merge returns base with every field present in r written over it.
func (r RawCheckin) Merge(base model.Inputs) model.Inputs {
	in := base
	setAmount := func(dst *decimal.Decimal, a *Amount) {
		if a != nil {
			*dst = a.Decimal
		}
	}
	setAmount(&in.MarketingBudget, r.MarketingBudget)
	setAmount(&in.CashBalance, r.CashBalance)
	setAmount(&in.SubscriptionPrice, r.SubscriptionPrice)
	setAmount(&in.CurrentMRR, r.CurrentMRR)
	setAmount(&in.TargetCAC, r.TargetCAC)
	if r.CurrentCustomers != nil {
		in.CurrentCustomers = *r.CurrentCustomers
	}
	if r.TeamSize != nil {
		in.TeamSize = *r.TeamSize
	}
	if r.ExpectedChurnRate != nil {
		in.ExpectedChurnRate = *r.ExpectedChurnRate
	}
	return in
}

// Record is a parsed check-in and the line it started on.
type Record struct {
	Line    int
	Checkin RawCheckin
}

type checkinDocument struct {
	Checkins []yaml.Node `yaml:"checkins"`
}

type weeklyDocument struct {
	Weeks []model.WeeklyMetrics `yaml:"weeks"`
}
