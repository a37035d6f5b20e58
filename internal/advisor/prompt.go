package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/theirongolddev/unitecon/internal/model"
)

const systemPrompt = `You are an analyst for early-stage B2B SaaS companies.
Answer only with a JSON array of 2 to 4 objects with the fields
"title", "description", "priority" (0..1) and "actions" (array of strings).`

func buildPrompt(in model.Inputs, r model.MonthReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Month %d check-in of a pre-seed SaaS company.\n", r.Month)
	fmt.Fprintf(&b, "- Marketing budget: %s per month\n", in.MarketingBudget)
	fmt.Fprintf(&b, "- Cash balance: %s\n", in.CashBalance)
	fmt.Fprintf(&b, "- Subscription price: %s per month\n", in.SubscriptionPrice)
	fmt.Fprintf(&b, "- Paying customers: %d, MRR: %s\n", in.CurrentCustomers, in.CurrentMRR)
	fmt.Fprintf(&b, "- Target CAC: %s, team size: %d\n", in.TargetCAC, in.TeamSize)
	fmt.Fprintf(&b, "- Expected monthly churn: %.1f%%\n", in.ExpectedChurnRate*100)
	fmt.Fprintf(&b, "- Burn rate: %s per month, runway %.1f months (%s)\n", r.BurnRate, r.RunwayMonths, r.RunwayStatus)
	if c := r.Comparison; c != nil {
		fmt.Fprintf(&b, "- Versus month %d: customers %+d, MRR %+.1f%%, cash %+.1f%%\n",
			c.PreviousMonth, c.CustomerDelta, c.MRR.Percent, c.CashBalance.Percent)
	}
	b.WriteString("Give the most important next steps for the coming month.")
	return b.String()
}

// parseReply pulls the JSON array out of a model reply, tolerating prose or
// code fences around it.
func parseReply(reply string) ([]Recommendation, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("advisor: no JSON array in reply")
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(reply[start:end+1]), &recs); err != nil {
		return nil, fmt.Errorf("advisor: parsing reply: %w", err)
	}

	out := recs[:0]
	for _, r := range recs {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		r.Priority = min(max(r.Priority, 0), 1)
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
