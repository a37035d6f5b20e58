package planner

import (
	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
)

// PMF statuses.
const (
	PMFStrong       = "strong_pmf"
	PMFModerate     = "moderate_pmf"
	PMFWeak         = "weak_pmf"
	PMFNeedMoreData = "need_more_data"
	PMFNoData       = "no_data"
)

// PMFResult is a product-market-fit estimate from weekly usage.
type PMFResult struct {
	Status         string  `json:"status"`
	Score          int     `json:"score"`
	ActivationRate float64 `json:"activation_rate"`
	Weeks          int     `json:"weeks"`
	Message        string  `json:"message"`
}

// PMFScore rates product-market fit from the share of signups that
// activated. Fewer than the minimum number of weeks gives need_more_data.
func PMFScore(weeks []model.WeeklyMetrics, tables *reference.Tables) PMFResult {
	res := PMFResult{Weeks: len(weeks)}
	if len(weeks) < tables.PMFMinWeeks() {
		res.Status = PMFNeedMoreData
		res.Message = tables.PMFMessage(res.Status)
		return res
	}

	var signups, activated int
	for _, w := range weeks {
		signups += w.NewSignups
		activated += w.ActivatedUsers
	}
	if signups == 0 {
		res.Status = PMFNoData
		res.Message = tables.PMFMessage(res.Status)
		return res
	}

	res.ActivationRate = float64(activated) / float64(signups)
	switch {
	case res.ActivationRate > 0.3:
		res.Status, res.Score = PMFStrong, 80
	case res.ActivationRate > 0.2:
		res.Status, res.Score = PMFModerate, 60
	default:
		res.Status, res.Score = PMFWeak, 40
	}
	res.Message = tables.PMFMessage(res.Status)
	return res
}
