package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
	"github.com/theirongolddev/unitecon/internal/store"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func checkin(budget, cash int64, customers int, mrr int64, team int) model.Inputs {
	return model.Inputs{
		MarketingBudget:   d(budget),
		CashBalance:       d(cash),
		SubscriptionPrice: d(5_000),
		CurrentCustomers:  customers,
		CurrentMRR:        d(mrr),
		TargetCAC:         d(15_000),
		TeamSize:          team,
		ExpectedChurnRate: 0.05,
	}
}

func baseOpts() ReportOptions {
	return DefaultReportOptions(reference.Default().RetentionCurve(reference.BusinessModelUnset))
}

func TestReport_FirstMonthCritical(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := st.Record(1, checkin(100_000, 2_000_000, 2, 10_000, 3))
	require.NoError(t, err)

	r, err := Report(st, 1, baseOpts())
	require.NoError(t, err)

	assert.True(t, r.BurnRate.Equal(d(550_000)))
	assert.InDelta(t, 3.636, r.RunwayMonths, 0.001)
	assert.Equal(t, model.RunwayCritical, r.RunwayStatus)
	assert.Nil(t, r.Comparison, "month 1 has no predecessor")
	require.NotNil(t, r.PotentialCustomers)
	assert.Equal(t, 6, *r.PotentialCustomers)
	assert.True(t, r.EstimatedCAC.Equal(d(50_000)))
}

func TestReport_Comparison(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := st.Record(1, checkin(100_000, 2_000_000, 10, 50_000, 3))
	require.NoError(t, err)
	_, err = st.Record(2, checkin(100_000, 2_000_000, 15, 75_000, 3))
	require.NoError(t, err)

	r, err := Report(st, 2, baseOpts())
	require.NoError(t, err)
	require.NotNil(t, r.Comparison)

	c := r.Comparison
	assert.Equal(t, 1, c.PreviousMonth)
	assert.Equal(t, 5, c.CustomerDelta)
	assert.Equal(t, 50.0, c.CustomerPercent)
	assert.True(t, c.MRR.Amount.Equal(d(25_000)))
	assert.Equal(t, 50.0, c.MRR.Percent)
	assert.True(t, c.CashBalance.Amount.IsZero())
	assert.Zero(t, c.CashBalance.Percent)
}

func TestReport_ZeroBaselinePercent(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := st.Record(1, checkin(100_000, 2_000_000, 0, 0, 3))
	require.NoError(t, err)
	_, err = st.Record(2, checkin(100_000, 2_000_000, 4, 20_000, 3))
	require.NoError(t, err)

	r, err := Report(st, 2, baseOpts())
	require.NoError(t, err)
	assert.Equal(t, 4, r.Comparison.CustomerDelta)
	assert.Zero(t, r.Comparison.CustomerPercent)
	assert.True(t, r.Comparison.MRR.Amount.Equal(d(20_000)))
	assert.Zero(t, r.Comparison.MRR.Percent)
}

func TestReport_GapMeansNoComparison(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	for _, m := range []int{1, 2, 4} {
		_, err := st.Record(m, checkin(100_000, 2_000_000, m, 0, 3))
		require.NoError(t, err)
	}

	r, err := Report(st, 4, baseOpts())
	require.NoError(t, err)
	assert.Nil(t, r.Comparison)
}

func TestReport_NotRecorded(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := Report(st, 1, baseOpts())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMonthNotRecorded))
}

func TestReport_ZeroTargetCACOmitsPotential(t *testing.T) {
	in := checkin(100_000, 2_000_000, 1, 0, 0)
	in.TargetCAC = decimal.Zero

	r := Derive(1, in, baseOpts())
	assert.Nil(t, r.PotentialCustomers)
	assert.True(t, r.BurnRate.Equal(d(100_000)))
	assert.InDelta(t, 20.0, r.RunwayMonths, 1e-12)
	assert.Equal(t, model.RunwayHealthy, r.RunwayStatus)
}

func TestReport_NoCurveNoLTV(t *testing.T) {
	r := Derive(1, checkin(100_000, 2_000_000, 1, 0, 3), ReportOptions{})
	assert.True(t, r.EstimatedLTV.IsZero())
	assert.Zero(t, r.LTVToCAC)
}

func TestReport_DoesNotMutateStore(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := st.Record(1, checkin(100_000, 2_000_000, 2, 10_000, 3))
	require.NoError(t, err)
	before, err := st.All()
	require.NoError(t, err)

	_, err = Report(st, 1, baseOpts())
	require.NoError(t, err)
	_, err = Report(st, 2, baseOpts())
	require.Error(t, err)

	after, err := st.All()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReport_Golden(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := st.Record(1, checkin(100_000, 5_500_000, 10, 50_000, 3))
	require.NoError(t, err)
	_, err = st.Record(2, checkin(100_000, 4_400_000, 20, 75_000, 3))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tc := range []struct {
		name  string
		month int
	}{
		{"report_month1", 1},
		{"report_month2", 2},
	} {
		r, err := Report(st, tc.month, baseOpts())
		require.NoError(t, err)
		out, err := json.MarshalIndent(r, "", "  ")
		require.NoError(t, err)
		g.Assert(t, tc.name, append(out, '\n'))
	}
}

func TestTrendAndSummarize(t *testing.T) {
	st := store.NewMemoryStore(store.Options{})
	_, err := st.Record(3, checkin(100_000, 5_500_000, 20, 100_000, 3))
	require.NoError(t, err)
	_, err = st.Record(1, checkin(100_000, 2_000_000, 10, 50_000, 3))
	require.NoError(t, err)

	points, err := Trend(st)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].Month)
	assert.Equal(t, model.RunwayCritical, points[0].RunwayStatus)
	assert.Equal(t, model.RunwayCaution, points[1].RunwayStatus)

	s := Summarize(points)
	assert.Equal(t, 2, s.Months)
	assert.Equal(t, []int{2}, s.Gaps)
	assert.Equal(t, 100.0, s.MRRGrowth)
	assert.True(t, s.AvgBurnRate.Equal(d(550_000)))
	assert.True(t, s.LatestMRR.Equal(d(100_000)))
	assert.InDelta(t, 10.0, s.LatestRunway, 1e-12)

	mrr := Sparkline(points, func(p model.TrendPoint) float64 { return p.MRR.InexactFloat64() })
	assert.Equal(t, []float64{50_000, 100_000}, mrr)

	empty := Summarize(nil)
	assert.Zero(t, empty.Months)
	assert.True(t, empty.LatestMRR.IsZero())
}
