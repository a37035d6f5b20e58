package reference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/unitecon/internal/model"
)

func TestDefault_AllStagesPresent(t *testing.T) {
	tb := Default()
	for _, s := range Stages {
		sm := tb.StageMetrics(s)
		assert.Equal(t, s, sm.Stage)
		assert.NotEmpty(t, sm.Label)
		assert.NotEmpty(t, sm.Critical, "stage %s has no critical metrics", s)
	}
	assert.Len(t, tb.StageMetrics(StagePreSeed).Important, 4)
}

func TestStageMetrics_UnknownFallsBackToPreSeed(t *testing.T) {
	tb := Default()
	sm := tb.StageMetrics(Stage("series_z"))
	assert.Equal(t, StagePreSeed, sm.Stage)
	assert.Equal(t, tb.StageMetrics(StagePreSeed), sm)
}

func TestStageMetrics_ReturnsCopy(t *testing.T) {
	tb := Default()
	sm := tb.StageMetrics(StageSeed)
	sm.Critical[0].Name = "mutated"
	assert.NotEqual(t, "mutated", tb.StageMetrics(StageSeed).Critical[0].Name)
}

func TestRoadmap_Order(t *testing.T) {
	plans := Default().Roadmap()
	require.Len(t, plans, 4)
	for i, q := range Quarters {
		assert.Equal(t, q, plans[i].Quarter)
		a := plans[i].Allocation
		assert.InDelta(t, 1.0, a.ProductDevelopment+a.CustomerAcquisition+a.Operations, 1e-9, "quarter %s allocation", q)
	}
	assert.Equal(t, "q1_foundation", plans[0].Key)
	assert.Equal(t, "mrr", plans[0].Targets[4].Name)
	assert.Equal(t, 15000.0, plans[0].Targets[4].Value)
}

func TestQuarter_Unknown(t *testing.T) {
	_, ok := Default().Quarter(Quarter("q5"))
	assert.False(t, ok)
}

func TestVision(t *testing.T) {
	v := Default().Vision()
	require.Len(t, v, 2)
	assert.Equal(t, "year_2_scale", v[0].Key)
	assert.Equal(t, "5-10M ₽", v[0].FinancialTargets[0].Value)
}

func TestRetentionCurve_Multipliers(t *testing.T) {
	tb := Default()

	base := tb.RetentionCurve(BusinessModelUnset)
	r, ok := base.At(1)
	require.True(t, ok)
	assert.InDelta(t, 0.75, r, 1e-12)

	ent := tb.RetentionCurve(BusinessModelB2BEnterprise)
	r, _ = ent.At(1)
	assert.InDelta(t, 0.975, r, 1e-12)

	b2c := tb.RetentionCurve(BusinessModelB2C)
	r, _ = b2c.At(12)
	assert.InDelta(t, 0.175, r, 1e-12)

	// scaling must not touch the shared base
	r, _ = tb.RetentionCurve(BusinessModelUnset).At(12)
	assert.InDelta(t, 0.25, r, 1e-12)
}

func TestRunwayGuidance(t *testing.T) {
	tb := Default()
	assert.Equal(t, 0.2, tb.RunwayGuidance(model.RunwayCritical).Allocation)
	assert.Equal(t, 0.3, tb.RunwayGuidance(model.RunwayCaution).Allocation)
	assert.Equal(t, 0.4, tb.RunwayGuidance(model.RunwayHealthy).Allocation)
}

func TestMarketingChannels_SumToOne(t *testing.T) {
	sum := 0.0
	for _, c := range Default().MarketingChannels() {
		sum += c.Share
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage(" Seed ")
	require.NoError(t, err)
	assert.Equal(t, StageSeed, s)

	_, err = ParseStage("series_a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestParseBusinessModel(t *testing.T) {
	bm, err := ParseBusinessModel("")
	require.NoError(t, err)
	assert.Equal(t, BusinessModelUnset, bm)

	bm, err = ParseBusinessModel("B2C")
	require.NoError(t, err)
	assert.Equal(t, BusinessModelB2C, bm)

	_, err = ParseBusinessModel("marketplace")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestParse_MissingStage(t *testing.T) {
	_, err := Parse([]byte("stages:\n  pre_seed:\n    label: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed")
}

func TestPMF(t *testing.T) {
	tb := Default()
	assert.Equal(t, 4, tb.PMFMinWeeks())
	assert.Equal(t, "Unknown status", tb.PMFMessage("bogus"))
	assert.NotEmpty(t, tb.PMFMessage("strong_pmf"))
}

func TestQuarterOfMonth(t *testing.T) {
	cases := map[int]Quarter{1: Q1, 3: Q1, 4: Q2, 9: Q3, 12: Q4}
	for m, want := range cases {
		q, ok := QuarterOfMonth(m)
		require.True(t, ok, "month %d", m)
		assert.Equal(t, want, q, "month %d", m)
	}
	for _, m := range []int{0, 13, -1} {
		_, ok := QuarterOfMonth(m)
		assert.False(t, ok, "month %d", m)
	}
}
