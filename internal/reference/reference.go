// Package reference holds the static stage, roadmap and benchmark tables.
// The tables are parsed once from an embedded YAML document and never change
// at runtime; every accessor hands out copies.
package reference

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/unitecon/internal/model"
)

//go:embed reference.yaml
var rawTables []byte

// Stage is the coarse company-maturity tag.
type Stage string

const (
	StagePreSeed Stage = "pre_seed"
	StageSeed    Stage = "seed"
	StageScale   Stage = "scale"
)

// Stages lists every stage in maturity order.
var Stages = []Stage{StagePreSeed, StageSeed, StageScale}

// Quarter identifies one quarter of the first-year roadmap.
type Quarter string

const (
	Q1 Quarter = "q1"
	Q2 Quarter = "q2"
	Q3 Quarter = "q3"
	Q4 Quarter = "q4"
)

// Quarters lists the roadmap quarters in order.
var Quarters = []Quarter{Q1, Q2, Q3, Q4}

// QuarterOfMonth maps a month of the first year onto its roadmap quarter.
// Months past 12 are outside the roadmap.
func QuarterOfMonth(month int) (Quarter, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return Quarters[(month-1)/3], true
}

// BusinessModel tags which retention multiplier applies. The empty value
// means unknown and leaves the base curve unscaled.
type BusinessModel string

const (
	BusinessModelUnset         BusinessModel = ""
	BusinessModelB2BEnterprise BusinessModel = "b2b_enterprise"
	BusinessModelB2C           BusinessModel = "b2c"
)

// MetricTarget is a named benchmark with a human-readable target.
type MetricTarget struct {
	Name   string `yaml:"name" json:"name"`
	Target string `yaml:"target" json:"target"`
}

// StageMetrics holds the benchmark table for one stage.
type StageMetrics struct {
	Stage     Stage          `yaml:"-" json:"stage"`
	Label     string         `yaml:"label" json:"label"`
	Horizon   string         `yaml:"horizon" json:"horizon"`
	Critical  []MetricTarget `yaml:"critical" json:"critical"`
	Important []MetricTarget `yaml:"important" json:"important,omitempty"`
}

// NumericTarget is a roadmap target with a numeric goal.
type NumericTarget struct {
	Name  string  `yaml:"name" json:"name"`
	Value float64 `yaml:"value" json:"value"`
}

// TextTarget is a roadmap target expressed as a range or bound.
type TextTarget struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// BudgetAllocation splits spend between product, acquisition and operations.
type BudgetAllocation struct {
	ProductDevelopment  float64 `yaml:"product_development" json:"product_development"`
	CustomerAcquisition float64 `yaml:"customer_acquisition" json:"customer_acquisition"`
	Operations          float64 `yaml:"operations" json:"operations"`
}

// QuarterPlan is one quarter of the first-year roadmap.
type QuarterPlan struct {
	Quarter    Quarter          `yaml:"-" json:"quarter"`
	Key        string           `yaml:"key" json:"key"`
	Theme      string           `yaml:"theme" json:"theme"`
	Targets    []NumericTarget  `yaml:"targets" json:"targets"`
	Allocation BudgetAllocation `yaml:"budget_allocation" json:"budget_allocation"`
	Activities []string         `yaml:"activities" json:"activities"`
}

// VisionYear is one year of the three-year outlook.
type VisionYear struct {
	Key                string       `yaml:"key" json:"key"`
	Theme              string       `yaml:"theme" json:"theme"`
	FinancialTargets   []TextTarget `yaml:"financial_targets" json:"financial_targets"`
	OperationalTargets []TextTarget `yaml:"operational_targets" json:"operational_targets"`
	Initiatives        []string     `yaml:"initiatives" json:"initiatives"`
}

// GrowthScenario is a canned customer-count projection.
type GrowthScenario struct {
	Name         string `yaml:"name" json:"name"`
	Customers6M  int    `yaml:"customers_6m" json:"customers_6m"`
	Customers12M int    `yaml:"customers_12m" json:"customers_12m"`
	Assumptions  string `yaml:"assumptions" json:"assumptions"`
}

// RunwayGuidance is the canned advice for one runway band.
type RunwayGuidance struct {
	Recommendation string  `yaml:"recommendation" json:"recommendation"`
	Allocation     float64 `yaml:"allocation" json:"allocation"`
}

// ForecastPhase holds the constants of one pre-seed forecast phase.
type ForecastPhase struct {
	Label         string   `yaml:"label"`
	MinCustomers  int      `yaml:"min_customers"`
	CustomerShare float64  `yaml:"customer_share"`
	TargetMRR     int64    `yaml:"target_mrr"`
	Activities    []string `yaml:"activities"`
}

// Recommendation is a canned advisor entry. Description may hold a single
// %f verb for the runway.
type Recommendation struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Priority    float64  `yaml:"priority"`
	Actions     []string `yaml:"actions"`
}

type document struct {
	Stages    map[Stage]StageMetrics  `yaml:"stages"`
	Quarters  map[Quarter]QuarterPlan `yaml:"quarters"`
	Vision    []VisionYear            `yaml:"vision"`
	Retention struct {
		Base        model.RetentionCurve      `yaml:"base"`
		Multipliers map[BusinessModel]float64 `yaml:"multipliers"`
	} `yaml:"retention"`
	GrowthScenarios []GrowthScenario `yaml:"growth_scenarios"`
	CohortInsights  struct {
		Always        []string `yaml:"always"`
		LowFirstMonth string   `yaml:"low_first_month"`
	} `yaml:"cohort_insights"`
	MarketingChannels []model.ChannelShare                  `yaml:"marketing_channels"`
	RunwayGuidance    map[model.RunwayStatus]RunwayGuidance `yaml:"runway_guidance"`
	Forecast          struct {
		Phase1 ForecastPhase `yaml:"phase_1"`
		Phase2 ForecastPhase `yaml:"phase_2"`
	} `yaml:"forecast"`
	PMF struct {
		MinWeeks int               `yaml:"min_weeks"`
		Messages map[string]string `yaml:"messages"`
	} `yaml:"pmf"`
	Recommendations []Recommendation `yaml:"recommendations"`
}

// Tables is the immutable reference table set.
type Tables struct {
	doc document
}

var defaultTables = mustParse(rawTables)

// Default returns the tables built from the embedded document.
func Default() *Tables {
	return defaultTables
}

func mustParse(data []byte) *Tables {
	t, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("reference: embedded tables: %v", err))
	}
	return t
}

// Parse builds a table set from a YAML document and checks that every
// closed tag has an entry.
func Parse(data []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing reference tables: %w", err)
	}
	for _, s := range Stages {
		if _, ok := doc.Stages[s]; !ok {
			return nil, fmt.Errorf("reference tables: missing stage %q", s)
		}
	}
	for _, q := range Quarters {
		if _, ok := doc.Quarters[q]; !ok {
			return nil, fmt.Errorf("reference tables: missing quarter %q", q)
		}
	}
	for _, st := range []model.RunwayStatus{model.RunwayCritical, model.RunwayCaution, model.RunwayHealthy} {
		if _, ok := doc.RunwayGuidance[st]; !ok {
			return nil, fmt.Errorf("reference tables: missing runway guidance %q", st)
		}
	}
	if len(doc.Retention.Base) == 0 {
		return nil, fmt.Errorf("reference tables: empty retention curve")
	}
	return &Tables{doc: doc}, nil
}

// ParseStage validates a stage tag.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Stages, st) {
		return st, nil
	}
	return "", &model.InvalidInputError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", s)}
}

// ParseQuarter validates a quarter tag.
func ParseQuarter(s string) (Quarter, error) {
	q := Quarter(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Quarters, q) {
		return q, nil
	}
	return "", &model.InvalidInputError{Field: "quarter", Reason: fmt.Sprintf("unknown quarter %q", s)}
}

// ParseBusinessModel validates a business-model tag. Empty is allowed.
func ParseBusinessModel(s string) (BusinessModel, error) {
	bm := BusinessModel(strings.ToLower(strings.TrimSpace(s)))
	switch bm {
	case BusinessModelUnset, BusinessModelB2BEnterprise, BusinessModelB2C:
		return bm, nil
	}
	return "", &model.InvalidInputError{Field: "business_model", Reason: fmt.Sprintf("unknown business model %q", s)}
}

// StageMetrics returns the benchmark table for stage. Unknown stages get the
// pre-seed table.
func (t *Tables) StageMetrics(stage Stage) StageMetrics {
	sm, ok := t.doc.Stages[stage]
	if !ok {
		stage = StagePreSeed
		sm = t.doc.Stages[stage]
	}
	sm.Stage = stage
	sm.Critical = slices.Clone(sm.Critical)
	sm.Important = slices.Clone(sm.Important)
	return sm
}

// Quarter returns the roadmap entry for q.
func (t *Tables) Quarter(q Quarter) (QuarterPlan, bool) {
	qp, ok := t.doc.Quarters[q]
	if !ok {
		return QuarterPlan{}, false
	}
	qp.Quarter = q
	qp.Targets = slices.Clone(qp.Targets)
	qp.Activities = slices.Clone(qp.Activities)
	return qp, true
}

// Roadmap returns all four quarters in order.
func (t *Tables) Roadmap() []QuarterPlan {
	plans := make([]QuarterPlan, 0, len(Quarters))
	for _, q := range Quarters {
		qp, _ := t.Quarter(q)
		plans = append(plans, qp)
	}
	return plans
}

// Vision returns the three-year outlook beyond the first-year roadmap.
func (t *Tables) Vision() []VisionYear {
	out := make([]VisionYear, len(t.doc.Vision))
	for i, v := range t.doc.Vision {
		v.FinancialTargets = slices.Clone(v.FinancialTargets)
		v.OperationalTargets = slices.Clone(v.OperationalTargets)
		v.Initiatives = slices.Clone(v.Initiatives)
		out[i] = v
	}
	return out
}

// RetentionMultiplier returns the curve scale factor for bm.
func (t *Tables) RetentionMultiplier(bm BusinessModel) float64 {
	if m, ok := t.doc.Retention.Multipliers[bm]; ok {
		return m
	}
	return 1.0
}

// RetentionCurve returns the reference cohort retention curve scaled for bm.
func (t *Tables) RetentionCurve(bm BusinessModel) model.RetentionCurve {
	mult := t.RetentionMultiplier(bm)
	curve := make(model.RetentionCurve, len(t.doc.Retention.Base))
	for i, p := range t.doc.Retention.Base {
		curve[i] = model.RetentionCheckpoint{Month: p.Month, Rate: p.Rate * mult}
	}
	return curve
}

// GrowthScenarios returns the canned projections.
func (t *Tables) GrowthScenarios() []GrowthScenario {
	return slices.Clone(t.doc.GrowthScenarios)
}

// CohortInsights returns the always-on insights and the low first-month
// retention warning.
func (t *Tables) CohortInsights() ([]string, string) {
	return slices.Clone(t.doc.CohortInsights.Always), t.doc.CohortInsights.LowFirstMonth
}

// MarketingChannels returns the default marketing budget split.
func (t *Tables) MarketingChannels() []model.ChannelShare {
	return slices.Clone(t.doc.MarketingChannels)
}

// RunwayGuidance returns the canned advice for a runway band.
func (t *Tables) RunwayGuidance(status model.RunwayStatus) RunwayGuidance {
	return t.doc.RunwayGuidance[status]
}

// ForecastPhases returns the two pre-seed forecast phases.
func (t *Tables) ForecastPhases() (ForecastPhase, ForecastPhase) {
	p1, p2 := t.doc.Forecast.Phase1, t.doc.Forecast.Phase2
	p1.Activities = slices.Clone(p1.Activities)
	p2.Activities = slices.Clone(p2.Activities)
	return p1, p2
}

// PMFMinWeeks is the number of weeks required before a PMF score is given.
func (t *Tables) PMFMinWeeks() int {
	return t.doc.PMF.MinWeeks
}

// PMFMessage returns the explanation for a PMF status.
func (t *Tables) PMFMessage(status string) string {
	if msg, ok := t.doc.PMF.Messages[status]; ok {
		return msg
	}
	return "Unknown status"
}

// PMFMessages returns a copy of every PMF status message.
func (t *Tables) PMFMessages() map[string]string {
	return maps.Clone(t.doc.PMF.Messages)
}

// Recommendations returns the canned advisor entries.
func (t *Tables) Recommendations() []Recommendation {
	out := make([]Recommendation, len(t.doc.Recommendations))
	for i, r := range t.doc.Recommendations {
		r.Actions = slices.Clone(r.Actions)
		out[i] = r
	}
	return out
}
