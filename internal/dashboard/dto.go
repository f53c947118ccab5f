package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

// Request scopes a dashboard composition to a client or brand and a period.
// Exactly one of ClientID/BrandID is set; the brand's client is resolved by
// the caller.
type Request struct {
	ClientID *uuid.UUID
	BrandID  *uuid.UUID
	Range    types.DateRange
}

// SubjectID returns the id the cache is keyed on.
func (r Request) SubjectID() string {
	if r.BrandID != nil {
		return r.BrandID.String()
	}
	if r.ClientID != nil {
		return r.ClientID.String()
	}
	return ""
}

// KPIValue is one metric with its prior-period comparison.
type KPIValue struct {
	Key           string          `json:"key"`
	Label         string          `json:"label"`
	Source        enums.KPISource `json:"source"`
	Value         float64         `json:"value"`
	PreviousValue *float64        `json:"previous_value,omitempty"`
	ChangePct     *float64        `json:"change_pct,omitempty"`
}

// Payload is a composed dashboard snapshot. Sources lists which pipelines
// contributed; a source missing from it failed during composition.
type Payload struct {
	SubjectID  string            `json:"subject_id"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	KPIs       []KPIValue        `json:"kpis"`
	Sources    []enums.KPISource `json:"sources"`
	ComposedAt time.Time         `json:"composed_at"`
}

// KPIsBySource groups the payload's KPIs for section rendering.
func (p *Payload) KPIsBySource() map[enums.KPISource][]KPIValue {
	out := make(map[enums.KPISource][]KPIValue)
	for _, kpi := range p.KPIs {
		out[kpi.Source] = append(out[kpi.Source], kpi)
	}
	return out
}

// ChartPoint is one datum in a rendered chart. Label carries a day for time
// series and a category for breakdowns.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries is one chart's data, keyed by its catalog entry.
type ChartSeries struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Source enums.KPISource `json:"source"`
	Points []ChartPoint    `json:"points"`
}

// ChartsPayload is a composed chart set. Sources lists which pipelines
// contributed, mirroring the KPI payload's degradation contract.
type ChartsPayload struct {
	SubjectID  string            `json:"subject_id"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	Charts     []ChartSeries     `json:"charts"`
	Sources    []enums.KPISource `json:"sources"`
	ComposedAt time.Time         `json:"composed_at"`
}

// ChartsBySource groups the payload's charts for section rendering.
func (p *ChartsPayload) ChartsBySource() map[enums.KPISource][]ChartSeries {
	out := make(map[enums.KPISource][]ChartSeries)
	for _, chart := range p.Charts {
		out[chart.Source] = append(out[chart.Source], chart)
	}
	return out
}

// SEOSeries are the chart series the SEO section renders for one period.
type SEOSeries struct {
	RankDistribution []ChartPoint
	RankTrend        []ChartPoint
	TopMovers        []ChartPoint
}

// AISeries are the chart series the AI-visibility section renders.
type AISeries struct {
	MentionsOverTime   []ChartPoint
	ShareOfVoiceTrend  []ChartPoint
	SentimentBreakdown []ChartPoint
}

// SEOTotals are the aggregate SEO KPI values for one period.
type SEOTotals struct {
	AvgKeywordRank   float64
	TrackedKeywords  int64
	Top3Keywords     int64
	Top10Keywords    int64
	ImprovedKeywords int64
	DeclinedKeywords int64
}

// AITotals are the aggregate AI-visibility KPI values for one period.
type AITotals struct {
	BrandMentions     int64
	AIVisibilityScore float64
	ShareOfVoice      float64
	AvgSentiment      float64
}

func changePct(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	pct := (current - previous) / previous * 100
	return &pct
}

func kpiValue(key, label string, source enums.KPISource, current float64, previous *float64) KPIValue {
	value := KPIValue{
		Key:    key,
		Label:  label,
		Source: source,
		Value:  current,
	}
	if previous != nil {
		value.PreviousValue = previous
		value.ChangePct = changePct(current, *previous)
	}
	return value
}
