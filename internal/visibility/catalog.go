package visibility

import (
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// KPI describes one catalog entry. Insertion order in the catalog is display order.
type KPI struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Source enums.KPISource `json:"source"`
	Icon   string          `json:"icon,omitempty"`
}

// Chart describes one chart owned by a section.
type Chart struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Catalog is the static KPI/section/chart registry the resolver runs against.
// Immutable after construction.
type Catalog struct {
	kpis     []KPI
	kpiIndex map[string]int
	charts   map[enums.SectionID][]Chart
}

// NewCatalog builds a catalog from ordered KPI entries and per-section charts.
// Chart ownership is keyed by canonical section id.
func NewCatalog(kpis []KPI, charts map[enums.SectionID][]Chart) *Catalog {
	c := &Catalog{
		kpis:     make([]KPI, 0, len(kpis)),
		kpiIndex: make(map[string]int, len(kpis)),
		charts:   make(map[enums.SectionID][]Chart, len(charts)),
	}
	for _, kpi := range kpis {
		if _, exists := c.kpiIndex[kpi.Key]; exists {
			continue
		}
		c.kpiIndex[kpi.Key] = len(c.kpis)
		c.kpis = append(c.kpis, kpi)
	}
	for section, list := range charts {
		copied := make([]Chart, len(list))
		copy(copied, list)
		c.charts[section.Canonical()] = copied
	}
	return c
}

// KPIs returns the full catalog in display order.
func (c *Catalog) KPIs() []KPI {
	out := make([]KPI, len(c.kpis))
	copy(out, c.kpis)
	return out
}

// KPI looks up a catalog entry by key.
func (c *Catalog) KPI(key string) (KPI, bool) {
	idx, ok := c.kpiIndex[key]
	if !ok {
		return KPI{}, false
	}
	return c.kpis[idx], true
}

// SectionKPIKeys returns the KPI keys a section owns, in display order.
// all_performance_metrics owns every KPI; unknown sections own nothing.
func (c *Catalog) SectionKPIKeys(section enums.SectionID) []string {
	canonical := section.Canonical()
	if !canonical.IsValid() {
		return nil
	}

	if canonical == enums.SectionAllPerformanceMetrics {
		keys := make([]string, 0, len(c.kpis))
		for _, kpi := range c.kpis {
			keys = append(keys, kpi.Key)
		}
		return keys
	}

	source, ok := sectionSource(canonical)
	if !ok {
		return nil
	}
	var keys []string
	for _, kpi := range c.kpis {
		if kpi.Source == source {
			keys = append(keys, kpi.Key)
		}
	}
	return keys
}

// SectionCharts returns the chart descriptors a section owns.
func (c *Catalog) SectionCharts(section enums.SectionID) []Chart {
	list, ok := c.charts[section.Canonical()]
	if !ok {
		return nil
	}
	out := make([]Chart, len(list))
	copy(out, list)
	return out
}

// SectionChartKeys returns just the chart keys a section owns.
func (c *Catalog) SectionChartKeys(section enums.SectionID) []string {
	list := c.SectionCharts(section)
	if len(list) == 0 {
		return nil
	}
	keys := make([]string, 0, len(list))
	for _, chart := range list {
		keys = append(keys, chart.Key)
	}
	return keys
}

func sectionSource(section enums.SectionID) (enums.KPISource, bool) {
	switch section {
	case enums.SectionWebAnalytics:
		return enums.KPISourceWebAnalytics, true
	case enums.SectionSEOPerformance:
		return enums.KPISourceSEOPerformance, true
	case enums.SectionAIVisibility:
		return enums.KPISourceAIVisibility, true
	default:
		return "", false
	}
}

// DefaultCatalog returns the production KPI/chart registry.
func DefaultCatalog() *Catalog {
	kpis := []KPI{
		{Key: "users", Label: "Users", Source: enums.KPISourceWebAnalytics, Icon: "users"},
		{Key: "new_users", Label: "New Users", Source: enums.KPISourceWebAnalytics, Icon: "user-plus"},
		{Key: "sessions", Label: "Sessions", Source: enums.KPISourceWebAnalytics, Icon: "activity"},
		{Key: "engaged_sessions", Label: "Engaged Sessions", Source: enums.KPISourceWebAnalytics, Icon: "mouse-pointer"},
		{Key: "engagement_rate", Label: "Engagement Rate", Source: enums.KPISourceWebAnalytics, Icon: "percent"},
		{Key: "bounce_rate", Label: "Bounce Rate", Source: enums.KPISourceWebAnalytics, Icon: "corner-up-left"},
		{Key: "avg_session_duration", Label: "Avg. Session Duration", Source: enums.KPISourceWebAnalytics, Icon: "clock"},
		{Key: "conversions", Label: "Conversions", Source: enums.KPISourceWebAnalytics, Icon: "target"},

		{Key: "avg_keyword_rank", Label: "Average Keyword Rank", Source: enums.KPISourceSEOPerformance, Icon: "bar-chart"},
		{Key: "tracked_keywords", Label: "Tracked Keywords", Source: enums.KPISourceSEOPerformance, Icon: "list"},
		{Key: "top3_keywords", Label: "Top 3 Keywords", Source: enums.KPISourceSEOPerformance, Icon: "award"},
		{Key: "top10_keywords", Label: "Top 10 Keywords", Source: enums.KPISourceSEOPerformance, Icon: "trending-up"},
		{Key: "improved_keywords", Label: "Improved Keywords", Source: enums.KPISourceSEOPerformance, Icon: "arrow-up"},
		{Key: "declined_keywords", Label: "Declined Keywords", Source: enums.KPISourceSEOPerformance, Icon: "arrow-down"},

		{Key: "brand_mentions", Label: "Brand Mentions", Source: enums.KPISourceAIVisibility, Icon: "message-circle"},
		{Key: "ai_visibility_score", Label: "AI Visibility Score", Source: enums.KPISourceAIVisibility, Icon: "eye"},
		{Key: "share_of_voice", Label: "Share of Voice", Source: enums.KPISourceAIVisibility, Icon: "pie-chart"},
		{Key: "avg_sentiment", Label: "Average Sentiment", Source: enums.KPISourceAIVisibility, Icon: "smile"},
	}

	charts := map[enums.SectionID][]Chart{
		enums.SectionWebAnalytics: {
			{Key: "users_over_time", Label: "Users Over Time", Description: "Daily users across the selected period"},
			{Key: "sessions_by_channel", Label: "Sessions by Channel", Description: "Session share per acquisition channel"},
			{Key: "engagement_trend", Label: "Engagement Trend", Description: "Engagement rate by day"},
		},
		enums.SectionSEOPerformance: {
			{Key: "rank_distribution", Label: "Rank Distribution", Description: "Keywords bucketed by current position"},
			{Key: "rank_trend", Label: "Rank Trend", Description: "Average position by day"},
			{Key: "top_movers", Label: "Top Movers", Description: "Largest position gains and losses"},
		},
		enums.SectionAIVisibility: {
			{Key: "mentions_over_time", Label: "Mentions Over Time", Description: "Brand mentions per day across AI platforms"},
			{Key: "share_of_voice_trend", Label: "Share of Voice Trend", Description: "Share of answer-engine citations by day"},
			{Key: "sentiment_breakdown", Label: "Sentiment Breakdown", Description: "Mention sentiment distribution"},
		},
	}

	return NewCatalog(kpis, charts)
}
