package enums

import "fmt"

// KPISource identifies which analytics pipeline produces a KPI.
type KPISource string

const (
	KPISourceWebAnalytics   KPISource = "web_analytics"
	KPISourceSEOPerformance KPISource = "seo_performance"
	KPISourceAIVisibility   KPISource = "ai_visibility"
)

var validKPISources = []KPISource{
	KPISourceWebAnalytics,
	KPISourceSEOPerformance,
	KPISourceAIVisibility,
}

// String implements fmt.Stringer.
func (s KPISource) String() string {
	return string(s)
}

// IsValid reports whether the value matches a known KPI source.
func (s KPISource) IsValid() bool {
	for _, candidate := range validKPISources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseKPISource converts raw input into KPISource.
func ParseKPISource(value string) (KPISource, error) {
	for _, candidate := range validKPISources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kpi source %q", value)
}
