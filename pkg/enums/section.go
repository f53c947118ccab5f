package enums

import "fmt"

// SectionID names one of the dashboard's fixed report sections.
type SectionID string

const (
	SectionWebAnalytics          SectionID = "web_analytics"
	SectionSEOPerformance        SectionID = "seo_performance"
	SectionAIVisibility          SectionID = "ai_visibility"
	SectionAllPerformanceMetrics SectionID = "all_performance_metrics"

	// Legacy sub-section ids that older saved links may still reference.
	// They have no independent visibility flag and always resolve through
	// SectionAIVisibility.
	SectionBrandAnalytics    SectionID = "brand_analytics"
	SectionAdvancedAnalytics SectionID = "advanced_analytics"
)

var validSectionIDs = []SectionID{
	SectionWebAnalytics,
	SectionSEOPerformance,
	SectionAIVisibility,
	SectionAllPerformanceMetrics,
}

// String implements fmt.Stringer.
func (s SectionID) String() string {
	return string(s)
}

// Canonical maps legacy alias ids onto the section that owns their visibility.
func (s SectionID) Canonical() SectionID {
	switch s {
	case SectionBrandAnalytics, SectionAdvancedAnalytics:
		return SectionAIVisibility
	default:
		return s
	}
}

// IsValid reports whether the canonical form names a real section.
func (s SectionID) IsValid() bool {
	canonical := s.Canonical()
	for _, candidate := range validSectionIDs {
		if candidate == canonical {
			return true
		}
	}
	return false
}

// ParseSectionID converts raw input into SectionID, accepting legacy aliases.
func ParseSectionID(value string) (SectionID, error) {
	s := SectionID(value)
	if s.IsValid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid section id %q", value)
}

// SectionIDs returns the four canonical sections in display order.
func SectionIDs() []SectionID {
	out := make([]SectionID, len(validSectionIDs))
	copy(out, validSectionIDs)
	return out
}
