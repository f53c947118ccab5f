package dashboard

import (
	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

var sectionLabels = map[enums.SectionID]string{
	enums.SectionWebAnalytics:          "Web Analytics",
	enums.SectionSEOPerformance:        "SEO Performance",
	enums.SectionAIVisibility:          "AI Visibility",
	enums.SectionAllPerformanceMetrics: "All Performance Metrics",
}

var sectionSources = map[enums.SectionID]enums.KPISource{
	enums.SectionWebAnalytics:   enums.KPISourceWebAnalytics,
	enums.SectionSEOPerformance: enums.KPISourceSEOPerformance,
	enums.SectionAIVisibility:   enums.KPISourceAIVisibility,
}

// SectionPayload is one rendered dashboard section. A visible section with no
// surviving KPIs still renders its header, so KPIs may be empty.
type SectionPayload struct {
	ID               enums.SectionID `json:"id"`
	Label            string          `json:"label"`
	KPIs             []KPIValue      `json:"kpis"`
	ShowChangePeriod bool            `json:"show_change_period"`
}

// FilteredPayload is a composed dashboard after visibility resolution. Hidden
// sections and KPIs are absent, not blanked.
type FilteredPayload struct {
	SubjectID string           `json:"subject_id"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Sections  []SectionPayload `json:"sections"`
}

// FilterPayload projects a composed payload through the resolver. It serves
// both admin previews and the public slug view; the resolver's mode decides
// the semantics.
func FilterPayload(payload *Payload, resolver *visibility.Resolver) *FilteredPayload {
	out := &FilteredPayload{
		SubjectID: payload.SubjectID,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		Sections:  []SectionPayload{},
	}
	bySource := payload.KPIsBySource()

	for _, section := range enums.SectionIDs() {
		if !resolver.SectionVisible(section) {
			continue
		}
		sp := SectionPayload{
			ID:               section,
			Label:            sectionLabels[section],
			KPIs:             []KPIValue{},
			ShowChangePeriod: resolver.ChangePeriodVisible(section),
		}

		if section == enums.SectionAllPerformanceMetrics {
			for _, source := range []enums.KPISource{
				enums.KPISourceWebAnalytics,
				enums.KPISourceSEOPerformance,
				enums.KPISourceAIVisibility,
			} {
				for _, kpi := range bySource[source] {
					if resolver.PerformanceKPIVisible(kpi.Key) {
						sp.KPIs = append(sp.KPIs, stripChange(kpi, sp.ShowChangePeriod))
					}
				}
			}
		} else {
			for _, kpi := range bySource[sectionSources[section]] {
				if resolver.KPIVisible(kpi.Key) {
					sp.KPIs = append(sp.KPIs, stripChange(kpi, sp.ShowChangePeriod))
				}
			}
		}

		out.Sections = append(out.Sections, sp)
	}
	return out
}

// ChartSectionPayload is one section's rendered charts.
type ChartSectionPayload struct {
	ID     enums.SectionID `json:"id"`
	Label  string          `json:"label"`
	Charts []ChartSeries   `json:"charts"`
}

// FilteredCharts is a composed chart set after visibility resolution.
type FilteredCharts struct {
	SubjectID string                `json:"subject_id"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Sections  []ChartSectionPayload `json:"sections"`
}

// FilterCharts projects composed charts through the resolver. Unlike the KPI
// view, a section whose charts are all hidden is dropped entirely: there is no
// header-only chart section to render.
func FilterCharts(payload *ChartsPayload, resolver *visibility.Resolver) *FilteredCharts {
	out := &FilteredCharts{
		SubjectID: payload.SubjectID,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		Sections:  []ChartSectionPayload{},
	}
	bySource := payload.ChartsBySource()

	for _, section := range enums.SectionIDs() {
		source, owns := sectionSources[section]
		if !owns {
			continue
		}
		if !resolver.SectionVisible(section) || !resolver.SectionHasVisibleCharts(section) {
			continue
		}
		sp := ChartSectionPayload{
			ID:     section,
			Label:  sectionLabels[section],
			Charts: []ChartSeries{},
		}
		for _, chart := range bySource[source] {
			if resolver.ChartVisible(chart.Key) {
				sp.Charts = append(sp.Charts, chart)
			}
		}
		out.Sections = append(out.Sections, sp)
	}
	return out
}

// stripChange drops the prior-period comparison when the section hides it, so
// hidden deltas never reach the wire.
func stripChange(kpi KPIValue, showChange bool) KPIValue {
	if showChange {
		return kpi
	}
	kpi.PreviousValue = nil
	kpi.ChangePct = nil
	return kpi
}
