package visibility

import (
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Selection is the mutable admin-session state behind the report editor.
// It is created full-default when an editing session opens or the active
// client switches, and preserved across date-range-only changes.
type Selection struct {
	KPIs             map[string]struct{}
	PerformanceKPIs  map[string]struct{}
	Sections         map[enums.SectionID]struct{}
	Charts           map[string]struct{}
	ShowChangePeriod map[enums.SectionID]bool
}

// NewSelection returns an empty selection. Charts intentionally start empty;
// the resolver treats an empty admin chart set as show-all until the first
// populate happens.
func NewSelection() *Selection {
	return &Selection{
		KPIs:             map[string]struct{}{},
		PerformanceKPIs:  map[string]struct{}{},
		Sections:         map[enums.SectionID]struct{}{},
		Charts:           map[string]struct{}{},
		ShowChangePeriod: map[enums.SectionID]bool{},
	}
}

// DefaultSelection returns the everything-enabled state a fresh editing
// session starts from.
func DefaultSelection(catalog *Catalog) *Selection {
	s := NewSelection()
	if catalog == nil {
		return s
	}
	for _, kpi := range catalog.KPIs() {
		s.KPIs[kpi.Key] = struct{}{}
		s.PerformanceKPIs[kpi.Key] = struct{}{}
	}
	for _, section := range enums.SectionIDs() {
		s.Sections[section] = struct{}{}
		for _, key := range catalog.SectionChartKeys(section) {
			s.Charts[key] = struct{}{}
		}
	}
	return s
}

// SetSection enables or disables a whole section. This is the only mutating
// operation: the section's owned KPI keys and chart keys move in and out of
// the KPI/chart sets in the same call, so a flipped section never leaves
// orphaned children behind. Finer-grained toggles happen directly on the sets
// afterward.
func (s *Selection) SetSection(catalog *Catalog, section enums.SectionID, enabled bool) {
	if s == nil || catalog == nil {
		return
	}
	canonical := section.Canonical()
	if !canonical.IsValid() {
		return
	}

	kpiKeys := catalog.SectionKPIKeys(canonical)
	chartKeys := catalog.SectionChartKeys(canonical)

	if enabled {
		s.Sections[canonical] = struct{}{}
		for _, key := range kpiKeys {
			s.KPIs[key] = struct{}{}
		}
		for _, key := range chartKeys {
			s.Charts[key] = struct{}{}
		}
		return
	}

	delete(s.Sections, canonical)
	for _, key := range kpiKeys {
		delete(s.KPIs, key)
	}
	for _, key := range chartKeys {
		delete(s.Charts, key)
	}
}

// ToggleKPI flips a single KPI key in the summary set.
func (s *Selection) ToggleKPI(key string, enabled bool) {
	if s == nil {
		return
	}
	if enabled {
		s.KPIs[key] = struct{}{}
		return
	}
	delete(s.KPIs, key)
}

// TogglePerformanceKPI flips a single KPI key in the all-performance-metrics set.
func (s *Selection) TogglePerformanceKPI(key string, enabled bool) {
	if s == nil {
		return
	}
	if enabled {
		s.PerformanceKPIs[key] = struct{}{}
		return
	}
	delete(s.PerformanceKPIs, key)
}

// ToggleChart flips a single chart key.
func (s *Selection) ToggleChart(key string, enabled bool) {
	if s == nil {
		return
	}
	if enabled {
		s.Charts[key] = struct{}{}
		return
	}
	delete(s.Charts, key)
}

// SetChangePeriod records whether period-over-period deltas render for a section.
func (s *Selection) SetChangePeriod(section enums.SectionID, show bool) {
	if s == nil {
		return
	}
	s.ShowChangePeriod[section.Canonical()] = show
}
