package visibility

import (
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Resolver answers whether a KPI, section, or chart renders under the current
// mode. Pure queries over the catalog plus either the admin selection (edit
// sessions) or the public snapshot (anonymous report views). Unknown keys are
// simply not visible; no operation errors.
type Resolver struct {
	catalog    *Catalog
	publicMode bool
	admin      *Selection
	snapshot   *Snapshot
}

// NewAdminResolver builds a resolver for an authenticated editing session.
func NewAdminResolver(catalog *Catalog, selection *Selection) *Resolver {
	if selection == nil {
		selection = NewSelection()
	}
	return &Resolver{catalog: catalog, admin: selection}
}

// NewPublicResolver builds a resolver for an anonymous report view.
func NewPublicResolver(catalog *Catalog, snapshot *Snapshot) *Resolver {
	if snapshot == nil {
		snapshot = NewSnapshot(nil)
	}
	return &Resolver{catalog: catalog, publicMode: true, snapshot: snapshot}
}

// PublicMode reports whether the resolver serves an anonymous viewer.
func (r *Resolver) PublicMode() bool {
	return r.publicMode
}

// Catalog exposes the static registry this resolver runs against.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// SectionVisible reports whether a section renders. Legacy aliases resolve
// through ai_visibility. Operators always see every section; section toggles
// only shape what a public viewer gets.
func (r *Resolver) SectionVisible(section enums.SectionID) bool {
	canonical := section.Canonical()
	if !canonical.IsValid() {
		return false
	}
	if !r.publicMode {
		return true
	}
	return r.snapshot.sections.visible(canonical.String())
}

// KPIVisible reports whether a KPI renders in the summary strip.
func (r *Resolver) KPIVisible(key string) bool {
	if _, ok := r.catalog.KPI(key); !ok {
		return false
	}
	if r.publicMode {
		return r.snapshot.kpis.visible(key)
	}
	_, selected := r.admin.KPIs[key]
	return selected
}

// PerformanceKPIVisible reports whether a KPI renders inside the
// all-performance-metrics section, which is selected independently of the
// summary strip.
func (r *Resolver) PerformanceKPIVisible(key string) bool {
	if _, ok := r.catalog.KPI(key); !ok {
		return false
	}
	if r.publicMode {
		return r.snapshot.performanceKPIs.visible(key)
	}
	_, selected := r.admin.PerformanceKPIs[key]
	return selected
}

// ChartVisible reports whether a chart renders. Admin mode falls back to
// show-all while the chart set is empty: the initial session state starts
// empty before the first populate, and that must not blank every chart. Once
// any chart is selected, pure membership applies. Public mode is the usual
// tri-state.
func (r *Resolver) ChartVisible(key string) bool {
	if !r.chartKnown(key) {
		return false
	}
	if r.publicMode {
		return r.snapshot.charts.visible(key)
	}
	if len(r.admin.Charts) == 0 {
		return true
	}
	_, selected := r.admin.Charts[key]
	return selected
}

// SectionHasVisibleKPIs reports whether at least one KPI owned by the section
// passes KPIVisible. ANY-semantics: a section with a single enabled KPI still
// renders its header.
func (r *Resolver) SectionHasVisibleKPIs(section enums.SectionID) bool {
	for _, key := range r.catalog.SectionKPIKeys(section) {
		if r.KPIVisible(key) {
			return true
		}
	}
	return false
}

// SectionHasVisibleCharts reports whether at least one chart owned by the
// section passes ChartVisible.
func (r *Resolver) SectionHasVisibleCharts(section enums.SectionID) bool {
	for _, key := range r.catalog.SectionChartKeys(section) {
		if r.ChartVisible(key) {
			return true
		}
	}
	return false
}

// ChangePeriodVisible reports whether period-over-period deltas render for a
// section. Default is show; only an explicitly saved false hides them.
func (r *Resolver) ChangePeriodVisible(section enums.SectionID) bool {
	canonical := section.Canonical()
	if r.publicMode {
		return r.snapshot.changePeriodVisible(canonical)
	}
	if r.admin == nil || r.admin.ShowChangePeriod == nil {
		return true
	}
	value, ok := r.admin.ShowChangePeriod[canonical]
	if !ok {
		return true
	}
	return value
}

func (r *Resolver) chartKnown(key string) bool {
	for _, section := range enums.SectionIDs() {
		for _, chartKey := range r.catalog.SectionChartKeys(section) {
			if chartKey == key {
				return true
			}
		}
	}
	return false
}
