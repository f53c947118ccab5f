package controllers

import (
	"net/http"

	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

// DashboardKPIs serves the operator console's full composed payload. No
// visibility filtering applies here; operators always see everything.
func DashboardKPIs(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := dashboardRequestFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := svc.ComposeKPIs(r.Context(), dashboard.ModeAdmin, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

// DashboardCharts serves the composed chart series for the console's section
// views, unfiltered like DashboardKPIs.
func DashboardCharts(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := dashboardRequestFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := svc.ComposeCharts(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

// DashboardCatalog lists every KPI and chart per section, for the link
// builder's selection UI.
func DashboardCatalog(catalog *visibility.Catalog) http.HandlerFunc {
	type sectionEntry struct {
		ID     enums.SectionID    `json:"id"`
		KPIs   []visibility.KPI   `json:"kpis"`
		Charts []visibility.Chart `json:"charts"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sections := make([]sectionEntry, 0, 4)
		for _, section := range enums.SectionIDs() {
			entry := sectionEntry{
				ID:     section,
				KPIs:   []visibility.KPI{},
				Charts: catalog.SectionCharts(section),
			}
			for _, key := range catalog.SectionKPIKeys(section) {
				if kpi, ok := catalog.KPI(key); ok {
					entry.KPIs = append(entry.KPIs, kpi)
				}
			}
			if entry.Charts == nil {
				entry.Charts = []visibility.Chart{}
			}
			sections = append(sections, entry)
		}
		responses.WriteSuccess(w, map[string]any{"sections": sections})
	}
}

func dashboardRequestFromQuery(r *http.Request) (dashboard.Request, error) {
	clientID, err := validators.ParseQueryUUID(r, "client_id")
	if err != nil {
		return dashboard.Request{}, err
	}
	brandID, err := validators.ParseQueryUUID(r, "brand_id")
	if err != nil {
		return dashboard.Request{}, err
	}
	if clientID == nil && brandID == nil {
		return dashboard.Request{}, pkgerrors.New(pkgerrors.CodeValidation, "client_id or brand_id is required")
	}

	dateRange, err := validators.ParseQueryDateRange(r, "start", "end")
	if err != nil {
		return dashboard.Request{}, err
	}

	return dashboard.Request{
		ClientID: clientID,
		BrandID:  brandID,
		Range:    dateRange,
	}, nil
}
