package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/internal/dashlinks"
	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

// publicKPIsResponse frames the filtered sections with the link's own report
// metadata. Nothing operator-facing leaves this handler.
type publicKPIsResponse struct {
	Slug             string                     `json:"slug"`
	StartDate        string                     `json:"start_date"`
	EndDate          string                     `json:"end_date"`
	ExecutiveSummary *string                    `json:"executive_summary,omitempty"`
	Sections         []dashboard.SectionPayload `json:"sections"`
}

// PublicLinkDetail hydrates a slug for an anonymous viewer: the report frame
// plus the frozen selection snapshot the dashboard renders against. Counts as
// the report view for auditing.
func PublicLinkDetail(links dashlinks.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))

		link, err := links.GetPublicLink(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, _ := json.Marshal(map[string]string{"slug": link.Slug})
		audit.Emit(r.Context(), auditlogs.Event{
			Action: string(enums.AuditActionReportViewed),
			Status: string(enums.AuditStatusSuccess),
			Detail: detail,
		})

		responses.WriteSuccess(w, link)
	}
}

// publicChartsResponse frames the filtered chart sections for the slug view.
type publicChartsResponse struct {
	Slug      string                          `json:"slug"`
	StartDate string                          `json:"start_date"`
	EndDate   string                          `json:"end_date"`
	Sections  []dashboard.ChartSectionPayload `json:"sections"`
}

// PublicDashboardKPIs composes the link's frozen period and projects the
// payload through the link's selection snapshot. The snapshot is fixed at
// link save time, so concurrent selection edits never change what a viewer
// mid-session sees; hidden KPIs and sections are never serialized.
func PublicDashboardKPIs(links dashlinks.Service, dash dashboard.Service, catalog *visibility.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, req, err := publicLinkRequest(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := dash.ComposeKPIs(r.Context(), dashboard.ModePublic, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolver := visibility.NewPublicResolver(catalog, visibility.NewSnapshot(link.KPISelection))
		filtered := dashboard.FilterPayload(payload, resolver)

		responses.WriteSuccess(w, publicKPIsResponse{
			Slug:             link.Slug,
			StartDate:        filtered.StartDate,
			EndDate:          filtered.EndDate,
			ExecutiveSummary: link.ExecutiveSummary,
			Sections:         filtered.Sections,
		})
	}
}

// PublicDashboardCharts serves the chart series behind the slug view, gated by
// the same frozen selection snapshot as the KPI endpoint.
func PublicDashboardCharts(links dashlinks.Service, dash dashboard.Service, catalog *visibility.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, req, err := publicLinkRequest(r, links)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := dash.ComposeCharts(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolver := visibility.NewPublicResolver(catalog, visibility.NewSnapshot(link.KPISelection))
		filtered := dashboard.FilterCharts(payload, resolver)

		responses.WriteSuccess(w, publicChartsResponse{
			Slug:      link.Slug,
			StartDate: filtered.StartDate,
			EndDate:   filtered.EndDate,
			Sections:  filtered.Sections,
		})
	}
}

// publicLinkRequest resolves the slug and rebuilds the composition request
// from the link's frozen scope and period.
func publicLinkRequest(r *http.Request, links dashlinks.Service) (*dashlinks.PublicLink, dashboard.Request, error) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))

	link, err := links.GetPublicLink(r.Context(), slug)
	if err != nil {
		return nil, dashboard.Request{}, err
	}

	dateRange, err := types.ParseDateRange(link.StartDate, link.EndDate)
	if err != nil {
		return nil, dashboard.Request{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding link date range")
	}

	clientID := link.ClientID
	return link, dashboard.Request{
		ClientID: &clientID,
		BrandID:  link.BrandID,
		Range:    dateRange,
	}, nil
}
