package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/dashlinks"
	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

type linkCreateRequest struct {
	BrandID          *string                         `json:"brand_id"`
	StartDate        string                          `json:"start_date" validate:"required"`
	EndDate          string                          `json:"end_date" validate:"required"`
	ExpiresAt        *time.Time                      `json:"expires_at"`
	ExecutiveSummary *string                         `json:"executive_summary"`
	KPISelection     *visibility.KPISelectionPayload `json:"kpi_selection"`
}

// linkUpdateRequest distinguishes an absent kpi_selection key from an
// explicit null via the raw-presence flag set during decoding.
type linkUpdateRequest struct {
	StartDate        *string                         `json:"start_date"`
	EndDate          *string                         `json:"end_date"`
	Enabled          *bool                           `json:"enabled"`
	ExpiresAt        *time.Time                      `json:"expires_at"`
	ClearExpiry      bool                            `json:"clear_expiry"`
	ExecutiveSummary *string                         `json:"executive_summary"`
	KPISelection     *visibility.KPISelectionPayload `json:"kpi_selection"`
	SetKPISelection  bool                            `json:"set_kpi_selection"`
}

func LinkList(svc dashlinks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListLinks(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func LinkCreate(svc dashlinks.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload linkCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dateRange, err := types.ParseDateRange(payload.StartDate, payload.EndDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date range"))
			return
		}

		input := dashlinks.CreateInput{
			Range:            dateRange,
			ExpiresAt:        payload.ExpiresAt,
			ExecutiveSummary: payload.ExecutiveSummary,
			KPISelection:     payload.KPISelection,
		}
		if payload.BrandID != nil {
			brandID, err := uuid.Parse(strings.TrimSpace(*payload.BrandID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid brand_id"))
				return
			}
			input.BrandID = &brandID
		}

		item, err := svc.CreateLink(r.Context(), clientID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emitEntityAudit(r, audit, enums.AuditActionLinkCreated, "dashboard_link", item.ID)
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func LinkUpdate(svc dashlinks.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "linkId"), "linkId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload linkUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := dashlinks.UpdateInput{
			Enabled:          payload.Enabled,
			ExpiresAt:        payload.ExpiresAt,
			ClearExpiry:      payload.ClearExpiry,
			ExecutiveSummary: payload.ExecutiveSummary,
			SetKPISelection:  payload.SetKPISelection,
			KPISelection:     payload.KPISelection,
		}
		if payload.StartDate != nil || payload.EndDate != nil {
			if payload.StartDate == nil || payload.EndDate == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "start_date and end_date must be updated together"))
				return
			}
			dateRange, err := types.ParseDateRange(*payload.StartDate, *payload.EndDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date range"))
				return
			}
			input.Range = &dateRange
		}

		item, err := svc.UpdateLink(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emitEntityAudit(r, audit, enums.AuditActionLinkUpdated, "dashboard_link", item.ID)
		responses.WriteSuccess(w, item)
	}
}

func LinkDelete(svc dashlinks.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "linkId"), "linkId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLink(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emitEntityAudit(r, audit, enums.AuditActionLinkDeleted, "dashboard_link", id)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
