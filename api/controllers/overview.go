package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/api/middleware"
	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/dashboard"
	"github.com/agencypulse/reporting-backend/internal/overview"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

type overviewRequest struct {
	ClientID  *string `json:"client_id"`
	BrandID   *string `json:"brand_id"`
	StartDate string  `json:"start_date" validate:"required"`
	EndDate   string  `json:"end_date" validate:"required"`
}

// OverviewGenerate composes the requested period and asks the summarizer for
// an executive summary. The composed payload is not cached here; the
// dashboard service's cache already absorbs repeated composes.
func OverviewGenerate(dash dashboard.Service, gen overview.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload overviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := payload.toRequest()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		composed, err := dash.ComposeKPIs(r.Context(), dashboard.ModeAdmin, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := gen.GenerateOverview(r.Context(), composed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, _ := json.Marshal(map[string]string{"subject_id": composed.SubjectID})
		event := auditlogs.Event{
			Action: string(enums.AuditActionOverviewGenerated),
			Status: string(enums.AuditStatusSuccess),
			Detail: detail,
		}
		if raw := middleware.OperatorIDFromContext(r.Context()); raw != "" {
			if actorID, err := uuid.Parse(raw); err == nil {
				event.ActorID = &actorID
			}
		}
		audit.Emit(r.Context(), event)

		responses.WriteSuccess(w, result)
	}
}

func (req overviewRequest) toRequest() (dashboard.Request, error) {
	if req.ClientID == nil && req.BrandID == nil {
		return dashboard.Request{}, pkgerrors.New(pkgerrors.CodeValidation, "client_id or brand_id is required")
	}

	out := dashboard.Request{}
	if req.ClientID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*req.ClientID))
		if err != nil {
			return dashboard.Request{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid client_id")
		}
		out.ClientID = &id
	}
	if req.BrandID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*req.BrandID))
		if err != nil {
			return dashboard.Request{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid brand_id")
		}
		out.BrandID = &id
	}

	dateRange, err := types.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return dashboard.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date range")
	}
	out.Range = dateRange
	return out, nil
}
