package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

func AuditLogList(svc auditlogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := auditlogs.ListParams{}

		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action"))
				return
			}
			params.Action = action
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAuditStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit status"))
				return
			}
			params.Status = status
		}

		actorID, err := validators.ParseQueryUUID(r, "actor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.ActorID = actorID

		if from, err := queryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			params.From = from
		}
		if to, err := queryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if to != nil {
			// Make the bound inclusive of the whole day.
			end := to.Add(24*time.Hour - time.Nanosecond)
			params.To = &end
		}

		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Params = page

		result, err := svc.ListLogs(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
