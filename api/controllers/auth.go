package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/agencypulse/reporting-backend/api/middleware"
	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/auth"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func AuthLogin(svc auth.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload auth.LoginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload, clientIP(r))
		if err != nil {
			status := string(enums.AuditStatusFailure)
			audit.Emit(r.Context(), auditlogs.Event{
				ActorEmail: strings.ToLower(strings.TrimSpace(payload.Email)),
				Action:     string(enums.AuditActionLogin),
				Status:     status,
			})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audit.Emit(r.Context(), auditlogs.Event{
			ActorID:    &result.Operator.ID,
			ActorEmail: result.Operator.Email,
			Action:     string(enums.AuditActionLogin),
			Status:     string(enums.AuditStatusSuccess),
		})
		responses.WriteSuccess(w, result)
	}
}

func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pair, err := svc.Refresh(r.Context(), payload.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pair)
	}
}

func AuthLogout(svc auth.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operatorID, err := validators.PathUUID(middleware.OperatorIDFromContext(r.Context()), "operator_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "operator context missing"))
			return
		}

		if err := svc.Logout(r.Context(), operatorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audit.Emit(r.Context(), auditlogs.Event{
			ActorID: &operatorID,
			Action:  string(enums.AuditActionLogout),
			Status:  string(enums.AuditStatusSuccess),
		})
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
