package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/api/middleware"
	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/auditlogs"
	"github.com/agencypulse/reporting-backend/internal/clients"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

type clientCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Website  string `json:"website" validate:"omitempty,max=500"`
	Industry string `json:"industry" validate:"omitempty,max=200"`
}

type clientUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Website  *string `json:"website" validate:"omitempty,max=500"`
	Industry *string `json:"industry" validate:"omitempty,max=200"`
	Status   *string `json:"status"`
}

type brandCreateRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Domain string `json:"domain" validate:"omitempty,max=500"`
}

func ClientList(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := clients.ListParams{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseClientStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid client status"))
				return
			}
			params.Status = status
		}
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Params = page

		result, err := svc.ListClients(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ClientDetail(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetClient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ClientCreate(svc clients.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload clientCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateClient(r.Context(), clients.CreateClientInput{
			Name:     strings.TrimSpace(payload.Name),
			Website:  strings.TrimSpace(payload.Website),
			Industry: strings.TrimSpace(payload.Industry),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emitEntityAudit(r, audit, enums.AuditActionClientCreated, "client", item.ID)
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ClientUpdate(svc clients.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload clientUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := clients.UpdateClientInput{
			Name:     payload.Name,
			Website:  payload.Website,
			Industry: payload.Industry,
		}
		if payload.Status != nil {
			status, err := enums.ParseClientStatus(strings.TrimSpace(*payload.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid client status"))
				return
			}
			input.Status = &status
		}

		item, err := svc.UpdateClient(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emitEntityAudit(r, audit, enums.AuditActionClientUpdated, "client", item.ID)
		responses.WriteSuccess(w, item)
	}
}

func ClientDelete(svc clients.Service, audit *auditlogs.Publisher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteClient(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		emitEntityAudit(r, audit, enums.AuditActionClientDeleted, "client", id)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func BrandList(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brands, err := svc.ListBrands(r.Context(), clientID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}

func BrandCreate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := validators.PathUUID(chi.URLParam(r, "clientId"), "clientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload brandCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateBrand(r.Context(), clientID, clients.CreateBrandInput{
			Name:   strings.TrimSpace(payload.Name),
			Domain: strings.TrimSpace(payload.Domain),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func paginationFromQuery(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return pagination.Params{}, err
	}
	perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, PerPage: perPage}, nil
}

// emitEntityAudit stamps the acting operator from the request context onto an
// entity-scoped audit event.
func emitEntityAudit(r *http.Request, audit *auditlogs.Publisher, action enums.AuditAction, entityType string, entityID uuid.UUID) {
	event := auditlogs.Event{
		Action:     string(action),
		Status:     string(enums.AuditStatusSuccess),
		EntityType: entityType,
		EntityID:   &entityID,
	}
	if raw := middleware.OperatorIDFromContext(r.Context()); raw != "" {
		if actorID, err := uuid.Parse(raw); err == nil {
			event.ActorID = &actorID
		}
	}
	audit.Emit(r.Context(), event)
}
