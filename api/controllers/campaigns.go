package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/api/responses"
	"github.com/agencypulse/reporting-backend/api/validators"
	"github.com/agencypulse/reporting-backend/internal/campaigns"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

type campaignCreateRequest struct {
	ClientID     string   `json:"client_id" validate:"required"`
	Name         string   `json:"name" validate:"required,min=1,max=200"`
	SearchEngine string   `json:"search_engine"`
	Locales      []string `json:"locales" validate:"omitempty,dive,min=2,max=20"`
}

func (req campaignCreateRequest) toInput() (campaigns.CreateCampaignInput, error) {
	clientID, err := uuid.Parse(strings.TrimSpace(req.ClientID))
	if err != nil {
		return campaigns.CreateCampaignInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid client_id")
	}

	input := campaigns.CreateCampaignInput{
		ClientID: clientID,
		Name:     strings.TrimSpace(req.Name),
		Locales:  req.Locales,
	}
	if raw := strings.TrimSpace(req.SearchEngine); raw != "" {
		engine, err := enums.ParseSearchEngine(raw)
		if err != nil {
			return campaigns.CreateCampaignInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid search engine")
		}
		input.SearchEngine = engine
	}
	return input, nil
}

func CampaignList(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := campaigns.ListParams{}

		clientID, err := validators.ParseQueryUUID(r, "client_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.ClientID = clientID

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseCampaignStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid campaign status"))
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

		result, err := svc.ListCampaigns(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CampaignDetail(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(chi.URLParam(r, "campaignId"), "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetCampaign(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CampaignCreate(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload campaignCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateCampaign(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func RankingList(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := validators.PathUUID(chi.URLParam(r, "campaignId"), "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := campaigns.RankingParams{
			CampaignID: campaignID,
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		}
		page, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Params = page

		result, err := svc.ListRankings(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SummaryList(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := validators.PathUUID(chi.URLParam(r, "campaignId"), "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := campaigns.SummaryParams{CampaignID: campaignID}
		if from, err := queryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			params.From = from
		}
		if to, err := queryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			params.To = to
		}

		result, err := svc.ListSummaries(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(types.DateFormat, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date").WithDetails(map[string]any{"field": key})
	}
	return &parsed, nil
}
