package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

type campaignsRepository interface {
	List(ctx context.Context, opts listQuery) ([]models.Campaign, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	LatestRankings(ctx context.Context, opts rankingQuery) ([]models.KeywordRanking, int64, error)
	Summaries(ctx context.Context, campaignID uuid.UUID, from, to *time.Time) ([]models.RankingSummary, error)
}

// Service exposes SEO campaign and ranking read semantics.
type Service interface {
	ListCampaigns(ctx context.Context, params ListParams) (*pagination.Page[CampaignItem], error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*CampaignItem, error)
	CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CampaignItem, error)
	ListRankings(ctx context.Context, params RankingParams) (*pagination.Page[RankingItem], error)
	ListSummaries(ctx context.Context, params SummaryParams) ([]SummaryItem, error)
}

type service struct {
	repo campaignsRepository
}

// NewService builds a campaign service backed by the provided repository.
func NewService(repo campaignsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaigns repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCampaigns(ctx context.Context, params ListParams) (*pagination.Page[CampaignItem], error) {
	normalized := params.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		clientID: params.ClientID,
		status:   params.Status,
		offset:   normalized.Offset(),
		limit:    normalized.Limit(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing campaigns")
	}

	items := make([]CampaignItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toCampaignItem(row))
	}
	page := pagination.NewPage(items, total)
	return &page, nil
}

func (s *service) GetCampaign(ctx context.Context, id uuid.UUID) (*CampaignItem, error) {
	row, err := s.findCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	item := toCampaignItem(*row)
	return &item, nil
}

func (s *service) CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CampaignItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign name is required")
	}
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}

	engine := input.SearchEngine
	if engine == "" {
		engine = enums.SearchEngineGoogle
	}
	if !engine.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid search engine")
	}

	locales := input.Locales
	if locales == nil {
		locales = []string{}
	}

	row, err := s.repo.Create(ctx, &models.Campaign{
		ClientID:     input.ClientID,
		Name:         name,
		SearchEngine: engine,
		Locales:      pq.StringArray(locales),
		Status:       enums.CampaignStatusActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating campaign")
	}
	item := toCampaignItem(*row)
	return &item, nil
}

func (s *service) ListRankings(ctx context.Context, params RankingParams) (*pagination.Page[RankingItem], error) {
	if _, err := s.findCampaign(ctx, params.CampaignID); err != nil {
		return nil, err
	}

	normalized := params.Normalize()
	rows, total, err := s.repo.LatestRankings(ctx, rankingQuery{
		campaignID: params.CampaignID,
		search:     params.Search,
		offset:     normalized.Offset(),
		limit:      normalized.Limit(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing rankings")
	}

	items := make([]RankingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toRankingItem(row))
	}
	page := pagination.NewPage(items, total)
	return &page, nil
}

func (s *service) ListSummaries(ctx context.Context, params SummaryParams) ([]SummaryItem, error) {
	if _, err := s.findCampaign(ctx, params.CampaignID); err != nil {
		return nil, err
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}

	rows, err := s.repo.Summaries(ctx, params.CampaignID, params.From, params.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing ranking summaries")
	}

	items := make([]SummaryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSummaryItem(row))
	}
	return items, nil
}

func (s *service) findCampaign(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching campaign")
	}
	return row, nil
}
