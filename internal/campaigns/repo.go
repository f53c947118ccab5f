package campaigns

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Repository exposes campaign and ranking persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a campaign repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	clientID *uuid.UUID
	status   enums.CampaignStatus
	offset   int
	limit    int
}

type rankingQuery struct {
	campaignID uuid.UUID
	search     string
	offset     int
	limit      int
}

// List returns a page of campaigns plus the unpaginated match count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Campaign, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Campaign{})

	if opts.clientID != nil {
		query = query.Where("client_id = ?", *opts.clientID)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Campaign
	err := query.
		Order("created_at DESC").
		Offset(opts.offset).
		Limit(opts.limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID fetches one campaign row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var row models.Campaign
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new campaign row.
func (r *Repository) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// LatestRankings returns the most recent observation per keyword for a
// campaign, filtered by search term, with the unpaginated match count.
func (r *Repository) LatestRankings(ctx context.Context, opts rankingQuery) ([]models.KeywordRanking, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.KeywordRanking{}).
		Where("campaign_id = ?", opts.campaignID).
		Where(`captured_on = (
			SELECT MAX(kr2.captured_on) FROM keyword_rankings kr2
			WHERE kr2.campaign_id = keyword_rankings.campaign_id
			AND kr2.keyword = keyword_rankings.keyword
		)`)

	if term := strings.TrimSpace(opts.search); term != "" {
		base = base.Where("LOWER(keyword) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.KeywordRanking
	err := base.
		Order("position ASC").Order("keyword ASC").
		Offset(opts.offset).
		Limit(opts.limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Summaries returns per-day rollups for a campaign, oldest first.
func (r *Repository) Summaries(ctx context.Context, campaignID uuid.UUID, from, to *time.Time) ([]models.RankingSummary, error) {
	query := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID)
	if from != nil {
		query = query.Where("captured_on >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		query = query.Where("captured_on <= ?", to.Format("2006-01-02"))
	}

	var rows []models.RankingSummary
	if err := query.Order("captured_on ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
