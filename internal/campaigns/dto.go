package campaigns

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

// ListParams filters the campaign listing.
type ListParams struct {
	ClientID *uuid.UUID
	Status   enums.CampaignStatus
	pagination.Params
}

// RankingParams filters keyword rankings for one campaign. Search matches the
// keyword column.
type RankingParams struct {
	CampaignID uuid.UUID
	Search     string
	pagination.Params
}

// SummaryParams bounds the per-day ranking summaries for one campaign.
type SummaryParams struct {
	CampaignID uuid.UUID
	From       *time.Time
	To         *time.Time
}

type CampaignItem struct {
	ID           uuid.UUID            `json:"id"`
	ClientID     uuid.UUID            `json:"client_id"`
	Name         string               `json:"name"`
	SearchEngine enums.SearchEngine   `json:"search_engine"`
	Locales      []string             `json:"locales"`
	Status       enums.CampaignStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type RankingItem struct {
	ID               uuid.UUID `json:"id"`
	Keyword          string    `json:"keyword"`
	Position         int       `json:"position"`
	PreviousPosition *int      `json:"previous_position,omitempty"`
	Change           *int      `json:"change,omitempty"`
	SearchVolume     int       `json:"search_volume"`
	URL              string    `json:"url,omitempty"`
	CapturedOn       string    `json:"captured_on"`
}

type SummaryItem struct {
	CapturedOn       string          `json:"captured_on"`
	AvgPosition      decimal.Decimal `json:"avg_position"`
	TrackedKeywords  int             `json:"tracked_keywords"`
	Top3Keywords     int             `json:"top3_keywords"`
	Top10Keywords    int             `json:"top10_keywords"`
	ImprovedKeywords int             `json:"improved_keywords"`
	DeclinedKeywords int             `json:"declined_keywords"`
}

// CreateCampaignInput holds validated fields for campaign creation.
type CreateCampaignInput struct {
	ClientID     uuid.UUID
	Name         string
	SearchEngine enums.SearchEngine
	Locales      []string
}

const dateFormat = "2006-01-02"

func toCampaignItem(m models.Campaign) CampaignItem {
	locales := []string(m.Locales)
	if locales == nil {
		locales = []string{}
	}
	return CampaignItem{
		ID:           m.ID,
		ClientID:     m.ClientID,
		Name:         m.Name,
		SearchEngine: m.SearchEngine,
		Locales:      locales,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toRankingItem(m models.KeywordRanking) RankingItem {
	item := RankingItem{
		ID:               m.ID,
		Keyword:          m.Keyword,
		Position:         m.Position,
		PreviousPosition: m.PreviousPosition,
		SearchVolume:     m.SearchVolume,
		URL:              m.URL,
		CapturedOn:       m.CapturedOn.Format(dateFormat),
	}
	if m.PreviousPosition != nil {
		// positive change = rank improved (moved toward position 1)
		change := *m.PreviousPosition - m.Position
		item.Change = &change
	}
	return item
}

func toSummaryItem(m models.RankingSummary) SummaryItem {
	return SummaryItem{
		CapturedOn:       m.CapturedOn.Format(dateFormat),
		AvgPosition:      m.AvgPosition,
		TrackedKeywords:  m.TrackedKeywords,
		Top3Keywords:     m.Top3Keywords,
		Top10Keywords:    m.Top10Keywords,
		ImprovedKeywords: m.ImprovedKeywords,
		DeclinedKeywords: m.DeclinedKeywords,
	}
}
