package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RankingSummary is a per-day rollup of a campaign's keyword rankings.
type RankingSummary struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID       uuid.UUID       `gorm:"column:campaign_id;type:uuid;not null"`
	CapturedOn       time.Time       `gorm:"column:captured_on;type:date;not null"`
	AvgPosition      decimal.Decimal `gorm:"column:avg_position;type:numeric(6,2);not null"`
	TrackedKeywords  int             `gorm:"column:tracked_keywords;not null;default:0"`
	Top3Keywords     int             `gorm:"column:top3_keywords;not null;default:0"`
	Top10Keywords    int             `gorm:"column:top10_keywords;not null;default:0"`
	ImprovedKeywords int             `gorm:"column:improved_keywords;not null;default:0"`
	DeclinedKeywords int             `gorm:"column:declined_keywords;not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
