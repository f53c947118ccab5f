package models

import (
	"time"

	"github.com/google/uuid"
)

// KeywordRanking is a single keyword position observation for a campaign.
type KeywordRanking struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID       uuid.UUID `gorm:"column:campaign_id;type:uuid;not null"`
	Keyword          string    `gorm:"column:keyword;not null"`
	Position         int       `gorm:"column:position;not null"`
	PreviousPosition *int      `gorm:"column:previous_position"`
	SearchVolume     int       `gorm:"column:search_volume;not null;default:0"`
	URL              string    `gorm:"column:url"`
	CapturedOn       time.Time `gorm:"column:captured_on;type:date;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
