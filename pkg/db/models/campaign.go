package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Campaign is an SEO keyword-tracking campaign for a client.
type Campaign struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID     uuid.UUID            `gorm:"column:client_id;type:uuid;not null"`
	Name         string               `gorm:"column:name;not null"`
	SearchEngine enums.SearchEngine   `gorm:"column:search_engine;type:search_engine;not null;default:'google'"`
	Locales      pq.StringArray       `gorm:"column:locales;type:text[];default:ARRAY[]::text[]"`
	Status       enums.CampaignStatus `gorm:"column:status;type:campaign_status;not null;default:'active'"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
