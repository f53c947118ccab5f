package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// AIMention is one answer-engine probe result for a brand.
type AIMention struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandID    uuid.UUID        `gorm:"column:brand_id;type:uuid;not null"`
	Platform   enums.AIPlatform `gorm:"column:platform;type:ai_platform;not null"`
	Query      string           `gorm:"column:query;not null"`
	Mentioned  bool             `gorm:"column:mentioned;not null"`
	Sentiment  decimal.Decimal  `gorm:"column:sentiment;type:numeric(4,3);not null;default:0"`
	Position   *int             `gorm:"column:position"`
	CapturedOn time.Time        `gorm:"column:captured_on;type:date;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
