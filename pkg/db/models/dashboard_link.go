package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
)

// DashboardLink is a slug-addressable shareable report configuration.
// KPISelection serializes the saved visibility selections; a SQL NULL means
// the link was created before any selection was saved, which the public view
// treats as show-everything. That NULL-vs-empty distinction must survive
// round trips, hence the JSONText column type.
type DashboardLink struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID         uuid.UUID        `gorm:"column:client_id;type:uuid;not null"`
	BrandID          *uuid.UUID       `gorm:"column:brand_id;type:uuid"`
	Slug             string           `gorm:"column:slug;not null;unique"`
	StartDate        time.Time        `gorm:"column:start_date;type:date;not null"`
	EndDate          time.Time        `gorm:"column:end_date;type:date;not null"`
	Enabled          bool             `gorm:"column:enabled;not null;default:true"`
	ExpiresAt        *time.Time       `gorm:"column:expires_at"`
	ExecutiveSummary *string          `gorm:"column:executive_summary"`
	KPISelection     dbtypes.JSONText `gorm:"column:kpi_selection;type:jsonb"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
