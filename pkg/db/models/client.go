package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Client is an agency customer whose campaigns and reports we manage.
type Client struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Website   string             `gorm:"column:website"`
	Industry  string             `gorm:"column:industry"`
	Status    enums.ClientStatus `gorm:"column:status;type:client_status;not null;default:'active'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
