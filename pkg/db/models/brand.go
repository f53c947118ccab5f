package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a trackable identity under a client, usually one per product line.
type Brand struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID  uuid.UUID `gorm:"column:client_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Domain    string    `gorm:"column:domain"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
