package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Operator is an agency staff account with console access.
type Operator struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"column:email;not null;unique"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	DisplayName  string             `gorm:"column:display_name"`
	Role         enums.OperatorRole `gorm:"column:role;type:operator_role;not null;default:'analyst'"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
