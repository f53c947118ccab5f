package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// AuditLog records an operator or system action for compliance review.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID    *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	ActorEmail string            `gorm:"column:actor_email"`
	Action     enums.AuditAction `gorm:"column:action;type:audit_action;not null"`
	Status     enums.AuditStatus `gorm:"column:status;type:audit_status;not null"`
	EntityType string            `gorm:"column:entity_type"`
	EntityID   *uuid.UUID        `gorm:"column:entity_id;type:uuid"`
	Detail     dbtypes.JSONText  `gorm:"column:detail;type:jsonb"`
	OccurredAt time.Time         `gorm:"column:occurred_at;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
