package auditlogs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

// ListParams filters the audit log listing.
type ListParams struct {
	Action  enums.AuditAction
	Status  enums.AuditStatus
	ActorID *uuid.UUID
	From    *time.Time
	To      *time.Time
	pagination.Params
}

type LogItem struct {
	ID         uuid.UUID         `json:"id"`
	ActorID    *uuid.UUID        `json:"actor_id,omitempty"`
	ActorEmail string            `json:"actor_email,omitempty"`
	Action     enums.AuditAction `json:"action"`
	Status     enums.AuditStatus `json:"status"`
	EntityType string            `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID        `json:"entity_id,omitempty"`
	Detail     json.RawMessage   `json:"detail,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Event is the wire shape published to the audit topic by API controllers and
// consumed by the audit worker.
type Event struct {
	EventID    string          `json:"event_id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	ActorEmail string          `json:"actor_email,omitempty"`
	Action     string          `json:"action"`
	Status     string          `json:"status"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func toLogItem(m models.AuditLog) LogItem {
	return LogItem{
		ID:         m.ID,
		ActorID:    m.ActorID,
		ActorEmail: m.ActorEmail,
		Action:     m.Action,
		Status:     m.Status,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Detail:     json.RawMessage(m.Detail),
		OccurredAt: m.OccurredAt,
	}
}
