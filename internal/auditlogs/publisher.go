package auditlogs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/logger"
)

type messagePublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// Publisher emits audit events onto the audit topic. Emission is best effort:
// a publish failure is logged, never surfaced to the request that caused it.
type Publisher struct {
	pub  messagePublisher
	logg *logger.Logger
}

// NewPublisher builds an audit event publisher.
func NewPublisher(pub messagePublisher, logg *logger.Logger) (*Publisher, error) {
	if pub == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Publisher{pub: pub, logg: logg}, nil
}

// Emit publishes one audit event, stamping EventID and OccurredAt when unset.
// Safe on a nil receiver so callers without a wired topic can no-op.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil || p.pub == nil {
		return
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	raw, err := json.Marshal(event)
	if err != nil {
		p.logg.Error(ctx, "encoding audit event", err)
		return
	}

	result := p.pub.Publish(ctx, &pubsub.Message{Data: raw})
	if _, err := result.Get(ctx); err != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"audit_action": event.Action,
			"event_id":     event.EventID,
		})
		p.logg.Error(logCtx, "publishing audit event", err)
	}
}
