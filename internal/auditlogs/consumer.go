package auditlogs

import (
	"context"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

type recorder interface {
	Record(ctx context.Context, event Event) error
}

// Consumer decodes audit events off the audit topic and writes them through
// the audit service.
type Consumer struct {
	svc  recorder
	logg *logger.Logger
}

// NewConsumer builds an audit event consumer.
func NewConsumer(svc recorder, logg *logger.Logger) (*Consumer, error) {
	if svc == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{svc: svc, logg: logg}, nil
}

// Process handles one raw message. Malformed or invalid events return nil so
// the subscription acks them; a poison message must not redeliver forever.
// Persistence failures return the error so Pub/Sub nacks and retries.
func (c *Consumer) Process(ctx context.Context, data []byte) error {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		c.logg.Error(ctx, "dropping undecodable audit event", err)
		return nil
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id": event.EventID,
		"action":   event.Action,
	})

	if err := c.svc.Record(ctx, event); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
			c.logg.Error(logCtx, "dropping invalid audit event", err)
			return nil
		}
		c.logg.Error(logCtx, "failed to record audit event", err)
		return err
	}

	c.logg.Info(logCtx, "audit event recorded")
	return nil
}
