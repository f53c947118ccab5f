package auditlogs

import (
	"context"
	"fmt"
	"time"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

type auditLogsRepository interface {
	List(ctx context.Context, opts listQuery) ([]models.AuditLog, int64, error)
	Create(ctx context.Context, row *models.AuditLog) (*models.AuditLog, error)
}

// Service exposes audit log listing and recording semantics.
type Service interface {
	ListLogs(ctx context.Context, params ListParams) (*pagination.Page[LogItem], error)
	Record(ctx context.Context, event Event) error
}

type service struct {
	repo auditLogsRepository
}

// NewService builds an audit log service backed by the provided repository.
func NewService(repo auditLogsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit logs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListLogs(ctx context.Context, params ListParams) (*pagination.Page[LogItem], error) {
	if params.Action != "" && !params.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action filter")
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit status filter")
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}

	normalized := params.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		action:  params.Action,
		status:  params.Status,
		actorID: params.ActorID,
		from:    params.From,
		to:      params.To,
		offset:  normalized.Offset(),
		limit:   normalized.Limit(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing audit logs")
	}

	items := make([]LogItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toLogItem(row))
	}
	page := pagination.NewPage(items, total)
	return &page, nil
}

// Record persists an audit event. Invalid actions or statuses are rejected,
// not coerced; the publisher owns the vocabulary.
func (s *service) Record(ctx context.Context, event Event) error {
	action, err := enums.ParseAuditAction(event.Action)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid audit action")
	}
	status, err := enums.ParseAuditStatus(event.Status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid audit status")
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	row := &models.AuditLog{
		ActorID:    event.ActorID,
		ActorEmail: event.ActorEmail,
		Action:     action,
		Status:     status,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Detail:     dbtypes.JSONText(event.Detail),
		OccurredAt: occurredAt,
	}
	if _, err := s.repo.Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording audit event")
	}
	return nil
}
