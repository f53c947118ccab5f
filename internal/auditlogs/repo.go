package auditlogs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Repository exposes audit log persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an audit log repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	action  enums.AuditAction
	status  enums.AuditStatus
	actorID *uuid.UUID
	from    *time.Time
	to      *time.Time
	offset  int
	limit   int
}

// List returns a page of audit logs, newest first, plus the unpaginated count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if opts.action != "" {
		query = query.Where("action = ?", opts.action)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.actorID != nil {
		query = query.Where("actor_id = ?", *opts.actorID)
	}
	if opts.from != nil {
		query = query.Where("occurred_at >= ?", *opts.from)
	}
	if opts.to != nil {
		query = query.Where("occurred_at <= ?", *opts.to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditLog
	err := query.
		Order("occurred_at DESC").
		Offset(opts.offset).
		Limit(opts.limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts an audit log row.
func (r *Repository) Create(ctx context.Context, row *models.AuditLog) (*models.AuditLog, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}
