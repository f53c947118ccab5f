package dashlinks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
)

// Repository exposes dashboard link persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dashboard link repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByClient returns every link for a client, newest first.
func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.DashboardLink, error) {
	var rows []models.DashboardLink
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID fetches one link row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DashboardLink, error) {
	var row models.DashboardLink
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBySlug fetches one link row by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.DashboardLink, error) {
	var row models.DashboardLink
	if err := r.db.WithContext(ctx).First(&row, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new link row.
func (r *Repository) Create(ctx context.Context, link *models.DashboardLink) (*models.DashboardLink, error) {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// Update persists the full link row.
func (r *Repository) Update(ctx context.Context, link *models.DashboardLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// Delete removes a link.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DashboardLink{}, "id = ?", id).Error
}
