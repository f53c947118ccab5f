package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// Repository exposes client and brand persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a client repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	search string
	status enums.ClientStatus
	offset int
	limit  int
}

// List returns a page of clients plus the unpaginated match count.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{})

	if term := strings.TrimSpace(opts.search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(website) LIKE ?", pattern, pattern)
	}
	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Client
	err := query.
		Order("name ASC").
		Offset(opts.offset).
		Limit(opts.limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID fetches one client row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var row models.Client
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new client row.
func (r *Repository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// Update persists the full client row.
func (r *Repository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete removes a client; dependent rows cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id).Error
}

// ListBrands returns every brand under a client, name-ordered.
func (r *Repository) ListBrands(ctx context.Context, clientID uuid.UUID) ([]models.Brand, error) {
	var rows []models.Brand
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateBrand inserts a new brand row.
func (r *Repository) CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// FindBrandByID fetches one brand row.
func (r *Repository) FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var row models.Brand
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
