package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

type clientsRepository interface {
	List(ctx context.Context, opts listQuery) ([]models.Client, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBrands(ctx context.Context, clientID uuid.UUID) ([]models.Brand, error)
	CreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
}

// Service exposes client and brand management semantics.
type Service interface {
	ListClients(ctx context.Context, params ListParams) (*pagination.Page[ClientItem], error)
	GetClient(ctx context.Context, id uuid.UUID) (*ClientItem, error)
	CreateClient(ctx context.Context, input CreateClientInput) (*ClientItem, error)
	UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*ClientItem, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListBrands(ctx context.Context, clientID uuid.UUID) ([]BrandItem, error)
	CreateBrand(ctx context.Context, clientID uuid.UUID, input CreateBrandInput) (*BrandItem, error)
}

type service struct {
	repo clientsRepository
}

// NewService builds a client service backed by the provided repository.
func NewService(repo clientsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListClients(ctx context.Context, params ListParams) (*pagination.Page[ClientItem], error) {
	normalized := params.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		search: params.Search,
		status: params.Status,
		offset: normalized.Offset(),
		limit:  normalized.Limit(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing clients")
	}

	items := make([]ClientItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toClientItem(row))
	}
	page := pagination.NewPage(items, total)
	return &page, nil
}

func (s *service) GetClient(ctx context.Context, id uuid.UUID) (*ClientItem, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching client")
	}
	item := toClientItem(*row)
	return &item, nil
}

func (s *service) CreateClient(ctx context.Context, input CreateClientInput) (*ClientItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name is required")
	}

	row, err := s.repo.Create(ctx, &models.Client{
		Name:     name,
		Website:  strings.TrimSpace(input.Website),
		Industry: strings.TrimSpace(input.Industry),
		Status:   enums.ClientStatusActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating client")
	}
	item := toClientItem(*row)
	return &item, nil
}

func (s *service) UpdateClient(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*ClientItem, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching client")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "client name cannot be empty")
		}
		row.Name = name
	}
	if input.Website != nil {
		row.Website = strings.TrimSpace(*input.Website)
	}
	if input.Industry != nil {
		row.Industry = strings.TrimSpace(*input.Industry)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid client status")
		}
		row.Status = *input.Status
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating client")
	}
	item := toClientItem(*row)
	return &item, nil
}

func (s *service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching client")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting client")
	}
	return nil
}

func (s *service) ListBrands(ctx context.Context, clientID uuid.UUID) ([]BrandItem, error) {
	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching client")
	}

	rows, err := s.repo.ListBrands(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing brands")
	}
	items := make([]BrandItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toBrandItem(row))
	}
	return items, nil
}

func (s *service) CreateBrand(ctx context.Context, clientID uuid.UUID, input CreateBrandInput) (*BrandItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand name is required")
	}

	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching client")
	}

	row, err := s.repo.CreateBrand(ctx, &models.Brand{
		ClientID: clientID,
		Name:     name,
		Domain:   strings.TrimSpace(input.Domain),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating brand")
	}
	item := toBrandItem(*row)
	return &item, nil
}
