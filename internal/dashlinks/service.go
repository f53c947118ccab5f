package dashlinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/db/models"
	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
)

type linksRepository interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.DashboardLink, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DashboardLink, error)
	FindBySlug(ctx context.Context, slug string) (*models.DashboardLink, error)
	Create(ctx context.Context, link *models.DashboardLink) (*models.DashboardLink, error)
	Update(ctx context.Context, link *models.DashboardLink) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientsChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// Service exposes dashboard link management plus the slug-addressed public fetch.
type Service interface {
	ListLinks(ctx context.Context, clientID uuid.UUID) ([]LinkItem, error)
	CreateLink(ctx context.Context, clientID uuid.UUID, input CreateInput) (*LinkItem, error)
	UpdateLink(ctx context.Context, id uuid.UUID, input UpdateInput) (*LinkItem, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
	GetPublicLink(ctx context.Context, slug string) (*PublicLink, error)
}

type service struct {
	repo    linksRepository
	clients clientsChecker
	now     func() time.Time
}

// NewService builds a dashboard link service.
func NewService(repo linksRepository, clients clientsChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard links repository required")
	}
	if clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	return &service{repo: repo, clients: clients, now: time.Now}, nil
}

func (s *service) ListLinks(ctx context.Context, clientID uuid.UUID) ([]LinkItem, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing dashboard links")
	}

	items := make([]LinkItem, 0, len(rows))
	for _, row := range rows {
		item, err := toLinkItem(row)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding kpi selection")
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *service) CreateLink(ctx context.Context, clientID uuid.UUID, input CreateInput) (*LinkItem, error) {
	if err := s.ensureClient(ctx, clientID); err != nil {
		return nil, err
	}
	if input.Range.Start.IsZero() || input.Range.End.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	selection, err := encodeSelection(input.KPISelection)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding kpi selection")
	}

	slug, err := newSlug()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating slug")
	}

	row, err := s.repo.Create(ctx, &models.DashboardLink{
		ClientID:         clientID,
		BrandID:          input.BrandID,
		Slug:             slug,
		StartDate:        input.Range.Start,
		EndDate:          input.Range.End,
		Enabled:          true,
		ExpiresAt:        input.ExpiresAt,
		ExecutiveSummary: input.ExecutiveSummary,
		KPISelection:     selection,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating dashboard link")
	}

	item, err := toLinkItem(*row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding kpi selection")
	}
	return &item, nil
}

func (s *service) UpdateLink(ctx context.Context, id uuid.UUID, input UpdateInput) (*LinkItem, error) {
	row, err := s.findLink(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Range != nil {
		if input.Range.Start.IsZero() || input.Range.End.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is required")
		}
		row.StartDate = input.Range.Start
		row.EndDate = input.Range.End
	}
	if input.Enabled != nil {
		row.Enabled = *input.Enabled
	}
	if input.ClearExpiry {
		row.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		if !input.ExpiresAt.After(s.now()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
		}
		row.ExpiresAt = input.ExpiresAt
	}
	if input.ExecutiveSummary != nil {
		row.ExecutiveSummary = input.ExecutiveSummary
	}
	if input.SetKPISelection {
		selection, err := encodeSelection(input.KPISelection)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding kpi selection")
		}
		row.KPISelection = selection
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating dashboard link")
	}

	item, err := toLinkItem(*row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding kpi selection")
	}
	return &item, nil
}

func (s *service) DeleteLink(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findLink(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting dashboard link")
	}
	return nil
}

// GetPublicLink resolves a slug for an anonymous viewer. Unknown and disabled
// slugs are indistinguishable (404) so a disabled link leaks nothing; expired
// links answer 410 so the viewer knows the report existed.
func (s *service) GetPublicLink(ctx context.Context, slug string) (*PublicLink, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dashboard link not found")
	}

	row, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dashboard link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching dashboard link")
	}
	if !row.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dashboard link not found")
	}
	if row.ExpiresAt != nil && !row.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeGone, "dashboard link expired")
	}

	public, err := toPublicLink(*row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding kpi selection")
	}
	return &public, nil
}

func (s *service) ensureClient(ctx context.Context, clientID uuid.UUID) error {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching client")
	}
	return nil
}

func (s *service) findLink(ctx context.Context, id uuid.UUID) (*models.DashboardLink, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dashboard link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching dashboard link")
	}
	return row, nil
}

// encodeSelection maps a nil payload to SQL NULL, preserving the tri-state at
// the storage boundary. Nil slices inside a non-nil payload stay JSON null.
func encodeSelection(payload *visibility.KPISelectionPayload) (dbtypes.JSONText, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return dbtypes.JSONText(raw), nil
}
