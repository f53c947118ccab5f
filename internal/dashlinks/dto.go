package dashlinks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/internal/visibility"
	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/types"
)

// LinkItem is the admin-facing view of a dashboard link.
type LinkItem struct {
	ID               uuid.UUID                       `json:"id"`
	ClientID         uuid.UUID                       `json:"client_id"`
	BrandID          *uuid.UUID                      `json:"brand_id,omitempty"`
	Slug             string                          `json:"slug"`
	StartDate        string                          `json:"start_date"`
	EndDate          string                          `json:"end_date"`
	Enabled          bool                            `json:"enabled"`
	ExpiresAt        *time.Time                      `json:"expires_at,omitempty"`
	ExecutiveSummary *string                         `json:"executive_summary,omitempty"`
	KPISelection     *visibility.KPISelectionPayload `json:"kpi_selection,omitempty"`
	CreatedAt        time.Time                       `json:"created_at"`
	UpdatedAt        time.Time                       `json:"updated_at"`
}

// PublicLink is the anonymous view served by slug: the selection snapshot
// plus the report frame, nothing operator-facing.
type PublicLink struct {
	Slug             string                          `json:"slug"`
	ClientID         uuid.UUID                       `json:"client_id"`
	BrandID          *uuid.UUID                      `json:"brand_id,omitempty"`
	StartDate        string                          `json:"start_date"`
	EndDate          string                          `json:"end_date"`
	ExecutiveSummary *string                         `json:"executive_summary,omitempty"`
	KPISelection     *visibility.KPISelectionPayload `json:"kpi_selection"`
}

// CreateInput holds validated fields for link creation. A nil KPISelection
// persists as SQL NULL, which public mode reads as show-everything.
type CreateInput struct {
	BrandID          *uuid.UUID
	Range            types.DateRange
	ExpiresAt        *time.Time
	ExecutiveSummary *string
	KPISelection     *visibility.KPISelectionPayload
}

// UpdateInput applies partial updates; nil fields are left unchanged.
// SetKPISelection distinguishes "don't touch" (false) from "replace with
// Selection, possibly nil" (true).
type UpdateInput struct {
	Range            *types.DateRange
	Enabled          *bool
	ExpiresAt        *time.Time
	ClearExpiry      bool
	ExecutiveSummary *string
	SetKPISelection  bool
	KPISelection     *visibility.KPISelectionPayload
}

func toLinkItem(m models.DashboardLink) (LinkItem, error) {
	item := LinkItem{
		ID:               m.ID,
		ClientID:         m.ClientID,
		BrandID:          m.BrandID,
		Slug:             m.Slug,
		StartDate:        m.StartDate.Format(types.DateFormat),
		EndDate:          m.EndDate.Format(types.DateFormat),
		Enabled:          m.Enabled,
		ExpiresAt:        m.ExpiresAt,
		ExecutiveSummary: m.ExecutiveSummary,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	selection, err := decodeSelection(m.KPISelection)
	if err != nil {
		return LinkItem{}, err
	}
	item.KPISelection = selection
	return item, nil
}

func toPublicLink(m models.DashboardLink) (PublicLink, error) {
	selection, err := decodeSelection(m.KPISelection)
	if err != nil {
		return PublicLink{}, err
	}
	return PublicLink{
		Slug:             m.Slug,
		ClientID:         m.ClientID,
		BrandID:          m.BrandID,
		StartDate:        m.StartDate.Format(types.DateFormat),
		EndDate:          m.EndDate.Format(types.DateFormat),
		ExecutiveSummary: m.ExecutiveSummary,
		KPISelection:     selection,
	}, nil
}

// decodeSelection keeps SQL NULL as a nil payload; inner null fields survive
// through the payload's nil slices.
func decodeSelection(raw []byte) (*visibility.KPISelectionPayload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var payload visibility.KPISelectionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
