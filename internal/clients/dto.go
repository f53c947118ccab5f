package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/agencypulse/reporting-backend/pkg/pagination"
)

// ListParams filters the client listing. Search matches name and website.
type ListParams struct {
	Search string
	Status enums.ClientStatus
	pagination.Params
}

type ClientItem struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Website   string             `json:"website,omitempty"`
	Industry  string             `json:"industry,omitempty"`
	Status    enums.ClientStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type BrandItem struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClientInput holds validated fields for client creation.
type CreateClientInput struct {
	Name     string
	Website  string
	Industry string
}

// UpdateClientInput applies partial updates; nil fields are left unchanged.
type UpdateClientInput struct {
	Name     *string
	Website  *string
	Industry *string
	Status   *enums.ClientStatus
}

// CreateBrandInput holds validated fields for brand creation.
type CreateBrandInput struct {
	Name   string
	Domain string
}

func toClientItem(m models.Client) ClientItem {
	return ClientItem{
		ID:        m.ID,
		Name:      m.Name,
		Website:   m.Website,
		Industry:  m.Industry,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBrandItem(m models.Brand) BrandItem {
	return BrandItem{
		ID:        m.ID,
		ClientID:  m.ClientID,
		Name:      m.Name,
		Domain:    m.Domain,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
