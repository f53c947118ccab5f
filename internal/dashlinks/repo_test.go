package dashlinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	dbtypes "github.com/agencypulse/reporting-backend/pkg/db/types"
)

func setupLinksTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS dashboard_links (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  brand_id TEXT,
  slug TEXT NOT NULL UNIQUE,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1,
  expires_at DATETIME,
  executive_summary TEXT,
  kpi_selection TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedLink(t *testing.T, db *gorm.DB, clientID uuid.UUID, slug string, selection dbtypes.JSONText) models.DashboardLink {
	t.Helper()
	link := models.DashboardLink{
		ID:           uuid.New(),
		ClientID:     clientID,
		Slug:         slug,
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Enabled:      true,
		KPISelection: selection,
	}
	require.NoError(t, db.Create(&link).Error)
	return link
}

func TestRepositoryFindBySlug(t *testing.T) {
	db := setupLinksTestDB(t)
	repo := NewRepository(db)
	clientID := uuid.New()
	seeded := seedLink(t, db, clientID, "q1-report", nil)

	found, err := repo.FindBySlug(context.Background(), "q1-report")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, clientID, found.ClientID)

	_, err = repo.FindBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySelectionNullSurvivesRoundTrip(t *testing.T) {
	db := setupLinksTestDB(t)
	repo := NewRepository(db)
	clientID := uuid.New()

	nullLink := seedLink(t, db, clientID, "null-selection", nil)
	emptyLink := seedLink(t, db, clientID, "empty-selection", dbtypes.JSONText(`{"selected_kpis":[]}`))

	got, err := repo.FindByID(context.Background(), nullLink.ID)
	require.NoError(t, err)
	assert.Empty(t, got.KPISelection)

	got, err = repo.FindByID(context.Background(), emptyLink.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"selected_kpis":[]}`, string(got.KPISelection))
}

func TestRepositoryListByClientScopes(t *testing.T) {
	db := setupLinksTestDB(t)
	repo := NewRepository(db)
	clientA := uuid.New()
	clientB := uuid.New()
	seedLink(t, db, clientA, "a-one", nil)
	seedLink(t, db, clientA, "a-two", nil)
	seedLink(t, db, clientB, "b-one", nil)

	rows, err := repo.ListByClient(context.Background(), clientA)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, clientA, row.ClientID)
	}
}

func TestRepositoryDelete(t *testing.T) {
	db := setupLinksTestDB(t)
	repo := NewRepository(db)
	link := seedLink(t, db, uuid.New(), "doomed", nil)

	require.NoError(t, repo.Delete(context.Background(), link.ID))

	_, err := repo.FindByID(context.Background(), link.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
