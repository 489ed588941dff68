package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/leadbase/leadbase/internal/db"
	"github.com/leadbase/leadbase/internal/models"
)

// setupTestDB creates a throwaway SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { database.Close() })
	return database.DB
}

func createTestCampaign(t *testing.T, repo *CampaignRepository, name string) *models.Campaign {
	t.Helper()

	c := &models.Campaign{Name: name}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return c
}

func createTestLead(t *testing.T, repo *LeadRepository, campaignID, email string) *models.Lead {
	t.Helper()

	l := &models.Lead{
		FirstName:  "Test",
		Email:      email,
		CampaignID: campaignID,
		Active:     true,
	}
	if err := repo.Create(l); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return l
}
