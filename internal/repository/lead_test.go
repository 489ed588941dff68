package repository

import (
	"testing"

	"github.com/leadbase/leadbase/internal/models"
)

func TestLeadRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignRepository(db)
	repo := NewLeadRepository(db)

	c := createTestCampaign(t, campaigns, "Spring Outreach")

	l := &models.Lead{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Score:      8,
		CampaignID: c.ID,
		Active:     true,
	}
	if err := repo.Create(l); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if l.ID == "" {
		t.Error("Create() did not set ID")
	}
	if l.UnsubscribeToken == "" {
		t.Error("Create() did not assign an unsubscribe token")
	}

	got, err := repo.GetByID(l.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() returned nil")
	}
	if got.Email != "ada@example.com" || got.Score != 8 {
		t.Errorf("GetByID() = %q/%d", got.Email, got.Score)
	}
}

func TestLeadRepository_Create_KeepsExistingToken(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignRepository(db)
	repo := NewLeadRepository(db)

	c := createTestCampaign(t, campaigns, "Spring Outreach")

	l := &models.Lead{
		FirstName:        "Ada",
		Email:            "ada@example.com",
		CampaignID:       c.ID,
		UnsubscribeToken: "pre-assigned-token",
	}
	if err := repo.Create(l); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if l.UnsubscribeToken != "pre-assigned-token" {
		t.Errorf("Create() overwrote token: %q", l.UnsubscribeToken)
	}
}

func TestLeadRepository_LatestByEmail(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignRepository(db)
	repo := NewLeadRepository(db)

	c1 := createTestCampaign(t, campaigns, "First")
	c2 := createTestCampaign(t, campaigns, "Second")

	createTestLead(t, repo, c1.ID, "Ada@Example.com")
	newest := createTestLead(t, repo, c2.ID, "ada@example.com ")

	got, err := repo.LatestByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("LatestByEmail() error = %v", err)
	}
	if got == nil {
		t.Fatal("LatestByEmail() returned nil")
	}
	// Most recent record wins, regardless of campaign or raw spelling
	if got.ID != newest.ID {
		t.Errorf("LatestByEmail() ID = %q, want newest %q", got.ID, newest.ID)
	}

	got, err = repo.LatestByEmail("unknown@example.com")
	if err != nil {
		t.Fatalf("LatestByEmail() error = %v", err)
	}
	if got != nil {
		t.Error("LatestByEmail() should return nil for unknown address")
	}
}

func TestLeadRepository_SetActiveAndManualStatus(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignRepository(db)
	repo := NewLeadRepository(db)

	c := createTestCampaign(t, campaigns, "Spring Outreach")
	l := createTestLead(t, repo, c.ID, "ada@example.com")

	if err := repo.SetActive(l.ID, false); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	got, _ := repo.GetByID(l.ID)
	if got.Active {
		t.Error("SetActive(false) lead still active")
	}

	if err := repo.SetManualStatus(l.ID, models.StatusUnsubscribed); err != nil {
		t.Fatalf("SetManualStatus() error = %v", err)
	}
	got, _ = repo.GetByID(l.ID)
	if got.EmailStatus != models.StatusUnsubscribed {
		t.Errorf("EmailStatus = %q, want unsubscribed", got.EmailStatus)
	}

	if err := repo.SetActive("non-existent", true); err == nil {
		t.Error("SetActive() should fail for unknown ID")
	}
}

func TestLeadRepository_ConfirmUnsubscribe_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignRepository(db)
	repo := NewLeadRepository(db)

	c := createTestCampaign(t, campaigns, "Spring Outreach")
	l := createTestLead(t, repo, c.ID, "ada@example.com")

	first, err := repo.ConfirmUnsubscribe(l.UnsubscribeToken)
	if err != nil {
		t.Fatalf("ConfirmUnsubscribe() error = %v", err)
	}
	if first == nil {
		t.Fatal("ConfirmUnsubscribe() returned nil for valid token")
	}
	if first.UnsubscribeStatus != models.StatusUnsubscribed || first.Active {
		t.Errorf("after confirm: status = %q, active = %v", first.UnsubscribeStatus, first.Active)
	}

	// Confirming twice must land in the same end state
	second, err := repo.ConfirmUnsubscribe(l.UnsubscribeToken)
	if err != nil {
		t.Fatalf("ConfirmUnsubscribe() second error = %v", err)
	}
	if second.UnsubscribeStatus != models.StatusUnsubscribed || second.Active {
		t.Errorf("after second confirm: status = %q, active = %v", second.UnsubscribeStatus, second.Active)
	}

	got, err := repo.ConfirmUnsubscribe("bogus-token")
	if err != nil {
		t.Fatalf("ConfirmUnsubscribe() error = %v", err)
	}
	if got != nil {
		t.Error("ConfirmUnsubscribe() should return nil for unknown token")
	}
}

func TestLeadRepository_BulkApply(t *testing.T) {
	db := setupTestDB(t)
	campaigns := NewCampaignRepository(db)
	repo := NewLeadRepository(db)

	c := createTestCampaign(t, campaigns, "Spring Outreach")
	l1 := createTestLead(t, repo, c.ID, "a@example.com")
	l2 := createTestLead(t, repo, c.ID, "b@example.com")
	l3 := createTestLead(t, repo, c.ID, "c@example.com")

	n, err := repo.BulkApply(BulkDeactivate, []string{l1.ID, l2.ID})
	if err != nil {
		t.Fatalf("BulkApply() error = %v", err)
	}
	if n != 2 {
		t.Errorf("BulkApply(deactivate) rows = %d, want 2", n)
	}
	got, _ := repo.GetByID(l3.ID)
	if !got.Active {
		t.Error("BulkApply touched a lead outside the id list")
	}

	n, err = repo.BulkApply(BulkUnsubscribe, []string{l3.ID, "missing"})
	if err != nil {
		t.Fatalf("BulkApply() error = %v", err)
	}
	if n != 1 {
		t.Errorf("BulkApply(unsubscribe) rows = %d, want 1", n)
	}
	got, _ = repo.GetByID(l3.ID)
	if got.EmailStatus != models.StatusUnsubscribed {
		t.Errorf("EmailStatus = %q, want unsubscribed", got.EmailStatus)
	}

	n, err = repo.BulkApply(BulkDelete, []string{l1.ID})
	if err != nil {
		t.Fatalf("BulkApply() error = %v", err)
	}
	if n != 1 {
		t.Errorf("BulkApply(delete) rows = %d, want 1", n)
	}
	if got, _ := repo.GetByID(l1.ID); got != nil {
		t.Error("BulkApply(delete) lead still present")
	}

	if _, err := repo.BulkApply("explode", []string{l2.ID}); err == nil {
		t.Error("BulkApply() should reject unknown actions")
	}

	if n, err := repo.BulkApply(BulkActivate, nil); err != nil || n != 0 {
		t.Errorf("BulkApply(empty) = %d, %v", n, err)
	}
}
