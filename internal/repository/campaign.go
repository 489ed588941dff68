package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadbase/leadbase/internal/models"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx so ingestion can run
// campaign and lead writes inside one transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Create creates a new campaign
func (r *CampaignRepository) Create(c *models.Campaign) error {
	return r.CreateTx(r.db, c)
}

// CreateTx creates a new campaign using the given transaction or DB handle
func (r *CampaignRepository) CreateTx(e execer, c *models.Campaign) error {
	c.ID = uuid.New().String()
	if c.Status == "" {
		c.Status = models.CampaignPending
	}
	if c.ProcessingStatus == "" {
		c.ProcessingStatus = models.ProcessingNotSent
	}
	c.CreatedAt = time.Now()

	_, err := e.Exec(`
		INSERT INTO campaigns (id, name, description, status, merged, processing_status, process_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		c.ID, c.Name, c.Description, c.Status, c.Merged, c.ProcessingStatus, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetByID returns a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	c := &models.Campaign{}
	var processedAt sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, name, description, status, merged, processing_status, processed_at, process_count, created_at
		FROM campaigns WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.Merged, &c.ProcessingStatus, &processedAt, &c.ProcessCount, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		c.ProcessedAt = &processedAt.Time
	}
	return c, nil
}

// List returns campaigns with lead counts, optionally filtered
func (r *CampaignRepository) List(filter models.CampaignListFilter) ([]models.CampaignWithStats, int, error) {
	// Count total
	countQuery := "SELECT COUNT(*) FROM campaigns WHERE 1=1"
	args := []any{}

	if filter.Search != "" {
		countQuery += " AND (name LIKE ? OR description LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		countQuery += " AND status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.name, c.description, c.status, c.merged, c.processing_status, c.processed_at, c.process_count, c.created_at,
			COALESCE((SELECT COUNT(*) FROM leads WHERE campaign_id = c.id), 0) as lead_count,
			COALESCE((SELECT COUNT(*) FROM leads WHERE campaign_id = c.id AND active = 1), 0) as active_count
		FROM campaigns c
		WHERE 1=1`

	args = []any{}
	if filter.Search != "" {
		query += " AND (c.name LIKE ? OR c.description LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query += " AND c.status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY c.created_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []models.CampaignWithStats{}
	for rows.Next() {
		var c models.CampaignWithStats
		var processedAt sql.NullTime
		err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Status, &c.Merged,
			&c.ProcessingStatus, &processedAt, &c.ProcessCount, &c.CreatedAt,
			&c.LeadCount, &c.ActiveCount,
		)
		if err != nil {
			return nil, 0, err
		}
		if processedAt.Valid {
			c.ProcessedAt = &processedAt.Time
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, total, rows.Err()
}

// Approve sets the campaign status to approved
func (r *CampaignRepository) Approve(id string) error {
	res, err := r.db.Exec(`UPDATE campaigns SET status = ? WHERE id = ?`, models.CampaignApproved, id)
	if err != nil {
		return fmt.Errorf("failed to approve campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkDispatched records a successful dispatch: processing status goes to
// sent, the process count increments and the timestamp is set.
func (r *CampaignRepository) MarkDispatched(id string, at time.Time) error {
	_, err := r.db.Exec(`
		UPDATE campaigns
		SET processing_status = ?, process_count = process_count + 1, processed_at = ?
		WHERE id = ?`,
		models.ProcessingSent, at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark campaign dispatched: %w", err)
	}
	return nil
}

// MarkDispatchFailed records a failed dispatch attempt. Counters stay
// untouched so a later successful send still reads as the first.
func (r *CampaignRepository) MarkDispatchFailed(id string) error {
	_, err := r.db.Exec(`UPDATE campaigns SET processing_status = ? WHERE id = ?`, models.ProcessingFailed, id)
	if err != nil {
		return fmt.Errorf("failed to mark campaign failed: %w", err)
	}
	return nil
}

// Delete removes a campaign and all of its leads in one transaction.
// The cascade is deliberate application logic, not a schema constraint.
func (r *CampaignRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM leads WHERE campaign_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete campaign leads: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM campaigns WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	return tx.Commit()
}
