package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadbase/leadbase/internal/models"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, first_name, last_name, email, company, domain, score, label, description,
	source, campaign_id, active, email_status, unsubscribe_status, unsubscribe_token, created_at`

func scanLead(row interface{ Scan(dest ...any) error }) (*models.Lead, error) {
	l := &models.Lead{}
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Company, &l.Domain,
		&l.Score, &l.Label, &l.Description, &l.Source, &l.CampaignID,
		&l.Active, &l.EmailStatus, &l.UnsubscribeStatus, &l.UnsubscribeToken, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a single lead
func (r *LeadRepository) Create(l *models.Lead) error {
	return r.CreateTx(r.db, l)
}

// CreateTx inserts a lead using the given transaction or DB handle
func (r *LeadRepository) CreateTx(e execer, l *models.Lead) error {
	l.ID = uuid.New().String()
	if l.UnsubscribeToken == "" {
		l.UnsubscribeToken = uuid.New().String()
	}
	l.CreatedAt = time.Now()

	_, err := e.Exec(`
		INSERT INTO leads (id, first_name, last_name, email, company, domain, score, label, description,
			source, campaign_id, active, email_status, unsubscribe_status, unsubscribe_token, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.FirstName, l.LastName, l.Email, l.Company, l.Domain, l.Score, l.Label, l.Description,
		l.Source, l.CampaignID, l.Active, l.EmailStatus, l.UnsubscribeStatus, l.UnsubscribeToken, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID returns a lead by ID
func (r *LeadRepository) GetByID(id string) (*models.Lead, error) {
	l, err := scanLead(r.db.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetByToken returns a lead by unsubscribe token
func (r *LeadRepository) GetByToken(token string) (*models.Lead, error) {
	l, err := scanLead(r.db.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE unsubscribe_token = ?`, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// LatestByEmail returns the most recently created lead whose email
// matches the given normalized address, across all campaigns.
// Subscription state is global per address, so the lookup deliberately
// ignores campaign boundaries.
func (r *LeadRepository) LatestByEmail(normalized string) (*models.Lead, error) {
	l, err := scanLead(r.db.QueryRow(`
		SELECT `+leadColumns+` FROM leads
		WHERE lower(trim(email)) = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, normalized))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListByCampaign returns the leads owned by a campaign
func (r *LeadRepository) ListByCampaign(filter models.LeadFilter) ([]models.Lead, int, error) {
	countQuery := "SELECT COUNT(*) FROM leads WHERE campaign_id = ?"
	args := []any{filter.CampaignID}

	if filter.Search != "" {
		countQuery += " AND (email LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR company LIKE ?)"
		s := "%" + filter.Search + "%"
		args = append(args, s, s, s, s)
	}
	if filter.Active != nil {
		countQuery += " AND active = ?"
		args = append(args, *filter.Active)
	}

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE campaign_id = ?`
	args = []any{filter.CampaignID}
	if filter.Search != "" {
		query += " AND (email LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR company LIKE ?)"
		s := "%" + filter.Search + "%"
		args = append(args, s, s, s, s)
	}
	if filter.Active != nil {
		query += " AND active = ?"
		args = append(args, *filter.Active)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

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

	leads := []models.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *l)
	}

	return leads, total, rows.Err()
}

// SetActive sets the active flag on a lead
func (r *LeadRepository) SetActive(id string, active bool) error {
	res, err := r.db.Exec(`UPDATE leads SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update lead active flag: %w", err)
	}
	return requireRow(res)
}

// SetManualStatus sets the operator-controlled subscription status
func (r *LeadRepository) SetManualStatus(id string, status string) error {
	res, err := r.db.Exec(`UPDATE leads SET email_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update lead subscription: %w", err)
	}
	return requireRow(res)
}

// ConfirmUnsubscribe applies an unsubscribe-link confirmation: the
// external status becomes unsubscribed and the lead is deactivated.
// Confirming an already-unsubscribed lead is a no-op, so repeat visits
// to the same link are harmless.
func (r *LeadRepository) ConfirmUnsubscribe(token string) (*models.Lead, error) {
	lead, err := r.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, nil
	}

	if lead.UnsubscribeStatus == models.StatusUnsubscribed && !lead.Active {
		return lead, nil
	}

	_, err = r.db.Exec(`
		UPDATE leads SET unsubscribe_status = ?, active = 0 WHERE unsubscribe_token = ?`,
		models.StatusUnsubscribed, token,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm unsubscribe: %w", err)
	}

	lead.UnsubscribeStatus = models.StatusUnsubscribed
	lead.Active = false
	return lead, nil
}

// Delete removes a single lead
func (r *LeadRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Bulk lead actions
const (
	BulkActivate    = "activate"
	BulkDeactivate  = "deactivate"
	BulkSubscribe   = "subscribe"
	BulkUnsubscribe = "unsubscribe"
	BulkDelete      = "delete"
)

// BulkApply applies one action to a set of leads and returns how many
// rows changed. Unknown ids are skipped, not errors.
func (r *LeadRepository) BulkApply(action string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var query string
	switch action {
	case BulkActivate:
		query = "UPDATE leads SET active = 1 WHERE id IN (%s)"
	case BulkDeactivate:
		query = "UPDATE leads SET active = 0 WHERE id IN (%s)"
	case BulkSubscribe:
		query = "UPDATE leads SET email_status = 'subscribed' WHERE id IN (%s)"
	case BulkUnsubscribe:
		query = "UPDATE leads SET email_status = 'unsubscribed' WHERE id IN (%s)"
	case BulkDelete:
		query = "DELETE FROM leads WHERE id IN (%s)"
	default:
		return 0, fmt.Errorf("unknown bulk action %q", action)
	}

	placeholders := ""
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, id)
	}

	res, err := r.db.Exec(fmt.Sprintf(query, placeholders), args...)
	if err != nil {
		return 0, fmt.Errorf("bulk %s failed: %w", action, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
