package models

import "time"

// Subscription statuses. The empty string means no signal was recorded.
const (
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
)

// Lead represents a single contact record belonging to a campaign.
//
// EmailStatus is the operator-set (manual) subscription state and
// UnsubscribeStatus the externally reported one. Whether a lead may be
// emailed is always derived from the pair at read time, never stored.
type Lead struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Company           string    `json:"company"`
	Domain            string    `json:"domain"`
	Score             int       `json:"score"`
	Label             string    `json:"label"`
	Description       string    `json:"description"`
	Source            string    `json:"source"`
	CampaignID        string    `json:"campaign_id"`
	Active            bool      `json:"active"`
	EmailStatus       string    `json:"email_status"`
	UnsubscribeStatus string    `json:"unsubscribe_status"`
	UnsubscribeToken  string    `json:"unsubscribe_token"`
	CreatedAt         time.Time `json:"created_at"`
}

// RawLead is an unvalidated lead as assembled by an ingestion surface
// (CSV row, JSON upload item, or merge source). Score stays a string
// until the pipeline coerces it.
type RawLead struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	Company           string `json:"company"`
	Domain            string `json:"domain"`
	Score             string `json:"score"`
	Label             string `json:"label"`
	Description       string `json:"description"`
	Source            string `json:"source,omitempty"`
	EmailStatus       string `json:"email_status,omitempty"`
	UnsubscribeStatus string `json:"unsubscribe_status,omitempty"`
}

// LeadFilter for filtering leads within a campaign
type LeadFilter struct {
	CampaignID string
	Search     string
	Active     *bool
	Limit      int
	Offset     int
}

// IngestResult reports what the reconciliation pipeline did with a batch.
type IngestResult struct {
	CampaignID        string `json:"campaign_id"`
	Added             int    `json:"added"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
	Suppressed        int    `json:"suppressed"`
}
