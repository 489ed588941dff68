package models

import "time"

// Campaign statuses
const (
	CampaignPending  = "pending"
	CampaignApproved = "approved"
)

// Processing statuses track the outcome of the last dispatch attempt
const (
	ProcessingNotSent = "not_sent"
	ProcessingSent    = "sent"
	ProcessingFailed  = "failed"
)

// Campaign represents a named batch of leads with an approval and
// dispatch lifecycle.
type Campaign struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Merged           bool       `json:"merged"`
	ProcessingStatus string     `json:"processing_status"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	ProcessCount     int        `json:"process_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CampaignWithStats includes lead counts for list views
type CampaignWithStats struct {
	Campaign
	LeadCount   int `json:"lead_count"`
	ActiveCount int `json:"active_count"`
}

// CampaignListFilter for filtering campaigns
type CampaignListFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}
