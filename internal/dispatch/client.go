package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/leadbase/leadbase/internal/models"
)

// Payload is the JSON body posted to the automation webhook.
type Payload struct {
	CampaignID     string        `json:"campaign_id"`
	TotalLeads     int           `json:"total_leads"`
	ProcessingMode string        `json:"processing_mode"`
	Leads          []PayloadLead `json:"leads"`
}

// PayloadLead is one lead as the webhook sees it.
type PayloadLead struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Company        string `json:"company"`
	Domain         string `json:"domain"`
	Score          int    `json:"score"`
	Label          string `json:"label"`
	Description    string `json:"description"`
	UnsubscribeURL string `json:"unsubscribe_url,omitempty"`
}

// Client posts dispatch payloads to the configured webhook. One POST
// per dispatch; failures are reported, never retried.
type Client struct {
	url        string
	baseURL    string
	httpClient *http.Client
}

func NewClient(url, baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:     url,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send delivers the payload for a campaign.
func (c *Client) Send(ctx context.Context, campaignID, mode string, leads []models.Lead) error {
	payload := Payload{
		CampaignID:     campaignID,
		TotalLeads:     len(leads),
		ProcessingMode: mode,
		Leads:          make([]PayloadLead, 0, len(leads)),
	}
	for _, l := range leads {
		pl := PayloadLead{
			FirstName:   l.FirstName,
			LastName:    l.LastName,
			Email:       l.Email,
			Company:     l.Company,
			Domain:      l.Domain,
			Score:       l.Score,
			Label:       l.Label,
			Description: l.Description,
		}
		if l.UnsubscribeToken != "" {
			pl.UnsubscribeURL = c.baseURL + "/unsubscribe/" + l.UnsubscribeToken
		}
		payload.Leads = append(payload.Leads, pl)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}

	return nil
}
