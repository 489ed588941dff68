package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadbase/leadbase/internal/models"
	"github.com/leadbase/leadbase/internal/repository"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNotApproved      = errors.New("campaign is not approved")
	ErrDeliveryFailed   = errors.New("webhook delivery failed")
)

// Result reports a completed dispatch.
type Result struct {
	CampaignID string `json:"campaign_id"`
	SentLeads  int    `json:"sent_leads"`
	Mode       string `json:"processing_mode"`
}

// Dispatcher sends an approved campaign's eligible leads to the
// external webhook and keeps the campaign's dispatch bookkeeping.
type Dispatcher struct {
	campaigns *repository.CampaignRepository
	selector  *Selector
	client    *Client
	logger    *slog.Logger
}

func NewDispatcher(campaigns *repository.CampaignRepository, selector *Selector, client *Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		campaigns: campaigns,
		selector:  selector,
		client:    client,
		logger:    logger.With("component", "dispatch"),
	}
}

// Dispatch makes exactly one delivery attempt for a campaign. A
// non-approved campaign is rejected before anything is selected or
// sent. On success the campaign is marked sent and its process count
// incremented; on delivery failure it is marked failed and the attempt
// surfaces as ErrDeliveryFailed, with all leads left untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, campaignID, mode string, ids []string) (*Result, error) {
	if mode == "" {
		mode = ModeExclude
	}
	if mode != ModeInclude && mode != ModeExclude {
		return nil, fmt.Errorf("unknown processing mode %q", mode)
	}

	campaign, err := d.campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.Status != models.CampaignApproved {
		return nil, ErrNotApproved
	}

	leads, err := d.selector.Select(campaignID, mode, ids)
	if err != nil {
		return nil, err
	}

	if err := d.client.Send(ctx, campaignID, mode, leads); err != nil {
		d.logger.Error("dispatch failed",
			"campaign_id", campaignID,
			"leads", len(leads),
			"error", err,
		)
		if markErr := d.campaigns.MarkDispatchFailed(campaignID); markErr != nil {
			return nil, fmt.Errorf("record dispatch failure: %w", markErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	if err := d.campaigns.MarkDispatched(campaignID, time.Now()); err != nil {
		return nil, fmt.Errorf("record dispatch success: %w", err)
	}

	d.logger.Info("campaign dispatched",
		"campaign_id", campaignID,
		"mode", mode,
		"leads", len(leads),
	)

	return &Result{
		CampaignID: campaignID,
		SentLeads:  len(leads),
		Mode:       mode,
	}, nil
}
