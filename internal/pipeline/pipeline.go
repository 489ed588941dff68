package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/leadbase/leadbase/internal/models"
	"github.com/leadbase/leadbase/internal/repository"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrTooFewCampaigns  = errors.New("merge requires at least two campaigns")
	ErrNoLeads          = errors.New("no leads in batch")
)

// DedupeMode selects which deduplication variant the funnel applies.
type DedupeMode int

const (
	// FirstSeen keeps the first occurrence per normalized email.
	FirstSeen DedupeMode = iota
	// StatusAware reconciles conflicting subscription state between
	// duplicates. Campaign merges use this.
	StatusAware
)

// CampaignMeta describes the campaign a batch lands in. With an empty
// ID a fresh campaign is created inside the ingestion transaction;
// otherwise the batch joins the existing one.
type CampaignMeta struct {
	ID          string
	Name        string
	Description string
	Source      string
	Merged      bool
}

// Pipeline is the single ingestion funnel. Every entry point (CSV
// upload, JSON upload, campaign merge, single-lead add) assembles raw
// leads its own way and hands them here, so validation, suppression and
// deduplication behave identically across all of them.
type Pipeline struct {
	db        *sql.DB
	campaigns *repository.CampaignRepository
	leads     *repository.LeadRepository
	resolver  *Resolver
	logger    *slog.Logger
}

func New(db *sql.DB, campaigns *repository.CampaignRepository, leads *repository.LeadRepository, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		db:        db,
		campaigns: campaigns,
		leads:     leads,
		resolver:  NewResolver(leads),
		logger:    logger.With("component", "pipeline"),
	}
}

const defaultScore = 5

// Ingest runs a raw batch through the funnel in strict order: validate,
// resolve suppression, dedupe, assign tokens, persist. Persistence of
// the campaign and all surviving leads happens in one transaction, so a
// failure partway commits nothing.
//
// Suppression runs before deduplication on purpose: stored unsubscribe
// state is folded into each candidate first, so the dedup step can
// reconcile duplicates without ever contradicting the decision table.
func (p *Pipeline) Ingest(ctx context.Context, meta CampaignMeta, raws []models.RawLead, mode DedupeMode) (*models.IngestResult, error) {
	// 1. Validate
	candidates := make([]Candidate, 0, len(raws))
	for _, raw := range raws {
		c, ok := p.validate(meta, raw)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
	}

	// 2. Resolve subscription state; drop and count suppressed
	eligible := make([]Candidate, 0, len(candidates))
	suppressed := 0
	for _, c := range candidates {
		drop, prior, err := p.resolver.Resolve(c.Normalized)
		if err != nil {
			return nil, fmt.Errorf("subscription lookup for %s: %w", c.Normalized, err)
		}
		if drop {
			suppressed++
			continue
		}
		// Carry forward known state so later steps and future
		// ingestions see it.
		if prior != nil {
			if c.Lead.EmailStatus == "" {
				c.Lead.EmailStatus = prior.EmailStatus
			}
			if c.Lead.UnsubscribeStatus == "" {
				c.Lead.UnsubscribeStatus = prior.UnsubscribeStatus
			}
		}
		eligible = append(eligible, c)
	}

	// 3. Dedupe
	var kept []Candidate
	var duplicates int
	switch mode {
	case StatusAware:
		kept, duplicates = DedupeWithStatus(eligible)
	default:
		kept, duplicates = Dedupe(eligible)
	}

	// 4. Fresh unsubscribe token for every survivor lacking one
	for i := range kept {
		if kept[i].Lead.UnsubscribeToken == "" {
			kept[i].Lead.UnsubscribeToken = uuid.New().String()
		}
	}

	// 5. Persist campaign, then leads, atomically
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ingest transaction: %w", err)
	}
	defer tx.Rollback()

	campaignID := meta.ID
	if campaignID == "" {
		campaign := &models.Campaign{
			Name:        meta.Name,
			Description: meta.Description,
			Merged:      meta.Merged,
		}
		if err := p.campaigns.CreateTx(tx, campaign); err != nil {
			return nil, err
		}
		campaignID = campaign.ID
	}

	for i := range kept {
		kept[i].Lead.CampaignID = campaignID
		if err := p.leads.CreateTx(tx, &kept[i].Lead); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ingest transaction: %w", err)
	}

	result := &models.IngestResult{
		CampaignID:        campaignID,
		Added:             len(kept),
		DuplicatesRemoved: duplicates,
		Suppressed:        suppressed,
	}

	p.logger.Info("batch ingested",
		"campaign_id", result.CampaignID,
		"added", result.Added,
		"duplicates_removed", result.DuplicatesRemoved,
		"suppressed", result.Suppressed,
	)

	return result, nil
}

// validate applies per-record validation: a record needs an email
// identity and a first name; score coerces to an integer with a default
// of 5; everything else defaults to empty.
func (p *Pipeline) validate(meta CampaignMeta, raw models.RawLead) (Candidate, bool) {
	normalized := Normalize(raw.Email)
	if normalized == "" || strings.TrimSpace(raw.FirstName) == "" {
		return Candidate{}, false
	}

	score, err := strconv.Atoi(strings.TrimSpace(raw.Score))
	if err != nil {
		score = defaultScore
	}

	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = meta.Source
	}

	return Candidate{
		Normalized: normalized,
		Lead: models.Lead{
			FirstName:         strings.TrimSpace(raw.FirstName),
			LastName:          strings.TrimSpace(raw.LastName),
			Email:             strings.TrimSpace(raw.Email),
			Company:           raw.Company,
			Domain:            raw.Domain,
			Score:             score,
			Label:             raw.Label,
			Description:       raw.Description,
			Source:            source,
			Active:            true,
			EmailStatus:       normalizeStatus(raw.EmailStatus),
			UnsubscribeStatus: normalizeStatus(raw.UnsubscribeStatus),
		},
	}, true
}

// Merge consolidates the leads of two or more campaigns into a fresh
// campaign, funneling them through the same ingestion path with
// status-aware deduplication. The source campaigns are retained.
func (p *Pipeline) Merge(ctx context.Context, name string, campaignIDs []string) (*models.IngestResult, error) {
	if len(campaignIDs) < 2 {
		return nil, ErrTooFewCampaigns
	}

	raws := []models.RawLead{}
	for _, id := range campaignIDs {
		campaign, err := p.campaigns.GetByID(id)
		if err != nil {
			return nil, err
		}
		if campaign == nil {
			return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
		}

		leads, _, err := p.leads.ListByCampaign(models.LeadFilter{CampaignID: id})
		if err != nil {
			return nil, err
		}
		for _, l := range leads {
			raws = append(raws, models.RawLead{
				FirstName:         l.FirstName,
				LastName:          l.LastName,
				Email:             l.Email,
				Company:           l.Company,
				Domain:            l.Domain,
				Score:             strconv.Itoa(l.Score),
				Label:             l.Label,
				Description:       l.Description,
				EmailStatus:       l.EmailStatus,
				UnsubscribeStatus: l.UnsubscribeStatus,
			})
		}
	}

	meta := CampaignMeta{
		Name:   name,
		Source: "merge",
		Merged: true,
	}
	return p.Ingest(ctx, meta, raws, StatusAware)
}
