package pipeline

import (
	"strings"

	"github.com/leadbase/leadbase/internal/models"
)

// Suppressed applies the subscription decision table to a pair of
// statuses. A manual action always overrides the externally reported
// signal in either direction; absent manual action the external signal
// governs. Unset on both sides reads as subscribed.
func Suppressed(manual, external string) bool {
	switch manual {
	case models.StatusUnsubscribed:
		return true
	case models.StatusSubscribed:
		return false
	}
	return external == models.StatusUnsubscribed
}

// LeadLookup is the store query the resolver needs: the most recently
// created lead for a normalized address, across all campaigns.
type LeadLookup interface {
	LatestByEmail(normalized string) (*models.Lead, error)
}

// Resolver decides whether incoming data for an address is suppressed
// by stored unsubscribe state. The same resolver serves every ingestion
// surface and the dispatch selector, so the rule cannot drift between
// entry points.
type Resolver struct {
	leads LeadLookup
}

func NewResolver(leads LeadLookup) *Resolver {
	return &Resolver{leads: leads}
}

// Resolve returns the suppression verdict for a normalized email along
// with the stored lead the verdict came from (nil when the address has
// never been seen, in which case nothing is suppressed).
func (r *Resolver) Resolve(normalized string) (bool, *models.Lead, error) {
	lead, err := r.leads.LatestByEmail(normalized)
	if err != nil {
		return false, nil, err
	}
	if lead == nil {
		return false, nil, nil
	}
	return Suppressed(lead.EmailStatus, lead.UnsubscribeStatus), lead, nil
}

// normalizeStatus maps free-form status input onto the two known values;
// anything else is treated as unset.
func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.StatusSubscribed:
		return models.StatusSubscribed
	case models.StatusUnsubscribed:
		return models.StatusUnsubscribed
	}
	return ""
}
