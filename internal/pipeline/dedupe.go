package pipeline

import "github.com/leadbase/leadbase/internal/models"

// Candidate is a validated lead on its way through the ingestion
// funnel, keyed by its normalized email.
type Candidate struct {
	Lead       models.Lead
	Normalized string
}

// Dedupe collapses a batch to one candidate per normalized email,
// keeping the first occurrence. Candidates with an empty normalized
// email are dropped silently and do not count as duplicates.
func Dedupe(cands []Candidate) ([]Candidate, int) {
	seen := make(map[string]struct{}, len(cands))
	kept := make([]Candidate, 0, len(cands))
	duplicates := 0

	for _, c := range cands {
		if c.Normalized == "" {
			continue
		}
		if _, ok := seen[c.Normalized]; ok {
			duplicates++
			continue
		}
		seen[c.Normalized] = struct{}{}
		kept = append(kept, c)
	}

	return kept, duplicates
}

// DedupeWithStatus collapses a batch to one candidate per normalized
// email, reconciling conflicting subscription state instead of blindly
// keeping the first record. Used by campaign merges, where duplicates
// from different source campaigns may disagree.
//
// Precedence: an explicit manual status beats an absent one; when both
// or neither carry one, the unsubscribed record wins over the
// subscribed one. A merge must never silently resubscribe an address.
func DedupeWithStatus(cands []Candidate) ([]Candidate, int) {
	index := make(map[string]int, len(cands))
	kept := make([]Candidate, 0, len(cands))
	duplicates := 0

	for _, c := range cands {
		if c.Normalized == "" {
			continue
		}
		if i, ok := index[c.Normalized]; ok {
			duplicates++
			kept[i] = moreAuthoritative(kept[i], c)
			continue
		}
		index[c.Normalized] = len(kept)
		kept = append(kept, c)
	}

	return kept, duplicates
}

// moreAuthoritative picks the record whose subscription state should
// survive a merge conflict. Ties keep the first-seen record a.
func moreAuthoritative(a, b Candidate) Candidate {
	aManual := a.Lead.EmailStatus != ""
	bManual := b.Lead.EmailStatus != ""

	if aManual != bManual {
		if bManual {
			return b
		}
		return a
	}

	// Same authority level: the restrictive outcome wins.
	if unsubscribed(a) {
		return a
	}
	if unsubscribed(b) {
		return b
	}
	return a
}

func unsubscribed(c Candidate) bool {
	if c.Lead.EmailStatus != "" {
		return c.Lead.EmailStatus == models.StatusUnsubscribed
	}
	return c.Lead.UnsubscribeStatus == models.StatusUnsubscribed
}
