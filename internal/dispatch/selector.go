package dispatch

import (
	"github.com/leadbase/leadbase/internal/models"
	"github.com/leadbase/leadbase/internal/pipeline"
	"github.com/leadbase/leadbase/internal/repository"
)

// Selection modes. Exclude is the default: everything eligible except
// the listed ids, which with an empty list means the whole campaign.
const (
	ModeInclude = "include"
	ModeExclude = "exclude"
)

// Selector builds the exact subset of a campaign's leads that goes out
// in a dispatch.
type Selector struct {
	leads    *repository.LeadRepository
	resolver *pipeline.Resolver
}

func NewSelector(leads *repository.LeadRepository) *Selector {
	return &Selector{
		leads:    leads,
		resolver: pipeline.NewResolver(leads),
	}
}

// Select returns the leads of a campaign that are eligible to send:
// active, not suppressed by current unsubscribe state, and matching the
// include/exclude id filter. Suppression is recomputed against the
// store at call time, never read from a snapshot.
func (s *Selector) Select(campaignID, mode string, ids []string) ([]models.Lead, error) {
	active := true
	leads, _, err := s.leads.ListByCampaign(models.LeadFilter{CampaignID: campaignID, Active: &active})
	if err != nil {
		return nil, err
	}

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	selected := []models.Lead{}
	for _, l := range leads {
		_, listed := idSet[l.ID]
		if mode == ModeInclude {
			if !listed {
				continue
			}
		} else if listed {
			continue
		}

		suppressed, _, err := s.resolver.Resolve(pipeline.Normalize(l.Email))
		if err != nil {
			return nil, err
		}
		if suppressed {
			continue
		}

		selected = append(selected, l)
	}

	return selected, nil
}
