package pipeline

import (
	"testing"

	"github.com/leadbase/leadbase/internal/models"
)

func TestSuppressed_DecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		manual   string
		external string
		want     bool
	}{
		{"manual unsubscribe wins over external subscribe", "unsubscribed", "subscribed", true},
		{"manual unsubscribe wins over external unset", "unsubscribed", "", true},
		{"manual unsubscribe wins over external unsubscribe", "unsubscribed", "unsubscribed", true},
		{"manual subscribe overrides external unsubscribe", "subscribed", "unsubscribed", false},
		{"manual subscribe with external unset", "subscribed", "", false},
		{"manual subscribe with external subscribe", "subscribed", "subscribed", false},
		{"no manual, external unsubscribe governs", "", "unsubscribed", true},
		{"no manual, external subscribe", "", "subscribed", false},
		{"both unset reads as subscribed", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suppressed(tt.manual, tt.external); got != tt.want {
				t.Errorf("Suppressed(%q, %q) = %v, want %v", tt.manual, tt.external, got, tt.want)
			}
		})
	}
}

// fakeLookup serves canned leads per normalized email
type fakeLookup struct {
	leads map[string]*models.Lead
	err   error
}

func (f *fakeLookup) LatestByEmail(normalized string) (*models.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.leads[normalized], nil
}

func TestResolver_Resolve(t *testing.T) {
	lookup := &fakeLookup{leads: map[string]*models.Lead{
		"gone@example.com": {Email: "gone@example.com", UnsubscribeStatus: models.StatusUnsubscribed},
		"kept@example.com": {Email: "kept@example.com", EmailStatus: models.StatusSubscribed, UnsubscribeStatus: models.StatusUnsubscribed},
	}}
	r := NewResolver(lookup)

	drop, prior, err := r.Resolve("gone@example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !drop {
		t.Error("Resolve() external unsubscribe not suppressed")
	}
	if prior == nil {
		t.Error("Resolve() did not return the stored lead")
	}

	// Manual subscribe overrides the external unsubscribe
	drop, _, err = r.Resolve("kept@example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if drop {
		t.Error("Resolve() suppressed despite manual subscribe")
	}

	// Unknown address: never suppressed
	drop, prior, err = r.Resolve("new@example.com")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if drop || prior != nil {
		t.Errorf("Resolve(unknown) = %v, %v, want false, nil", drop, prior)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"subscribed", "subscribed"},
		{"UNSUBSCRIBED", "unsubscribed"},
		{" Subscribed ", "subscribed"},
		{"", ""},
		{"bounced", ""},
	}

	for _, tt := range tests {
		if got := normalizeStatus(tt.in); got != tt.want {
			t.Errorf("normalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
