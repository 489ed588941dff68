package pipeline

import "strings"

// Normalize canonicalizes an email address for comparison: ASCII
// lowercase, surrounding whitespace trimmed. An empty result means the
// record has no identity and must be dropped by the caller.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
