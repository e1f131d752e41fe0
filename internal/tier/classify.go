// Package tier derives contractor size categories and trust tiers.
//
// Trust tier has exactly one authoritative derivation (Reclassify) so that
// thresholds cannot drift between call sites.
package tier

import (
	"strings"

	"github.com/instabids/outreach/internal/types"
)

// Keyword signals for size classification, checked against the business
// name and tags in order from largest to smallest.
var (
	nationalKeywords = []string{"national", "nationwide", "franchise", "corporate", "usa", "america"}
	regionalKeywords = []string{"regional", "statewide", "group", "enterprises", "holdings"}
	midKeywords      = []string{"inc", "incorporated", "company", "co.", "construction", "builders"}
)

// ClassifySize derives the provider size category from candidate
// attributes. The result is deterministic and never persisted as
// authoritative.
func ClassifySize(c *types.Candidate) types.ProviderSize {
	haystack := strings.ToLower(c.BusinessName)
	for _, tag := range c.Tags {
		haystack += " " + strings.ToLower(tag)
	}

	if containsAny(haystack, nationalKeywords) {
		return types.SizeNational
	}
	if containsAny(haystack, regionalKeywords) {
		return types.SizeLargeRegional
	}

	// Volume heuristics: a long track record with many ratings reads as a
	// larger operation even without naming signals.
	if c.RatingCount >= 200 && c.YearsActive >= 10 {
		return types.SizeLargeRegional
	}
	if containsAny(haystack, midKeywords) || c.RatingCount >= 50 {
		return types.SizeMidSized
	}
	return types.SizeSmallLocal
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
