// Package merge combines candidate lists from multiple providers into one
// deduplicated set. All functions are stateless and perform no I/O.
package merge

import (
	"sort"

	"github.com/agext/levenshtein"

	"github.com/ternarybob/vicinity/internal/models"
)

// Config tunes duplicate detection and conflict resolution.
type Config struct {
	// DistanceThresholdMeters is the great-circle distance below which two
	// candidates may be the same physical place.
	DistanceThresholdMeters float64

	// NameSimilarityThreshold is the minimum normalized-name similarity
	// (0..1) for two nearby candidates to count as duplicates.
	NameSimilarityThreshold float64

	// ProviderPriority lists providers highest-priority first; the winner of
	// a duplicate conflict comes from the earlier provider.
	ProviderPriority []string
}

// Merge combines candidate lists into one deduplicated sequence. Two
// candidates are the same physical place when they are within the distance
// threshold and their normalized names are sufficiently similar. On conflict
// the whole record of the stronger candidate is kept; fields are never
// merged. Input order does not affect membership.
func Merge(cfg Config, lists ...[]models.Place) []models.Place {
	var candidates []models.Place
	for _, list := range lists {
		candidates = append(candidates, list...)
	}
	if len(candidates) <= 1 {
		return candidates
	}

	rank := providerRank(cfg.ProviderPriority)

	// Strongest candidates first, so the greedy scan below keeps winners and
	// drops their duplicates regardless of input order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return stronger(&candidates[i], &candidates[j], rank)
	})

	var merged []models.Place
	for _, candidate := range candidates {
		if !isDuplicateOfAny(cfg, &candidate, merged) {
			merged = append(merged, candidate)
		}
	}
	return merged
}

// SamePlace reports whether two candidates refer to the same physical place
// under the configured thresholds.
func SamePlace(cfg Config, a, b *models.Place) bool {
	if models.Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude) >= cfg.DistanceThresholdMeters {
		return false
	}
	similarity := levenshtein.Similarity(a.NormalizedName(), b.NormalizedName(), nil)
	return similarity >= cfg.NameSimilarityThreshold
}

func isDuplicateOfAny(cfg Config, candidate *models.Place, kept []models.Place) bool {
	for i := range kept {
		if SamePlace(cfg, candidate, &kept[i]) {
			return true
		}
	}
	return false
}

// stronger orders duplicate-conflict winners: higher-priority provider, then
// a non-nil rating, then deterministic name/id ordering so ties cannot
// depend on input order.
func stronger(a, b *models.Place, rank map[string]int) bool {
	ra, rb := providerRankOf(a.Provider, rank), providerRankOf(b.Provider, rank)
	if ra != rb {
		return ra < rb
	}
	if (a.Rating != nil) != (b.Rating != nil) {
		return a.Rating != nil
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func providerRank(priority []string) map[string]int {
	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		rank[name] = i
	}
	return rank
}

func providerRankOf(provider string, rank map[string]int) int {
	if r, ok := rank[provider]; ok {
		return r
	}
	return len(rank) // unlisted providers sort last
}
