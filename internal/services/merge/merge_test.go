package merge

import (
	"testing"

	"github.com/ternarybob/vicinity/internal/models"
)

func testConfig() Config {
	return Config{
		DistanceThresholdMeters: 70,
		NameSimilarityThreshold: 0.55,
		ProviderPriority:        []string{"googleplaces", "opentripmap"},
	}
}

func place(provider, id, name string, lat, lng float64, rating *float64) models.Place {
	return models.Place{
		ID:        id,
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Provider:  provider,
		Rating:    rating,
	}
}

func ratingPtr(v float64) *float64 { return &v }

func TestMergeDropsNearDuplicates(t *testing.T) {
	cfg := testConfig()

	google := []models.Place{
		place("googleplaces", "g1", "Karaköy Lokantası", 41.02300, 28.97800, ratingPtr(4.5)),
	}
	otm := []models.Place{
		// ~22m away, near-identical name: same physical place
		place("opentripmap", "o1", "Karakoy Lokantasi", 41.02320, 28.97800, nil),
		// Far away: distinct
		place("opentripmap", "o2", "Karaköy Lokantası", 41.04000, 28.97800, nil),
	}

	merged := Merge(cfg, google, otm)
	if len(merged) != 2 {
		t.Fatalf("Merge() returned %d places, want 2: %+v", len(merged), merged)
	}

	// The duplicate winner must be the higher-priority provider's record
	for _, p := range merged {
		if p.ID == "o1" {
			t.Error("Merge() kept the lower-priority duplicate")
		}
	}
}

func TestMergeSimilarNamesOnlyWhenClose(t *testing.T) {
	cfg := testConfig()

	a := []models.Place{place("googleplaces", "g1", "Blue Bottle Coffee", 41.0230, 28.9780, nil)}
	// Same spot, unrelated name: both survive
	b := []models.Place{place("opentripmap", "o1", "Galata Tower", 41.0230, 28.9780, nil)}

	merged := Merge(cfg, a, b)
	if len(merged) != 2 {
		t.Errorf("Merge() returned %d places, want 2 (dissimilar names)", len(merged))
	}
}

func TestMergeOrderIndependentMembership(t *testing.T) {
	cfg := testConfig()

	google := []models.Place{place("googleplaces", "g1", "Pide Palace", 41.0230, 28.9780, ratingPtr(4.2))}
	otm := []models.Place{place("opentripmap", "o1", "Pide Palace", 41.0231, 28.9780, nil)}

	forward := Merge(cfg, google, otm)
	reverse := Merge(cfg, otm, google)

	if len(forward) != 1 || len(reverse) != 1 {
		t.Fatalf("Merge() counts differ: forward=%d reverse=%d", len(forward), len(reverse))
	}
	if forward[0].ID != reverse[0].ID {
		t.Errorf("Merge() winner depends on input order: %s vs %s", forward[0].ID, reverse[0].ID)
	}
	if forward[0].Provider != "googleplaces" {
		t.Errorf("Merge() winner = %s, want higher-priority googleplaces", forward[0].Provider)
	}
}

func TestMergeRatingBreaksPriorityTie(t *testing.T) {
	cfg := testConfig()
	cfg.ProviderPriority = nil // no priority configured, both rank last

	withRating := []models.Place{place("googleplaces", "g1", "Moda Cafe", 41.0230, 28.9780, ratingPtr(4.0))}
	withoutRating := []models.Place{place("opentripmap", "o1", "Moda Cafe", 41.0231, 28.9780, nil)}

	merged := Merge(cfg, withoutRating, withRating)
	if len(merged) != 1 {
		t.Fatalf("Merge() returned %d places, want 1", len(merged))
	}
	if merged[0].ID != "g1" {
		t.Errorf("Merge() winner = %s, want the rated record g1", merged[0].ID)
	}
}

// TestMergeNoSurvivingDuplicates verifies the core dedup property: no two
// output records are within the distance threshold with matching names.
func TestMergeNoSurvivingDuplicates(t *testing.T) {
	cfg := testConfig()

	var lists [][]models.Place
	for i := 0; i < 3; i++ {
		lists = append(lists, []models.Place{
			place("googleplaces", "g", "Sample Cafe", 41.02300, 28.97800, nil),
			place("opentripmap", "o", "Sample Cafe", 41.02301, 28.97801, nil),
		})
	}

	merged := Merge(cfg, lists...)
	for i := range merged {
		for j := i + 1; j < len(merged); j++ {
			if SamePlace(cfg, &merged[i], &merged[j]) {
				t.Errorf("Merge() output contains duplicates: %+v and %+v", merged[i], merged[j])
			}
		}
	}
	if len(merged) != 1 {
		t.Errorf("Merge() returned %d places, want 1", len(merged))
	}
}
