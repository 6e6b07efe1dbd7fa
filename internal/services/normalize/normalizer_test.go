package normalize

import (
	"strings"
	"testing"

	"github.com/ternarybob/vicinity/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		prompt       string
		locale       string
		wantKeyword  string
		wantTags     []string
		wantTier     int
		wantLocation string
	}{
		{
			name:        "ungrammatical prompt falls back to broad defaults",
			prompt:      "I want a eat something",
			locale:      "en",
			wantKeyword: DefaultKeyword,
			wantTags:    nil,
		},
		{
			name:        "empty prompt falls back to broad defaults",
			prompt:      "",
			locale:      "en",
			wantKeyword: DefaultKeyword,
		},
		{
			name:        "turkish prompt with typo",
			prompt:      "kebap istiyorum",
			locale:      "tr",
			wantKeyword: "kebab",
			wantTags:    []string{"kebab"},
		},
		{
			name:        "price signal detected",
			prompt:      "cheap pizza please",
			locale:      "en",
			wantKeyword: "pizza",
			wantTags:    []string{"pizza"},
			wantTier:    1,
		},
		{
			name:        "turkish premium signal",
			prompt:      "lüks balık restoran",
			locale:      "tr",
			wantKeyword: "seafood restaurant",
			wantTags:    []string{"seafood", "restaurant"},
			wantTier:    4,
		},
		{
			name:         "location hint extracted",
			prompt:       "pizza in kadıköy",
			locale:       "en",
			wantKeyword:  "pizza",
			wantTags:     []string{"pizza"},
			wantLocation: "kadıköy",
		},
		{
			name:        "typo substitution repairs category",
			prompt:      "a nice restorant",
			locale:      "en",
			wantKeyword: "restaurant",
			wantTags:    []string{"restaurant"},
		},
		{
			name:        "tourism tags recognized",
			prompt:      "museum and gallery",
			locale:      "en",
			wantKeyword: "museum gallery",
			wantTags:    []string{"museum", "gallery"},
		},
		{
			name:        "word containing a filler survives intact",
			prompt:      "banana dessert please",
			locale:      "en",
			wantKeyword: "dessert",
			wantTags:    []string{"dessert"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.prompt, tt.locale)

			if got.Keyword != tt.wantKeyword {
				t.Errorf("Normalize() keyword = %q, want %q", got.Keyword, tt.wantKeyword)
			}
			if len(tt.wantTags) > 0 {
				if strings.Join(got.Tags, ",") != strings.Join(tt.wantTags, ",") {
					t.Errorf("Normalize() tags = %v, want %v", got.Tags, tt.wantTags)
				}
			}
			if got.PriceTier != tt.wantTier {
				t.Errorf("Normalize() price tier = %d, want %d", got.PriceTier, tt.wantTier)
			}
			if got.LocationHint != tt.wantLocation {
				t.Errorf("Normalize() location hint = %q, want %q", got.LocationHint, tt.wantLocation)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	first := Normalize("Cheap pizza in Kadıköy please", "en")
	for i := 0; i < 10; i++ {
		again := Normalize("Cheap pizza in Kadıköy please", "en")
		if again.Keyword != first.Keyword || again.PriceTier != first.PriceTier ||
			again.LocationHint != first.LocationHint {
			t.Fatalf("Normalize() not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestStripFillersMatchesWholeTokensOnly(t *testing.T) {
	got := stripFillers([]string{"banana", "bread", "please"})
	if strings.Join(got, " ") != "banana bread" {
		t.Errorf("stripFillers() = %v, want [banana bread]", got)
	}

	got = stripFillers([]string{"i", "want", "a", "kebab"})
	if strings.Join(got, " ") != "kebab" {
		t.Errorf("stripFillers() = %v, want [kebab]", got)
	}
}

func TestMergeFilters(t *testing.T) {
	q := Normalize("pizza", "en")

	merged := MergeFilters(q, &models.SearchFilters{
		BudgetTier: 2,
		Categories: []string{"Burger"},
		Dietary:    []string{"vegan"},
	})

	if !merged.HasTag("pizza") || !merged.HasTag("burger") || !merged.HasTag("vegan") {
		t.Errorf("MergeFilters() tags = %v, want pizza+burger+vegan", merged.Tags)
	}
	if merged.PriceTier != 2 {
		t.Errorf("MergeFilters() price tier = %d, want 2", merged.PriceTier)
	}

	// Original query must stay untouched
	if len(q.Tags) != 1 {
		t.Errorf("MergeFilters() mutated input tags: %v", q.Tags)
	}
}

func TestBroadenKeyword(t *testing.T) {
	broadened := BroadenKeyword("sushi")
	for _, want := range []string{"sushi", "restaurant", "cafe", "food"} {
		if !strings.Contains(broadened, want) {
			t.Errorf("BroadenKeyword() = %q, missing %q", broadened, want)
		}
	}

	// No duplicate tokens when synonyms already present
	again := BroadenKeyword(broadened)
	if strings.Count(again, "restaurant") != 1 {
		t.Errorf("BroadenKeyword() duplicated tokens: %q", again)
	}
}
