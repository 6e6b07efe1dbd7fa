// Package normalize derives deterministic search terms from free-text
// prompts. All functions are stateless and perform no I/O.
package normalize

import (
	"strings"

	"github.com/ternarybob/vicinity/internal/models"
)

// DefaultKeyword is the broad fallback used when no category can be
// recognized in the prompt. The pipeline never operates on an empty keyword.
const DefaultKeyword = "restaurant cafe pizza burger"

// fillerPhrases are stripped at token boundaries before category analysis.
// Longer phrases come first so they win over their prefixes.
var fillerPhrases = []string{
	"i would like to eat",
	"i would like",
	"i want to eat",
	"i want a",
	"i want",
	"can you find",
	"show me",
	"yemek istiyorum",
	"istiyorum",
	"bana bir",
	"bana",
	"lütfen",
	"please",
	"something",
	"somewhere",
	"bir şeyler",
	"var mı",
}

// fillerSequences holds the filler phrases pre-split into tokens so
// stripping can match whole tokens only.
var fillerSequences = func() [][]string {
	seqs := make([][]string, 0, len(fillerPhrases))
	for _, phrase := range fillerPhrases {
		seqs = append(seqs, strings.Fields(phrase))
	}
	return seqs
}()

// substitutions repairs common typos and concatenation errors.
var substitutions = map[string]string{
	"restorant":  "restaurant",
	"restoraunt": "restaurant",
	"resturant":  "restaurant",
	"cofee":      "coffee",
	"coffe":      "coffee",
	"hamburguer": "burger",
	"hamburger":  "burger",
	"icecream":   "ice cream",
	"pizzeria":   "pizza",
	"kebap":      "kebab",
	"doner":      "döner",
}

// categoryDictionary maps prompt tokens to category tags (EN + TR).
var categoryDictionary = map[string]string{
	"restaurant": "restaurant",
	"restoran":   "restaurant",
	"lokanta":    "restaurant",
	"cafe":       "cafe",
	"kafe":       "cafe",
	"coffee":     "cafe",
	"kahve":      "cafe",
	"pizza":      "pizza",
	"burger":     "burger",
	"kebab":      "kebab",
	"döner":      "kebab",
	"sushi":      "sushi",
	"seafood":    "seafood",
	"fish":       "seafood",
	"balık":      "seafood",
	"dessert":    "dessert",
	"tatlı":      "dessert",
	"bakery":     "bakery",
	"fırın":      "bakery",
	"breakfast":  "breakfast",
	"kahvaltı":   "breakfast",
	"bar":        "bar",
	"vegan":      "vegan",
	"museum":     "museum",
	"müze":       "museum",
	"gallery":    "gallery",
	"galeri":     "gallery",
	"history":    "history",
	"historical": "history",
	"tarihi":     "history",
	"tourist":    "tourism",
	"tourism":    "tourism",
	"turistik":   "tourism",
	"culture":    "culture",
	"cultural":   "culture",
	"kültür":     "culture",
	"park":       "park",
}

// priceSignals maps tokens to a coarse price tier (1 = budget .. 4 = premium).
var priceSignals = map[string]int{
	"cheap":      1,
	"budget":     1,
	"affordable": 1,
	"ucuz":       1,
	"uygun":      1,
	"expensive":  4,
	"fancy":      4,
	"upscale":    4,
	"pahalı":     4,
	"lüks":       4,
}

// knownPlaceNames are location-hint substrings scanned against the prompt.
var knownPlaceNames = []string{
	"kadıköy",
	"beşiktaş",
	"taksim",
	"sultanahmet",
	"galata",
	"karaköy",
	"üsküdar",
	"moda",
	"bebek",
	"nişantaşı",
}

// genericSynonyms broaden the keyword set after a zero-result outcome.
var genericSynonyms = []string{"restaurant", "cafe", "food", "bistro"}

// Normalize derives a NormalizedQuery from a raw prompt and locale. The
// derivation is deterministic; identical input always yields identical
// output.
func Normalize(prompt, locale string) models.NormalizedQuery {
	cleaned := strings.ToLower(strings.TrimSpace(prompt))

	tokens := stripFillers(tokenize(cleaned))
	for i, tok := range tokens {
		if repl, ok := substitutions[tok]; ok {
			tokens[i] = repl
		}
	}

	var tags []string
	seen := map[string]bool{}
	priceTier := 0
	for _, tok := range tokens {
		if tag, ok := categoryDictionary[tok]; ok && !seen[tag] {
			tags = append(tags, tag)
			seen[tag] = true
		}
		if tier, ok := priceSignals[tok]; ok && priceTier == 0 {
			priceTier = tier
		}
	}

	locationHint := ""
	for _, name := range knownPlaceNames {
		if strings.Contains(cleaned, name) {
			locationHint = name
			break
		}
	}

	keyword := strings.Join(tags, " ")
	if keyword == "" {
		keyword = DefaultKeyword
	}

	return models.NormalizedQuery{
		Keyword:      keyword,
		LocationHint: locationHint,
		Tags:         tags,
		PriceTier:    priceTier,
	}
}

// MergeFilters folds structured filters into an already-normalized query,
// returning a new query. Filter categories become additional tags; the
// budget tier overrides a weaker prompt signal.
func MergeFilters(q models.NormalizedQuery, filters *models.SearchFilters) models.NormalizedQuery {
	if filters == nil {
		return q
	}

	merged := q
	tags := append([]string(nil), q.Tags...)
	seen := map[string]bool{}
	for _, t := range tags {
		seen[t] = true
	}
	addTag := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" && !seen[c] {
			tags = append(tags, c)
			seen[c] = true
		}
	}
	for _, c := range filters.Categories {
		addTag(c)
	}
	for _, d := range filters.Dietary {
		addTag(d)
	}
	merged.Tags = tags
	if filters.BudgetTier > 0 {
		merged.PriceTier = filters.BudgetTier
	}
	if len(merged.Tags) > 0 {
		merged.Keyword = strings.Join(merged.Tags, " ")
	}
	return merged
}

// BroadenKeyword appends generic synonyms missing from the keyword set. Used
// by the radius-widening retry so a narrow query does not stay narrow at a
// larger radius.
func BroadenKeyword(keyword string) string {
	present := map[string]bool{}
	for _, tok := range strings.Fields(keyword) {
		present[tok] = true
	}
	broadened := strings.Fields(keyword)
	for _, syn := range genericSynonyms {
		if !present[syn] {
			broadened = append(broadened, syn)
		}
	}
	return strings.Join(broadened, " ")
}

// IsCulturalTag reports whether a tag belongs to the tourism/culture domain
// that the commercial places index under-serves.
func IsCulturalTag(tag string) bool {
	switch tag {
	case "museum", "gallery", "history", "tourism", "culture":
		return true
	}
	return false
}

// stripFillers removes filler phrases as whole-token sequences. Matching on
// tokens keeps words that merely contain a filler, like "banana", intact.
func stripFillers(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		skip := 0
		for _, seq := range fillerSequences {
			if matchesAt(tokens, i, seq) {
				skip = len(seq)
				break
			}
		}
		if skip > 0 {
			i += skip
			continue
		}
		kept = append(kept, tokens[i])
		i++
	}
	return kept
}

// matchesAt reports whether seq appears in tokens starting at position i.
func matchesAt(tokens []string, i int, seq []string) bool {
	if i+len(seq) > len(tokens) {
		return false
	}
	for j, word := range seq {
		if tokens[i+j] != word {
			return false
		}
	}
	return true
}

// tokenize splits cleaned text into lowercase word tokens, dropping
// punctuation.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			return false
		default:
			return true
		}
	})
}
