package models

import (
	"fmt"
	"strings"
	"time"
)

// Place represents an individual place candidate returned by a provider.
type Place struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Category         string     `json:"category,omitempty"`
	Rating           *float64   `json:"rating,omitempty"`
	UserRatingsTotal int        `json:"user_ratings_total,omitempty"`
	PriceLevel       *int       `json:"price_level,omitempty"`
	Provider         string     `json:"provider"`
	Sponsored        bool       `json:"sponsored,omitempty"`
	SponsoredUntil   *time.Time `json:"sponsored_until,omitempty"`
	PhotoReference   string     `json:"photo_reference,omitempty"`
}

// SponsorshipActive reports whether the place carries a currently-valid
// sponsorship flag. An expired SponsoredUntil disables the flag.
func (p *Place) SponsorshipActive(now time.Time) bool {
	if !p.Sponsored {
		return false
	}
	if p.SponsoredUntil == nil {
		return false
	}
	return p.SponsoredUntil.After(now)
}

// NormalizedName returns the name folded for duplicate comparison:
// lowercased, punctuation stripped, whitespace collapsed.
func (p *Place) NormalizedName() string {
	return NormalizePlaceName(p.Name)
}

// DedupKey derives the identity used for duplicate detection. Two providers
// assign different ids to the same physical location, so identity comes from
// rounded coordinates plus the normalized name rather than the provider id.
func (p *Place) DedupKey() string {
	return fmt.Sprintf("%.3f:%.3f:%s", p.Latitude, p.Longitude, p.NormalizedName())
}

// NormalizePlaceName folds a place name for comparison purposes.
func NormalizePlaceName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
