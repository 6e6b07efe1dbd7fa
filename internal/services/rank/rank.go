// Package rank orders deduplicated place candidates by a weighted score.
// All functions are stateless and perform no I/O.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/ternarybob/vicinity/internal/models"
)

// Score formula weights
const (
	WeightRating   = 0.45
	WeightReviews  = 0.20
	WeightDistance = 0.35
)

// Review-count confidence saturates at this many ratings.
const reviewSaturation = 10000.0

// Distance decay half-scale in meters: a place this far away scores half
// the proximity weight of one at the origin.
const distanceDecayMeters = 1000.0

// Params configures one ranking pass.
type Params struct {
	OriginLatitude  float64
	OriginLongitude float64

	// SponsorBoostCap bounds the additive boost for places with a
	// currently-valid sponsorship. It caps how far a sponsored place can
	// climb past organically stronger results.
	SponsorBoostCap float64

	Now time.Time
}

// Scored pairs a place with its computed scores, retained for diagnostics.
type Scored struct {
	Place     models.Place
	BaseScore float64
	Boost     float64
	Distance  float64
}

// Rank orders places by final score descending. Ties break by distance
// ascending, then by name ascending, so output is reproducible.
func Rank(params Params, places []models.Place) []models.Place {
	scored := ScoreAll(params, places)

	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := scored[i].BaseScore+scored[i].Boost, scored[j].BaseScore+scored[j].Boost
		if si != sj {
			return si > sj
		}
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].Place.Name < scored[j].Place.Name
	})

	ranked := make([]models.Place, len(scored))
	for i, s := range scored {
		ranked[i] = s.Place
	}
	return ranked
}

// ScoreAll computes score components for every place.
func ScoreAll(params Params, places []models.Place) []Scored {
	scored := make([]Scored, len(places))
	for i, place := range places {
		distance := models.Haversine(params.OriginLatitude, params.OriginLongitude, place.Latitude, place.Longitude)
		base := BaseScore(place, distance)

		boost := 0.0
		if place.SponsorshipActive(params.Now) {
			boost = params.SponsorBoostCap
		}

		scored[i] = Scored{
			Place:     place,
			BaseScore: base,
			Boost:     boost,
			Distance:  distance,
		}
	}
	return scored
}

// BaseScore combines normalized rating, review-count confidence and distance
// decay into the organic score (0..1).
func BaseScore(place models.Place, distanceMeters float64) float64 {
	ratingNorm := 0.0
	if place.Rating != nil {
		ratingNorm = clamp(*place.Rating/5.0, 0, 1)
	}

	confidence := 0.0
	if place.UserRatingsTotal > 0 {
		confidence = clamp(math.Log10(1+float64(place.UserRatingsTotal))/math.Log10(1+reviewSaturation), 0, 1)
	}

	decay := distanceDecayMeters / (distanceDecayMeters + distanceMeters)

	return WeightRating*ratingNorm + WeightReviews*confidence + WeightDistance*decay
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
