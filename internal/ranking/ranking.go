package ranking

import (
	"math"
	"sort"

	"github.com/fixmarket/fixmarket/internal/database"
)

// earthRadiusKm is the spherical-Earth radius used for proximity ordering.
const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance in kilometers between two
// points given in decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ByProximity orders offers ascending by haversine distance from the
// requester point. Offers without stored coordinates cannot be placed in a
// distance ordering and are dropped. The input slice is not modified; the
// sort is stable so equidistant offers keep their incoming order.
func ByProximity(offers []*database.Offer, lat, lon float64) []*database.Offer {
	type scored struct {
		offer    *database.Offer
		distance float64
	}

	ranked := make([]scored, 0, len(offers))
	for _, o := range offers {
		if o.Latitude == nil || o.Longitude == nil {
			continue
		}
		ranked = append(ranked, scored{
			offer:    o,
			distance: HaversineKm(lat, lon, *o.Latitude, *o.Longitude),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	result := make([]*database.Offer, len(ranked))
	for i, s := range ranked {
		result[i] = s.offer
	}
	return result
}

// ByNewest orders offers descending by primary identifier, the storefront
// default. The serial ID is monotonic, so this is insertion order reversed.
func ByNewest(offers []*database.Offer) []*database.Offer {
	result := make([]*database.Offer, len(offers))
	copy(result, offers)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result
}
