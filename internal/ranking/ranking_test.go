package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmarket/fixmarket/internal/database"
)

func ptr(v float64) *float64 { return &v }

var (
	warsawLat = 52.2297
	warsawLon = 21.0122
	krakowLat = 50.0647
	krakowLon = 19.9450
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(warsawLat, warsawLon, warsawLat, warsawLon), 0.001)
}

func TestHaversineKm_WarsawKrakow(t *testing.T) {
	d := HaversineKm(warsawLat, warsawLon, krakowLat, krakowLon)
	assert.InDelta(t, 252, d, 5)
}

func TestHaversineKm_Symmetric(t *testing.T) {
	d1 := HaversineKm(warsawLat, warsawLon, krakowLat, krakowLon)
	d2 := HaversineKm(krakowLat, krakowLon, warsawLat, warsawLon)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestByProximity_WarsawRequester(t *testing.T) {
	offers := []*database.Offer{
		{ID: 1, Title: "Hydraulik Kraków", Latitude: ptr(krakowLat), Longitude: ptr(krakowLon)},
		{ID: 2, Title: "Hydraulik Warszawa", Latitude: ptr(warsawLat), Longitude: ptr(warsawLon)},
	}

	ranked := ByProximity(offers, warsawLat, warsawLon)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].ID)
	assert.Equal(t, int64(1), ranked[1].ID)
}

func TestByProximity_DropsOffersWithoutCoordinates(t *testing.T) {
	offers := []*database.Offer{
		{ID: 1, Latitude: ptr(warsawLat), Longitude: ptr(warsawLon)},
		{ID: 2},
		{ID: 3, Latitude: ptr(krakowLat)},
		{ID: 4, Longitude: ptr(krakowLon)},
	}

	ranked := ByProximity(offers, warsawLat, warsawLon)
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(1), ranked[0].ID)
}

func TestByProximity_NonDecreasingDistance(t *testing.T) {
	offers := []*database.Offer{
		{ID: 1, Latitude: ptr(54.3520), Longitude: ptr(18.6466)}, // Gdańsk
		{ID: 2, Latitude: ptr(krakowLat), Longitude: ptr(krakowLon)},
		{ID: 3, Latitude: ptr(51.7592), Longitude: ptr(19.4560)}, // Łódź
		{ID: 4, Latitude: ptr(warsawLat), Longitude: ptr(warsawLon)},
	}

	ranked := ByProximity(offers, warsawLat, warsawLon)
	require.Len(t, ranked, 4)
	prev := -1.0
	for _, o := range ranked {
		d := HaversineKm(warsawLat, warsawLon, *o.Latitude, *o.Longitude)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
	assert.Equal(t, int64(4), ranked[0].ID)
}

func TestByProximity_StableForEquidistant(t *testing.T) {
	offers := []*database.Offer{
		{ID: 10, Latitude: ptr(krakowLat), Longitude: ptr(krakowLon)},
		{ID: 20, Latitude: ptr(krakowLat), Longitude: ptr(krakowLon)},
	}

	ranked := ByProximity(offers, warsawLat, warsawLon)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(10), ranked[0].ID)
	assert.Equal(t, int64(20), ranked[1].ID)
}

func TestByProximity_DoesNotMutateInput(t *testing.T) {
	offers := []*database.Offer{
		{ID: 1, Latitude: ptr(krakowLat), Longitude: ptr(krakowLon)},
		{ID: 2, Latitude: ptr(warsawLat), Longitude: ptr(warsawLon)},
	}

	ByProximity(offers, warsawLat, warsawLon)
	assert.Equal(t, int64(1), offers[0].ID)
	assert.Equal(t, int64(2), offers[1].ID)
}

func TestByNewest(t *testing.T) {
	offers := []*database.Offer{
		{ID: 3},
		{ID: 7},
		{ID: 5},
	}

	ordered := ByNewest(offers)
	require.Len(t, ordered, 3)
	assert.Equal(t, int64(7), ordered[0].ID)
	assert.Equal(t, int64(5), ordered[1].ID)
	assert.Equal(t, int64(3), ordered[2].ID)
}
