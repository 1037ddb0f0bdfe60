package services

import (
	"context"
	"math"
	"strings"

	"github.com/fixmarket/fixmarket/internal/gazetteer"
	"github.com/fixmarket/fixmarket/internal/geocode"
	"github.com/fixmarket/fixmarket/internal/interfaces"
	"github.com/fixmarket/fixmarket/internal/monitoring"
	"github.com/fixmarket/fixmarket/internal/telemetry"
)

// autocompleteLimit bounds live-typing suggestion lists.
const autocompleteLimit = 10

// LocationResolver bridges free-text location input to coordinates. The
// gazetteer is the fast path; the external geocoder is only consulted once
// per offer write, and only when the gazetteer misses. Every operation is
// total: bad input and provider failures degrade to empty results.
type LocationResolver struct {
	gazetteer *gazetteer.Gazetteer
	geocoder  interfaces.Geocoder
	cache     interfaces.SuggestionCache
}

// NewLocationResolver creates a resolver. geocoder and cache may be nil;
// without a geocoder the fallback path resolves nothing, without a cache
// every autocomplete hits the gazetteer directly.
func NewLocationResolver(g *gazetteer.Gazetteer, geocoder interfaces.Geocoder, cache interfaces.SuggestionCache) *LocationResolver {
	return &LocationResolver{gazetteer: g, geocoder: geocoder, cache: cache}
}

// Autocomplete returns up to ten locality suggestions whose name contains
// the given text. Too-short and unmatched queries yield an empty list, not
// an error.
func (r *LocationResolver) Autocomplete(ctx context.Context, text string) []gazetteer.Suggestion {
	text = strings.ToLower(strings.TrimSpace(text))
	if len([]rune(text)) < gazetteer.MinFragmentLen {
		return nil
	}

	if r.cache != nil {
		var cached []gazetteer.Suggestion
		if r.cache.GetSuggestions(ctx, text, &cached) {
			return cached
		}
	}

	matches := r.gazetteer.FindByNameContains(text, autocompleteLimit)
	suggestions := make([]gazetteer.Suggestion, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, gazetteer.Suggest(m))
	}

	if r.cache != nil && len(suggestions) > 0 {
		r.cache.SetSuggestions(ctx, text, suggestions)
	}

	return suggestions
}

// ReverseLookup maps a raw coordinate pair to the nearest known locality.
// Non-finite input or an empty gazetteer yields an absent result.
func (r *LocationResolver) ReverseLookup(ctx context.Context, lat, lon float64) (gazetteer.Suggestion, bool) {
	if !isFinite(lat) || !isFinite(lon) {
		return gazetteer.Suggestion{}, false
	}

	locality, ok := r.gazetteer.FindNearest(lat, lon)
	if !ok {
		return gazetteer.Suggestion{}, false
	}
	return gazetteer.Suggest(locality), true
}

// ResolveForWrite resolves coordinates for an offer create or update.
// Supplied coordinates (both non-nil) are trusted as-is. Otherwise the
// gazetteer is tried first; on a miss, exactly one provider call is made.
// Any provider failure is logged and yields nil coordinates so the write
// proceeds without geographic metadata.
func (r *LocationResolver) ResolveForWrite(ctx context.Context, freeText string, lat, lon *float64) (*float64, *float64) {
	if lat != nil && lon != nil {
		return lat, lon
	}

	freeText = strings.TrimSpace(freeText)
	if freeText == "" {
		return nil, nil
	}

	if matches := r.gazetteer.FindByNameContains(freeText, 1); len(matches) > 0 {
		return &matches[0].Latitude, &matches[0].Longitude
	}

	if r.geocoder == nil {
		return nil, nil
	}

	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"operation":    "resolve_for_write",
		"localisation": freeText,
	})

	res, err := r.geocoder.Geocode(ctx, freeText)
	switch res.Kind {
	case geocode.Found:
		monitoring.RecordGeocode(ctx, "found")
		return &res.Latitude, &res.Longitude
	case geocode.NoMatch:
		monitoring.RecordGeocode(ctx, "no_match")
		logger.Debug("Geocoding provider returned no match")
		return nil, nil
	default:
		monitoring.RecordGeocode(ctx, "failed")
		logger.WithError(err).Warn("Geocoding provider failed, offer stays coordinate-less")
		return nil, nil
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
