package interfaces

import (
	"context"

	"github.com/fixmarket/fixmarket/internal/database"
	"github.com/fixmarket/fixmarket/internal/gazetteer"
	"github.com/fixmarket/fixmarket/internal/geocode"
)

// OfferRepository is the persistence port for offers. The SQL adapter lives
// in internal/database; tests substitute an in-memory fake.
type OfferRepository interface {
	ListForSearch(ctx context.Context, filter database.SearchFilter) ([]*database.Offer, error)
	SuggestTitles(ctx context.Context, query string, limit int) ([]string, error)
	GetByID(ctx context.Context, id int64) (*database.Offer, error)
	Insert(ctx context.Context, input database.OfferInput, lat, lon *float64) (*database.Offer, error)
	Update(ctx context.Context, id int64, input database.OfferInput, lat, lon *float64) (*database.Offer, error)
	UpdateCoordinates(ctx context.Context, id int64, lat, lon *float64) error
}

// Geocoder is the external-provider port used by the location resolver.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Result, error)
}

// SuggestionCache stores autocomplete payloads for hot queries.
type SuggestionCache interface {
	GetSuggestions(ctx context.Context, query string, dest interface{}) bool
	SetSuggestions(ctx context.Context, query string, payload interface{})
}

// LocationResolverInterface bridges free text or raw coordinates to
// resolved locations.
type LocationResolverInterface interface {
	Autocomplete(ctx context.Context, text string) []gazetteer.Suggestion
	ReverseLookup(ctx context.Context, lat, lon float64) (gazetteer.Suggestion, bool)
	ResolveForWrite(ctx context.Context, freeText string, lat, lon *float64) (*float64, *float64)
}

// SearchServiceInterface defines the offer discovery operations.
type SearchServiceInterface interface {
	Search(ctx context.Context, filter database.SearchFilter) ([]*database.Offer, error)
	SuggestTitles(ctx context.Context, query string) ([]string, error)
}

// OfferServiceInterface defines the offer write path.
type OfferServiceInterface interface {
	CreateOffer(ctx context.Context, input database.OfferInput) (*database.Offer, error)
	UpdateOffer(ctx context.Context, id int64, input database.OfferInput) (*database.Offer, error)
	GetOffer(ctx context.Context, id int64) (*database.Offer, error)
}
