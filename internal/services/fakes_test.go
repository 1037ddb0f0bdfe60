package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/fixmarket/fixmarket/internal/database"
	"github.com/fixmarket/fixmarket/internal/geocode"
)

func ptr(v float64) *float64 { return &v }

// fakeOfferRepository is an in-memory stand-in for the SQL adapter. It
// mirrors the adapter's contract: always-on blocked/banned exclusion,
// case-insensitive contains, price bounds, id-descending order.
type fakeOfferRepository struct {
	offers []*database.Offer
	nextID int64
}

func newFakeOfferRepository(offers ...*database.Offer) *fakeOfferRepository {
	repo := &fakeOfferRepository{}
	for _, o := range offers {
		repo.offers = append(repo.offers, o)
		if o.ID >= repo.nextID {
			repo.nextID = o.ID + 1
		}
	}
	if repo.nextID == 0 {
		repo.nextID = 1
	}
	return repo
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (r *fakeOfferRepository) visible(o *database.Offer) bool {
	return !o.Blocked && !o.OwnerBanned
}

func (r *fakeOfferRepository) ListForSearch(ctx context.Context, filter database.SearchFilter) ([]*database.Offer, error) {
	filter = filter.Normalized()

	var matched []*database.Offer
	for _, o := range r.offers {
		if !r.visible(o) {
			continue
		}
		if filter.Title != "" && !containsFold(o.Title, filter.Title) {
			continue
		}
		if filter.Category != "" && !containsFold(o.Category, filter.Category) {
			continue
		}
		if filter.Localisation != "" && !containsFold(o.Localisation, filter.Localisation) {
			continue
		}
		if filter.MinPrice != nil && o.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && o.Price > *filter.MaxPrice {
			continue
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched, nil
}

func (r *fakeOfferRepository) SuggestTitles(ctx context.Context, query string, limit int) ([]string, error) {
	seen := make(map[string]bool)
	var titles []string
	for _, o := range r.offers {
		if !r.visible(o) || !containsFold(o.Title, query) {
			continue
		}
		if seen[o.Title] {
			continue
		}
		seen[o.Title] = true
		titles = append(titles, o.Title)
		if len(titles) >= limit {
			break
		}
	}
	return titles, nil
}

func (r *fakeOfferRepository) GetByID(ctx context.Context, id int64) (*database.Offer, error) {
	for _, o := range r.offers {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeOfferRepository) Insert(ctx context.Context, input database.OfferInput, lat, lon *float64) (*database.Offer, error) {
	offer := &database.Offer{
		ID:           r.nextID,
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Localisation: input.Localisation,
		Price:        input.Price,
		Latitude:     lat,
		Longitude:    lon,
		OwnerID:      input.OwnerID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.nextID++
	r.offers = append(r.offers, offer)
	return offer, nil
}

func (r *fakeOfferRepository) Update(ctx context.Context, id int64, input database.OfferInput, lat, lon *float64) (*database.Offer, error) {
	offer, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	offer.Title = input.Title
	offer.Description = input.Description
	offer.Category = input.Category
	offer.Localisation = input.Localisation
	offer.Price = input.Price
	offer.Latitude = lat
	offer.Longitude = lon
	offer.UpdatedAt = time.Now()
	return offer, nil
}

func (r *fakeOfferRepository) UpdateCoordinates(ctx context.Context, id int64, lat, lon *float64) error {
	offer, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	offer.Latitude = lat
	offer.Longitude = lon
	return nil
}

// fakeGeocoder records calls and returns a scripted result.
type fakeGeocoder struct {
	result geocode.Result
	err    error
	calls  int
}

func (g *fakeGeocoder) Geocode(ctx context.Context, query string) (geocode.Result, error) {
	g.calls++
	return g.result, g.err
}
