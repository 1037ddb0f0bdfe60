package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/fixmarket/fixmarket/internal/database"
	"github.com/fixmarket/fixmarket/internal/interfaces"
	"github.com/fixmarket/fixmarket/internal/monitoring"
	"github.com/fixmarket/fixmarket/internal/ranking"
)

// titleSuggestionLimit bounds search-box title autocomplete.
const titleSuggestionLimit = 5

// SearchService ranks and filters the visible offer population. It is
// stateless per call; every invocation recomputes from stored data.
type SearchService struct {
	repo interfaces.OfferRepository
}

func NewSearchService(repo interfaces.OfferRepository) *SearchService {
	return &SearchService{repo: repo}
}

// Search returns the offers matching the filter. Blocked offers and offers
// of banned owners never appear. With requester coordinates the result is
// ordered ascending by great-circle distance and restricted to offers that
// have coordinates; otherwise it is newest-first.
func (s *SearchService) Search(ctx context.Context, filter database.SearchFilter) ([]*database.Offer, error) {
	offers, err := s.repo.ListForSearch(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	if filter.HasCoordinates() {
		monitoring.RecordSearch(ctx, "proximity")
		return ranking.ByProximity(offers, *filter.Latitude, *filter.Longitude), nil
	}

	monitoring.RecordSearch(ctx, "newest")
	// Repository already orders by id descending; keep that contract
	// explicit here rather than trusting adapter ordering.
	return ranking.ByNewest(offers), nil
}

// SuggestTitles returns up to five distinct offer titles containing the
// query, drawn from the same visible population as Search. An empty query
// yields an empty list.
func (s *SearchService) SuggestTitles(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	titles, err := s.repo.SuggestTitles(ctx, query, titleSuggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest titles: %w", err)
	}
	return titles, nil
}
