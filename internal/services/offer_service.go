package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fixmarket/fixmarket/internal/database"
	apperrors "github.com/fixmarket/fixmarket/internal/errors"
	"github.com/fixmarket/fixmarket/internal/interfaces"
	"github.com/fixmarket/fixmarket/internal/telemetry"
)

// OfferService owns the offer write path. Coordinate resolution happens
// here, at write time, so search never needs to geocode.
type OfferService struct {
	repo     interfaces.OfferRepository
	resolver interfaces.LocationResolverInterface
}

func NewOfferService(repo interfaces.OfferRepository, resolver interfaces.LocationResolverInterface) *OfferService {
	return &OfferService{repo: repo, resolver: resolver}
}

func validateInput(input database.OfferInput) *apperrors.AppError {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	if input.Price < 0 {
		return apperrors.NewValidationError("price", "price must not be negative")
	}
	if input.OwnerID <= 0 {
		return apperrors.NewValidationError("owner_id", "owner_id is required")
	}
	return nil
}

// CreateOffer validates the input, resolves coordinates (gazetteer fast
// path, then one best-effort provider call) and stores the offer. A failed
// resolution never blocks the write; the offer is stored coordinate-less.
func (s *OfferService) CreateOffer(ctx context.Context, input database.OfferInput) (*database.Offer, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	lat, lon := s.resolver.ResolveForWrite(ctx, input.Localisation, input.Latitude, input.Longitude)

	offer, err := s.repo.Insert(ctx, input, lat, lon)
	if err != nil {
		return nil, apperrors.NewDatabaseError("insert offer", err)
	}

	telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"operation":       "create_offer",
		"offer_id":        offer.ID,
		"has_coordinates": lat != nil && lon != nil,
	}).Info("Offer created")

	return offer, nil
}

// UpdateOffer rewrites an offer, re-resolving coordinates from the new
// localisation text or supplied coordinate pair.
func (s *OfferService) UpdateOffer(ctx context.Context, id int64, input database.OfferInput) (*database.Offer, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("offer")
		}
		return nil, apperrors.NewDatabaseError("get offer", err)
	}

	lat, lon := s.resolver.ResolveForWrite(ctx, input.Localisation, input.Latitude, input.Longitude)

	offer, err := s.repo.Update(ctx, id, input, lat, lon)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("offer")
		}
		return nil, apperrors.NewDatabaseError("update offer", err)
	}

	return offer, nil
}

// GetOffer fetches a single offer by ID.
func (s *OfferService) GetOffer(ctx context.Context, id int64) (*database.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError("offer")
		}
		return nil, apperrors.NewDatabaseError("get offer", err)
	}
	return offer, nil
}
