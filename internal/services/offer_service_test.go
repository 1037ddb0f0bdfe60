package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmarket/fixmarket/internal/database"
	apperrors "github.com/fixmarket/fixmarket/internal/errors"
	"github.com/fixmarket/fixmarket/internal/geocode"
)

func newOfferService(repo *fakeOfferRepository, geocoder *fakeGeocoder) *OfferService {
	resolver := NewLocationResolver(testGazetteer(), geocoder, nil)
	return NewOfferService(repo, resolver)
}

func validInput() database.OfferInput {
	return database.OfferInput{
		Title:        "Naprawa pralek",
		Description:  "Szybko i solidnie",
		Category:     "AGD",
		Localisation: "Warszawa",
		Price:        150,
		OwnerID:      7,
	}
}

func TestCreateOffer_Validation(t *testing.T) {
	service := newOfferService(newFakeOfferRepository(), &fakeGeocoder{})

	tests := []struct {
		name   string
		mutate func(*database.OfferInput)
	}{
		{"Empty title", func(i *database.OfferInput) { i.Title = "  " }},
		{"Negative price", func(i *database.OfferInput) { i.Price = -1 }},
		{"Missing owner", func(i *database.OfferInput) { i.OwnerID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := service.CreateOffer(context.Background(), input)
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestCreateOffer_GazetteerResolution(t *testing.T) {
	geocoder := &fakeGeocoder{}
	service := newOfferService(newFakeOfferRepository(), geocoder)

	offer, err := service.CreateOffer(context.Background(), validInput())
	require.NoError(t, err)

	require.NotNil(t, offer.Latitude)
	require.NotNil(t, offer.Longitude)
	assert.InDelta(t, 52.2297, *offer.Latitude, 0.0001)
	assert.InDelta(t, 21.0122, *offer.Longitude, 0.0001)
	assert.Zero(t, geocoder.calls, "gazetteer hit must not call the provider")
}

func TestCreateOffer_ProviderUnreachableStillPersists(t *testing.T) {
	geocoder := &fakeGeocoder{
		result: geocode.Result{Kind: geocode.Failed},
		err:    errors.New("connection refused"),
	}
	repo := newFakeOfferRepository()
	service := newOfferService(repo, geocoder)

	input := validInput()
	input.Localisation = "zupełnie nieznane miejsce"

	offer, err := service.CreateOffer(context.Background(), input)
	require.NoError(t, err)
	assert.Nil(t, offer.Latitude)
	assert.Nil(t, offer.Longitude)

	stored, err := repo.GetByID(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, "zupełnie nieznane miejsce", stored.Localisation)
}

func TestCreateOffer_SuppliedCoordinatesSkipResolution(t *testing.T) {
	geocoder := &fakeGeocoder{}
	service := newOfferService(newFakeOfferRepository(), geocoder)

	input := validInput()
	input.Latitude = ptr(53.0)
	input.Longitude = ptr(18.6)

	offer, err := service.CreateOffer(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 53.0, *offer.Latitude)
	assert.Equal(t, 18.6, *offer.Longitude)
	assert.Zero(t, geocoder.calls)
}

func TestUpdateOffer_NotFound(t *testing.T) {
	service := newOfferService(newFakeOfferRepository(), &fakeGeocoder{})

	_, err := service.UpdateOffer(context.Background(), 42, validInput())
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestUpdateOffer_RefreshesCoordinates(t *testing.T) {
	repo := newFakeOfferRepository(&database.Offer{
		ID: 1, Title: "Hydraulik", Category: "Hydraulika", Localisation: "Warszawa",
		Price: 200, OwnerID: 7, Latitude: ptr(52.2297), Longitude: ptr(21.0122),
	})
	service := newOfferService(repo, &fakeGeocoder{})

	input := validInput()
	input.Localisation = "Kraków"

	offer, err := service.UpdateOffer(context.Background(), 1, input)
	require.NoError(t, err)
	require.NotNil(t, offer.Latitude)
	assert.InDelta(t, 50.0647, *offer.Latitude, 0.0001)
	assert.InDelta(t, 19.9450, *offer.Longitude, 0.0001)
}

func TestGetOffer(t *testing.T) {
	repo := newFakeOfferRepository(&database.Offer{ID: 9, Title: "Hydraulik", OwnerID: 7})
	service := newOfferService(repo, &fakeGeocoder{})

	offer, err := service.GetOffer(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Hydraulik", offer.Title)

	_, err = service.GetOffer(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}
