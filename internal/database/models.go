package database

import (
	"strings"
	"time"
)

// Offer represents a service offer listed on the marketplace. Latitude and
// Longitude stay nil until the localisation text has been resolved; such
// offers remain searchable by every non-geographic filter.
type Offer struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Category     string    `json:"category" db:"category"`
	Localisation string    `json:"localisation" db:"localisation"`
	Price        float64   `json:"price" db:"price"`
	Latitude     *float64  `json:"latitude" db:"latitude"`
	Longitude    *float64  `json:"longitude" db:"longitude"`
	Blocked      bool      `json:"blocked" db:"blocked"`
	OwnerID      int64     `json:"owner_id" db:"owner_id"`
	OwnerBanned  bool      `json:"owner_banned" db:"owner_banned"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SearchFilter aggregates the independently optional search predicates.
// Empty or whitespace-only substring fields mean "no constraint"; nil price
// bounds and coordinates likewise. Coordinate presence is defined as both
// pointers non-nil, so (0, 0) is a legal requester position.
type SearchFilter struct {
	Title        string   `json:"title" form:"title"`
	Category     string   `json:"category" form:"category"`
	Localisation string   `json:"localisation" form:"localisation"`
	MinPrice     *float64 `json:"min_price" form:"min_price"`
	MaxPrice     *float64 `json:"max_price" form:"max_price"`
	Latitude     *float64 `json:"latitude" form:"lat"`
	Longitude    *float64 `json:"longitude" form:"lon"`
}

// HasCoordinates reports whether the requester supplied a position, which
// switches search into proximity ordering.
func (f SearchFilter) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Normalized returns a copy with substring predicates trimmed, so blank
// input behaves as an absent constraint everywhere downstream.
func (f SearchFilter) Normalized() SearchFilter {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
	f.Localisation = strings.TrimSpace(f.Localisation)
	return f
}

// OfferInput carries the caller-supplied fields for an offer create or
// update. Latitude and Longitude are optional; when both are set they are
// trusted as-is and no geocoding happens.
type OfferInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Localisation string   `json:"localisation"`
	Price        float64  `json:"price"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	OwnerID      int64    `json:"owner_id"`
}
