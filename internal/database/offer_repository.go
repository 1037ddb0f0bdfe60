package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// OfferRepository is the persistence adapter for offers. Ban status of the
// owning user is read through a join so search never needs a second query.
type OfferRepository struct {
	db *DB
}

func NewOfferRepository(db *DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `
	o.id, o.title, o.description, o.category, o.localisation, o.price,
	o.latitude, o.longitude, o.blocked, o.owner_id, u.banned, o.created_at, o.updated_at
`

func scanOffer(row interface{ Scan(...interface{}) error }) (*Offer, error) {
	offer := &Offer{}
	err := row.Scan(
		&offer.ID, &offer.Title, &offer.Description, &offer.Category,
		&offer.Localisation, &offer.Price, &offer.Latitude, &offer.Longitude,
		&offer.Blocked, &offer.OwnerID, &offer.OwnerBanned,
		&offer.CreatedAt, &offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// ListForSearch returns the offers matching the filter's predicates, newest
// first. Blocked offers and offers of banned owners are excluded
// unconditionally. Proximity ordering is applied by the caller on top of
// this result.
func (r *OfferRepository) ListForSearch(ctx context.Context, filter SearchFilter) ([]*Offer, error) {
	filter = filter.Normalized()

	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		INNER JOIN users u ON u.id = o.owner_id
		WHERE o.blocked = false
		  AND u.banned = false
	`
	var args []interface{}

	if filter.Title != "" {
		args = append(args, filter.Title)
		query += fmt.Sprintf(" AND o.title ILIKE '%%' || $%d || '%%'", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND o.category ILIKE '%%' || $%d || '%%'", len(args))
	}
	if filter.Localisation != "" {
		args = append(args, filter.Localisation)
		query += fmt.Sprintf(" AND o.localisation ILIKE '%%' || $%d || '%%'", len(args))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		query += fmt.Sprintf(" AND o.price >= $%d", len(args))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		query += fmt.Sprintf(" AND o.price <= $%d", len(args))
	}

	query += " ORDER BY o.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []*Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// SuggestTitles returns up to limit distinct titles containing the query,
// case-insensitively, drawn from the same visible population as search.
func (r *OfferRepository) SuggestTitles(ctx context.Context, query string, limit int) ([]string, error) {
	sqlQuery := `
		SELECT DISTINCT o.title
		FROM offers o
		INNER JOIN users u ON u.id = o.owner_id
		WHERE o.blocked = false
		  AND u.banned = false
		  AND o.title ILIKE '%' || $1 || '%'
		ORDER BY o.title
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query title suggestions: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating titles: %w", err)
	}

	return titles, nil
}

// GetByID fetches a single offer with its owner's ban status.
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers o
		INNER JOIN users u ON u.id = o.owner_id
		WHERE o.id = $1
	`

	offer, err := scanOffer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

// Insert stores a new offer and returns it with the assigned serial ID.
func (r *OfferRepository) Insert(ctx context.Context, input OfferInput, lat, lon *float64) (*Offer, error) {
	now := time.Now()
	query := `
		INSERT INTO offers (title, description, category, localisation, price,
		                    latitude, longitude, blocked, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9, $9)
		RETURNING id
	`

	offer := &Offer{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Localisation: input.Localisation,
		Price:        input.Price,
		Latitude:     lat,
		Longitude:    lon,
		OwnerID:      input.OwnerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.QueryRowContext(ctx, query,
		input.Title, input.Description, input.Category, input.Localisation,
		input.Price, lat, lon, input.OwnerID, now,
	).Scan(&offer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert offer: %w", err)
	}

	return offer, nil
}

// Update rewrites an offer's caller-editable fields and coordinates.
func (r *OfferRepository) Update(ctx context.Context, id int64, input OfferInput, lat, lon *float64) (*Offer, error) {
	query := `
		UPDATE offers
		SET title = $1, description = $2, category = $3, localisation = $4,
		    price = $5, latitude = $6, longitude = $7, updated_at = $8
		WHERE id = $9
		RETURNING id
	`

	var returned int64
	err := r.db.QueryRowContext(ctx, query,
		input.Title, input.Description, input.Category, input.Localisation,
		input.Price, lat, lon, time.Now(), id,
	).Scan(&returned)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	return r.GetByID(ctx, id)
}

// UpdateCoordinates rewrites only the coordinate columns, used when a
// resolution is refreshed without touching the rest of the row.
func (r *OfferRepository) UpdateCoordinates(ctx context.Context, id int64, lat, lon *float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE offers SET latitude = $1, longitude = $2, updated_at = $3 WHERE id = $4`,
		lat, lon, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update coordinates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
