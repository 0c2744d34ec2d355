package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	enseigneQuery = `SELECT id, display_name, COALESCE(logo_asset, '') FROM enseignes ORDER BY position, id`
	storeQuery    = `SELECT COALESCE(id, ''), name, lat, lng, category, COALESCE(address, ''),
		has_cage_eggs, COALESCE(reference_count, 0), COALESCE(photo_url, '')
		FROM stores ORDER BY position, id`
)

// FromSQL reads the enseignes and stores tables. Rows are validated the
// same way as file-based catalogs; NULL coordinates are rejected.
func FromSQL(ctx context.Context, conn *sql.DB) (*Catalog, []Rejection, error) {
	rows, err := conn.QueryContext(ctx, enseigneQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("querying enseignes: %w", err)
	}
	var enseignes []Enseigne
	for rows.Next() {
		var e Enseigne
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.LogoAsset); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scanning enseigne: %w", err)
		}
		enseignes = append(enseignes, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("reading enseignes: %w", err)
	}
	rows.Close()

	rows, err = conn.QueryContext(ctx, storeQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("querying stores: %w", err)
	}
	defer rows.Close()

	var (
		stores   []Store
		rowIndex []int
		rejected []Rejection
	)
	for i := 0; rows.Next(); i++ {
		var (
			s        Store
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &lat, &lng, &s.Category, &s.Address,
			&s.HasCageEggs, &s.ReferenceCount, &s.PhotoURL); err != nil {
			return nil, nil, fmt.Errorf("scanning store: %w", err)
		}
		if !lat.Valid || !lng.Valid {
			rejected = append(rejected, Rejection{Index: i, Name: s.Name, Reason: "missing coordinates"})
			continue
		}
		s.Lat, s.Lng = lat.Float64, lng.Float64
		stores = append(stores, s)
		rowIndex = append(rowIndex, i)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading stores: %w", err)
	}

	c, more, err := New(enseignes, stores)
	if err != nil {
		return nil, nil, err
	}
	for i := range more {
		more[i].Index = rowIndex[more[i].Index]
	}
	return c, append(rejected, more...), nil
}
