// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

// Package locations persists the user's saved address book in DuckDB.
package locations

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jcodagnone/adonde/spatial"
	"github.com/jcodagnone/adonde/utils/textutils"
	"github.com/uber/h3-go/v4"
)

// H3 resolutions stored per row. Res 6 cells are ~36 km² (neighbourhood
// scale), res 8 cells are ~0.7 km² and drive the Nearby lookup.
const (
	h3ResCoarse = 6
	h3ResFine   = 8
)

// Location is a saved address book entry.
type Location struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Category  string         `json:"category,omitempty"` // home, work, favorite, other
	Source    string         `json:"source,omitempty"`   // manual, google_places, nominatim, import
	Point     *spatial.Point `json:"point,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	H3Res6    int64          `json:"-"`
	H3Res8    int64          `json:"-"`
}

func (loc *Location) computeH3() error {
	if loc.Point == nil {
		loc.H3Res6 = 0
		loc.H3Res8 = 0

		return nil
	}

	latLng := h3.NewLatLng(loc.Point.Lat, loc.Point.Lng)

	coarse, err := h3.LatLngToCell(latLng, h3ResCoarse)
	if err != nil {
		return fmt.Errorf("error converting to h3 cell at res %d: %w", h3ResCoarse, err)
	}

	fine, err := h3.LatLngToCell(latLng, h3ResFine)
	if err != nil {
		return fmt.Errorf("error converting to h3 cell at res %d: %w", h3ResFine, err)
	}

	loc.H3Res6 = int64(coarse)
	loc.H3Res8 = int64(fine)

	return nil
}

// DeriveName picks a display name for an address: the text before the first
// comma, or the whole address when it has no comma.
func DeriveName(address string) string {
	if idx := strings.Index(address, ","); idx >= 0 {
		return strings.TrimSpace(address[:idx])
	}

	return strings.TrimSpace(address)
}

// Repository handles persistence of saved locations.
type Repository interface {
	// CreateSchema creates the saved_locations table
	CreateSchema() error

	// Save inserts a location, or updates the existing row whose address
	// folds to the same key. On return loc.ID holds the row id.
	Save(loc *Location) error

	// Get returns the location with the given id, or nil when absent
	Get(id int) (*Location, error)

	// FindByAddress returns the location whose folded address matches the
	// folded argument, or nil when absent
	FindByAddress(address string) (*Location, error)

	// List returns locations ordered by most recently updated
	List(limit, offset int) ([]*Location, error)

	// ListAll returns every location ordered by name then address
	ListAll() ([]*Location, error)

	// Delete removes the location with the given id
	Delete(id int) error

	// BulkInsert inserts a slice of locations into the database
	BulkInsert(locs []*Location) error

	// Count returns the total number of saved locations
	Count() (int, error)

	// Nearby returns locations within k H3 grid rings of point, closest first
	Nearby(point *spatial.Point, k int) ([]*Location, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlLocationRepository struct {
	db *sql.DB
}

// NewRepository creates a saved locations repository backed by db.
func NewRepository(db *sql.DB) Repository {
	return &sqlLocationRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlLocationRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlLocationRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS saved_locations_seq START 1;

		CREATE TABLE IF NOT EXISTS saved_locations (
			id INTEGER PRIMARY KEY DEFAULT nextval('saved_locations_seq'),
			name VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			address_fold VARCHAR NOT NULL,
			category VARCHAR NOT NULL DEFAULT '',
			source VARCHAR NOT NULL DEFAULT '',
			point POINT_2D,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res6 UBIGINT,
			h3_res8 UBIGINT,
			UNIQUE(address_fold)
		);
	`)

	return err
}

func (r *sqlLocationRepository) Save(loc *Location) error {
	if strings.TrimSpace(loc.Address) == "" {
		return errors.New("address can't be empty")
	}

	fold := textutils.Fold(loc.Address)

	existing, err := r.findByFold(fold)
	if err != nil {
		return err
	}

	if err = loc.computeH3(); err != nil {
		return err
	}

	loc.UpdatedAt = time.Now()
	if existing != nil {
		// Update
		lng, lat := pointArgs(loc.Point)

		_, err = r.db.Exec(`
			UPDATE saved_locations
			SET name = ?, address = ?, category = ?, source = ?,
			    point = ST_Point(?, ?), updated_at = ?,
			    h3_res6 = ?, h3_res8 = ?
			WHERE id = ?
		`,
			loc.Name,
			loc.Address,
			loc.Category,
			loc.Source,
			lng,
			lat,
			loc.UpdatedAt,
			loc.H3Res6,
			loc.H3Res8,
			existing.ID,
		)

		loc.ID = existing.ID
		loc.CreatedAt = existing.CreatedAt

		return err
	}

	// Insert
	loc.CreatedAt = loc.UpdatedAt

	if err = r.BulkInsert([]*Location{loc}); err != nil {
		return err
	}

	// The sequence assigned the id inside the transaction, read it back.
	inserted, err := r.findByFold(fold)
	if err != nil {
		return err
	}

	if inserted != nil {
		loc.ID = inserted.ID
	}

	return nil
}

func (r *sqlLocationRepository) BulkInsert(locs []*Location) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO saved_locations(
			name,
			address,
			address_fold,
			category,
			source,
			point,
			created_at,
			updated_at,
			h3_res6,
			h3_res8
		)
		VALUES (?, ?, ?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr // Prioritize the rollback error if commit also failed
		}

		return err
	}
	defer stmt.Close()

	for _, loc := range locs {
		if err = loc.computeH3(); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}

		lng, lat := pointArgs(loc.Point)

		_, err := stmt.Exec(
			loc.Name,
			loc.Address,
			textutils.Fold(loc.Address),
			loc.Category,
			loc.Source,
			lng,
			lat,
			loc.CreatedAt,
			loc.UpdatedAt,
			loc.H3Res6,
			loc.H3Res8,
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr // Prioritize the rollback error if commit also failed
			}

			return err
		}
	}

	return tx.Commit()
}

// pointArgs splits a point into ST_Point arguments. Both are NULL when the
// location has no geometry, which NULL-propagates through ST_Point.
func pointArgs(p *spatial.Point) (lng, lat any) {
	if p == nil {
		return nil, nil
	}

	return p.Lng, p.Lat
}

var baseSelect = `
	SELECT id, name, address, category, source, point,
	       created_at, updated_at, h3_res6, h3_res8
	FROM saved_locations
`

func (r *sqlLocationRepository) list(query string, args []any) ([]*Location, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locs []*Location

	for rows.Next() {
		loc := &Location{}

		var h3Res6, h3Res8 sql.NullInt64

		err := rows.Scan(
			&loc.ID, &loc.Name, &loc.Address,
			&loc.Category, &loc.Source, &loc.Point,
			&loc.CreatedAt, &loc.UpdatedAt,
			&h3Res6, &h3Res8,
		)
		if err != nil {
			return nil, err
		}

		if h3Res6.Valid {
			loc.H3Res6 = h3Res6.Int64
		}

		if h3Res8.Valid {
			loc.H3Res8 = h3Res8.Int64
		}

		locs = append(locs, loc)
	}

	return locs, rows.Err()
}

func (r *sqlLocationRepository) one(query string, args []any) (*Location, error) {
	locs, err := r.list(query, args)
	if err != nil {
		return nil, err
	}

	if len(locs) == 0 {
		return nil, nil
	}

	return locs[0], nil
}

func (r *sqlLocationRepository) Get(id int) (*Location, error) {
	return r.one(baseSelect+" WHERE id = ?", []any{id})
}

func (r *sqlLocationRepository) FindByAddress(address string) (*Location, error) {
	return r.findByFold(textutils.Fold(address))
}

func (r *sqlLocationRepository) findByFold(fold string) (*Location, error) {
	return r.one(baseSelect+" WHERE address_fold = ?", []any{fold})
}

func (r *sqlLocationRepository) List(limit, offset int) ([]*Location, error) {
	query := baseSelect + " ORDER BY updated_at DESC"

	args := []any{}

	if limit > 0 {
		query += " LIMIT ? OFFSET ?"

		args = append(args, limit, offset)
	}

	return r.list(query, args)
}

func (r *sqlLocationRepository) ListAll() ([]*Location, error) {
	return r.list(baseSelect+` ORDER BY name, address`,
		[]any{},
	)
}

func (r *sqlLocationRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM saved_locations WHERE id = ?", id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *sqlLocationRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM saved_locations",
	).Scan(&count)

	return count, err
}

func (r *sqlLocationRepository) Nearby(point *spatial.Point, k int) ([]*Location, error) {
	if point == nil {
		return nil, errors.New("point can't be null")
	}

	latLng := h3.NewLatLng(point.Lat, point.Lng)

	origin, err := h3.LatLngToCell(latLng, h3ResFine)
	if err != nil {
		return nil, fmt.Errorf("error converting to h3 cell at res %d: %w", h3ResFine, err)
	}

	cells, err := h3.GridDisk(origin, k)
	if err != nil {
		return nil, fmt.Errorf("error computing h3 grid disk: %w", err)
	}

	placeholders := make([]string, len(cells))
	args := make([]any, len(cells))

	for i, cell := range cells {
		placeholders[i] = "?"
		args[i] = int64(cell)
	}

	locs, err := r.list(
		baseSelect+" WHERE h3_res8 IN ("+strings.Join(placeholders, ", ")+")",
		args,
	)
	if err != nil {
		return nil, err
	}

	sort.Slice(locs, func(i, j int) bool {
		return point.HaversineDistance(locs[i].Point) < point.HaversineDistance(locs[j].Point)
	})

	return locs, nil
}
