package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
)

// BuildingRepo provides read access to cinema buildings.  Buildings are
// created by the seeder; the API only lists them and resolves the IDs
// referenced by reservations.
type BuildingRepo struct {
	db *sql.DB
}

// NewBuildingRepo returns a BuildingRepo bound to the given database.
func NewBuildingRepo(db *sql.DB) *BuildingRepo { return &BuildingRepo{db: db} }

// List returns all buildings ordered by name.
func (r *BuildingRepo) List(ctx context.Context) ([]model.Building, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, location, capacity, created_at, updated_at FROM buildings ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	buildings := make([]model.Building, 0)
	for rows.Next() {
		var b model.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Location, &b.Capacity, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

// GetByID returns a single building or ErrNotFound.
func (r *BuildingRepo) GetByID(ctx context.Context, id uint64) (model.Building, error) {
	var b model.Building
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, location, capacity, created_at, updated_at FROM buildings WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.Name, &b.Location, &b.Capacity, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

// First returns the first building by ID, used when auto-generating
// showtimes for a newly created movie.  ErrNotFound when no buildings
// exist yet.
func (r *BuildingRepo) First(ctx context.Context) (model.Building, error) {
	var b model.Building
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, location, capacity, created_at, updated_at FROM buildings ORDER BY id LIMIT 1").
		Scan(&b.ID, &b.Name, &b.Location, &b.Capacity, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

// CreateBulk inserts multiple buildings in one statement.  Only the
// seeder uses this.
func (r *BuildingRepo) CreateBulk(ctx context.Context, buildings []model.Building) error {
	if len(buildings) == 0 {
		return nil
	}
	query := "INSERT INTO buildings (name, location, capacity) VALUES "
	args := make([]interface{}, 0, len(buildings)*3)
	for i, b := range buildings {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, b.Name, b.Location, b.Capacity)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Count reports how many buildings exist, so seeding can be idempotent.
func (r *BuildingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM buildings").Scan(&n)
	return n, err
}
