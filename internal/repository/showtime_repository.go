package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
)

// ShowtimeRepo provides access to showtimes.  Showtimes are created
// alongside movies (or by the seeder) together with their seat grid,
// so creation happens inside a caller-owned transaction.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

const showtimeCols = "id, movie_id, show_date, show_time, building, created_at, updated_at"

// List returns all showtimes, optionally filtered by movie.
func (r *ShowtimeRepo) List(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	q := "SELECT " + showtimeCols + " FROM showtimes"
	args := []interface{}{}
	if movieID != 0 {
		q += " WHERE movie_id=?"
		args = append(args, movieID)
	}
	q += " ORDER BY show_date, show_time"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	showtimes := make([]model.Showtime, 0)
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(&s.ID, &s.MovieID, &s.ShowDate, &s.ShowTime, &s.Building, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		showtimes = append(showtimes, s)
	}
	return showtimes, rows.Err()
}

// GetByID returns a single showtime or ErrNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (model.Showtime, error) {
	var s model.Showtime
	err := r.db.QueryRowContext(ctx,
		"SELECT "+showtimeCols+" FROM showtimes WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.MovieID, &s.ShowDate, &s.ShowTime, &s.Building, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	return s, err
}

// ListByMovie returns all showtimes for a movie, used when rendering a
// movie detail page.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	return r.List(ctx, movieID)
}

// CreateTx inserts a showtime within an existing transaction and
// populates its generated ID.
func (r *ShowtimeRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Showtime) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO showtimes (movie_id, show_date, show_time, building) VALUES (?,?,?,?)",
		s.MovieID, s.ShowDate, s.ShowTime, s.Building)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}
