package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
)

// MovieRepo provides CRUD operations for movies.  Movies are public
// read, admin write; showtimes and seats hang off them and cascade on
// delete.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span movies, showtimes and seats (e.g. movie creation with an
// auto-generated schedule).
func (r *MovieRepo) DB() *sql.DB { return r.db }

var ErrSlugExists = errors.New("slug already exists")

const movieCols = "id, title, slug, description, image, duration_min, genre, created_at, updated_at"

func scanMovie(s interface {
	Scan(dest ...interface{}) error
}) (model.Movie, error) {
	var m model.Movie
	err := s.Scan(&m.ID, &m.Title, &m.Slug, &m.Description, &m.Image,
		&m.DurationMin, &m.Genre, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// sortableMovieColumns maps client-facing sort fields to columns.  Sort
// input is whitelisted; anything unknown is ignored rather than
// interpolated into SQL.
var sortableMovieColumns = map[string]string{
	"title":    "title",
	"duration": "duration_min",
	"genre":    "genre",
	"created":  "created_at",
}

// List returns all movies.  sort may be a field name with an optional
// "-" prefix for descending order; limit bounds the result when > 0.
func (r *MovieRepo) List(ctx context.Context, sort string, limit int) ([]model.Movie, error) {
	q := "SELECT " + movieCols + " FROM movies"
	if sort != "" {
		dir := " ASC"
		if strings.HasPrefix(sort, "-") {
			dir = " DESC"
			sort = sort[1:]
		}
		if col, ok := sortableMovieColumns[sort]; ok {
			q += " ORDER BY " + col + dir
		}
	}
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// GetByID returns a single movie or ErrNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx,
		"SELECT "+movieCols+" FROM movies WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// GetBySlug returns a single movie by its slug or ErrNotFound.
func (r *MovieRepo) GetBySlug(ctx context.Context, slug string) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx,
		"SELECT "+movieCols+" FROM movies WHERE slug=? LIMIT 1", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	return m, err
}

// CreateTx inserts a movie within an existing transaction and populates
// its generated ID.  Movie creation also generates showtimes and seats,
// so the caller owns the transaction boundary.
func (r *MovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO movies (title, slug, description, image, duration_min, genre) VALUES (?,?,?,?,?,?)",
		m.Title, m.Slug, m.Description, m.Image, m.DurationMin, m.Genre)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update overwrites mutable movie fields.  Nil pointers keep the stored
// value.  Returns ErrNotFound when the movie does not exist.
func (r *MovieRepo) Update(ctx context.Context, id uint64, title, description, image, genre *string, durationMin *uint32) (model.Movie, error) {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(col string, v interface{}) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if title != nil {
		add("title", *title)
	}
	if description != nil {
		add("description", *description)
	}
	if image != nil {
		add("image", *image)
	}
	if genre != nil {
		add("genre", *genre)
	}
	if durationMin != nil {
		add("duration_min", *durationMin)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			"UPDATE movies SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.Movie{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a movie; showtimes, seats and reservations cascade.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
