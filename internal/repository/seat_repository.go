package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
)

// SeatRepo provides access to seats.  Seats are created in bulk when a
// showtime is created and never mutated afterwards; reservation state
// lives in reservation_seats, not on the seat row.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// CreateBulkTx inserts multiple seats in a single statement within an
// existing transaction.  Passing an empty slice has no effect.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := "INSERT INTO seats (showtime_id, row_label, seat_number, seat_class, price) VALUES "
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.ShowtimeID, s.RowLabel, s.SeatNumber, s.SeatClass, s.Price)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByShowtime retrieves all seats of a showtime ordered by row label
// then seat number, for rendering the seat map.
func (r *SeatRepo) ListByShowtime(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	const q = `SELECT id, showtime_id, row_label, seat_number, seat_class, price
	           FROM seats
	           WHERE showtime_id = ?
	           ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ShowtimeID, &s.RowLabel, &s.SeatNumber, &s.SeatClass, &s.Price); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// CountByShowtimeTx reports how many of the given seat IDs actually
// belong to the showtime, letting callers reject identifiers that
// reference another screening before attempting to reserve them.
func (r *SeatRepo) CountByShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seatIDs)), ",")
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seats WHERE showtime_id=? AND id IN ("+placeholders+")",
		args...).Scan(&n)
	return n, err
}
