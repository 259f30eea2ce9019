package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
)

// ReservationRepo provides operations for reservations and their seat
// links.  A reservation groups one or more seats for a showtime under a
// single user.  Seat claims live in the reservation_seats table, whose
// unique key over (showtime_id, seat_id) guarantees a seat is never
// sold twice for the same screening.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateParams carries everything needed to create a reservation.
type CreateParams struct {
	UserID      uint64
	MovieID     uint64
	ShowtimeID  uint64
	BuildingID  uint64
	SeatClass   string
	SeatIDs     []uint64
	TotalPrice  float64
	PhoneNumber string
}

// Summary is the denormalized confirmation view returned after a
// reservation is created or fetched: movie title, "date time" showtime
// string, building name and row+number seat labels.
type Summary struct {
	ID          uint64   `json:"id"`
	MovieTitle  string   `json:"movieTitle"`
	Showtime    string   `json:"showtime"`
	Building    string   `json:"building"`
	SeatClass   string   `json:"seatClass"`
	PhoneNumber *string  `json:"phoneNumber,omitempty"`
	TotalPrice  float64  `json:"totalPrice"`
	SeatCount   int      `json:"seatCount"`
	Seats       []string `json:"seats"`
	UserEmail   string   `json:"userEmail,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// Create atomically claims the requested seats and persists the
// reservation.  The availability check covers every submitted seat, runs
// inside the same transaction as the insert, and locks the matching
// claim rows; a concurrent claim that slips past the check still fails
// on the unique (showtime_id, seat_id) key.  Either way the loser
// receives ErrSeatTaken.  Seat IDs that do not belong to the showtime
// yield ErrNotFound.
func (r *ReservationRepo) Create(ctx context.Context, p CreateParams) (*Summary, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// All requested seats must exist under this showtime.
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(p.SeatIDs)), ",")
	args := make([]interface{}, 0, len(p.SeatIDs)+1)
	args = append(args, p.ShowtimeID)
	for _, id := range p.SeatIDs {
		args = append(args, id)
	}
	var seatCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seats WHERE showtime_id=? AND id IN ("+placeholders+")",
		args...).Scan(&seatCount); err != nil {
		return nil, err
	}
	if seatCount != len(p.SeatIDs) {
		return nil, ErrNotFound
	}

	// Availability: any existing claim on any requested seat is a conflict.
	rows, err := tx.QueryContext(ctx,
		"SELECT seat_id FROM reservation_seats WHERE showtime_id=? AND seat_id IN ("+placeholders+") FOR UPDATE",
		args...)
	if err != nil {
		return nil, err
	}
	taken := false
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			rows.Close()
			return nil, err
		}
		taken = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if taken {
		return nil, ErrSeatTaken
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, movie_id, showtime_id, building_id, seat_class, total_price, phone_number)
		 VALUES (?,?,?,?,?,?,?)`,
		p.UserID, p.MovieID, p.ShowtimeID, p.BuildingID, p.SeatClass, p.TotalPrice, nullable(p.PhoneNumber))
	if err != nil {
		if isFKViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	reservationID := uint64(id)

	if err := insertSeatLinks(ctx, tx, reservationID, p.ShowtimeID, p.SeatIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return r.GetSummary(ctx, reservationID)
}

// insertSeatLinks bulk-inserts the reservation_seats rows.  A duplicate
// key here means another transaction claimed a seat between our lock and
// insert, which surfaces as ErrSeatTaken.
func insertSeatLinks(ctx context.Context, tx *sql.Tx, reservationID, showtimeID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := "INSERT INTO reservation_seats (reservation_id, showtime_id, seat_id) VALUES "
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, reservationID, showtimeID, sid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// GetSummary loads the denormalized confirmation view for one
// reservation: joined movie, showtime, building and seat data flattened
// into a Summary.  ErrNotFound when the reservation does not exist.
func (r *ReservationRepo) GetSummary(ctx context.Context, id uint64) (*Summary, error) {
	const q = `SELECT r.id, m.title, s.show_date, s.show_time, b.name,
	                  r.seat_class, r.phone_number, r.total_price, r.created_at
	           FROM reservations r
	           JOIN movies m ON m.id = r.movie_id
	           JOIN showtimes s ON s.id = r.showtime_id
	           JOIN buildings b ON b.id = r.building_id
	           WHERE r.id = ?`
	var (
		sum       Summary
		date, tm  string
		phone     sql.NullString
		createdAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&sum.ID, &sum.MovieTitle, &date, &tm, &sum.Building,
		&sum.SeatClass, &phone, &sum.TotalPrice, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sum.Showtime = date + " " + tm
	if phone.Valid {
		p := phone.String
		sum.PhoneNumber = &p
	}
	if createdAt.Valid {
		sum.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
	}
	labels, err := r.seatLabels(ctx, id)
	if err != nil {
		return nil, err
	}
	sum.Seats = labels
	sum.SeatCount = len(labels)
	return &sum, nil
}

// seatLabels returns the "row+number" labels of all seats linked to a
// reservation, ordered deterministically.
func (r *ReservationRepo) seatLabels(ctx context.Context, reservationID uint64) ([]string, error) {
	const q = `SELECT se.row_label, se.seat_number
	           FROM reservation_seats rs
	           JOIN seats se ON se.id = rs.seat_id
	           WHERE rs.reservation_id = ?
	           ORDER BY se.row_label, se.seat_number`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make([]string, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.RowLabel, &s.SeatNumber); err != nil {
			return nil, err
		}
		labels = append(labels, s.Label())
	}
	return labels, rows.Err()
}

// CancelInfo is the slice of reservation state the cancellation rule
// needs: who owns it, what is cancelled, and when the show starts.
type CancelInfo struct {
	ID       uint64
	UserID   uint64
	MovieID  uint64
	ShowDate string
	ShowTime string
}

// GetCancelInfo loads the reservation joined with its showtime for the
// cancellation-window check.  ErrNotFound when the reservation is absent.
func (r *ReservationRepo) GetCancelInfo(ctx context.Context, id uint64) (CancelInfo, error) {
	const q = `SELECT r.id, r.user_id, r.movie_id, s.show_date, s.show_time
	           FROM reservations r
	           JOIN showtimes s ON s.id = r.showtime_id
	           WHERE r.id = ?`
	var info CancelInfo
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&info.ID, &info.UserID, &info.MovieID, &info.ShowDate, &info.ShowTime)
	if errors.Is(err, sql.ErrNoRows) {
		return info, ErrNotFound
	}
	return info, err
}

// Delete removes a reservation; its seat links cascade, freeing the
// seats for future claims.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateParams carries optional new values for an update.  Nil pointers
// keep stored values; a nil SeatIDs slice keeps the seat links, while a
// non-nil slice replaces them wholesale.
type UpdateParams struct {
	ShowtimeID  *uint64
	BuildingID  *uint64
	SeatClass   *string
	TotalPrice  *float64
	PhoneNumber *string
	SeatIDs     []uint64
}

// Update overwrites the provided fields and, when a seat list is given,
// replaces the seat association wholesale.  The replacement drops the
// old claims and inserts the new ones in one transaction, so a
// concurrent claim on one of the new seats fails on the unique key and
// maps to ErrSeatTaken.  Returns the updated entity.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, p UpdateParams) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existing model.Reservation
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, movie_id, showtime_id, building_id, seat_class, total_price, phone_number, created_at, updated_at
		 FROM reservations WHERE id=? FOR UPDATE`, id).Scan(
		&existing.ID, &existing.UserID, &existing.MovieID, &existing.ShowtimeID, &existing.BuildingID,
		&existing.SeatClass, &existing.TotalPrice, &existing.PhoneNumber, &existing.CreatedAt, &existing.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.ShowtimeID != nil {
		existing.ShowtimeID = *p.ShowtimeID
	}
	if p.BuildingID != nil {
		existing.BuildingID = *p.BuildingID
	}
	if p.SeatClass != nil {
		existing.SeatClass = *p.SeatClass
	}
	if p.TotalPrice != nil {
		existing.TotalPrice = *p.TotalPrice
	}
	if p.PhoneNumber != nil {
		existing.PhoneNumber = p.PhoneNumber
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET showtime_id=?, building_id=?, seat_class=?, total_price=?, phone_number=? WHERE id=?`,
		existing.ShowtimeID, existing.BuildingID, existing.SeatClass, existing.TotalPrice, existing.PhoneNumber, id); err != nil {
		if isFKViolation(err) {
			return nil, ErrInvalidReference
		}
		return nil, err
	}

	if p.SeatIDs != nil {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM reservation_seats WHERE reservation_id=?", id); err != nil {
			return nil, err
		}
		if err := insertSeatLinks(ctx, tx, id, existing.ShowtimeID, p.SeatIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &existing, nil
}

// ReservedSeatIDs returns the flattened seat IDs across all
// reservations matching the (movie, showtime, building) triple.
func (r *ReservationRepo) ReservedSeatIDs(ctx context.Context, movieID, showtimeID, buildingID uint64) ([]uint64, error) {
	const q = `SELECT rs.seat_id
	           FROM reservation_seats rs
	           JOIN reservations r ON r.id = rs.reservation_id
	           WHERE r.movie_id = ? AND r.showtime_id = ? AND r.building_id = ?`
	rows, err := r.db.QueryContext(ctx, q, movieID, showtimeID, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		ids = append(ids, sid)
	}
	return ids, rows.Err()
}

// ListByUser returns the flattened reservations of one user, newest
// first, each with its seat labels populated.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]Summary, error) {
	const q = `SELECT r.id, m.title, s.show_date, s.show_time, b.name,
	                  r.seat_class, r.phone_number, r.total_price, r.created_at
	           FROM reservations r
	           JOIN movies m ON m.id = r.movie_id
	           JOIN showtimes s ON s.id = r.showtime_id
	           JOIN buildings b ON b.id = r.building_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	return r.listSummaries(ctx, q, userID)
}

// ListAll returns every reservation with the owning user's email, for
// the admin listing.  Newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]Summary, error) {
	const q = `SELECT r.id, m.title, s.show_date, s.show_time, b.name,
	                  r.seat_class, r.phone_number, r.total_price, r.created_at, u.email
	           FROM reservations r
	           JOIN movies m ON m.id = r.movie_id
	           JOIN showtimes s ON s.id = r.showtime_id
	           JOIN buildings b ON b.id = r.building_id
	           JOIN users u ON u.id = r.user_id
	           ORDER BY r.created_at DESC`
	return r.listSummaries(ctx, q)
}

// listSummaries runs one of the listing queries above and populates the
// seat labels for all returned reservations in a single follow-up query.
func (r *ReservationRepo) listSummaries(ctx context.Context, query string, args ...interface{}) ([]Summary, error) {
	withEmail := strings.Contains(query, "u.email")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var (
			sum       Summary
			date, tm  string
			phone     sql.NullString
			createdAt sql.NullTime
		)
		dest := []interface{}{
			&sum.ID, &sum.MovieTitle, &date, &tm, &sum.Building,
			&sum.SeatClass, &phone, &sum.TotalPrice, &createdAt,
		}
		if withEmail {
			dest = append(dest, &sum.UserEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		sum.Showtime = date + " " + tm
		if phone.Valid {
			p := phone.String
			sum.PhoneNumber = &p
		}
		if createdAt.Valid {
			sum.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
		}
		sum.Seats = []string{}
		index[sum.ID] = len(summaries)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	// Populate seats for all reservations in one query.
	ids := make([]interface{}, 0, len(summaries))
	placeholders := make([]string, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
		placeholders = append(placeholders, "?")
	}
	seatQuery := `SELECT rs.reservation_id, se.row_label, se.seat_number
	              FROM reservation_seats rs
	              JOIN seats se ON se.id = rs.seat_id
	              WHERE rs.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	              ORDER BY rs.reservation_id, se.row_label, se.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var (
			rid  uint64
			seat model.Seat
		)
		if err := srows.Scan(&rid, &seat.RowLabel, &seat.SeatNumber); err != nil {
			return nil, err
		}
		idx, ok := index[rid]
		if !ok {
			continue
		}
		summaries[idx].Seats = append(summaries[idx].Seats, seat.Label())
		summaries[idx].SeatCount = len(summaries[idx].Seats)
	}
	return summaries, srows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// isFKViolation reports whether err is a MySQL foreign-key failure
// (error 1452), meaning a referenced movie, showtime, building or user
// does not exist.
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
