package model

import "time"

// Reservation records a user's booking of one or more seats for a
// showtime.  The movie and building references are carried on the
// row so reserved-seat queries can filter on the
// (movie, showtime, building) triple directly.  Seats are linked
// through the reservation_seats table.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who made the reservation.
//  MovieID     – movie being reserved.
//  ShowtimeID  – showtime being reserved.
//  BuildingID  – venue of the screening.
//  SeatClass   – pricing tier chosen by the customer.
//  TotalPrice  – total price for all seats.
//  PhoneNumber – contact number supplied at booking time (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          uint64    // reservations.id
	UserID      uint64    // reservations.user_id
	MovieID     uint64    // reservations.movie_id
	ShowtimeID  uint64    // reservations.showtime_id
	BuildingID  uint64    // reservations.building_id
	SeatClass   string    // reservations.seat_class
	TotalPrice  float64   // reservations.total_price
	PhoneNumber *string   // reservations.phone_number (nullable)
	CreatedAt   time.Time // reservations.created_at
	UpdatedAt   time.Time // reservations.updated_at
}

// ReservationSeat links a reservation to an individual seat.  The
// showtime ID is duplicated on the row so the database can enforce
// that a seat is claimed by at most one reservation per showtime
// via a unique key over (showtime_id, seat_id).
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reference to the reservation.
//  ShowtimeID    – showtime in which the seat is booked.
//  SeatID        – seat that has been reserved.
//  CreatedAt     – creation timestamp.
type ReservationSeat struct {
	ID            uint64    // reservation_seats.id
	ReservationID uint64    // reservation_seats.reservation_id
	ShowtimeID    uint64    // reservation_seats.showtime_id
	SeatID        uint64    // reservation_seats.seat_id
	CreatedAt     time.Time // reservation_seats.created_at
}
