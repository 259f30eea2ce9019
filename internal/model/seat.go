package model

import "fmt"

// Seat classes understood by the pricing and reservation logic.
const (
	SeatClassFirst   = "first"
	SeatClassSecond  = "second"
	SeatClassRegular = "regular"
)

// Seat describes a bookable seat tied to exactly one showtime.
// Seats are uniquely identified by their showtime, row label and
// seat number.  The class indicates the pricing tier.
//
// Fields:
//  ID         – primary key identifier.
//  ShowtimeID – showtime to which this seat belongs.
//  RowLabel   – letter or string designating the row.
//  SeatNumber – number of the seat within the row.
//  SeatClass  – pricing tier (first, second, regular).
//  Price      – price of the seat in the venue currency.
type Seat struct {
	ID         uint64  // seats.id
	ShowtimeID uint64  // seats.showtime_id
	RowLabel   string  // seats.row_label
	SeatNumber uint32  // seats.seat_number
	SeatClass  string  // seats.seat_class
	Price      float64 // seats.price
}

// Label returns the client-facing seat label, the row letter
// immediately followed by the seat number (e.g. "A1").
func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.RowLabel, s.SeatNumber)
}

// Per-class prices for the standard auditorium layout.
const (
	PriceFirst   = 15.0
	PriceSecond  = 12.0
	PriceRegular = 9.0
)

// SeatGrid builds the standard auditorium layout for a showtime:
// five rows (A through E) of ten seats each.  Row A is first class,
// row B second class, the remaining rows regular.
func SeatGrid(showtimeID uint64) []Seat {
	rows := []string{"A", "B", "C", "D", "E"}
	seats := make([]Seat, 0, len(rows)*10)
	for i, row := range rows {
		class, price := SeatClassRegular, PriceRegular
		switch i {
		case 0:
			class, price = SeatClassFirst, PriceFirst
		case 1:
			class, price = SeatClassSecond, PriceSecond
		}
		for n := uint32(1); n <= 10; n++ {
			seats = append(seats, Seat{
				ShowtimeID: showtimeID,
				RowLabel:   row,
				SeatNumber: n,
				SeatClass:  class,
				Price:      price,
			})
		}
	}
	return seats
}
