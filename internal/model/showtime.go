package model

import "time"

// Showtime represents a scheduled screening of a movie at a
// specific building, date and time.  The building name is stored
// denormalized on the row; reservations link back to the building
// table by ID.  Seats are created in bulk when a showtime is
// created.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  ShowDate  – calendar date of the screening ("YYYY-MM-DD").
//  ShowTime  – wall-clock start time ("HH:MM").
//  Building  – denormalized name of the venue.
//  CreatedAt – timestamp when the showtime was created.
//  UpdatedAt – timestamp of last update.
type Showtime struct {
	ID        uint64    // showtimes.id
	MovieID   uint64    // showtimes.movie_id
	ShowDate  string    // showtimes.show_date
	ShowTime  string    // showtimes.show_time
	Building  string    // showtimes.building
	CreatedAt time.Time // showtimes.created_at
	UpdatedAt time.Time // showtimes.updated_at
}

// StartsAt combines ShowDate and ShowTime into a single UTC
// timestamp.  It returns an error when either component does not
// match the expected layout, which callers surface as invalid
// showtime data.
func (s Showtime) StartsAt() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", s.ShowDate+" "+s.ShowTime)
}
