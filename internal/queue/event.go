// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationEvent is published for every reservation lifecycle change
// (reserved, cancelled, updated).  It mirrors the payload pushed to the
// SSE stream but is durable: downstream consumers can log, notify or
// feed analytics without querying the primary database.
type ReservationEvent struct {
	Action        string   `json:"action"`
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	MovieID       uint64   `json:"movie_id,omitempty"`
	MovieTitle    string   `json:"movie_title,omitempty"`
	ShowtimeID    uint64   `json:"showtime_id,omitempty"`
	Showtime      string   `json:"showtime,omitempty"`
	Building      string   `json:"building,omitempty"`
	SeatClass     string   `json:"seat_class,omitempty"`
	SeatLabels    []string `json:"seats,omitempty"`
	TotalPrice    float64  `json:"total_price,omitempty"`
	OccurredAt    string   `json:"occurred_at"`
}
