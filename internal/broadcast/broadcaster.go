// Package broadcast implements the in-process publish/subscribe fan-out
// behind the seat-update stream.  Handlers publish reservation lifecycle
// events; each open streaming connection holds a subscription and relays
// events to its client.  The interface is deliberately narrow (subscribe,
// unsubscribe, publish) so a shared broker could replace the in-memory
// implementation without touching callers.
package broadcast

import (
	"sync"
	"time"
)

// Actions carried by a SeatUpdate.
const (
	ActionReserved  = "reserved"
	ActionCancelled = "cancelled"
	ActionUpdated   = "updated"
)

// SeatUpdate is the payload pushed to subscribers whenever a reservation
// changes.  Fields not relevant to an action are omitted from the JSON:
// a "cancelled" update carries only the movie, user and timestamp, while
// "updated" echoes whichever fields the update request supplied.
type SeatUpdate struct {
	Action        string   `json:"action"`
	ReservationID uint64   `json:"reservationId,omitempty"`
	MovieID       uint64   `json:"movieId,omitempty"`
	ShowtimeID    uint64   `json:"showtimeId,omitempty"`
	BuildingID    uint64   `json:"buildingId,omitempty"`
	SeatIDs       []uint64 `json:"seatIds,omitempty"`
	UserID        uint64   `json:"userId,omitempty"`
	SeatClass     string   `json:"seatClass,omitempty"`
	PhoneNumber   string   `json:"phoneNumber,omitempty"`
	TotalPrice    float64  `json:"totalPrice,omitempty"`
	Timestamp     string   `json:"timestamp"`
}

// Stamp sets the event timestamp to the current UTC time in RFC3339
// format and returns the update, so call sites can publish in one line.
func (u SeatUpdate) Stamp() SeatUpdate {
	u.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return u
}

// Subscriber is a live subscription handle.  Events arrive on C until
// Unsubscribe is called, after which C is closed.
type Subscriber struct {
	id uint64
	C  chan SeatUpdate
}

// Broadcaster fans SeatUpdate events out to all current subscribers.
// Events published while nobody is subscribed are discarded; there is no
// replay for late subscribers.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscriber
}

// New returns an empty Broadcaster ready for use.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]*Subscriber)}
}

// subscriberBuffer bounds how far a slow consumer may lag before events
// are dropped for it.  Publishing never blocks on a stalled connection.
const subscriberBuffer = 16

// Subscribe registers a new subscriber and returns its handle.  The
// subscriber only sees events published after this call returns.
func (b *Broadcaster) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscriber{id: b.nextID, C: make(chan SeatUpdate, subscriberBuffer)}
	b.subs[s.id] = s
	return s
}

// Unsubscribe removes the subscriber and closes its channel.  It is safe
// to call once per subscriber; callers typically defer it when the
// streaming connection ends.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; ok {
		delete(b.subs, s.id)
		close(s.C)
	}
}

// Publish delivers the update to every current subscriber.  A subscriber
// whose buffer is full has the event dropped rather than stalling the
// publisher; the reservation itself has already been committed by the
// time Publish runs, so delivery is best effort.
func (b *Broadcaster) Publish(u SeatUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		select {
		case s.C <- u:
		default:
		}
	}
}

// Len reports the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
