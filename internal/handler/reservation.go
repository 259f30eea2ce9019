package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/broadcast"
	"github.com/iliyamo/movie-ticket-reservation/internal/model"
	"github.com/iliyamo/movie-ticket-reservation/internal/queue"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
	queuepub "github.com/iliyamo/movie-ticket-reservation/internal/service"
)

// cancelWindow is the minimum lead time before a showtime during which a
// reservation may still be cancelled.
const cancelWindow = 24 * time.Hour

// reservationStore is the persistence surface the reservation endpoints
// need.  *repository.ReservationRepo satisfies it; tests substitute an
// in-memory fake.
type reservationStore interface {
	Create(ctx context.Context, p repository.CreateParams) (*repository.Summary, error)
	GetCancelInfo(ctx context.Context, id uint64) (repository.CancelInfo, error)
	Delete(ctx context.Context, id uint64) error
	Update(ctx context.Context, id uint64, p repository.UpdateParams) (*model.Reservation, error)
	ReservedSeatIDs(ctx context.Context, movieID, showtimeID, buildingID uint64) ([]uint64, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.Summary, error)
	ListAll(ctx context.Context) ([]repository.Summary, error)
}

// showtimeSource resolves showtimes for validation and the cancellation
// window check.
type showtimeSource interface {
	GetByID(ctx context.Context, id uint64) (model.Showtime, error)
}

// seatUpdatePublisher pushes live updates to streaming clients.
type seatUpdatePublisher interface {
	Publish(u broadcast.SeatUpdate)
}

// ReservationHandler implements the booking endpoints.  Every
// state-changing operation publishes a seat update to streaming clients
// and emits a durable event to the message broker.
type ReservationHandler struct {
	Store     reservationStore
	Showtimes showtimeSource
	Events    seatUpdatePublisher

	// publishEvent and now are swappable for tests.
	publishEvent func(ctx context.Context, e queue.ReservationEvent) error
	now          func() time.Time
}

func NewReservationHandler(store reservationStore, showtimes showtimeSource, events seatUpdatePublisher) *ReservationHandler {
	return &ReservationHandler{
		Store:        store,
		Showtimes:    showtimes,
		Events:       events,
		publishEvent: queuepub.PublishReservationEvent,
		now:          time.Now,
	}
}

type reservationCreateReq struct {
	MovieID     uint64   `json:"movieId"`
	ShowtimeID  uint64   `json:"showtimeId"`
	BuildingID  uint64   `json:"buildingId"`
	SeatClass   string   `json:"seatClass"`
	SeatIDs     []uint64 `json:"seats"`
	SeatCount   int      `json:"seatCount"`
	TotalPrice  float64  `json:"totalPrice"`
	PhoneNumber string   `json:"phoneNumber"`
}

func validSeatClass(s string) bool {
	switch s {
	case model.SeatClassFirst, model.SeatClassSecond, model.SeatClassRegular:
		return true
	}
	return false
}

// Create books the requested seats.  Availability is checked for every
// submitted seat inside the same transaction that claims them, so two
// racing requests for overlapping seats cannot both succeed; the loser
// gets 409.  On success the seat update is broadcast to all streaming
// subscribers and a durable event goes to the broker.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	var req reservationCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.ShowtimeID == 0 || req.BuildingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movieId, showtimeId and buildingId are required"})
	}
	if len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one seat is required"})
	}
	if req.SeatCount != len(req.SeatIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatCount must equal the number of seats"})
	}
	seen := make(map[uint64]bool, len(req.SeatIDs))
	for _, id := range req.SeatIDs {
		if id == 0 || seen[id] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatIds must be unique and non-zero"})
		}
		seen[id] = true
	}
	if !validSeatClass(req.SeatClass) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatClass must be first, second or regular"})
	}
	if req.TotalPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "totalPrice cannot be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	show, err := h.Showtimes.GetByID(ctx, req.ShowtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if show.MovieID != req.MovieID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime does not belong to this movie"})
	}

	summary, err := h.Store.Create(ctx, repository.CreateParams{
		UserID:      uid,
		MovieID:     req.MovieID,
		ShowtimeID:  req.ShowtimeID,
		BuildingID:  req.BuildingID,
		SeatClass:   req.SeatClass,
		SeatIDs:     req.SeatIDs,
		TotalPrice:  req.TotalPrice,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "one or more selected seats are already reserved"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "one or more seats do not belong to this showtime"})
		case errors.Is(err, repository.ErrInvalidReference):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie, showtime or building not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}

	h.Events.Publish(broadcast.SeatUpdate{
		Action:        broadcast.ActionReserved,
		ReservationID: summary.ID,
		MovieID:       req.MovieID,
		ShowtimeID:    req.ShowtimeID,
		BuildingID:    req.BuildingID,
		SeatIDs:       req.SeatIDs,
		UserID:        uid,
		SeatClass:     req.SeatClass,
		PhoneNumber:   req.PhoneNumber,
		TotalPrice:    req.TotalPrice,
	}.Stamp())

	h.emitEvent(queue.ReservationEvent{
		Action:        broadcast.ActionReserved,
		ReservationID: summary.ID,
		UserID:        uid,
		MovieID:       req.MovieID,
		MovieTitle:    summary.MovieTitle,
		ShowtimeID:    req.ShowtimeID,
		Showtime:      summary.Showtime,
		Building:      summary.Building,
		SeatClass:     summary.SeatClass,
		SeatLabels:    summary.Seats,
		TotalPrice:    summary.TotalPrice,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "reservation confirmed",
		"reservation": summary,
	})
}

// Cancel deletes a reservation.  Only the owner or an admin may cancel,
// and only while the showtime is at least 24 hours away.  Unparseable
// showtime data is a client-visible 400, not a silent pass.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	info, err := h.Store.GetCancelInfo(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if info.UserID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to cancel this reservation"})
	}

	start, err := model.Showtime{ShowDate: info.ShowDate, ShowTime: info.ShowTime}.StartsAt()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime data"})
	}
	if start.Sub(h.now().UTC()) < cancelWindow {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "reservations can only be cancelled at least 24 hours before the showtime"})
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}

	h.Events.Publish(broadcast.SeatUpdate{
		Action:        broadcast.ActionCancelled,
		ReservationID: id,
		MovieID:       info.MovieID,
		UserID:        info.UserID,
	}.Stamp())

	h.emitEvent(queue.ReservationEvent{
		Action:        broadcast.ActionCancelled,
		ReservationID: id,
		UserID:        info.UserID,
		MovieID:       info.MovieID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

type reservationUpdateReq struct {
	ShowtimeID  *uint64  `json:"showtimeId"`
	BuildingID  *uint64  `json:"buildingId"`
	SeatClass   *string  `json:"seatClass"`
	SeatIDs     []uint64 `json:"seats"`
	TotalPrice  *float64 `json:"totalPrice"`
	PhoneNumber *string  `json:"phoneNumber"`
}

type reservationResp struct {
	ID          uint64  `json:"id"`
	UserID      uint64  `json:"userId"`
	MovieID     uint64  `json:"movieId"`
	ShowtimeID  uint64  `json:"showtimeId"`
	BuildingID  uint64  `json:"buildingId"`
	SeatClass   string  `json:"seatClass"`
	TotalPrice  float64 `json:"totalPrice"`
	PhoneNumber *string `json:"phoneNumber"`
}

// Update applies a partial change to a reservation.  When a seat list
// is present the old claims are replaced wholesale; a conflict with a
// concurrent claim surfaces as 409.  Owner or admin only.
func (h *ReservationHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req reservationUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.SeatClass != nil && !validSeatClass(*req.SeatClass) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatClass must be first, second or regular"})
	}
	if req.SeatIDs != nil && len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatIds cannot be empty"})
	}
	if req.TotalPrice != nil && *req.TotalPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "totalPrice cannot be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	info, err := h.Store.GetCancelInfo(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if info.UserID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to update this reservation"})
	}

	updated, err := h.Store.Update(ctx, id, repository.UpdateParams{
		ShowtimeID:  req.ShowtimeID,
		BuildingID:  req.BuildingID,
		SeatClass:   req.SeatClass,
		TotalPrice:  req.TotalPrice,
		PhoneNumber: req.PhoneNumber,
		SeatIDs:     req.SeatIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "one or more selected seats are already reserved"})
		case errors.Is(err, repository.ErrInvalidReference):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime or building not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.Events.Publish(broadcast.SeatUpdate{
		Action:        broadcast.ActionUpdated,
		ReservationID: id,
		MovieID:       updated.MovieID,
		ShowtimeID:    updated.ShowtimeID,
		BuildingID:    updated.BuildingID,
		SeatIDs:       req.SeatIDs,
		UserID:        updated.UserID,
		SeatClass:     updated.SeatClass,
		TotalPrice:    updated.TotalPrice,
	}.Stamp())

	h.emitEvent(queue.ReservationEvent{
		Action:        broadcast.ActionUpdated,
		ReservationID: id,
		UserID:        updated.UserID,
		MovieID:       updated.MovieID,
		ShowtimeID:    updated.ShowtimeID,
		SeatClass:     updated.SeatClass,
		TotalPrice:    updated.TotalPrice,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "reservation updated",
		"reservation": reservationResp{
			ID:          updated.ID,
			UserID:      updated.UserID,
			MovieID:     updated.MovieID,
			ShowtimeID:  updated.ShowtimeID,
			BuildingID:  updated.BuildingID,
			SeatClass:   updated.SeatClass,
			TotalPrice:  updated.TotalPrice,
			PhoneNumber: updated.PhoneNumber,
		},
	})
}

// ReservedSeats is the public availability probe for a booking page: it
// returns the seat IDs already claimed for the given movie, showtime and
// building.  All three parameters are required.
func (h *ReservationHandler) ReservedSeats(c echo.Context) error {
	movieID, err1 := strconv.ParseUint(c.QueryParam("movieId"), 10, 64)
	showtimeID, err2 := strconv.ParseUint(c.QueryParam("showtimeId"), 10, 64)
	buildingID, err3 := strconv.ParseUint(c.QueryParam("buildingId"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || movieID == 0 || showtimeID == 0 || buildingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movieId, showtimeId and buildingId are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Store.ReservedSeatIDs(ctx, movieID, showtimeID, buildingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, echo.Map{"seatIds": ids})
}

// My lists the authenticated user's reservations, newest first.
func (h *ReservationHandler) My(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if list == nil {
		list = []repository.Summary{}
	}
	return c.JSON(http.StatusOK, list)
}

// ListAll returns every reservation with the owner's email.  Admin only.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if list == nil {
		list = []repository.Summary{}
	}
	return c.JSON(http.StatusOK, list)
}

// emitEvent publishes to the broker off the request path.  Broker
// outages never fail a booking; the error is logged by the publisher.
func (h *ReservationHandler) emitEvent(e queue.ReservationEvent) {
	e.OccurredAt = h.now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.publishEvent(ctx, e); err != nil {
			log.Printf("reservation event publish failed: %v", err)
		}
	}()
}
