package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
)

// ShowtimeHandler serves the public showtime listings and the seat map
// for a showtime.
type ShowtimeHandler struct {
	Showtimes *repository.ShowtimeRepo
	Seats     *repository.SeatRepo
}

func NewShowtimeHandler(s *repository.ShowtimeRepo, seats *repository.SeatRepo) *ShowtimeHandler {
	return &ShowtimeHandler{Showtimes: s, Seats: seats}
}

type showtimeResp struct {
	ID       uint64 `json:"id"`
	MovieID  uint64 `json:"movieId"`
	ShowDate string `json:"showDate"`
	ShowTime string `json:"showTime"`
	Building string `json:"building"`
}

func toShowtimeResp(s model.Showtime) showtimeResp {
	return showtimeResp{
		ID:       s.ID,
		MovieID:  s.MovieID,
		ShowDate: s.ShowDate,
		ShowTime: s.ShowTime,
		Building: s.Building,
	}
}

// List returns showtimes, optionally filtered by ?movieId=N.
func (h *ShowtimeHandler) List(c echo.Context) error {
	var movieID uint64
	if raw := c.QueryParam("movieId"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movieId"})
		}
		movieID = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shows, err := h.Showtimes.List(ctx, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]showtimeResp, 0, len(shows))
	for _, s := range shows {
		out = append(out, toShowtimeResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

type seatResp struct {
	ID         uint64  `json:"id"`
	RowLabel   string  `json:"rowLabel"`
	SeatNumber uint32  `json:"seatNumber"`
	SeatClass  string  `json:"seatClass"`
	Price      float64 `json:"price"`
	Label      string  `json:"label"`
}

// SeatMap returns every seat of a showtime so clients can draw the
// auditorium.  Reserved seat IDs come from the reservations endpoint;
// combining the two is the client's job.
func (h *ShowtimeHandler) SeatMap(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Showtimes.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	seats, err := h.Seats.ListByShowtime(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]seatResp, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatResp{
			ID:         s.ID,
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			SeatClass:  s.SeatClass,
			Price:      s.Price,
			Label:      s.Label(),
		})
	}
	return c.JSON(http.StatusOK, out)
}
