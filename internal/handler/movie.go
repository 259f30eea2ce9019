package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/model"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
	"github.com/iliyamo/movie-ticket-reservation/internal/utils"
)

// MovieHandler serves the public movie catalogue and the admin-only
// mutations.  Creating a movie also provisions its showtimes and the
// seat grid for each showtime in a single transaction.
type MovieHandler struct {
	Movies    *repository.MovieRepo
	Showtimes *repository.ShowtimeRepo
	Seats     *repository.SeatRepo
	Buildings *repository.BuildingRepo
}

func NewMovieHandler(m *repository.MovieRepo, s *repository.ShowtimeRepo, seats *repository.SeatRepo, b *repository.BuildingRepo) *MovieHandler {
	return &MovieHandler{Movies: m, Showtimes: s, Seats: seats, Buildings: b}
}

type movieResp struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	DurationMin uint32  `json:"durationMin"`
	Genre       *string `json:"genre"`
}

func toMovieResp(m model.Movie) movieResp {
	return movieResp{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		Image:       m.Image,
		DurationMin: m.DurationMin,
		Genre:       m.Genre,
	}
}

// List returns the catalogue, optionally sorted (?sort=title|created_at)
// and truncated (?limit=N).
func (h *MovieHandler) List(c echo.Context) error {
	sort := c.QueryParam("sort")
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.List(ctx, sort, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get resolves a movie by numeric ID or by slug and includes its
// showtimes, so the booking page loads with one request.
func (h *MovieHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	key := strings.TrimSpace(c.Param("id"))
	var (
		m   model.Movie
		err error
	)
	if id, perr := strconv.ParseUint(key, 10, 64); perr == nil && id > 0 {
		m, err = h.Movies.GetByID(ctx, id)
	} else {
		m, err = h.Movies.GetBySlug(ctx, key)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	shows, err := h.Showtimes.ListByMovie(ctx, m.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	showOut := make([]showtimeResp, 0, len(shows))
	for _, s := range shows {
		showOut = append(showOut, toShowtimeResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie":     toMovieResp(m),
		"showtimes": showOut,
	})
}

type showtimeInput struct {
	ShowDate string `json:"showDate"` // YYYY-MM-DD
	ShowTime string `json:"showTime"` // HH:MM
}

type movieCreateReq struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Image       *string         `json:"image"`
	DurationMin uint32          `json:"durationMin"`
	Genre       *string         `json:"genre"`
	BuildingID  uint64          `json:"buildingId"`
	Showtimes   []showtimeInput `json:"showtimes"`
}

// Create inserts a movie, its showtimes and a full seat grid per
// showtime in one transaction, so a failed grid insert leaves no
// half-provisioned screening behind.  Admin only.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	if req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "durationMin required"})
	}
	for _, s := range req.Showtimes {
		if _, err := time.Parse("2006-01-02 15:04", s.ShowDate+" "+s.ShowTime); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtimes must use YYYY-MM-DD and HH:MM"})
		}
	}
	if len(req.Showtimes) == 0 {
		// No showtimes supplied: schedule an evening double two days out.
		date := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
		req.Showtimes = []showtimeInput{
			{ShowDate: date, ShowTime: "18:00"},
			{ShowDate: date, ShowTime: "21:00"},
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	building, err := h.resolveBuilding(ctx, req.BuildingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "building not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tx, err := h.Movies.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m := model.Movie{
		Title:       req.Title,
		Slug:        utils.Slugify(req.Title),
		Description: req.Description,
		Image:       req.Image,
		DurationMin: req.DurationMin,
		Genre:       req.Genre,
	}
	if err := h.Movies.CreateTx(ctx, tx, &m); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a movie with this title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}

	created := make([]showtimeResp, 0, len(req.Showtimes))
	for _, in := range req.Showtimes {
		s := model.Showtime{
			MovieID:  m.ID,
			ShowDate: in.ShowDate,
			ShowTime: in.ShowTime,
			Building: building.Name,
		}
		if err := h.Showtimes.CreateTx(ctx, tx, &s); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create showtime failed"})
		}
		if err := h.Seats.CreateBulkTx(ctx, tx, model.SeatGrid(s.ID)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seats failed"})
		}
		created = append(created, toShowtimeResp(s))
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"movie":     toMovieResp(m),
		"showtimes": created,
	})
}

func (h *MovieHandler) resolveBuilding(ctx context.Context, id uint64) (model.Building, error) {
	if id != 0 {
		return h.Buildings.GetByID(ctx, id)
	}
	// No building supplied: default to the first venue.
	return h.Buildings.First(ctx)
}

type movieUpdateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	DurationMin *uint32 `json:"durationMin"`
	Genre       *string `json:"genre"`
}

// Update applies a partial movie update.  A title change does not alter
// the slug; existing links keep working.  Admin only.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req movieUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Update(ctx, id, req.Title, req.Description, req.Image, req.Genre, req.DurationMin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toMovieResp(m))
}

// Delete removes a movie; showtimes, seats and reservations cascade
// through foreign keys.  Admin only.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted"})
}
