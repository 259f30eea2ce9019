package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/handler"
)

// RegisterRoutes registers routes that carry no authentication at all:
// the health check and the live seat-update stream.  The stream is open
// so a booking page can show availability before the visitor logs in.
func RegisterRoutes(e *echo.Echo, stream *handler.StreamHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/stream", stream.Stream)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// movie catalogue, showtimes, seat maps, venues and the reserved-seat
// probe.  The cache middleware fronts the catalogue reads; the
// reserved-seat probe stays uncached so availability is never stale.
func RegisterPublic(e *echo.Echo, m *handler.MovieHandler, s *handler.ShowtimeHandler, b *handler.BuildingHandler, r *handler.ReservationHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api", cache)
	g.GET("/movies", m.List)
	g.GET("/movies/:id", m.Get)
	g.GET("/showtimes", s.List)
	g.GET("/showtimes/:id/seats", s.SeatMap)
	g.GET("/buildings", b.List)

	e.GET("/api/reservations/reserved-seats", r.ReservedSeats)
}
