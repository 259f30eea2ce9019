package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/handler"
	"github.com/iliyamo/movie-ticket-reservation/internal/middleware"
)

// RegisterReservations registers the booking endpoints.  Every route
// requires a valid access token; ownership checks happen inside the
// handlers so an admin can manage any reservation.  The create endpoint
// additionally sits behind the rate limiter, since seat claims are the
// cheapest call to spam.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/api/reservations",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin, middleware.RoleUser),
	)
	g.POST("", r.Create, limiter)
	g.GET("/my", r.My)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Cancel)
}
