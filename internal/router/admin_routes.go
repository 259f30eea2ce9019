package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/handler"
	"github.com/iliyamo/movie-ticket-reservation/internal/middleware"
)

// RegisterAdmin registers the management surface: catalogue mutations,
// account administration and the full reservation list.  Every route
// requires the admin role.
func RegisterAdmin(e *echo.Echo, m *handler.MovieHandler, u *handler.UserHandler, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	g.POST("/movies", m.Create)
	g.PUT("/movies/:id", m.Update)
	g.DELETE("/movies/:id", m.Delete)

	g.GET("/users", u.ListUsers)
	g.PUT("/users/:id", u.UpdateUser)
	g.DELETE("/users/:id", u.DeleteUser)

	g.GET("/reservations", r.ListAll)
}
