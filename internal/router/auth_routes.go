package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/handler"
	"github.com/iliyamo/movie-ticket-reservation/internal/middleware"
)

// RegisterAuth registers the session endpoints.  Register, login,
// refresh and logout-by-token live under /api/auth without a JWT;
// the identity and profile endpoints require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout here revokes the refresh token supplied in the body; no JWT
	// is needed, so a client with an expired access token can still end
	// its session.
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/api",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin, middleware.RoleUser),
	)
	auth.GET("/auth/me", a.Me)
	// Logout without a body revokes every session of the caller.
	auth.POST("/logout", a.Logout)
	auth.GET("/profile", u.Profile)
	auth.PUT("/profile", u.UpdateProfile)
}
