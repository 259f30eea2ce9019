package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role is a typed role name.  The application knows exactly two roles;
// anything else in a token is ignored by the membership check.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRoles normalizes a role claim into typed roles.  Legacy tokens
// may carry a comma-separated list; each entry is trimmed and
// lower-cased before being matched against the known roles.
func ParseRoles(claim string) []Role {
	parts := strings.Split(claim, ",")
	roles := make([]Role, 0, len(parts))
	for _, p := range parts {
		switch Role(strings.ToLower(strings.TrimSpace(p))) {
		case RoleAdmin:
			roles = append(roles, RoleAdmin)
		case RoleUser:
			roles = append(roles, RoleUser)
		}
	}
	return roles
}

// RequireRole returns a middleware that enforces that the authenticated
// user holds at least one of the specified roles.  It assumes JWTAuth
// has stored the token's role claim in the context under "role".
// Requests with a missing or unknown role are rejected with 403.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim, ok := c.Get("role").(string)
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden: no role assigned"})
			}
			for _, r := range ParseRoles(claim) {
				if allowed[r] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden: role not authorized"})
		}
	}
}
