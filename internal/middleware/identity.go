package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id stored by JWTAuth as
// a string, or "anon" for requests outside the protected surface.  Rate
// limit and cache keys share this helper so a logged-in user gets a
// stable per-identity bucket regardless of NAT or proxies.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64: // JSON numbers decode to float64 in jwt claims
		return fmt.Sprintf("%d", uint64(t))
	case string:
		if t == "" {
			return "anon"
		}
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
