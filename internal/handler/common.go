package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/middleware"
)

// getUserID extracts the user_id claim stored by the auth middleware and
// converts it to uint64.  JSON numbers decode to float64, so the switch
// covers every representation a parsed token may produce.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated caller carries the admin role.
func isAdmin(c echo.Context) bool {
	claim, _ := c.Get("role").(string)
	for _, r := range middleware.ParseRoles(claim) {
		if r == middleware.RoleAdmin {
			return true
		}
	}
	return false
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
