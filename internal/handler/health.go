package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds 200 when the process is up.  It deliberately avoids
// touching the database so load balancers see the server itself.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
