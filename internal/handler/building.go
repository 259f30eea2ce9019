package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
)

// BuildingHandler serves the venue listing.
type BuildingHandler struct {
	Buildings *repository.BuildingRepo
}

func NewBuildingHandler(b *repository.BuildingRepo) *BuildingHandler {
	return &BuildingHandler{Buildings: b}
}

type buildingResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity uint32 `json:"capacity"`
}

// List returns every venue.
func (h *BuildingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	buildings, err := h.Buildings.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]buildingResp, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, buildingResp{ID: b.ID, Name: b.Name, Location: b.Location, Capacity: b.Capacity})
	}
	return c.JSON(http.StatusOK, out)
}
