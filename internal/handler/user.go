package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/config"
	"github.com/iliyamo/movie-ticket-reservation/internal/model"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
)

// UserHandler serves the profile endpoints and the admin account
// management surface.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type profileResp struct {
	ID             uint64  `json:"id"`
	Name           *string `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	PhoneNumber    *string `json:"phoneNumber"`
	DateOfBirth    *string `json:"dateOfBirth"`
	FavoriteMovies *string `json:"favoriteMovies"`
	Bio            *string `json:"bio"`
}

func toProfileResp(u model.User) profileResp {
	return profileResp{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		PhoneNumber:    u.PhoneNumber,
		DateOfBirth:    u.DateOfBirth,
		FavoriteMovies: u.FavoriteMovies,
		Bio:            u.Bio,
	}
}

// Profile returns the full profile of the authenticated user.
func (h *UserHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

type profileUpdateReq struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	PhoneNumber    *string `json:"phoneNumber"`
	DateOfBirth    *string `json:"dateOfBirth"`
	FavoriteMovies *string `json:"favoriteMovies"`
	Bio            *string `json:"bio"`
}

// UpdateProfile applies a partial update to the authenticated user's
// profile.  Absent fields keep their current values.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		if e == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email cannot be empty"})
		}
		req.Email = &e
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", *req.DateOfBirth); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "dateOfBirth must be YYYY-MM-DD"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Users.UpdateProfile(ctx, uid, repository.ProfileUpdate{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		DateOfBirth:    req.DateOfBirth,
		FavoriteMovies: req.FavoriteMovies,
		Bio:            req.Bio,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfileResp(u))
}

// ----- admin surface -----

type adminUserResp struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListUsers returns id, email and role for every account (admin only).
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	return c.JSON(http.StatusOK, out)
}

type adminUserUpdateReq struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// UpdateUser lets an admin change another account's email, role or
// password.  Unknown roles are rejected rather than silently coerced.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adminUserUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == nil && req.Role == nil && req.Password == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Role != nil {
		r := strings.ToLower(strings.TrimSpace(*req.Role))
		if r != "admin" && r != "user" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin or user"})
		}
		req.Role = &r
	}
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		if e == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email cannot be empty"})
		}
		req.Email = &e
	}
	if req.Password != nil && len(*req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateAccount(ctx, id, req.Email, req.Role, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
}

// DeleteUser removes an account (admin only).  Admins cannot delete
// themselves, which keeps at least one working admin session alive.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if uid, err := getUserID(c); err == nil && uid == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
