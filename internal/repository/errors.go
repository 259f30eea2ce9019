// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings.
package repository

import "errors"

// ErrSeatTaken is returned when a reservation cannot be created
// because at least one requested seat already belongs to another
// reservation for the same showtime. Handlers should translate
// this into an HTTP 409 response.
var ErrSeatTaken = errors.New("seat already reserved")

// ErrNotFound is returned when the record an operation targets does
// not exist. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidReference is returned when a write names a related record
// (movie, showtime, building or user) that does not exist, surfaced by
// a foreign-key failure. Handlers should translate this into an HTTP
// 400 response, since the targeted record itself may well exist.
var ErrInvalidReference = errors.New("referenced record does not exist")
