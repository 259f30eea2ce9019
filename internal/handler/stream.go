package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/broadcast"
)

// seatUpdateSource is the subscription surface the stream endpoint
// needs; *broadcast.Broadcaster satisfies it.
type seatUpdateSource interface {
	Subscribe() *broadcast.Subscriber
	Unsubscribe(s *broadcast.Subscriber)
}

// StreamHandler serves the live seat-update stream over Server-Sent
// Events.
type StreamHandler struct {
	Source seatUpdateSource
}

func NewStreamHandler(src seatUpdateSource) *StreamHandler {
	return &StreamHandler{Source: src}
}

// Stream keeps the connection open and relays every published seat
// update as a "seatUpdate" SSE event.  Each event is flushed
// immediately; the loop exits when the client disconnects.  Events
// published before the subscription was registered are not replayed.
func (h *StreamHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	// Open the stream right away so clients know the subscription is live.
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return nil
	}
	flusher.Flush()

	sub := h.Source.Subscribe()
	defer h.Source.Unsubscribe(sub)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-sub.C:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(u)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: seatUpdate\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
