package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/broadcast"
)

// syncRecorder guards the recorder so the test can read the body while
// the stream goroutine is still writing.
type syncRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

func (w *syncRecorder) Header() http.Header { return w.rec.Header() }

func (w *syncRecorder) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Write(b)
}

func (w *syncRecorder) WriteHeader(status int) { w.rec.WriteHeader(status) }

func (w *syncRecorder) Flush() {}

func (w *syncRecorder) body() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rec.Body.String()
}

func TestStreamDeliversSeatUpdateFrames(t *testing.T) {
	b := broadcast.New()
	h := NewStreamHandler(b)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	sw := &syncRecorder{rec: httptest.NewRecorder()}
	c := echo.New().NewContext(req, sw)

	done := make(chan error, 1)
	go func() { done <- h.Stream(c) }()

	// Wait for the subscription to register before publishing.
	waitFor(t, func() bool { return b.Len() > 0 })

	b.Publish(broadcast.SeatUpdate{
		Action:        broadcast.ActionReserved,
		ReservationID: 3,
		SeatIDs:       []uint64{11},
	}.Stamp())

	// Wait for the frame to land, then close the connection.
	waitFor(t, func() bool {
		return strings.Contains(sw.body(), "event: seatUpdate")
	})
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stream returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not exit after client disconnect")
	}

	body := sw.body()
	if ct := sw.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Fatalf("content type = %q, want text/event-stream", ct)
	}
	if !strings.Contains(body, "event: seatUpdate\ndata: ") {
		t.Fatalf("body missing SSE frame: %q", body)
	}
	if !strings.Contains(body, `"action":"reserved"`) {
		t.Fatalf("body missing action payload: %q", body)
	}
	if !strings.Contains(body, `"seatIds":[11]`) {
		t.Fatalf("body missing seat ids: %q", body)
	}
	if !strings.HasPrefix(body, ": connected\n\n") {
		t.Fatalf("body missing opening comment: %q", body)
	}
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	b := broadcast.New()
	h := NewStreamHandler(b)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	done := make(chan error, 1)
	go func() { done <- h.Stream(c) }()

	waitFor(t, func() bool { return b.Len() == 1 })
	cancel()
	<-done
	waitFor(t, func() bool { return b.Len() == 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
