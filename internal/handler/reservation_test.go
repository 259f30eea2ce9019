package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/broadcast"
	"github.com/iliyamo/movie-ticket-reservation/internal/model"
	"github.com/iliyamo/movie-ticket-reservation/internal/queue"
	"github.com/iliyamo/movie-ticket-reservation/internal/repository"
)

// ----- fakes -----

type fakeStore struct {
	createErr  error
	created    *repository.CreateParams
	summary    repository.Summary
	cancelInfo repository.CancelInfo
	infoErr    error
	deleteErr  error
	deleted    []uint64
	updateErr  error
	updated    *repository.UpdateParams
	updatedRes model.Reservation
	reserved   []uint64
	byUser     []repository.Summary
	all        []repository.Summary
}

func (f *fakeStore) Create(_ context.Context, p repository.CreateParams) (*repository.Summary, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &p
	s := f.summary
	return &s, nil
}

func (f *fakeStore) GetCancelInfo(_ context.Context, id uint64) (repository.CancelInfo, error) {
	if f.infoErr != nil {
		return repository.CancelInfo{}, f.infoErr
	}
	return f.cancelInfo, nil
}

func (f *fakeStore) Delete(_ context.Context, id uint64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) Update(_ context.Context, id uint64, p repository.UpdateParams) (*model.Reservation, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = &p
	r := f.updatedRes
	return &r, nil
}

func (f *fakeStore) ReservedSeatIDs(_ context.Context, _, _, _ uint64) ([]uint64, error) {
	return f.reserved, nil
}

func (f *fakeStore) ListByUser(_ context.Context, _ uint64) ([]repository.Summary, error) {
	return f.byUser, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]repository.Summary, error) {
	return f.all, nil
}

type fakeShowtimes struct {
	show model.Showtime
	err  error
}

func (f *fakeShowtimes) GetByID(_ context.Context, _ uint64) (model.Showtime, error) {
	return f.show, f.err
}

type fakeEvents struct {
	published []broadcast.SeatUpdate
}

func (f *fakeEvents) Publish(u broadcast.SeatUpdate) {
	f.published = append(f.published, u)
}

// ----- helpers -----

func newTestHandler(store *fakeStore, shows *fakeShowtimes) (*ReservationHandler, *fakeEvents) {
	events := &fakeEvents{}
	h := NewReservationHandler(store, shows, events)
	h.publishEvent = func(context.Context, queue.ReservationEvent) error { return nil }
	return h, events
}

func newCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	return c, rec
}

func asUser(c echo.Context, id uint64, role string) {
	// Claims arrive as float64 after JWT parsing.
	c.Set("user_id", float64(id))
	c.Set("role", role)
}

const validCreateBody = `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"regular","seats":[11,12],"seatCount":2,"totalPrice":18,"phoneNumber":"+311234"}`

func futureShowtime() model.Showtime {
	at := time.Now().UTC().Add(72 * time.Hour)
	return model.Showtime{
		ID:       2,
		MovieID:  1,
		ShowDate: at.Format("2006-01-02"),
		ShowTime: at.Format("15:04"),
		Building: "Cinema One",
	}
}

// ----- create -----

func TestCreateReservationSuccess(t *testing.T) {
	store := &fakeStore{summary: repository.Summary{ID: 42, MovieTitle: "Munich", Seats: []string{"A1", "A2"}}}
	h, events := newTestHandler(store, &fakeShowtimes{show: futureShowtime()})

	c, rec := newCtx(t, http.MethodPost, "/api/reservations", validCreateBody)
	asUser(c, 9, "user")

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if store.created == nil {
		t.Fatal("store.Create not called")
	}
	if store.created.UserID != 9 {
		t.Fatalf("user id = %d, want 9", store.created.UserID)
	}
	if len(store.created.SeatIDs) != 2 {
		t.Fatalf("seat ids = %v, want two entries", store.created.SeatIDs)
	}
	if len(events.published) != 1 {
		t.Fatalf("published %d seat updates, want 1", len(events.published))
	}
	u := events.published[0]
	if u.Action != broadcast.ActionReserved {
		t.Fatalf("action = %q, want %q", u.Action, broadcast.ActionReserved)
	}
	if u.ReservationID != 42 {
		t.Fatalf("reservation id = %d, want 42", u.ReservationID)
	}
	if u.Timestamp == "" {
		t.Fatal("seat update missing timestamp")
	}
}

func TestCreateReservationValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing ids", `{"seatClass":"regular","seats":[1],"seatCount":1}`},
		{"no seats", `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"regular","seats":[]}`},
		{"duplicate seats", `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"regular","seats":[5,5],"seatCount":2}`},
		{"bad class", `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"vip","seats":[5],"seatCount":1}`},
		{"negative price", `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"first","seats":[5],"seatCount":1,"totalPrice":-1}`},
		{"seat count mismatch", `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"regular","seats":[5,6],"seatCount":3}`},
		{"seat count omitted", `{"movieId":1,"showtimeId":2,"buildingId":3,"seatClass":"regular","seats":[5,6]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			h, events := newTestHandler(store, &fakeShowtimes{show: futureShowtime()})
			c, rec := newCtx(t, http.MethodPost, "/api/reservations", tc.body)
			asUser(c, 9, "user")

			if err := h.Create(c); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if store.created != nil {
				t.Fatal("store.Create called despite invalid input")
			}
			if len(events.published) != 0 {
				t.Fatal("seat update published despite invalid input")
			}
		})
	}
}

func TestCreateReservationSeatConflict(t *testing.T) {
	store := &fakeStore{createErr: repository.ErrSeatTaken}
	h, events := newTestHandler(store, &fakeShowtimes{show: futureShowtime()})

	c, rec := newCtx(t, http.MethodPost, "/api/reservations", validCreateBody)
	asUser(c, 9, "user")

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if len(events.published) != 0 {
		t.Fatal("seat update published for a failed reservation")
	}
}

func TestCreateReservationUnknownBuildingIsBadRequest(t *testing.T) {
	store := &fakeStore{createErr: repository.ErrInvalidReference}
	h, events := newTestHandler(store, &fakeShowtimes{show: futureShowtime()})

	c, rec := newCtx(t, http.MethodPost, "/api/reservations", validCreateBody)
	asUser(c, 9, "user")

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(events.published) != 0 {
		t.Fatal("seat update published for a failed reservation")
	}
}

func TestCreateReservationShowtimeMovieMismatch(t *testing.T) {
	show := futureShowtime()
	show.MovieID = 77
	h, _ := newTestHandler(&fakeStore{}, &fakeShowtimes{show: show})

	c, rec := newCtx(t, http.MethodPost, "/api/reservations", validCreateBody)
	asUser(c, 9, "user")

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateReservationShowtimeNotFound(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, &fakeShowtimes{err: repository.ErrNotFound})

	c, rec := newCtx(t, http.MethodPost, "/api/reservations", validCreateBody)
	asUser(c, 9, "user")

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// ----- cancel -----

func cancelInfoAt(start time.Time, owner uint64) repository.CancelInfo {
	return repository.CancelInfo{
		ID:       5,
		UserID:   owner,
		MovieID:  1,
		ShowDate: start.Format("2006-01-02"),
		ShowTime: start.Format("15:04"),
	}
}

func newCancelCtx(t *testing.T, uid uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newCtx(t, http.MethodDelete, "/api/reservations/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	asUser(c, uid, role)
	return c, rec
}

func TestCancelReservationOwnerOutsideWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{cancelInfo: cancelInfoAt(now.Add(25*time.Hour), 9)}
	h, events := newTestHandler(store, &fakeShowtimes{})
	h.now = func() time.Time { return now }

	c, rec := newCancelCtx(t, 9, "user")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(store.deleted) != 1 || store.deleted[0] != 5 {
		t.Fatalf("deleted = %v, want [5]", store.deleted)
	}
	if len(events.published) != 1 || events.published[0].Action != broadcast.ActionCancelled {
		t.Fatalf("published = %+v, want one cancelled update", events.published)
	}
}

func TestCancelReservationInsideWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{cancelInfo: cancelInfoAt(now.Add(23*time.Hour), 9)}
	h, events := newTestHandler(store, &fakeShowtimes{})
	h.now = func() time.Time { return now }

	c, rec := newCancelCtx(t, 9, "user")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(store.deleted) != 0 {
		t.Fatal("reservation deleted inside the cancellation window")
	}
	if len(events.published) != 0 {
		t.Fatal("seat update published for a blocked cancellation")
	}
}

func TestCancelReservationExactlyAtBoundary(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{cancelInfo: cancelInfoAt(now.Add(24*time.Hour), 9)}
	h, _ := newTestHandler(store, &fakeShowtimes{})
	h.now = func() time.Time { return now }

	c, rec := newCancelCtx(t, 9, "user")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	// Exactly 24 hours out is still cancellable.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCancelReservationNotOwner(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{cancelInfo: cancelInfoAt(now.Add(48*time.Hour), 9)}
	h, _ := newTestHandler(store, &fakeShowtimes{})
	h.now = func() time.Time { return now }

	c, rec := newCancelCtx(t, 13, "user")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if len(store.deleted) != 0 {
		t.Fatal("reservation deleted by a non-owner")
	}
}

func TestCancelReservationAdminOverride(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{cancelInfo: cancelInfoAt(now.Add(48*time.Hour), 9)}
	h, _ := newTestHandler(store, &fakeShowtimes{})
	h.now = func() time.Time { return now }

	c, rec := newCancelCtx(t, 13, "admin")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCancelReservationNotFound(t *testing.T) {
	store := &fakeStore{infoErr: repository.ErrNotFound}
	h, _ := newTestHandler(store, &fakeShowtimes{})

	c, rec := newCancelCtx(t, 9, "user")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCancelReservationBadShowtimeData(t *testing.T) {
	store := &fakeStore{cancelInfo: repository.CancelInfo{ID: 5, UserID: 9, ShowDate: "not-a-date", ShowTime: "25:99"}}
	h, _ := newTestHandler(store, &fakeShowtimes{})

	c, rec := newCancelCtx(t, 9, "user")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// ----- update -----

func TestUpdateReservationSeatConflict(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		cancelInfo: cancelInfoAt(now.Add(48*time.Hour), 9),
		updateErr:  repository.ErrSeatTaken,
	}
	h, _ := newTestHandler(store, &fakeShowtimes{})

	c, rec := newCtx(t, http.MethodPut, "/api/reservations/5", `{"seats":[3,4]}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	asUser(c, 9, "user")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestUpdateReservationUnknownShowtimeIsBadRequest(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		cancelInfo: cancelInfoAt(now.Add(48*time.Hour), 9),
		updateErr:  repository.ErrInvalidReference,
	}
	h, _ := newTestHandler(store, &fakeShowtimes{})

	c, rec := newCtx(t, http.MethodPut, "/api/reservations/5", `{"showtimeId":999}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	asUser(c, 9, "user")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "showtime or building not found") {
		t.Fatalf("body = %s, want a reference error, not a missing reservation", rec.Body.String())
	}
}

func TestUpdateReservationPartial(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		cancelInfo: cancelInfoAt(now.Add(48*time.Hour), 9),
		updatedRes: model.Reservation{ID: 5, UserID: 9, MovieID: 1, SeatClass: "first"},
	}
	h, events := newTestHandler(store, &fakeShowtimes{})

	c, rec := newCtx(t, http.MethodPut, "/api/reservations/5", `{"seatClass":"first"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	asUser(c, 9, "user")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if store.updated == nil {
		t.Fatal("store.Update not called")
	}
	if store.updated.SeatClass == nil || *store.updated.SeatClass != "first" {
		t.Fatalf("seat class pointer = %v, want first", store.updated.SeatClass)
	}
	if store.updated.SeatIDs != nil {
		t.Fatal("seat ids should stay nil when the request omits them")
	}
	if len(events.published) != 1 || events.published[0].Action != broadcast.ActionUpdated {
		t.Fatalf("published = %+v, want one updated event", events.published)
	}
}

// ----- reserved seats -----

func TestReservedSeatsRequiresAllParams(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, &fakeShowtimes{})

	c, rec := newCtx(t, http.MethodGet, "/api/reservations/reserved-seats?movieId=1&showtimeId=2", "")
	if err := h.ReservedSeats(c); err != nil {
		t.Fatalf("ReservedSeats returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReservedSeatsReturnsIDs(t *testing.T) {
	store := &fakeStore{reserved: []uint64{11, 12, 40}}
	h, _ := newTestHandler(store, &fakeShowtimes{})

	c, rec := newCtx(t, http.MethodGet, "/api/reservations/reserved-seats?movieId=1&showtimeId=2&buildingId=3", "")
	if err := h.ReservedSeats(c); err != nil {
		t.Fatalf("ReservedSeats returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		SeatIDs []uint64 `json:"seatIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.SeatIDs) != 3 || body.SeatIDs[2] != 40 {
		t.Fatalf("seatIds = %v, want [11 12 40]", body.SeatIDs)
	}
}

func TestReservedSeatsEmptyListIsArray(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, &fakeShowtimes{})

	c, rec := newCtx(t, http.MethodGet, "/api/reservations/reserved-seats?movieId=1&showtimeId=2&buildingId=3", "")
	if err := h.ReservedSeats(c); err != nil {
		t.Fatalf("ReservedSeats returned error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"seatIds":[]`) {
		t.Fatalf("body = %s, want empty array", rec.Body.String())
	}
}
