package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/config"
)

func TestCachePayloadCodec(t *testing.T) {
	in := cachedPayload{
		Status:      http.StatusOK,
		ContentType: echo.MIMEApplicationJSON,
		Body:        []byte(`{"ok":true}`),
	}
	raw, err := encodePayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != in.Status || out.ContentType != in.ContentType || string(out.Body) != string(in.Body) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	if _, err := decodePayload([]byte("not json")); err == nil {
		t.Fatal("garbage decoded without error")
	}
}

func newKeyCtx(method, target string) echo.Context {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetPath("/api/movies")
	return c
}

func TestBuildCacheKeyIncludesQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	a := buildCacheKey(cfg, newKeyCtx(http.MethodGet, "/api/movies?sort=title"))
	b := buildCacheKey(cfg, newKeyCtx(http.MethodGet, "/api/movies?sort=created_at"))
	if a == b {
		t.Fatalf("distinct queries share cache key %q", a)
	}
}

func TestBuildCacheKeyRouteOnly(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	a := buildCacheKey(cfg, newKeyCtx(http.MethodGet, "/api/movies?sort=title"))
	b := buildCacheKey(cfg, newKeyCtx(http.MethodGet, "/api/movies?sort=created_at"))
	if a != b {
		t.Fatalf("route strategy keys differ: %q vs %q", a, b)
	}
}

func TestNewResponseCacheDisabledIsPassthrough(t *testing.T) {
	mw := NewResponseCache(config.CacheConfig{Enabled: false}, nil)
	c := newKeyCtx(http.MethodGet, "/api/movies")
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil || !called {
		t.Fatalf("disabled cache should pass through (err=%v called=%v)", err, called)
	}
}

func TestWithBypassSkipsInner(t *testing.T) {
	innerCalled := false
	inner := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			innerCalled = true
			return next(c)
		}
	}
	mw := WithBypass(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set(CacheBypassHeader, "1")
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if innerCalled {
		t.Fatal("bypass header did not skip the cache middleware")
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	c := newKeyCtx(http.MethodPost, "/api/reservations")
	c.Set("user_id", float64(42))

	key := buildRateKey(cfg, c)
	if key == "" {
		t.Fatal("empty rate key")
	}
	// The same request with another identity must land in another bucket.
	c2 := newKeyCtx(http.MethodPost, "/api/reservations")
	c2.Set("user_id", float64(43))
	if key == buildRateKey(cfg, c2) {
		t.Fatal("different users share a rate bucket")
	}

	cfg.KeyStrategy = "route"
	if buildRateKey(cfg, c) != buildRateKey(cfg, c2) {
		t.Fatal("route strategy should ignore identity")
	}
}
