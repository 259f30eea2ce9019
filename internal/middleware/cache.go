package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticket-reservation/internal/config"
)

// cachedPayload is the envelope stored in Redis for each cached
// response: status, content type and raw body.
type cachedPayload struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the handler's response into a buffer so a
// successful body can be stored after the handler returns.
type captureWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewResponseCache returns a Redis-backed response cache for the public
// browse endpoints.  Only methods listed in the config are considered
// and only 200 responses are stored.  A cache miss or Redis failure
// falls through to the handler.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}

			key := buildCacheKey(cfg, c)
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if payload, derr := decodePayload(raw); derr == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(payload.Status, payload.ContentType, payload.Body)
				}
			} else if err != redis.Nil {
				c.Logger().Warnf("[cache] redis get failed for key=%s: %v", key, err)
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				buf:            &bytes.Buffer{},
				status:         http.StatusOK,
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status != http.StatusOK || cw.buf.Len() == 0 || cw.buf.Len() > cfg.MaxBodyBytes {
				return nil
			}

			payload := cachedPayload{
				Status:      cw.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        cw.buf.Bytes(),
			}
			raw, err := encodePayload(payload)
			if err != nil {
				return nil
			}
			if err := rdb.Set(ctx, key, raw, cfg.TTL).Err(); err != nil {
				c.Logger().Warnf("[cache] redis set failed for key=%s: %v", key, err)
			}
			return nil
		}
	}
}

func encodePayload(p cachedPayload) ([]byte, error) {
	return json.Marshal(p)
}

func decodePayload(raw []byte) (cachedPayload, error) {
	var p cachedPayload
	err := json.Unmarshal(raw, &p)
	return p, err
}

func buildCacheKey(cfg config.CacheConfig, c echo.Context) string {
	parts := []string{cfg.Prefix, c.Request().Method, c.Path()}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
	case "route_user":
		parts = append(parts, "user", currentUserID(c))
	default: // route_query
		if q := c.Request().URL.RawQuery; q != "" {
			parts = append(parts, "q", q)
		}
	}
	return strings.Join(parts, ":")
}

// CacheBypassHeader lets operators confirm freshness in one request
// without flushing Redis.
const CacheBypassHeader = "X-Cache-Bypass"

// WithBypass wraps a cache middleware so requests carrying the bypass
// header skip the cache entirely.
func WithBypass(inner echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := inner(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(CacheBypassHeader) != "" {
				return next(c)
			}
			return wrapped(c)
		}
	}
}
