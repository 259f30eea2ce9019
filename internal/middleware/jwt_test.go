package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-reservation/internal/utils"
)

const testSecret = "test-secret"

func runJWTAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWTAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthRejectsMalformedToken(t *testing.T) {
	rec, _ := runJWTAuth(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 1, "Ann", "ann@example.com", "user", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, _ := runJWTAuth(t, "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": 1,
		"exp": 1000, // far in the past
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	rec, _ := runJWTAuth(t, "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthStoresClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "Ann", "ann@example.com", "admin", 60)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, c := runJWTAuth(t, "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Numeric claims decode as float64.
	if got, ok := c.Get("user_id").(float64); !ok || uint64(got) != 42 {
		t.Fatalf("user_id = %v, want 42", c.Get("user_id"))
	}
	if got, _ := c.Get("email").(string); got != "ann@example.com" {
		t.Fatalf("email = %q, want ann@example.com", got)
	}
	if got, _ := c.Get("role").(string); got != "admin" {
		t.Fatalf("role = %q, want admin", got)
	}
	if got, _ := c.Get("name").(string); got != "Ann" {
		t.Fatalf("name = %q, want Ann", got)
	}
}
