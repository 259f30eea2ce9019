package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseRoles(t *testing.T) {
	cases := []struct {
		claim string
		want  []Role
	}{
		{"admin", []Role{RoleAdmin}},
		{"user", []Role{RoleUser}},
		{"ADMIN", []Role{RoleAdmin}},
		{" admin , user ", []Role{RoleAdmin, RoleUser}},
		{"superuser", nil},
		{"", nil},
		{"admin,unknown", []Role{RoleAdmin}},
	}
	for _, tc := range cases {
		got := ParseRoles(tc.claim)
		if len(got) != len(tc.want) {
			t.Fatalf("ParseRoles(%q) = %v, want %v", tc.claim, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("ParseRoles(%q) = %v, want %v", tc.claim, got, tc.want)
			}
		}
	}
}

func runRequireRole(t *testing.T, claim interface{}, allowed ...Role) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claim != nil {
		c.Set("role", claim)
	}
	mw := RequireRole(allowed...)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRequireRoleAllowsMatching(t *testing.T) {
	rec := runRequireRole(t, "admin", RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRoleRejectsMismatch(t *testing.T) {
	rec := runRequireRole(t, "user", RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleRejectsMissingClaim(t *testing.T) {
	rec := runRequireRole(t, nil, RoleAdmin, RoleUser)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleRejectsUnknownRole(t *testing.T) {
	rec := runRequireRole(t, "superuser", RoleAdmin, RoleUser)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleCommaSeparatedClaim(t *testing.T) {
	rec := runRequireRole(t, "user,admin", RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
