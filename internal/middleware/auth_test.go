package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pontus/pontus/internal/auth"
	"github.com/pontus/pontus/internal/model"
)

func testAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		JWTSecret: "test-secret",
		JWTIssuer: "pontus-test",
	}
}

func issueTestToken(t *testing.T, role model.Role) string {
	t.Helper()
	token, err := auth.IssueToken(&model.Person{ID: 7, Role: role}, "test-secret", "pontus-test", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestAuth_InjectsCaller(t *testing.T) {
	t.Parallel()

	var got model.Caller
	handler := Auth(testAuthConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok {
			t.Error("caller missing from context")
		}
		got = caller
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, model.RoleUser))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.PersonID != 7 || got.Role != model.RoleUser {
		t.Errorf("caller = %+v, want id 7 role user", got)
	}
}

func TestAuth_Rejections(t *testing.T) {
	t.Parallel()

	expired, err := auth.IssueToken(&model.Person{ID: 7}, "test-secret", "pontus-test", -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	wrongIssuer, err := auth.IssueToken(&model.Person{ID: 7}, "test-secret", "someone-else", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expired},
		{"wrong issuer", "Bearer " + wrongIssuer},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := Auth(testAuthConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not run")
			}))

			req := httptest.NewRequest("GET", "/api/v1/events", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"code":"UNAUTHORIZED"`) {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       model.Role
		wantStatus int
	}{
		{"admin passes", model.RoleAdmin, http.StatusOK},
		{"user is forbidden", model.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chain := Auth(testAuthConfig())(RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest("DELETE", "/api/v1/tags/04:AA", nil)
			req.Header.Set("Authorization", "Bearer "+issueTestToken(t, tt.role))
			rec := httptest.NewRecorder()

			chain.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin_NoCaller(t *testing.T) {
	t.Parallel()

	handler := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/api/v1/persons", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
