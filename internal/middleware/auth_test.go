package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tawteen-backend/internal/ctxkeys"
)

const testSecret = "test-secret-key-that-is-long-enough-0123"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuthInjectsUserContext(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"userId": "user-1",
		"role":   "admin",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	var gotID, gotRole string
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value(ctxkeys.UserID).(string)
		gotRole, _ = r.Context().Value(ctxkeys.UserRole).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/assessments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotID)
	assert.Equal(t, "admin", gotRole)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + signToken(t, jwt.MapClaims{
			"userId": "user-1",
			"role":   "viewer",
			"exp":    time.Now().Add(-time.Hour).Unix(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/assessments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireMinRole(t *testing.T) {
	handler := RequireMinRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		role string
		want int
	}{
		{"viewer", http.StatusForbidden},
		{"admin", http.StatusOK},
		{"super_admin", http.StatusOK},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		token := signToken(t, jwt.MapClaims{
			"userId": "user-1",
			"role":   tt.role,
			"exp":    time.Now().Add(time.Hour).Unix(),
		})

		req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		Auth(testSecret)(handler).ServeHTTP(rec, req)

		assert.Equal(t, tt.want, rec.Code, "role %q", tt.role)
	}
}
