package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/raminkz/gotodo/internal/api/middleware"
	"github.com/raminkz/gotodo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddlewareRouter(tc *testutil.TestContext) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(tc.JWTService, tc.Sessions))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			principal, _ := middleware.GetPrincipal(r.Context())
			_, _ = w.Write([]byte(principal.Email))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAnonymous)
		r.Post("/anonymous-only", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	return r
}

func TestAuthenticate(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupMiddlewareRouter(tc)

	user := testutil.CreateTestUser(t, tc.DB, "mw@test.com")

	t.Run("accepts bearer access token", func(t *testing.T) {
		token := testutil.AccessToken(t, tc.JWTService, user)
		req := testutil.AuthenticatedRequest(t, "GET", "/protected", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "mw@test.com", rr.Body.String())
	})

	t.Run("accepts opaque session token", func(t *testing.T) {
		session, err := tc.Sessions.GetOrCreate(context.Background(), user.ID)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token "+session.Key)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "mw@test.com", rr.Body.String())
	})

	t.Run("rejects refresh token on the bearer path", func(t *testing.T) {
		pair, err := tc.JWTService.GeneratePair(user.ID, user.Email)
		require.NoError(t, err)

		req := testutil.AuthenticatedRequest(t, "GET", "/protected", nil, pair.Refresh)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects unknown session key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token deadbeef")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects unsupported scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing header on protected route", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireAnonymous(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupMiddlewareRouter(tc)

	user := testutil.CreateTestUser(t, tc.DB, "anon@test.com")

	t.Run("allows anonymous callers", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/anonymous-only", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("forbids authenticated callers", func(t *testing.T) {
		token := testutil.AccessToken(t, tc.JWTService, user)
		req := testutil.AuthenticatedRequest(t, "POST", "/anonymous-only", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "You should be logged out to perform this action.")
	})
}
