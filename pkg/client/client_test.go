package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-user-api/pkg/user"
)

const testSecret = "test-secret"

func newTestRouter(captured *user.Caller) *chi.Mux {
	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil)

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(tokenAuth))
	r.Use(CallerMiddleware)
	r.Get("/whoami", func(w http.ResponseWriter, rq *http.Request) {
		*captured = user.CallerFromRequest(rq)
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestCallerMiddleware(t *testing.T) {
	var captured user.Caller
	router := newTestRouter(&captured)

	caller := user.Caller{
		ID:        42,
		Username:  "claims_user",
		Roles:     []string{"author"},
		ExtraCaps: map[string]bool{"list_users": true},
	}
	token, err := CreateToken(testSecret, caller, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), captured.ID)
	assert.Equal(t, "claims_user", captured.Username)
	assert.Equal(t, []string{"author"}, captured.Roles)
	assert.True(t, captured.ExtraCaps["list_users"])
}

func TestCallerMiddlewareAnonymous(t *testing.T) {
	var captured user.Caller
	router := newTestRouter(&captured)

	// No token at all: anonymous caller, request still served.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, captured.IsAuthenticated())

	// Garbage token: same outcome.
	captured = user.Caller{ID: -1}
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, captured.IsAuthenticated())
}

func TestRequireAuth(t *testing.T) {
	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil)

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(tokenAuth))
	r.Use(CallerMiddleware)
	r.With(RequireAuth).Get("/private", func(w http.ResponseWriter, rq *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := CreateToken(testSecret, user.Caller{ID: 7}, time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
