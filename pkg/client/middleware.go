package client

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/tendant/simple-user-api/pkg/user"
)

// CallerMiddleware resolves the caller from the JWT verified by
// jwtauth.Verifier and stores it in the request context. Requests
// without a valid token proceed as the anonymous caller; the user
// service's capability checks decide what anonymous callers may do.
// Must be used after jwtauth.Verifier.
func CallerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			if err != nil {
				slog.Debug("No verified token on request, proceeding anonymously", "err", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		caller := callerFromClaims(claims)
		next.ServeHTTP(w, r.WithContext(user.WithCaller(r.Context(), caller)))
	})
}

// RequireAuth rejects requests from the anonymous caller with 401.
// Must be used after CallerMiddleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !user.CallerFromRequest(r).IsAuthenticated() {
			slog.Debug("Unauthenticated request to protected resource")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
