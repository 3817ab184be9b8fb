package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/auth"
	"github.com/Jaweria-jiya/hackthon2phase2-sub000/internal/httpx"
)

// Verifier turns a bearer token into the caller's identity.
type Verifier interface {
	Verify(raw string) (auth.Identity, error)
}

// RequireAuth is middleware that validates the bearer token and
// injects the caller's identity into the request context.
func RequireAuth(tokens Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Authorization")

			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
					httpx.Error(w, http.StatusUnauthorized, "token expired")
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				httpx.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireOwner compares the named path parameter with the caller's identity.
// A mismatch is answered with 404 so the resource's existence is not confirmed.
func RequireOwner(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok || !auth.Authorize(id, chi.URLParam(r, param)) {
				httpx.Error(w, http.StatusNotFound, "not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
