package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/api/dto"
	"github.com/raminkz/gotodo/internal/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller threaded through the request
// context instead of any ambient global state.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// Authenticate resolves the Authorization header into a principal.
// "Bearer <jwt>" carries an access token, "Token <key>" an opaque session
// token. A missing header leaves the request anonymous; a presented but
// invalid credential is rejected outright.
func Authenticate(jwtService *auth.JWTService, sessions *auth.SessionTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			var principal *Principal
			switch {
			case strings.HasPrefix(header, "Bearer "):
				claims, err := jwtService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
				if err != nil || claims.TokenType != auth.TokenTypeAccess {
					writeAuthError(w, http.StatusUnauthorized, "Given token not valid for any token type")
					return
				}
				principal = &Principal{UserID: claims.UserID, Email: claims.Email}

			case strings.HasPrefix(header, "Token "):
				token, err := sessions.Lookup(r.Context(), strings.TrimPrefix(header, "Token "))
				if err != nil {
					writeAuthError(w, http.StatusUnauthorized, "Invalid token.")
					return
				}
				principal = &Principal{UserID: token.UserID}
				if token.User != nil {
					principal.Email = token.User.Email
				}

			default:
				writeAuthError(w, http.StatusUnauthorized, "Unsupported authorization scheme")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous guards the password-reset flow: a logged-in caller is
// expected to use change-password instead.
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); ok {
			writeAuthError(w, http.StatusForbidden, "You should be logged out to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetPrincipal(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// WithPrincipal is a test seam for handler tests that bypass Authenticate.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Detail: detail})
}
