package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Middleware returns an HTTP middleware that verifies bearer tokens and resolves the
// principal once per request. The principal is added to the request context.
func Middleware(issuer *TokenIssuer, resolver *PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				log.Debug().Str("path", r.URL.Path).Msg("Missing Authorization header")
				writeUnauthorized(w)
				return
			}

			accountID, err := issuer.Verify(tokenString)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to verify token")
				writeUnauthorized(w)
				return
			}

			principal, err := resolver.Resolve(r.Context(), accountID)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					log.Error().Err(err).Str("account_id", accountID.String()).Msg("Failed to resolve principal")
					writeInternalError(w)
					return
				}
				log.Warn().Err(err).Str("account_id", accountID.String()).Msg("Rejected principal")
				writeUnauthorized(w)
				return
			}

			log.Debug().
				Str("account_id", accountID.String()).
				Str("org_id", principal.OrgID().String()).
				Str("kind", string(principal.Kind())).
				Msg("Authenticated")

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="leadcrm"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal error"}`))
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
