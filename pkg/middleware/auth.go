package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httpclient"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// TokenRelay extracts the bearer token issued by the external auth server and
// stores it in the request context so outgoing httpclient calls forward it to
// the backend services. Tokens are not validated here; the backends are the
// authority. With required set, requests without a bearer token get a 401.
//
// The X-User-ID header set by the gateway, if any, is recorded as the user ID.
func TokenRelay(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get("Authorization"))
			switch {
			case ok:
				ctx = httpclient.WithBearerToken(ctx, token)
			case required:
				writeAuthError(w, "missing or malformed bearer token")
				return
			}

			if userID := r.Header.Get("X-User-ID"); userID != "" {
				ctx = context.WithValue(ctx, userIDKey, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
