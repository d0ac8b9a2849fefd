package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httputil"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/logger"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/validator"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/repository"
)

const maxRequestBody = 1 << 20

type contextKey string

const sessionKey contextKey = "pos_session"

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// LoadSession resolves the {id} URL parameter to a live session, stores it in
// the request context and tags the request logger with the session ID.
func LoadSession(sessions repository.SessionRepository, base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
			if !ok {
				return
			}

			sess, err := sessions.Get(r.Context(), id.String())
			if err != nil {
				httputil.WriteError(w, r, err, base)
				return
			}

			ctx := logger.WithSessionID(r.Context(), sess.ID)
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			ctx = context.WithValue(ctx, sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionKey).(*domain.Session)
	return sess
}

// decodeBody reads at most 1 MB of JSON into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return true
	}

	var valErr *validator.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &valErr):
		httputil.WriteError(w, r, err, nil)
	case errors.As(err, &tooLarge):
		httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "PAYLOAD_TOO_LARGE", Message: "request body exceeds 1 MB"},
		})
	default:
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), nil)
	}
	return false
}
