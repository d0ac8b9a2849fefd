package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/logger"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/validator"
)

// Response is the envelope of every JSON body: exactly one of Data or Error
// is set.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope. RequestID echoes the
// correlation id so a cashier can quote it.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding errors are dropped
// since the header is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v as the data of the envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// sentinels gives a public code and message to bare sentinel errors. Messages
// of server-side failures are generic on purpose.
var sentinels = []struct {
	err     error
	code    string
	message string
}{
	{apperrors.ErrNotFound, "NOT_FOUND", "resource not found"},
	{apperrors.ErrInvalidInput, "INVALID_INPUT", ""},
	{apperrors.ErrConflict, "CONFLICT", ""},
	{apperrors.ErrServiceUnavail, "SERVICE_UNAVAILABLE", "a downstream service is unavailable"},
	{apperrors.ErrBadGateway, "BAD_GATEWAY", "a downstream service returned an unexpected response"},
}

func describe(err error) *ErrorResponse {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &ErrorResponse{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			msg := s.message
			if msg == "" {
				msg = err.Error()
			}
			return &ErrorResponse{Code: s.code, Message: msg}
		}
	}
	return &ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"}
}

// WriteError maps err to a status and an error envelope. Validation failures
// become 400 VALIDATION_ERROR with one entry per field. 5xx outcomes are
// logged on the request logger, or on fallback when the request carries none.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	ctx := r.Context()
	requestID := logger.CorrelationIDFromContext(ctx)

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		fields := valErr.Fields()
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   apperrors.FormatFields(fields),
			Fields:    fields,
			RequestID: requestID,
		}})
		return
	}

	status := apperrors.HTTPStatus(err)
	body := describe(err)
	body.RequestID = requestID

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(ctx)
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(ctx, "request failed",
			slog.String("error", err.Error()),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: body})
}

// ParseUUID parses a path parameter. On failure it writes 400
// INVALID_PARAMETER and returns false; the caller just returns.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "invalid UUID: " + param,
		}})
		return uuid.Nil, false
	}
	return id, true
}
