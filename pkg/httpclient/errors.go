package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
)

// DownstreamErrorResponse mirrors the error body returned by the pharmacy
// backend services:
//
//	{"success": false, "message": "...", "status": 400, "errors": {"field": "msg"}}
type DownstreamErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Errors  map[string]string `json:"errors"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. Field errors are preserved as a REMOTE_VALIDATION error.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.BadGateway(
			fmt.Sprintf("%s returned status %d", serviceName, resp.StatusCode),
			fmt.Errorf("read body: %w", err),
		)
	}
	return mapDownstreamError(resp.StatusCode, bodyBytes, serviceName)
}

// TranslateError converts a transport failure from Client or
// CircuitBreakerClient into an AppError. AppErrors pass through unchanged.
func TranslateError(err error, serviceName string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var srvErr *ServerError
	switch {
	case errors.As(err, &srvErr):
		return mapDownstreamError(srvErr.StatusCode, srvErr.Body, serviceName)
	case errors.Is(err, ErrCircuitOpen):
		e := apperrors.ServiceUnavailable(serviceName + " is temporarily unavailable")
		e.Err = err
		return e
	case errors.Is(err, context.DeadlineExceeded):
		e := apperrors.ServiceUnavailable(serviceName + " did not respond in time")
		e.Err = err
		return e
	default:
		e := apperrors.ServiceUnavailable(serviceName + " could not be reached")
		e.Err = err
		return e
	}
}

// mapDownstreamError translates a downstream status code and body into an
// AppError that preserves the error semantics.
func mapDownstreamError(status int, body []byte, serviceName string) error {
	var downstream DownstreamErrorResponse
	structured := json.Unmarshal(body, &downstream) == nil

	message := strings.TrimSpace(downstream.Message)
	if !structured || message == "" {
		message = http.StatusText(status)
	}
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return apperrors.RemoteValidation(serviceName, message, downstream.Errors)
	case status == http.StatusNotFound:
		return apperrors.New("NOT_FOUND", http.StatusNotFound, qualifiedMsg, apperrors.ErrNotFound)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusGone:
		return apperrors.Gone(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	case status >= 500:
		return apperrors.BadGateway(qualifiedMsg, fmt.Errorf("%s server error %d", serviceName, status))
	default:
		return apperrors.New("DOWNSTREAM_ERROR", status, qualifiedMsg, nil)
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors mean the request itself was rejected and must not be retried.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
