package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/httpclient"
)

const maxBodyBytes = 4 << 20

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// base holds what every adapter needs to reach one backend service.
type base struct {
	http    HTTPDoer
	baseURL string
	service string
	framing Framing
}

// CircuitOpenFallback returns the fallback used while the breaker in front of
// service is open. It fails fast with a retry hint.
func CircuitOpenFallback(service string) httpclient.FallbackFunc {
	return func(_ context.Context, _ error) (*http.Response, error) {
		return nil, apperrors.ServiceUnavailable(service + " is temporarily unavailable, please retry shortly")
	}
}

func newBase(doer HTTPDoer, baseURL, service string, framing Framing) base {
	return base{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		service: service,
		framing: framing,
	}
}

// call sends a request and returns the body of a 2xx response. Transport
// failures and error statuses come back as AppErrors.
func (b base) call(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("marshal %s request: %w", b.service, err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("build %s request: %w", b.service, err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.http.Do(ctx, req)
	if err != nil {
		return nil, httpclient.TranslateError(err, b.service)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, httpclient.ParseResponseError(resp, b.service)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.BadGateway(b.service+" response could not be read", fmt.Errorf("read body: %w", err))
	}
	return data, nil
}

func getJSON[T any](ctx context.Context, b base, path string, query url.Values) (T, error) {
	body, err := b.call(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](body, b.framing, b.service)
}

func postJSON[T any](ctx context.Context, b base, path string, payload any) (T, error) {
	body, err := b.call(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](body, b.framing, b.service)
}

func idPath(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(fmt.Sprint(id))
	}
	return fmt.Sprintf(format, args...)
}
