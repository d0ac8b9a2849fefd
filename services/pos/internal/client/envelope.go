// Package client adapts the pharmacy backend REST services to the POS ports.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/errors"
)

// Framing says how a backend wraps the payload of a 2xx response. Each
// adapter declares its framing once; bodies are never inspected to guess it.
type Framing int

const (
	// Enveloped bodies are {"success": bool, "message": string, "data": T}.
	// The catalog and inventory services answer this way.
	Enveloped Framing = iota
	// Bare bodies are the payload itself. The sales and reporting services
	// answer this way.
	Bare
)

// Envelope is the wrapper of an Enveloped response.
type Envelope[T any] struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// Page is a backend list page. Endpoints that return a page decode into
// Page[T]; endpoints that return a plain list decode into []T.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// decode extracts the payload of a 2xx body framed as f. A missing or null
// payload is a bad gateway; an envelope with "success": false is a rejection.
func decode[T any](body []byte, f Framing, service string) (T, error) {
	var zero T

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return zero, noPayload(service)
	}

	if f == Bare {
		var out T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return zero, malformed(service, err)
		}
		return out, nil
	}

	var env Envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return zero, malformed(service, err)
	}
	if env.Success == nil {
		return zero, malformed(service, fmt.Errorf(`envelope has no "success" member`))
	}
	if !*env.Success {
		return zero, rejected(service, env.Message)
	}
	if env.Data == nil {
		return zero, noPayload(service)
	}
	return *env.Data, nil
}

func noPayload(service string) error {
	return apperrors.BadGateway(service+" returned no data", nil)
}

func malformed(service string, err error) error {
	return apperrors.BadGateway(service+" returned a malformed response", fmt.Errorf("decode %s response: %w", service, err))
}

func rejected(service, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = service + " rejected the request"
	}
	return apperrors.RemoteValidation(service, message, nil)
}
