// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes transport failures for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindStatus is a non-2xx response from the endpoint.
	KindStatus
	// KindNetwork means the request never produced a response.
	KindNetwork
	// KindStream is a read failure after the response started.
	KindStream
	// KindCanceled means the caller cancelled the request.
	KindCanceled
	// KindTimeout means the request deadline passed.
	KindTimeout
	// KindInvalidRequest covers failures building the request.
	KindInvalidRequest
	// KindRateLimited means the local request limit could not be met in time.
	KindRateLimited
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindNetwork:
		return "network"
	case KindStream:
		return "stream"
	case KindCanceled:
		return "canceled"
	case KindTimeout:
		return "timeout"
	case KindInvalidRequest:
		return "invalid_request"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// TransportError is returned by every Client operation that fails.
type TransportError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrCanceled = &TransportError{Kind: KindCanceled, Message: "request cancelled"}
	ErrTimeout  = &TransportError{Kind: KindTimeout, Message: "request timed out"}
)

// maxErrorBody caps how much of a failed response is read for its error field.
const maxErrorBody = 64 << 10

// statusError builds the error for a non-2xx response. The detail is the
// body's "error" field when it carries a truthy value, otherwise the status text.
func statusError(resp *http.Response) *TransportError {
	detail := statusText(resp)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if field := errorField(data); field != "" {
		detail = field
	}

	return &TransportError{
		Kind:    KindStatus,
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP error! Status: %d - %s", resp.StatusCode, detail),
	}
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

// errorField extracts the "error" member of a JSON object body. Falsy values
// (missing, null, false, 0, "") yield "". Non-string values are returned as
// compact JSON.
func errorField(data []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Error, &s); err == nil {
		return s
	}

	switch string(bytes.TrimSpace(body.Error)) {
	case "null", "false", "0":
		return ""
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body.Error); err != nil {
		return string(body.Error)
	}
	return compact.String()
}

// requestError classifies a failure from http.Client.Do or a body read.
func requestError(ctx context.Context, kind ErrorKind, msg string, err error) *TransportError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return &TransportError{Kind: KindCanceled, Message: ErrCanceled.Message, Cause: err}
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Kind: KindTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &TransportError{Kind: kind, Message: msg, Cause: err}
}

// =============================================================================
// HELPERS
// =============================================================================

// IsCanceled reports whether err is a cancelled request.
func IsCanceled(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind == KindCanceled
	}
	return errors.Is(err, context.Canceled)
}

// IsTimeout reports whether err is a request that ran out of time.
func IsTimeout(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind == KindTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) && te.Kind == KindStatus {
		return te.Status
	}
	return 0
}
