package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies request failures so callers can branch without inspecting
// status codes.
type Kind int

const (
	// KindTransport covers network-level failures: the backend was never
	// reached or the connection dropped mid-request.
	KindTransport Kind = iota
	// KindAuth means the request was rejected with 401 and the refresh path
	// is exhausted. The session is over.
	KindAuth
	// KindValidation covers 4xx responses other than 401/404; the backend
	// payload is surfaced as-is.
	KindValidation
	// KindNotFound is a 404 for a specific entity.
	KindNotFound
	// KindServer covers 5xx responses.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is the single error type returned by the client.
type Error struct {
	Kind   Kind
	Status int
	// Detail is the backend's top-level message, when one was provided.
	Detail string
	// Fields holds field-level validation messages keyed by field name.
	Fields map[string][]string
	// Err is the underlying cause for transport failures.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindTransport && e.Err != nil:
		return fmt.Sprintf("api: transport: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Detail)
	case len(e.Fields) > 0:
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.FieldSummary())
	default:
		return fmt.Sprintf("api: %s (%d)", e.Kind, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// FieldSummary flattens field errors into one line for banners and toasts.
func (e *Error) FieldSummary() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return strings.Join(parts, "; ")
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func authError(status int, detail string) *Error {
	return &Error{Kind: KindAuth, Status: status, Detail: detail}
}

// errorFromResponse builds an Error from a non-2xx response body. The Lon
// backend returns either {"detail": "..."}, {"error": "..."} or a map of
// field name to message list.
func errorFromResponse(status int, body []byte) *Error {
	apiErr := &Error{Status: status}
	switch {
	case status == 404:
		apiErr.Kind = KindNotFound
	case status == 401:
		apiErr.Kind = KindAuth
	case status >= 500:
		apiErr.Kind = KindServer
	default:
		apiErr.Kind = KindValidation
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		if detail := strings.TrimSpace(string(body)); detail != "" && len(detail) < 200 {
			apiErr.Detail = detail
		}
		return apiErr
	}
	for key, raw := range payload {
		var single string
		if err := json.Unmarshal(raw, &single); err == nil {
			if key == "detail" || key == "error" {
				apiErr.Detail = single
				continue
			}
			addFieldError(apiErr, key, single)
			continue
		}
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil {
			for _, msg := range many {
				addFieldError(apiErr, key, msg)
			}
		}
	}
	return apiErr
}

func addFieldError(e *Error, field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// IsAuth reports whether err means the session has ended.
func IsAuth(err error) bool { return IsKind(err, KindAuth) }

// IsNotFound reports whether err is an entity-absent failure.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
