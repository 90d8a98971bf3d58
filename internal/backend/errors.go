package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the backend rejects or misses the credential.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("backend: not found")
	// ErrConnection is returned when no HTTP response was received.
	ErrConnection = errors.New("backend: connection failed")
	// ErrEmptyBaseURL is returned by NewClient without a base url.
	ErrEmptyBaseURL = errors.New("backend: empty base url")
	// ErrMissingCredential is returned when a session has no token.
	ErrMissingCredential = errors.New("backend: missing credential")
)

// APIError is a non-success response carrying the backend's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: http %d", e.Status)
	}
	return fmt.Sprintf("backend: http %d: %s", e.Status, e.Message)
}

// MessageOf returns the backend message carried by err, if any.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// messageFromBody extracts a human readable message from a JSON error body.
// It understands {"detail": ...}, {"message": ...}, {"error": ...} and
// field error maps such as {"document": ["..."]}.
func messageFromBody(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
		if msg := flattenMessage(body[key]); msg != "" {
			return msg
		}
	}
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if msg := flattenMessage(body[key]); msg != "" {
			return msg
		}
	}
	return ""
}

func flattenMessage(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		for _, item := range v {
			if msg := flattenMessage(item); msg != "" {
				return msg
			}
		}
	case map[string]any:
		for _, key := range []string{"detail", "message", "error"} {
			if msg := flattenMessage(v[key]); msg != "" {
				return msg
			}
		}
	}
	return ""
}
