package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Tiliavir/tutor-hub/internal/model"
)

// DomainError is a failed call. Message is ready to show to the user.
type DomainError struct {
	Status  int
	Message string
	Err     error
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// messageKeys are the body keys whose value is already a full sentence.
var messageKeys = []string{"detail", "message", "error", "non_field_errors"}

// parseError turns a non-2xx response into a DomainError. Field-keyed
// validation bodies such as {"start_time": ["This field is required."]}
// become "Start time: This field is required.".
func parseError(status int, body []byte) *DomainError {
	return &DomainError{Status: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			return text
		}
		return fallbackMessage(status)
	}

	switch v := payload.(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		if msg := firstText(v); msg != "" {
			return msg
		}
	case map[string]any:
		for _, key := range messageKeys {
			if msg := firstText(v[key]); msg != "" {
				return msg
			}
		}
		fields := make([]string, 0, len(v))
		for k := range v {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		var parts []string
		for _, f := range fields {
			if msg := firstText(v[f]); msg != "" {
				parts = append(parts, model.FieldLabel(f)+": "+msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return fallbackMessage(status)
}

// firstText digs the first string out of a string, list, or nested object.
func firstText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s := firstText(item); s != "" {
				return s
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := firstText(t[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func fallbackMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case http.StatusForbidden:
		return "You do not have permission to change this profile."
	case http.StatusNotFound:
		return "The requested record no longer exists."
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Request failed: %s (%d).", text, status)
	}
	return fmt.Sprintf("Request failed with status %d.", status)
}
