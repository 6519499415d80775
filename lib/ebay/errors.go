package ebay

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest  = errors.New("invalid search request")
	ErrMissingAppID    = errors.New("ebay app id is not configured")
	ErrMissingField    = errors.New("missing field")
	ErrIndexOutOfRange = errors.New("item index out of range")
)

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("ebay: unexpected status %d: %s", e.StatusCode, body)
}

// APIError is returned when the response envelope acknowledges a failure.
type APIError struct {
	Ack      string
	Messages []ErrorData
}

func (e *APIError) Error() string {
	var parts []string
	for _, m := range e.Messages {
		id, _ := first(m.ErrorID)
		msg, _ := first(m.Message)
		parts = append(parts, fmt.Sprintf("[%s] %s", id, msg))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("ebay: ack %s", e.Ack)
	}
	return fmt.Sprintf("ebay: ack %s: %s", e.Ack, strings.Join(parts, "; "))
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
