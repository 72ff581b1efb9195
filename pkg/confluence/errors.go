package confluence

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"wikiq/pkg/cql"
)

// ErrInvalidArgument is returned for arguments rejected before any request
// is sent. It is the same sentinel the cql package uses.
var ErrInvalidArgument = cql.ErrInvalidArgument

const maxErrorBody = 64 << 10

// APIError is returned when Confluence answers with an unexpected status.
type APIError struct {
	// Operation that failed, e.g. "get content".
	Operation string

	StatusCode int

	// Reason is the reason phrase from the error payload, or the standard
	// status text when the payload has none.
	Reason string

	// Message is the human readable message from the error payload.
	Message string

	// Body is the raw response body, truncated.
	Body string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("confluence: %s failed with status %d", e.Operation, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func newAPIError(op string, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &APIError{
		Operation:  op,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	if gjson.ValidBytes(body) {
		r := gjson.ParseBytes(body)
		e.Message = r.Get("message").String()
		e.Reason = r.Get("reason").String()
		if e.Message == "" {
			e.Message = r.Get("data.errors.0.message.translation").String()
		}
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Reason == "" {
		e.Reason = http.StatusText(resp.StatusCode)
	}
	return e
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsForbidden reports whether err is an APIError with status 403.
func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// UpdateForbiddenError is returned when Confluence refuses to update a piece
// of content, usually because of page restrictions.
type UpdateForbiddenError struct {
	ContentID string
	Title     string
	Msg       string
}

func (e *UpdateForbiddenError) Error() string {
	return e.Msg
}

// IsUpdateForbidden reports whether err is or wraps an UpdateForbiddenError.
func IsUpdateForbidden(err error) bool {
	var target *UpdateForbiddenError
	return errors.As(err, &target)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
