package cql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the layout of absolute dates sent to Confluence.
const DateTimeLayout = "2006-01-02 15:04"

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote renders s as a CQL string literal.
func Quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

func list(values []string) string {
	return "(" + strings.Join(values, ", ") + ")"
}

func quotedList(field Field, values []string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("%w: %s needs at least one value", ErrInvalidArgument, field)
	}
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("%w: %s value must not be empty", ErrInvalidArgument, field)
		}
		quoted = append(quoted, Quote(v))
	}
	return list(quoted), nil
}

func requireValue(field Field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s value must not be empty", ErrInvalidArgument, field)
	}
	return nil
}

func formatDate(field Field, t time.Time) (string, error) {
	if t.IsZero() {
		return "", fmt.Errorf("%w: %s needs a non-zero time", ErrInvalidArgument, field)
	}
	return Quote(t.Format(DateTimeLayout)), nil
}

// formatRelative renders d as a now() offset in the largest whole unit CQL
// understands (weeks, days, hours, minutes).
func formatRelative(field Field, d time.Duration) (string, error) {
	if d < time.Minute {
		return "", fmt.Errorf("%w: %s needs a duration of at least one minute, got %s", ErrInvalidArgument, field, d)
	}
	const (
		day  = 24 * time.Hour
		week = 7 * day
	)
	var offset string
	switch {
	case d%week == 0:
		offset = strconv.FormatInt(int64(d/week), 10) + "w"
	case d%day == 0:
		offset = strconv.FormatInt(int64(d/day), 10) + "d"
	case d%time.Hour == 0:
		offset = strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	default:
		offset = strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	}
	return `now("-` + offset + `")`, nil
}

func formatContentID(field Field, id string) (string, error) {
	id = strings.TrimSpace(id)
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return "", fmt.Errorf("%w: %s must be a positive numeric content id, got %q", ErrInvalidArgument, field, id)
	}
	return strconv.FormatUint(n, 10), nil
}
