package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers. Wrap tags an error with one so callers can classify it
// with errors.Is.
var (
	ErrPersistence   = errors.New("persistence error")
	ErrProvider      = errors.New("provider error")
	ErrLibrary       = errors.New("library error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// kinds is ordered; the first marker an error matches names it.
var kinds = []struct {
	marker error
	label  string
}{
	{ErrPersistence, "persistence"},
	{ErrProvider, "provider"},
	{ErrLibrary, "library"},
	{ErrConfiguration, "configuration"},
	{ErrNotFound, "not_found"},
	{ErrTimeout, "timeout"},
}

// Wrap returns "marker: component: operation: message: err" with empty parts
// left out. A nil marker means ErrTransient.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	var parts []string
	for _, p := range []string{component, operation, message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := "service failure"
	if len(parts) > 0 {
		detail = strings.Join(parts, ": ")
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// Kind labels err for logs. Unmarked errors are "transient".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.marker) {
			return k.label
		}
	}
	return "transient"
}

// Fatal reports whether err must halt a review session. Persistence and
// library write failures stop the loop so the queue stays authoritative.
func Fatal(err error) bool {
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrLibrary) || errors.Is(err, ErrConfiguration)
}
