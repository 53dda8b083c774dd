// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed API call
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindValidation
	KindRejected
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned for every failed call made through Client
type Error struct {
	Kind   Kind
	Op     string
	Status int

	// Detail and Code come from the response body's "detail"/"error" and
	// "code" keys when present
	Detail string
	Code   string

	// Fields maps a form field to its validation messages (KindValidation)
	Fields map[string][]string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// AsError extracts the *Error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// Describe returns the most specific text available for a failure: the
// backend's detail, else the HTTP status, else the error itself
func Describe(err error) string {
	apiErr, ok := AsError(err)
	if !ok {
		return err.Error()
	}
	if apiErr.Detail != "" {
		return apiErr.Detail
	}
	if apiErr.Status != 0 {
		return fmt.Sprintf("Status: %d", apiErr.Status)
	}
	return apiErr.Kind.String() + " error"
}

// ValidationText renders a field -> messages mapping one field per line,
// "field: msg1, msg2", in field order
func ValidationText(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+strings.Join(fields[name], ", "))
	}
	return strings.Join(lines, "\n")
}

// TryLater is shown for failures with nothing more specific to say
const TryLater = "Please try again later."

// Message maps err to user-visible text: validation fields line by line,
// the backend's detail for other rejections, TryLater for everything else
func Message(err error) string {
	apiErr, ok := AsError(err)
	if !ok {
		return TryLater
	}
	switch apiErr.Kind {
	case KindValidation:
		return ValidationText(apiErr.Fields)
	case KindRejected, KindUnauthorized:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
	}
	return TryLater
}

// responseError builds an *Error from a non-2xx response body
func responseError(op string, status int, body []byte) *Error {
	e := &Error{Op: op, Status: status}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindRejected
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return e
	}

	var detail, errText string
	for key, val := range raw {
		switch key {
		case "detail":
			json.Unmarshal(val, &detail)
			continue
		case "error":
			json.Unmarshal(val, &errText)
			continue
		case "code":
			var s string
			if json.Unmarshal(val, &s) == nil {
				e.Code = s
			}
			continue
		}

		var msgs []string
		if json.Unmarshal(val, &msgs) == nil {
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[key] = msgs
			continue
		}
		var msg string
		if json.Unmarshal(val, &msg) == nil {
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[key] = []string{msg}
		}
	}

	e.Detail = detail
	if e.Detail == "" {
		e.Detail = errText
	}

	if status == http.StatusBadRequest && len(e.Fields) > 0 {
		e.Kind = KindValidation
	}
	return e
}
