package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorList collects field errors.
type errorList []FieldError

func (l *errorList) add(field, format string, args ...any) {
	*l = append(*l, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// required checks that v is not blank and at most max characters long.
func (l *errorList) required(field, v string, max int) {
	v = strings.TrimSpace(v)
	if v == "" {
		l.add(field, "%s is required", field)
		return
	}
	l.maxLen(field, v, max)
}

func (l *errorList) maxLen(field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		l.add(field, "%s must be at most %d characters", field, max)
	}
}

// email checks an optional email address. Blank is accepted.
func (l *errorList) email(field, v string, max int) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if addr, err := mail.ParseAddress(v); err != nil || addr.Address != v {
		l.add(field, "%s must be a valid email address", field)
		return
	}
	l.maxLen(field, v, max)
}

// url checks an optional absolute http(s) URL. Blank is accepted.
func (l *errorList) url(field, v string, max int) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		l.add(field, "%s must be a valid URL", field)
		return
	}
	l.maxLen(field, v, max)
}

func (l *errorList) uuid(field, v string) {
	if strings.TrimSpace(v) == "" {
		l.add(field, "%s is required", field)
		return
	}
	if _, err := uuid.Parse(v); err != nil {
		l.add(field, "%s must be a valid UUID", field)
	}
}

// intRange checks an optional integer. Zero is accepted when allowZero is
// set, meaning "clear the value".
func (l *errorList) intRange(field string, v *int, min, max int, allowZero bool) {
	if v == nil || (allowZero && *v == 0) {
		return
	}
	if *v < min || *v > max {
		l.add(field, "%s must be between %d and %d", field, min, max)
	}
}
