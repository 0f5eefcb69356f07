// Package validate holds the pure input checks for link creation: URL
// well-formedness and short-code format. No I/O happens here.
package validate

import (
	"errors"
	"net/url"
)

var (
	// ErrInvalidURL signals a candidate URL that is not an absolute
	// http/https URL with a hostname.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidCode signals a short code outside 6-8 alphanumeric chars.
	ErrInvalidCode = errors.New("code must be 6-8 chars, letters/numbers only")
)

const (
	CodeMinLen = 6
	CodeMaxLen = 8
)

// URL rejects anything that is not an absolute http or https URL with a
// non-empty hostname.
func URL(candidate string) error {
	u, err := url.Parse(candidate)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Hostname() == "" {
		return ErrInvalidURL
	}
	return nil
}

// CodeFormat enforces the ^[A-Za-z0-9]{6,8}$ shape for custom codes.
func CodeFormat(candidate string) error {
	if len(candidate) < CodeMinLen || len(candidate) > CodeMaxLen {
		return ErrInvalidCode
	}
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if !(c >= 'a' && c <= 'z') &&
			!(c >= 'A' && c <= 'Z') &&
			!(c >= '0' && c <= '9') {
			return ErrInvalidCode
		}
	}
	return nil
}

// Hostname extracts the hostname from an already validated URL. It
// returns the empty string if the URL does not parse, so callers that
// run URL first never see that case.
func Hostname(candidate string) string {
	u, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
