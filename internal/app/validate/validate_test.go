package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.co.uk:8443/a/b",
	}
	for _, u := range valid {
		if err := URL(u); err != nil {
			t.Errorf("URL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"not-a-url",
		"ftp://example.com",
		"javascript:alert(1)",
		"https://",
		"//example.com",
		"http:",
	}
	for _, u := range invalid {
		if err := URL(u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("URL(%q) = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestCodeFormat(t *testing.T) {
	valid := []string{"abc123", "ABCdef12", "000000", "zZzZzZzZ"}
	for _, c := range valid {
		if err := CodeFormat(c); err != nil {
			t.Errorf("CodeFormat(%q) = %v, want nil", c, err)
		}
	}

	invalid := []string{
		"",
		"abc12",              // too short
		"abc123456",          // too long
		"abc 12",             // space
		"abc-12",             // dash
		"abcd1!",             // punctuation
		strings.Repeat("ü", 6), // multibyte
	}
	for _, c := range invalid {
		if err := CodeFormat(c); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("CodeFormat(%q) = %v, want ErrInvalidCode", c, err)
		}
	}
}

func TestHostname(t *testing.T) {
	if got := Hostname("https://example.com:8080/x"); got != "example.com" {
		t.Errorf("Hostname = %q, want example.com", got)
	}
}
