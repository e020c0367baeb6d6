// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/mail"
	"strings"
)

// MinPasswordLen is the shortest password an organisation may set.
const MinPasswordLen = 8

// IsValidEmail reports whether s is a bare address ("user@host"), without a
// display name, with no empty or doubled dots in either part.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return validDotted(s[:at]) && validDotted(s[at+1:])
}

func validDotted(part string) bool {
	if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
		return false
	}
	return !strings.Contains(part, "..")
}

// Result collects field errors in the order they were found.
type Result struct {
	errs []string
}

// Add records msg when bad is true.
func (r *Result) Add(bad bool, msg string) {
	if bad {
		r.errs = append(r.errs, msg)
	}
}

func (r Result) HasErrors() bool { return len(r.errs) > 0 }

// First returns the first recorded error, or "".
func (r Result) First() string {
	if len(r.errs) == 0 {
		return ""
	}
	return r.errs[0]
}

// All joins every recorded error with "; ".
func (r Result) All() string {
	return strings.Join(r.errs, "; ")
}
