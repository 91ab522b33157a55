// Package validate holds the client-side form checks run before a request
// reaches the backend. The rules mirror what the server accepts.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password the forms accept.
const MinPasswordLength = 6

// Messages shown next to the offending field.
const (
	MsgEmailInvalid     = "that email address is invalid"
	MsgPasswordShort    = "your password is too short"
	MsgPasswordMismatch = "your passwords don't match"
	MsgDomainInvalid    = "that domain is invalid"
	MsgNameRequired     = "a name is required"
	MsgFilenameInvalid  = "only letters, digits, '_' and '.' are allowed"
)

var (
	emailPattern    = regexp.MustCompile(`^([a-zA-Z0-9_\-\.]+)@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.)|(([a-zA-Z0-9\-]+\.)+))([a-zA-Z]{2,4}|[0-9]{1,3})(\]?)$`)
	domainPattern   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_\.]+$`)
	filenameIllegal = regexp.MustCompile(`[^A-Za-z0-9_\.]+`)
	domainIllegal   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Error is a failed check on a single form field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fail(field, msg string) error {
	return &Error{Field: field, Message: msg}
}

// Email checks an address. Blank is allowed: the address is only used for
// password recovery.
func Email(email string) error {
	if email != "" && !emailPattern.MatchString(email) {
		return fail("email", MsgEmailInvalid)
	}
	return nil
}

// Password checks length and that the confirmation matches.
func Password(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return fail("password", MsgPasswordShort)
	}
	if password != confirm {
		return fail("password", MsgPasswordMismatch)
	}
	return nil
}

// Domain checks a site subdomain.
func Domain(domain string) error {
	if !domainPattern.MatchString(domain) {
		return fail("domain", MsgDomainInvalid)
	}
	return nil
}

// Filename checks a page or file name. Names made only of dots are
// rejected: they would resolve to a directory.
func Filename(name string) error {
	if !filenamePattern.MatchString(name) || strings.Trim(name, ".") == "" {
		return fail("name", MsgFilenameInvalid)
	}
	return nil
}

// Signup checks the whole signup form. The email is mandatory here, unlike
// in account updates.
func Signup(name, domain, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return fail("name", MsgNameRequired)
	}
	if err := Domain(domain); err != nil {
		return err
	}
	if email == "" {
		return fail("email", MsgEmailInvalid)
	}
	if err := Email(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return fail("password", MsgPasswordShort)
	}
	return nil
}

// SafeName strips every character a filename may not contain.
func SafeName(name string) string {
	return filenameIllegal.ReplaceAllString(name, "")
}

// SuggestDomain derives a domain from a display name: lower case,
// alphanumerics only. "Ada Lovelace" becomes "adalovelace".
func SuggestDomain(name string) string {
	return domainIllegal.ReplaceAllString(strings.ToLower(name), "")
}
