// Package domain holds the primitives shared by every fines package: typed
// identifiers and the national identity code.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "finetrack/pkg/domain-errors"
)

// FineID identifies a fine issuance record.
type FineID string

// OfficerID identifies the issuing officer. Values are opaque and come from the
// identity/session collaborator.
type OfficerID string

// OffenceID references an offence catalog entry. It is immutable once a fine
// refers to it.
type OffenceID string

// IdentityCode is a civilian's national identity code: nine ASCII digits and a
// V or X suffix. The suffix is case-insensitive.
type IdentityCode string

var identityCodePattern = regexp.MustCompile(`^[0-9]{9}[VvXx]$`)

// NewFineID returns a fresh random fine id.
func NewFineID() FineID {
	return FineID(uuid.NewString())
}

func (id FineID) String() string    { return string(id) }
func (id OfficerID) String() string { return string(id) }
func (id OffenceID) String() string { return string(id) }

func (id FineID) IsNil() bool    { return id == "" }
func (id OfficerID) IsNil() bool { return id == "" }
func (id OffenceID) IsNil() bool { return id == "" }

// ValidIdentityCode reports whether s is exactly nine digits followed by V/v/X/x.
// No trimming is applied.
func ValidIdentityCode(s string) bool {
	return identityCodePattern.MatchString(s)
}

// ParseIdentityCode validates s and returns its canonical form (upper-case
// suffix). Surrounding whitespace is ignored.
func ParseIdentityCode(s string) (IdentityCode, error) {
	s = strings.TrimSpace(s)
	if !ValidIdentityCode(s) {
		return "", dErrors.New(dErrors.CodeInvalidFormat, "invalid identity code format, use 123456789V")
	}
	return IdentityCode(strings.ToUpper(s)), nil
}

func (c IdentityCode) String() string { return string(c) }

func (c IdentityCode) IsNil() bool { return c == "" }

// Equal compares two identity codes ignoring the case of the suffix.
func (c IdentityCode) Equal(other IdentityCode) bool {
	return strings.EqualFold(string(c), string(other))
}

// Contains reports whether fragment occurs in the code, ignoring case.
func (c IdentityCode) Contains(fragment string) bool {
	return strings.Contains(strings.ToUpper(string(c)), strings.ToUpper(fragment))
}
