package issuance

import (
	"fmt"
	"strings"

	dErrors "finetrack/pkg/domain-errors"
)

// Required field names, as reported in MissingFieldsError.
const (
	FieldCivilianIdentityCode = "civilianIdentityCode"
	FieldCivilianDisplayName  = "civilianDisplayName"
	FieldIssueLocation        = "issueLocation"
	FieldOffenceID            = "offenceId"
)

// FormatError reports an identity code that is not nine digits plus V or X.
// It blocks submission regardless of the other fields.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid identity code format %q, use 123456789V", e.Value)
}

func (e *FormatError) Unwrap() error {
	return &dErrors.Error{Code: dErrors.CodeInvalidFormat, Message: "invalid identity code format, use 123456789V"}
}

// MissingFieldsError names the absent required fields in a fixed order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return &dErrors.Error{Code: dErrors.CodeMissingFields, Message: e.Error()}
}

// MissingFieldNames lets the HTTP layer render the field list.
func (e *MissingFieldsError) MissingFieldNames() []string {
	return append([]string(nil), e.Fields...)
}
