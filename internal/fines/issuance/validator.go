// Package issuance gates fine drafts before they are handed to the store.
//
// Validation order is fixed: the identity-code format gate runs first and wins
// over everything else, then the offence reference is bound against the
// catalog, the display name is auto-filled from an exact roster match, and
// finally the required fields are checked.
package issuance

import (
	"fmt"
	"strings"
	"time"

	"finetrack/internal/fines/catalog"
	"finetrack/internal/fines/identity"
	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	dErrors "finetrack/pkg/domain-errors"
)

const timeLayout = "15:04"

// Draft is an issuance request as typed by the officer. OffenceName is only a
// display aid; it is resolved to an id and then dropped.
type Draft struct {
	CivilianIdentityCode string       `json:"civilianIdentityCode"`
	CivilianDisplayName  string       `json:"civilianDisplayName"`
	OffenceID            id.OffenceID `json:"offenceId"`
	OffenceName          string       `json:"offenceName,omitempty"`
	OfficerID            id.OfficerID `json:"officerId"`
	VehicleNumber        string       `json:"vehicleNumber"`
	IssueLocation        string       `json:"issueLocation"`
	IssueDate            string       `json:"issueDate,omitempty"`
	IssueTime            string       `json:"issueTime,omitempty"`
}

// Submission is a validated draft, ready to persist. It carries the offence id
// only.
type Submission struct {
	CivilianIdentityCode id.IdentityCode
	CivilianDisplayName  string
	OffenceID            id.OffenceID
	OfficerID            id.OfficerID
	VehicleNumber        string
	IssueLocation        string
	IssueDate            models.Date
	IssueTime            string
}

// Record turns the submission into an unpaid fine record.
func (s Submission) Record(fineID id.FineID) models.FineRecord {
	return models.FineRecord{
		FineID:               fineID,
		CivilianIdentityCode: s.CivilianIdentityCode,
		CivilianDisplayName:  s.CivilianDisplayName,
		OffenceID:            s.OffenceID,
		OfficerID:            s.OfficerID,
		VehicleNumber:        s.VehicleNumber,
		IssueLocation:        s.IssueLocation,
		IssueDate:            s.IssueDate,
		IssueTime:            s.IssueTime,
		IsPaid:               false,
	}
}

// Validator checks drafts against one roster and catalog snapshot. Build a new
// one whenever the snapshot is refreshed.
type Validator struct {
	roster  []models.Civilian
	catalog *catalog.Catalog
}

func NewValidator(roster []models.Civilian, cat *catalog.Catalog) *Validator {
	if cat == nil {
		cat = catalog.New(nil)
	}
	return &Validator{roster: roster, catalog: cat}
}

// Validate returns the normalized submission, a *FormatError, a
// *MissingFieldsError, or a validation error for a malformed date or time.
// now supplies the default issue date and time, in now's location.
func (v *Validator) Validate(d Draft, now time.Time) (Submission, error) {
	if !id.ValidIdentityCode(d.CivilianIdentityCode) {
		return Submission{}, &FormatError{Value: d.CivilianIdentityCode}
	}
	code := id.IdentityCode(strings.ToUpper(d.CivilianIdentityCode))

	sub := Submission{
		CivilianIdentityCode: code,
		CivilianDisplayName:  strings.TrimSpace(d.CivilianDisplayName),
		OffenceID:            v.bindOffence(d),
		OfficerID:            d.OfficerID,
		VehicleNumber:        strings.TrimSpace(d.VehicleNumber),
		IssueLocation:        strings.TrimSpace(d.IssueLocation),
	}

	if sub.CivilianDisplayName == "" {
		if match := identity.Match(d.CivilianIdentityCode, v.roster); match.ExactMatch != nil {
			sub.CivilianDisplayName = strings.TrimSpace(match.ExactMatch.DisplayName)
		}
	}

	var missing []string
	if sub.CivilianDisplayName == "" {
		missing = append(missing, FieldCivilianDisplayName)
	}
	if sub.IssueLocation == "" {
		missing = append(missing, FieldIssueLocation)
	}
	if sub.OffenceID.IsNil() {
		missing = append(missing, FieldOffenceID)
	}
	if len(missing) > 0 {
		return Submission{}, &MissingFieldsError{Fields: missing}
	}

	var err error
	if sub.IssueDate, err = issueDate(d.IssueDate, now); err != nil {
		return Submission{}, err
	}
	if sub.IssueTime, err = issueTime(d.IssueTime, now); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// bindOffence returns the catalog id for the draft, or "" when neither the id
// nor the name resolves. An explicit id takes precedence over the name.
func (v *Validator) bindOffence(d Draft) id.OffenceID {
	if !d.OffenceID.IsNil() {
		e, err := v.catalog.ResolveByID(d.OffenceID)
		if err != nil {
			return ""
		}
		return e.OffenceID
	}
	if d.OffenceName != "" {
		e, err := v.catalog.ResolveByName(d.OffenceName)
		if err != nil {
			return ""
		}
		return e.OffenceID
	}
	return ""
}

func issueDate(raw string, now time.Time) (models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.DateOf(now), nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("issueDate %q must be YYYY-MM-DD", raw))
	}
	return d, nil
}

func issueTime(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.Format(timeLayout), nil
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("issueTime %q must be HH:MM", raw))
	}
	return t.Format(timeLayout), nil
}
