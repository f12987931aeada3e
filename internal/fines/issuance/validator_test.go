package issuance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"finetrack/internal/fines/catalog"
	"finetrack/internal/fines/models"
	dErrors "finetrack/pkg/domain-errors"
)

type ValidatorSuite struct {
	suite.Suite
	validator *Validator
	now       time.Time
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	roster := []models.Civilian{
		{IdentityCode: "993090809V", DisplayName: "Nimal Perera"},
		{IdentityCode: "880675443V", DisplayName: "Kamala Silva"},
	}
	cat := catalog.New([]models.OffenceEntry{
		{OffenceID: "o1", OffenceName: "Speeding", BaseAmount: decimal.NewFromInt(5000), Category: models.CategoryStandard},
		{OffenceID: "o2", OffenceName: "Drunk driving", BaseAmount: decimal.NewFromInt(25000), Category: models.CategoryCourt},
	})
	s.validator = NewValidator(roster, cat)
	s.now = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
}

func (s *ValidatorSuite) validDraft() Draft {
	return Draft{
		CivilianIdentityCode: "993090809V",
		CivilianDisplayName:  "Nimal Perera",
		OffenceID:            "o1",
		OfficerID:            "p1",
		VehicleNumber:        "CAB-1234",
		IssueLocation:        "Galle Road",
	}
}

func (s *ValidatorSuite) TestFormatGate() {
	s.Run("rejects before field checks", func() {
		_, err := s.validator.Validate(Draft{CivilianIdentityCode: "99309080V"}, s.now)
		var fe *FormatError
		s.Require().True(errors.As(err, &fe))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidFormat))
	})

	s.Run("wrong suffix", func() {
		d := s.validDraft()
		d.CivilianIdentityCode = "993090809A"
		_, err := s.validator.Validate(d, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidFormat))
	})

	s.Run("lower-case suffix accepted and canonicalised", func() {
		d := s.validDraft()
		d.CivilianIdentityCode = "993090809v"
		sub, err := s.validator.Validate(d, s.now)
		s.Require().NoError(err)
		s.Equal("993090809V", sub.CivilianIdentityCode.String())
	})
}

func (s *ValidatorSuite) TestMissingFields() {
	s.Run("names every absent field in order", func() {
		_, err := s.validator.Validate(Draft{CivilianIdentityCode: "123456789X"}, s.now)
		var mf *MissingFieldsError
		s.Require().True(errors.As(err, &mf))
		s.Equal([]string{FieldCivilianDisplayName, FieldIssueLocation, FieldOffenceID}, mf.Fields)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingFields))
	})

	s.Run("unresolvable offence id counts as missing", func() {
		d := s.validDraft()
		d.OffenceID = "o9"
		_, err := s.validator.Validate(d, s.now)
		var mf *MissingFieldsError
		s.Require().True(errors.As(err, &mf))
		s.Equal([]string{FieldOffenceID}, mf.Fields)
	})

	s.Run("whitespace location is missing", func() {
		d := s.validDraft()
		d.IssueLocation = "   "
		_, err := s.validator.Validate(d, s.now)
		var mf *MissingFieldsError
		s.Require().True(errors.As(err, &mf))
		s.Equal([]string{FieldIssueLocation}, mf.MissingFieldNames())
	})
}

func (s *ValidatorSuite) TestOffenceBinding() {
	s.Run("name resolves to id and is dropped", func() {
		d := s.validDraft()
		d.OffenceID = ""
		d.OffenceName = "Drunk driving"
		sub, err := s.validator.Validate(d, s.now)
		s.Require().NoError(err)
		s.Equal("o2", sub.OffenceID.String())
	})

	s.Run("id wins over name", func() {
		d := s.validDraft()
		d.OffenceName = "Drunk driving"
		sub, err := s.validator.Validate(d, s.now)
		s.Require().NoError(err)
		s.Equal("o1", sub.OffenceID.String())
	})
}

func (s *ValidatorSuite) TestDisplayNameAutofill() {
	d := s.validDraft()
	d.CivilianDisplayName = ""
	d.CivilianIdentityCode = "880675443v"
	sub, err := s.validator.Validate(d, s.now)
	s.Require().NoError(err)
	s.Equal("Kamala Silva", sub.CivilianDisplayName)

	s.Run("no exact match leaves it missing", func() {
		d := s.validDraft()
		d.CivilianDisplayName = ""
		d.CivilianIdentityCode = "111111111X"
		_, err := s.validator.Validate(d, s.now)
		var mf *MissingFieldsError
		s.Require().True(errors.As(err, &mf))
		s.Equal([]string{FieldCivilianDisplayName}, mf.Fields)
	})

	s.Run("roster accounts without a code are ignored", func() {
		roster := []models.Civilian{
			{DisplayName: "Station Admin"},
			{IdentityCode: "880675443V", DisplayName: "Kamala Silva"},
		}
		v := NewValidator(roster, catalog.New([]models.OffenceEntry{{OffenceID: "o1", OffenceName: "Speeding"}}))
		d := s.validDraft()
		d.CivilianDisplayName = ""
		d.CivilianIdentityCode = "880675443V"
		sub, err := v.Validate(d, s.now)
		s.Require().NoError(err)
		s.Equal("Kamala Silva", sub.CivilianDisplayName)
	})
}

func (s *ValidatorSuite) TestDefaultsAndNormalisation() {
	sub, err := s.validator.Validate(s.validDraft(), s.now)
	s.Require().NoError(err)
	s.Equal("2024-01-01", sub.IssueDate.String())
	s.Equal("09:30", sub.IssueTime)

	rec := sub.Record("f1")
	s.Equal("f1", rec.FineID.String())
	s.False(rec.IsPaid)
	s.Equal("o1", rec.OffenceID.String())

	s.Run("explicit date and time kept", func() {
		d := s.validDraft()
		d.IssueDate = "2023-12-31"
		d.IssueTime = "23:05"
		sub, err := s.validator.Validate(d, s.now)
		s.Require().NoError(err)
		s.Equal("2023-12-31", sub.IssueDate.String())
		s.Equal("23:05", sub.IssueTime)
	})

	s.Run("bad date rejected", func() {
		d := s.validDraft()
		d.IssueDate = "31/12/2023"
		_, err := s.validator.Validate(d, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("bad time rejected", func() {
		d := s.validDraft()
		d.IssueTime = "25:99"
		_, err := s.validator.Validate(d, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestValidatorMalformedRoster(t *testing.T) {
	v := NewValidator([]models.Civilian{{DisplayName: "no code"}}, nil)
	_, err := v.Validate(Draft{CivilianIdentityCode: "993090809V", IssueLocation: "x", OffenceID: "o1"}, time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
