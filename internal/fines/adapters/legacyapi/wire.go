package legacyapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/email"
)

var errUnexpectedShape = errors.New("unexpected response shape")

// unwrapList accepts a bare array, {"data": [...]} or {"data": {...}}.
func unwrapList(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errUnexpectedShape
	}
	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, err
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return nil, errUnexpectedShape
		}
		if data[0] == '{' {
			return []json.RawMessage{data}, nil
		}
		return unwrapList(data)
	default:
		return nil, errUnexpectedShape
	}
}

// amount reads a number that may arrive as 1500, "1500" or "".
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

type userDTO struct {
	ID       string `json:"_id"`
	IDNumber string `json:"idNumber"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

func (u userDTO) toCivilian() models.Civilian {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = email.DisplayName(u.Email)
	}
	return models.Civilian{
		IdentityCode: id.IdentityCode(strings.TrimSpace(u.IDNumber)),
		DisplayName:  name,
		ContactInfo:  u.Email,
		Address:      u.Address,
	}
}

type offenceDTO struct {
	ID      string `json:"_id"`
	Offence string `json:"offence"`
	Fine    amount `json:"fine"`
	Type    string `json:"type"`
}

func (o offenceDTO) toEntry() models.OffenceEntry {
	return models.OffenceEntry{
		OffenceID:   id.OffenceID(o.ID),
		OffenceName: o.Offence,
		BaseAmount:  o.Fine.Decimal,
		Category:    models.ParseCategory(o.Type),
	}
}

type fineDTO struct {
	ID               string `json:"_id"`
	CivilNIC         string `json:"civilNIC"`
	CivilUserName    string `json:"civilUserName"`
	FineManagementID string `json:"fineManagementId"`
	PoliceID         string `json:"policeId,omitempty"`
	PoliceOfficerID  string `json:"policeOfficerId,omitempty"`
	VehicalNumber    string `json:"vehicalNumber"`
	IssueLocation    string `json:"issueLocation"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	IsPaid           bool   `json:"isPaid"`
}

// toRecord always returns the record. An unusable date is left zero and
// reported through the error.
func (f fineDTO) toRecord() (models.FineRecord, error) {
	date, dateErr := models.ParseDate(f.Date)
	officer := f.PoliceID
	if officer == "" {
		officer = f.PoliceOfficerID
	}
	return models.FineRecord{
		FineID:               id.FineID(f.ID),
		CivilianIdentityCode: id.IdentityCode(strings.TrimSpace(f.CivilNIC)),
		CivilianDisplayName:  f.CivilUserName,
		OffenceID:            id.OffenceID(f.FineManagementID),
		OfficerID:            id.OfficerID(officer),
		VehicleNumber:        f.VehicalNumber,
		IssueLocation:        f.IssueLocation,
		IssueDate:            date,
		IssueTime:            f.Time,
		IsPaid:               f.IsPaid,
	}, dateErr
}

func fromRecord(r models.FineRecord) fineDTO {
	return fineDTO{
		ID:               r.FineID.String(),
		CivilNIC:         r.CivilianIdentityCode.String(),
		CivilUserName:    r.CivilianDisplayName,
		FineManagementID: r.OffenceID.String(),
		PoliceID:         r.OfficerID.String(),
		VehicalNumber:    r.VehicleNumber,
		IssueLocation:    r.IssueLocation,
		Date:             r.IssueDate.String(),
		Time:             r.IssueTime,
		IsPaid:           r.IsPaid,
	}
}
