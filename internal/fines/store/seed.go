package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finetrack/internal/fines/models"
)

// Seed loads a small demo data set: a roster, a catalog with both categories,
// and a handful of fines spread over the days of now and the day before.
func Seed(ctx context.Context, s *InMemoryStore, now time.Time) error {
	civilians := []models.Civilian{
		{IdentityCode: "199012345V", DisplayName: "Nimal Perera", ContactInfo: "nimal@example.com", Address: "12 Galle Road, Colombo"},
		{IdentityCode: "198523456V", DisplayName: "Kamala Silva", ContactInfo: "kamala@example.com", Address: "4 Temple Street, Kandy"},
		{IdentityCode: "200134567X", DisplayName: "Sunil Fernando", ContactInfo: "sunil@example.com", Address: "88 Main Street, Matara"},
	}
	for _, c := range civilians {
		if err := s.AddCivilian(ctx, c); err != nil {
			return err
		}
	}

	offences := []models.OffenceEntry{
		{OffenceID: "OFF-001", OffenceName: "Speeding", BaseAmount: decimal.NewFromInt(3000), Category: models.CategoryStandard},
		{OffenceID: "OFF-002", OffenceName: "Driving without licence", BaseAmount: decimal.NewFromInt(5000), Category: models.CategoryStandard},
		{OffenceID: "OFF-003", OffenceName: "Illegal parking", BaseAmount: decimal.NewFromInt(1000), Category: models.CategoryStandard},
		{OffenceID: "OFF-004", OffenceName: "Drunk driving", BaseAmount: decimal.NewFromInt(25000), Category: models.CategoryCourt},
	}
	for _, e := range offences {
		if err := s.AddOffence(ctx, e); err != nil {
			return err
		}
	}

	today := models.DateOf(now)
	yesterday := models.DateOf(now.AddDate(0, 0, -1))
	fines := []models.FineRecord{
		{FineID: "FINE-0001", CivilianIdentityCode: "199012345V", CivilianDisplayName: "Nimal Perera", OffenceID: "OFF-001", OfficerID: "OFFICER-01", VehicleNumber: "CAB-1234", IssueLocation: "Galle Road", IssueDate: today, IssueTime: "08:15"},
		{FineID: "FINE-0002", CivilianIdentityCode: "198523456V", CivilianDisplayName: "Kamala Silva", OffenceID: "OFF-004", OfficerID: "OFFICER-01", VehicleNumber: "KY-5521", IssueLocation: "Peradeniya Road", IssueDate: yesterday, IssueTime: "22:40"},
		{FineID: "FINE-0003", CivilianIdentityCode: "199012345V", CivilianDisplayName: "Nimal Perera", OffenceID: "OFF-003", OfficerID: "OFFICER-02", VehicleNumber: "CAB-1234", IssueLocation: "Fort", IssueDate: yesterday, IssueTime: "12:05", IsPaid: true},
	}
	for _, f := range fines {
		if err := s.CreateFine(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
