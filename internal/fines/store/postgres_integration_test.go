//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/sentinel"
	"finetrack/pkg/platform/tx"
	"finetrack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetManager().Postgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.Migrate(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx, "payments", "fines", "offences", "civilians"))
}

func fine(fineID id.FineID) models.FineRecord {
	return models.FineRecord{
		FineID:               fineID,
		CivilianIdentityCode: "123456789V",
		CivilianDisplayName:  "Nimal Perera",
		OffenceID:            "o1",
		OfficerID:            "p1",
		VehicleNumber:        "CAB-1234",
		IssueLocation:        "Galle Road",
		IssueDate:            models.Date{Year: 2024, Month: 3, Day: 15},
		IssueTime:            "08:15",
	}
}

func (s *PostgresStoreSuite) TestFineRoundTrip() {
	s.Require().NoError(s.store.CreateFine(s.ctx, fine("f1")))
	s.Require().NoError(s.store.CreateFine(s.ctx, fine("f2")))

	got, err := s.store.GetFine(s.ctx, "f1")
	s.Require().NoError(err)
	s.Equal(fine("f1"), got)

	list, err := s.store.ListFines(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 2)
	s.Equal(id.FineID("f1"), list[0].FineID)

	s.ErrorIs(s.store.CreateFine(s.ctx, fine("f1")), sentinel.ErrConflict)

	_, err = s.store.GetFine(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOffencesKeepInsertionOrder() {
	s.Require().NoError(s.store.AddOffence(s.ctx, models.OffenceEntry{OffenceID: "o1", OffenceName: "Speeding", BaseAmount: decimal.RequireFromString("3000.50"), Category: models.CategoryStandard}))
	s.Require().NoError(s.store.AddOffence(s.ctx, models.OffenceEntry{OffenceID: "o1", OffenceName: "Duplicate", Category: models.CategoryCourt}))

	entries, err := s.store.ListOffences(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Speeding", entries[0].OffenceName)
	s.True(decimal.RequireFromString("3000.5").Equal(entries[0].BaseAmount))
}

func (s *PostgresStoreSuite) TestCivilianCodesUniqueIgnoringCase() {
	s.Require().NoError(s.store.AddCivilian(s.ctx, models.Civilian{IdentityCode: "123456789V", DisplayName: "A"}))
	s.ErrorIs(s.store.AddCivilian(s.ctx, models.Civilian{IdentityCode: "123456789v", DisplayName: "B"}), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestMarkPaidIsGuarded() {
	s.Require().NoError(s.store.CreateFine(s.ctx, fine("f1")))

	s.Require().NoError(s.store.MarkPaid(s.ctx, "f1"))
	s.ErrorIs(s.store.MarkPaid(s.ctx, "f1"), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.MarkPaid(s.ctx, "missing"), sentinel.ErrNotFound)

	ledger, err := s.store.PaidFines(s.ctx)
	s.Require().NoError(err)
	s.True(ledger.Paid("f1"))
}

func (s *PostgresStoreSuite) TestRollbackDiscardsFine() {
	runner := tx.NewRunner(s.pg.DB)
	err := runner.RunInTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.CreateFine(ctx, fine("f1")))
		return sentinel.ErrUnavailable
	})
	s.ErrorIs(err, sentinel.ErrUnavailable)

	_, err = s.store.GetFine(s.ctx, "f1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
