package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
	"finetrack/pkg/platform/sentinel"
	txcontext "finetrack/pkg/platform/tx"
)

// Schema creates the fines tables.
const Schema = `
CREATE TABLE IF NOT EXISTS civilians (
	identity_code TEXT PRIMARY KEY,
	display_name  TEXT NOT NULL,
	contact_info  TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS civilians_identity_code_upper_idx ON civilians (UPPER(identity_code));

CREATE TABLE IF NOT EXISTS offences (
	seq          BIGSERIAL PRIMARY KEY,
	offence_id   TEXT NOT NULL,
	offence_name TEXT NOT NULL,
	base_amount  NUMERIC(12, 2) NOT NULL DEFAULT 0,
	category     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS offences_offence_id_idx ON offences (offence_id);

CREATE TABLE IF NOT EXISTS fines (
	seq                    BIGSERIAL,
	fine_id                TEXT PRIMARY KEY,
	civilian_identity_code TEXT NOT NULL,
	civilian_display_name  TEXT NOT NULL,
	offence_id             TEXT NOT NULL,
	officer_id             TEXT NOT NULL,
	vehicle_number         TEXT NOT NULL DEFAULT '',
	issue_location         TEXT NOT NULL,
	issue_date             DATE NOT NULL,
	issue_time             TEXT NOT NULL,
	is_paid                BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS fines_officer_idx ON fines (officer_id);
CREATE INDEX IF NOT EXISTS fines_civilian_idx ON fines (UPPER(civilian_identity_code));

CREATE TABLE IF NOT EXISTS payments (
	fine_id TEXT PRIMARY KEY REFERENCES fines (fine_id),
	paid_at TIMESTAMPTZ NOT NULL
);
`

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresStore is the PostgreSQL implementation of the fines persistence
// ports. Writes join a transaction carried in ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate fines schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) AddCivilian(ctx context.Context, c models.Civilian) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO civilians (identity_code, display_name, contact_info, address)
		VALUES ($1, $2, $3, $4)
	`, c.IdentityCode.String(), c.DisplayName, c.ContactInfo, c.Address)
	if err != nil {
		return mapWriteErr(err, "insert civilian")
	}
	return nil
}

func (s *PostgresStore) AddOffence(ctx context.Context, e models.OffenceEntry) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO offences (offence_id, offence_name, base_amount, category)
		VALUES ($1, $2, $3, $4)
	`, e.OffenceID.String(), e.OffenceName, e.BaseAmount, string(e.Category))
	if err != nil {
		return mapWriteErr(err, "insert offence")
	}
	return nil
}

func (s *PostgresStore) ListCivilians(ctx context.Context) ([]models.Civilian, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT identity_code, display_name, contact_info, address
		FROM civilians
		ORDER BY identity_code
	`)
	if err != nil {
		return nil, fmt.Errorf("query civilians: %w", err)
	}
	defer rows.Close()

	var out []models.Civilian
	for rows.Next() {
		var c models.Civilian
		var code string
		if err := rows.Scan(&code, &c.DisplayName, &c.ContactInfo, &c.Address); err != nil {
			return nil, fmt.Errorf("scan civilian: %w", err)
		}
		c.IdentityCode = id.IdentityCode(code)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListOffences returns entries in insertion order so the first entry per id
// stays first.
func (s *PostgresStore) ListOffences(ctx context.Context) ([]models.OffenceEntry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT offence_id, offence_name, base_amount, category
		FROM offences
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query offences: %w", err)
	}
	defer rows.Close()

	var out []models.OffenceEntry
	for rows.Next() {
		var e models.OffenceEntry
		var offenceID, category string
		if err := rows.Scan(&offenceID, &e.OffenceName, &e.BaseAmount, &category); err != nil {
			return nil, fmt.Errorf("scan offence: %w", err)
		}
		e.OffenceID = id.OffenceID(offenceID)
		e.Category = models.ParseCategory(category)
		out = append(out, e)
	}
	return out, rows.Err()
}

const fineColumns = `fine_id, civilian_identity_code, civilian_display_name, offence_id, officer_id,
	vehicle_number, issue_location, issue_date, issue_time, is_paid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFine(row rowScanner) (models.FineRecord, error) {
	var (
		r                                  models.FineRecord
		fineID, code, offenceID, officerID string
		issueDate                          time.Time
	)
	err := row.Scan(&fineID, &code, &r.CivilianDisplayName, &offenceID, &officerID,
		&r.VehicleNumber, &r.IssueLocation, &issueDate, &r.IssueTime, &r.IsPaid)
	if err != nil {
		return models.FineRecord{}, err
	}
	r.FineID = id.FineID(fineID)
	r.CivilianIdentityCode = id.IdentityCode(code)
	r.OffenceID = id.OffenceID(offenceID)
	r.OfficerID = id.OfficerID(officerID)
	r.IssueDate = models.DateOf(issueDate)
	return r, nil
}

// ListFines returns records in insertion order.
func (s *PostgresStore) ListFines(ctx context.Context) ([]models.FineRecord, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT `+fineColumns+` FROM fines ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query fines: %w", err)
	}
	defer rows.Close()

	var out []models.FineRecord
	for rows.Next() {
		r, err := scanFine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fine: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetFine(ctx context.Context, fineID id.FineID) (models.FineRecord, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+fineColumns+` FROM fines WHERE fine_id = $1`, fineID.String())
	r, err := scanFine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FineRecord{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.FineRecord{}, fmt.Errorf("get fine: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) CreateFine(ctx context.Context, r models.FineRecord) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO fines (`+fineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.FineID.String(), r.CivilianIdentityCode.String(), r.CivilianDisplayName, r.OffenceID.String(),
		r.OfficerID.String(), r.VehicleNumber, r.IssueLocation, r.IssueDate.String(), r.IssueTime, r.IsPaid)
	if err != nil {
		return mapWriteErr(err, "insert fine")
	}
	return nil
}

// MarkPaid is a guarded update: only an unpaid fine flips, and the payment is
// recorded alongside.
func (s *PostgresStore) MarkPaid(ctx context.Context, fineID id.FineID) error {
	exec := s.execer(ctx)
	res, err := exec.ExecContext(ctx, `UPDATE fines SET is_paid = TRUE WHERE fine_id = $1 AND is_paid = FALSE`, fineID.String())
	if err != nil {
		return fmt.Errorf("mark fine paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark fine paid: %w", err)
	}
	if n == 0 {
		var paid bool
		err := exec.QueryRowContext(ctx, `SELECT is_paid FROM fines WHERE fine_id = $1`, fineID.String()).Scan(&paid)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check fine: %w", err)
		}
		return sentinel.ErrAlreadyUsed
	}

	if _, err := exec.ExecContext(ctx, `INSERT INTO payments (fine_id, paid_at) VALUES ($1, $2)`, fineID.String(), time.Now().UTC()); err != nil {
		return mapWriteErr(err, "insert payment")
	}
	return nil
}

// PaidFines lists confirmed payments.
func (s *PostgresStore) PaidFines(ctx context.Context) (models.PaymentLedger, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT fine_id FROM payments`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	ledger := make(models.PaymentLedger)
	for rows.Next() {
		var fineID string
		if err := rows.Scan(&fineID); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		ledger[id.FineID(fineID)] = true
	}
	return ledger, rows.Err()
}

func mapWriteErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
