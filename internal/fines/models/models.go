// Package models holds the fines domain types shared by the matcher, resolver,
// validator, joiner and statistics packages.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "finetrack/pkg/domain"
)

// Category classifies an offence. Unknown marks a view whose offence reference
// could not be resolved, or a catalog entry with an unrecognised label.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryCourt    Category = "court"
	CategoryUnknown  Category = "unknown"
)

// ParseCategory maps an upstream label onto a Category. Matching ignores case
// and surrounding space; anything else is unknown.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryStandard:
		return CategoryStandard
	case CategoryCourt:
		return CategoryCourt
	default:
		return CategoryUnknown
	}
}

// Civilian is a roster entry. IdentityCode is the natural key; uniqueness is
// enforced by the store.
type Civilian struct {
	IdentityCode id.IdentityCode `json:"identityCode"`
	DisplayName  string          `json:"displayName"`
	ContactInfo  string          `json:"contactInfo,omitempty"`
	Address      string          `json:"address,omitempty"`
}

// OffenceEntry is one catalog row. OffenceID never changes once a fine refers
// to it.
type OffenceEntry struct {
	OffenceID   id.OffenceID    `json:"offenceId"`
	OffenceName string          `json:"offenceName"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	Category    Category        `json:"category"`
}

// FineRecord is a persisted issuance. It stores the offence reference only,
// never the offence name or amount. IsPaid moves false to true once.
type FineRecord struct {
	FineID               id.FineID       `json:"fineId"`
	CivilianIdentityCode id.IdentityCode `json:"civilianIdentityCode"`
	CivilianDisplayName  string          `json:"civilianDisplayName"`
	OffenceID            id.OffenceID    `json:"offenceId"`
	OfficerID            id.OfficerID    `json:"officerId"`
	VehicleNumber        string          `json:"vehicleNumber,omitempty"`
	IssueLocation        string          `json:"issueLocation"`
	IssueDate            Date            `json:"issueDate"`
	IssueTime            string          `json:"issueTime"`
	IsPaid               bool            `json:"isPaid"`
}

// EnrichedFineView is a FineRecord joined with its resolved offence. It is
// never persisted.
type EnrichedFineView struct {
	FineRecord
	OffenceName string          `json:"offenceName"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	// Resolved is false when the offence reference was missing from the catalog.
	Resolved bool `json:"resolved"`
}

// AggregateStatistics is computed on demand over a view set. ByCategory only
// carries categories that occur in the set.
type AggregateStatistics struct {
	Total       int              `json:"total"`
	IssuedToday int              `json:"issuedToday"`
	Unpaid      int              `json:"unpaid"`
	UnpaidToday int              `json:"unpaidToday"`
	ByCategory  map[Category]int `json:"byCategory"`
}

// CourtIssued is the number of views whose offence is a court case.
func (s AggregateStatistics) CourtIssued() int {
	return s.ByCategory[CategoryCourt]
}

// PaymentLedger is the set of fines an external processor has confirmed paid.
type PaymentLedger map[id.FineID]bool

// Paid reports whether the ledger confirms payment of fineID.
func (l PaymentLedger) Paid(fineID id.FineID) bool {
	return l[fineID]
}

// PaymentConfirmation is a processor-confirmed payment event. EventID is the
// processor's idempotency key.
type PaymentConfirmation struct {
	EventID      string          `json:"eventId"`
	FineID       id.FineID       `json:"fineId"`
	IdentityCode id.IdentityCode `json:"identityCode"`
	Amount       decimal.Decimal `json:"amount"`
	Reference    string          `json:"reference,omitempty"`
	ConfirmedAt  time.Time       `json:"confirmedAt"`
}
