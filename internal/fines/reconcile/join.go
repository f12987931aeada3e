// Package reconcile joins fine records to the offence catalog and payment
// ledger and scopes the resulting views.
//
// Every record yields exactly one view in input order. A dangling offence
// reference produces a degraded view (amount 0, category unknown) rather than
// dropping the record.
package reconcile

import (
	"finetrack/internal/fines/catalog"
	"finetrack/internal/fines/models"
	id "finetrack/pkg/domain"
)

// Join enriches records with their catalog entries.
func Join(records []models.FineRecord, entries []models.OffenceEntry) []models.EnrichedFineView {
	return JoinWithPayments(records, entries, nil)
}

// JoinWithPayments is Join with payment confirmations applied: a view is paid
// when its record or the ledger says so. The ledger can only add payments.
func JoinWithPayments(records []models.FineRecord, entries []models.OffenceEntry, ledger models.PaymentLedger) []models.EnrichedFineView {
	cat := catalog.New(entries)
	views := make([]models.EnrichedFineView, 0, len(records))
	for _, rec := range records {
		entry, resolved := cat.Lookup(rec.OffenceID)
		view := models.EnrichedFineView{
			FineRecord:  rec,
			OffenceName: entry.OffenceName,
			Amount:      entry.BaseAmount,
			Category:    entry.Category,
			Resolved:    resolved,
		}
		view.IsPaid = rec.IsPaid || ledger.Paid(rec.FineID)
		views = append(views, view)
	}
	return views
}

// ScopeByOfficer returns the views issued by officerID, in their original order.
func ScopeByOfficer(views []models.EnrichedFineView, officerID id.OfficerID) []models.EnrichedFineView {
	return filter(views, func(v models.EnrichedFineView) bool {
		return v.OfficerID == officerID
	})
}

// ScopeByCivilian returns the views issued against code, in their original
// order. The identity-code suffix is compared without regard to case.
func ScopeByCivilian(views []models.EnrichedFineView, code id.IdentityCode) []models.EnrichedFineView {
	return filter(views, func(v models.EnrichedFineView) bool {
		return v.CivilianIdentityCode.Equal(code)
	})
}

// Unresolved returns the degraded views.
func Unresolved(views []models.EnrichedFineView) []models.EnrichedFineView {
	return filter(views, func(v models.EnrichedFineView) bool {
		return !v.Resolved
	})
}

func filter(views []models.EnrichedFineView, keep func(models.EnrichedFineView) bool) []models.EnrichedFineView {
	out := make([]models.EnrichedFineView, 0, len(views))
	for _, v := range views {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
