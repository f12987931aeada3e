// Package stats computes dashboard aggregates over enriched fine views.
package stats

import (
	"github.com/shopspring/decimal"

	"finetrack/internal/fines/models"
)

// Compute counts views as of the given calendar day. "Today" is calendar-day
// equality, so every issue time on asOf counts. ByCategory holds only the
// categories that occur, including unknown.
func Compute(views []models.EnrichedFineView, asOf models.Date) models.AggregateStatistics {
	s := models.AggregateStatistics{
		Total:      len(views),
		ByCategory: make(map[models.Category]int),
	}
	for _, v := range views {
		today := v.IssueDate == asOf
		if today {
			s.IssuedToday++
		}
		if !v.IsPaid {
			s.Unpaid++
			if today {
				s.UnpaidToday++
			}
		}
		category := v.Category
		if category == "" {
			category = models.CategoryUnknown
		}
		s.ByCategory[category]++
	}
	return s
}

// Outstanding sums the amounts of unpaid views.
func Outstanding(views []models.EnrichedFineView) decimal.Decimal {
	total := decimal.Zero
	for _, v := range views {
		if !v.IsPaid {
			total = total.Add(v.Amount)
		}
	}
	return total
}
