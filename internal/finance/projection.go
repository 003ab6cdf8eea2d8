package finance

import (
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// Project estimates future cash flow from not-yet-settled records only.
// It buckets pending and overdue records by due date into exactly n months,
// the current month included as the first bucket. Each bucket is annotated
// with counts of overdue records falling in its window; the counts flag risk
// and do not feed the sums.
func Project(records []domain.MonetaryRecord, n int, now time.Time, classify Classifier) ([]domain.ProjectedBucket, int) {
	if n < 1 {
		return nil, 0
	}

	open := make([]domain.MonetaryRecord, 0, len(records))
	for _, r := range records {
		if r.Open() {
			open = append(open, r)
		}
	}

	rng := RangeFrom(now, n)
	buckets, excluded := AggregateMonthly(open, rng, BasisDue, classify)

	projected := make([]domain.ProjectedBucket, len(buckets))
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		projected[i] = domain.ProjectedBucket{MonthlyBucket: b}
		index[b.PeriodLabel] = i
	}

	for _, r := range open {
		if r.Status != domain.StatusOverdue {
			continue
		}
		t, ok := ParseDate(r.DueDate)
		if !ok {
			continue // already counted as excluded above
		}
		i, ok := index[t.Format(PeriodLayout)]
		if !ok {
			continue
		}
		switch classify(r) {
		case FlowInflow:
			projected[i].OverdueInflowCount++
		case FlowOutflow:
			projected[i].OverdueOutflowCount++
		}
	}

	return projected, excluded
}
