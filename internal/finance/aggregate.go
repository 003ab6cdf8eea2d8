// Package finance is the pure computation core of the incorporator API:
// installment schedule generation, calendar-month cash-flow aggregation,
// forward projection and budget variance.
//
// Every function here is a synchronous, deterministic transformation over
// in-memory snapshots. No I/O, no shared state, and inputs are never mutated.
package finance

import (
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// DateLayout is the calendar-date format used across records and contracts.
const DateLayout = "2006-01-02"

// PeriodLayout is the year-month label format of aggregation buckets.
const PeriodLayout = "2006-01"

// FlowClass is the classification of one record for aggregation purposes.
type FlowClass int

const (
	FlowIgnore FlowClass = iota
	FlowInflow
	FlowOutflow
)

// Classifier maps a record to inflow, outflow, or ignore.
type Classifier func(r domain.MonetaryRecord) FlowClass

// DateBasis selects which date buckets a record: the settlement date for
// realized cash flow, the due date for projections.
type DateBasis int

const (
	BasisSettled DateBasis = iota
	BasisDue
)

// MonthRange is a contiguous inclusive range of calendar months.
// Start is normalized to the first day of its month in UTC.
type MonthRange struct {
	Start  time.Time
	Months int
}

// RangeFrom builds a range of n months starting at t's month.
func RangeFrom(t time.Time, n int) MonthRange {
	return MonthRange{
		Start:  time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC),
		Months: n,
	}
}

// RangeEnding builds a range of n months whose last month is t's month.
func RangeEnding(t time.Time, n int) MonthRange {
	return RangeFrom(t.AddDate(0, -(n-1), 0), n)
}

// ParseDate parses an ISO-8601 date, accepting a bare date or a full
// RFC 3339 timestamp. The second return is false when the value is empty
// or unparseable.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// AggregateMonthly buckets records into the given month range and sums them
// by classification. The result is dense and chronological: exactly
// rng.Months buckets, zero-valued where nothing matched.
//
// A record whose basis date is missing or unparseable is excluded from every
// bucket and counted in the second return value; one bad record degrades the
// report locally, never fails it. The input slice is treated as read-only.
func AggregateMonthly(records []domain.MonetaryRecord, rng MonthRange, basis DateBasis, classify Classifier) ([]domain.MonthlyBucket, int) {
	if rng.Months < 1 {
		return nil, 0
	}

	buckets := make([]domain.MonthlyBucket, rng.Months)
	index := make(map[string]int, rng.Months)
	for i := range buckets {
		label := rng.Start.AddDate(0, i, 0).Format(PeriodLayout)
		buckets[i].PeriodLabel = label
		index[label] = i
	}

	excluded := 0
	for _, r := range records {
		class := classify(r)
		if class == FlowIgnore {
			continue
		}

		raw := r.SettledDate
		if basis == BasisDue {
			raw = r.DueDate
		}
		t, ok := ParseDate(raw)
		if !ok {
			excluded++
			continue
		}

		i, ok := index[t.Format(PeriodLayout)]
		if !ok {
			continue // outside the requested range
		}
		switch class {
		case FlowInflow:
			buckets[i].Inflows = buckets[i].Inflows.Add(r.Amount)
		case FlowOutflow:
			buckets[i].Outflows = buckets[i].Outflows.Add(r.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Net = buckets[i].Inflows.Sub(buckets[i].Outflows)
	}
	return buckets, excluded
}
