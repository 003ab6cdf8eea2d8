package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// AssessBudget classifies actual category spend against a budget ceiling.
//
// percent_used is actual/budgeted*100, and 0 when the budget is 0 so a
// missing ceiling never divides by zero. Boundary semantics: exceeded only
// when strictly above 100; exactly 100, and exactly the alert threshold,
// are near_limit.
func AssessBudget(b domain.CategoryBudget, periodLabel string, actual decimal.Decimal) domain.BudgetAssessment {
	threshold := b.AlertThresholdPct
	if threshold == 0 {
		threshold = domain.DefaultAlertThresholdPct
	}

	pct := 0.0
	if b.MonthlyLimit.IsPositive() {
		pct, _ = actual.Div(b.MonthlyLimit).Mul(hundred).Float64()
	}

	tier := domain.TierOK
	switch {
	case pct > 100:
		tier = domain.TierExceeded
	case pct >= threshold:
		tier = domain.TierNearLimit
	}

	return domain.BudgetAssessment{
		Category:          b.Category,
		PeriodLabel:       periodLabel,
		BudgetedAmount:    b.MonthlyLimit,
		ActualAmount:      actual,
		PercentUsed:       pct,
		AlertThresholdPct: threshold,
		Tier:              tier,
	}
}

// SortAssessments orders assessments by percent used, descending, so the
// worst offenders surface first. The presentation layer relies on this order.
func SortAssessments(assessments []domain.BudgetAssessment) {
	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].PercentUsed > assessments[j].PercentUsed
	})
}

// CategoryOutflows sums settled outflow spend per category within one
// calendar month. Records with a missing or unparseable settled date are
// counted as excluded; canceled records and inflows are skipped silently.
func CategoryOutflows(records []domain.MonetaryRecord, periodLabel string) (map[string]decimal.Decimal, int) {
	sums := make(map[string]decimal.Decimal)
	excluded := 0

	for _, r := range records {
		if r.Status == domain.StatusCanceled || !r.Settled() || r.Direction != domain.DirectionOut {
			continue
		}
		t, ok := ParseDate(r.SettledDate)
		if !ok {
			excluded++
			continue
		}
		if t.Format(PeriodLayout) != periodLabel {
			continue
		}
		sums[r.Category] = sums[r.Category].Add(r.Amount)
	}
	return sums, excluded
}
