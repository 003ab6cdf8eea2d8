package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
)

func budget(limit int64) domain.CategoryBudget {
	return domain.CategoryBudget{
		Category:     "obra",
		MonthlyLimit: decimal.NewFromInt(limit),
		IsActive:     true,
	}
}

func TestAssessBudget_TierBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		limit   int64
		actual  string
		wantPct float64
		want    string
	}{
		{"well under", 1000, "500", 50, domain.TierOK},
		{"just under threshold", 1000, "799.99", 79.999, domain.TierOK},
		{"exactly at threshold", 1000, "800", 80, domain.TierNearLimit},
		{"between threshold and limit", 1000, "950", 95, domain.TierNearLimit},
		{"exactly at limit", 1000, "1000", 100, domain.TierNearLimit},
		{"just over limit", 10000, "10001", 100.01, domain.TierExceeded},
		{"far over limit", 1000, "2500", 250, domain.TierExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual := decimal.RequireFromString(tc.actual)
			a := finance.AssessBudget(budget(tc.limit), "2024-03", actual)
			if a.Tier != tc.want {
				t.Errorf("expected tier %s, got %s (pct=%v)", tc.want, a.Tier, a.PercentUsed)
			}
			if a.PercentUsed != tc.wantPct {
				t.Errorf("expected percent %v, got %v", tc.wantPct, a.PercentUsed)
			}
		})
	}
}

func TestAssessBudget_ZeroBudget(t *testing.T) {
	a := finance.AssessBudget(budget(0), "2024-03", decimal.NewFromInt(500))
	if a.PercentUsed != 0 {
		t.Errorf("expected percent 0 for zero budget, got %v", a.PercentUsed)
	}
	if a.Tier != domain.TierOK {
		t.Errorf("expected tier ok for zero budget, got %s", a.Tier)
	}
}

func TestAssessBudget_DefaultThreshold(t *testing.T) {
	a := finance.AssessBudget(budget(1000), "2024-03", decimal.NewFromInt(100))
	if a.AlertThresholdPct != domain.DefaultAlertThresholdPct {
		t.Errorf("expected default threshold 80, got %v", a.AlertThresholdPct)
	}
}

func TestAssessBudget_CustomThreshold(t *testing.T) {
	b := budget(1000)
	b.AlertThresholdPct = 50

	a := finance.AssessBudget(b, "2024-03", decimal.NewFromInt(500))
	if a.Tier != domain.TierNearLimit {
		t.Errorf("expected near_limit at custom threshold, got %s", a.Tier)
	}
}

func TestSortAssessments_WorstFirst(t *testing.T) {
	assessments := []domain.BudgetAssessment{
		{Category: "marketing", PercentUsed: 40},
		{Category: "obra", PercentUsed: 120},
		{Category: "condominio", PercentUsed: 85},
	}

	finance.SortAssessments(assessments)

	want := []string{"obra", "condominio", "marketing"}
	for i, a := range assessments {
		if a.Category != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], a.Category)
		}
	}
}
