package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
)

func openRecord(amount int64, direction, status, due string) domain.MonetaryRecord {
	return domain.MonetaryRecord{
		Amount:    decimal.NewFromInt(amount),
		Direction: direction,
		Status:    status,
		DueDate:   due,
	}
}

func TestProject_BucketCountAndStart(t *testing.T) {
	now := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)

	buckets, _ := finance.Project(nil, 3, now, classifyByDirection)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	wantLabels := []string{"2024-05", "2024-06", "2024-07"}
	for i, b := range buckets {
		if b.PeriodLabel != wantLabels[i] {
			t.Errorf("bucket %d: expected %s, got %s", i, wantLabels[i], b.PeriodLabel)
		}
	}
}

func TestProject_OnlyUnsettledRecords(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.MonetaryRecord{
		openRecord(1000, domain.DirectionIn, domain.StatusPending, "2024-05-10"),
		openRecord(400, domain.DirectionOut, domain.StatusOverdue, "2024-05-20"),
		// Paid and canceled must not appear in a projection.
		{Amount: decimal.NewFromInt(9999), Direction: domain.DirectionIn, Status: domain.StatusPaid, DueDate: "2024-05-15", SettledDate: "2024-05-15"},
		{Amount: decimal.NewFromInt(9999), Direction: domain.DirectionIn, Status: domain.StatusCanceled, DueDate: "2024-05-15"},
	}

	buckets, excluded := finance.Project(records, 2, now, classifyByDirection)
	if excluded != 0 {
		t.Errorf("expected 0 excluded, got %d", excluded)
	}
	if !buckets[0].Inflows.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected inflows 1000, got %s", buckets[0].Inflows)
	}
	if !buckets[0].Outflows.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected outflows 400, got %s", buckets[0].Outflows)
	}
	if !buckets[0].Net.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected net 600, got %s", buckets[0].Net)
	}
	if !buckets[1].Net.IsZero() {
		t.Errorf("expected empty second bucket, got net %s", buckets[1].Net)
	}
}

func TestProject_OverdueAnnotations(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.MonetaryRecord{
		openRecord(100, domain.DirectionIn, domain.StatusOverdue, "2024-05-05"),
		openRecord(200, domain.DirectionIn, domain.StatusOverdue, "2024-05-06"),
		openRecord(300, domain.DirectionOut, domain.StatusOverdue, "2024-05-07"),
		openRecord(400, domain.DirectionIn, domain.StatusPending, "2024-05-08"),
	}

	buckets, _ := finance.Project(records, 1, now, classifyByDirection)
	b := buckets[0]
	if b.OverdueInflowCount != 2 {
		t.Errorf("expected 2 overdue inflows, got %d", b.OverdueInflowCount)
	}
	if b.OverdueOutflowCount != 1 {
		t.Errorf("expected 1 overdue outflow, got %d", b.OverdueOutflowCount)
	}
	// Annotation only: the sums still include every open record.
	if !b.Inflows.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected inflows 700, got %s", b.Inflows)
	}
}

func TestProject_UnparseableDueDateExcluded(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.MonetaryRecord{
		openRecord(100, domain.DirectionIn, domain.StatusPending, "soon"),
	}

	buckets, excluded := finance.Project(records, 1, now, classifyByDirection)
	if excluded != 1 {
		t.Errorf("expected 1 excluded, got %d", excluded)
	}
	if !buckets[0].Inflows.IsZero() {
		t.Errorf("excluded record leaked into projection: %s", buckets[0].Inflows)
	}
}

func TestProject_NonPositiveMonths(t *testing.T) {
	buckets, excluded := finance.Project(nil, 0, time.Now(), classifyByDirection)
	if buckets != nil || excluded != 0 {
		t.Errorf("expected empty result for 0 months, got %d buckets", len(buckets))
	}
}
