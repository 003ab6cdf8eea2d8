package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
	"github.com/lucasmtl/incorpora-api/internal/infra/cache"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/service"
)

func newReportsService(ledger *mockLedgerStore, contracts *mockContractStore, budgets *mockBudgetStore) *service.ReportsService {
	return service.NewReportsService(
		ledger,
		contracts,
		budgets,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		6, 3,
	)
}

func settledIn(amount int64, daysAgo int) domain.MonetaryRecord {
	return domain.MonetaryRecord{
		Direction:   domain.DirectionIn,
		Amount:      decimal.NewFromInt(amount),
		Status:      domain.StatusPaid,
		SettledDate: time.Now().AddDate(0, 0, -daysAgo).Format(finance.DateLayout),
		Category:    "rent",
	}
}

func settledOut(amount int64, daysAgo int, category string) domain.MonetaryRecord {
	return domain.MonetaryRecord{
		Direction:   domain.DirectionOut,
		Amount:      decimal.NewFromInt(amount),
		Status:      domain.StatusPaid,
		SettledDate: time.Now().AddDate(0, 0, -daysAgo).Format(finance.DateLayout),
		Category:    category,
	}
}

func TestCashFlow_TotalsAndDenseBuckets(t *testing.T) {
	ledger := &mockLedgerStore{records: []domain.MonetaryRecord{
		settledIn(500, 0),
		settledOut(300, 0, "maintenance"),
	}}
	svc := newReportsService(ledger, &mockContractStore{}, &mockBudgetStore{})

	report, err := svc.CashFlow(context.Background(), 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Buckets) != 6 {
		t.Fatalf("expected 6 dense buckets, got %d", len(report.Buckets))
	}
	if !report.TotalInflows.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected inflows 500, got %s", report.TotalInflows)
	}
	if !report.Net.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected net 200, got %s", report.Net)
	}
	if report.To != time.Now().Format(finance.PeriodLayout) {
		t.Errorf("window should end at current month, got %s", report.To)
	}
}

func TestCashFlow_ExcludesRecordsWithoutDates(t *testing.T) {
	ledger := &mockLedgerStore{records: []domain.MonetaryRecord{
		settledIn(500, 0),
		{Direction: domain.DirectionIn, Amount: decimal.NewFromInt(100), Status: domain.StatusPaid},
	}}
	svc := newReportsService(ledger, &mockContractStore{}, &mockBudgetStore{})

	report, err := svc.CashFlow(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.ExcludedRecords != 1 {
		t.Errorf("expected 1 excluded record, got %d", report.ExcludedRecords)
	}
	if !report.TotalInflows.Equal(decimal.NewFromInt(500)) {
		t.Errorf("excluded record must not contribute, got %s", report.TotalInflows)
	}
}

func TestCashFlow_CachesResult(t *testing.T) {
	ledger := &mockLedgerStore{records: []domain.MonetaryRecord{settledIn(500, 0)}}
	svc := newReportsService(ledger, &mockContractStore{}, &mockBudgetStore{})

	first, err := svc.CashFlow(context.Background(), 6)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Store starts failing; the cached report must still come back.
	ledger.err = errors.New("connection refused")
	second, err := svc.CashFlow(context.Background(), 6)
	if err != nil {
		t.Fatalf("expected cached result, got %v", err)
	}
	if !first.TotalInflows.Equal(second.TotalInflows) {
		t.Error("cached report differs from original")
	}
}

func TestCashFlow_MonthsOutOfRange(t *testing.T) {
	svc := newReportsService(&mockLedgerStore{}, &mockContractStore{}, &mockBudgetStore{})

	_, err := svc.CashFlow(context.Background(), 37)
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProjection_OverdueAnnotations(t *testing.T) {
	today := time.Now().Format(finance.DateLayout)
	ledger := &mockLedgerStore{open: []domain.MonetaryRecord{
		{Direction: domain.DirectionIn, Amount: decimal.NewFromInt(1000), Status: domain.StatusPending, DueDate: today},
		{Direction: domain.DirectionIn, Amount: decimal.NewFromInt(800), Status: domain.StatusOverdue, DueDate: today},
		{Direction: domain.DirectionOut, Amount: decimal.NewFromInt(200), Status: domain.StatusOverdue, DueDate: today},
	}}
	svc := newReportsService(ledger, &mockContractStore{}, &mockBudgetStore{})

	report, err := svc.Projection(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(report.Buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(report.Buckets))
	}

	current := report.Buckets[0]
	if current.OverdueInflowCount != 1 || current.OverdueOutflowCount != 1 {
		t.Errorf("expected 1 overdue each way, got in=%d out=%d",
			current.OverdueInflowCount, current.OverdueOutflowCount)
	}
	if !report.ProjectedNet.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("expected projected net 1600, got %s", report.ProjectedNet)
	}
}

func TestDashboard_Summary(t *testing.T) {
	today := time.Now().Format(finance.DateLayout)
	ledger := &mockLedgerStore{
		records: []domain.MonetaryRecord{
			settledIn(5000, 0),
			settledOut(1200, 0, "maintenance"),
		},
		open: []domain.MonetaryRecord{
			{Direction: domain.DirectionIn, Amount: decimal.NewFromInt(900), Status: domain.StatusOverdue, DueDate: today},
			{Direction: domain.DirectionIn, Amount: decimal.NewFromInt(300), Status: domain.StatusPending, DueDate: today},
		},
	}
	contracts := &mockContractStore{contracts: []domain.Contract{
		{Kind: domain.ContractKindRental, Status: domain.ContractStatusActive},
		{Kind: domain.ContractKindRental, Status: domain.ContractStatusDraft},
		{Kind: domain.ContractKindSale, Status: domain.ContractStatusActive},
	}}
	budgets := &mockBudgetStore{budgets: []domain.CategoryBudget{
		{Category: "maintenance", MonthlyLimit: decimal.NewFromInt(1000), AlertThresholdPct: 80},
	}}
	svc := newReportsService(ledger, contracts, budgets)

	summary, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if summary.ActiveRentals != 1 || summary.ActiveSales != 1 {
		t.Errorf("expected 1 active rental and 1 active sale, got %d/%d",
			summary.ActiveRentals, summary.ActiveSales)
	}
	if summary.OverdueCount != 1 {
		t.Errorf("expected 1 overdue record, got %d", summary.OverdueCount)
	}
	if !summary.OverdueTotal.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected overdue total 900, got %s", summary.OverdueTotal)
	}
	if !summary.CurrentMonth.Net.Equal(decimal.NewFromInt(3800)) {
		t.Errorf("expected current month net 3800, got %s", summary.CurrentMonth.Net)
	}

	// Maintenance spend of 1200 against a 1000 ceiling is exceeded
	if len(summary.Budgets) != 1 {
		t.Fatalf("expected 1 budget assessment, got %d", len(summary.Budgets))
	}
	if summary.Budgets[0].Tier != domain.TierExceeded {
		t.Errorf("expected exceeded tier, got %s", summary.Budgets[0].Tier)
	}
}

func TestDashboard_StoreError(t *testing.T) {
	ledger := &mockLedgerStore{err: errors.New("connection refused")}
	svc := newReportsService(ledger, &mockContractStore{}, &mockBudgetStore{})

	_, err := svc.Dashboard(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDevSeedRecords(t *testing.T) {
	ledger := &mockLedgerStore{}
	svc := newReportsService(ledger, &mockContractStore{}, &mockBudgetStore{})

	resp, err := svc.DevSeedRecords(context.Background(), &domain.DevSeedRecordsRequest{Count: 10, Reset: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Generated != 10 {
		t.Errorf("expected 10 generated, got %d", resp.Generated)
	}
	if !ledger.purged {
		t.Error("expected reset to purge previous seed records")
	}
	if len(ledger.inserted) != 10 {
		t.Errorf("expected 10 inserts, got %d", len(ledger.inserted))
	}
}

func TestDevSeedRecords_CountValidation(t *testing.T) {
	svc := newReportsService(&mockLedgerStore{}, &mockContractStore{}, &mockBudgetStore{})

	_, err := svc.DevSeedRecords(context.Background(), &domain.DevSeedRecordsRequest{Count: 0})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
