package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/infra/cache"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/service"
)

func newContractsService(store *mockContractStore, ledger *mockLedgerStore) *service.ContractsService {
	return service.NewContractsService(
		store,
		ledger,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func draftContract() *domain.Contract {
	return &domain.Contract{
		ID:               "ct-1",
		Kind:             domain.ContractKindRental,
		Status:           domain.ContractStatusDraft,
		CounterpartyName: "Locatária Ltda",
		StartDate:        "2024-01-15",
		InstallmentCount: 3,
		DueDay:           10,
		Components: domain.ComponentAmounts{
			BaseAmount: decimal.NewFromInt(1000),
			CondoFee:   decimal.NewFromInt(200),
		},
	}
}

func TestCreateContract_Valid(t *testing.T) {
	store := &mockContractStore{}
	svc := newContractsService(store, &mockLedgerStore{})

	created, err := svc.Create(context.Background(), draftContract())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Status != domain.ContractStatusDraft {
		t.Errorf("expected draft status, got %s", created.Status)
	}
	if created.ScheduleGenerated {
		t.Error("new contract must not have schedule_generated set")
	}
}

func TestCreateContract_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Contract)
	}{
		{"bad kind", func(c *domain.Contract) { c.Kind = "loan" }},
		{"bad start date", func(c *domain.Contract) { c.StartDate = "15/01/2024" }},
		{"zero installments", func(c *domain.Contract) { c.InstallmentCount = 0 }},
		{"due day too high", func(c *domain.Contract) { c.DueDay = 32 }},
		{"zero components", func(c *domain.Contract) { c.Components = domain.ComponentAmounts{} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newContractsService(&mockContractStore{}, &mockLedgerStore{})
			c := draftContract()
			tc.mutate(c)

			_, err := svc.Create(context.Background(), c)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestActivate_GeneratesScheduleOnce(t *testing.T) {
	store := &mockContractStore{contract: draftContract()}
	ledger := &mockLedgerStore{}
	svc := newContractsService(store, ledger)

	installments, err := svc.Activate(context.Background(), "ct-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(installments) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(installments))
	}
	if len(store.insertedInstallments) != 3 {
		t.Errorf("expected 3 installments persisted, got %d", len(store.insertedInstallments))
	}
	if !store.scheduleMarked {
		t.Error("expected schedule_generated to be marked")
	}
	if len(ledger.inserted) != 3 {
		t.Errorf("expected 3 ledger records mirrored, got %d", len(ledger.inserted))
	}
	for _, rec := range ledger.inserted {
		if rec["status"] != domain.StatusPending {
			t.Errorf("mirrored record should be pending, got %v", rec["status"])
		}
		if rec["direction"] != domain.DirectionIn {
			t.Errorf("rental installments are inflows, got %v", rec["direction"])
		}
	}
}

func TestActivate_AlreadyGenerated(t *testing.T) {
	contract := draftContract()
	contract.ScheduleGenerated = true
	store := &mockContractStore{contract: contract}
	svc := newContractsService(store, &mockLedgerStore{})

	_, err := svc.Activate(context.Background(), "ct-1")
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if store.insertedInstallments != nil {
		t.Error("no installments may be written on conflict")
	}
	if store.scheduleMarked {
		t.Error("flag must not be re-marked on conflict")
	}
}

func TestActivate_ContractNotFound(t *testing.T) {
	svc := newContractsService(&mockContractStore{}, &mockLedgerStore{})

	_, err := svc.Activate(context.Background(), "nope")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActivate_InvalidContractSurfaces(t *testing.T) {
	contract := draftContract()
	contract.InstallmentCount = 0
	store := &mockContractStore{contract: contract}
	svc := newContractsService(store, &mockLedgerStore{})

	_, err := svc.Activate(context.Background(), "ct-1")
	var invalid *domain.ErrInvalidContract
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidContract, got %v", err)
	}
	if store.scheduleMarked {
		t.Error("flag must not be marked when generation fails")
	}
}

func TestInstallments_UnknownContract(t *testing.T) {
	svc := newContractsService(&mockContractStore{}, &mockLedgerStore{})

	_, err := svc.Installments(context.Background(), "nope")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
