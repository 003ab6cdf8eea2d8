package service

import (
	"context"
	"fmt"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var contractsTracer = otel.Tracer("service/contracts")

// ContractsService manages contracts and their installment schedules.
type ContractsService struct {
	store   port.ContractStore
	ledger  port.LedgerStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewContractsService creates the contracts service.
func NewContractsService(store port.ContractStore, ledger port.LedgerStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *ContractsService {
	return &ContractsService{
		store:   store,
		ledger:  ledger,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// ============================================================
// Create — POST /v1/contracts
// ============================================================

func (s *ContractsService) Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
	ctx, span := contractsTracer.Start(ctx, "ContractsService.Create")
	defer span.End()

	if c.Kind != domain.ContractKindRental && c.Kind != domain.ContractKindSale {
		return nil, &domain.ErrValidation{Field: "kind", Message: "deve ser 'rental' ou 'sale'"}
	}
	if _, ok := finance.ParseDate(c.StartDate); !ok {
		return nil, &domain.ErrValidation{Field: "start_date", Message: "formato deve ser YYYY-MM-DD"}
	}
	if c.InstallmentCount < 1 {
		return nil, &domain.ErrValidation{Field: "installment_count", Message: "deve ser positivo"}
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return nil, &domain.ErrValidation{Field: "due_day", Message: "deve ser entre 1 e 31"}
	}
	if !c.Components.Total().IsPositive() {
		return nil, &domain.ErrValidation{Field: "components", Message: "soma dos componentes deve ser positiva"}
	}

	c.Status = domain.ContractStatusDraft
	c.ScheduleGenerated = false

	created, err := s.store.CreateContract(ctx, c)
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("contract_id", created.ID),
		zap.String("kind", created.Kind),
		zap.Int("installments", created.InstallmentCount),
	)
	return created, nil
}

// ============================================================
// Get / List
// ============================================================

func (s *ContractsService) Get(ctx context.Context, contractID string) (*domain.Contract, error) {
	ctx, span := contractsTracer.Start(ctx, "ContractsService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("contract.id", contractID))

	return s.store.GetContract(ctx, contractID)
}

func (s *ContractsService) List(ctx context.Context, kind string) ([]domain.Contract, error) {
	ctx, span := contractsTracer.Start(ctx, "ContractsService.List")
	defer span.End()

	if kind != "" && kind != domain.ContractKindRental && kind != domain.ContractKindSale {
		return nil, &domain.ErrValidation{Field: "kind", Message: "deve ser 'rental' ou 'sale'"}
	}
	return s.store.ListContracts(ctx, kind)
}

// ============================================================
// Activate — POST /v1/contracts/{id}/activate
// ============================================================

// Activate generates the contract's installment schedule, persists it
// and flips the one-shot flag. A second activation attempt is a
// conflict, never a duplicate schedule.
func (s *ContractsService) Activate(ctx context.Context, contractID string) ([]domain.Installment, error) {
	ctx, span := contractsTracer.Start(ctx, "ContractsService.Activate")
	defer span.End()
	span.SetAttributes(attribute.String("contract.id", contractID))

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ScheduleGenerated {
		return nil, &domain.ErrConflict{Message: "schedule already generated for this contract"}
	}

	installments, err := finance.GenerateSchedule(contract)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertInstallments(ctx, installments); err != nil {
		return nil, fmt.Errorf("insert installments: %w", err)
	}

	// Mirror each installment into the ledger as a pending inflow so
	// projections and the dashboard pick the schedule up immediately.
	category := "rent"
	if contract.Kind == domain.ContractKindSale {
		category = "sale_installment"
	}
	for _, inst := range installments {
		rec := map[string]any{
			"description": fmt.Sprintf("Parcela %d/%d — %s", inst.SequenceNumber, len(installments), contract.CounterpartyName),
			"category":    category,
			"direction":   domain.DirectionIn,
			"amount":      inst.TotalAmount,
			"status":      domain.StatusPending,
			"due_date":    inst.DueDate,
			"contract_id": contractID,
			"property_id": contract.PropertyID,
		}
		if recErr := s.ledger.InsertRecord(ctx, rec); recErr != nil {
			// Schedule is already persisted; a missing mirror row only
			// delays projections until the next sync.
			s.logger.Error("failed to mirror installment into ledger",
				zap.String("contract_id", contractID),
				zap.Int("sequence", inst.SequenceNumber),
				zap.Error(recErr),
			)
		}
	}

	if err := s.store.MarkScheduleGenerated(ctx, contractID); err != nil {
		return nil, fmt.Errorf("mark schedule generated: %w", err)
	}

	// New pending records change every cached report
	s.cache.Flush()

	s.metrics.IncrScheduleGenerated()
	s.logger.Info("schedule generated",
		zap.String("contract_id", contractID),
		zap.Int("installments", len(installments)),
	)

	return installments, nil
}

// ============================================================
// Installments — GET /v1/contracts/{id}/installments
// ============================================================

func (s *ContractsService) Installments(ctx context.Context, contractID string) ([]domain.Installment, error) {
	ctx, span := contractsTracer.Start(ctx, "ContractsService.Installments")
	defer span.End()
	span.SetAttributes(attribute.String("contract.id", contractID))

	// 404 on unknown contract rather than an empty list
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.ListInstallments(ctx, contractID)
}
