package service

import (
	"context"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var budgetsTracer = otel.Tracer("service/budgets")

// BudgetsService manages category budgets and their monthly variance.
type BudgetsService struct {
	store   port.BudgetStore
	ledger  port.LedgerStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewBudgetsService creates the budgets service.
func NewBudgetsService(store port.BudgetStore, ledger port.LedgerStore, metrics *observability.Metrics, logger *zap.Logger) *BudgetsService {
	return &BudgetsService{
		store:   store,
		ledger:  ledger,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *BudgetsService) List(ctx context.Context) ([]domain.CategoryBudget, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetsService.List")
	defer span.End()

	return s.store.ListBudgets(ctx)
}

func (s *BudgetsService) Create(ctx context.Context, budget *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetsService.Create")
	defer span.End()

	if budget.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if !budget.MonthlyLimit.IsPositive() {
		return nil, &domain.ErrValidation{Field: "monthly_limit", Message: "must be positive"}
	}
	if budget.AlertThresholdPct < 0 || budget.AlertThresholdPct > 100 {
		return nil, &domain.ErrValidation{Field: "alert_threshold_pct", Message: "must be between 0 and 100"}
	}
	if budget.AlertThresholdPct == 0 {
		budget.AlertThresholdPct = domain.DefaultAlertThresholdPct
	}
	budget.IsActive = true

	return s.store.CreateBudget(ctx, budget)
}

func (s *BudgetsService) Update(ctx context.Context, budget *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetsService.Update")
	defer span.End()

	if budget.ID == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}
	if budget.AlertThresholdPct < 0 || budget.AlertThresholdPct > 100 {
		return nil, &domain.ErrValidation{Field: "alert_threshold_pct", Message: "must be between 0 and 100"}
	}

	return s.store.UpdateBudget(ctx, budget)
}

// ============================================================
// Assessments — GET /v1/budgets/assessments
// ============================================================

// Assessments evaluates every active budget against actual settled
// spend for the given month (YYYY-MM; empty means current month).
// Results come back worst-first.
func (s *BudgetsService) Assessments(ctx context.Context, periodLabel string) ([]domain.BudgetAssessment, error) {
	ctx, span := budgetsTracer.Start(ctx, "BudgetsService.Assessments")
	defer span.End()

	if periodLabel == "" {
		periodLabel = s.now().Format(finance.PeriodLayout)
	}
	month, err := time.Parse(finance.PeriodLayout, periodLabel)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "month", Message: "formato deve ser YYYY-MM"}
	}
	span.SetAttributes(attribute.String("period", periodLabel))

	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}

	from := month.Format(finance.DateLayout)
	to := month.AddDate(0, 1, 0).Format(finance.DateLayout)
	records, err := s.ledger.ListRecords(ctx, from, to)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	actuals, excluded := finance.CategoryOutflows(records, periodLabel)
	s.metrics.AddExcludedRecords("budget_assessments", excluded)

	assessments := make([]domain.BudgetAssessment, 0, len(budgets))
	for _, b := range budgets {
		assessments = append(assessments, finance.AssessBudget(b, periodLabel, actuals[b.Category]))
	}
	finance.SortAssessments(assessments)

	return assessments, nil
}
