package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/finance"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportsTracer = otel.Tracer("service/reports")

// ReportsService builds cash-flow, projection and dashboard views over
// the ledger. All monetary math lives in the finance package; this layer
// fetches, classifies and caches.
type ReportsService struct {
	ledger    port.LedgerStore
	contracts port.ContractStore
	budgets   port.BudgetStore
	cache     port.Cache[any]
	metrics   *observability.Metrics
	logger    *zap.Logger

	trailingMonths   int
	projectionMonths int
	now              func() time.Time
}

// NewReportsService creates the reports service with all dependencies injected.
func NewReportsService(
	ledger port.LedgerStore,
	contracts port.ContractStore,
	budgets port.BudgetStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	trailingMonths, projectionMonths int,
) *ReportsService {
	return &ReportsService{
		ledger:           ledger,
		contracts:        contracts,
		budgets:          budgets,
		cache:            cache,
		metrics:          metrics,
		logger:           logger,
		trailingMonths:   trailingMonths,
		projectionMonths: projectionMonths,
		now:              time.Now,
	}
}

// classifyRecord is the canonical record classifier: canceled records
// are invisible, direction decides the flow, anything else is noise.
func classifyRecord(r domain.MonetaryRecord) finance.FlowClass {
	if r.Status == domain.StatusCanceled {
		return finance.FlowIgnore
	}
	switch r.Direction {
	case domain.DirectionIn:
		return finance.FlowInflow
	case domain.DirectionOut:
		return finance.FlowOutflow
	}
	return finance.FlowIgnore
}

// classifySettled additionally hides unsettled records so that realized
// cash flow never mixes with forecasts.
func classifySettled(r domain.MonetaryRecord) finance.FlowClass {
	if !r.Settled() {
		return finance.FlowIgnore
	}
	return classifyRecord(r)
}

// ============================================================
// CashFlow — GET /v1/reports/cashflow
// ============================================================

// CashFlow aggregates settled records over the trailing months window
// ending at the current month.
func (s *ReportsService) CashFlow(ctx context.Context, months int) (*domain.CashFlowReport, error) {
	ctx, span := reportsTracer.Start(ctx, "ReportsService.CashFlow")
	defer span.End()

	if months < 1 {
		months = s.trailingMonths
	}
	if months > 36 {
		return nil, &domain.ErrValidation{Field: "months", Message: "máximo 36"}
	}
	span.SetAttributes(attribute.Int("months", months))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("cashflow", time.Since(start))
	}()

	cacheKey := fmt.Sprintf("cashflow:%d", months)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if report, ok := cached.(*domain.CashFlowReport); ok {
			s.metrics.IncrCacheHit("reports")
			return report, nil
		}
	}
	s.metrics.IncrCacheMiss("reports")

	rng := finance.RangeEnding(s.now(), months)
	from := rng.Start.Format(finance.DateLayout)
	to := rng.Start.AddDate(0, rng.Months, 0).Format(finance.DateLayout)

	records, err := s.ledger.ListRecords(ctx, from, to)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	buckets, excluded := finance.AggregateMonthly(records, rng, finance.BasisSettled, classifySettled)
	s.metrics.AddExcludedRecords("cashflow", excluded)

	report := &domain.CashFlowReport{
		From:            buckets[0].PeriodLabel,
		To:              buckets[len(buckets)-1].PeriodLabel,
		Buckets:         buckets,
		ExcludedRecords: excluded,
	}
	for _, b := range buckets {
		report.TotalInflows = report.TotalInflows.Add(b.Inflows)
		report.TotalOutflows = report.TotalOutflows.Add(b.Outflows)
	}
	report.Net = report.TotalInflows.Sub(report.TotalOutflows)

	s.cache.Set(cacheKey, report)
	return report, nil
}

// ============================================================
// Projection — GET /v1/reports/projection
// ============================================================

// Projection aggregates open records by due date over the upcoming
// months window starting at the current month.
func (s *ReportsService) Projection(ctx context.Context, months int) (*domain.ProjectionReport, error) {
	ctx, span := reportsTracer.Start(ctx, "ReportsService.Projection")
	defer span.End()

	if months < 1 {
		months = s.projectionMonths
	}
	if months > 36 {
		return nil, &domain.ErrValidation{Field: "months", Message: "máximo 36"}
	}
	span.SetAttributes(attribute.Int("months", months))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("projection", time.Since(start))
	}()

	cacheKey := fmt.Sprintf("projection:%d", months)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if report, ok := cached.(*domain.ProjectionReport); ok {
			s.metrics.IncrCacheHit("reports")
			return report, nil
		}
	}
	s.metrics.IncrCacheMiss("reports")

	records, err := s.ledger.ListOpenRecords(ctx)
	if err != nil {
		s.metrics.IncrExternalError("supabase")
		return nil, err
	}

	buckets, excluded := finance.Project(records, months, s.now(), classifyRecord)
	s.metrics.AddExcludedRecords("projection", excluded)

	report := &domain.ProjectionReport{
		From:            buckets[0].PeriodLabel,
		To:              buckets[len(buckets)-1].PeriodLabel,
		Buckets:         buckets,
		ExcludedRecords: excluded,
	}
	for _, b := range buckets {
		report.ProjectedNet = report.ProjectedNet.Add(b.Net)
	}

	s.cache.Set(cacheKey, report)
	return report, nil
}

// ============================================================
// Dashboard — GET /v1/dashboard/summary
// ============================================================

// Dashboard assembles the summary view: trailing cash flow, upcoming
// projection, budget posture and contract counters. Ledger, contract
// and budget fetches run concurrently.
func (s *ReportsService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := reportsTracer.Start(ctx, "ReportsService.Dashboard")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	if cached, ok := s.cache.Get("dashboard"); ok {
		if summary, ok := cached.(*domain.DashboardSummary); ok {
			s.metrics.IncrCacheHit("reports")
			return summary, nil
		}
	}
	s.metrics.IncrCacheMiss("reports")

	now := s.now()
	rng := finance.RangeEnding(now, s.trailingMonths)
	from := rng.Start.Format(finance.DateLayout)
	to := rng.Start.AddDate(0, rng.Months, 0).Format(finance.DateLayout)

	var (
		settled   []domain.MonetaryRecord
		open      []domain.MonetaryRecord
		contracts []domain.Contract
		budgets   []domain.CategoryBudget
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		settled, err = s.ledger.ListRecords(gCtx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.ledger.ListOpenRecords(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		contracts, err = s.contracts.ListContracts(gCtx, "")
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("supabase")
		s.logger.Error("dashboard: fetch failed", zap.Error(err))
		return nil, err
	}

	trailing, excludedSettled := finance.AggregateMonthly(settled, rng, finance.BasisSettled, classifySettled)
	upcoming, excludedOpen := finance.Project(open, s.projectionMonths, now, classifyRecord)

	currentLabel := now.Format(finance.PeriodLayout)
	actuals, excludedBudget := finance.CategoryOutflows(settled, currentLabel)
	assessments := make([]domain.BudgetAssessment, 0, len(budgets))
	for _, b := range budgets {
		assessments = append(assessments, finance.AssessBudget(b, currentLabel, actuals[b.Category]))
	}
	finance.SortAssessments(assessments)

	summary := &domain.DashboardSummary{
		CurrentMonth:    trailing[len(trailing)-1],
		Trailing:        trailing,
		Upcoming:        upcoming,
		Budgets:         assessments,
		ExcludedRecords: excludedSettled + excludedOpen + excludedBudget,
	}

	for _, c := range contracts {
		if c.Status != domain.ContractStatusActive {
			continue
		}
		switch c.Kind {
		case domain.ContractKindRental:
			summary.ActiveRentals++
		case domain.ContractKindSale:
			summary.ActiveSales++
		}
	}

	for _, r := range open {
		if r.Status != domain.StatusOverdue {
			continue
		}
		summary.OverdueCount++
		summary.OverdueTotal = summary.OverdueTotal.Add(r.Amount)
	}

	s.metrics.AddExcludedRecords("dashboard", summary.ExcludedRecords)
	s.cache.Set("dashboard", summary)
	return summary, nil
}

// ============================================================
// Dev Tools — POST /v1/dev/seed-records
// ============================================================

var seedTemplates = []struct {
	Description string
	Category    string
	Direction   string
}{
	{"Aluguel recebido — Ap 302 Ed. Horizonte", "rent", domain.DirectionIn},
	{"Parcela de venda — Lote 14 Res. Aurora", "sale_installment", domain.DirectionIn},
	{"Taxa de administração recebida", "management_fee", domain.DirectionIn},
	{"Condomínio — Ed. Horizonte", "condo_fee", domain.DirectionOut},
	{"IPTU — Lote 14", "property_tax", domain.DirectionOut},
	{"Manutenção hidráulica", "maintenance", domain.DirectionOut},
	{"Material de construção", "construction", domain.DirectionOut},
	{"Honorários contábeis", "professional_services", domain.DirectionOut},
	{"Marketing de lançamento", "marketing", domain.DirectionOut},
}

// DevSeedRecords fills the ledger with plausible random records for
// local testing. Seeded rows carry a description prefix so reset can
// purge them without touching real data.
func (s *ReportsService) DevSeedRecords(ctx context.Context, req *domain.DevSeedRecordsRequest) (*domain.DevSeedRecordsResponse, error) {
	ctx, span := reportsTracer.Start(ctx, "ReportsService.DevSeedRecords")
	defer span.End()

	if req.Count <= 0 || req.Count > 200 {
		return nil, &domain.ErrValidation{Field: "count", Message: "deve ser entre 1 e 200"}
	}
	months := req.Months
	if months <= 0 {
		months = 1
	}
	if months > 12 {
		months = 12
	}

	if req.Reset {
		if err := s.ledger.DeleteSeedRecords(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("DEV: previous seed records purged")
	}

	now := s.now()
	generated := 0

	for i := 0; i < req.Count; i++ {
		tpl := seedTemplates[rand.Intn(len(seedTemplates))]
		amount := decimal.NewFromInt(int64(rand.Intn(490000) + 1000)).Div(decimal.NewFromInt(100))
		daysAgo := rand.Intn(months * 30)
		date := now.AddDate(0, 0, -daysAgo)

		// Roughly one in four records stays open; a third of those overdue
		status := domain.StatusPaid
		if rand.Intn(4) == 0 {
			status = domain.StatusPending
			if rand.Intn(3) == 0 {
				status = domain.StatusOverdue
			}
			date = now.AddDate(0, 0, rand.Intn(60)-20)
		}

		rec := map[string]any{
			"description": fmt.Sprintf("%s %s", domain.SeedDescriptionPrefix, tpl.Description),
			"category":    tpl.Category,
			"direction":   tpl.Direction,
			"amount":      amount,
			"status":      status,
		}
		if status == domain.StatusPaid {
			rec["settled_date"] = date.Format(finance.DateLayout)
		} else {
			rec["due_date"] = date.Format(finance.DateLayout)
		}

		if err := s.ledger.InsertRecord(ctx, rec); err != nil {
			s.logger.Warn("DEV: failed to insert seed record", zap.Int("index", i), zap.Error(err))
			continue
		}
		generated++
	}

	// Seeded data invalidates every cached report
	s.cache.Flush()

	s.logger.Info("DEV: records seeded", zap.Int("generated", generated))

	return &domain.DevSeedRecordsResponse{
		Success:   true,
		Generated: generated,
		Message:   fmt.Sprintf("%d registros gerados com sucesso", generated),
	}, nil
}
