package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var narrativeTracer = otel.Tracer("service/narrative")

// NarrativeService turns the computed reports into AI commentary by
// handing them to the external reporting agent.
type NarrativeService struct {
	reports *ReportsService
	budgets *BudgetsService
	agent   port.NarrativeAgent
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewNarrativeService creates the narrative service.
func NewNarrativeService(
	reports *ReportsService,
	budgets *BudgetsService,
	agent port.NarrativeAgent,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *NarrativeService {
	return &NarrativeService{
		reports: reports,
		budgets: budgets,
		agent:   agent,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Generate builds the current reports, sends them with the operator's
// question to the agent and returns the narrative. Responses are cached
// per question and window so repeated dashboard loads don't burn tokens.
func (s *NarrativeService) Generate(ctx context.Context, req *domain.NarrativeRequest) (*domain.NarrativeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := narrativeTracer.Start(ctx, "NarrativeService.Generate")
	defer span.End()

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, &domain.ErrValidation{Field: "question", Message: "required"}
	}
	if len(question) > 2000 {
		return nil, &domain.ErrValidation{Field: "question", Message: "máximo 2000 caracteres"}
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("narrative", time.Since(start))
	}()

	cacheKey := narrativeCacheKey(question, req.Months)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if resp, ok := cached.(*domain.NarrativeResponse); ok {
			s.metrics.IncrCacheHit("narrative")
			return resp, nil
		}
	}
	s.metrics.IncrCacheMiss("narrative")

	// --- Step 1: Build report context concurrently ---
	var (
		cashFlow    *domain.CashFlowReport
		projection  *domain.ProjectionReport
		assessments []domain.BudgetAssessment
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		cashFlow, err = s.reports.CashFlow(gCtx, req.Months)
		return err
	})
	g.Go(func() error {
		var err error
		projection, err = s.reports.Projection(gCtx, 0)
		return err
	})
	g.Go(func() error {
		var err error
		assessments, err = s.budgets.Assessments(gCtx, "")
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrNarrativeRequest("error")
		s.logger.Error("narrative: failed to build report context", zap.Error(err))
		return nil, err
	}

	// --- Step 2: Call the agent ---
	agentResp, err := s.agent.Call(ctx, &domain.AgentRequest{
		Question:   question,
		CashFlow:   cashFlow,
		Projection: projection,
		Budgets:    assessments,
	})
	if err != nil {
		s.metrics.IncrNarrativeRequest("error")
		s.metrics.IncrExternalError("agent")
		s.logger.Error("narrative: agent call failed", zap.Error(err))
		return nil, err
	}

	s.metrics.IncrNarrativeRequest("success")
	s.metrics.RecordTokens(agentResp.TokensUsed.PromptTokens, agentResp.TokensUsed.CompletionTokens)

	resp := &domain.NarrativeResponse{
		Narrative:   agentResp.Narrative,
		Highlights:  agentResp.Highlights,
		GeneratedAt: time.Now().UTC(),
	}
	s.cache.Set(cacheKey, resp)
	return resp, nil
}

// Metrics returns the cumulative narrative-agent usage snapshot.
func (s *NarrativeService) Metrics() *domain.NarrativeMetrics {
	return s.metrics.GetNarrativeSnapshot()
}

func narrativeCacheKey(question string, months int) string {
	h := sha256.Sum256([]byte(question))
	return fmt.Sprintf("narrative:%d:%s", months, hex.EncodeToString(h[:8]))
}
