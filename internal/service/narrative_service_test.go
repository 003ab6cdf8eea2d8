package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/infra/cache"
	"github.com/lucasmtl/incorpora-api/internal/infra/observability"
	"github.com/lucasmtl/incorpora-api/internal/service"
)

func newNarrativeService(agent *mockAgent, ledger *mockLedgerStore) *service.NarrativeService {
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	c := cache.New[any](5 * time.Minute)

	reports := service.NewReportsService(
		ledger, &mockContractStore{}, &mockBudgetStore{}, c, metrics, logger, 6, 3,
	)
	budgets := service.NewBudgetsService(&mockBudgetStore{}, ledger, metrics, logger)

	return service.NewNarrativeService(reports, budgets, agent, c, metrics, logger)
}

func TestNarrative_Success(t *testing.T) {
	agent := &mockAgent{response: &domain.AgentResponse{
		Narrative:  "O fluxo de caixa do trimestre fechou positivo.",
		Highlights: []string{"Inadimplência concentrada em um contrato"},
		TokensUsed: domain.TokenUsage{PromptTokens: 400, CompletionTokens: 150, TotalTokens: 550},
	}}
	svc := newNarrativeService(agent, &mockLedgerStore{})

	resp, err := svc.Generate(context.Background(), &domain.NarrativeRequest{
		Question: "Como está o fluxo de caixa?",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Narrative == "" {
		t.Error("expected a narrative")
	}
	if agent.lastReq == nil || agent.lastReq.CashFlow == nil || agent.lastReq.Projection == nil {
		t.Error("agent request must carry cash flow and projection context")
	}
}

func TestNarrative_EmptyQuestion(t *testing.T) {
	svc := newNarrativeService(&mockAgent{}, &mockLedgerStore{})

	_, err := svc.Generate(context.Background(), &domain.NarrativeRequest{Question: "   "})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNarrative_AgentError(t *testing.T) {
	agent := &mockAgent{err: errors.New("agent unavailable")}
	svc := newNarrativeService(agent, &mockLedgerStore{})

	_, err := svc.Generate(context.Background(), &domain.NarrativeRequest{Question: "resumo"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNarrative_CachesResponse(t *testing.T) {
	agent := &mockAgent{response: &domain.AgentResponse{Narrative: "ok"}}
	svc := newNarrativeService(agent, &mockLedgerStore{})

	req := &domain.NarrativeRequest{Question: "resumo do mês"}
	if _, err := svc.Generate(context.Background(), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Agent starts failing; the cached narrative must still come back.
	agent.err = errors.New("agent unavailable")
	agent.response = nil
	resp, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("expected cached narrative, got %v", err)
	}
	if resp.Narrative != "ok" {
		t.Errorf("expected cached narrative, got %q", resp.Narrative)
	}
}

func TestNarrative_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newNarrativeService(&mockAgent{}, &mockLedgerStore{})
	_, err := svc.Generate(ctx, &domain.NarrativeRequest{Question: "resumo"})
	if err == nil {
		t.Fatal("expected context error")
	}
}
