package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Orçamentos por categoria
// ============================================================

func listBudgetsHandler(budgetsSvc *service.BudgetsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets")
		defer span.End()

		budgets, err := budgetsSvc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"budgets": budgets,
			"total":   len(budgets),
		})
	}
}

func createBudgetHandler(budgetsSvc *service.BudgetsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets")
		defer span.End()

		var req domain.CategoryBudget
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		budget, err := budgetsSvc.Create(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, budget)
	}
}

func updateBudgetHandler(budgetsSvc *service.BudgetsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets/{budgetId}")
		defer span.End()

		budgetID := chi.URLParam(r, "budgetId")
		if budgetID == "" {
			writeError(w, http.StatusBadRequest, "budget_id is required")
			return
		}
		span.SetAttributes(attribute.String("budget.id", budgetID))

		var req domain.CategoryBudget
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.ID = budgetID

		budget, err := budgetsSvc.Update(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, budget)
	}
}

func budgetAssessmentsHandler(budgetsSvc *service.BudgetsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets/assessments")
		defer span.End()

		month := r.URL.Query().Get("month")
		if month != "" {
			span.SetAttributes(attribute.String("assessment.month", month))
		}

		assessments, err := budgetsSvc.Assessments(ctx, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"assessments": assessments,
			"total":       len(assessments),
		})
	}
}
