package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// ============================================================
// BudgetStore implementation — category budgets via PostgREST
// ============================================================

// ListBudgets fetches all active category budgets.
func (c *Client) ListBudgets(ctx context.Context) ([]domain.CategoryBudget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	path := "category_budgets?is_active=eq.true&order=category.asc"
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/budgets", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.CategoryBudget{}, nil
	}

	var rows []domain.CategoryBudget
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode category_budgets: %w", err)
	}
	return rows, nil
}

// CreateBudget inserts a category budget and returns the stored row.
func (c *Client) CreateBudget(ctx context.Context, b *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()

	row := map[string]any{
		"id":                  uuid.New().String(),
		"category":            b.Category,
		"monthly_limit":       b.MonthlyLimit,
		"alert_threshold_pct": b.AlertThresholdPct,
		"is_active":           b.IsActive,
	}

	body, err := c.doPost(ctx, "category_budgets", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/budgets", Err: err}
	}

	var results []domain.CategoryBudget
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode category_budget: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from category_budgets insert")
	}
	return &results[0], nil
}

// UpdateBudget patches an existing budget and returns the fresh row.
func (c *Client) UpdateBudget(ctx context.Context, b *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBudget")
	defer span.End()

	path := fmt.Sprintf("category_budgets?id=eq.%s", b.ID)
	updates := map[string]any{
		"category":            b.Category,
		"monthly_limit":       b.MonthlyLimit,
		"alert_threshold_pct": b.AlertThresholdPct,
		"is_active":           b.IsActive,
		"updated_at":          time.Now().Format(time.RFC3339),
	}
	if err := c.doPatch(ctx, path, updates); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/budgets", Err: err}
	}

	fetchPath := fmt.Sprintf("category_budgets?id=eq.%s&limit=1", b.ID)
	body, err := c.doRequest(ctx, http.MethodGet, fetchPath)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/budgets", Err: err}
	}

	var rows []domain.CategoryBudget
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode category_budgets: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category_budget", ID: b.ID}
	}
	return &rows[0], nil
}
