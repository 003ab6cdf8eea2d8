package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// ============================================================
// ContractStore implementation — contracts + installments via PostgREST
// ============================================================

// supabaseContract maps the contracts table. Component amounts are
// flattened into columns rather than nested JSON.
type supabaseContract struct {
	ID                string          `json:"id"`
	Kind              string          `json:"kind"`
	Status            string          `json:"status"`
	PropertyID        string          `json:"property_id"`
	CounterpartyName  string          `json:"counterparty_name"`
	StartDate         string          `json:"start_date"`
	InstallmentCount  int             `json:"installment_count"`
	DueDay            int             `json:"due_day"`
	BaseAmount        decimal.Decimal `json:"base_amount"`
	CondoFee          decimal.Decimal `json:"condo_fee"`
	PropertyTax       decimal.Decimal `json:"property_tax"`
	Utilities         decimal.Decimal `json:"utilities"`
	Insurance         decimal.Decimal `json:"insurance"`
	ScheduleGenerated bool            `json:"schedule_generated"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (r supabaseContract) toDomain() domain.Contract {
	return domain.Contract{
		ID:               r.ID,
		Kind:             r.Kind,
		Status:           r.Status,
		PropertyID:       r.PropertyID,
		CounterpartyName: r.CounterpartyName,
		StartDate:        r.StartDate,
		InstallmentCount: r.InstallmentCount,
		DueDay:           r.DueDay,
		Components: domain.ComponentAmounts{
			BaseAmount:  r.BaseAmount,
			CondoFee:    r.CondoFee,
			PropertyTax: r.PropertyTax,
			Utilities:   r.Utilities,
			Insurance:   r.Insurance,
		},
		ScheduleGenerated: r.ScheduleGenerated,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// CreateContract inserts a contract and returns the stored row.
func (c *Client) CreateContract(ctx context.Context, contract *domain.Contract) (*domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateContract")
	defer span.End()

	row := map[string]any{
		"id":                 uuid.New().String(),
		"kind":               contract.Kind,
		"status":             contract.Status,
		"property_id":        contract.PropertyID,
		"counterparty_name":  contract.CounterpartyName,
		"start_date":         contract.StartDate,
		"installment_count":  contract.InstallmentCount,
		"due_day":            contract.DueDay,
		"base_amount":        contract.Components.BaseAmount,
		"condo_fee":          contract.Components.CondoFee,
		"property_tax":       contract.Components.PropertyTax,
		"utilities":          contract.Components.Utilities,
		"insurance":          contract.Components.Insurance,
		"schedule_generated": false,
	}

	body, err := c.doPost(ctx, "contracts", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/contracts", Err: err}
	}

	var results []supabaseContract
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode contract: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no result from contracts insert")
	}
	created := results[0].toDomain()
	return &created, nil
}

// GetContract fetches a single contract by id.
func (c *Client) GetContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetContract")
	defer span.End()

	path := fmt.Sprintf("contracts?id=eq.%s&limit=1", contractID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/contracts", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "contract", ID: contractID}
	}

	var rows []supabaseContract
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode contracts: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "contract", ID: contractID}
	}
	contract := rows[0].toDomain()
	return &contract, nil
}

// ListContracts fetches contracts, optionally filtered by kind.
func (c *Client) ListContracts(ctx context.Context, kind string) ([]domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListContracts")
	defer span.End()

	path := "contracts?order=created_at.desc&limit=200"
	if kind != "" {
		path = fmt.Sprintf("contracts?kind=eq.%s&order=created_at.desc&limit=200", kind)
	}
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/contracts", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Contract{}, nil
	}

	var rows []supabaseContract
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode contracts: %w", err)
	}

	contracts := make([]domain.Contract, 0, len(rows))
	for _, r := range rows {
		contracts = append(contracts, r.toDomain())
	}
	return contracts, nil
}

// InsertInstallments persists a whole generated schedule in one request.
// PostgREST accepts an array body for bulk insert.
func (c *Client) InsertInstallments(ctx context.Context, installments []domain.Installment) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertInstallments")
	defer span.End()

	rows := make([]map[string]any, 0, len(installments))
	for _, inst := range installments {
		id := inst.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, map[string]any{
			"id":              id,
			"contract_id":     inst.ContractID,
			"sequence_number": inst.SequenceNumber,
			"period_label":    inst.PeriodLabel,
			"due_date":        inst.DueDate,
			"total_amount":    inst.TotalAmount,
			"status":          inst.Status,
		})
	}

	if _, err := c.doPost(ctx, "installments", rows); err != nil {
		return &domain.ErrExternalService{Service: "supabase/installments", Err: err}
	}
	return nil
}

// ListInstallments fetches the stored schedule for a contract in
// sequence order.
func (c *Client) ListInstallments(ctx context.Context, contractID string) ([]domain.Installment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInstallments")
	defer span.End()

	path := fmt.Sprintf("installments?contract_id=eq.%s&order=sequence_number.asc", contractID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/installments", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return []domain.Installment{}, nil
	}

	var rows []domain.Installment
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode installments: %w", err)
	}
	return rows, nil
}

// MarkScheduleGenerated flips the contract's one-shot activation flag
// and moves it to active.
func (c *Client) MarkScheduleGenerated(ctx context.Context, contractID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.MarkScheduleGenerated")
	defer span.End()

	path := fmt.Sprintf("contracts?id=eq.%s", contractID)
	return c.doPatch(ctx, path, map[string]any{
		"schedule_generated": true,
		"status":             domain.ContractStatusActive,
		"updated_at":         time.Now().Format(time.RFC3339),
	})
}
