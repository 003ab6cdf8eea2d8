// Package supabase provides a client for Supabase (PostgREST).
// Used as the real data backend for the incorporator's ledger,
// contracts, budgets and operator accounts.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lucasmtl/incorpora-api/internal/domain"
	"github.com/lucasmtl/incorpora-api/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client. The bulkhead caps concurrent
// requests against the backend; fan-out callers share the same limit.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConc := cfg.MaxConcurrency
	if maxConc < 1 {
		maxConc = 10
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       resilience.NewBulkhead(maxConc),
		cfg:            cfg,
		logger:         logger,
	}
}

// execute runs fn under the shared circuit breaker, retry policy and
// bulkhead. All store methods go through here.
func (c *Client) execute(ctx context.Context, fn func() error) error {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return err
}

// doRequest executes an authenticated request to Supabase PostgREST.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil // no data
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("supabase returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// --- Ledger API (implements port.LedgerStore) ---

// supabaseRecord maps the financial_records table columns.
// decimal.Decimal decodes both JSON numbers and quoted numerics.
type supabaseRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	DueDate     string          `json:"due_date"`
	SettledDate string          `json:"settled_date"`
	ContractID  string          `json:"contract_id"`
	PropertyID  string          `json:"property_id"`
}

func (r supabaseRecord) toDomain() domain.MonetaryRecord {
	return domain.MonetaryRecord{
		ID:          r.ID,
		Description: r.Description,
		Category:    r.Category,
		Direction:   r.Direction,
		Amount:      r.Amount,
		Status:      r.Status,
		DueDate:     r.DueDate,
		SettledDate: r.SettledDate,
		ContractID:  r.ContractID,
		PropertyID:  r.PropertyID,
	}
}

// ListRecords fetches financial records whose settled date falls in
// [from, to). Empty bounds are unbounded.
func (c *Client) ListRecords(ctx context.Context, from, to string) ([]domain.MonetaryRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRecords")
	defer span.End()
	span.SetAttributes(
		attribute.String("range.from", from),
		attribute.String("range.to", to),
	)

	var records []domain.MonetaryRecord

	err := c.execute(ctx, func() error {
		path := "financial_records?order=settled_date.asc&limit=1000"
		if from != "" {
			path += fmt.Sprintf("&settled_date=gte.%s", from)
		}
		if to != "" {
			path += fmt.Sprintf("&settled_date=lt.%s", to)
		}
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		if body == nil || string(body) == "[]" {
			records = []domain.MonetaryRecord{}
			return nil
		}

		var rows []supabaseRecord
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode records: %w", err)
		}

		records = make([]domain.MonetaryRecord, 0, len(rows))
		for _, r := range rows {
			records = append(records, r.toDomain())
		}
		return nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/records", Err: err}
	}

	return records, nil
}

// ListOpenRecords fetches every pending or overdue record.
func (c *Client) ListOpenRecords(ctx context.Context) ([]domain.MonetaryRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListOpenRecords")
	defer span.End()

	var records []domain.MonetaryRecord

	err := c.execute(ctx, func() error {
		path := "financial_records?status=in.(pending,overdue)&order=due_date.asc&limit=1000"
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		if body == nil || string(body) == "[]" {
			records = []domain.MonetaryRecord{}
			return nil
		}

		var rows []supabaseRecord
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode records: %w", err)
		}

		records = make([]domain.MonetaryRecord, 0, len(rows))
		for _, r := range rows {
			records = append(records, r.toDomain())
		}
		return nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/records", Err: err}
	}

	return records, nil
}

// InsertRecord inserts a raw financial record. Used by the dev seeding
// endpoint; normal record creation flows through installment activation.
func (c *Client) InsertRecord(ctx context.Context, data map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertRecord")
	defer span.End()

	err := c.execute(ctx, func() error {
		_, err := c.doPost(ctx, "financial_records", data)
		return err
	})

	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/records", Err: err}
	}
	return nil
}

// DeleteSeedRecords purges dev-generated records. The description
// prefix keeps the delete away from real ledger rows.
func (c *Client) DeleteSeedRecords(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteSeedRecords")
	defer span.End()

	path := fmt.Sprintf("financial_records?description=like.%s*", domain.SeedDescriptionPrefix)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/records", Err: err}
	}
	return nil
}
