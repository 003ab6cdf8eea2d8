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
// AuthStore implementation — operator auth CRUD via PostgREST
// ============================================================

// --- Operator lookup ---

func (c *Client) GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetOperatorByEmail")
	defer span.End()

	path := fmt.Sprintf("operators?email=eq.%s&limit=1", email)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil // not found is not an error for auth lookup
	}

	var rows []domain.Operator
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode operators: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) GetOperatorByID(ctx context.Context, operatorID string) (*domain.Operator, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetOperatorByID")
	defer span.End()

	path := fmt.Sprintf("operators?id=eq.%s&limit=1", operatorID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.Operator
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode operators: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// --- Credentials ---

func (c *Client) GetCredentials(ctx context.Context, operatorID string) (*domain.OperatorCredential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredentials")
	defer span.End()

	path := fmt.Sprintf("operator_credentials?operator_id=eq.%s&limit=1", operatorID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: operatorID}
	}

	var rows []domain.OperatorCredential
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode operator_credentials: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: operatorID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateCredentials(ctx context.Context, operatorID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCredentials")
	defer span.End()

	path := fmt.Sprintf("operator_credentials?operator_id=eq.%s", operatorID)
	return c.doPatch(ctx, path, updates)
}

// --- Refresh tokens ---

func (c *Client) StoreRefreshToken(ctx context.Context, operatorID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	data := map[string]any{
		"id":          uuid.New().String(),
		"operator_id": operatorID,
		"token_hash":  tokenHash,
		"expires_at":  expiresAt.Format(time.RFC3339),
		"revoked":     false,
	}

	_, err := c.doPost(ctx, "auth_refresh_tokens", data)
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", tokenHash)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.AuthRefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s", tokenHash)
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, operatorID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?operator_id=eq.%s&revoked=eq.false", operatorID)
	return c.doPatch(ctx, path, map[string]any{"revoked": true})
}
