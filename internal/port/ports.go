// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// LedgerStore supplies the financial records the engine aggregates over.
// Implemented by the Supabase adapter (or any other persistence layer).
type LedgerStore interface {
	// ListRecords returns records whose settlement date falls in [from, to).
	// Dates are YYYY-MM-DD; empty strings mean an unbounded side.
	ListRecords(ctx context.Context, from, to string) ([]domain.MonetaryRecord, error)

	// ListOpenRecords returns every pending or overdue record.
	ListOpenRecords(ctx context.Context) ([]domain.MonetaryRecord, error)

	// InsertRecord inserts a raw record (used by dev tools).
	InsertRecord(ctx context.Context, data map[string]any) error

	// DeleteSeedRecords removes dev-generated records only.
	DeleteSeedRecords(ctx context.Context) error
}

// ContractStore persists contracts and their generated installment plans.
type ContractStore interface {
	CreateContract(ctx context.Context, c *domain.Contract) (*domain.Contract, error)
	GetContract(ctx context.Context, contractID string) (*domain.Contract, error)
	ListContracts(ctx context.Context, kind string) ([]domain.Contract, error)

	// InsertInstallments persists a whole generated schedule at once.
	InsertInstallments(ctx context.Context, installments []domain.Installment) error
	ListInstallments(ctx context.Context, contractID string) ([]domain.Installment, error)

	// MarkScheduleGenerated sets the contract's idempotence flag.
	MarkScheduleGenerated(ctx context.Context, contractID string) error
}

// BudgetStore persists category budgets.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]domain.CategoryBudget, error)
	CreateBudget(ctx context.Context, b *domain.CategoryBudget) (*domain.CategoryBudget, error)
	UpdateBudget(ctx context.Context, b *domain.CategoryBudget) (*domain.CategoryBudget, error)
}

// AuthStore defines all data operations for operator authentication.
type AuthStore interface {
	GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error)
	GetOperatorByID(ctx context.Context, operatorID string) (*domain.Operator, error)

	GetCredentials(ctx context.Context, operatorID string) (*domain.OperatorCredential, error)
	UpdateCredentials(ctx context.Context, operatorID string, updates map[string]any) error

	StoreRefreshToken(ctx context.Context, operatorID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, operatorID string) error
}

// NarrativeAgent invokes the external AI reporting service.
type NarrativeAgent interface {
	Call(ctx context.Context, req *domain.AgentRequest) (*domain.AgentResponse, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}
