package service_test

import (
	"context"
	"time"

	"github.com/lucasmtl/incorpora-api/internal/domain"
)

// --- Mocks shared across service tests ---

type mockLedgerStore struct {
	records  []domain.MonetaryRecord
	open     []domain.MonetaryRecord
	err      error
	inserted []map[string]any
	purged   bool
}

func (m *mockLedgerStore) ListRecords(_ context.Context, _, _ string) ([]domain.MonetaryRecord, error) {
	return m.records, m.err
}

func (m *mockLedgerStore) ListOpenRecords(_ context.Context) ([]domain.MonetaryRecord, error) {
	return m.open, m.err
}

func (m *mockLedgerStore) InsertRecord(_ context.Context, data map[string]any) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, data)
	return nil
}

func (m *mockLedgerStore) DeleteSeedRecords(_ context.Context) error {
	m.purged = true
	return m.err
}

type mockContractStore struct {
	contract     *domain.Contract
	contracts    []domain.Contract
	installments []domain.Installment
	err          error

	insertedInstallments []domain.Installment
	scheduleMarked       bool
	created              *domain.Contract
}

func (m *mockContractStore) CreateContract(_ context.Context, c *domain.Contract) (*domain.Contract, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = c
	out := *c
	out.ID = "ct-1"
	return &out, nil
}

func (m *mockContractStore) GetContract(_ context.Context, contractID string) (*domain.Contract, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.contract == nil {
		return nil, &domain.ErrNotFound{Resource: "contract", ID: contractID}
	}
	return m.contract, nil
}

func (m *mockContractStore) ListContracts(_ context.Context, _ string) ([]domain.Contract, error) {
	return m.contracts, m.err
}

func (m *mockContractStore) InsertInstallments(_ context.Context, installments []domain.Installment) error {
	if m.err != nil {
		return m.err
	}
	m.insertedInstallments = installments
	return nil
}

func (m *mockContractStore) ListInstallments(_ context.Context, _ string) ([]domain.Installment, error) {
	return m.installments, m.err
}

func (m *mockContractStore) MarkScheduleGenerated(_ context.Context, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.scheduleMarked = true
	return nil
}

type mockBudgetStore struct {
	budgets []domain.CategoryBudget
	err     error
	created *domain.CategoryBudget
	updated *domain.CategoryBudget
}

func (m *mockBudgetStore) ListBudgets(_ context.Context) ([]domain.CategoryBudget, error) {
	return m.budgets, m.err
}

func (m *mockBudgetStore) CreateBudget(_ context.Context, b *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = b
	return b, nil
}

func (m *mockBudgetStore) UpdateBudget(_ context.Context, b *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updated = b
	return b, nil
}

type mockAgent struct {
	response *domain.AgentResponse
	err      error
	lastReq  *domain.AgentRequest
}

func (m *mockAgent) Call(_ context.Context, req *domain.AgentRequest) (*domain.AgentResponse, error) {
	m.lastReq = req
	return m.response, m.err
}

type mockAuthStore struct {
	operator *domain.Operator
	cred     *domain.OperatorCredential
	token    *domain.AuthRefreshToken
	err      error

	credUpdates  []map[string]any
	storedHashes []string
	revokedAll   bool
	revoked      []string
}

func (m *mockAuthStore) GetOperatorByEmail(_ context.Context, _ string) (*domain.Operator, error) {
	return m.operator, m.err
}

func (m *mockAuthStore) GetOperatorByID(_ context.Context, _ string) (*domain.Operator, error) {
	return m.operator, m.err
}

func (m *mockAuthStore) GetCredentials(_ context.Context, operatorID string) (*domain.OperatorCredential, error) {
	if m.cred == nil {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: operatorID}
	}
	return m.cred, m.err
}

func (m *mockAuthStore) UpdateCredentials(_ context.Context, _ string, updates map[string]any) error {
	m.credUpdates = append(m.credUpdates, updates)
	return nil
}

func (m *mockAuthStore) StoreRefreshToken(_ context.Context, _, tokenHash string, _ time.Time) error {
	m.storedHashes = append(m.storedHashes, tokenHash)
	return nil
}

func (m *mockAuthStore) GetRefreshToken(_ context.Context, _ string) (*domain.AuthRefreshToken, error) {
	return m.token, m.err
}

func (m *mockAuthStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	m.revoked = append(m.revoked, tokenHash)
	return nil
}

func (m *mockAuthStore) RevokeAllRefreshTokens(_ context.Context, _ string) error {
	m.revokedAll = true
	return nil
}
