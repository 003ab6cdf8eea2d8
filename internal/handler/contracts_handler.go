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
// Contratos
// ============================================================

func createContractHandler(contractsSvc *service.ContractsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contracts")
		defer span.End()

		var req domain.Contract
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		contract, err := contractsSvc.Create(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, contract)
	}
}

func listContractsHandler(contractsSvc *service.ContractsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/contracts")
		defer span.End()

		kind := r.URL.Query().Get("kind")
		contracts, err := contractsSvc.List(ctx, kind)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"contracts": contracts,
			"total":     len(contracts),
		})
	}
}

func getContractHandler(contractsSvc *service.ContractsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/contracts/{contractId}")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract_id is required")
			return
		}
		span.SetAttributes(attribute.String("contract.id", contractID))

		contract, err := contractsSvc.Get(ctx, contractID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, contract)
	}
}

func activateContractHandler(contractsSvc *service.ContractsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contracts/{contractId}/activate")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract_id is required")
			return
		}
		span.SetAttributes(attribute.String("contract.id", contractID))

		installments, err := contractsSvc.Activate(ctx, contractID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"contract_id":  contractID,
			"installments": installments,
			"total":        len(installments),
		})
	}
}

func listInstallmentsHandler(contractsSvc *service.ContractsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/contracts/{contractId}/installments")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract_id is required")
			return
		}
		span.SetAttributes(attribute.String("contract.id", contractID))

		installments, err := contractsSvc.Installments(ctx, contractID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"contract_id":  contractID,
			"installments": installments,
			"total":        len(installments),
		})
	}
}
