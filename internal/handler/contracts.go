package handler

import (
	"encoding/json"
	"net/http"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
	"github.com/enerlink/parceiros-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Contracts — /v1/contracts
// ============================================================

func listContractsHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/contracts")
		defer span.End()

		q := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")
		page, pageSize := parsePagination(r)

		rows := service.FilterContracts(portal.Contracts.List(), q, status)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     service.Paginate(rows, page, pageSize),
			"total":     len(rows),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

func createContractHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contracts")
		defer span.End()

		var input domain.ContractInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		contract, err := portal.Contracts.Create(ctx, input)
		if err != nil {
			metrics.IncrResourceOp("contracts", "create", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("contracts", "create", "success")
		writeJSON(w, http.StatusCreated, contract)
	}
}

func getContractHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/contracts/{contractId}")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract_id is required")
			return
		}
		span.SetAttributes(attribute.String("contract.id", contractID))

		contract, err := portal.Contracts.GetByID(contractID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, contract)
	}
}

func updateContractHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/contracts/{contractId}")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract_id is required")
			return
		}
		span.SetAttributes(attribute.String("contract.id", contractID))

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		contract, err := portal.Contracts.Update(ctx, contractID, patch)
		if err != nil {
			metrics.IncrResourceOp("contracts", "update", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("contracts", "update", "success")
		writeJSON(w, http.StatusOK, contract)
	}
}

func deleteContractHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/contracts/{contractId}")
		defer span.End()

		contractID := chi.URLParam(r, "contractId")
		if contractID == "" {
			writeError(w, http.StatusBadRequest, "contract_id is required")
			return
		}
		span.SetAttributes(attribute.String("contract.id", contractID))

		if err := portal.Contracts.Delete(ctx, contractID); err != nil {
			metrics.IncrResourceOp("contracts", "delete", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("contracts", "delete", "success")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
