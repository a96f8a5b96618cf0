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
// Simulations — /v1/simulations
// ============================================================

func listSimulationsHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/simulations")
		defer span.End()

		q := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")
		page, pageSize := parsePagination(r)

		rows := service.FilterSimulations(portal.Simulations.List(), q, status)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     service.Paginate(rows, page, pageSize),
			"total":     len(rows),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

func createSimulationHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/simulations")
		defer span.End()

		var input domain.SimulationInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if input.OwnerID == "" {
			input.OwnerID = PrincipalIDFromContext(ctx)
		}

		simulation, err := portal.Simulations.Create(ctx, input)
		if err != nil {
			metrics.IncrResourceOp("simulations", "create", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("simulations", "create", "success")
		writeJSON(w, http.StatusCreated, simulation)
	}
}

func getSimulationHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/simulations/{simulationId}")
		defer span.End()

		simulationID := chi.URLParam(r, "simulationId")
		if simulationID == "" {
			writeError(w, http.StatusBadRequest, "simulation_id is required")
			return
		}
		span.SetAttributes(attribute.String("simulation.id", simulationID))

		simulation, err := portal.Simulations.GetByID(simulationID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, simulation)
	}
}

func updateSimulationHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/simulations/{simulationId}")
		defer span.End()

		simulationID := chi.URLParam(r, "simulationId")
		if simulationID == "" {
			writeError(w, http.StatusBadRequest, "simulation_id is required")
			return
		}
		span.SetAttributes(attribute.String("simulation.id", simulationID))

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		simulation, err := portal.Simulations.Update(ctx, simulationID, patch)
		if err != nil {
			metrics.IncrResourceOp("simulations", "update", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("simulations", "update", "success")
		writeJSON(w, http.StatusOK, simulation)
	}
}

func deleteSimulationHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/simulations/{simulationId}")
		defer span.End()

		simulationID := chi.URLParam(r, "simulationId")
		if simulationID == "" {
			writeError(w, http.StatusBadRequest, "simulation_id is required")
			return
		}
		span.SetAttributes(attribute.String("simulation.id", simulationID))

		if err := portal.Simulations.Delete(ctx, simulationID); err != nil {
			metrics.IncrResourceOp("simulations", "delete", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("simulations", "delete", "success")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
