package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
	"github.com/enerlink/parceiros-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Support requests — /v1/requests
// ============================================================

// listRequestsHandler decorates each row with a relative age before
// filtering, so "time ago" is computed against a single clock reading.
func listRequestsHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/requests")
		defer span.End()

		q := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")
		page, pageSize := parsePagination(r)

		rows := service.FilterRequests(portal.ListRequests(time.Now()), q, status)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     service.Paginate(rows, page, pageSize),
			"total":     len(rows),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

func createRequestHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/requests")
		defer span.End()

		var input domain.RequestInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		request, err := portal.Requests.Create(ctx, input)
		if err != nil {
			metrics.IncrResourceOp("requests", "create", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("requests", "create", "success")
		writeJSON(w, http.StatusCreated, request)
	}
}

func getRequestHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/requests/{requestId}")
		defer span.End()

		requestID := chi.URLParam(r, "requestId")
		if requestID == "" {
			writeError(w, http.StatusBadRequest, "request_id is required")
			return
		}
		span.SetAttributes(attribute.String("request.id", requestID))

		request, err := portal.Requests.GetByID(requestID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		request.TimeAgo = domain.TimeAgo(request.CreatedAt, time.Now())
		writeJSON(w, http.StatusOK, request)
	}
}

func updateRequestHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/requests/{requestId}")
		defer span.End()

		requestID := chi.URLParam(r, "requestId")
		if requestID == "" {
			writeError(w, http.StatusBadRequest, "request_id is required")
			return
		}
		span.SetAttributes(attribute.String("request.id", requestID))

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		request, err := portal.Requests.Update(ctx, requestID, patch)
		if err != nil {
			metrics.IncrResourceOp("requests", "update", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("requests", "update", "success")
		writeJSON(w, http.StatusOK, request)
	}
}

func deleteRequestHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/requests/{requestId}")
		defer span.End()

		requestID := chi.URLParam(r, "requestId")
		if requestID == "" {
			writeError(w, http.StatusBadRequest, "request_id is required")
			return
		}
		span.SetAttributes(attribute.String("request.id", requestID))

		if err := portal.Requests.Delete(ctx, requestID); err != nil {
			metrics.IncrResourceOp("requests", "delete", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("requests", "delete", "success")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
