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
// Occurrences — /v1/occurrences
// ============================================================

func listOccurrencesHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/occurrences")
		defer span.End()

		q := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")
		page, pageSize := parsePagination(r)

		rows := service.FilterOccurrences(portal.ListOccurrences(time.Now()), q, status)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     service.Paginate(rows, page, pageSize),
			"total":     len(rows),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

func createOccurrenceHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/occurrences")
		defer span.End()

		var input domain.OccurrenceInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if input.AuthorID == "" {
			input.AuthorID = PrincipalIDFromContext(ctx)
		}

		occurrence, err := portal.Occurrences.Create(ctx, input)
		if err != nil {
			metrics.IncrResourceOp("occurrences", "create", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("occurrences", "create", "success")
		writeJSON(w, http.StatusCreated, occurrence)
	}
}

func getOccurrenceHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/occurrences/{occurrenceId}")
		defer span.End()

		occurrenceID := chi.URLParam(r, "occurrenceId")
		if occurrenceID == "" {
			writeError(w, http.StatusBadRequest, "occurrence_id is required")
			return
		}
		span.SetAttributes(attribute.String("occurrence.id", occurrenceID))

		occurrence, err := portal.Occurrences.GetByID(occurrenceID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		occurrence.TimeAgo = domain.TimeAgo(occurrence.CreatedAt, time.Now())
		writeJSON(w, http.StatusOK, occurrence)
	}
}

func updateOccurrenceHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/occurrences/{occurrenceId}")
		defer span.End()

		occurrenceID := chi.URLParam(r, "occurrenceId")
		if occurrenceID == "" {
			writeError(w, http.StatusBadRequest, "occurrence_id is required")
			return
		}
		span.SetAttributes(attribute.String("occurrence.id", occurrenceID))

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		occurrence, err := portal.Occurrences.Update(ctx, occurrenceID, patch)
		if err != nil {
			metrics.IncrResourceOp("occurrences", "update", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("occurrences", "update", "success")
		writeJSON(w, http.StatusOK, occurrence)
	}
}

func deleteOccurrenceHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/occurrences/{occurrenceId}")
		defer span.End()

		occurrenceID := chi.URLParam(r, "occurrenceId")
		if occurrenceID == "" {
			writeError(w, http.StatusBadRequest, "occurrence_id is required")
			return
		}
		span.SetAttributes(attribute.String("occurrence.id", occurrenceID))

		if err := portal.Occurrences.Delete(ctx, occurrenceID); err != nil {
			metrics.IncrResourceOp("occurrences", "delete", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("occurrences", "delete", "success")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
