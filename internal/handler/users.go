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
// Portal users — /v1/users
// ============================================================

func listUsersHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/users")
		defer span.End()

		q := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")
		page, pageSize := parsePagination(r)

		rows := service.FilterUsers(portal.Users.List(), q, status)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     service.Paginate(rows, page, pageSize),
			"total":     len(rows),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

func createUserHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/users")
		defer span.End()

		var input domain.PortalUserInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := portal.Users.Create(ctx, input)
		if err != nil {
			metrics.IncrResourceOp("users", "create", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("users", "create", "success")
		writeJSON(w, http.StatusCreated, user)
	}
}

func getUserHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/users/{userId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		user, err := portal.Users.GetByID(userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func updateUserHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/users/{userId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := portal.Users.Update(ctx, userID, patch)
		if err != nil {
			metrics.IncrResourceOp("users", "update", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("users", "update", "success")
		writeJSON(w, http.StatusOK, user)
	}
}

func deleteUserHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/users/{userId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		span.SetAttributes(attribute.String("user.id", userID))

		if err := portal.Users.Delete(ctx, userID); err != nil {
			metrics.IncrResourceOp("users", "delete", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("users", "delete", "success")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
