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
// Contacts — /v1/contacts
// ============================================================

func listContactsHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/contacts")
		defer span.End()

		q := r.URL.Query().Get("q")
		page, pageSize := parsePagination(r)

		rows := service.FilterContacts(portal.Contacts.List(), q)
		writeJSON(w, http.StatusOK, map[string]any{
			"items":     service.Paginate(rows, page, pageSize),
			"total":     len(rows),
			"page":      page,
			"page_size": pageSize,
		})
	}
}

func createContactHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/contacts")
		defer span.End()

		var input domain.ContactInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		contact, err := portal.Contacts.Create(ctx, input)
		if err != nil {
			metrics.IncrResourceOp("contacts", "create", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("contacts", "create", "success")
		writeJSON(w, http.StatusCreated, contact)
	}
}

func getContactHandler(portal *service.PortalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/contacts/{contactId}")
		defer span.End()

		contactID := chi.URLParam(r, "contactId")
		if contactID == "" {
			writeError(w, http.StatusBadRequest, "contact_id is required")
			return
		}
		span.SetAttributes(attribute.String("contact.id", contactID))

		contact, err := portal.Contacts.GetByID(contactID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, contact)
	}
}

func updateContactHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/contacts/{contactId}")
		defer span.End()

		contactID := chi.URLParam(r, "contactId")
		if contactID == "" {
			writeError(w, http.StatusBadRequest, "contact_id is required")
			return
		}
		span.SetAttributes(attribute.String("contact.id", contactID))

		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		contact, err := portal.Contacts.Update(ctx, contactID, patch)
		if err != nil {
			metrics.IncrResourceOp("contacts", "update", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("contacts", "update", "success")
		writeJSON(w, http.StatusOK, contact)
	}
}

func deleteContactHandler(portal *service.PortalService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/contacts/{contactId}")
		defer span.End()

		contactID := chi.URLParam(r, "contactId")
		if contactID == "" {
			writeError(w, http.StatusBadRequest, "contact_id is required")
			return
		}
		span.SetAttributes(attribute.String("contact.id", contactID))

		if err := portal.Contacts.Delete(ctx, contactID); err != nil {
			metrics.IncrResourceOp("contacts", "delete", "failure")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrResourceOp("contacts", "delete", "success")
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
