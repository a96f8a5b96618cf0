package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/enerlink/parceiros-api-go/internal/chat"
	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxAttachmentBytes caps multipart uploads before they reach the channel.
const maxAttachmentBytes = 16 << 20

// mountChatRoutes attaches the conversation endpoints under an entity
// collection. The same channel serves every thread; the parent record id
// keys the conversation.
func mountChatRoutes(r chi.Router, entity, param string, channel chat.Channel, metrics *observability.Metrics, logger *zap.Logger) {
	base := fmt.Sprintf("/%s/{%s}", entity, param)
	r.Get(base+"/chat/messages", chatHistoryHandler(entity, param, channel, logger))
	r.Post(base+"/chat/messages", chatSendHandler(entity, param, channel, logger))
	r.Get(base+"/chat/documents", chatDocumentsHandler(entity, param, channel, logger))
	r.Post(base+"/chat/documents", chatUploadHandler(entity, param, channel, metrics, logger))
}

func chatHistoryHandler(entity, param string, channel chat.Channel, logger *zap.Logger) http.HandlerFunc {
	spanName := fmt.Sprintf("GET /v1/%s/{%s}/chat/messages", entity, param)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		parentID := chi.URLParam(r, param)
		if parentID == "" {
			writeError(w, http.StatusBadRequest, "parent id is required")
			return
		}
		span.SetAttributes(attribute.String("chat.parent_id", parentID))

		messages, err := channel.History(ctx, parentID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": messages,
			"total": len(messages),
		})
	}
}

func chatSendHandler(entity, param string, channel chat.Channel, logger *zap.Logger) http.HandlerFunc {
	spanName := fmt.Sprintf("POST /v1/%s/{%s}/chat/messages", entity, param)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		parentID := chi.URLParam(r, param)
		if parentID == "" {
			writeError(w, http.StatusBadRequest, "parent id is required")
			return
		}
		span.SetAttributes(attribute.String("chat.parent_id", parentID))

		var req struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Body == "" {
			writeError(w, http.StatusBadRequest, "body is required")
			return
		}

		message, err := channel.Send(ctx, parentID, PrincipalIDFromContext(ctx), req.Body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, message)
	}
}

type documentResponse struct {
	domain.ChatDocument
	URL string `json:"url"`
}

func chatDocumentsHandler(entity, param string, channel chat.Channel, logger *zap.Logger) http.HandlerFunc {
	spanName := fmt.Sprintf("GET /v1/%s/{%s}/chat/documents", entity, param)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		parentID := chi.URLParam(r, param)
		if parentID == "" {
			writeError(w, http.StatusBadRequest, "parent id is required")
			return
		}
		span.SetAttributes(attribute.String("chat.parent_id", parentID))

		docs, err := channel.Documents(ctx, parentID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		items := make([]documentResponse, 0, len(docs))
		for _, doc := range docs {
			items = append(items, documentResponse{ChatDocument: doc, URL: channel.DocumentURL(doc)})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": items,
			"total": len(items),
		})
	}
}

func chatUploadHandler(entity, param string, channel chat.Channel, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	spanName := fmt.Sprintf("POST /v1/%s/{%s}/chat/documents", entity, param)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), spanName)
		defer span.End()

		parentID := chi.URLParam(r, param)
		if parentID == "" {
			writeError(w, http.StatusBadRequest, "parent id is required")
			return
		}
		span.SetAttributes(attribute.String("chat.parent_id", parentID))

		if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		att := chat.Attachment{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			SizeBytes:   header.Size,
			Content:     file,
		}
		doc, err := channel.AttachDocument(ctx, parentID, PrincipalIDFromContext(ctx), att)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		metrics.AddUploadedBytes(entity, doc.SizeBytes)
		writeJSON(w, http.StatusCreated, documentResponse{ChatDocument: doc, URL: channel.DocumentURL(doc)})
	}
}
