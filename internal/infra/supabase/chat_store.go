package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// ============================================================
// ChatStore implementation — chat_messages and chat_documents tables
// ============================================================

func (c *Client) ListMessages(ctx context.Context, parentID string) ([]domain.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListChatMessages")
	defer span.End()

	path := fmt.Sprintf("chat_messages?parent_id=eq.%s&order=created_at.asc", url.QueryEscape(parentID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.ChatMessage{}, nil
	}

	var rows []domain.ChatMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode chat_messages: %w", err)
	}
	return rows, nil
}

func (c *Client) InsertMessage(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertChatMessage")
	defer span.End()

	row := map[string]any{
		"parent_id": msg.ParentID,
		"sender":    msg.Sender,
		"body":      msg.Body,
		"author_id": msg.AuthorID,
	}
	if !msg.CreatedAt.IsZero() {
		row["created_at"] = msg.CreatedAt.Format(time.RFC3339)
	}
	return insertOne[domain.ChatMessage](ctx, c, "chat_message", "chat_messages", row)
}

func (c *Client) ListDocuments(ctx context.Context, parentID string) ([]domain.ChatDocument, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListChatDocuments")
	defer span.End()

	path := fmt.Sprintf("chat_documents?parent_id=eq.%s&order=created_at.desc", url.QueryEscape(parentID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []domain.ChatDocument{}, nil
	}

	var rows []domain.ChatDocument
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode chat_documents: %w", err)
	}
	return rows, nil
}

func (c *Client) InsertDocument(ctx context.Context, doc domain.ChatDocument) (domain.ChatDocument, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InsertChatDocument")
	defer span.End()

	row := map[string]any{
		"parent_id":    doc.ParentID,
		"name":         doc.Name,
		"storage_path": doc.StoragePath,
		"size_bytes":   doc.SizeBytes,
		"content_type": doc.ContentType,
	}
	return insertOne[domain.ChatDocument](ctx, c, "chat_document", "chat_documents", row)
}
