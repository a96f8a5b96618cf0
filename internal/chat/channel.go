// Package chat implements the conversation thread attached to requests,
// occurrences and simulations: message history, sending, and PDF document
// attachments.
package chat

import (
	"context"
	"io"
	"strings"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// Channel is one conversation surface. Implementations are keyed by the
// parent record id, so a single channel serves every thread of its kind.
type Channel interface {
	// History returns the full message log for a parent, oldest first.
	History(ctx context.Context, parentID string) ([]domain.ChatMessage, error)

	// Send appends a user message and returns the stored message.
	Send(ctx context.Context, parentID, authorID, body string) (domain.ChatMessage, error)

	// AttachDocument validates, stores and registers a document, then
	// appends a system message noting the attachment.
	AttachDocument(ctx context.Context, parentID, authorID string, att Attachment) (domain.ChatDocument, error)

	// Documents lists the attachments for a parent, newest first.
	Documents(ctx context.Context, parentID string) ([]domain.ChatDocument, error)

	// DocumentURL returns the retrieval URL for a stored document.
	DocumentURL(doc domain.ChatDocument) string
}

// Attachment is an incoming file before validation.
type Attachment struct {
	Name        string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// validateAttachment enforces the PDF-only rule before any network call.
func validateAttachment(att Attachment) error {
	if att.SizeBytes <= 0 {
		return &domain.ErrInvalidDocument{Name: att.Name, Reason: "file is empty"}
	}
	if att.ContentType == "application/pdf" {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(att.Name), ".pdf") {
		return nil
	}
	return &domain.ErrInvalidDocument{Name: att.Name, Reason: "only PDF documents are accepted"}
}
