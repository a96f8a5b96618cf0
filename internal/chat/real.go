package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/port"
)

// RealChannel persists messages and documents through the hosted backend.
type RealChannel struct {
	store  port.ChatStore
	blobs  port.BlobStore
	bucket string
	logger *zap.Logger

	// now is swapped in tests to pin object paths.
	now func() time.Time
}

func NewRealChannel(store port.ChatStore, blobs port.BlobStore, bucket string, logger *zap.Logger) *RealChannel {
	return &RealChannel{
		store:  store,
		blobs:  blobs,
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

func (c *RealChannel) History(ctx context.Context, parentID string) ([]domain.ChatMessage, error) {
	return c.store.ListMessages(ctx, parentID)
}

func (c *RealChannel) Send(ctx context.Context, parentID, authorID, body string) (domain.ChatMessage, error) {
	return c.store.InsertMessage(ctx, domain.ChatMessage{
		ParentID: parentID,
		Sender:   domain.SenderUser,
		Body:     body,
		AuthorID: authorID,
	})
}

func (c *RealChannel) AttachDocument(ctx context.Context, parentID, authorID string, att Attachment) (domain.ChatDocument, error) {
	if err := validateAttachment(att); err != nil {
		return domain.ChatDocument{}, err
	}

	path := fmt.Sprintf("%s/%d_%s", parentID, c.now().UnixMilli(), att.Name)
	if err := c.blobs.Upload(ctx, c.bucket, path, "application/pdf", att.Content); err != nil {
		return domain.ChatDocument{}, err
	}

	doc, err := c.store.InsertDocument(ctx, domain.ChatDocument{
		ParentID:    parentID,
		Name:        att.Name,
		StoragePath: path,
		SizeBytes:   att.SizeBytes,
		ContentType: "application/pdf",
	})
	if err != nil {
		return domain.ChatDocument{}, err
	}

	// The attachment shows up in the thread as a system entry.
	if _, err := c.store.InsertMessage(ctx, domain.ChatMessage{
		ParentID: parentID,
		Sender:   domain.SenderSystem,
		Body:     fmt.Sprintf("Document attached: %s", att.Name),
		AuthorID: authorID,
	}); err != nil {
		c.logger.Warn("chat: attachment system message failed",
			zap.String("parent_id", parentID),
			zap.Error(err),
		)
	}

	return doc, nil
}

func (c *RealChannel) Documents(ctx context.Context, parentID string) ([]domain.ChatDocument, error) {
	return c.store.ListDocuments(ctx, parentID)
}

func (c *RealChannel) DocumentURL(doc domain.ChatDocument) string {
	return c.blobs.PublicURL(c.bucket, doc.StoragePath)
}
