package chat

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// --- Simulated channel ---

func TestSimulatedSendSchedulesOneReply(t *testing.T) {
	ch := NewSimulatedChannel(context.Background(), 20*time.Millisecond)

	_, err := ch.Send(context.Background(), "req-1", "u-1", "hello")
	require.NoError(t, err)

	history, err := ch.History(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SenderUser, history[0].Sender)

	require.Eventually(t, func() bool {
		h, _ := ch.History(context.Background(), "req-1")
		return len(h) == 2
	}, time.Second, 10*time.Millisecond)

	history, _ = ch.History(context.Background(), "req-1")
	assert.Equal(t, domain.SenderSupport, history[1].Sender)
	assert.NotEmpty(t, history[1].Body)
}

func TestSimulatedReplyCancelledWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := NewSimulatedChannel(ctx, 30*time.Millisecond)

	_, err := ch.Send(context.Background(), "req-1", "u-1", "hello")
	require.NoError(t, err)
	cancel()

	time.Sleep(80 * time.Millisecond)
	history, _ := ch.History(context.Background(), "req-1")
	assert.Len(t, history, 1, "no reply may arrive after the channel context ends")
}

func TestSimulatedThreadsAreIsolated(t *testing.T) {
	ch := NewSimulatedChannel(context.Background(), time.Hour)

	_, _ = ch.Send(context.Background(), "req-1", "u-1", "first")
	_, _ = ch.Send(context.Background(), "req-2", "u-1", "second")

	h1, _ := ch.History(context.Background(), "req-1")
	h2, _ := ch.History(context.Background(), "req-2")
	require.Len(t, h1, 1)
	require.Len(t, h2, 1)
	assert.Equal(t, "first", h1[0].Body)
	assert.Equal(t, "second", h2[0].Body)
}

func TestSimulatedAttachmentRejectsNonPDF(t *testing.T) {
	ch := NewSimulatedChannel(context.Background(), time.Hour)

	_, err := ch.AttachDocument(context.Background(), "req-1", "u-1", Attachment{
		Name:        "notes.txt",
		ContentType: "text/plain",
		SizeBytes:   10,
		Content:     strings.NewReader("0123456789"),
	})
	var inv *domain.ErrInvalidDocument
	require.ErrorAs(t, err, &inv)

	history, _ := ch.History(context.Background(), "req-1")
	assert.Empty(t, history, "rejected attachments leave no trace in the thread")
}

func TestSimulatedAttachmentRejectsEmptyFile(t *testing.T) {
	ch := NewSimulatedChannel(context.Background(), time.Hour)

	_, err := ch.AttachDocument(context.Background(), "req-1", "u-1", Attachment{
		Name:        "empty.pdf",
		ContentType: "application/pdf",
		SizeBytes:   0,
	})
	var inv *domain.ErrInvalidDocument
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Reason, "empty")
}

// --- Real channel ---

type memChatStore struct {
	messages []domain.ChatMessage
	docs     []domain.ChatDocument
}

func (m *memChatStore) ListMessages(ctx context.Context, parentID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, msg := range m.messages {
		if msg.ParentID == parentID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChatStore) InsertMessage(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	msg.ID = "m-1"
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memChatStore) ListDocuments(ctx context.Context, parentID string) ([]domain.ChatDocument, error) {
	return m.docs, nil
}

func (m *memChatStore) InsertDocument(ctx context.Context, doc domain.ChatDocument) (domain.ChatDocument, error) {
	doc.ID = "d-1"
	m.docs = append(m.docs, doc)
	return doc, nil
}

type memBlobStore struct {
	uploads map[string][]byte
}

func (m *memBlobStore) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	data, _ := io.ReadAll(body)
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[bucket+"/"+path] = data
	return nil
}

func (m *memBlobStore) Download(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.uploads[bucket+"/"+path])), nil
}

func (m *memBlobStore) Remove(ctx context.Context, bucket, path string) error { return nil }

func (m *memBlobStore) List(ctx context.Context, bucket, prefix string) ([]domain.StoredFile, error) {
	return nil, nil
}

func (m *memBlobStore) PublicURL(bucket, path string) string {
	return "https://cdn.example/" + bucket + "/" + path
}

func TestRealAttachDocumentStoresUnderTimestampedPath(t *testing.T) {
	store := &memChatStore{}
	blobs := &memBlobStore{}
	ch := NewRealChannel(store, blobs, "chat-documents", zap.NewNop())
	ch.now = func() time.Time { return time.UnixMilli(1700000000000) }

	doc, err := ch.AttachDocument(context.Background(), "req-9", "u-1", Attachment{
		Name:        "invoice.pdf",
		ContentType: "application/pdf",
		SizeBytes:   4,
		Content:     strings.NewReader("%PDF"),
	})
	require.NoError(t, err)

	assert.Equal(t, "req-9/1700000000000_invoice.pdf", doc.StoragePath)
	assert.Contains(t, blobs.uploads, "chat-documents/req-9/1700000000000_invoice.pdf")

	// A system note lands in the thread alongside the document.
	require.Len(t, store.messages, 1)
	assert.Equal(t, domain.SenderSystem, store.messages[0].Sender)
	assert.Contains(t, store.messages[0].Body, "invoice.pdf")

	assert.Equal(t, "https://cdn.example/chat-documents/req-9/1700000000000_invoice.pdf", ch.DocumentURL(doc))
}

func TestRealAttachDocumentRejectsBeforeUpload(t *testing.T) {
	store := &memChatStore{}
	blobs := &memBlobStore{}
	ch := NewRealChannel(store, blobs, "chat-documents", zap.NewNop())

	_, err := ch.AttachDocument(context.Background(), "req-9", "u-1", Attachment{
		Name:        "photo.png",
		ContentType: "image/png",
		SizeBytes:   12,
		Content:     strings.NewReader("not a pdf"),
	})
	var inv *domain.ErrInvalidDocument
	require.ErrorAs(t, err, &inv)
	assert.Empty(t, blobs.uploads, "nothing may reach storage for a rejected file")
	assert.Empty(t, store.messages)
}
