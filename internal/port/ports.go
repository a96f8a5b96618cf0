// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// Gateway is the remote table interface a resource store drives. One typed
// instance exists per entity; the Supabase adapter implements all of them.
type Gateway[T any, I any] interface {
	// FetchAll returns every row for the entity, newest first.
	FetchAll(ctx context.Context) ([]T, error)

	// Create inserts a row and returns the server representation,
	// including the server-assigned id (and sequence where applicable).
	Create(ctx context.Context, input I) (T, error)

	// Update patches the row with the given id and returns the updated
	// server representation.
	Update(ctx context.Context, id string, patch map[string]any) (T, error)

	// Delete removes the row with the given id.
	Delete(ctx context.Context, id string) error
}

// Notifier is the transient user-facing message surface. Implementations
// must be non-blocking and must never return an error to the caller.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// BlobStore is the storage sub-interface of the hosted backend.
type BlobStore interface {
	Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error
	Download(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, bucket, path string) error
	List(ctx context.Context, bucket, prefix string) ([]domain.StoredFile, error)

	// PublicURL returns the unauthenticated retrieval URL for an object.
	// No signing or expiry semantics.
	PublicURL(bucket, path string) string
}

// ChatStore persists chat messages and document metadata for one parent
// record type (requests, occurrences, simulations share the same tables).
type ChatStore interface {
	ListMessages(ctx context.Context, parentID string) ([]domain.ChatMessage, error)
	InsertMessage(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)
	ListDocuments(ctx context.Context, parentID string) ([]domain.ChatDocument, error)
	InsertDocument(ctx context.Context, doc domain.ChatDocument) (domain.ChatDocument, error)
}

// AuthStore defines the data operations behind the authentication flows.
type AuthStore interface {
	GetPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error)
	GetPrincipalByID(ctx context.Context, id string) (*domain.Principal, error)
	UpdatePrincipal(ctx context.Context, id string, updates map[string]any) error

	StoreRefreshToken(ctx context.Context, principalID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, principalID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
