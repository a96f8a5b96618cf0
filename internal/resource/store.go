// Package resource implements the per-entity session store: an in-memory
// collection kept authoritative for the session, mutated only through the
// remote gateway.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/port"
)

// Store mirrors one remote table in memory. Every mutation goes through the
// gateway first; the collection only changes after the gateway succeeds, so a
// failed call leaves the previous state intact.
type Store[T any, I any] struct {
	name     string
	gateway  port.Gateway[T, I]
	notifier port.Notifier
	logger   *zap.Logger
	validate func(I) error
	idOf     func(T) string

	mu    sync.RWMutex
	items []T
}

// NewStore builds a session store for one entity. validate runs before any
// remote call on Create and may be nil; idOf extracts the row id used by
// Update, Delete and GetByID.
func NewStore[T any, I any](
	name string,
	gateway port.Gateway[T, I],
	notifier port.Notifier,
	logger *zap.Logger,
	validate func(I) error,
	idOf func(T) string,
) *Store[T, I] {
	return &Store[T, I]{
		name:     name,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
		validate: validate,
		idOf:     idOf,
	}
}

// List returns a snapshot copy of the collection in last-fetch order.
func (s *Store[T, I]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the current collection size without copying.
func (s *Store[T, I]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// FetchAll replaces the collection wholesale with the gateway result. On
// error the previous collection is kept and one error notification is emitted.
func (s *Store[T, I]) FetchAll(ctx context.Context) error {
	rows, err := s.gateway.FetchAll(ctx)
	if err != nil {
		s.logger.Error("fetch failed", zap.String("resource", s.name), zap.Error(err))
		s.notifier.Error(fmt.Sprintf("Could not load %s. Showing the last known data.", s.name))
		return err
	}

	s.mu.Lock()
	s.items = rows
	s.mu.Unlock()
	return nil
}

// Create validates the input, inserts through the gateway and prepends the
// server-returned row. Exactly one notification is emitted per outcome; the
// returned error is for caller control flow only.
func (s *Store[T, I]) Create(ctx context.Context, input I) (T, error) {
	var zero T

	if s.validate != nil {
		if err := s.validate(input); err != nil {
			s.notifier.Error(fmt.Sprintf("Could not create %s: please review the highlighted fields.", s.name))
			return zero, err
		}
	}

	row, err := s.gateway.Create(ctx, input)
	if err != nil {
		s.logger.Error("create failed", zap.String("resource", s.name), zap.Error(err))
		s.notifyFailure("create", err)
		return zero, err
	}

	s.mu.Lock()
	s.items = append([]T{row}, s.items...)
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("New %s created.", singular(s.name)))
	return row, nil
}

// Update patches the row remotely and replaces the matching in-memory entry
// with the server representation.
func (s *Store[T, I]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T

	row, err := s.gateway.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("update failed", zap.String("resource", s.name), zap.String("id", id), zap.Error(err))
		s.notifyFailure("update", err)
		return zero, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.idOf(s.items[i]) == id {
			s.items[i] = row
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("%s updated.", titled(singular(s.name))))
	return row, nil
}

// Delete removes the row remotely, then from the collection.
func (s *Store[T, I]) Delete(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.logger.Error("delete failed", zap.String("resource", s.name), zap.String("id", id), zap.Error(err))
		s.notifyFailure("delete", err)
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.idOf(s.items[i]) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notifier.Success(fmt.Sprintf("%s deleted.", titled(singular(s.name))))
	return nil
}

// GetByID looks the row up in memory only. It never reaches the gateway.
func (s *Store[T, I]) GetByID(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.items {
		if s.idOf(s.items[i]) == id {
			return s.items[i], nil
		}
	}
	var zero T
	return zero, &domain.ErrNotFound{Resource: singular(s.name), ID: id}
}

func (s *Store[T, I]) notifyFailure(op string, err error) {
	var conflict *domain.ErrConflict
	if errors.As(err, &conflict) {
		s.notifier.Error(fmt.Sprintf("A %s with these details already exists.", singular(s.name)))
		return
	}
	s.notifier.Error(fmt.Sprintf("Could not %s %s. Please try again.", op, singular(s.name)))
}

// singular trims the plural resource name used in routes ("contacts") down
// to the form used in user-facing messages ("contact").
func singular(name string) string {
	if len(name) > 1 && name[len(name)-1] == 's' {
		return name[:len(name)-1]
	}
	return name
}

func titled(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}
