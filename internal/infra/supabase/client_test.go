package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/resilience"
	"github.com/enerlink/parceiros-api-go/internal/infra/supabase"
)

func newTestClient(baseURL string) *supabase.Client {
	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond}
	cb := resilience.NewCircuitBreaker("supabase-test")
	return supabase.NewClient(&http.Client{Timeout: time.Second}, baseURL, "anon", "service", cb, cfg, zap.NewNop())
}

func TestWritesTripBreakerWhenBackendDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	gw := supabase.NewContactsGateway(newTestClient(server.URL))
	in := domain.ContactInput{Name: "Empresa Sol", Email: "sol@empresa.pt", Phone: "910000000", Company: "Empresa Sol SA"}

	for i := 0; i < 3; i++ {
		_, err := gw.Create(context.Background(), in)
		var ext *domain.ErrExternalService
		if !errors.As(err, &ext) {
			t.Fatalf("create %d: expected external service error, got %v", i, err)
		}
	}

	_, err := gw.Create(context.Background(), in)
	var open *domain.ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("expected open circuit after repeated failures, got %v", err)
	}
}

func TestConflictDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate key"}`))
	}))
	defer server.Close()

	gw := supabase.NewContactsGateway(newTestClient(server.URL))
	in := domain.ContactInput{Name: "Empresa Sol", Email: "sol@empresa.pt", Phone: "910000000", Company: "Empresa Sol SA"}

	for i := 0; i < 5; i++ {
		_, err := gw.Create(context.Background(), in)
		var conflict *domain.ErrConflict
		if !errors.As(err, &conflict) {
			t.Fatalf("create %d: expected conflict, got %v", i, err)
		}
	}
	if hits.Load() != 5 {
		t.Errorf("expected every conflict to reach the backend, got %d hits", hits.Load())
	}
}

func TestPrincipalEmailFilterIsEscaped(t *testing.T) {
	var gotEmail, gotRole string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotEmail = q.Get("email")
		gotRole = q.Get("role")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	// A crafted address must stay inside the email filter instead of
	// smuggling extra PostgREST parameters.
	_, err := c.GetPrincipalByEmail(context.Background(), "ana&role=eq.admin@empresa.pt")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if gotEmail != "eq.ana&role=eq.admin@empresa.pt" {
		t.Errorf("email filter mangled: %q", gotEmail)
	}
	if gotRole != "" {
		t.Errorf("injected role filter reached the backend: %q", gotRole)
	}
}

func TestRowIDFilterIsEscaped(t *testing.T) {
	var gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("id")
		w.Write([]byte(`[{"id":"c-1","name":"Empresa Sol"}]`))
	}))
	defer server.Close()

	gw := supabase.NewContactsGateway(newTestClient(server.URL))
	_, err := gw.Update(context.Background(), "c-1&select=password_hash", map[string]any{"phone": "911111111"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotID != "eq.c-1&select=password_hash" {
		t.Errorf("id filter mangled: %q", gotID)
	}
}
