package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/chat"
	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/handler"
	"github.com/enerlink/parceiros-api-go/internal/infra/cache"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
	"github.com/enerlink/parceiros-api-go/internal/infra/resilience"
	"github.com/enerlink/parceiros-api-go/internal/infra/supabase"
	"github.com/enerlink/parceiros-api-go/internal/notify"
	"github.com/enerlink/parceiros-api-go/internal/service"

	"go.uber.org/zap"
)

// backendDouble emulates the hosted backend's REST surface for the tables
// the portal reads and writes.
type backendDouble struct {
	mu       sync.Mutex
	contacts []map[string]any
	nextID   int
}

func (b *backendDouble) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/rest/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(b.contacts)
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			var row map[string]any
			json.Unmarshal(body, &row)
			b.nextID++
			row["id"] = fmt.Sprintf("c-%d", b.nextID)
			row["created_at"] = time.Now().Format(time.RFC3339)
			b.contacts = append([]map[string]any{row}, b.contacts...)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	// Remaining tables start empty.
	for _, table := range []string{"contracts", "requests", "occurrences", "users", "simulations"} {
		mux.HandleFunc("/rest/v1/"+table, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.Method == http.MethodGet {
				io.WriteString(w, "[]")
				return
			}
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, "[]")
		})
	}

	return mux
}

func newPortal(t *testing.T, baseURL string) (*service.PortalService, http.Handler, *notify.Recorder) {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	client := supabase.NewClient(httpClient, baseURL, "anon-key", "service-key", cb, cfg, logger)

	events := notify.NewRecorder(64)
	portal := service.NewPortalService(service.Gateways{
		Contacts:    supabase.NewContactsGateway(client),
		Contracts:   supabase.NewContractsGateway(client),
		Requests:    supabase.NewRequestsGateway(client),
		Occurrences: supabase.NewOccurrencesGateway(client),
		Users:       supabase.NewUsersGateway(client),
		Simulations: supabase.NewSimulationsGateway(client),
	}, events, logger)

	filesCache := cache.New[[]domain.StoredFile](time.Minute)
	filesSvc := service.NewFilesService(client, "partner-files", filesCache, metrics, logger)

	channel := chat.NewSimulatedChannel(context.Background(), 10*time.Millisecond)
	router := handler.NewRouter(portal, filesSvc, channel, nil, events, metrics, []string{"*"}, logger)
	return portal, router, events
}

// TestIntegration_ContactLifecycle drives the full flow: initial load from
// the backend, create through the API, and the collection reflecting the
// server-assigned row.
func TestIntegration_ContactLifecycle(t *testing.T) {
	backend := &backendDouble{
		contacts: []map[string]any{
			{"id": "c-1", "name": "Empresa Sol", "email": "sol@empresa.pt", "created_at": time.Now().Format(time.RFC3339)},
		},
		nextID: 1,
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	portal, router, _ := newPortal(t, server.URL)

	if err := portal.RefreshAll(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	// List reflects the backend rows.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/contacts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var listResp struct {
		Items []domain.Contact `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listResp.Items) != 1 {
		t.Fatalf("expected 1 contact after load, got %d", len(listResp.Items))
	}

	// Create goes through to the backend and the server row comes back.
	body, _ := json.Marshal(domain.ContactInput{Name: "Empresa Lua", Email: "lua@empresa.pt", Phone: "961111222", Company: "Empresa Lua SA"})
	req := httptest.NewRequest(http.MethodPost, "/v1/contacts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var created domain.Contact
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a server-assigned id")
	}

	// The new row is first in the collection without another fetch.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/contacts", nil))
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listResp.Items) != 2 {
		t.Fatalf("expected 2 contacts after create, got %d", len(listResp.Items))
	}
	if listResp.Items[0].Name != "Empresa Lua" {
		t.Errorf("expected new contact first, got %q", listResp.Items[0].Name)
	}
}

// TestIntegration_BackendDownKeepsStaleData checks that a failing backend
// leaves previously loaded rows intact and surfaces one error notification.
func TestIntegration_BackendDownKeepsStaleData(t *testing.T) {
	backend := &backendDouble{
		contacts: []map[string]any{
			{"id": "c-1", "name": "Empresa Sol", "email": "sol@empresa.pt", "created_at": time.Now().Format(time.RFC3339)},
		},
		nextID: 1,
	}
	server := httptest.NewServer(backend.handler())

	portal, router, events := newPortal(t, server.URL)

	if err := portal.RefreshAll(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	events.Drain()

	server.Close()

	if err := portal.Contacts.FetchAll(context.Background()); err == nil {
		t.Fatal("expected fetch against closed backend to fail")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/contacts", nil))
	var listResp struct {
		Items []domain.Contact `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listResp.Items) != 1 {
		t.Fatalf("expected stale contact to survive, got %d rows", len(listResp.Items))
	}

	errors := 0
	for _, n := range events.Drain() {
		if n.Level == notify.LevelError && strings.Contains(n.Message, "contacts") {
			errors++
		}
	}
	if errors != 1 {
		t.Errorf("expected exactly one error notification, got %d", errors)
	}
}
