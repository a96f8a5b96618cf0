package cache_test

import (
	"testing"
	"time"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/cache"
)

func TestListingRoundTrip(t *testing.T) {
	c := cache.New[[]domain.StoredFile](5 * time.Minute)

	files := []domain.StoredFile{{Name: "contrato-509.pdf", Path: "contracts/contrato-509.pdf"}}
	c.Set("files:contracts", files)

	got, ok := c.Get("files:contracts")
	if !ok {
		t.Fatal("expected listing to be cached")
	}
	if len(got) != 1 || got[0].Path != "contracts/contrato-509.pdf" {
		t.Errorf("unexpected listing: %+v", got)
	}
}

func TestMissOnUnknownPrefix(t *testing.T) {
	c := cache.New[[]domain.StoredFile](5 * time.Minute)

	if _, ok := c.Get("files:invoices"); ok {
		t.Fatal("expected miss for prefix never listed")
	}
}

func TestEntryExpires(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("files:contracts", "listing")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("files:contracts"); ok {
		t.Fatal("expected entry to expire after TTL")
	}
	if n := c.Len(); n != 0 {
		t.Errorf("expected 0 live entries, got %d", n)
	}
}

func TestDeleteInvalidatesAfterUpload(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("files:contracts", "stale listing")
	c.Delete("files:contracts")

	if _, ok := c.Get("files:contracts"); ok {
		t.Fatal("expected key to be gone after invalidation")
	}
}

func TestLenCountsLiveEntries(t *testing.T) {
	c := cache.New[int](5 * time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	if n := c.Len(); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}
