package catalogcache_test

import (
	"path/filepath"
	"testing"
	"time"

	"watchlog/internal/catalogcache"
)

func TestPutGetAndExpiry(t *testing.T) {
	cache, err := catalogcache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return now })

	if err := cache.Put(catalogcache.KindShow, "6", []byte(`{"id":6}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	payload, ok := cache.Get(catalogcache.KindShow, "6")
	if !ok || string(payload) != `{"id":6}` {
		t.Fatalf("unexpected cached payload %q ok=%v", payload, ok)
	}
	if _, ok := cache.Get(catalogcache.KindEpisodes, "6"); ok {
		t.Fatal("kinds must not share keys")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := cache.Get(catalogcache.KindShow, "6"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestPurge(t *testing.T) {
	cache, err := catalogcache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	_ = cache.Put(catalogcache.KindShow, "1", []byte(`{}`))
	_ = cache.Put(catalogcache.KindLookup, "tt0096697", []byte(`"83"`))
	removed, err := cache.Purge()
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed entries, got %d", removed)
	}
	if _, ok := cache.Get(catalogcache.KindShow, "1"); ok {
		t.Fatal("expected purged entry to be gone")
	}
}

func TestDisabledCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	cache, err := catalogcache.Open(path, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if cache.Enabled() {
		t.Fatal("expected zero ttl to disable cache")
	}
	if err := cache.Put(catalogcache.KindShow, "1", []byte(`{}`)); err != nil {
		t.Fatalf("Put on disabled cache failed: %v", err)
	}
	if _, ok := cache.Get(catalogcache.KindShow, "1"); ok {
		t.Fatal("disabled cache returned data")
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
