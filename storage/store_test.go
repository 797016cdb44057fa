package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "ssp", "https://ssp.example.com", ttl)
	return store, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func backends(t *testing.T) map[string]KeyValueStore {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir(), "https://ssp.example.com")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	redisStore, _, done := newRedisStoreTest(t, 0)
	t.Cleanup(done)

	return map[string]KeyValueStore{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"redis":  redisStore,
	}
}

func TestKeyValueStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on empty store, got %v", err)
			}

			if err := store.Set(ctx, DefaultKey, []byte(`{"token":"abc"}`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := store.Get(ctx, DefaultKey)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `{"token":"abc"}` {
				t.Fatalf("unexpected value %q", got)
			}

			if err := store.Set(ctx, DefaultKey, []byte("null")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err = store.Get(ctx, DefaultKey)
			if err != nil || string(got) != "null" {
				t.Fatalf("expected overwritten value, got %q err=%v", got, err)
			}

			if err := store.Delete(ctx, DefaultKey); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete(ctx, DefaultKey); err != nil {
				t.Fatalf("second delete should be idempotent: %v", err)
			}
			if _, err := store.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestKeyValueStoreRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "  ", "../escape", `a\b`} {
				if err := store.Set(ctx, key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("Set(%q): expected ErrInvalidKey, got %v", key, err)
				}
				if _, err := store.Get(ctx, key); !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("Get(%q): expected ErrInvalidKey, got %v", key, err)
				}
			}
		})
	}
}

func TestFileStoreIsOriginScoped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, _ := NewFileStore(dir, "https://a.example.com")
	b, _ := NewFileStore(dir, "https://b.example.com")

	if err := a.Set(ctx, DefaultKey, []byte("a")); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if _, err := b.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected origin b to be isolated from origin a, got %v", err)
	}

	info, err := os.Stat(filepath.Join(a.Dir(), DefaultKey+".json"))
	if err != nil {
		t.Fatalf("stat record: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected record mode 0600, got %o", perm)
	}

	entries, err := os.ReadDir(a.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestRedisStoreNamespaceAndTTL(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	if err := store.Set(ctx, DefaultKey, []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw := "ssp:https_ssp.example.com:" + DefaultKey
	if !mr.Exists(raw) {
		t.Fatalf("expected namespaced key %q, got keys %v", raw, mr.Keys())
	}
	if ttl := mr.TTL(raw); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record to age out, got %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := NewRedisStore(rdb, "", "", 0)
	mr.Close()

	_, err = store.Get(context.Background(), DefaultKey)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ping to fail with ErrUnavailable, got %v", err)
	}
}

func TestOriginScope(t *testing.T) {
	cases := map[string]string{
		"":                           "default",
		"https://ssp.example.com":    "https_ssp.example.com",
		"http://localhost:8000/api/": "http_localhost_8000",
		"not a url/with slashes":     "not_a_url_with_slashes",
	}
	for in, want := range cases {
		if got := OriginScope(in); got != want {
			t.Fatalf("OriginScope(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidKey(t *testing.T) {
	cases := map[string]bool{
		DefaultKey:       true,
		"ssp-session.v2": true,
		"":               false,
		"   ":            false,
		"a/b":            false,
		`a\b`:            false,
		"a\x00b":         false,
	}
	for key, want := range cases {
		if got := ValidKey(key); got != want {
			t.Fatalf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}
