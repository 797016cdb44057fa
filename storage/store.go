package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// DefaultKey is the fixed key the persisted session record lives under.
const DefaultKey = "cloud-ssp"

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// ErrUnavailable wraps backend failures (I/O, network).
var ErrUnavailable = errors.New("storage: backend unavailable")

// ErrInvalidKey is returned for empty keys or keys that cannot be mapped onto the backend.
var ErrInvalidKey = errors.New("storage: invalid key")

// KeyValueStore is an origin-scoped durable key-value store.
//
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// OriginScope turns a base URL into the scope segment the file and redis
// backends namespace keys with, e.g. "https://ssp.example.com:8443/" →
// "https_ssp.example.com_8443". Values that do not parse as URLs are
// sanitized as-is; an empty origin maps to "default".
func OriginScope(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "default"
	}

	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		origin = u.Scheme + "_" + u.Host
	}

	var b strings.Builder
	b.Grow(len(origin))
	for _, r := range origin {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ValidKey reports whether key can be stored by every backend: non-blank
// and free of path separators and NUL.
func ValidKey(key string) bool {
	if strings.TrimSpace(key) == "" {
		return false
	}
	return !strings.ContainsAny(key, "/\\\x00")
}
