//go:build integration
// +build integration

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	goPortal "github.com/MrEthical07/goPortal"
	"github.com/MrEthical07/goPortal/internal/logs"
)

// backend is a stand-in for the portal API: a login call issuing a signed
// token and one protected call that answers 401 once the token is revoked.
type backend struct {
	srv     *httptest.Server
	token   string
	revoked atomic.Bool
}

func newBackend(t *testing.T) *backend {
	t.Helper()

	b := &backend{}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, gjwt.MapClaims{
		"id":  "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("integration"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	b.token = tok

	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"code": 200, "token": b.token})
	})
	mux.HandleFunc("GET /api/aws/s3", func(w http.ResponseWriter, r *http.Request) {
		if b.revoked.Load() || r.Header.Get("Authorization") != "Bearer "+b.token {
			reply(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Token is expired"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"buckets": []string{}})
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func buildPortal(t *testing.T, baseURL string, rdb redis.UniversalClient, mutate func(*goPortal.Config)) *goPortal.Portal {
	t.Helper()

	cfg := goPortal.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.Storage.Backend = goPortal.StorageRedis
	cfg.Storage.Redis.Prefix = "it"
	if mutate != nil {
		mutate(&cfg)
	}

	p, err := goPortal.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithLogger(logs.Discard()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// redisMode describes which Redis backend the suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the Redis backends to test. miniredis is always
// available; a real server is added when REDIS_ADDR is set.
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	return modes
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}
