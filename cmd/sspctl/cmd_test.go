package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	gjwt "github.com/golang-jwt/jwt/v5"

	goPortal "github.com/MrEthical07/goPortal"
)

func init() {
	color.NoColor = true
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	exp := time.Now().Add(time.Hour).Unix()
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, gjwt.MapClaims{
		"id":  "jdoe",
		"exp": exp,
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	reply := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "secret" {
			reply(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Incorrect Username / Password"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"code": 200, "token": token, "expire": time.Unix(exp, 0).Format(time.RFC3339)})
	})
	mux.HandleFunc("GET /config", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]bool{"gluster": false, "ddc": true})
	})
	mux.HandleFunc("POST /api/ose/quotas", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			reply(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Token is expired"})
			return
		}
		reply(w, http.StatusOK, map[string]string{"message": "Quota updated"})
	})
	mux.HandleFunc("GET /api/ose/project/{project}/admins", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]any{"project": r.PathValue("project")})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	t        *testing.T
	baseURL  string
	stateDir string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, baseURL: newBackend(t).URL, stateDir: t.TempDir()}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	app.Reader = strings.NewReader("")
	argv := append([]string{
		"sspctl",
		"--base-url", h.baseURL,
		"--storage", "file",
		"--state-dir", h.stateDir,
		"--log-level", "error",
	}, args...)
	err := app.Run(context.Background(), argv)
	return buf.String(), err
}

func TestLoginCallLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "-u", "jdoe", "-p", "secret")
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Logged in as jdoe") {
		t.Fatalf("unexpected login output: %q", out)
	}

	out, err = h.run("status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Session:  jdoe, token expires") {
		t.Fatalf("status did not report the restored session: %q", out)
	}

	out, err = h.run("call", "-d", `{"project":"p1"}`, "post", "/api/ose/quotas")
	if err != nil {
		t.Fatalf("call failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "✔ Quota updated") {
		t.Fatalf("expected success notification, got %q", out)
	}

	out, err = h.run("logout")
	if err != nil || !strings.Contains(out, "Logged out") {
		t.Fatalf("logout: err=%v out=%q", err, out)
	}

	out, _ = h.run("status")
	if !strings.Contains(out, "not logged in") {
		t.Fatalf("expected logged out status, got %q", out)
	}
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "-u", "jdoe", "-p", "wrong")
	if !errors.Is(err, goPortal.ErrLoginRejected) {
		t.Fatalf("expected ErrLoginRejected, got %v", err)
	}
	if !strings.Contains(out, "✘ Incorrect Username / Password") {
		t.Fatalf("expected danger notification, got %q", out)
	}
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.Reader = strings.NewReader("secret\n")
	err := app.Run(context.Background(), []string{
		"sspctl", "--base-url", h.baseURL, "--state-dir", h.stateDir, "--log-level", "error",
		"login", "-u", "jdoe",
	})
	if err != nil {
		t.Fatalf("login failed: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "Password: Logged in as jdoe") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestCallWithoutSessionForcesNotification(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("call", "POST", "/api/ose/quotas")
	if err == nil {
		t.Fatalf("expected error for 401")
	}
	if !strings.Contains(out, "✘ Your session has expired") {
		t.Fatalf("expected session expired notification, got %q", out)
	}
}

func TestCallRejectsRelativePath(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("call", "GET", "api/aws/s3"); err == nil {
		t.Fatalf("expected error for relative path")
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("submit", "-d", `{}`, "/ose/editquotas")
	if !errors.Is(err, goPortal.ErrRedirected) {
		t.Fatalf("expected ErrRedirected, got %v", err)
	}
}

func TestSubmitResolvesParams(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("login", "-u", "jdoe", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	out, err := h.run("submit", "--param", "project=team a", "/ose/adminlist")
	if err != nil {
		t.Fatalf("submit failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"project": "team a"`) {
		t.Fatalf("expected pretty printed body, got %q", out)
	}
}

func TestOpenShowsRedirect(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("open", "/ose/editquotas")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !strings.Contains(out, "redirected to /login") || !strings.Contains(out, "[Login]") {
		t.Fatalf("unexpected open output: %q", out)
	}
}

func TestRoutesToggles(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("routes")
	if err != nil {
		t.Fatalf("routes failed: %v", err)
	}
	if !strings.Contains(out, "/gluster/growvolume") {
		t.Fatalf("expected gluster routes without toggles: %q", out)
	}

	out, err = h.run("routes", "--toggles")
	if err != nil {
		t.Fatalf("routes --toggles failed: %v", err)
	}
	if strings.Contains(out, "/gluster/") {
		t.Fatalf("gluster routes should be hidden: %q", out)
	}
	if !strings.Contains(out, "/ddc/billing") {
		t.Fatalf("ddc route should remain: %q", out)
	}
}

func TestMetricsPrometheus(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("metrics")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if !strings.Contains(out, "goportal_navigation_redirected_total 13") {
		t.Fatalf("unexpected metrics output: %q", out)
	}
}

func TestMetricsOTel(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("metrics", "--format", "otel")
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if !strings.Contains(out, "goportal_navigation_allowed_total 1\n") {
		t.Fatalf("unexpected otel output: %q", out)
	}
	if _, err := h.run("metrics", "--format", "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestAuditLogFlag(t *testing.T) {
	h := newHarness(t)
	auditPath := filepath.Join(t.TempDir(), "audit", "events.jsonl")

	if _, err := h.run("--audit-log", auditPath, "login", "-u", "jdoe", "-p", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if !strings.Contains(string(data), goPortal.AuditLoginSuccess) {
		t.Fatalf("expected login audit event, got %q", data)
	}
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"project=p1", "name=a=b"})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if params["project"] != "p1" || params["name"] != "a=b" {
		t.Fatalf("unexpected params: %v", params)
	}
	if _, err := parseParams([]string{"novalue"}); err == nil {
		t.Fatalf("expected error for missing =")
	}
	if params, _ := parseParams(nil); params != nil {
		t.Fatalf("expected nil params")
	}
}
