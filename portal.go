package goPortal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goPortal/interceptor"
	"github.com/MrEthical07/goPortal/internal/audit"
	"github.com/MrEthical07/goPortal/internal/logs"
	"github.com/MrEthical07/goPortal/jwt"
	"github.com/MrEthical07/goPortal/navigation"
	"github.com/MrEthical07/goPortal/session"
)

// Portal is a headless portal client: one session, one router and an HTTP
// client whose every call runs through the interceptor chain.
type Portal struct {
	cfg     Config
	log     logs.Logger
	baseURL *url.URL

	store  *session.Store
	guard  *navigation.Guard
	routes *navigation.Table
	router *navigation.Router
	chain  *interceptor.Chain
	client *http.Client

	metrics      *Metrics
	audit        *audit.Dispatcher
	closeStorage func() error
	// ownsLog is set when the builder created log and must release it.
	ownsLog bool

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Config returns the configuration the portal was built with.
func (p *Portal) Config() Config {
	return p.cfg
}

// Session returns a copy of the logged-in user, or nil.
func (p *Portal) Session() *session.User {
	return p.store.User()
}

// Notification returns the notification currently showing.
func (p *Portal) Notification() session.Notification {
	return p.store.Notification()
}

// State classifies the session against the current time.
func (p *Portal) State() navigation.State {
	return p.guard.State()
}

// Current returns the route path the router is on.
func (p *Portal) Current() string {
	return p.router.Current()
}

// Routes returns the active route table.
func (p *Portal) Routes() *navigation.Table {
	return p.router.Table()
}

// HTTPClient returns the client that runs the interceptor chain.
func (p *Portal) HTTPClient() *http.Client {
	return p.client
}

// Navigate runs the guard for path and moves the router. The returned
// decision says where the router landed. The error is non-nil only when the
// landing path has no route.
func (p *Portal) Navigate(path string) (navigation.Decision, error) {
	tr, err := p.router.Navigate(path)
	return tr.Decision, err
}

// Do issues a backend call through the interceptor chain. Non-2xx statuses
// are not errors; they come back in the Response after the chain has
// applied its effects. Only transport failures are returned as errors.
func (p *Portal) Do(ctx context.Context, method, path string, body []byte) (*interceptor.Response, error) {
	if p.closed.Load() {
		return nil, ErrPortalClosed
	}
	ctx = ensureRequestID(ctx)

	target, err := url.Parse(strings.TrimSuffix(p.baseURL.String(), "/") + path)
	if err != nil {
		return nil, fmt.Errorf("build url for %s: %w", path, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", logs.LogID(ctx))

	httpResp, err := p.client.Do(req)
	if err != nil {
		p.metrics.Inc(MetricRequestFailed)
		p.log.CtxWarn(ctx, "%s %s failed: %v", method, path, err)
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		p.metrics.Inc(MetricRequestFailed)
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	limit := p.cfg.API.MaxInspectBytes
	if limit <= 0 {
		limit = interceptor.DefaultMaxInspectBytes
	}
	if int64(len(data)) > limit {
		return &interceptor.Response{Status: httpResp.StatusCode, Body: data}, nil
	}
	resp := interceptor.ParseResponse(httpResp.StatusCode, data)
	return &resp, nil
}

// Submit navigates to routePath and, when the guard allows it, issues the
// route's backend action with body. params fill ":name" placeholders in the
// action path. A redirect returns [ErrRedirected] without calling the backend.
func (p *Portal) Submit(ctx context.Context, routePath string, params map[string]string, body []byte) (*interceptor.Response, error) {
	tr, err := p.router.Navigate(routePath)
	if err != nil {
		return nil, err
	}
	if !tr.Decision.Allowed() {
		return nil, fmt.Errorf("%w: %s -> %s (%s)", ErrRedirected, routePath, tr.Decision.Path, tr.Decision.Reason)
	}
	if tr.Route.Action == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAction, routePath)
	}

	apiPath, err := tr.Route.Action.Resolve(params)
	if err != nil {
		return nil, err
	}
	return p.Do(ctx, tr.Route.Action.Method, apiPath, body)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	Token  string `json:"token"`
	Expire string `json:"expire"`
}

// Login posts credentials to the backend login call and, on success, makes
// the returned token the session. The token is decoded, not verified, to
// read its expiry. A rejected login leaves the session untouched and the
// backend's message as the danger notification.
func (p *Portal) Login(ctx context.Context, username, password string) (*session.User, error) {
	ctx = ensureRequestID(ctx)

	payload, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := p.Do(ctx, http.MethodPost, p.cfg.API.LoginPath, payload)
	if err != nil {
		p.loginFailed(ctx, username, 0, err)
		return nil, err
	}
	if resp.Status != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrLoginRejected, resp.Status)
		if resp.HasMessage() {
			err = fmt.Errorf("%w: status %d: %s", ErrLoginRejected, resp.Status, resp.Message)
		}
		p.loginFailed(ctx, username, resp.Status, err)
		return nil, err
	}

	user, err := userFromLoginReply(resp.Body, username)
	if err != nil {
		p.loginFailed(ctx, username, resp.Status, err)
		return nil, err
	}

	p.store.SetUser(user)
	p.metrics.Inc(MetricLoginSuccess)
	p.log.CtxInfo(ctx, "logged in as %s, token expires %s", user.Username, formatExpiry(user.Expiry))
	p.emitAudit(ctx, AuditEvent{
		EventType: AuditLoginSuccess,
		Username:  user.Username,
		Path:      p.cfg.API.LoginPath,
		Status:    resp.Status,
		Success:   true,
	})
	return p.store.User(), nil
}

func userFromLoginReply(body []byte, username string) (*session.User, error) {
	var reply loginReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginResponse, err)
	}
	if reply.Token == "" {
		return nil, fmt.Errorf("%w: no token", ErrLoginResponse)
	}

	claims, err := jwt.Decode(reply.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginResponse, err)
	}

	user := &session.User{
		Token:    reply.Token,
		Expiry:   claims.Expiry(),
		Username: claims.Username(),
	}
	if user.Expiry == 0 && reply.Expire != "" {
		if t, err := time.Parse(time.RFC3339, reply.Expire); err == nil {
			user.Expiry = t.Unix()
		}
	}
	if user.Username == "" {
		user.Username = username
	}
	return user, nil
}

func (p *Portal) loginFailed(ctx context.Context, username string, status int, err error) {
	p.metrics.Inc(MetricLoginFailure)
	p.log.CtxWarn(ctx, "login as %s failed: %v", username, err)
	p.emitAudit(ctx, AuditEvent{
		EventType: AuditLoginFailure,
		Username:  username,
		Path:      p.cfg.API.LoginPath,
		Status:    status,
		Error:     err.Error(),
	})
}

// Logout clears the session. Under write-through persistence the
// persisted record is removed as well.
func (p *Portal) Logout(ctx context.Context) {
	ctx = ensureRequestID(ctx)
	user := p.store.User()
	p.store.SetUser(nil)

	p.metrics.Inc(MetricLogout)
	var name string
	if user != nil {
		name = user.Username
	}
	p.log.CtxInfo(ctx, "logged out %s", name)
	p.emitAudit(ctx, AuditEvent{EventType: AuditLogout, Username: name, Success: true})
}

// FeatureToggles fetches the backend's feature switches and hides the
// routes of disabled subsystems.
func (p *Portal) FeatureToggles(ctx context.Context) (navigation.FeatureToggles, error) {
	resp, err := p.Do(ctx, http.MethodGet, p.cfg.API.ConfigPath, nil)
	if err != nil {
		return navigation.FeatureToggles{}, err
	}
	if resp.Status != http.StatusOK {
		return navigation.FeatureToggles{}, fmt.Errorf("%w: status %d", ErrFeatureToggles, resp.Status)
	}

	var toggles navigation.FeatureToggles
	if err := json.Unmarshal(resp.Body, &toggles); err != nil {
		return navigation.FeatureToggles{}, fmt.Errorf("%w: %v", ErrFeatureToggles, err)
	}
	p.router.SetTable(p.routes.Filter(toggles))
	return toggles, nil
}

// MetricsSnapshot returns the portal counters.
func (p *Portal) MetricsSnapshot() MetricsSnapshot {
	return p.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to backpressure.
func (p *Portal) AuditDropped() uint64 {
	return p.audit.Dropped()
}

// Close flushes pending audit events and releases storage the portal
// opened. Calls after Close return [ErrPortalClosed].
func (p *Portal) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.audit.Close()
		if p.closeStorage != nil {
			p.closeErr = p.closeStorage()
		}
		if p.ownsLog {
			if err := logs.Close(p.log); err != nil && p.closeErr == nil {
				p.closeErr = err
			}
		}
	})
	return p.closeErr
}

func (p *Portal) observeTransition(tr navigation.Transition) {
	if tr.Decision.Allowed() {
		p.metrics.Inc(MetricNavigationAllowed)
		return
	}

	p.metrics.Inc(MetricNavigationRedirected)
	if tr.Decision.Reason == navigation.StateExpired {
		p.metrics.Inc(MetricNavigationExpired)
	}
	p.emitAudit(context.Background(), AuditEvent{
		EventType: AuditNavigationRedirect,
		Path:      tr.Target,
		Metadata: map[string]string{
			"redirect": tr.Decision.Path,
			"state":    tr.Decision.Reason.String(),
		},
	})
}

func (p *Portal) observeEffect(req interceptor.Request, resp interceptor.Response, effect interceptor.Effect) {
	switch effect.Kind {
	case interceptor.EffectNotify:
		switch effect.Notification.Severity {
		case session.SeveritySuccess:
			p.metrics.Inc(MetricNotificationSuccess)
		case session.SeverityDanger:
			p.metrics.Inc(MetricNotificationDanger)
		}
	case interceptor.EffectLogout:
		p.metrics.Inc(MetricForcedLogout)
		p.log.Warn("backend rejected the session on %s %s, logged out", req.Method, req.Path)
		p.emitAudit(context.Background(), AuditEvent{
			EventType: AuditForcedLogout,
			Path:      req.Path,
			Status:    resp.Status,
			Metadata:  map[string]string{"method": req.Method},
		})
	}
}

func (p *Portal) observeRequest(req interceptor.Request, resp interceptor.Response, elapsed time.Duration) {
	if req.Header.Has("Authorization") {
		p.metrics.Inc(MetricRequestAuthorized)
	} else {
		p.metrics.Inc(MetricRequestAnonymous)
	}
	p.metrics.Observe(MetricRequestLatency, elapsed)
	if resp.Status >= http.StatusInternalServerError {
		p.log.Warn("%s %s returned %d", req.Method, req.Path, resp.Status)
	}
}

func formatExpiry(exp int64) string {
	if exp == 0 {
		return "never"
	}
	return time.Unix(exp, 0).UTC().Format(time.RFC3339) + " (" + strconv.FormatInt(exp, 10) + ")"
}
