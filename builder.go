package goPortal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MrEthical07/goPortal/interceptor"
	"github.com/MrEthical07/goPortal/internal/audit"
	"github.com/MrEthical07/goPortal/internal/logs"
	"github.com/MrEthical07/goPortal/navigation"
	"github.com/MrEthical07/goPortal/session"
	"github.com/MrEthical07/goPortal/storage"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Portal]. It is single use.
type Builder struct {
	config Config

	storage    storage.KeyValueStore
	redis      redis.UniversalClient
	httpClient *http.Client
	auditSink  AuditSink
	logger     logs.Logger
	routes     *navigation.Table
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage sets the persisted record backend, overriding Config.Storage.
func (b *Builder) WithStorage(kv storage.KeyValueStore) *Builder {
	b.storage = kv
	return b
}

// WithRedis supplies the client for the redis backend. The portal does not
// close a client it did not create.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient sets the client used for backend calls. The client is
// copied; its Transport becomes the base of the interceptor transport.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithAuditSink sets the audit sink. Audit must also be enabled in Config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger overrides the logger built from Config.Logging.
func (b *Builder) WithLogger(l logs.Logger) *Builder {
	b.logger = l
	return b
}

// WithRoutes replaces [navigation.DefaultRoutes].
func (b *Builder) WithRoutes(t *navigation.Table) *Builder {
	b.routes = t
	return b
}

// WithClock sets the clock the guard compares expiries against.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, restores the persisted session and
// wires the guard, router and interceptor chain.
//
// A corrupt persisted record is logged and leaves the portal logged out.
// An unreachable backend fails the build with [ErrStorageUnavailable].
func (b *Builder) Build() (*Portal, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, _ := session.ParsePersistPolicy(cfg.Session.Persist)
	baseURL, _ := url.Parse(cfg.API.BaseURL)

	log := b.logger
	ownsLog := false
	if log == nil {
		l, err := logs.New(cfg.Logging.Options())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		log, ownsLog = l, true
	}
	releaseLog := func() {
		if ownsLog {
			_ = logs.Close(log)
		}
	}

	// -------- STORAGE --------
	log.Debug("opening %s session storage", cfg.Storage.Backend)
	kv := b.storage
	var closeStorage func() error
	if kv == nil {
		var err error
		kv, closeStorage, err = openStorage(cfg, b.redis)
		if err != nil {
			releaseLog()
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	p := &Portal{
		cfg:          cfg,
		log:          log,
		baseURL:      baseURL,
		metrics:      NewMetrics(cfg.Metrics),
		closeStorage: closeStorage,
		ownsLog:      ownsLog,
	}

	// -------- SESSION STORE --------
	p.store = session.NewStore(session.Options{
		Persister:      kv,
		Key:            cfg.Session.Key,
		Policy:         policy,
		PersistTimeout: cfg.Session.PersistTimeout,
		Logger:         log,
		OnPersistError: func(error) { p.metrics.Inc(MetricPersistFailure) },
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Session.PersistTimeout)
	err := p.store.Restore(ctx)
	cancel()
	switch {
	case err == nil:
	case errors.Is(err, session.ErrCorruptRecord):
		log.Warn("discarding persisted session %q: %v", cfg.Session.Key, err)
	default:
		if closeStorage != nil {
			_ = closeStorage()
		}
		releaseLog()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// -------- AUDIT --------
	p.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	// -------- NAVIGATION --------
	p.guard = navigation.NewGuard(p.store, navigation.GuardConfig{
		LoginPath:      cfg.Routes.LoginPath,
		NotifyOnExpiry: cfg.Routes.NotifyOnExpiry,
		ExpiredMessage: cfg.Routes.SessionExpiredMessage,
		Now:            b.now,
		Logger:         log,
	})
	p.routes = b.routes
	if p.routes == nil {
		p.routes = navigation.DefaultRoutes()
	}
	p.router = navigation.NewRouter(p.guard, p.routes)
	p.router.AfterEach(p.observeTransition)

	// -------- INTERCEPTORS --------
	p.chain = interceptor.NewStandardChain(p.store, cfg.API.LoginPath, cfg.Routes.SessionExpiredMessage).
		Observe(p.observeEffect)

	client := &http.Client{}
	if b.httpClient != nil {
		c := *b.httpClient
		client = &c
	}
	client.Transport = &interceptor.Transport{
		Base:            client.Transport,
		Chain:           p.chain,
		Host:            baseURL.Host,
		BasePath:        baseURL.Path,
		MaxInspectBytes: cfg.API.MaxInspectBytes,
		Logger:          log,
		OnComplete:      p.observeRequest,
	}
	if client.Timeout == 0 {
		client.Timeout = cfg.API.Timeout
	}
	p.client = client

	b.built = true
	return p, nil
}
