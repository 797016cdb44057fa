package navigation

import (
	"fmt"
	"time"

	"github.com/MrEthical07/goPortal/internal/logs"
	"github.com/MrEthical07/goPortal/session"
)

// DefaultLoginPath is the in-app login route.
const DefaultLoginPath = "/login"

// State is the authorization state of the session at evaluation time.
type State uint8

const (
	// StateUnauthenticated means no session is held.
	StateUnauthenticated State = iota
	// StateValid means a session is held and its expiry is in the future or absent.
	StateValid
	// StateExpired means a session is held and its expiry is at or before now.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// SessionState is the part of the session store the guard needs.
type SessionState interface {
	User() *session.User
	SetNotification(session.Notification)
}

// GuardConfig configures a [Guard].
type GuardConfig struct {
	// LoginPath defaults to [DefaultLoginPath].
	LoginPath string
	// NotifyOnExpiry shows ExpiredMessage when an expired session is redirected.
	NotifyOnExpiry bool
	ExpiredMessage string
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger logs.Logger
}

// Guard decides every route transition.
type Guard struct {
	store          SessionState
	loginPath      string
	notifyOnExpiry bool
	expiredMessage string
	now            func() time.Time
	log            logs.Logger
}

// NewGuard creates a guard over store.
func NewGuard(store SessionState, cfg GuardConfig) *Guard {
	g := &Guard{
		store:          store,
		loginPath:      cfg.LoginPath,
		notifyOnExpiry: cfg.NotifyOnExpiry,
		expiredMessage: cfg.ExpiredMessage,
		now:            cfg.Now,
		log:            logs.OrDefault(cfg.Logger),
	}
	if g.loginPath == "" {
		g.loginPath = DefaultLoginPath
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// LoginPath returns the path the guard redirects to.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// State classifies the current session.
func (g *Guard) State() State {
	user := g.store.User()
	switch {
	case user == nil:
		return StateUnauthenticated
	case user.ExpiredAt(g.now().Unix()):
		return StateExpired
	default:
		return StateValid
	}
}

// Evaluate decides the transition to target. The current notification is
// cleared first, unconditionally; the login path is always allowed.
func (g *Guard) Evaluate(target string) Decision {
	g.store.SetNotification(session.Notification{})

	state := g.State()
	if target == g.loginPath {
		return AllowTo(target, state)
	}

	switch state {
	case StateUnauthenticated:
		g.log.Warn("not yet logged in, navigating to login (target %s)", target)
		return RedirectTo(g.loginPath, state)
	case StateExpired:
		g.log.Warn("token is no longer valid, navigating to login (target %s)", target)
		if g.notifyOnExpiry && g.expiredMessage != "" {
			g.store.SetNotification(session.Danger(g.expiredMessage))
		}
		return RedirectTo(g.loginPath, state)
	default:
		return AllowTo(target, state)
	}
}
