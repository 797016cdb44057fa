package navigation

import (
	"testing"
	"time"

	"github.com/MrEthical07/goPortal/internal/logs"
	"github.com/MrEthical07/goPortal/session"
)

var fixedNow = time.Unix(1_800_000_000, 0)

func newGuardTest(t *testing.T, user *session.User, cfg GuardConfig) (*Guard, *session.Store) {
	t.Helper()
	store := session.NewStore(session.Options{Logger: logs.Discard()})
	store.SetUser(user)
	cfg.Now = func() time.Time { return fixedNow }
	cfg.Logger = logs.Discard()
	return NewGuard(store, cfg), store
}

func protectedPaths() []string {
	paths := []string{"/", "/does/not/exist"}
	for _, r := range DefaultRoutes().Routes() {
		if r.Path != DefaultLoginPath {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

func TestGuardStates(t *testing.T) {
	cases := []struct {
		name string
		user *session.User
		want State
	}{
		{name: "no session", user: nil, want: StateUnauthenticated},
		{name: "future expiry", user: &session.User{Token: "t", Expiry: fixedNow.Unix() + 1}, want: StateValid},
		{name: "no expiry", user: &session.User{Token: "t"}, want: StateValid},
		{name: "expiry now", user: &session.User{Token: "t", Expiry: fixedNow.Unix()}, want: StateExpired},
		{name: "past expiry", user: &session.User{Token: "t", Expiry: fixedNow.Unix() - 3600}, want: StateExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newGuardTest(t, tc.user, GuardConfig{})
			if got := g.State(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGuardExpiredRedirectsEverywhereButLogin(t *testing.T) {
	for _, target := range protectedPaths() {
		g, store := newGuardTest(t, &session.User{Token: "t", Expiry: fixedNow.Unix() - 1}, GuardConfig{})
		store.SetNotification(session.Danger("stale"))

		d := g.Evaluate(target)
		if d.Kind != Redirect || d.Path != DefaultLoginPath || d.Reason != StateExpired {
			t.Fatalf("%s: expected redirect to login, got %+v", target, d)
		}
		if !store.Notification().Empty() {
			t.Fatalf("%s: expected notification cleared, got %+v", target, store.Notification())
		}
	}
}

func TestGuardUnauthenticatedRedirects(t *testing.T) {
	for _, target := range protectedPaths() {
		g, _ := newGuardTest(t, nil, GuardConfig{})
		d := g.Evaluate(target)
		if d.Kind != Redirect || d.Path != DefaultLoginPath || d.Reason != StateUnauthenticated {
			t.Fatalf("%s: expected redirect to login, got %+v", target, d)
		}
	}
}

func TestGuardLoginAlwaysAllowed(t *testing.T) {
	users := map[string]*session.User{
		"unauthenticated": nil,
		"expired":         {Token: "t", Expiry: fixedNow.Unix() - 10},
		"valid":           {Token: "t", Expiry: fixedNow.Unix() + 10},
	}
	for name, user := range users {
		g, _ := newGuardTest(t, user, GuardConfig{})
		d := g.Evaluate(DefaultLoginPath)
		if !d.Allowed() || d.Path != DefaultLoginPath {
			t.Fatalf("%s: expected login allowed, got %+v", name, d)
		}
	}
}

func TestGuardValidAllows(t *testing.T) {
	for _, target := range protectedPaths() {
		g, _ := newGuardTest(t, &session.User{Token: "t", Expiry: fixedNow.Unix() + 60}, GuardConfig{})
		d := g.Evaluate(target)
		if !d.Allowed() || d.Path != target {
			t.Fatalf("%s: expected allow, got %+v", target, d)
		}
	}
}

func TestGuardClearsNotificationOnEveryOutcome(t *testing.T) {
	users := []*session.User{nil, {Token: "t", Expiry: 1}, {Token: "t"}}
	for _, user := range users {
		for _, target := range []string{DefaultLoginPath, "/ose/editquotas"} {
			g, store := newGuardTest(t, user, GuardConfig{})
			store.SetNotification(session.Success("Saved"))
			g.Evaluate(target)
			if !store.Notification().Empty() {
				t.Fatalf("user=%+v target=%s: expected cleared notification, got %+v", user, target, store.Notification())
			}
		}
	}
}

func TestGuardNotifyOnExpiry(t *testing.T) {
	g, store := newGuardTest(t, &session.User{Token: "t", Expiry: 1}, GuardConfig{
		NotifyOnExpiry: true,
		ExpiredMessage: "Session expired",
	})
	store.SetNotification(session.Success("old"))

	d := g.Evaluate("/aws/lists3buckets")
	if d.Kind != Redirect {
		t.Fatalf("expected redirect, got %+v", d)
	}
	if got := store.Notification(); got != session.Danger("Session expired") {
		t.Fatalf("expected expiry notice, got %+v", got)
	}

	// Unauthenticated users get no notice even when enabled.
	g, store = newGuardTest(t, nil, GuardConfig{NotifyOnExpiry: true, ExpiredMessage: "Session expired"})
	g.Evaluate("/aws/lists3buckets")
	if !store.Notification().Empty() {
		t.Fatalf("expected no notice for unauthenticated redirect, got %+v", store.Notification())
	}
}

func TestGuardCustomLoginPath(t *testing.T) {
	g, _ := newGuardTest(t, nil, GuardConfig{LoginPath: "/signin"})
	if d := g.Evaluate("/signin"); !d.Allowed() {
		t.Fatalf("expected custom login path allowed, got %+v", d)
	}
	if d := g.Evaluate(DefaultLoginPath); d.Kind != Redirect || d.Path != "/signin" {
		t.Fatalf("expected old login path to be protected, got %+v", d)
	}
}
