package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/goPortal/internal/logs"
	"github.com/MrEthical07/goPortal/storage"
)

// PersistPolicy controls whether SetUser mirrors the session to storage.
type PersistPolicy int

const (
	// PersistWriteThrough re-persists the record on every SetUser. A nil
	// user deletes the record.
	PersistWriteThrough PersistPolicy = iota
	// PersistRestoreOnly reads the record once in Restore and never writes it.
	PersistRestoreOnly
)

// String returns the config spelling of p.
func (p PersistPolicy) String() string {
	switch p {
	case PersistWriteThrough:
		return "write-through"
	case PersistRestoreOnly:
		return "restore-only"
	default:
		return fmt.Sprintf("PersistPolicy(%d)", int(p))
	}
}

// ParsePersistPolicy parses the config spelling of a [PersistPolicy].
func ParsePersistPolicy(s string) (PersistPolicy, error) {
	switch s {
	case "", "write-through":
		return PersistWriteThrough, nil
	case "restore-only":
		return PersistRestoreOnly, nil
	default:
		return 0, fmt.Errorf("unknown persist policy %q", s)
	}
}

const defaultPersistTimeout = 2 * time.Second

// Options configures a [Store]. All fields are optional.
type Options struct {
	// Persister backs the persisted record. Nil disables persistence.
	Persister storage.KeyValueStore
	// Key is the record key; defaults to [storage.DefaultKey].
	Key string
	// Policy selects write-through or restore-only persistence.
	Policy PersistPolicy
	// PersistTimeout bounds each record write; defaults to 2s.
	PersistTimeout time.Duration
	// Logger receives persistence failures; defaults to logs.Default().
	Logger logs.Logger
	// OnPersistError is called after a failed write, e.g. to count it.
	OnPersistError func(error)
}

// Store is the single source of truth for the logged-in user and the
// current notification. It is safe for concurrent use; concurrent writers
// are ordered by the internal lock and the last write wins.
type Store struct {
	mu           sync.RWMutex
	user         *User
	notification Notification

	persister      storage.KeyValueStore
	key            string
	policy         PersistPolicy
	persistTimeout time.Duration
	log            logs.Logger
	onPersistError func(error)

	// persistMu orders record writes so the stored value matches the last SetUser.
	persistMu sync.Mutex
}

// NewStore creates an empty [Store]. Call [Store.Restore] to seed it from
// the persisted record.
func NewStore(opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = storage.DefaultKey
	}
	timeout := opts.PersistTimeout
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	return &Store{
		persister:      opts.Persister,
		key:            key,
		policy:         opts.Policy,
		persistTimeout: timeout,
		log:            logs.OrDefault(opts.Logger),
		onPersistError: opts.OnPersistError,
	}
}

// Restore seeds the user slot from the persisted record. A missing record
// or JSON null leaves the store logged out. A corrupt record also leaves it
// logged out and returns an error wrapping [ErrCorruptRecord].
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	data, err := s.persister.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	user, err := Decode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// User returns a copy of the current user, or nil when logged out.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Notification returns the current notification.
func (s *Store) Notification() Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notification
}

// SetUser replaces the session wholesale; nil logs out. The value is stored
// as given, without validation. Under [PersistWriteThrough] the record is
// rewritten before SetUser returns; write failures are logged, never returned.
func (s *Store) SetUser(user *User) {
	var next *User
	if user != nil {
		u := *user
		next = &u
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.user = next
	s.mu.Unlock()

	if s.persister == nil || s.policy != PersistWriteThrough {
		return
	}
	s.persist(next)
}

// SetNotification replaces the notification wholesale; the zero value clears it.
func (s *Store) SetNotification(n Notification) {
	s.mu.Lock()
	s.notification = n
	s.mu.Unlock()
}

// ClearNotification is SetNotification with the empty notification.
func (s *Store) ClearNotification() {
	s.SetNotification(Notification{})
}

func (s *Store) persist(user *User) {
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	var err error
	if user == nil {
		err = s.persister.Delete(ctx, s.key)
	} else {
		var data []byte
		data, err = Encode(user)
		if err == nil {
			err = s.persister.Set(ctx, s.key, data)
		}
	}
	if err == nil {
		return
	}

	s.log.Error("session: persisting record %q failed: %v", s.key, err)
	if s.onPersistError != nil {
		s.onPersistError(err)
	}
}
