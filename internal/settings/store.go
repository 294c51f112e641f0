// Package settings holds the process-wide cached camp configuration. The
// store is constructed once and injected into every consumer; its lifecycle
// is init -> loaded|failed -> (refresh) -> loaded|failed, with refresh only
// ever triggered explicitly.
package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/youthcamp/portal/internal/apiclient"
	"github.com/youthcamp/portal/internal/models"
)

// ErrLoadInFlight is returned when a load is requested while one is running.
var ErrLoadInFlight = errors.New("settings load already in flight")

// Fetcher loads the camp configuration from its source.
type Fetcher interface {
	WebsiteSettings(ctx context.Context) (*models.Settings, error)
}

// Snapshot is a point-in-time view of the store.
type Snapshot struct {
	Settings *models.Settings
	Loading  bool
	Err      string
}

// Loaded reports whether usable settings are present.
func (s Snapshot) Loaded() bool {
	return s.Settings != nil
}

// Store caches the camp settings. Single writer (the store itself),
// many readers; consumers never mutate the settings value.
type Store struct {
	mu      sync.Mutex
	fetch   Fetcher
	current *models.Settings
	loading bool
	errMsg  string
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates an unloaded store.
func New(fetch Fetcher) *Store {
	return &Store{
		fetch: fetch,
		subs:  make(map[int]func(Snapshot)),
	}
}

// Load fetches the settings. The error message is cleared at the start of
// every attempt and set on failure; loading is true only while the request is
// in flight. A successful earlier load survives a failed refresh.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrLoadInFlight
	}
	s.loading = true
	s.errMsg = ""
	s.notifyLocked()
	s.mu.Unlock()

	settings, err := s.fetch.WebsiteSettings(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = apiclient.Humanize(err)
	} else {
		s.current = settings
	}
	s.notifyLocked()
	s.mu.Unlock()

	return err
}

// Refresh is an explicit user-triggered reload.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a callback invoked on every lifecycle change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Settings: s.current,
		Loading:  s.loading,
		Err:      s.errMsg,
	}
}

// notifyLocked fans the current snapshot out to subscribers. Callbacks run
// inline under the lock, so they must not call back into the store; the web
// layer only forwards snapshots onto channels.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, fn := range s.subs {
		fn(snap)
	}
}
