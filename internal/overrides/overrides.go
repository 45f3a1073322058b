// Package overrides holds the user's override-domain set: the domains
// explored beyond the server's adaptive path. The set is client-local,
// persisted per assessment and user, and shared between processes.
//
// Rather than ambient storage access, the set lives in one explicit store
// with a subscription interface; every consumer re-derives its effective
// sequence on notification. Writes are last-writer-wins — the set is
// read-mostly and never gates anything server-side.
package overrides

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gapscan/gapscan/internal/store"
)

// Set is an immutable snapshot of the override-domain set.
type Set map[string]bool

// Sorted returns the domains in sorted order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DefaultWatchInterval is how often Watch polls for writes made by other
// processes.
const DefaultWatchInterval = 2 * time.Second

// Store is the shared override-domain store for one assessment.
type Store struct {
	assessmentID string
	userID       string
	repo         store.OverrideRepo

	mu      sync.Mutex
	domains Set
	version int64
	subs    map[int]func(Set)
	nextSub int
}

// NewStore creates a Store bound to one assessment and user.
func NewStore(repo store.OverrideRepo, assessmentID, userID string) *Store {
	return &Store{
		assessmentID: assessmentID,
		userID:       userID,
		repo:         repo,
		domains:      Set{},
		subs:         make(map[int]func(Set)),
	}
}

// Load reads the persisted set. Corrupt or missing rows load as empty.
func (s *Store) Load(ctx context.Context) error {
	rec, err := s.repo.Get(ctx, s.assessmentID, s.userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.domains = toSet(rec.Domains)
	s.version = rec.Version
	s.mu.Unlock()
	return nil
}

// Domains returns a snapshot of the current set.
func (s *Store) Domains() Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// IsOverridden reports whether the domain is in the set.
func (s *Store) IsOverridden(domain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domains[domain]
}

// Toggle flips one domain, persists, and notifies subscribers.
func (s *Store) Toggle(ctx context.Context, domain string) error {
	s.mu.Lock()
	if s.domains[domain] {
		delete(s.domains, domain)
	} else {
		s.domains[domain] = true
	}
	snap := s.snapshot()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, s.assessmentID, s.userID, snap.Sorted()); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	s.notify(snap)
	return nil
}

// Clear empties the set, persists, and notifies subscribers.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.domains = Set{}
	snap := s.snapshot()
	s.mu.Unlock()

	if err := s.repo.Save(ctx, s.assessmentID, s.userID, nil); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	s.notify(snap)
	return nil
}

// Subscribe registers a callback invoked with a fresh snapshot after
// every change, local or observed. Callbacks run under the store lock
// and must not block. The returned cancel func removes the
// subscription and does not return while a delivery is in flight.
func (s *Store) Subscribe(fn func(Set)) (cancel func()) {
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

// Watch polls the persisted row version until ctx is done, reloading and
// notifying when another process wrote the set. This is the cross-tab
// storage event of the original design, expressed as polling over the
// shared database.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce checks for an external write and applies it.
func (s *Store) pollOnce(ctx context.Context) {
	version, err := s.repo.Version(ctx, s.assessmentID, s.userID)
	if err != nil {
		return // transient; next tick retries
	}

	s.mu.Lock()
	stale := version > s.version
	s.mu.Unlock()
	if !stale {
		return
	}

	rec, err := s.repo.Get(ctx, s.assessmentID, s.userID)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.domains = toSet(rec.Domains)
	s.version = rec.Version
	snap := s.snapshot()
	s.mu.Unlock()

	s.notify(snap)
}

// bumpVersion refreshes the locally-known version after our own save so
// the watcher does not re-apply it as an external change.
func (s *Store) bumpVersion(ctx context.Context) {
	if version, err := s.repo.Version(ctx, s.assessmentID, s.userID); err == nil {
		s.mu.Lock()
		s.version = version
		s.mu.Unlock()
	}
}

// notify delivers a snapshot to current subscribers. Delivery runs
// under the store lock so a cancelled subscription never fires after
// its cancel func returns; callbacks must not block or call back into
// the Store.
func (s *Store) notify(snap Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fn := range s.subs {
		fn(snap)
	}
}

// snapshot copies the set; callers hold the lock.
func (s *Store) snapshot() Set {
	out := make(Set, len(s.domains))
	for d := range s.domains {
		out[d] = true
	}
	return out
}

func toSet(domains []string) Set {
	out := make(Set, len(domains))
	for _, d := range domains {
		out[d] = true
	}
	return out
}
