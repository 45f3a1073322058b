package overrides

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gapscan/gapscan/internal/store"
)

func testRepo(t *testing.T) store.OverrideRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "gapscan.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s.OverrideRepo()
}

func TestToggleAndPersist(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	s := NewStore(repo, "a1", "u1")
	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.Toggle(ctx, "incident"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !s.IsOverridden("incident") {
		t.Errorf("incident should be overridden")
	}

	// A second store over the same row sees the persisted set.
	other := NewStore(repo, "a1", "u1")
	if err := other.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !other.IsOverridden("incident") {
		t.Errorf("persisted set not visible to a fresh store")
	}

	// Toggling again removes.
	if err := s.Toggle(ctx, "incident"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.IsOverridden("incident") {
		t.Errorf("incident should be removed")
	}
}

func TestSubscribeNotifiesOnChange(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	s := NewStore(repo, "a1", "u1")
	_ = s.Load(ctx)

	var got []Set
	cancel := s.Subscribe(func(snap Set) { got = append(got, snap) })

	_ = s.Toggle(ctx, "access")
	_ = s.Toggle(ctx, "incident")

	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if !reflect.DeepEqual(got[1].Sorted(), []string{"access", "incident"}) {
		t.Errorf("final snapshot = %v", got[1].Sorted())
	}

	cancel()
	_ = s.Toggle(ctx, "access")
	if len(got) != 2 {
		t.Errorf("cancelled subscription still notified")
	}
}

func TestPollObservesExternalWrite(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	local := NewStore(repo, "a1", "u1")
	_ = local.Load(ctx)

	notified := 0
	local.Subscribe(func(Set) { notified++ })

	// Another process writes the same row.
	external := NewStore(repo, "a1", "u1")
	_ = external.Load(ctx)
	if err := external.Toggle(ctx, "governance"); err != nil {
		t.Fatalf("external toggle: %v", err)
	}

	local.pollOnce(ctx)
	if !local.IsOverridden("governance") {
		t.Errorf("external write not observed")
	}
	if notified != 1 {
		t.Errorf("notifications = %d, want 1", notified)
	}

	// Re-polling with no new write stays quiet.
	local.pollOnce(ctx)
	if notified != 1 {
		t.Errorf("poll without changes re-notified")
	}
}

func TestOwnWriteDoesNotEchoThroughPoll(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	s := NewStore(repo, "a1", "u1")
	_ = s.Load(ctx)

	notified := 0
	s.Subscribe(func(Set) { notified++ })

	_ = s.Toggle(ctx, "access") // one notification
	s.pollOnce(ctx)             // must not produce a second

	if notified != 1 {
		t.Errorf("notifications = %d, want 1 (no echo)", notified)
	}
}

func TestClear(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	s := NewStore(repo, "a1", "u1")
	_ = s.Load(ctx)
	_ = s.Toggle(ctx, "access")
	_ = s.Toggle(ctx, "incident")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(s.Domains()) != 0 {
		t.Errorf("domains after clear = %v, want empty", s.Domains())
	}
}
