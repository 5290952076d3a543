package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	sessionstore "github.com/marycampus/advisor/pkg/session"
	"github.com/marycampus/advisor/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func managerRouter() Router {
	return &fakeRouter{routes: map[string]*fakeMatch{
		"/": {pattern: "/", page: staticPage("home", "hi")},
		"/qa": {pattern: "/qa",
			page: staticPage("qa", "answers")},
	}}
}

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Router == nil {
		opts.Router = managerRouter()
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	m := NewManager(opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		m.Shutdown(ctx)
	})
	return m
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(t, Options{})

	sess, err := m.Create(nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("created session has no ID")
	}
	got, ok := m.Get(sess.ID)
	if !ok || got != sess {
		t.Fatal("Get did not return the created session")
	}
	if m.Count() != 1 {
		t.Fatalf("Count = %d, want 1", m.Count())
	}
	if st := m.Stats(); st.TotalCreated != 1 || st.Live != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestManagerMaxSessions(t *testing.T) {
	m := newTestManager(t, Options{MaxSessions: 1})

	if _, err := m.Create(nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Create(nil); !errors.Is(err, ErrMaxSessionsReached) {
		t.Fatalf("err = %v, want ErrMaxSessionsReached", err)
	}
}

func TestManagerCloseRemoves(t *testing.T) {
	m := newTestManager(t, Options{})
	sess, _ := m.Create(nil)

	sess.Close()

	if _, ok := m.Get(sess.ID); ok {
		t.Fatal("closed session still registered")
	}
	if st := m.Stats(); st.TotalClosed != 1 || st.Live != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestManagerRestoreFromStore(t *testing.T) {
	store := sessionstore.NewMemoryStore(sessionstore.WithSweepInterval(time.Hour))
	defer store.Close()
	rt := managerRouter()

	m1 := newTestManager(t, Options{Router: rt, Store: store})
	sess, err := m1.Create(nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	sess.inline = true
	if _, err := sess.Mount(sess.liveContext("/qa", ""), "/qa"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	sess.Set("theme", "dark")
	m1.CloseSession(sess.ID)
	if _, ok := m1.Get(sess.ID); ok {
		t.Fatal("CloseSession left the session registered")
	}

	m2 := newTestManager(t, Options{Router: rt, Store: store})
	restored, err := m2.Restore(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored == sess {
		t.Fatal("restore returned the closed instance")
	}
	if restored.ID != sess.ID {
		t.Fatalf("restored ID = %q, want %q", restored.ID, sess.ID)
	}
	if restored.CurrentPath() != "/qa" {
		t.Fatalf("restored path = %q, want %q", restored.CurrentPath(), "/qa")
	}
	if got := restored.Get("theme"); got != "dark" {
		t.Fatalf("restored theme = %v, want %q", got, "dark")
	}
	if vdom.FindByID(restored.CurrentTree(), "qa") == nil {
		t.Fatal("restored session has no rendered tree")
	}
	if st := m2.Stats(); st.TotalRestored != 1 {
		t.Fatalf("TotalRestored = %d, want 1", st.TotalRestored)
	}

	// The snapshot is consumed; while the session lives, Restore hands
	// back the live instance.
	again, err := m2.Restore(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("second restore: %v", err)
	}
	if again != restored {
		t.Fatal("second restore built a new instance")
	}
}

func TestManagerRestoreUnknownSession(t *testing.T) {
	store := sessionstore.NewMemoryStore(sessionstore.WithSweepInterval(time.Hour))
	defer store.Close()
	m := newTestManager(t, Options{Store: store})

	if _, err := m.Restore(context.Background(), "no-such-id"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestManagerRestoreWithoutStore(t *testing.T) {
	m := newTestManager(t, Options{})
	if _, err := m.Restore(context.Background(), "id"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestManagerSweepCollectsDetached(t *testing.T) {
	store := sessionstore.NewMemoryStore(sessionstore.WithSweepInterval(time.Hour))
	defer store.Close()
	m := newTestManager(t, Options{
		Store:         store,
		ResumeWindow:  10 * time.Millisecond,
		SweepInterval: time.Hour,
	})
	sess, _ := m.Create(nil)

	// Never attached, so it has been detached since creation.
	time.Sleep(20 * time.Millisecond)
	m.sweep(time.Now())

	if _, ok := m.Get(sess.ID); ok {
		t.Fatal("expired session still registered")
	}
	if !sess.IsClosed() {
		t.Fatal("expired session not closed")
	}
	data, err := store.Load(context.Background(), sess.ID)
	if err != nil || data == nil {
		t.Fatalf("expired session not persisted: data=%v err=%v", data, err)
	}
}

func TestManagerSweepKeepsFreshSessions(t *testing.T) {
	m := newTestManager(t, Options{
		ResumeWindow:  time.Hour,
		SweepInterval: time.Hour,
	})
	sess, _ := m.Create(nil)

	m.sweep(time.Now())

	if _, ok := m.Get(sess.ID); !ok {
		t.Fatal("fresh session was swept")
	}
}

func TestManagerShutdownPersistsAll(t *testing.T) {
	store := sessionstore.NewMemoryStore(sessionstore.WithSweepInterval(time.Hour))
	defer store.Close()
	rt := managerRouter()
	m := NewManager(Options{Router: rt, Store: store, Logger: quietLogger()})

	a, _ := m.Create(nil)
	b, _ := m.Create(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	for _, sess := range []*Session{a, b} {
		if !sess.IsClosed() {
			t.Fatalf("session %s not closed by shutdown", sess.ID)
		}
		data, err := store.Load(context.Background(), sess.ID)
		if err != nil || data == nil {
			t.Fatalf("session %s not persisted: %v", sess.ID, err)
		}
	}
	if _, err := m.Create(nil); !errors.Is(err, ErrManagerClosed) {
		t.Fatalf("create after shutdown err = %v, want ErrManagerClosed", err)
	}
}

func TestManagerCallbacks(t *testing.T) {
	m := newTestManager(t, Options{})
	var created, closed []string
	m.SetOnSessionCreate(func(s *Session) { created = append(created, s.ID) })
	m.SetOnSessionClose(func(s *Session) { closed = append(closed, s.ID) })

	sess, _ := m.Create(nil)
	sess.Close()

	if len(created) != 1 || created[0] != sess.ID {
		t.Fatalf("created hook saw %v", created)
	}
	if len(closed) != 1 || closed[0] != sess.ID {
		t.Fatalf("closed hook saw %v", closed)
	}
}

func TestManagerStatsAccumulateClosedCounters(t *testing.T) {
	m := newTestManager(t, Options{})
	sess, _ := m.Create(nil)
	sess.inline = true
	if _, err := sess.Mount(sess.liveContext("/", ""), "/"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	sess.sendResyncFull()
	patchesBefore := m.Stats().PatchesSent
	if patchesBefore == 0 {
		t.Fatal("live patch counter not visible in stats")
	}

	sess.Close()
	if got := m.Stats().PatchesSent; got != patchesBefore {
		t.Fatalf("patch count changed across close: %d != %d", got, patchesBefore)
	}
}
