package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jacentio/shoplist/engine"
	"github.com/jacentio/shoplist/list"
	"github.com/jacentio/shoplist/notify"
	"github.com/jacentio/shoplist/store"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeAuth struct {
	mu    sync.Mutex
	owner string
}

func (a *fakeAuth) CurrentOwnerID() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner, a.owner != ""
}

func (a *fakeAuth) set(owner string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owner = owner
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

// quietAlerts never expires alerts, so tests can inspect the last one.
func quietAlerts() *notify.Center {
	return notify.New(notify.WithScheduler(func(time.Duration, func()) notify.Timer {
		return noopTimer{}
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func newEngine(s engine.ListStore, owner string) (*engine.Engine, *fakeAuth) {
	auth := &fakeAuth{owner: owner}
	e := engine.New(s, auth,
		engine.WithLogger(discardLogger()),
		engine.WithNotifier(quietAlerts()),
		engine.WithIDGenerator(sequentialIDs()),
	)
	return e, auth
}

func weekly() list.List {
	return list.List{
		ID:      "weekly",
		OwnerID: "u1",
		Name:    "Weekly",
		Items: []list.Item{
			{ID: "i1", Name: "Milk", Quantity: 1},
			{ID: "i2", Name: "Bread", Quantity: 2, Purchased: true},
		},
		CreatedAt: t0,
		UpdatedAt: t0,
		Version:   1,
	}
}

// loaded returns an engine for u1 whose cache holds the weekly list.
func loaded(t *testing.T) (*engine.Engine, *store.Memory, *fakeAuth) {
	t.Helper()
	mem := store.NewMemory()
	mem.Seed(weekly())
	e, auth := newEngine(mem, "u1")
	if err := e.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	return e, mem, auth
}

// countingStore records how many writes reach the wrapped store.
type countingStore struct {
	*store.Memory
	mu     sync.Mutex
	writes int
}

func (s *countingStore) Replace(ctx context.Context, id, ownerID string, patch list.Patch) (list.List, error) {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.Memory.Replace(ctx, id, ownerID, patch)
}

func (s *countingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// call is one store request held by chanStore until the test answers it.
type call struct {
	op      string
	id      string
	ownerID string
	name    string
	patch   list.Patch
	resp    chan response
}

type response struct {
	lists []list.List
	list  list.List
	err   error
}

func (c *call) reply(r response) { c.resp <- r }

// chanStore hands every call to the test over a channel, so the test decides
// when and in which order responses arrive.
type chanStore struct {
	calls chan *call
}

func newChanStore() *chanStore {
	return &chanStore{calls: make(chan *call)}
}

func (s *chanStore) do(c *call) response {
	c.resp = make(chan response)
	s.calls <- c
	return <-c.resp
}

func (s *chanStore) ListAll(_ context.Context, ownerID string) ([]list.List, error) {
	r := s.do(&call{op: "list_all", ownerID: ownerID})
	return r.lists, r.err
}

func (s *chanStore) Insert(_ context.Context, ownerID, name string) (list.List, error) {
	r := s.do(&call{op: "insert", ownerID: ownerID, name: name})
	return r.list, r.err
}

func (s *chanStore) Replace(_ context.Context, id, ownerID string, patch list.Patch) (list.List, error) {
	r := s.do(&call{op: "replace", id: id, ownerID: ownerID, patch: patch})
	return r.list, r.err
}

func (s *chanStore) Remove(_ context.Context, id, ownerID string) error {
	return s.do(&call{op: "remove", id: id, ownerID: ownerID}).err
}

func (s *chanStore) expect(t *testing.T, op string) *call {
	t.Helper()
	select {
	case c := <-s.calls:
		if c.op != op {
			t.Fatalf("expected %s call, got %s", op, c.op)
		}
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s call", op)
		return nil
	}
}

func wait[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for operation")
		var zero T
		return zero
	}
}

type result struct {
	list list.List
	err  error
}

func itemNames(l list.List) []string {
	names := make([]string, len(l.Items))
	for i, it := range l.Items {
		names[i] = it.Name
	}
	return names
}
