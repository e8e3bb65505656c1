// Package engine keeps an owner's shopping lists in memory and mediates every
// change through the list store.
//
// The cache only ever holds what the store returned. Mutations compute the next
// item sequence from the cached snapshot, submit it, and overwrite the cached
// entry with the response. Nothing is applied before the store confirms, so a
// failed call leaves the cache exactly as it was.
//
// Store calls run without the engine lock. Two mutations of the same list
// issued before the first returns race: the response that arrives last wins,
// and if it was computed from the older snapshot the other change is lost.
// The store has no version precondition, so this is the expected outcome.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jacentio/shoplist/list"
	"github.com/jacentio/shoplist/notify"
	"github.com/jacentio/shoplist/removal"
	"github.com/jacentio/shoplist/suggest"
)

// ListStore persists lists. Every call is scoped by owner.
type ListStore interface {
	ListAll(ctx context.Context, ownerID string) ([]list.List, error)
	Insert(ctx context.Context, ownerID, name string) (list.List, error)
	Replace(ctx context.Context, id, ownerID string, patch list.Patch) (list.List, error)
	Remove(ctx context.Context, id, ownerID string) error
}

// Auth reports the signed-in owner. Implementations must not call back into the Engine.
type Auth interface {
	CurrentOwnerID() (string, bool)
}

// Engine is the shopping list state for one signed-in owner at a time.
type Engine struct {
	store       ListStore
	auth        Auth
	logger      *slog.Logger
	alerts      *notify.Center
	suggestions *suggest.Index
	removal     *removal.Flow
	newID       func() string

	mu      sync.Mutex
	owner   string
	lists   []list.List
	loading int
}

// New creates an Engine with an empty cache.
func New(store ListStore, auth Auth, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		auth:    auth,
		logger:  slog.Default(),
		removal: removal.New(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.alerts == nil {
		e.alerts = notify.New(notify.WithLogger(e.logger))
	}
	if e.suggestions == nil {
		e.suggestions = suggest.Default()
	}
	return e
}

// Lists returns a copy of the cached lists, newest first.
func (e *Engine) Lists() []list.List {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]list.List, len(e.lists))
	for i, l := range e.lists {
		out[i] = l.Clone()
	}
	return out
}

// List returns a copy of the cached list with the given id.
func (e *Engine) List(id string) (list.List, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(id); i >= 0 {
		return e.lists[i].Clone(), true
	}
	return list.List{}, false
}

// Loading reports whether a fetch is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading > 0
}

// Alert returns the current notification.
func (e *Engine) Alert() notify.Alert {
	return e.alerts.Current()
}

// Removal returns the pending removal request.
func (e *Engine) Removal() removal.Request {
	return e.removal.Current()
}

// Stats summarizes the cached lists.
func (e *Engine) Stats() list.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return list.Summarize(e.lists)
}

// FilterSuggestions returns vocabulary entries matching text.
func (e *Engine) FilterSuggestions(text string) []string {
	return e.suggestions.Query(text)
}

func (e *Engine) currentOwner() (string, error) {
	id, ok := e.auth.CurrentOwnerID()
	if !ok || id == "" {
		return "", list.ErrNotSignedIn
	}
	return id, nil
}

func (e *Engine) isCurrent(ownerID string) bool {
	id, ok := e.auth.CurrentOwnerID()
	return ok && id == ownerID
}

// snapshot returns a copy of cached list id.
func (e *Engine) snapshot(id string) (list.List, error) {
	l, ok := e.List(id)
	if !ok {
		return list.List{}, list.ErrListNotFound
	}
	return l, nil
}

func (e *Engine) indexLocked(id string) int {
	for i, l := range e.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// upsertLocked replaces the cached entry for l.ID, or inserts l keeping the
// newest-first order.
func (e *Engine) upsertLocked(l list.List) {
	l = l.Clone()
	if i := e.indexLocked(l.ID); i >= 0 {
		e.lists[i] = l
		return
	}
	pos := len(e.lists)
	for i, cur := range e.lists {
		if cur.CreatedAt.Before(l.CreatedAt) {
			pos = i
			break
		}
	}
	e.lists = append(e.lists, list.List{})
	copy(e.lists[pos+1:], e.lists[pos:])
	e.lists[pos] = l
}

func (e *Engine) dropLocked(id string) {
	if i := e.indexLocked(id); i >= 0 {
		e.lists = append(e.lists[:i:i], e.lists[i+1:]...)
	}
}

// storeFailed logs err, raises an error alert for the current owner and
// wraps err in a StoreError.
func (e *Engine) storeFailed(op, ownerID string, err error, message string) error {
	e.logger.Error("store call failed",
		"op", op,
		"ownerID", ownerID,
		"error", err,
	)
	if e.isCurrent(ownerID) {
		e.alerts.Show(message, notify.Error)
	}
	return &list.StoreError{Op: op, Err: err}
}

func (e *Engine) stale(op, ownerID string) error {
	e.logger.Debug("discarding response for previous owner",
		"op", op,
		"ownerID", ownerID,
	)
	return list.ErrStaleOwner
}
