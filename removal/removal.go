// Package removal gates destructive item removal behind an explicit confirmation.
package removal

import (
	"context"
	"errors"
	"sync"

	"github.com/jacentio/shoplist/list"
)

// Request is the pending confirmation shown to the user.
type Request struct {
	Visible bool
	ListID  string
	ItemID  string
	Source  list.Collection
}

// Remover performs the removal once confirmed.
type Remover interface {
	RemoveItem(ctx context.Context, listID, itemID string) (list.List, error)
}

// Flow is a two-state machine: idle, or awaiting a decision for one item.
// A new Request replaces any pending one.
type Flow struct {
	mu      sync.Mutex
	pending Request
}

// New returns an idle Flow.
func New() *Flow {
	return &Flow{}
}

// Request asks for confirmation to remove an item.
func (f *Flow) Request(listID, itemID string, source list.Collection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = Request{Visible: true, ListID: listID, ItemID: itemID, Source: source}
}

// Cancel drops the pending request.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = Request{}
}

// Current returns the pending request, or a zero Request when idle.
func (f *Flow) Current() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Pending reports whether a request awaits a decision.
func (f *Flow) Pending() bool {
	return f.Current().Visible
}

// Confirm returns the flow to idle and removes the pending target through r.
// A target that is already gone is not an error. Confirm while idle does nothing.
func (f *Flow) Confirm(ctx context.Context, r Remover) error {
	f.mu.Lock()
	req := f.pending
	f.pending = Request{}
	f.mu.Unlock()

	if !req.Visible {
		return nil
	}

	_, err := r.RemoveItem(ctx, req.ListID, req.ItemID)
	if errors.Is(err, list.ErrItemNotFound) || errors.Is(err, list.ErrListNotFound) {
		return nil
	}
	return err
}
