package engine

import (
	"context"

	"github.com/jacentio/shoplist/list"
	"github.com/jacentio/shoplist/stream"
)

var _ stream.Sink = (*Engine)(nil)

// OnAuthChange follows the signed-in owner: lists are fetched for a new
// owner and cleared on sign-out.
func (e *Engine) OnAuthChange(ctx context.Context) error {
	ownerID, ok := e.auth.CurrentOwnerID()
	if !ok || ownerID == "" {
		e.Reset()
		return nil
	}

	e.mu.Lock()
	if e.owner != ownerID {
		e.owner = ownerID
		e.lists = nil
	}
	e.mu.Unlock()

	return e.FetchAll(ctx)
}

// Reset clears the cache, the alert and any pending removal.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.owner = ""
	e.lists = nil
	e.mu.Unlock()

	e.alerts.Dismiss()
	e.removal.Cancel()
}

// RequestRemoval asks for confirmation before removing an item.
func (e *Engine) RequestRemoval(listID, itemID string, source list.Collection) {
	e.removal.Request(listID, itemID, source)
}

// CancelRemoval drops the pending removal.
func (e *Engine) CancelRemoval() {
	e.removal.Cancel()
}

// ConfirmRemoval removes the item awaiting confirmation. An item that is
// already gone is not an error.
func (e *Engine) ConfirmRemoval(ctx context.Context) error {
	return e.removal.Confirm(ctx, e)
}

// ApplyChange applies a change observed on the store's change feed. Changes
// for other owners are ignored, as are upserts older than the cached version.
func (e *Engine) ApplyChange(_ context.Context, c stream.Change) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isCurrent(c.OwnerID) {
		return nil
	}

	switch c.Kind {
	case stream.Upsert:
		if i := e.indexLocked(c.ListID); i >= 0 && e.lists[i].Version > c.List.Version {
			e.logger.Debug("ignoring outdated change",
				"listID", c.ListID,
				"version", c.List.Version,
			)
			return nil
		}
		e.upsertLocked(c.List)
	case stream.Delete:
		e.dropLocked(c.ListID)
	}
	return nil
}
