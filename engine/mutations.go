package engine

import (
	"context"
	"fmt"

	"github.com/jacentio/shoplist/list"
	"github.com/jacentio/shoplist/notify"
)

// Store operation names carried by list.StoreError.
const (
	OpFetch   = "fetch"
	OpCreate  = "create"
	OpReplace = "replace"
	OpDelete  = "delete"
)

// FetchAll replaces the cache with every list of the current owner. On
// failure the cache keeps its previous value. A response that arrives after
// the owner changed is discarded with list.ErrStaleOwner.
func (e *Engine) FetchAll(ctx context.Context) error {
	ownerID, err := e.currentOwner()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.loading++
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.loading--
		e.mu.Unlock()
	}()

	lists, err := e.store.ListAll(ctx, ownerID)
	if err != nil {
		return e.storeFailed(OpFetch, ownerID, err, "Could not load your lists")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isCurrent(ownerID) {
		return e.stale(OpFetch, ownerID)
	}
	e.owner = ownerID
	e.lists = make([]list.List, len(lists))
	for i, l := range lists {
		e.lists[i] = l.Clone()
	}
	return nil
}

// CreateList stores a new empty list and puts it first in the cache.
func (e *Engine) CreateList(ctx context.Context, name string) (list.List, error) {
	ownerID, err := e.currentOwner()
	if err != nil {
		return list.List{}, err
	}
	name, err = list.ValidateName(name)
	if err != nil {
		return list.List{}, err
	}

	created, err := e.store.Insert(ctx, ownerID, name)
	if err != nil {
		return list.List{}, e.storeFailed(OpCreate, ownerID, err, "Could not create the list")
	}

	e.mu.Lock()
	if !e.isCurrent(ownerID) {
		e.mu.Unlock()
		return list.List{}, e.stale(OpCreate, ownerID)
	}
	if i := e.indexLocked(created.ID); i >= 0 {
		// The change feed got here first.
		e.lists[i] = created.Clone()
	} else {
		e.lists = append([]list.List{created.Clone()}, e.lists...)
	}
	e.mu.Unlock()

	e.alerts.Show(fmt.Sprintf("List %q created", created.Name), notify.Success)
	return created.Clone(), nil
}

// RenameList changes the name of a cached list.
func (e *Engine) RenameList(ctx context.Context, id, name string) (list.List, error) {
	ownerID, err := e.currentOwner()
	if err != nil {
		return list.List{}, err
	}
	name, err = list.ValidateName(name)
	if err != nil {
		return list.List{}, err
	}
	if _, err := e.snapshot(id); err != nil {
		return list.List{}, err
	}
	return e.replace(ctx, ownerID, id, list.Patch{Name: &name})
}

// DeleteList removes a list from the store, then from the cache. The id does
// not have to be cached; the store scopes the delete by owner.
func (e *Engine) DeleteList(ctx context.Context, id string) error {
	ownerID, err := e.currentOwner()
	if err != nil {
		return err
	}

	if err := e.store.Remove(ctx, id, ownerID); err != nil {
		return e.storeFailed(OpDelete, ownerID, err, "Could not delete the list")
	}

	e.mu.Lock()
	if !e.isCurrent(ownerID) {
		e.mu.Unlock()
		return e.stale(OpDelete, ownerID)
	}
	e.dropLocked(id)
	e.mu.Unlock()

	e.alerts.Show("List deleted", notify.Success)
	return nil
}

// AddItem appends a new unpurchased item. A quantity of 0 means
// list.DefaultQuantity. An item whose name matches an existing one, ignoring
// case, is rejected with list.ErrDuplicateItem and a warning alert.
func (e *Engine) AddItem(ctx context.Context, listID, name string, quantity int) (list.List, error) {
	ownerID, err := e.currentOwner()
	if err != nil {
		return list.List{}, err
	}
	name, err = list.ValidateName(name)
	if err != nil {
		return list.List{}, err
	}
	if quantity == 0 {
		quantity = list.DefaultQuantity
	}
	if err := list.ValidateQuantity(quantity); err != nil {
		return list.List{}, err
	}

	current, err := e.snapshot(listID)
	if err != nil {
		return list.List{}, err
	}
	if current.HasItemNamed(name) {
		e.logger.Warn("duplicate item",
			"listID", listID,
			"name", name,
		)
		e.alerts.Show(fmt.Sprintf("%q is already on the list", name), notify.Warning)
		return list.List{}, list.ErrDuplicateItem
	}

	item := list.Item{ID: e.newID(), Name: name, Quantity: quantity}
	updated, err := e.replace(ctx, ownerID, listID, list.Patch{Items: current.AppendItem(item)})
	if err != nil {
		return list.List{}, err
	}
	e.alerts.Show(fmt.Sprintf("%q added to the list", name), notify.Success)
	return updated, nil
}

// UpdateItem applies patch to one item, keeping its position and every other item.
func (e *Engine) UpdateItem(ctx context.Context, listID, itemID string, patch list.ItemPatch) (list.List, error) {
	ownerID, err := e.currentOwner()
	if err != nil {
		return list.List{}, err
	}
	if err := patch.Validate(); err != nil {
		return list.List{}, err
	}

	current, err := e.snapshot(listID)
	if err != nil {
		return list.List{}, err
	}
	item, ok := current.FindItem(itemID)
	if !ok {
		return list.List{}, list.ErrItemNotFound
	}
	return e.replace(ctx, ownerID, listID, list.Patch{Items: current.ReplaceItem(patch.Apply(item))})
}

// SetItemPurchased marks an item as purchased or not.
func (e *Engine) SetItemPurchased(ctx context.Context, listID, itemID string, purchased bool) (list.List, error) {
	return e.UpdateItem(ctx, listID, itemID, list.ItemPatch{Purchased: &purchased})
}

// ToggleItemPurchased flips the purchased flag of an item as currently cached.
func (e *Engine) ToggleItemPurchased(ctx context.Context, listID, itemID string) (list.List, error) {
	current, err := e.snapshot(listID)
	if err != nil {
		return list.List{}, err
	}
	item, ok := current.FindItem(itemID)
	if !ok {
		return list.List{}, list.ErrItemNotFound
	}
	return e.SetItemPurchased(ctx, listID, itemID, !item.Purchased)
}

// RemoveItem drops an item from its list and raises an info alert naming it.
func (e *Engine) RemoveItem(ctx context.Context, listID, itemID string) (list.List, error) {
	ownerID, err := e.currentOwner()
	if err != nil {
		return list.List{}, err
	}

	current, err := e.snapshot(listID)
	if err != nil {
		return list.List{}, err
	}
	item, ok := current.FindItem(itemID)
	if !ok {
		return list.List{}, list.ErrItemNotFound
	}

	updated, err := e.replace(ctx, ownerID, listID, list.Patch{Items: current.WithoutItem(itemID)})
	if err != nil {
		return list.List{}, err
	}
	e.alerts.Show(fmt.Sprintf("%q removed from the list", item.Name), notify.Info)
	return updated, nil
}

// replace submits patch and overwrites the cached entry with the store's
// response. A list dropped from the cache meanwhile stays dropped.
func (e *Engine) replace(ctx context.Context, ownerID, id string, patch list.Patch) (list.List, error) {
	updated, err := e.store.Replace(ctx, id, ownerID, patch)
	if err != nil {
		return list.List{}, e.storeFailed(OpReplace, ownerID, err, "Could not update the list")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.isCurrent(ownerID) {
		return list.List{}, e.stale(OpReplace, ownerID)
	}
	i := e.indexLocked(id)
	if i < 0 {
		// Deleted while the write was in flight.
		e.logger.Debug("discarding response for uncached list",
			"op", OpReplace,
			"listID", id,
		)
		return updated.Clone(), nil
	}
	e.lists[i] = updated.Clone()
	return updated.Clone(), nil
}
