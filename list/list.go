// Package list holds the shopping list data model shared by the store and the engine.
package list

import (
	"strings"
	"time"
)

// DefaultQuantity is used when an item is added without an explicit quantity.
const DefaultQuantity = 1

// Item is a single purchasable entry. Its ID is unique within the parent List.
type Item struct {
	ID        string `json:"id" dynamodbav:"id"`
	Name      string `json:"name" dynamodbav:"name"`
	Quantity  int    `json:"quantity" dynamodbav:"quantity"`
	Purchased bool   `json:"purchased" dynamodbav:"purchased"`
}

// List is a named, owned collection of items.
type List struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// Patch carries the fields of a List to replace in the store.
// Nil fields are left untouched. A non-nil Items replaces the whole sequence.
type Patch struct {
	Name  *string
	Items []Item
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	out := l
	if l.Items != nil {
		out.Items = make([]Item, len(l.Items))
		copy(out.Items, l.Items)
	}
	return out
}

// WithItems returns a copy of l whose item sequence is items.
func (l List) WithItems(items []Item) List {
	out := l.Clone()
	out.Items = items
	return out
}

// FindItem returns the item with the given id.
func (l List) FindItem(id string) (Item, bool) {
	for _, it := range l.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// HasItemNamed reports whether an item with the same name, ignoring case, is on the list.
func (l List) HasItemNamed(name string) bool {
	name = strings.TrimSpace(name)
	for _, it := range l.Items {
		if strings.EqualFold(strings.TrimSpace(it.Name), name) {
			return true
		}
	}
	return false
}

// AppendItem returns a new item sequence with it appended. l.Items is not modified.
func (l List) AppendItem(it Item) []Item {
	items := make([]Item, 0, len(l.Items)+1)
	items = append(items, l.Items...)
	return append(items, it)
}

// ReplaceItem returns a new item sequence where the item with it.ID is replaced.
// Order and every other item are preserved.
func (l List) ReplaceItem(it Item) []Item {
	items := make([]Item, len(l.Items))
	for i, cur := range l.Items {
		if cur.ID == it.ID {
			items[i] = it
			continue
		}
		items[i] = cur
	}
	return items
}

// WithoutItem returns a new item sequence without the item with the given id.
func (l List) WithoutItem(id string) []Item {
	items := make([]Item, 0, len(l.Items))
	for _, cur := range l.Items {
		if cur.ID != id {
			items = append(items, cur)
		}
	}
	return items
}

// Partition splits the items into those still to buy and those already purchased,
// preserving order within each group.
func (l List) Partition() (active, purchased []Item) {
	for _, it := range l.Items {
		if it.Purchased {
			purchased = append(purchased, it)
		} else {
			active = append(active, it)
		}
	}
	return active, purchased
}

// Search returns the items whose name contains term, ignoring case.
// An empty term returns every item.
func (l List) Search(term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return l.Clone().Items
	}
	var out []Item
	for _, it := range l.Items {
		if strings.Contains(strings.ToLower(it.Name), term) {
			out = append(out, it)
		}
	}
	return out
}

// Progress returns the fraction of purchased items, 0 for an empty list.
func (l List) Progress() float64 {
	if len(l.Items) == 0 {
		return 0
	}
	_, purchased := l.Partition()
	return float64(len(purchased)) / float64(len(l.Items))
}
