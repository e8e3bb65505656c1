package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/shoplist/list"
)

// Operation names accepted by Memory.Fail.
const (
	OpListAll = "list_all"
	OpInsert  = "insert"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Memory is an in-memory list store with the same contract as Store.
// Lists are cloned on the way in and out.
type Memory struct {
	mu       sync.Mutex
	lists    map[string]list.List
	failures map[string]error
	now      func() time.Time
	newID    func() string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		lists:    make(map[string]list.List),
		failures: make(map[string]error),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetClock replaces the time source used for timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Fail makes every subsequent call of op return err. A nil err clears it.
func (m *Memory) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Seed stores l as-is, for test setup.
func (m *Memory) Seed(l list.List) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[l.ID] = l.Clone()
}

// ListAll returns every list of ownerID, newest first.
func (m *Memory) ListAll(_ context.Context, ownerID string) ([]list.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[OpListAll]; err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, ErrMissingOwner
	}

	var out []list.List
	for _, l := range m.lists {
		if l.OwnerID == ownerID {
			out = append(out, l.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// Insert creates an empty list.
func (m *Memory) Insert(_ context.Context, ownerID, name string) (list.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[OpInsert]; err != nil {
		return list.List{}, err
	}
	if ownerID == "" {
		return list.List{}, ErrMissingOwner
	}

	id := m.newID()
	if _, exists := m.lists[id]; exists {
		return list.List{}, ErrAlreadyExists
	}
	now := m.now().UTC()
	l := list.List{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Items:     []list.Item{},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	m.lists[id] = l
	return l.Clone(), nil
}

// Replace applies patch to list id if ownerID owns it.
func (m *Memory) Replace(_ context.Context, id, ownerID string, patch list.Patch) (list.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[OpReplace]; err != nil {
		return list.List{}, err
	}
	if ownerID == "" {
		return list.List{}, ErrMissingOwner
	}

	l, ok := m.lists[id]
	if !ok || l.OwnerID != ownerID {
		return list.List{}, ErrNotFound
	}
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Items != nil {
		l.Items = make([]list.Item, len(patch.Items))
		copy(l.Items, patch.Items)
	}
	l.UpdatedAt = m.now().UTC()
	l.Version++
	m.lists[id] = l
	return l.Clone(), nil
}

// Remove deletes list id if ownerID owns it. Absent lists are not an error.
func (m *Memory) Remove(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[OpRemove]; err != nil {
		return err
	}
	if ownerID == "" {
		return ErrMissingOwner
	}

	if l, ok := m.lists[id]; ok && l.OwnerID == ownerID {
		delete(m.lists, id)
	}
	return nil
}
