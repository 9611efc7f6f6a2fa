package cart

import (
	"errors"
	"sync"
)

var (
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrItemNotFound     = errors.New("cart item not found")
	ErrMutationInFlight = errors.New("another change to this item is still pending")
)

// Change is one optimistic cart mutation.
type Change struct {
	ItemID   string
	Quantity int
	Remove   bool
}

func SetQuantity(itemID string, quantity int) Change {
	return Change{ItemID: itemID, Quantity: quantity}
}

func RemoveItem(itemID string) Change {
	return Change{ItemID: itemID, Remove: true}
}

// Manager holds the local view of one user's cart and runs each mutation as
// an explicit transaction: Begin applies the change optimistically, Commit
// replaces the whole cart with the server's authoritative answer, Rollback
// restores the pre-change snapshot.
//
// Every transaction carries a monotonically increasing token. A commit or
// rollback older than the newest one applied is discarded, so two racing
// edits resolve as last-write-wins instead of silently reviving stale state.
type Manager struct {
	mu          sync.Mutex
	current     Cart
	nextToken   uint64
	lastApplied uint64
	inFlight    map[string]bool
}

func NewManager(c Cart) *Manager {
	c.Recalculate()
	return &Manager{current: c, inFlight: make(map[string]bool)}
}

// Cart returns a copy of the current local view, optimistic edits included.
func (m *Manager) Cart() Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Replace installs a fresh server-fetched cart, superseding anything older.
func (m *Manager) Replace(c Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextToken++
	m.lastApplied = m.nextToken
	m.current = c.Clone()
}

// Begin validates the change, snapshots the cart, applies the change
// optimistically and returns the transaction plus the optimistic view.
// The item stays marked pending until Commit or Rollback.
func (m *Manager) Begin(ch Change) (*Txn, Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !ch.Remove && ch.Quantity < 0 {
		return nil, Cart{}, ErrNegativeQuantity
	}
	idx, ok := m.current.item(ch.ItemID)
	if !ok {
		return nil, Cart{}, ErrItemNotFound
	}
	if m.inFlight[ch.ItemID] {
		return nil, Cart{}, ErrMutationInFlight
	}

	snapshot := m.current.Clone()

	if ch.Remove || ch.Quantity == 0 {
		m.current.Items = append(m.current.Items[:idx], m.current.Items[idx+1:]...)
	} else {
		m.current.Items[idx].Quantity = ch.Quantity
	}
	m.current.Recalculate()

	m.nextToken++
	m.inFlight[ch.ItemID] = true

	t := &Txn{m: m, token: m.nextToken, itemID: ch.ItemID, snapshot: snapshot}
	return t, m.current.Clone(), nil
}

type Txn struct {
	m        *Manager
	token    uint64
	itemID   string
	snapshot Cart
	done     bool
}

// Commit installs the server's authoritative cart. Returns false if a newer
// transaction already resolved, in which case the response is discarded.
func (t *Txn) Commit(server Cart) bool {
	return t.finish(func(m *Manager) {
		server.Recalculate()
		m.current = server.Clone()
	})
}

// Rollback restores the snapshot taken at Begin. Returns false if a newer
// transaction already resolved.
func (t *Txn) Rollback() bool {
	return t.finish(func(m *Manager) {
		m.current = t.snapshot
	})
}

func (t *Txn) finish(apply func(*Manager)) bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	delete(t.m.inFlight, t.itemID)

	if t.token < t.m.lastApplied {
		return false // a newer response already landed
	}
	t.m.lastApplied = t.token
	apply(t.m)
	return true
}

// Registry hands out one Manager per session so concurrent requests for the
// same user share sequencing state.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

func (r *Registry) Lookup(key string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[key]
	return m, ok
}

// Attach binds a cart to the key, creating the manager if needed. An existing
// manager is refreshed via Replace rather than recreated, so open
// transactions against it resolve as stale.
func (r *Registry) Attach(key string, c Cart) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[key]; ok {
		m.Replace(c)
		return m
	}
	m := NewManager(c)
	r.managers[key] = m
	return m
}

func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, key)
}
