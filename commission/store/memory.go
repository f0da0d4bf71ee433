// Package store provides commission.Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/commission-engine/commission"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Compile-time interface checks.
var (
	_ commission.Store   = (*Memory)(nil)
	_ commission.TxStore = (*TxMemory)(nil)
)

type orderKey struct {
	Line commission.ProductLine
	ID   commission.OrderID
}

type Memory struct {
	mu       sync.RWMutex
	agents   map[commission.AgentID]*commission.Agent
	active   map[orderKey]*commission.Order
	archive  map[orderKey]*commission.Order
	entries  []commission.Entry
	entryIDs map[commission.EntryID]int // index into entries
}

func NewMemory() *Memory {
	return &Memory{
		agents:   make(map[commission.AgentID]*commission.Agent),
		active:   make(map[orderKey]*commission.Order),
		archive:  make(map[orderKey]*commission.Order),
		entryIDs: make(map[commission.EntryID]int),
	}
}

// -----------------------------------------------------------------------------
// AgentStore
// -----------------------------------------------------------------------------

func (m *Memory) GetAgent(_ context.Context, id commission.AgentID) (*commission.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, commission.ErrAgentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) GetAgents(_ context.Context, ids []commission.AgentID) (map[commission.AgentID]*commission.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[commission.AgentID]*commission.Agent, len(ids))
	for _, id := range ids {
		if a, ok := m.agents[id]; ok {
			cp := *a
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *Memory) ListAgents(_ context.Context) ([]*commission.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*commission.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) PutAgent(_ context.Context, a *commission.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.agents[a.ID] = &cp
	return nil
}

func (m *Memory) SetProduction(_ context.Context, id commission.AgentID, production commission.Money, tier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return commission.ErrAgentNotFound
	}
	a.TeamProduction = production
	a.TierTitle = tier
	return nil
}

func (m *Memory) AddEarnings(_ context.Context, id commission.AgentID, delta commission.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return commission.ErrAgentNotFound
	}
	a.Earnings = a.Earnings.Add(delta)
	return nil
}

// -----------------------------------------------------------------------------
// EntryStore (append-only)
// -----------------------------------------------------------------------------

func (m *Memory) AppendEntries(_ context.Context, entries []commission.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if _, exists := m.entryIDs[e.ID]; exists {
			return commission.ErrDuplicateEntry
		}
	}
	for _, e := range entries {
		m.entryIDs[e.ID] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return nil
}

func (m *Memory) EntriesByOrder(_ context.Context, orderID commission.OrderID) ([]commission.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []commission.Entry
	for _, e := range m.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) EntriesByAgent(_ context.Context, agentID commission.AgentID) ([]commission.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []commission.Entry
	for _, e := range m.entries {
		if e.AgentID == agentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) AmendExplanation(_ context.Context, id commission.EntryID, explanation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.entryIDs[id]
	if !ok {
		return commission.ErrEntryNotFound
	}
	m.entries[i].Explanation = explanation
	return nil
}

// -----------------------------------------------------------------------------
// OrderStore
// -----------------------------------------------------------------------------

func (m *Memory) GetActiveOrder(_ context.Context, line commission.ProductLine, id commission.OrderID) (*commission.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.active[orderKey{line, id}]
	if !ok {
		return nil, commission.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *Memory) ListActiveOrders(_ context.Context, line commission.ProductLine) ([]*commission.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listOrders(m.active, line), nil
}

func (m *Memory) InsertActiveOrder(_ context.Context, o *commission.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.active[orderKey{o.Line, o.ID}] = &cp
	return nil
}

func (m *Memory) DeleteActiveOrder(_ context.Context, line commission.ProductLine, id commission.OrderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := orderKey{line, id}
	if _, ok := m.active[k]; !ok {
		return commission.ErrOrderNotFound
	}
	delete(m.active, k)
	return nil
}

func (m *Memory) GetArchivedOrder(_ context.Context, line commission.ProductLine, id commission.OrderID) (*commission.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.archive[orderKey{line, id}]
	if !ok {
		return nil, commission.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *Memory) ListArchivedOrders(_ context.Context, line commission.ProductLine) ([]*commission.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listOrders(m.archive, line), nil
}

func (m *Memory) InsertArchivedOrder(_ context.Context, o *commission.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.archive[orderKey{o.Line, o.ID}] = &cp
	return nil
}

func (m *Memory) DeleteArchivedOrder(_ context.Context, line commission.ProductLine, id commission.OrderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := orderKey{line, id}
	if _, ok := m.archive[k]; !ok {
		return commission.ErrOrderNotFound
	}
	delete(m.archive, k)
	return nil
}

func (m *Memory) UpdateArchivedNotes(_ context.Context, line commission.ProductLine, id commission.OrderID, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.archive[orderKey{line, id}]
	if !ok {
		return commission.ErrOrderNotFound
	}
	o.Notes = notes
	return nil
}

func (m *Memory) ListDistributedSince(_ context.Context, line commission.ProductLine, since time.Time) ([]*commission.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*commission.Order
	for k, o := range m.archive {
		if k.Line != line || o.Status != commission.StatusDistributed {
			continue
		}
		if o.CreatedAt.Before(since) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) listOrders(table map[orderKey]*commission.Order, line commission.ProductLine) []*commission.Order {
	var out []*commission.Order
	for k, o := range table {
		if k.Line == line {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
	txMu sync.Mutex
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn against the store, serializing concurrent scopes. For
// the memory store this is simulated with a snapshot + restore on error.
func (tm *TxMemory) WithTx(_ context.Context, fn func(commission.Store) error) error {
	tm.txMu.Lock()
	defer tm.txMu.Unlock()

	snapshot := tm.snapshot()
	if err := fn(tm.Memory); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	agents   map[commission.AgentID]*commission.Agent
	active   map[orderKey]*commission.Order
	archive  map[orderKey]*commission.Order
	entries  []commission.Entry
	entryIDs map[commission.EntryID]int
}

func (tm *TxMemory) snapshot() memorySnapshot {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	s := memorySnapshot{
		agents:   make(map[commission.AgentID]*commission.Agent, len(tm.agents)),
		active:   make(map[orderKey]*commission.Order, len(tm.active)),
		archive:  make(map[orderKey]*commission.Order, len(tm.archive)),
		entries:  append([]commission.Entry(nil), tm.entries...),
		entryIDs: make(map[commission.EntryID]int, len(tm.entryIDs)),
	}
	for k, v := range tm.agents {
		cp := *v
		s.agents[k] = &cp
	}
	for k, v := range tm.active {
		cp := *v
		s.active[k] = &cp
	}
	for k, v := range tm.archive {
		cp := *v
		s.archive[k] = &cp
	}
	for k, v := range tm.entryIDs {
		s.entryIDs[k] = v
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.agents = s.agents
	tm.active = s.active
	tm.archive = s.archive
	tm.entries = s.entries
	tm.entryIDs = s.entryIDs
}
