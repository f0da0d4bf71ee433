/*
store.go - Persistence interface for agents, orders, and the commission ledger

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite, PostgreSQL, or in-memory storage.

KEY INTERFACES:
  AgentStore: Agent lookup and derived-state updates
  EntryStore: Append-only commission ledger
  OrderStore: Typed per-line active/archive order tables
  Store:      Composition of the three
  TxStore:    Transactional scope (atomic multi-entity writes)

LEDGER CONTRACT:
  The commission ledger is append-only:
  - AppendEntries(): insert rows
  - AmendExplanation(): the ONLY permitted mutation (administrative
    comment amendment) - amounts and percents are immutable
  - NO delete

ORDER TABLE SELECTION:
  The legacy system selected among near-identical tables by building SQL
  from a validated table-name string. Here the selection is a tagged
  variant: every OrderStore method takes a ProductLine, and active vs.
  archive is expressed by separate methods. Implementations switch on the
  line; identifiers are never string-built from input.

TRANSACTION SCOPE:
  All mutation for one order's distribution (sub-segments, overrides,
  ledger rows, archival) must run inside a single WithTx scope so a
  failure rolls back the whole order and concurrent distributions
  serialize their updates to shared uplines.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - commission/store/memory.go: In-memory for testing

SEE ALSO:
  - distributor.go: The main WithTx consumer
  - production.go: Agent derived-state updates
*/
package commission

import (
	"context"
	"time"
)

// =============================================================================
// AGENT STORE
// =============================================================================

type AgentStore interface {
	// GetAgent returns the agent or an error wrapping ErrAgentNotFound.
	GetAgent(ctx context.Context, id AgentID) (*Agent, error)

	// GetAgents bulk-loads a set of agents. Missing ids are simply absent
	// from the result map, not an error.
	GetAgents(ctx context.Context, ids []AgentID) (map[AgentID]*Agent, error)

	// ListAgents returns every agent. Used for bulk hierarchy snapshots.
	ListAgents(ctx context.Context) ([]*Agent, error)

	// PutAgent inserts a new agent.
	PutAgent(ctx context.Context, a *Agent) error

	// SetProduction replaces the agent's team production and tier title.
	SetProduction(ctx context.Context, id AgentID, production Money, tier string) error

	// AddEarnings adds delta to the agent's lifetime earnings.
	// Returns an error wrapping ErrAgentNotFound for missing agents;
	// best-effort reversal paths skip that case silently.
	AddEarnings(ctx context.Context, id AgentID, delta Money) error
}

// =============================================================================
// COMMISSION LEDGER STORE (append-only)
// =============================================================================

type EntryStore interface {
	// AppendEntries inserts ledger rows. Fails with ErrDuplicateEntry if an
	// id already exists.
	AppendEntries(ctx context.Context, entries []Entry) error

	// EntriesByOrder returns all rows referencing the order, insertion order.
	EntriesByOrder(ctx context.Context, orderID OrderID) ([]Entry, error)

	// EntriesByAgent returns all rows benefiting the agent, insertion order.
	EntriesByAgent(ctx context.Context, agentID AgentID) ([]Entry, error)

	// AmendExplanation replaces an entry's free-text explanation.
	// The only mutation the ledger permits.
	AmendExplanation(ctx context.Context, id EntryID, explanation string) error
}

// =============================================================================
// ORDER STORE - Typed {line} x {active, archive} repositories
// =============================================================================

type OrderStore interface {
	GetActiveOrder(ctx context.Context, line ProductLine, id OrderID) (*Order, error)
	ListActiveOrders(ctx context.Context, line ProductLine) ([]*Order, error)
	InsertActiveOrder(ctx context.Context, o *Order) error
	DeleteActiveOrder(ctx context.Context, line ProductLine, id OrderID) error

	GetArchivedOrder(ctx context.Context, line ProductLine, id OrderID) (*Order, error)
	ListArchivedOrders(ctx context.Context, line ProductLine) ([]*Order, error)
	InsertArchivedOrder(ctx context.Context, o *Order) error
	DeleteArchivedOrder(ctx context.Context, line ProductLine, id OrderID) error
	UpdateArchivedNotes(ctx context.Context, line ProductLine, id OrderID, notes string) error

	// ListDistributedSince returns archived distributed orders created at or
	// after the cutoff. Feeds the trailing-window production rebuild.
	ListDistributedSince(ctx context.Context, line ProductLine, since time.Time) ([]*Order, error)
}

// =============================================================================
// COMPOSITE STORE
// =============================================================================

type Store interface {
	AgentStore
	EntryStore
	OrderStore
}

// TxStore wraps Store with transaction support.
//
// If fn returns an error the transaction is rolled back; otherwise it is
// committed. Implementations must serialize overlapping WithTx scopes so
// no concurrent distribution observes partially-updated team production.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
