/*
hierarchy.go - Introducer hierarchy resolution

PURPOSE:
  Agents form a forest through introducer references. This file resolves
  the two traversals the engine needs:
  - UplineChain: an agent plus their introducers up to the root
  - DownlineIDs: every agent recursively below a root

CYCLE SAFETY:
  Introducer data must never cycle, but the traversals never trust that.
  Every walk tracks visited ids and fails with a HierarchyError the moment
  an id repeats. A cycle is a fatal integrity fault, not a recoverable
  condition.

SNAPSHOT vs LIVE:
  Snapshot() bulk-loads the whole agent set once and answers both
  traversals from an in-memory adjacency. Reports and the rebuild job MUST
  use the snapshot: one store round trip per node does not scale and risks
  reading inconsistent state across a long run. The distributor resolves
  the upline ID CHAIN once per segment, then re-reads those agents fresh
  per sub-segment where the algorithm requires current tier state.

SEE ALSO:
  - production.go: Applies production deltas along the upline chain
  - distributor.go: Prices per-generation overrides along the chain
*/
package commission

import "context"

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver answers hierarchy queries over an AgentStore.
type Resolver struct {
	Agents AgentStore
}

func NewResolver(agents AgentStore) *Resolver {
	return &Resolver{Agents: agents}
}

// UplineChain returns the agent followed by each introducer up to the root.
// Fails with ErrAgentNotFound if the starting agent is missing; a missing
// INTERMEDIATE introducer ends the chain early (dangling reference, treated
// as root). Fails with a HierarchyError on a cycle.
func (r *Resolver) UplineChain(ctx context.Context, id AgentID) ([]*Agent, error) {
	first, err := r.Agents.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	chain := []*Agent{first}
	visited := map[AgentID]bool{id: true}
	path := []AgentID{id}

	current := first
	for current.IntroducerID != "" {
		next := current.IntroducerID
		if visited[next] {
			return nil, &HierarchyError{AgentID: next, Path: append(path, next)}
		}
		up, err := r.Agents.GetAgent(ctx, next)
		if err != nil {
			if IsNotFound(err) {
				break
			}
			return nil, err
		}
		visited[next] = true
		path = append(path, next)
		chain = append(chain, up)
		current = up
	}
	return chain, nil
}

// UplineIDs returns just the id chain, agent first.
func (r *Resolver) UplineIDs(ctx context.Context, id AgentID) ([]AgentID, error) {
	chain, err := r.UplineChain(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]AgentID, len(chain))
	for i, a := range chain {
		ids[i] = a.ID
	}
	return ids, nil
}

// Snapshot bulk-loads every agent for adjacency-based traversal.
func (r *Resolver) Snapshot(ctx context.Context) (*Snapshot, error) {
	agents, err := r.Agents.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(agents), nil
}

// =============================================================================
// SNAPSHOT - One bulk load, many traversals
// =============================================================================

// Snapshot is a point-in-time view of the whole hierarchy.
type Snapshot struct {
	byID     map[AgentID]*Agent
	children map[AgentID][]AgentID
}

func NewSnapshot(agents []*Agent) *Snapshot {
	s := &Snapshot{
		byID:     make(map[AgentID]*Agent, len(agents)),
		children: make(map[AgentID][]AgentID),
	}
	for _, a := range agents {
		s.byID[a.ID] = a
	}
	for _, a := range agents {
		if a.IntroducerID != "" {
			s.children[a.IntroducerID] = append(s.children[a.IntroducerID], a.ID)
		}
	}
	return s
}

// Agent returns the snapshotted agent, or nil.
func (s *Snapshot) Agent(id AgentID) *Agent { return s.byID[id] }

// Agents returns all snapshotted agents.
func (s *Snapshot) Agents() []*Agent {
	out := make([]*Agent, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	return out
}

// UplineChain resolves the chain from the snapshot, cycle-checked.
func (s *Snapshot) UplineChain(id AgentID) ([]*Agent, error) {
	first, ok := s.byID[id]
	if !ok {
		return nil, ErrAgentNotFound
	}

	chain := []*Agent{first}
	visited := map[AgentID]bool{id: true}
	path := []AgentID{id}

	current := first
	for current.IntroducerID != "" {
		next := current.IntroducerID
		if visited[next] {
			return nil, &HierarchyError{AgentID: next, Path: append(path, next)}
		}
		up, ok := s.byID[next]
		if !ok {
			break // dangling introducer reference, treat as root
		}
		visited[next] = true
		path = append(path, next)
		chain = append(chain, up)
		current = up
	}
	return chain, nil
}

// DownlineIDs returns the set of agent ids strictly below root (root
// excluded). Cycle-safe through the visited set.
func (s *Snapshot) DownlineIDs(root AgentID) (map[AgentID]bool, error) {
	if _, ok := s.byID[root]; !ok {
		return nil, ErrAgentNotFound
	}

	out := make(map[AgentID]bool)
	visited := map[AgentID]bool{root: true}
	queue := append([]AgentID(nil), s.children[root]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			return nil, &HierarchyError{AgentID: id, Path: []AgentID{root, id}}
		}
		visited[id] = true
		out[id] = true
		queue = append(queue, s.children[id]...)
	}
	return out, nil
}
