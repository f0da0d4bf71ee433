package commission_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/commission/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testAgent(id, introducer, tier string) *commission.Agent {
	return &commission.Agent{
		ID:             commission.AgentID(id),
		Name:           "Agent " + id,
		IntroducerID:   commission.AgentID(introducer),
		TierTitle:      tier,
		TeamProduction: commission.ZeroMoney(),
		Earnings:       commission.ZeroMoney(),
		CreatedAt:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// seedAgents inserts agents into a fresh memory store.
func seedAgents(t *testing.T, agents ...*commission.Agent) *store.TxMemory {
	t.Helper()
	st := store.NewTxMemory()
	ctx := context.Background()
	for _, a := range agents {
		if err := st.PutAgent(ctx, a); err != nil {
			t.Fatalf("seed agent %s: %v", a.ID, err)
		}
	}
	return st
}

// =============================================================================
// UPLINE CHAIN
// =============================================================================

func TestUplineChain_AgentFirstThenIntroducers(t *testing.T) {
	// GIVEN: carol -> bob -> alice (root)
	// WHEN: Resolving carol's chain
	// THEN: [carol, bob, alice]

	st := seedAgents(t,
		testAgent("alice", "", "Manager"),
		testAgent("bob", "alice", "Senior Agent"),
		testAgent("carol", "bob", "Agent"),
	)

	chain, err := commission.NewResolver(st).UplineChain(context.Background(), "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("expected chain of 3, got %d", len(chain))
	}
	want := []commission.AgentID{"carol", "bob", "alice"}
	for i, id := range want {
		if chain[i].ID != id {
			t.Errorf("chain[%d]: expected %s, got %s", i, id, chain[i].ID)
		}
	}
}

func TestUplineChain_MissingStartingAgent(t *testing.T) {
	st := seedAgents(t)
	_, err := commission.NewResolver(st).UplineChain(context.Background(), "ghost")
	if !commission.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestUplineChain_DanglingIntroducerEndsChain(t *testing.T) {
	// GIVEN: bob's introducer was deleted
	// WHEN: Resolving bob's chain
	// THEN: The chain ends at bob, no error

	st := seedAgents(t, testAgent("bob", "deleted", "Agent"))

	chain, err := commission.NewResolver(st).UplineChain(context.Background(), "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 1 || chain[0].ID != "bob" {
		t.Errorf("expected chain [bob], got %v", chain)
	}
}

func TestUplineChain_CycleDetected(t *testing.T) {
	// GIVEN: a -> b -> c -> a (corrupt data)
	// WHEN: Resolving any member's chain
	// THEN: A HierarchyError, not an infinite loop

	st := seedAgents(t,
		testAgent("a", "c", "Agent"),
		testAgent("b", "a", "Agent"),
		testAgent("c", "b", "Agent"),
	)

	_, err := commission.NewResolver(st).UplineChain(context.Background(), "a")
	var hierr *commission.HierarchyError
	if !errors.As(err, &hierr) {
		t.Fatalf("expected HierarchyError, got %v", err)
	}
	if !errors.Is(err, commission.ErrHierarchyCycle) {
		t.Error("HierarchyError should unwrap to ErrHierarchyCycle")
	}
}

func TestUplineChain_SelfIntroducer(t *testing.T) {
	st := seedAgents(t, testAgent("a", "a", "Agent"))
	_, err := commission.NewResolver(st).UplineChain(context.Background(), "a")
	if !errors.Is(err, commission.ErrHierarchyCycle) {
		t.Errorf("expected cycle error for self-introducer, got %v", err)
	}
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestSnapshot_DownlineExcludesRoot(t *testing.T) {
	// GIVEN: alice with bob and carol below, dave under bob
	// WHEN: Collecting alice's downline
	// THEN: {bob, carol, dave}, alice excluded

	st := seedAgents(t,
		testAgent("alice", "", "Director"),
		testAgent("bob", "alice", "Manager"),
		testAgent("carol", "alice", "Agent"),
		testAgent("dave", "bob", "Agent"),
		testAgent("eve", "", "Agent"), // unrelated tree
	)

	snap, err := commission.NewResolver(st).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	downline, err := snap.DownlineIDs("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(downline) != 3 {
		t.Fatalf("expected 3 in downline, got %d: %v", len(downline), downline)
	}
	for _, id := range []commission.AgentID{"bob", "carol", "dave"} {
		if !downline[id] {
			t.Errorf("expected %s in downline", id)
		}
	}
	if downline["alice"] || downline["eve"] {
		t.Error("downline must exclude the root and unrelated agents")
	}
}

func TestSnapshot_DownlineOfLeafIsEmpty(t *testing.T) {
	st := seedAgents(t,
		testAgent("alice", "", "Agent"),
		testAgent("bob", "alice", "Agent"),
	)
	snap, _ := commission.NewResolver(st).Snapshot(context.Background())

	downline, err := snap.DownlineIDs("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(downline) != 0 {
		t.Errorf("expected empty downline, got %v", downline)
	}
}

func TestSnapshot_DownlineUnknownRoot(t *testing.T) {
	snap := commission.NewSnapshot(nil)
	if _, err := snap.DownlineIDs("ghost"); !commission.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestSnapshot_UplineChainMatchesResolver(t *testing.T) {
	st := seedAgents(t,
		testAgent("alice", "", "Manager"),
		testAgent("bob", "alice", "Agent"),
	)
	snap, _ := commission.NewResolver(st).Snapshot(context.Background())

	chain, err := snap.UplineChain("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 || chain[0].ID != "bob" || chain[1].ID != "alice" {
		t.Errorf("unexpected chain: %v", chain)
	}
}
