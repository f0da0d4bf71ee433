package commission_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/commission-engine/commission"
)

// =============================================================================
// INCREMENTAL APPLY
// =============================================================================

func TestApply_PropagatesUpTheChain(t *testing.T) {
	// GIVEN: carol -> bob -> alice
	// WHEN: Applying 1,000 to carol
	// THEN: All three agents' production rises by 1,000

	st := seedAgents(t,
		testAgent("alice", "", "Agent"),
		testAgent("bob", "alice", "Agent"),
		testAgent("carol", "bob", "Agent"),
	)
	ctx := context.Background()
	ledger := commission.NewProductionLedger(st, testChart())

	if err := ledger.Apply(ctx, "carol", money(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []commission.AgentID{"alice", "bob", "carol"} {
		a, _ := st.GetAgent(ctx, id)
		if !a.TeamProduction.Equal(money(1000)) {
			t.Errorf("%s: expected production 1000, got %s", id, a.TeamProduction)
		}
	}
}

func TestApply_ReconcilesTierOnCrossing(t *testing.T) {
	// GIVEN: alice at 9,500 production, boundary at 10,000
	// WHEN: Applying 1,000
	// THEN: alice is promoted to Senior Agent

	alice := testAgent("alice", "", "Agent")
	alice.TeamProduction = money(9500)
	st := seedAgents(t, alice)
	ctx := context.Background()

	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.Apply(ctx, "alice", money(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := st.GetAgent(ctx, "alice")
	if got.TierTitle != "Senior Agent" {
		t.Errorf("expected Senior Agent, got %s", got.TierTitle)
	}
	if !got.TeamProduction.Equal(money(10500)) {
		t.Errorf("expected production 10500, got %s", got.TeamProduction)
	}
}

func TestApply_NegativeDeltaFloorsAtZero(t *testing.T) {
	// GIVEN: alice at 300 production
	// WHEN: Applying -1,000
	// THEN: Production floors at zero, tier untouched

	alice := testAgent("alice", "", "Agent")
	alice.TeamProduction = money(300)
	st := seedAgents(t, alice)
	ctx := context.Background()

	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.Apply(ctx, "alice", money(-1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := st.GetAgent(ctx, "alice")
	if !got.TeamProduction.IsZero() {
		t.Errorf("expected production 0, got %s", got.TeamProduction)
	}
}

func TestApply_MissingAgentFails(t *testing.T) {
	st := seedAgents(t)
	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.Apply(context.Background(), "ghost", money(100)); !commission.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

// =============================================================================
// REVERSAL
// =============================================================================

func TestApplyReversal_SubtractsWithoutTierChange(t *testing.T) {
	// GIVEN: A Senior Agent at 12,000 production
	// WHEN: Reversing 5,000
	// THEN: Production drops to 7,000 but the title is retained

	alice := testAgent("alice", "", "Senior Agent")
	alice.TeamProduction = money(12000)
	st := seedAgents(t, alice)
	ctx := context.Background()

	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.ApplyReversal(ctx, "alice", money(5000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := st.GetAgent(ctx, "alice")
	if !got.TeamProduction.Equal(money(7000)) {
		t.Errorf("expected production 7000, got %s", got.TeamProduction)
	}
	if got.TierTitle != "Senior Agent" {
		t.Errorf("reversal must not demote, got %s", got.TierTitle)
	}
}

func TestApplyReversal_MissingAgentIsSilent(t *testing.T) {
	st := seedAgents(t)
	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.ApplyReversal(context.Background(), "ghost", money(100)); err != nil {
		t.Errorf("expected silent skip, got %v", err)
	}
}

// =============================================================================
// FULL REBUILD
// =============================================================================

func archivedOrder(id string, owner commission.AgentID, premium float64, createdAt time.Time) *commission.Order {
	return &commission.Order{
		ID:            commission.OrderID(id),
		Line:          commission.LineLife,
		AgentID:       owner,
		AgentName:     "Agent " + string(owner),
		TargetPremium: money(premium),
		Status:        commission.StatusDistributed,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestRebuildAll_SumsDownlineRawPremiums(t *testing.T) {
	// GIVEN: bob under alice; bob wrote 8,000, alice 3,000, all recent.
	//        Incremental state was drifted on purpose.
	// WHEN: Rebuilding over a 12-month window
	// THEN: alice = 11,000 (own + downline), bob = 8,000

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	alice := testAgent("alice", "", "Agent")
	alice.TeamProduction = money(999999) // drift
	bob := testAgent("bob", "alice", "Agent")
	st := seedAgents(t, alice, bob)
	ctx := context.Background()

	st.InsertArchivedOrder(ctx, archivedOrder("o1", "bob", 8000, now.AddDate(0, -1, 0)))
	st.InsertArchivedOrder(ctx, archivedOrder("o2", "alice", 3000, now.AddDate(0, -2, 0)))

	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.RebuildAll(ctx, now, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotAlice, _ := st.GetAgent(ctx, "alice")
	if !gotAlice.TeamProduction.Equal(money(11000)) {
		t.Errorf("alice: expected 11000, got %s", gotAlice.TeamProduction)
	}
	gotBob, _ := st.GetAgent(ctx, "bob")
	if !gotBob.TeamProduction.Equal(money(8000)) {
		t.Errorf("bob: expected 8000, got %s", gotBob.TeamProduction)
	}
	if gotAlice.TierTitle != "Senior Agent" {
		t.Errorf("alice: expected Senior Agent after rebuild, got %s", gotAlice.TierTitle)
	}
}

func TestRebuildAll_ExcludesAgedOutOrders(t *testing.T) {
	// GIVEN: One order inside the window and one outside it
	// WHEN: Rebuilding
	// THEN: Only the recent order counts

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	st := seedAgents(t, testAgent("alice", "", "Agent"))
	ctx := context.Background()

	st.InsertArchivedOrder(ctx, archivedOrder("recent", "alice", 2000, now.AddDate(0, -3, 0)))
	st.InsertArchivedOrder(ctx, archivedOrder("ancient", "alice", 50000, now.AddDate(0, -14, 0)))

	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.RebuildAll(ctx, now, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := st.GetAgent(ctx, "alice")
	if !got.TeamProduction.Equal(money(2000)) {
		t.Errorf("expected 2000, got %s", got.TeamProduction)
	}
}

func TestRebuildAll_RetainsEarnedTitleWhenProductionAgesOut(t *testing.T) {
	// GIVEN: A Manager whose qualifying production has aged out entirely
	// WHEN: Rebuilding
	// THEN: Production drops to zero but the title is retained

	alice := testAgent("alice", "", "Manager")
	alice.TeamProduction = money(60000)
	st := seedAgents(t, alice)
	ctx := context.Background()

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.RebuildAll(ctx, now, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := st.GetAgent(ctx, "alice")
	if !got.TeamProduction.IsZero() {
		t.Errorf("expected production 0, got %s", got.TeamProduction)
	}
	if got.TierTitle != "Manager" {
		t.Errorf("expected Manager retained, got %s", got.TierTitle)
	}
}

func TestRebuildAll_Idempotent(t *testing.T) {
	// GIVEN: A rebuilt state
	// WHEN: Rebuilding again with no new orders
	// THEN: State is identical

	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	st := seedAgents(t,
		testAgent("alice", "", "Agent"),
		testAgent("bob", "alice", "Agent"),
	)
	ctx := context.Background()
	st.InsertArchivedOrder(ctx, archivedOrder("o1", "bob", 12000, now.AddDate(0, -1, 0)))

	ledger := commission.NewProductionLedger(st, testChart())
	if err := ledger.RebuildAll(ctx, now, 12); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	first, _ := st.GetAgent(ctx, "alice")

	if err := ledger.RebuildAll(ctx, now, 12); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	second, _ := st.GetAgent(ctx, "alice")

	if !first.TeamProduction.Equal(second.TeamProduction) || first.TierTitle != second.TierTitle {
		t.Errorf("rebuild not idempotent: %s/%s vs %s/%s",
			first.TeamProduction, first.TierTitle, second.TeamProduction, second.TierTitle)
	}
}
