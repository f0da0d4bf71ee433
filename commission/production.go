/*
production.go - Team production ledger

PURPOSE:
  Maintains each agent's cumulative trailing team production and keeps
  their tier title consistent with it. Production is DERIVED state: the
  incremental path (Apply) updates it on every distribution, and the
  scheduled full rebuild (RebuildAll) replaces it from the distributed
  order history to correct drift and expire aged-out production.

INVARIANTS:
  - Production never goes below zero (FloorZero on every write).
  - After Apply, every affected agent's tier satisfies Reconcile:
    highest chart row whose threshold <= production, never moved backward.
  - RebuildAll REPLACES each agent's value (idempotent: running it twice
    with no new orders yields identical state) and then reconciles every
    tier. Reconciliation is advance-only even here; titles earned before
    production aged out are retained.

SEE ALSO:
  - tier.go: Reconcile / TierFor
  - distributor.go: Calls Apply between sub-segments
  - api/scheduler.go: Runs RebuildAll daily
*/
package commission

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PRODUCTION LEDGER
// =============================================================================

// ProductionLedger mutates agent production and tier through a Store.
// Construct one per transaction scope: the Store should be the WithTx view
// when called inside a distribution.
type ProductionLedger struct {
	Store Store
	Chart *Chart
}

func NewProductionLedger(store Store, chart *Chart) *ProductionLedger {
	return &ProductionLedger{Store: store, Chart: chart}
}

// Apply adds delta (may be negative) to the agent's and every upline's
// cumulative team production, flooring each result at zero, then reconciles
// each affected agent's tier. Tier persists only when it changes - the
// production write always happens.
func (pl *ProductionLedger) Apply(ctx context.Context, agentID AgentID, delta Money) error {
	resolver := NewResolver(pl.Store)
	chain, err := resolver.UplineChain(ctx, agentID)
	if err != nil {
		return fmt.Errorf("apply production for %s: %w", agentID, err)
	}

	for _, a := range chain {
		production := a.TeamProduction.Add(delta).FloorZero()
		tier := pl.Chart.Reconcile(production, a.TierTitle)
		if err := pl.Store.SetProduction(ctx, a.ID, production, tier); err != nil {
			return fmt.Errorf("apply production for %s: %w", a.ID, err)
		}
	}
	return nil
}

// ApplyReversal subtracts amount from the agent's and every upline's
// production, floored at zero, WITHOUT reconciling tier. Missing agents are
// skipped silently (best-effort administrative correction). This preserves
// the reference behavior of not demoting on reversal; the daily rebuild
// eventually squares tier with production.
func (pl *ProductionLedger) ApplyReversal(ctx context.Context, agentID AgentID, amount Money) error {
	resolver := NewResolver(pl.Store)
	chain, err := resolver.UplineChain(ctx, agentID)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	for _, a := range chain {
		production := a.TeamProduction.Sub(amount).FloorZero()
		if err := pl.Store.SetProduction(ctx, a.ID, production, a.TierTitle); err != nil {
			if IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// =============================================================================
// FULL REBUILD
// =============================================================================

// RebuildAll recomputes every agent's team production from scratch as the
// sum of base premiums of all distributed orders within the trailing window
// attributed to the agent or any downline, then reassigns every tier.
//
// The whole run executes in one pass over a single hierarchy snapshot and
// a single order scan per product line - never one query per node.
func (pl *ProductionLedger) RebuildAll(ctx context.Context, asOf time.Time, windowMonths int) error {
	snapshot, err := NewResolver(pl.Store).Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	cutoff := asOf.AddDate(0, -windowMonths, 0)

	// Personal production per writing agent within the window.
	personal := make(map[AgentID]Money)
	for _, line := range []ProductLine{LineLife, LineAnnuity} {
		orders, err := pl.Store.ListDistributedSince(ctx, line, cutoff)
		if err != nil {
			return fmt.Errorf("rebuild: list %s orders: %w", line, err)
		}
		for _, o := range orders {
			personal[o.AgentID] = personal[o.AgentID].Add(o.BasePremium())
		}
	}

	// Team production = own + entire downline's personal production.
	for _, a := range snapshot.Agents() {
		total := personal[a.ID]
		downline, err := snapshot.DownlineIDs(a.ID)
		if err != nil {
			return fmt.Errorf("rebuild: downline of %s: %w", a.ID, err)
		}
		for id := range downline {
			total = total.Add(personal[id])
		}

		tier := pl.Chart.Reconcile(total, a.TierTitle)
		if total.Equal(a.TeamProduction) && tier == a.TierTitle {
			continue
		}
		if err := pl.Store.SetProduction(ctx, a.ID, total, tier); err != nil {
			return fmt.Errorf("rebuild: set production for %s: %w", a.ID, err)
		}
	}
	return nil
}
