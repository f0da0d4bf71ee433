/*
distributor.go - Commission distribution for a completed order

PURPOSE:
  The orchestrator. Given a completed order it computes how much every
  person in the hierarchy earns, at what rate, and why, then writes the
  ledger rows, updates lifetime earnings and team production, and archives
  the order - all inside ONE transaction scope.

ALGORITHM (per order):
  1. Resolve product metadata. Not-found means zero rates, never fatal.
  2. Rate segments:
       annuity             -> (flex premium, product rate)
       life, paid<=target  -> (paid premium, product rate)
       life, paid> target  -> (target, product rate) + (paid-target, excess)
  3. Per segment: baseAmount = amount x rate / 100, threshold-split over
     the owner's chain, then per sub-segment SEQUENTIALLY:
       a. re-read the chain's CURRENT tiers (prior sub-segments promote)
       b. personal  += sub x ownerTierPct / 100
       c. walk uplines with a running effective percent; an upline whose
          tier percent exceeds it by more than 0.01 accrues the difference
          (level-difference override) and raises the effective percent
       d. management-tier uplines in the first 3 generations accrue the
          fixed generation override (5% / 3% / 1%), independent of (c)
       e. apply the sub-amount to team production so the next sub-segment
          sees updated state
  4. Write ONE merged row per (beneficiary, category) per segment, rounded
     to 2 decimals, and add each amount to lifetime earnings.
  5. Mark the order distributed, copy to archive, delete from active.

  Zero or negative segment amount/rate: skipped silently.

SEE ALSO:
  - threshold.go: Sub-segment boundaries
  - production.go: Production application between sub-segments
  - lifecycle/: Split duplication happens BEFORE distribution; the
    distributor is unaware of splits
*/
package commission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT RATES - Contract with the external product resolver
// =============================================================================

// Rates is the product metadata the distributor prices against.
// A zero Rates value means "no override applies" for every rule.
type Rates struct {
	Product decimal.Decimal // first-year base rate
	Excess  decimal.Decimal // life premium above target
	Renewal decimal.Decimal // renewal commission rate
	Fiso    decimal.Decimal // expected carrier payment rate (audit only)
}

// ProductResolver looks up product metadata. Implementations must treat
// not-found as (zero Rates, false), never an error.
type ProductResolver interface {
	Resolve(line ProductLine, carrier, product, ageBracket string) (Rates, bool)
}

// =============================================================================
// DISTRIBUTOR
// =============================================================================

// levelTolerance is the minimum tier-percent difference that pays a
// level-difference override.
var levelTolerance = decimal.NewFromFloat(0.01)

// generationPercents are the fixed overrides paid to management-tier
// uplines: 5% at generation 0, 3% at generation 1, 1% at generation 2.
var generationPercents = []decimal.Decimal{
	decimal.NewFromInt(5),
	decimal.NewFromInt(3),
	decimal.NewFromInt(1),
}

type Distributor struct {
	Store    TxStore
	Chart    *Chart
	Products ProductResolver

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

func NewDistributor(store TxStore, chart *Chart, products ProductResolver) *Distributor {
	return &Distributor{
		Store:    store,
		Chart:    chart,
		Products: products,
		Now:      time.Now,
		NewID:    func() string { return uuid.NewString() },
	}
}

// Distribute prices an active order and archives it as distributed.
// The full effect is atomic; transient store failures retry a bounded
// number of times.
func (d *Distributor) Distribute(ctx context.Context, line ProductLine, id OrderID) error {
	return WithRetry(ctx, func() error {
		return d.Store.WithTx(ctx, func(st Store) error {
			return d.distribute(ctx, st, line, id)
		})
	})
}

func (d *Distributor) distribute(ctx context.Context, st Store, line ProductLine, id OrderID) error {
	if !line.Valid() {
		return &ValidationError{Field: "line", Reason: string(line)}
	}
	order, err := st.GetActiveOrder(ctx, line, id)
	if err != nil {
		return err
	}
	if order.AgentID == "" {
		return &ValidationError{Field: "agent_id", Reason: "order has no owning agent"}
	}

	rates, _ := d.Products.Resolve(order.Line, order.Carrier, order.Product, order.AgeBracket)

	for _, seg := range rateSegments(order, rates) {
		if !seg.amount.IsPositive() || !seg.rate.IsPositive() {
			continue
		}
		baseAmount := seg.amount.Percent(seg.rate)
		if !baseAmount.IsPositive() {
			continue
		}
		if err := d.distributeSegment(ctx, st, order, seg, baseAmount); err != nil {
			return err
		}
	}

	// Archive within the same transaction: no partial distribution is ever
	// visible, and no order can be distributed twice.
	now := d.Now()
	order.Status = StatusDistributed
	order.UpdatedAt = now
	if err := st.InsertArchivedOrder(ctx, order); err != nil {
		return fmt.Errorf("archive order %s: %w", order.ID, err)
	}
	if err := st.DeleteActiveOrder(ctx, line, id); err != nil {
		return fmt.Errorf("remove active order %s: %w", order.ID, err)
	}
	return nil
}

// =============================================================================
// RATE SEGMENTS
// =============================================================================

type rateSegment struct {
	amount Money
	rate   decimal.Decimal
	label  string // "base premium" or "excess premium", for explanations
}

// rateSegments splits an order into the slices priced at distinct product
// rates. The order's own product rate wins for the base slice; the
// resolver's rate is the fallback when the order carries none.
func rateSegments(o *Order, rates Rates) []rateSegment {
	baseRate := o.ProductRate
	if baseRate.IsZero() {
		baseRate = rates.Product
	}

	if o.Line == LineAnnuity {
		return []rateSegment{{amount: o.FlexPremium, rate: baseRate, label: "base premium"}}
	}

	paid, target := o.InitialPremium, o.TargetPremium
	if paid.LessOrEqual(target) {
		return []rateSegment{{amount: paid, rate: baseRate, label: "base premium"}}
	}
	return []rateSegment{
		{amount: target, rate: baseRate, label: "base premium"},
		{amount: paid.Sub(target), rate: rates.Excess, label: "excess premium"},
	}
}

// =============================================================================
// SEGMENT DISTRIBUTION
// =============================================================================

func (d *Distributor) distributeSegment(ctx context.Context, st Store, order *Order, seg rateSegment, baseAmount Money) error {
	resolver := NewResolver(st)
	chain, err := resolver.UplineChain(ctx, order.AgentID)
	if err != nil {
		return fmt.Errorf("resolve hierarchy for order %s: %w", order.ID, err)
	}
	chainIDs := make([]AgentID, len(chain))
	productions := make([]Money, len(chain))
	for i, a := range chain {
		chainIDs[i] = a.ID
		productions[i] = a.TeamProduction
	}

	subs := SplitSegments(baseAmount, productions, d.Chart)
	ledger := NewProductionLedger(st, d.Chart)

	personal := ZeroMoney()
	levelDiff := make(map[AgentID]Money)
	genOverride := make(map[AgentID]Money)

	for _, sub := range subs {
		// Re-read CURRENT state: prior sub-segments may have promoted the
		// owner or any upline.
		current, err := st.GetAgents(ctx, chainIDs)
		if err != nil {
			return err
		}
		owner, ok := current[chainIDs[0]]
		if !ok {
			return fmt.Errorf("order %s owner %s: %w", order.ID, order.AgentID, ErrAgentNotFound)
		}

		ownerPct := d.Chart.PercentFor(owner.TierTitle)
		personal = personal.Add(sub.Percent(ownerPct))

		effective := ownerPct
		for i := 1; i < len(chainIDs); i++ {
			up, ok := current[chainIDs[i]]
			if !ok {
				break
			}
			upPct := d.Chart.PercentFor(up.TierTitle)
			if diff := upPct.Sub(effective); diff.GreaterThan(levelTolerance) {
				levelDiff[up.ID] = levelDiff[up.ID].Add(sub.Percent(diff))
				effective = upPct
			}

			generation := i - 1
			if generation < len(generationPercents) && d.Chart.IsManagement(up.TierTitle) {
				genOverride[up.ID] = genOverride[up.ID].Add(sub.Percent(generationPercents[generation]))
			}
		}

		if err := ledger.Apply(ctx, order.AgentID, sub); err != nil {
			return err
		}
	}

	entries := d.mergeEntries(order, seg, baseAmount, chain, personal, levelDiff, genOverride)
	if len(entries) == 0 {
		return nil
	}
	if err := st.AppendEntries(ctx, entries); err != nil {
		return fmt.Errorf("ledger rows for order %s: %w", order.ID, err)
	}
	for _, e := range entries {
		if err := st.AddEarnings(ctx, e.AgentID, e.Amount); err != nil {
			return fmt.Errorf("earnings for %s: %w", e.AgentID, err)
		}
	}
	return nil
}

// mergeEntries builds one ledger row per (beneficiary, category) for the
// segment. Percent is the blended accrual over baseAmount, rounded to 2
// decimals, same as the amount.
func (d *Distributor) mergeEntries(order *Order, seg rateSegment, baseAmount Money, chain []*Agent, personal Money, levelDiff, genOverride map[AgentID]Money) []Entry {
	now := d.Now()
	snapshot := SnapshotOf(order)
	hundred := decimal.NewFromInt(100)
	blend := func(accrued Money) decimal.Decimal {
		return accrued.Value.Mul(hundred).Div(baseAmount.Value).Round(2)
	}

	var entries []Entry
	if personal.IsPositive() {
		entries = append(entries, Entry{
			ID:        EntryID(d.NewID()),
			AgentID:   chain[0].ID,
			AgentName: chain[0].Name,
			Category:  CategoryPersonal,
			Percent:   blend(personal),
			Amount:    personal.Round2(),
			OrderID:   order.ID,
			Explanation: fmt.Sprintf("personal commission on %s %s x %s%% rate, blended %s%% over %s",
				seg.label, seg.amount, seg.rate, blend(personal), baseAmount),
			Snapshot:  snapshot,
			CreatedAt: now,
		})
	}

	// Walk the chain in order so override rows come out upline-ordered.
	for i := 1; i < len(chain); i++ {
		up := chain[i]
		if accrued, ok := levelDiff[up.ID]; ok && accrued.IsPositive() {
			entries = append(entries, Entry{
				ID:        EntryID(d.NewID()),
				AgentID:   up.ID,
				AgentName: up.Name,
				Category:  CategoryLevelDifference,
				Percent:   blend(accrued),
				Amount:    accrued.Round2(),
				OrderID:   order.ID,
				Explanation: fmt.Sprintf("level difference over %s on %s of %s",
					chain[0].Name, seg.label, baseAmount),
				Snapshot:  snapshot,
				CreatedAt: now,
			})
		}
		if accrued, ok := genOverride[up.ID]; ok && accrued.IsPositive() {
			entries = append(entries, Entry{
				ID:        EntryID(d.NewID()),
				AgentID:   up.ID,
				AgentName: up.Name,
				Category:  CategoryGenerationOverride,
				Percent:   blend(accrued),
				Amount:    accrued.Round2(),
				OrderID:   order.ID,
				Explanation: fmt.Sprintf("generation %d override for %s on %s of %s",
					i-1, up.TierTitle, seg.label, baseAmount),
				Snapshot:  snapshot,
				CreatedAt: now,
			})
		}
	}
	return entries
}
