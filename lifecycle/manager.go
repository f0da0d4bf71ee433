/*
Package lifecycle moves orders between application, distributed, and
archived states.

PURPOSE:
  The order lifecycle manager sits in front of the commission distributor.
  It owns the transitions an external "set application status" request can
  trigger, split-with-partner duplication, administrative deletion of a
  distributed order (with best-effort reversal), renewals, and the
  carrier-payment audit note.

TRANSITIONS:
  -> completed:  duplicate for a designated split partner, then run the
                 distributor independently on each resulting order. The
                 distributor itself never sees splits.
  -> cancelled / rejected: archive as-is, no commission processing.

REVERSAL POLICY:
  Deleting a distributed order subtracts the personal commission from the
  owner's lifetime earnings and the order's commissionable base amount
  (premium x the rate distribution actually applied) from every affected
  agent's team production (floored at zero). Agents that no
  longer exist are skipped silently - administrative corrections are
  best-effort. Tier is NOT re-reconciled on this path; the daily rebuild
  eventually squares it (preserved legacy behavior, see DESIGN.md).

RENEWALS:
  A renewal on an archived order pays base premium x renewal rate to the
  owner's lifetime earnings only. It never touches team production or
  tier. Split orders were already duplicated at completion, so each
  archived row renews independently on its own scaled premium.

SEE ALSO:
  - commission/distributor.go: The pricing engine this package invokes
*/
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
)

// Manager handles order state transitions.
type Manager struct {
	Store       commission.TxStore
	Distributor *commission.Distributor
	Products    commission.ProductResolver

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

func NewManager(store commission.TxStore, dist *commission.Distributor, products commission.ProductResolver) *Manager {
	return &Manager{
		Store:       store,
		Distributor: dist,
		Products:    products,
		Now:         time.Now,
		NewID:       func() string { return uuid.NewString() },
	}
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

// SetStatus applies an external status-change request to an active order.
func (m *Manager) SetStatus(ctx context.Context, line commission.ProductLine, id commission.OrderID, status commission.OrderStatus) error {
	switch status {
	case commission.StatusCompleted:
		return m.complete(ctx, line, id)
	case commission.StatusCancelled, commission.StatusRejected:
		return m.archiveUnprocessed(ctx, line, id, status)
	default:
		return &commission.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot transition to %q", status)}
	}
}

// complete distributes commission for the order, first duplicating it when
// a split partner is designated with a partial share.
func (m *Manager) complete(ctx context.Context, line commission.ProductLine, id commission.OrderID) error {
	order, err := m.Store.GetActiveOrder(ctx, line, id)
	if err != nil {
		return err
	}

	if !order.HasSplit() {
		return m.Distributor.Distribute(ctx, line, id)
	}

	partnerID, err := m.splitOrder(ctx, order)
	if err != nil {
		return err
	}

	// Each resulting order distributes in its own transaction against its
	// own owner's hierarchy.
	if err := m.Distributor.Distribute(ctx, line, id); err != nil {
		return err
	}
	return m.Distributor.Distribute(ctx, line, partnerID)
}

// splitOrder duplicates an order for its split partner: the original
// retains the owner with amounts scaled by 100-split, the duplicate goes to
// the partner scaled by split, annotated with the writing agent's name.
// Returns the partner order's id.
func (m *Manager) splitOrder(ctx context.Context, order *commission.Order) (commission.OrderID, error) {
	partnerID := commission.OrderID(m.NewID())
	err := m.Store.WithTx(ctx, func(st commission.Store) error {
		hundred := decimal.NewFromInt(100)
		partnerShare := order.SplitPercent.Div(hundred)
		ownerShare := hundred.Sub(order.SplitPercent).Div(hundred)

		partnerAgent, err := st.GetAgent(ctx, order.SplitPartnerID)
		if err != nil {
			return fmt.Errorf("split partner %s: %w", order.SplitPartnerID, err)
		}

		now := m.Now()
		partner := *order
		partner.ID = partnerID
		partner.AgentID = partnerAgent.ID
		partner.AgentName = partnerAgent.Name
		scaleOrder(&partner, partnerShare)
		partner.Notes = appendNote(partner.Notes,
			fmt.Sprintf("split: written by %s (%s%% share)", order.AgentName, order.SplitPercent))
		partner.SplitPartnerID = ""
		partner.SplitPercent = decimal.Zero
		partner.CreatedAt = now
		partner.UpdatedAt = now

		scaled := *order
		scaleOrder(&scaled, ownerShare)
		scaled.Notes = appendNote(scaled.Notes,
			fmt.Sprintf("split: %s%% to %s", order.SplitPercent, partnerAgent.Name))
		scaled.UpdatedAt = now

		if err := st.InsertActiveOrder(ctx, &partner); err != nil {
			return err
		}
		// Replace the active original with its scaled amounts.
		if err := st.DeleteActiveOrder(ctx, order.Line, order.ID); err != nil {
			return err
		}
		return st.InsertActiveOrder(ctx, &scaled)
	})
	if err != nil {
		return "", err
	}
	return partnerID, nil
}

func scaleOrder(o *commission.Order, share decimal.Decimal) {
	o.FaceAmount = o.FaceAmount.Mul(share)
	o.InitialPremium = o.InitialPremium.Mul(share)
	o.TargetPremium = o.TargetPremium.Mul(share)
	o.FlexPremium = o.FlexPremium.Mul(share)
}

// archiveUnprocessed moves an order to the archive without any commission
// processing.
func (m *Manager) archiveUnprocessed(ctx context.Context, line commission.ProductLine, id commission.OrderID, status commission.OrderStatus) error {
	return m.Store.WithTx(ctx, func(st commission.Store) error {
		order, err := st.GetActiveOrder(ctx, line, id)
		if err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = m.Now()
		if err := st.InsertArchivedOrder(ctx, order); err != nil {
			return err
		}
		return st.DeleteActiveOrder(ctx, line, id)
	})
}

// =============================================================================
// ADMINISTRATIVE DELETION (reversal)
// =============================================================================

// DeleteDistributed removes a previously-distributed archived order and
// reverses its effect: personal commission off the owner's lifetime
// earnings, the commissionable base amount off every affected agent's team
// production (floor zero). Missing agents are skipped silently. Tier is
// intentionally left alone.
func (m *Manager) DeleteDistributed(ctx context.Context, line commission.ProductLine, id commission.OrderID) error {
	return m.Store.WithTx(ctx, func(st commission.Store) error {
		order, err := st.GetArchivedOrder(ctx, line, id)
		if err != nil {
			return err
		}
		if order.Status != commission.StatusDistributed {
			return &commission.ValidationError{Field: "status", Reason: "only distributed orders can be reversed"}
		}

		entries, err := st.EntriesByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		personal := commission.ZeroMoney()
		for _, e := range entries {
			if e.Category == commission.CategoryPersonal && e.AgentID == order.AgentID {
				personal = personal.Add(e.Amount)
			}
		}
		if personal.IsPositive() {
			if err := st.AddEarnings(ctx, order.AgentID, personal.Neg()); err != nil && !commission.IsNotFound(err) {
				return err
			}
		}

		// The production basis is the base segment's commissionable amount,
		// mirroring what distribution applied: the order's own rate, falling
		// back to the resolver's. A zero rate applied no production at all.
		rate := order.ProductRate
		if rate.IsZero() {
			rates, _ := m.Products.Resolve(order.Line, order.Carrier, order.Product, order.AgeBracket)
			rate = rates.Product
		}
		if rate.IsPositive() {
			ledger := commission.NewProductionLedger(st, m.Distributor.Chart)
			if err := ledger.ApplyReversal(ctx, order.AgentID, order.BasePremium().Percent(rate)); err != nil {
				return err
			}
		}

		return st.DeleteArchivedOrder(ctx, line, id)
	})
}

// =============================================================================
// RENEWAL
// =============================================================================

// Renew pays the renewal commission for an archived distributed order:
// base premium x renewal rate, to the owner's lifetime earnings only.
func (m *Manager) Renew(ctx context.Context, line commission.ProductLine, id commission.OrderID) error {
	return m.Store.WithTx(ctx, func(st commission.Store) error {
		order, err := st.GetArchivedOrder(ctx, line, id)
		if err != nil {
			return err
		}

		rates, _ := m.Products.Resolve(order.Line, order.Carrier, order.Product, order.AgeBracket)
		if !rates.Renewal.IsPositive() {
			return nil // no renewal rate on file, nothing to pay
		}
		amount := order.BasePremium().Percent(rates.Renewal).Round2()
		if !amount.IsPositive() {
			return nil
		}

		entry := commission.Entry{
			ID:        commission.EntryID(m.NewID()),
			AgentID:   order.AgentID,
			AgentName: order.AgentName,
			Category:  commission.CategoryRenewal,
			Percent:   rates.Renewal.Round(2),
			Amount:    amount,
			OrderID:   order.ID,
			Explanation: fmt.Sprintf("renewal commission: %s x %s%%",
				order.BasePremium(), rates.Renewal),
			Snapshot:  commission.SnapshotOf(order),
			CreatedAt: m.Now(),
		}
		if err := st.AppendEntries(ctx, []commission.Entry{entry}); err != nil {
			return err
		}
		return st.AddEarnings(ctx, order.AgentID, amount)
	})
}

// =============================================================================
// CARRIER PAYMENT AUDIT
// =============================================================================

// AppendCarrierAudit records expected-vs-received carrier payment on an
// archived order's notes. Expected = base premium x fiso rate / 100. Purely
// an audit annotation, never a pricing input.
func (m *Manager) AppendCarrierAudit(ctx context.Context, line commission.ProductLine, id commission.OrderID, received commission.Money) error {
	order, err := m.Store.GetArchivedOrder(ctx, line, id)
	if err != nil {
		return err
	}
	rates, _ := m.Products.Resolve(order.Line, order.Carrier, order.Product, order.AgeBracket)
	expected := order.BasePremium().Percent(rates.Fiso).Round2()

	note := fmt.Sprintf("[carrier audit %s] expected %s, received %s",
		m.Now().Format("2006-01-02"), expected, received.Round2())
	return m.Store.UpdateArchivedNotes(ctx, line, id, appendNote(order.Notes, note))
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}
