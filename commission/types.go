/*
Package commission provides the core multi-level commission engine.

PURPOSE:
  This package contains the types and algorithms for distributing sales
  commission across a hierarchical agent network: personal commission for
  the writing agent, level-difference overrides for uplines whose tier
  percent exceeds their downline's, and fixed generation overrides for
  management-tier uplines.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A dollar quantity backed by decimal.Decimal
  - Agent: A node in the introducer hierarchy with derived tier state
  - Order: One policy sale (life or annuity) moving through a lifecycle
  - Entry: An immutable commission ledger row

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Immutability: Ledger entries are never modified after insert
     (explanation amendment excepted, see store.go)
  3. Type Safety: Strong typing for IDs prevents mixing agent/order IDs
  4. Auditability: Every entry records percent, rule, and an order snapshot

SEE ALSO:
  - tier.go: Tier chart lookup and reconciliation
  - hierarchy.go: Upline/downline resolution with cycle detection
  - threshold.go: Tier-boundary split points for commission segments
  - distributor.go: The orchestrator that prices a completed order
*/
package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Dollar quantity
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func ZeroMoney() Money {
	return Money{Value: decimal.Zero}
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

func (m Money) Add(b Money) Money             { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money             { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money   { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money   { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                    { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money                    { return Money{Value: m.Value.Abs()} }
func (m Money) IsNegative() bool              { return m.Value.IsNegative() }
func (m Money) IsZero() bool                  { return m.Value.IsZero() }
func (m Money) IsPositive() bool              { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool      { return m.Value.GreaterThan(b.Value) }
func (m Money) GreaterOrEqual(b Money) bool   { return m.Value.GreaterThanOrEqual(b.Value) }
func (m Money) LessThan(b Money) bool         { return m.Value.LessThan(b.Value) }
func (m Money) LessOrEqual(b Money) bool      { return m.Value.LessThanOrEqual(b.Value) }
func (m Money) Equal(b Money) bool            { return m.Value.Equal(b.Value) }
func (m Money) Min(b Money) Money             { if m.LessThan(b) { return m }; return b }
func (m Money) Max(b Money) Money             { if m.GreaterThan(b) { return m }; return b }
func (m Money) Round2() Money                 { return Money{Value: m.Value.Round(2)} }
func (m Money) String() string                { return m.Value.StringFixed(2) }

// FloorZero clamps negative amounts to zero. Team production can never go
// below zero, regardless of reversal arithmetic.
func (m Money) FloorZero() Money {
	if m.IsNegative() {
		return ZeroMoney()
	}
	return m
}

// Percent applies a percentage (e.g. Percent(5) is 5% of m).
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(p).Div(decimal.NewFromInt(100))}
}

// Pct is a shorthand for percent literals in rules and tests.
func Pct(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AgentID string
type OrderID string
type EntryID string

// =============================================================================
// AGENT - A node in the introducer hierarchy
// =============================================================================

// Agent is a person who can write or benefit from orders.
//
// TierTitle and TeamProduction are DERIVED state, maintained incrementally
// by the production ledger (production.go) and corrected by the daily
// rebuild job. LifetimeEarnings is maintained by the distributor.
type Agent struct {
	ID             AgentID
	Name           string
	IntroducerID   AgentID // empty = root of a tree
	TierTitle      string
	TeamProduction Money
	Earnings       Money  // lifetime commission earnings
	ProducerNumber string // national producer number
	CreatedAt      time.Time
}

// IsRoot reports whether the agent has no introducer.
func (a *Agent) IsRoot() bool { return a.IntroducerID == "" }

// =============================================================================
// ORDER - One policy sale
// =============================================================================

// ProductLine partitions orders. Life and annuity orders carry different
// premium fields but share lifecycle semantics.
type ProductLine string

const (
	LineLife    ProductLine = "life"
	LineAnnuity ProductLine = "annuity"
)

func (l ProductLine) Valid() bool { return l == LineLife || l == LineAnnuity }

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusInProgress  OrderStatus = "in_progress" // active application
	StatusCompleted   OrderStatus = "completed"   // trigger for distribution
	StatusCancelled   OrderStatus = "cancelled"
	StatusRejected    OrderStatus = "rejected"
	StatusDistributed OrderStatus = "distributed" // commission paid, archived
)

// Order represents one policy sale.
//
// Life orders carry FaceAmount / InitialPremium (paid) / TargetPremium;
// annuity orders carry FlexPremium. The unused fields stay zero.
type Order struct {
	ID        OrderID
	Line      ProductLine
	AgentID   AgentID
	AgentName string

	Carrier    string
	Product    string
	AgeBracket string // annuity rate lookups only

	FaceAmount     Money           // life
	InitialPremium Money           // life: premium actually paid
	TargetPremium  Money           // life: commissionable target
	FlexPremium    Money           // annuity
	ProductRate    decimal.Decimal // percent applied to the base premium

	Status OrderStatus

	SplitPartnerID AgentID
	SplitPercent   decimal.Decimal // partner's share, 0 < p < 100 when set

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaidPremium returns the premium actually received for the order.
func (o *Order) PaidPremium() Money {
	if o.Line == LineAnnuity {
		return o.FlexPremium
	}
	return o.InitialPremium
}

// BasePremium returns the commissionable base: target premium for life,
// flex premium for annuities. This is also the team-production basis.
func (o *Order) BasePremium() Money {
	if o.Line == LineAnnuity {
		return o.FlexPremium
	}
	return o.TargetPremium
}

// HasSplit reports whether a split partner is designated with a partial share.
func (o *Order) HasSplit() bool {
	return o.SplitPartnerID != "" &&
		o.SplitPercent.IsPositive() &&
		o.SplitPercent.LessThan(decimal.NewFromInt(100))
}

// =============================================================================
// COMMISSION LEDGER ENTRY
// =============================================================================

// EntryCategory classifies which rule produced a ledger row.
type EntryCategory string

const (
	CategoryPersonal           EntryCategory = "personal_commission"
	CategoryLevelDifference    EntryCategory = "level_difference"
	CategoryGenerationOverride EntryCategory = "generation_override"
	CategoryRenewal            EntryCategory = "renewal"
)

// Entry is one commission ledger row: (order, beneficiary, category).
// Entries are append-only; only the free-text explanation may be amended
// after insert (administrative correction).
type Entry struct {
	ID        EntryID
	AgentID   AgentID
	AgentName string
	Category  EntryCategory

	Percent decimal.Decimal // rate applied, rounded to 2 decimals
	Amount  Money           // dollars, rounded to 2 decimals

	OrderID     OrderID
	Explanation string // which rule/rate produced the amount

	Snapshot OrderSnapshot

	CreatedAt time.Time
}

// OrderSnapshot freezes the source order's display fields for audit, so the
// ledger stays readable after the order moves tables or is deleted.
type OrderSnapshot struct {
	OwnerName string
	Line      ProductLine
	Carrier   string
	Product   string
	Premium   Money
}

// SnapshotOf captures the audit snapshot for an order.
func SnapshotOf(o *Order) OrderSnapshot {
	return OrderSnapshot{
		OwnerName: o.AgentName,
		Line:      o.Line,
		Carrier:   o.Carrier,
		Product:   o.Product,
		Premium:   o.BasePremium(),
	}
}
