/*
tier.go - Commission tier chart

PURPOSE:
  The tier chart is the ordered table of (title, minimum cumulative team
  production, personal commission percent) rows that drives all pricing.
  An agent's tier is always the highest row whose threshold is at or below
  their current team production.

KEY RULES:
  - Thresholds strictly increase; validated on construction.
  - PercentFor on an unknown title falls back to the LOWEST tier's percent.
    Documented default, not an error (flagged for business confirmation,
    see DESIGN.md).
  - Reconcile never moves an agent backward: promotion may skip several
    tiers in one update, demotion only happens through the explicit
    rebuild, which reassigns from scratch.
  - Management rows qualify their holders for fixed generation overrides
    (see distributor.go).

SEE ALSO:
  - threshold.go: Uses thresholds to split commission segments
  - production.go: Calls Reconcile after every production change
*/
package commission

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIER CHART
// =============================================================================

// TierRow is one bracket of the chart.
type TierRow struct {
	Title      string
	Threshold  Money           // minimum cumulative team production
	Percent    decimal.Decimal // personal commission percent
	Management bool            // qualifies for generation overrides
}

// Chart is an ordered tier table, ascending by threshold.
type Chart struct {
	rows []TierRow
}

// NewChart builds a chart, sorting rows by threshold and rejecting duplicate
// titles or non-increasing thresholds.
func NewChart(rows []TierRow) (*Chart, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("tier chart: no rows")
	}
	sorted := make([]TierRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold.LessThan(sorted[j].Threshold)
	})

	titles := make(map[string]bool, len(sorted))
	for i, r := range sorted {
		if r.Title == "" {
			return nil, fmt.Errorf("tier chart: row %d has empty title", i)
		}
		if titles[r.Title] {
			return nil, fmt.Errorf("tier chart: duplicate title %q", r.Title)
		}
		titles[r.Title] = true
		if i > 0 && !sorted[i-1].Threshold.LessThan(r.Threshold) {
			return nil, fmt.Errorf("tier chart: thresholds not strictly increasing at %q", r.Title)
		}
	}
	return &Chart{rows: sorted}, nil
}

// MustChart builds a chart or panics. For static configuration and tests.
func MustChart(rows []TierRow) *Chart {
	c, err := NewChart(rows)
	if err != nil {
		panic(err)
	}
	return c
}

// Rows returns a copy of the chart rows, ascending by threshold.
func (c *Chart) Rows() []TierRow {
	out := make([]TierRow, len(c.rows))
	copy(out, c.rows)
	return out
}

// Lowest returns the bottom tier.
func (c *Chart) Lowest() TierRow { return c.rows[0] }

// indexOf returns the row index for a title, or -1.
func (c *Chart) indexOf(title string) int {
	for i, r := range c.rows {
		if r.Title == title {
			return i
		}
	}
	return -1
}

// PercentFor returns the personal commission percent for a tier title.
// Unknown titles fall back to the lowest tier's percent.
func (c *Chart) PercentFor(title string) decimal.Decimal {
	if i := c.indexOf(title); i >= 0 {
		return c.rows[i].Percent
	}
	return c.rows[0].Percent
}

// IsManagement reports whether a title is a management tier.
// Unknown titles are not management.
func (c *Chart) IsManagement(title string) bool {
	if i := c.indexOf(title); i >= 0 {
		return c.rows[i].Management
	}
	return false
}

// Reconcile returns the tier the agent should hold given their current team
// production, starting from their current title and advancing to the highest
// row whose threshold <= production. Never moves backward. An unknown
// current title is returned unchanged (defensive no-op).
func (c *Chart) Reconcile(production Money, currentTitle string) string {
	start := c.indexOf(currentTitle)
	if start < 0 {
		return currentTitle
	}
	result := start
	for i := start + 1; i < len(c.rows); i++ {
		if c.rows[i].Threshold.LessOrEqual(production) {
			result = i
		}
	}
	return c.rows[result].Title
}

// TierFor returns the maximal row whose threshold <= production, ignoring
// any current title. Inspection helper; tier assignment goes through
// Reconcile, which never demotes.
func (c *Chart) TierFor(production Money) TierRow {
	result := c.rows[0]
	for _, r := range c.rows[1:] {
		if r.Threshold.LessOrEqual(production) {
			result = r
		}
	}
	return result
}

// NextTier returns the first row whose threshold exceeds production, or
// ok=false when the agent already sits at the top.
func (c *Chart) NextTier(production Money) (TierRow, bool) {
	for _, r := range c.rows {
		if r.Threshold.GreaterThan(production) {
			return r, true
		}
	}
	return TierRow{}, false
}

// CrossedThresholds returns all thresholds t with before < t <= after,
// ascending. Empty when no boundary is crossed.
func (c *Chart) CrossedThresholds(before, after Money) []Money {
	var out []Money
	for _, r := range c.rows {
		if r.Threshold.GreaterThan(before) && r.Threshold.LessOrEqual(after) {
			out = append(out, r.Threshold)
		}
	}
	return out
}

// =============================================================================
// DEFAULT CHART
// =============================================================================

// DefaultChart is the seed chart used when the store has no tier rows.
// Production deployments replace it via the tiers API.
func DefaultChart() *Chart {
	return MustChart([]TierRow{
		{Title: "Agent", Threshold: ZeroMoney(), Percent: Pct(5)},
		{Title: "Senior Agent", Threshold: NewMoneyFromInt(10000), Percent: Pct(10)},
		{Title: "Manager", Threshold: NewMoneyFromInt(50000), Percent: Pct(15), Management: true},
		{Title: "Senior Manager", Threshold: NewMoneyFromInt(150000), Percent: Pct(20), Management: true},
		{Title: "Director", Threshold: NewMoneyFromInt(500000), Percent: Pct(25), Management: true},
	})
}
