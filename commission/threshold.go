/*
threshold.go - Tier-boundary split points for commission segments

PURPOSE:
  A commission segment priced at a single percent must not straddle a tier
  boundary for ANY beneficiary. If an agent sits at $9,900 production with
  a boundary at $10,000, a $500 segment would misprice the last $400 - the
  agent earns the higher tier's percent from the moment they cross. This
  file computes the exact offsets inside an amount where any beneficiary
  crosses a boundary, so the distributor can price each slice at one
  stable tier.

ALGORITHM:
  For each beneficiary with production `before`:
    after = before + amount
    every chart threshold t with before < t <= after contributes
    offset = t - before
  Offsets with 0 < offset < amount are deduplicated and sorted ascending.
  The amount is then partitioned into contiguous sub-segments between
  consecutive offsets; the pieces always sum EXACTLY to the amount.

  No crossings => a single sub-segment covering the full amount.

SEE ALSO:
  - tier.go: CrossedThresholds
  - distributor.go: Prices each sub-segment and applies production between
    them so later sub-segments see promoted tiers
*/
package commission

import "sort"

// =============================================================================
// SPLIT OFFSETS
// =============================================================================

// SplitOffsets returns the ascending, deduplicated offsets within amount at
// which any beneficiary crosses a tier threshold. Each production in
// productions is one beneficiary's CURRENT team production.
func SplitOffsets(amount Money, productions []Money, chart *Chart) []Money {
	if !amount.IsPositive() {
		return nil
	}

	seen := make(map[string]bool)
	var offsets []Money
	for _, before := range productions {
		after := before.Add(amount)
		for _, threshold := range chart.CrossedThresholds(before, after) {
			offset := threshold.Sub(before)
			if !offset.IsPositive() || offset.GreaterOrEqual(amount) {
				// Landing exactly on the full amount needs no split; the
				// crossing takes effect for the NEXT order.
				continue
			}
			k := offset.Value.String()
			if seen[k] {
				continue
			}
			seen[k] = true
			offsets = append(offsets, offset)
		}
	}

	sort.Slice(offsets, func(i, j int) bool {
		return offsets[i].LessThan(offsets[j])
	})
	return offsets
}

// Segments partitions amount into contiguous sub-segments bounded by the
// given ascending offsets: [0,p1], (p1,p2], ..., (pn,amount]. With no
// offsets the result is the single full amount. The pieces sum exactly to
// amount.
func Segments(amount Money, offsets []Money) []Money {
	if !amount.IsPositive() {
		return nil
	}
	if len(offsets) == 0 {
		return []Money{amount}
	}

	segments := make([]Money, 0, len(offsets)+1)
	prev := ZeroMoney()
	for _, p := range offsets {
		segments = append(segments, p.Sub(prev))
		prev = p
	}
	segments = append(segments, amount.Sub(prev))
	return segments
}

// SplitSegments combines SplitOffsets and Segments for a beneficiary set.
func SplitSegments(amount Money, productions []Money, chart *Chart) []Money {
	return Segments(amount, SplitOffsets(amount, productions, chart))
}
