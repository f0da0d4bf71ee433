package commission_test

import (
	"testing"

	"github.com/warp/commission-engine/commission"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Note: agent/store helpers are defined in hierarchy_test.go

func money(v float64) commission.Money {
	return commission.NewMoney(v)
}

func testChart() *commission.Chart {
	return commission.DefaultChart()
}

// =============================================================================
// CHART CONSTRUCTION
// =============================================================================

func TestNewChart_SortsByThreshold(t *testing.T) {
	// GIVEN: Rows supplied out of order
	// WHEN: Building the chart
	// THEN: Rows come back ascending by threshold

	chart, err := commission.NewChart([]commission.TierRow{
		{Title: "High", Threshold: money(1000), Percent: commission.Pct(20)},
		{Title: "Low", Threshold: money(0), Percent: commission.Pct(5)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := chart.Rows()
	if rows[0].Title != "Low" || rows[1].Title != "High" {
		t.Errorf("rows not sorted: %v", rows)
	}
	if chart.Lowest().Title != "Low" {
		t.Errorf("expected lowest tier Low, got %s", chart.Lowest().Title)
	}
}

func TestNewChart_RejectsDuplicateTitle(t *testing.T) {
	_, err := commission.NewChart([]commission.TierRow{
		{Title: "Agent", Threshold: money(0), Percent: commission.Pct(5)},
		{Title: "Agent", Threshold: money(100), Percent: commission.Pct(10)},
	})
	if err == nil {
		t.Fatal("expected error for duplicate title")
	}
}

func TestNewChart_RejectsEqualThresholds(t *testing.T) {
	_, err := commission.NewChart([]commission.TierRow{
		{Title: "A", Threshold: money(100), Percent: commission.Pct(5)},
		{Title: "B", Threshold: money(100), Percent: commission.Pct(10)},
	})
	if err == nil {
		t.Fatal("expected error for equal thresholds")
	}
}

func TestNewChart_RejectsEmpty(t *testing.T) {
	if _, err := commission.NewChart(nil); err == nil {
		t.Fatal("expected error for empty chart")
	}
}

// =============================================================================
// LOOKUPS
// =============================================================================

func TestPercentFor_UnknownTitleFallsBackToLowest(t *testing.T) {
	// GIVEN: The default chart
	// WHEN: Looking up a title not on the chart
	// THEN: The lowest tier's percent applies

	chart := testChart()
	got := chart.PercentFor("Regional Vice President")
	if !got.Equal(commission.Pct(5)) {
		t.Errorf("expected fallback 5, got %s", got)
	}
}

func TestIsManagement(t *testing.T) {
	chart := testChart()
	if chart.IsManagement("Senior Agent") {
		t.Error("Senior Agent should not be management")
	}
	if !chart.IsManagement("Manager") {
		t.Error("Manager should be management")
	}
	if chart.IsManagement("Unknown") {
		t.Error("unknown title should not be management")
	}
}

// =============================================================================
// RECONCILE
// =============================================================================

func TestReconcile_AdvancesToMaximalTier(t *testing.T) {
	// GIVEN: An Agent whose production jumped past two boundaries at once
	// WHEN: Reconciling
	// THEN: They land on the MAXIMAL qualifying tier, not the next one up

	chart := testChart()
	got := chart.Reconcile(money(60000), "Agent")
	if got != "Manager" {
		t.Errorf("expected Manager, got %s", got)
	}
}

func TestReconcile_NeverDemotes(t *testing.T) {
	// GIVEN: A Manager whose production aged below the Manager threshold
	// WHEN: Reconciling
	// THEN: The title is retained

	chart := testChart()
	got := chart.Reconcile(money(100), "Manager")
	if got != "Manager" {
		t.Errorf("expected Manager retained, got %s", got)
	}
}

func TestReconcile_UnknownTitleIsNoop(t *testing.T) {
	chart := testChart()
	got := chart.Reconcile(money(1000000), "Founding Partner")
	if got != "Founding Partner" {
		t.Errorf("expected unknown title unchanged, got %s", got)
	}
}

func TestReconcile_ExactThresholdQualifies(t *testing.T) {
	chart := testChart()
	got := chart.Reconcile(money(10000), "Agent")
	if got != "Senior Agent" {
		t.Errorf("expected Senior Agent at exact threshold, got %s", got)
	}
}

func TestTierFor_IgnoresCurrentTitle(t *testing.T) {
	chart := testChart()
	row := chart.TierFor(money(100))
	if row.Title != "Agent" {
		t.Errorf("expected Agent, got %s", row.Title)
	}
}

func TestNextTier(t *testing.T) {
	chart := testChart()

	next, ok := chart.NextTier(money(9999))
	if !ok || next.Title != "Senior Agent" {
		t.Errorf("expected Senior Agent next, got %v ok=%v", next.Title, ok)
	}

	if _, ok := chart.NextTier(money(1000000)); ok {
		t.Error("expected no next tier at the top")
	}
}

func TestCrossedThresholds(t *testing.T) {
	// GIVEN: Production moving from 9,500 to 60,000
	// WHEN: Listing crossed thresholds
	// THEN: Both 10,000 and 50,000 appear, ascending

	chart := testChart()
	crossed := chart.CrossedThresholds(money(9500), money(60000))
	if len(crossed) != 2 {
		t.Fatalf("expected 2 thresholds, got %d", len(crossed))
	}
	if !crossed[0].Equal(money(10000)) || !crossed[1].Equal(money(50000)) {
		t.Errorf("unexpected thresholds: %v %v", crossed[0], crossed[1])
	}
}

func TestCrossedThresholds_BoundaryExclusiveBeforeInclusiveAfter(t *testing.T) {
	chart := testChart()

	// Sitting exactly on a threshold: it is not crossed again.
	if got := chart.CrossedThresholds(money(10000), money(10500)); len(got) != 0 {
		t.Errorf("expected no crossing starting at threshold, got %v", got)
	}
	// Landing exactly on a threshold: it is crossed.
	if got := chart.CrossedThresholds(money(9000), money(10000)); len(got) != 1 {
		t.Errorf("expected crossing landing on threshold, got %v", got)
	}
}
