/*
scenarios_test.go - Tests for the demo scenario loaders

PURPOSE:
	Tests that each scenario correctly sets up the expected state:
	- Agents are created with the right tiers and introducers
	- Orders are filed and distributed
	- Reloading a scenario is rejected

These double as integration tests for the distribution pipeline.
*/
package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/warp/commission-engine/commission"
)

func loadScenario(t *testing.T, router http.Handler, id string) int {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	return rec.Code
}

func TestListScenarios(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	list := decode[[]ScenarioDTO](t, rec)
	if len(list) != 3 {
		t.Errorf("expected 3 scenarios, got %d", len(list))
	}
}

func TestLoadStarterHierarchy(t *testing.T) {
	router := newTestRouter(t)

	if code := loadScenario(t, router, "starter-hierarchy"); code != http.StatusOK {
		t.Fatalf("load: status %d", code)
	}

	// The director sits at the top with the seeded production intact.
	rec := do(t, router, http.MethodGet, "/api/agents/demo-director", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("director missing: %d", rec.Code)
	}
	director := decode[AgentDTO](t, rec)
	if director.TierTitle != "Director" {
		t.Errorf("expected Director tier, got %s", director.TierTitle)
	}

	rec = do(t, router, http.MethodGet, "/api/agents/demo-director/downline", nil)
	downline := decode[[]AgentDTO](t, rec)
	if len(downline) != 3 {
		t.Errorf("expected 3 agents in downline, got %d", len(downline))
	}

	// One of the seeded orders was completed and distributed.
	rec = do(t, router, http.MethodGet, "/api/orders/life/archive", nil)
	archived := decode[[]OrderDTO](t, rec)
	if len(archived) == 0 {
		t.Error("expected a distributed demo order in the archive")
	}
	for _, o := range archived {
		if o.Status != string(commission.StatusDistributed) {
			t.Errorf("archived order %s has status %s", o.ID, o.Status)
		}
	}
}

func TestLoadThresholdDemo_PromotesClimber(t *testing.T) {
	// GIVEN: The climber sits just below the Senior Agent threshold
	// WHEN: The seeded order pushes production over it
	// THEN: The loader leaves the climber promoted

	router := newTestRouter(t)

	if code := loadScenario(t, router, "threshold-demo"); code != http.StatusOK {
		t.Fatalf("load: status %d", code)
	}

	rec := do(t, router, http.MethodGet, "/api/agents/demo-climber", nil)
	climber := decode[AgentDTO](t, rec)
	if climber.TierTitle != "Senior Agent" {
		t.Errorf("expected promotion to Senior Agent, got %s", climber.TierTitle)
	}
}

func TestLoadSplitDemo_PaysBothWriters(t *testing.T) {
	router := newTestRouter(t)

	if code := loadScenario(t, router, "split-demo"); code != http.StatusOK {
		t.Fatalf("load: status %d", code)
	}

	for _, id := range []string{"demo-split-writer", "demo-split-partner"} {
		rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/agents/%s/entries", id), nil)
		entries := decode[[]EntryDTO](t, rec)
		if len(entries) == 0 {
			t.Errorf("expected commission entries for %s", id)
		}
	}
}

func TestLoadScenario_Twice(t *testing.T) {
	router := newTestRouter(t)

	if code := loadScenario(t, router, "threshold-demo"); code != http.StatusOK {
		t.Fatalf("first load: status %d", code)
	}
	if code := loadScenario(t, router, "threshold-demo"); code != http.StatusConflict {
		t.Errorf("expected 409 on reload, got %d", code)
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	router := newTestRouter(t)

	if code := loadScenario(t, router, "no-such-scenario"); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}
