/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates agents, product
	rates, and orders that demonstrate specific engine features.

AVAILABLE SCENARIOS:

	starter-hierarchy: Three-level hierarchy with rates, one distributed
	                   order (personal + overrides) and one still pending
	threshold-demo:    Agent promoted across a tier boundary by a
	                   distributed order
	split-demo:        Two agents sharing one distributed order 60/40

HOW SCENARIOS WORK:
 1. Create agents (introducer chain)
 2. Upsert product rates
 3. File orders and complete the showcase ones through the lifecycle
    manager, so the ledger arrives populated

Scenarios are additive and idempotence-guarded: a scenario whose marker
agent already exists refuses to load again instead of duplicating data.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "starter-hierarchy"}

ADDING NEW SCENARIOS:
 1. Add to the 'scenarios' slice with ID, name, description
 2. Create a loader function: loadXxxScenario(ctx, h)

NOTE:

	Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared response helpers
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/product"
)

// =============================================================================
// SCENARIO REGISTRY
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type scenario struct {
	ScenarioDTO
	marker commission.AgentID // presence means already loaded
	load   func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "starter-hierarchy",
			Name:        "Starter hierarchy",
			Description: "Director > Manager > two agents, product rates, one distributed order demonstrating personal commission plus level-difference and generation overrides, and one order still pending.",
		},
		marker: "demo-director",
		load:   loadStarterHierarchy,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "threshold-demo",
			Name:        "Threshold crossing",
			Description: "An agent at $9,500 team production whose distributed $1,000 order crossed the $10,000 boundary and blended two tier rates.",
		},
		marker: "demo-climber",
		load:   loadThresholdDemo,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "split-demo",
			Name:        "Split order",
			Description: "Two agents who shared one order 60/40; distribution duplicated the order and paid each on their own share.",
		},
		marker: "demo-split-writer",
		load:   loadSplitDemo,
	},
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario seeds the selected scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	for _, s := range scenarios {
		if s.ID != req.ScenarioID {
			continue
		}
		if _, err := h.Store.GetAgent(ctx, s.marker); err == nil {
			writeError(w, http.StatusConflict, "Scenario already loaded", nil)
			return
		}
		if err := s.load(ctx, h); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
		writeJSON(w, http.StatusOK, StatusResponse{Status: "loaded"})
		return
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
}

// =============================================================================
// LOADERS
// =============================================================================

func demoAgent(id, name string, introducer commission.AgentID, tier string, production float64) *commission.Agent {
	return &commission.Agent{
		ID:             commission.AgentID(id),
		Name:           name,
		IntroducerID:   introducer,
		TierTitle:      tier,
		TeamProduction: commission.NewMoney(production),
		Earnings:       commission.ZeroMoney(),
		CreatedAt:      time.Now().UTC(),
	}
}

func demoLifeOrder(id string, owner *commission.Agent, target, paid float64) *commission.Order {
	now := time.Now().UTC()
	return &commission.Order{
		ID:             commission.OrderID(id),
		Line:           commission.LineLife,
		AgentID:        owner.ID,
		AgentName:      owner.Name,
		Carrier:        "Meridian Life",
		Product:        "Whole Life Select",
		FaceAmount:     commission.NewMoney(target * 200),
		TargetPremium:  commission.NewMoney(target),
		InitialPremium: commission.NewMoney(paid),
		Status:         commission.StatusInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (h *Handler) seedDemoRates(ctx context.Context) error {
	rows := []product.Rate{
		{
			Line:    commission.LineLife,
			Carrier: "Meridian Life",
			Product: "Whole Life Select",
			Rates: commission.Rates{
				Product: commission.Pct(95),
				Excess:  commission.Pct(3),
				Renewal: commission.Pct(2),
				Fiso:    commission.Pct(85),
			},
		},
		{
			Line:       commission.LineAnnuity,
			Carrier:    "Meridian Annuity",
			Product:    "Flex Horizon",
			AgeBracket: "0-70",
			Rates: commission.Rates{
				Product: commission.Pct(6),
				Renewal: commission.Pct(0.5),
				Fiso:    commission.Pct(5),
			},
		},
	}
	for _, row := range rows {
		if err := h.Store.SaveProductRate(ctx, row); err != nil {
			return err
		}
		h.Products.Upsert(row)
	}
	return nil
}

func loadStarterHierarchy(ctx context.Context, h *Handler) error {
	if err := h.seedDemoRates(ctx); err != nil {
		return err
	}

	director := demoAgent("demo-director", "Diane Okafor", "", "Director", 620000)
	manager := demoAgent("demo-manager", "Marcus Lee", director.ID, "Manager", 72000)
	agentA := demoAgent("demo-agent-a", "Priya Natarajan", manager.ID, "Agent", 2400)
	agentB := demoAgent("demo-agent-b", "Tom Walsh", manager.ID, "Senior Agent", 15800)

	for _, a := range []*commission.Agent{director, manager, agentA, agentB} {
		if err := h.Store.PutAgent(ctx, a); err != nil {
			return err
		}
	}

	orders := []*commission.Order{
		demoLifeOrder("demo-order-1", agentA, 1800, 1800),
		demoLifeOrder("demo-order-2", agentB, 3200, 4100), // paid over target: excess segment
	}
	for _, o := range orders {
		if err := h.Store.InsertActiveOrder(ctx, o); err != nil {
			return err
		}
	}

	// Distribute the first order so the demo ledger has rows; the second
	// stays pending for the operator to complete.
	return h.completeDemoOrder(ctx, "demo-order-1")
}

func loadThresholdDemo(ctx context.Context, h *Handler) error {
	if err := h.seedDemoRates(ctx); err != nil {
		return err
	}

	climber := demoAgent("demo-climber", "Elena Vargas", "", "Agent", 9500)
	if err := h.Store.PutAgent(ctx, climber); err != nil {
		return err
	}
	if err := h.Store.InsertActiveOrder(ctx, demoLifeOrder("demo-threshold-order", climber, 1000, 1000)); err != nil {
		return err
	}
	return h.completeDemoOrder(ctx, "demo-threshold-order")
}

func loadSplitDemo(ctx context.Context, h *Handler) error {
	if err := h.seedDemoRates(ctx); err != nil {
		return err
	}

	writer := demoAgent("demo-split-writer", "Noah Brandt", "", "Agent", 0)
	partner := demoAgent("demo-split-partner", "Ada Kimura", "", "Agent", 0)
	for _, a := range []*commission.Agent{writer, partner} {
		if err := h.Store.PutAgent(ctx, a); err != nil {
			return err
		}
	}

	order := demoLifeOrder("demo-split-order", writer, 2500, 2500)
	order.SplitPartnerID = partner.ID
	order.SplitPercent = decimal.NewFromInt(40)
	if err := h.Store.InsertActiveOrder(ctx, order); err != nil {
		return err
	}
	return h.completeDemoOrder(ctx, "demo-split-order")
}

func (h *Handler) completeDemoOrder(ctx context.Context, id commission.OrderID) error {
	_, mgr, _ := h.engine()
	return mgr.SetStatus(ctx, commission.LineLife, id, commission.StatusCompleted)
}
