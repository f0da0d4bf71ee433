/*
handlers_test.go - HTTP-level tests for the API handlers

Tests drive the full router against an in-memory SQLite store, covering
agent registration, tier chart replacement, the order lifecycle, ledger
queries, product rates, and the admin rebuild.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/product"
	"github.com/warp/commission-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, commission.DefaultChart(), product.NewResolver(nil))
	return NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func createAgent(t *testing.T, router http.Handler, id, introducer string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/agents", CreateAgentRequest{
		ID:           id,
		Name:         "Agent " + id,
		IntroducerID: introducer,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create agent %s: status %d body %s", id, rec.Code, rec.Body.String())
	}
}

// =============================================================================
// AGENTS
// =============================================================================

func TestCreateAndGetAgent(t *testing.T) {
	router := newTestRouter(t)

	createAgent(t, router, "alice", "")

	rec := do(t, router, http.MethodGet, "/api/agents/alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	agent := decode[AgentDTO](t, rec)
	if agent.Name != "Agent alice" || agent.TierTitle != "Agent" {
		t.Errorf("unexpected agent: %+v", agent)
	}
	if agent.TeamProduction != "0.00" {
		t.Errorf("expected zero production, got %s", agent.TeamProduction)
	}
}

func TestCreateAgent_UnknownIntroducer(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/agents", CreateAgentRequest{
		ID: "bob", Name: "Bob", IntroducerID: "ghost",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetAgent_NotFound(t *testing.T) {
	router := newTestRouter(t)
	if rec := do(t, router, http.MethodGet, "/api/agents/ghost", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAgentUpline(t *testing.T) {
	router := newTestRouter(t)
	createAgent(t, router, "alice", "")
	createAgent(t, router, "bob", "alice")
	createAgent(t, router, "carol", "bob")

	rec := do(t, router, http.MethodGet, "/api/agents/carol/upline", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	chain := decode[[]AgentDTO](t, rec)
	if len(chain) != 3 || chain[0].ID != "carol" || chain[2].ID != "alice" {
		t.Errorf("unexpected chain: %+v", chain)
	}
}

func TestAgentDownline(t *testing.T) {
	router := newTestRouter(t)
	createAgent(t, router, "alice", "")
	createAgent(t, router, "bob", "alice")
	createAgent(t, router, "carol", "bob")

	rec := do(t, router, http.MethodGet, "/api/agents/alice/downline", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	downline := decode[[]AgentDTO](t, rec)
	if len(downline) != 2 {
		t.Errorf("expected 2 in downline, got %d", len(downline))
	}
}

// =============================================================================
// TIER CHART
// =============================================================================

func TestReplaceTiers_RoundTrips(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/tiers", ReplaceChartRequest{Rows: []TierRowDTO{
		{Title: "Rookie", Threshold: "0", Percent: "4"},
		{Title: "Pro", Threshold: "25000", Percent: "12", Management: true},
	}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/api/tiers", nil)
	rows := decode[[]TierRowDTO](t, rec)
	if len(rows) != 2 || rows[0].Title != "Rookie" || rows[1].Title != "Pro" {
		t.Errorf("unexpected chart: %+v", rows)
	}
}

func TestReplaceTiers_RejectsInvalidChart(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPut, "/api/tiers", ReplaceChartRequest{Rows: []TierRowDTO{
		{Title: "A", Threshold: "100", Percent: "5"},
		{Title: "B", Threshold: "100", Percent: "10"},
	}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// =============================================================================
// ORDER LIFECYCLE
// =============================================================================

func TestOrderLifecycle_CreateCompleteQuery(t *testing.T) {
	// GIVEN: carol under bob; a $1,000 life order at 100% product rate
	// WHEN: Creating the order and setting it completed
	// THEN: It distributes, archives, and the ledger is queryable over HTTP

	router := newTestRouter(t)
	createAgent(t, router, "bob", "")
	createAgent(t, router, "carol", "bob")

	rec := do(t, router, http.MethodPost, "/api/orders/life", CreateOrderRequest{
		AgentID:        "carol",
		Carrier:        "Acme Life",
		Product:        "Whole Life",
		TargetPremium:  "1000",
		InitialPremium: "1000",
		ProductRate:    "100",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status %d body %s", rec.Code, rec.Body.String())
	}
	order := decode[OrderDTO](t, rec)
	if order.Status != string(commission.StatusInProgress) {
		t.Errorf("expected in_progress, got %s", order.Status)
	}

	rec = do(t, router, http.MethodPost, fmt.Sprintf("/api/orders/life/%s/status", order.ID),
		SetStatusRequest{Status: "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status %d body %s", rec.Code, rec.Body.String())
	}

	// The order moved to the archive; GET falls back transparently.
	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/orders/life/%s", order.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get archived: status %d", rec.Code)
	}
	archived := decode[OrderDTO](t, rec)
	if archived.Status != string(commission.StatusDistributed) {
		t.Errorf("expected distributed, got %s", archived.Status)
	}

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/orders/life/%s/entries", order.ID), nil)
	entries := decode[[]EntryDTO](t, rec)
	if len(entries) == 0 {
		t.Fatal("expected ledger entries")
	}

	rec = do(t, router, http.MethodGet, "/api/agents/carol/entries", nil)
	carolEntries := decode[[]EntryDTO](t, rec)
	found := false
	for _, e := range carolEntries {
		if e.Category == string(commission.CategoryPersonal) && e.Amount == "50.00" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected carol's personal entry of 50.00, got %+v", carolEntries)
	}
}

func TestCreateOrder_RequiresPremium(t *testing.T) {
	router := newTestRouter(t)
	createAgent(t, router, "alice", "")

	rec := do(t, router, http.MethodPost, "/api/orders/annuity", CreateOrderRequest{
		AgentID: "alice",
		Carrier: "Acme Annuity",
		Product: "Flex",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing flex premium, got %d", rec.Code)
	}
}

func TestCreateOrder_UnknownLine(t *testing.T) {
	router := newTestRouter(t)
	if rec := do(t, router, http.MethodGet, "/api/orders/futures", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSetOrderStatus_MissingOrder(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/orders/life/ghost/status", SetStatusRequest{Status: "completed"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteOrder_ReversesAfterDistribution(t *testing.T) {
	router := newTestRouter(t)
	createAgent(t, router, "alice", "")

	rec := do(t, router, http.MethodPost, "/api/orders/life", CreateOrderRequest{
		AgentID:        "alice",
		TargetPremium:  "1000",
		InitialPremium: "1000",
		ProductRate:    "100",
	})
	order := decode[OrderDTO](t, rec)
	do(t, router, http.MethodPost, fmt.Sprintf("/api/orders/life/%s/status", order.ID),
		SetStatusRequest{Status: "completed"})

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/api/orders/life/%s", order.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/api/agents/alice", nil)
	agent := decode[AgentDTO](t, rec)
	if agent.Earnings != "0.00" {
		t.Errorf("expected reversed earnings 0.00, got %s", agent.Earnings)
	}
	if agent.TeamProduction != "0.00" {
		t.Errorf("expected reversed production 0.00, got %s", agent.TeamProduction)
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestAmendEntry(t *testing.T) {
	router := newTestRouter(t)
	createAgent(t, router, "alice", "")

	rec := do(t, router, http.MethodPost, "/api/orders/life", CreateOrderRequest{
		AgentID:        "alice",
		TargetPremium:  "1000",
		InitialPremium: "1000",
		ProductRate:    "100",
	})
	order := decode[OrderDTO](t, rec)
	do(t, router, http.MethodPost, fmt.Sprintf("/api/orders/life/%s/status", order.ID),
		SetStatusRequest{Status: "completed"})

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/orders/life/%s/entries", order.ID), nil)
	entries := decode[[]EntryDTO](t, rec)
	if len(entries) == 0 {
		t.Fatal("expected entries")
	}

	rec = do(t, router, http.MethodPatch, "/api/entries/"+entries[0].ID,
		AmendEntryRequest{Explanation: "manual correction: carrier rate dispute"})
	if rec.Code != http.StatusOK {
		t.Fatalf("amend: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/orders/life/%s/entries", order.ID), nil)
	amended := decode[[]EntryDTO](t, rec)
	if amended[0].Explanation != "manual correction: carrier rate dispute" {
		t.Errorf("explanation not amended: %q", amended[0].Explanation)
	}
	if amended[0].Amount != entries[0].Amount {
		t.Error("amend must not touch the amount")
	}
}

func TestAmendEntry_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPatch, "/api/entries/ghost", AmendEntryRequest{Explanation: "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestUpsertAndListProducts(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/products", ProductRateDTO{
		Line:     "life",
		Carrier:  "Acme Life",
		Product:  "Whole Life",
		BaseRate: "95",
		Renewal:  "2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/api/products", nil)
	rates := decode[[]ProductRateDTO](t, rec)
	if len(rates) != 1 || rates[0].BaseRate != "95" {
		t.Errorf("unexpected rates: %+v", rates)
	}
}

func TestUpsertProduct_InvalidLine(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/products", ProductRateDTO{
		Line: "futures", Carrier: "X", Product: "Y",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// =============================================================================
// ADMIN
// =============================================================================

func TestTriggerRebuild(t *testing.T) {
	router := newTestRouter(t)
	createAgent(t, router, "alice", "")

	rec := do(t, router, http.MethodPost, "/api/admin/rebuild?months=6", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status %d body %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, router, http.MethodPost, "/api/admin/rebuild?months=-1", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad window, got %d", rec.Code)
	}
}
