/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Agents:
    GET    /api/agents                     List all agents
    POST   /api/agents                     Register agent
    GET    /api/agents/{id}                Get agent details
    GET    /api/agents/{id}/entries        Agent's commission ledger
    GET    /api/agents/{id}/upline         Agent's introducer chain to the root
    GET    /api/agents/{id}/downline       Agent's downline subtree

  Tier chart:
    GET    /api/tiers                      Current tier chart
    PUT    /api/tiers                      Replace tier chart

  Orders (line is "life" or "annuity"):
    GET    /api/orders/{line}              List active orders
    POST   /api/orders/{line}              File a new order
    GET    /api/orders/{line}/archive      List archived orders
    GET    /api/orders/{line}/{id}         Get one order (active or archived)
    GET    /api/orders/{line}/{id}/entries Ledger rows for an order
    POST   /api/orders/{line}/{id}/status  Transition lifecycle status
    POST   /api/orders/{line}/{id}/renew   Pay renewal commission
    POST   /api/orders/{line}/{id}/audit   Append carrier audit note
    DELETE /api/orders/{line}/{id}         Delete a distributed order (reversal)

  Entries:
    PATCH  /api/entries/{id}               Amend an entry's explanation

  Products:
    GET    /api/products                   List product rates
    POST   /api/products                   Upsert a product rate

  Admin:
    POST   /api/admin/rebuild              Rebuild team production from archive

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Agent/order/entry not found
  - 409: Duplicate ledger entry
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - lifecycle/manager.go: Status transitions delegated to
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/lifecycle"
	"github.com/warp/commission-engine/product"
	"github.com/warp/commission-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
//
// The tier chart is replaceable at runtime (PUT /api/tiers); the distributor,
// lifecycle manager and production ledger are rebuilt together under mu so a
// request never sees a half-swapped engine.
type Handler struct {
	Store    *sqlite.Store
	Products *product.Resolver

	mu     sync.RWMutex
	chart  *commission.Chart
	dist   *commission.Distributor
	mgr    *lifecycle.Manager
	ledger *commission.ProductionLedger
}

// NewHandler creates a new handler with the given store, chart and rates.
func NewHandler(store *sqlite.Store, chart *commission.Chart, products *product.Resolver) *Handler {
	h := &Handler{Store: store, Products: products}
	h.setChart(chart)
	return h
}

func (h *Handler) setChart(chart *commission.Chart) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chart = chart
	h.dist = commission.NewDistributor(h.Store, chart, h.Products)
	h.mgr = lifecycle.NewManager(h.Store, h.dist, h.Products)
	h.ledger = commission.NewProductionLedger(h.Store, chart)
}

func (h *Handler) engine() (*commission.Chart, *lifecycle.Manager, *commission.ProductionLedger) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.chart, h.mgr, h.ledger
}

// =============================================================================
// AGENT HANDLERS
// =============================================================================

// ListAgents returns all agents.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Store.ListAgents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list agents", err)
		return
	}

	dtos := make([]AgentDTO, len(agents))
	for i, a := range agents {
		dtos[i] = toAgentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAgent returns a single agent.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id := commission.AgentID(chi.URLParam(r, "id"))

	agent, err := h.Store.GetAgent(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get agent", err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentDTO(agent))
}

// CreateAgent registers an agent under an introducer.
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Agent name is required", nil)
		return
	}

	ctx := r.Context()
	chart, _, _ := h.engine()

	// The introducer, when given, must already exist. A missing introducer
	// would silently turn the new agent into a root of its own tree.
	if req.IntroducerID != "" {
		if _, err := h.Store.GetAgent(ctx, commission.AgentID(req.IntroducerID)); err != nil {
			writeDomainError(w, "Introducer lookup failed", err)
			return
		}
	}

	tier := req.TierTitle
	if tier == "" {
		tier = chart.Lowest().Title
	}

	agent := &commission.Agent{
		ID:             commission.AgentID(req.ID),
		Name:           req.Name,
		IntroducerID:   commission.AgentID(req.IntroducerID),
		TierTitle:      tier,
		TeamProduction: commission.ZeroMoney(),
		Earnings:       commission.ZeroMoney(),
		ProducerNumber: req.ProducerNumber,
		CreatedAt:      time.Now().UTC(),
	}
	if agent.ID == "" {
		agent.ID = commission.AgentID(uuid.NewString())
	}

	if err := h.Store.PutAgent(ctx, agent); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create agent", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgentDTO(agent))
}

// GetAgentEntries returns an agent's commission ledger, newest last.
func (h *Handler) GetAgentEntries(w http.ResponseWriter, r *http.Request) {
	id := commission.AgentID(chi.URLParam(r, "id"))

	entries, err := h.Store.EntriesByAgent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GetAgentUpline returns the agent's introducer chain, starting with the
// agent itself and ending at the root.
func (h *Handler) GetAgentUpline(w http.ResponseWriter, r *http.Request) {
	id := commission.AgentID(chi.URLParam(r, "id"))

	resolver := commission.NewResolver(h.Store)
	chain, err := resolver.UplineChain(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to walk upline", err)
		return
	}

	dtos := make([]AgentDTO, len(chain))
	for i, a := range chain {
		dtos[i] = toAgentDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAgentDownline returns every agent in the subtree below the given agent.
func (h *Handler) GetAgentDownline(w http.ResponseWriter, r *http.Request) {
	id := commission.AgentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	resolver := commission.NewResolver(h.Store)
	snap, err := resolver.Snapshot(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load hierarchy", err)
		return
	}
	if snap.Agent(id) == nil {
		writeError(w, http.StatusNotFound, "Agent not found", nil)
		return
	}

	downline, err := snap.DownlineIDs(id)
	if err != nil {
		writeDomainError(w, "Failed to walk downline", err)
		return
	}

	dtos := make([]AgentDTO, 0, len(downline))
	for did := range downline {
		if a := snap.Agent(did); a != nil {
			dtos = append(dtos, toAgentDTO(a))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TIER CHART HANDLERS
// =============================================================================

// GetTiers returns the active tier chart.
func (h *Handler) GetTiers(w http.ResponseWriter, r *http.Request) {
	chart, _, _ := h.engine()
	writeJSON(w, http.StatusOK, toTierRowDTOs(chart.Rows()))
}

// ReplaceTiers swaps in a new tier chart and persists it.
func (h *Handler) ReplaceTiers(w http.ResponseWriter, r *http.Request) {
	var req ReplaceChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rows := make([]commission.TierRow, len(req.Rows))
	for i, dto := range req.Rows {
		threshold, err := parseMoney(dto.Threshold, "threshold")
		if err != nil {
			writeDomainError(w, "Invalid tier chart", err)
			return
		}
		percent, err := parsePercent(dto.Percent, "percent")
		if err != nil {
			writeDomainError(w, "Invalid tier chart", err)
			return
		}
		rows[i] = commission.TierRow{
			Title:      dto.Title,
			Threshold:  threshold,
			Percent:    percent,
			Management: dto.Management,
		}
	}

	chart, err := commission.NewChart(rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tier chart", err)
		return
	}

	if err := h.Store.SaveChart(r.Context(), chart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save tier chart", err)
		return
	}
	h.setChart(chart)

	writeJSON(w, http.StatusOK, toTierRowDTOs(chart.Rows()))
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

func orderLine(r *http.Request) (commission.ProductLine, bool) {
	line := commission.ProductLine(chi.URLParam(r, "line"))
	return line, line.Valid()
}

// ListOrders returns the active (in-progress) orders for a product line.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}

	orders, err := h.Store.ListActiveOrders(r.Context(), line)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// ListArchivedOrders returns the archived orders for a product line.
func (h *Handler) ListArchivedOrders(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}

	orders, err := h.Store.ListArchivedOrders(r.Context(), line)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list archived orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTOs(orders))
}

// GetOrder returns one order, looking in the active table first and falling
// back to the archive.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}
	id := commission.OrderID(chi.URLParam(r, "id"))
	ctx := r.Context()

	order, err := h.Store.GetActiveOrder(ctx, line, id)
	if commission.IsNotFound(err) {
		order, err = h.Store.GetArchivedOrder(ctx, line, id)
	}
	if err != nil {
		writeDomainError(w, "Failed to get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

// CreateOrder files a new in-progress order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	order, err := h.buildOrder(ctx, line, req)
	if err != nil {
		writeDomainError(w, "Invalid order", err)
		return
	}

	if err := h.Store.InsertActiveOrder(ctx, order); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(order))
}

func (h *Handler) buildOrder(ctx context.Context, line commission.ProductLine, req CreateOrderRequest) (*commission.Order, error) {
	if req.AgentID == "" {
		return nil, &commission.ValidationError{Field: "agent_id", Reason: "required"}
	}
	owner, err := h.Store.GetAgent(ctx, commission.AgentID(req.AgentID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &commission.Order{
		ID:         commission.OrderID(uuid.NewString()),
		Line:       line,
		AgentID:    owner.ID,
		AgentName:  owner.Name,
		Carrier:    req.Carrier,
		Product:    req.Product,
		AgeBracket: req.AgeBracket,
		Status:     commission.StatusInProgress,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if order.FaceAmount, err = parseMoney(req.FaceAmount, "face_amount"); err != nil {
		return nil, err
	}
	if order.InitialPremium, err = parseMoney(req.InitialPremium, "initial_premium"); err != nil {
		return nil, err
	}
	if order.TargetPremium, err = parseMoney(req.TargetPremium, "target_premium"); err != nil {
		return nil, err
	}
	if order.FlexPremium, err = parseMoney(req.FlexPremium, "flex_premium"); err != nil {
		return nil, err
	}
	if order.ProductRate, err = parsePercent(req.ProductRate, "product_rate"); err != nil {
		return nil, err
	}
	if order.SplitPercent, err = parsePercent(req.SplitPercent, "split_percent"); err != nil {
		return nil, err
	}

	if line == commission.LineLife && !order.TargetPremium.IsPositive() {
		return nil, &commission.ValidationError{Field: "target_premium", Reason: "must be positive"}
	}
	if line == commission.LineAnnuity && !order.FlexPremium.IsPositive() {
		return nil, &commission.ValidationError{Field: "flex_premium", Reason: "must be positive"}
	}

	if req.SplitPartnerID != "" {
		if req.SplitPartnerID == req.AgentID {
			return nil, &commission.ValidationError{Field: "split_partner_id", Reason: "partner must differ from owner"}
		}
		if !order.SplitPercent.IsPositive() || !order.SplitPercent.LessThan(decimal.NewFromInt(100)) {
			return nil, &commission.ValidationError{Field: "split_percent", Reason: "must be between 0 and 100 exclusive"}
		}
		if _, err := h.Store.GetAgent(ctx, commission.AgentID(req.SplitPartnerID)); err != nil {
			return nil, err
		}
		order.SplitPartnerID = commission.AgentID(req.SplitPartnerID)
	}

	return order, nil
}

// SetOrderStatus transitions an order's lifecycle status. "completed"
// triggers commission distribution; "cancelled"/"rejected" archive the
// order without paying anyone.
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}
	id := commission.OrderID(chi.URLParam(r, "id"))

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	_, mgr, _ := h.engine()
	if err := mgr.SetStatus(r.Context(), line, id, commission.OrderStatus(req.Status)); err != nil {
		writeDomainError(w, "Status transition failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: req.Status})
}

// RenewOrder pays renewal commission on a distributed order.
func (h *Handler) RenewOrder(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}
	id := commission.OrderID(chi.URLParam(r, "id"))

	_, mgr, _ := h.engine()
	if err := mgr.Renew(r.Context(), line, id); err != nil {
		writeDomainError(w, "Renewal failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "renewed"})
}

// AuditOrder appends a carrier audit note comparing expected and received
// premium to a distributed order.
func (h *Handler) AuditOrder(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}
	id := commission.OrderID(chi.URLParam(r, "id"))

	var req CarrierAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	received, err := parseMoney(req.Received, "received")
	if err != nil {
		writeDomainError(w, "Invalid audit amount", err)
		return
	}

	_, mgr, _ := h.engine()
	if err := mgr.AppendCarrierAudit(r.Context(), line, id, received); err != nil {
		writeDomainError(w, "Audit failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "audited"})
}

// DeleteOrder removes a distributed order and reverses the owner's
// personal earnings and the upline's team production.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	line, ok := orderLine(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}
	id := commission.OrderID(chi.URLParam(r, "id"))

	_, mgr, _ := h.engine()
	if err := mgr.DeleteDistributed(r.Context(), line, id); err != nil {
		writeDomainError(w, "Delete failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// GetOrderEntries returns the ledger rows produced by one order.
func (h *Handler) GetOrderEntries(w http.ResponseWriter, r *http.Request) {
	id := commission.OrderID(chi.URLParam(r, "id"))

	entries, err := h.Store.EntriesByOrder(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// AmendEntry updates the free-text explanation on a ledger entry.
// The amount and percent are append-only and never change.
func (h *Handler) AmendEntry(w http.ResponseWriter, r *http.Request) {
	id := commission.EntryID(chi.URLParam(r, "id"))

	var req AmendEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.AmendExplanation(r.Context(), id, req.Explanation); err != nil {
		writeDomainError(w, "Amend failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "amended"})
}

// =============================================================================
// PRODUCT RATE HANDLERS
// =============================================================================

// ListProducts returns all configured product rates.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	rows := h.Products.Rows()
	dtos := make([]ProductRateDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toProductRateDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertProduct inserts or updates one product rate row.
func (h *Handler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	line := commission.ProductLine(req.Line)
	if !line.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown product line", nil)
		return
	}
	if strings.TrimSpace(req.Carrier) == "" || strings.TrimSpace(req.Product) == "" {
		writeError(w, http.StatusBadRequest, "Carrier and product are required", nil)
		return
	}

	var rates commission.Rates
	var err error
	if rates.Product, err = parsePercent(req.BaseRate, "base_rate"); err != nil {
		writeDomainError(w, "Invalid rate", err)
		return
	}
	if rates.Excess, err = parsePercent(req.ExcessRate, "excess_rate"); err != nil {
		writeDomainError(w, "Invalid rate", err)
		return
	}
	if rates.Renewal, err = parsePercent(req.Renewal, "renewal_rate"); err != nil {
		writeDomainError(w, "Invalid rate", err)
		return
	}
	if rates.Fiso, err = parsePercent(req.Fiso, "fiso_rate"); err != nil {
		writeDomainError(w, "Invalid rate", err)
		return
	}

	row := product.Rate{
		Line:       line,
		Carrier:    req.Carrier,
		Product:    req.Product,
		AgeBracket: req.AgeBracket,
		Rates:      rates,
	}

	if err := h.Store.SaveProductRate(r.Context(), row); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rate", err)
		return
	}
	h.Products.Upsert(row)

	writeJSON(w, http.StatusOK, toProductRateDTO(row))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerRebuild recomputes all team production totals from the archive
// over a trailing window (default 12 months).
func (h *Handler) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	months := 12
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid months parameter", err)
			return
		}
		months = n
	}

	_, _, ledger := h.engine()
	if err := ledger.RebuildAll(r.Context(), time.Now().UTC(), months); err != nil {
		writeError(w, http.StatusInternalServerError, "Rebuild failed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "rebuilt"})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseMoney parses a decimal string into Money. Empty means zero.
func parseMoney(s, field string) (commission.Money, error) {
	if strings.TrimSpace(s) == "" {
		return commission.ZeroMoney(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return commission.ZeroMoney(), &commission.ValidationError{Field: field, Reason: "not a decimal number"}
	}
	return commission.Money{Value: d}, nil
}

// parsePercent parses a decimal percent string. Empty means zero.
func parsePercent(s, field string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &commission.ValidationError{Field: field, Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &commission.ValidationError{Field: field, Reason: "must not be negative"}
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case commission.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, commission.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, message, err)
	case commission.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
