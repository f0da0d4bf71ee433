/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY ENCODING:
  All monetary amounts and percentages cross the wire as decimal strings
  ("12345.67"), never as floats. Clients parse them with their own decimal
  library. This keeps cent-exactness through serialization.

TYPES:
  Agent:
    AgentDTO, CreateAgentRequest

  Tier chart:
    TierRowDTO, ReplaceChartRequest

  Orders:
    OrderDTO, CreateOrderRequest, SetStatusRequest, CarrierAuditRequest

  Entries:
    EntryDTO, AmendEntryRequest

  Products:
    ProductRateDTO

SEE ALSO:
  - handlers.go: Uses these types
  - commission/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/product"
)

// =============================================================================
// AGENT TYPES
// =============================================================================

// AgentDTO represents an agent in API responses.
type AgentDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IntroducerID   string `json:"introducer_id,omitempty"`
	TierTitle      string `json:"tier_title"`
	TeamProduction string `json:"team_production"`
	Earnings       string `json:"earnings"`
	ProducerNumber string `json:"producer_number,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// CreateAgentRequest is the request to register an agent.
type CreateAgentRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IntroducerID   string `json:"introducer_id"`
	TierTitle      string `json:"tier_title"`
	ProducerNumber string `json:"producer_number"`
}

func toAgentDTO(a *commission.Agent) AgentDTO {
	return AgentDTO{
		ID:             string(a.ID),
		Name:           a.Name,
		IntroducerID:   string(a.IntroducerID),
		TierTitle:      a.TierTitle,
		TeamProduction: a.TeamProduction.String(),
		Earnings:       a.Earnings.String(),
		ProducerNumber: a.ProducerNumber,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// TIER CHART TYPES
// =============================================================================

// TierRowDTO represents one row of the commission tier chart.
type TierRowDTO struct {
	Title      string `json:"title"`
	Threshold  string `json:"threshold"`
	Percent    string `json:"percent"`
	Management bool   `json:"management"`
}

// ReplaceChartRequest replaces the whole tier chart atomically.
type ReplaceChartRequest struct {
	Rows []TierRowDTO `json:"rows"`
}

func toTierRowDTOs(rows []commission.TierRow) []TierRowDTO {
	dtos := make([]TierRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = TierRowDTO{
			Title:      row.Title,
			Threshold:  row.Threshold.String(),
			Percent:    row.Percent.String(),
			Management: row.Management,
		}
	}
	return dtos
}

// =============================================================================
// ORDER TYPES
// =============================================================================

// OrderDTO represents an order (active or archived) in API responses.
type OrderDTO struct {
	ID             string `json:"id"`
	Line           string `json:"line"`
	AgentID        string `json:"agent_id"`
	AgentName      string `json:"agent_name,omitempty"`
	Status         string `json:"status"`
	Carrier        string `json:"carrier,omitempty"`
	Product        string `json:"product,omitempty"`
	AgeBracket     string `json:"age_bracket,omitempty"`
	FaceAmount     string `json:"face_amount,omitempty"`
	InitialPremium string `json:"initial_premium,omitempty"`
	TargetPremium  string `json:"target_premium,omitempty"`
	FlexPremium    string `json:"flex_premium,omitempty"`
	ProductRate    string `json:"product_rate,omitempty"`
	SplitPartnerID string `json:"split_partner_id,omitempty"`
	SplitPercent   string `json:"split_percent,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// CreateOrderRequest is the request to file a new order on a product line.
// Life orders use face_amount/initial_premium/target_premium; annuity
// orders use age_bracket/flex_premium.
type CreateOrderRequest struct {
	AgentID        string `json:"agent_id"`
	Carrier        string `json:"carrier"`
	Product        string `json:"product"`
	AgeBracket     string `json:"age_bracket"`
	FaceAmount     string `json:"face_amount"`
	InitialPremium string `json:"initial_premium"`
	TargetPremium  string `json:"target_premium"`
	FlexPremium    string `json:"flex_premium"`
	ProductRate    string `json:"product_rate"`
	SplitPartnerID string `json:"split_partner_id"`
	SplitPercent   string `json:"split_percent"`
	Notes          string `json:"notes"`
}

// SetStatusRequest transitions an order's lifecycle status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// CarrierAuditRequest records the premium the carrier actually reported.
type CarrierAuditRequest struct {
	Received string `json:"received"`
}

func toOrderDTO(o *commission.Order) OrderDTO {
	dto := OrderDTO{
		ID:             string(o.ID),
		Line:           string(o.Line),
		AgentID:        string(o.AgentID),
		AgentName:      o.AgentName,
		Status:         string(o.Status),
		Carrier:        o.Carrier,
		Product:        o.Product,
		AgeBracket:     o.AgeBracket,
		SplitPartnerID: string(o.SplitPartnerID),
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339),
	}
	if !o.ProductRate.IsZero() {
		dto.ProductRate = o.ProductRate.String()
	}
	if !o.SplitPercent.IsZero() {
		dto.SplitPercent = o.SplitPercent.String()
	}
	switch o.Line {
	case commission.LineLife:
		dto.FaceAmount = o.FaceAmount.String()
		dto.InitialPremium = o.InitialPremium.String()
		dto.TargetPremium = o.TargetPremium.String()
	case commission.LineAnnuity:
		dto.FlexPremium = o.FlexPremium.String()
	}
	return dto
}

func toOrderDTOs(orders []*commission.Order) []OrderDTO {
	dtos := make([]OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	return dtos
}

// =============================================================================
// ENTRY TYPES
// =============================================================================

// EntryDTO represents a commission ledger entry in API responses.
type EntryDTO struct {
	ID          string `json:"id"`
	AgentID     string `json:"agent_id"`
	AgentName   string `json:"agent_name"`
	Category    string `json:"category"`
	Percent     string `json:"percent"`
	Amount      string `json:"amount"`
	OrderID     string `json:"order_id"`
	Explanation string `json:"explanation,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	Line        string `json:"line,omitempty"`
	Carrier     string `json:"carrier,omitempty"`
	Product     string `json:"product,omitempty"`
	Premium     string `json:"premium,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// AmendEntryRequest updates an entry's human-readable explanation.
// Amounts are append-only and cannot be amended.
type AmendEntryRequest struct {
	Explanation string `json:"explanation"`
}

func toEntryDTO(e commission.Entry) EntryDTO {
	return EntryDTO{
		ID:          string(e.ID),
		AgentID:     string(e.AgentID),
		AgentName:   e.AgentName,
		Category:    string(e.Category),
		Percent:     e.Percent.String(),
		Amount:      e.Amount.String(),
		OrderID:     string(e.OrderID),
		Explanation: e.Explanation,
		OwnerName:   e.Snapshot.OwnerName,
		Line:        string(e.Snapshot.Line),
		Carrier:     e.Snapshot.Carrier,
		Product:     e.Snapshot.Product,
		Premium:     e.Snapshot.Premium.String(),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTOs(entries []commission.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

// =============================================================================
// PRODUCT TYPES
// =============================================================================

// ProductRateDTO represents a product rate row in API requests/responses.
type ProductRateDTO struct {
	Line       string `json:"line"`
	Carrier    string `json:"carrier"`
	Product    string `json:"product"`
	AgeBracket string `json:"age_bracket,omitempty"`
	BaseRate   string `json:"base_rate"`
	ExcessRate string `json:"excess_rate"`
	Renewal    string `json:"renewal_rate"`
	Fiso       string `json:"fiso_rate"`
}

func toProductRateDTO(r product.Rate) ProductRateDTO {
	return ProductRateDTO{
		Line:       string(r.Line),
		Carrier:    r.Carrier,
		Product:    r.Product,
		AgeBracket: r.AgeBracket,
		BaseRate:   r.Rates.Product.String(),
		ExcessRate: r.Rates.Excess.String(),
		Renewal:    r.Rates.Renewal.String(),
		Fiso:       r.Rates.Fiso.String(),
	}
}

// =============================================================================
// GENERIC RESPONSES
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse acknowledges a state-changing operation.
type StatusResponse struct {
	Status string `json:"status"`
}
