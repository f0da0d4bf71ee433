/*
Package product resolves carrier/product metadata to commission rates.

PURPOSE:
  The distribution engine treats product-rate lookup as a keyed table
  lookup returning {fiso, excess, renewal, product} rates. This package
  implements that contract over an in-memory table that the API layer
  loads from the store at startup and keeps current on rate changes.

MATCHING RULES:
  - Carrier and product names match case-insensitively.
  - Annuity lookups additionally match the age bracket; with no exact
    bracket match the LOWEST available bracket for that carrier/product
    is used.
  - Not-found yields zero rates and ok=false - never an error. The
    distributor treats missing metadata as "no override applies".

SEE ALSO:
  - commission/distributor.go: ProductResolver contract and consumption
*/
package product

import (
	"sort"
	"strings"
	"sync"

	"github.com/warp/commission-engine/commission"
)

// Rate is one row of the product rate table.
type Rate struct {
	Line       commission.ProductLine
	Carrier    string
	Product    string
	AgeBracket string // annuity only, e.g. "0-70"; empty for life
	Rates      commission.Rates
}

// Resolver is a concurrency-safe product rate table.
type Resolver struct {
	mu   sync.RWMutex
	rows []Rate
}

// Compile-time check against the distributor's contract.
var _ commission.ProductResolver = (*Resolver)(nil)

func NewResolver(rows []Rate) *Resolver {
	r := &Resolver{}
	r.Replace(rows)
	return r
}

// Replace swaps the whole table.
func (r *Resolver) Replace(rows []Rate) {
	cp := make([]Rate, len(rows))
	copy(cp, rows)
	r.mu.Lock()
	r.rows = cp
	r.mu.Unlock()
}

// Add appends one row.
func (r *Resolver) Add(row Rate) {
	r.mu.Lock()
	r.rows = append(r.rows, row)
	r.mu.Unlock()
}

// Upsert replaces the row keyed by (line, carrier, product, bracket), or
// appends it when absent. Key comparison is case-insensitive, matching
// Resolve.
func (r *Resolver) Upsert(row Rate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rows {
		if existing.Line == row.Line &&
			strings.EqualFold(existing.Carrier, row.Carrier) &&
			strings.EqualFold(existing.Product, row.Product) &&
			strings.EqualFold(existing.AgeBracket, row.AgeBracket) {
			r.rows[i] = row
			return
		}
	}
	r.rows = append(r.rows, row)
}

// Rows returns a copy of the table.
func (r *Resolver) Rows() []Rate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]Rate, len(r.rows))
	copy(cp, r.rows)
	return cp
}

// Resolve implements commission.ProductResolver.
func (r *Resolver) Resolve(line commission.ProductLine, carrier, productName, ageBracket string) (commission.Rates, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []Rate
	for _, row := range r.rows {
		if row.Line != line {
			continue
		}
		if !strings.EqualFold(row.Carrier, carrier) || !strings.EqualFold(row.Product, productName) {
			continue
		}
		candidates = append(candidates, row)
	}
	if len(candidates) == 0 {
		return commission.Rates{}, false
	}

	if line != commission.LineAnnuity {
		return candidates[0].Rates, true
	}

	for _, row := range candidates {
		if strings.EqualFold(row.AgeBracket, ageBracket) {
			return row.Rates, true
		}
	}

	// No exact bracket: fall back to the lowest available one.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].AgeBracket < candidates[j].AgeBracket
	})
	return candidates[0].Rates, true
}
