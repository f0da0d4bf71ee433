/*
errors.go - Centralized error types for the commission engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify errors with the helpers at the bottom rather than
  matching concrete types.

ERROR CATEGORIES:
  1. Not-found errors    - Agent/order/product absent (client-visible 404)
  2. Validation errors   - Bad identifiers, malformed orders (400)
  3. Hierarchy errors    - Introducer cycle detected (integrity fault, 500)
  4. Transient errors    - Lock/connection failures, retried a bounded
                           number of times then surfaced

USAGE:
  if commission.IsNotFound(err) { ... 404 ... }
  if commission.IsRetryable(err) { ... retry ... }

SEE ALSO:
  - hierarchy.go: Produces HierarchyError
  - store.go: Store implementations wrap these sentinels
*/
package commission

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAgentNotFound is returned when a referenced agent doesn't exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrOrderNotFound is returned when a referenced order doesn't exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrEntryNotFound is returned when a ledger entry doesn't exist.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrProductNotFound is returned when product metadata is absent.
	// The distributor treats this as "rate 0", not fatal; only lookups that
	// REQUIRE metadata surface it.
	ErrProductNotFound = errors.New("product rate not found")

	// ErrHierarchyCycle is returned when introducer references form a cycle.
	// Valid data never cycles; this is a fatal integrity fault.
	ErrHierarchyCycle = errors.New("introducer cycle detected")

	// ErrInvalidOrder is returned when an order is missing required
	// identifying fields or carries an invalid line/status selector.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrDuplicateEntry is returned when an entry id already exists.
	// Expected behavior for retried distributions.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")

	// ErrTransientStore is returned for connection/lock timeouts.
	// Retried a bounded number of times, then surfaced.
	ErrTransientStore = errors.New("transient store failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// HierarchyError reports an introducer cycle with the path that revisited
// an agent.
type HierarchyError struct {
	AgentID AgentID
	Path    []AgentID
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("introducer cycle at agent %s (path %v)", e.AgentID, e.Path)
}

func (e *HierarchyError) Unwrap() error { return ErrHierarchyCycle }

// ValidationError reports a specific invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidOrder }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAgentNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrProductNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidOrder) ||
		errors.Is(err, ErrDuplicateEntry)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

// maxRetries bounds transient-failure retries before surfacing the error.
const maxRetries = 3

// WithRetry runs fn, retrying transient store failures up to maxRetries
// times. Non-transient errors surface immediately.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
