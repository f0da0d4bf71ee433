/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements commission.Store and commission.TxStore using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  agents:               Hierarchy nodes with derived production/tier state
  life_applications:    Active life orders
  annuity_applications: Active annuity orders
  life_archive:         Distributed/cancelled/rejected life orders
  annuity_archive:      Distributed/cancelled/rejected annuity orders
  commission_entries:   Append-only commission ledger
  tier_rows:            Persisted tier chart
  product_rates:        Product metadata for the rate resolver

TABLE SELECTION:
  Order tables are resolved from the (line, active|archive) tagged variant
  through a switch on typed constants. Table identifiers are NEVER built
  from request strings.

APPEND-ONLY ENFORCEMENT:
  commission_entries has no UPDATE path except the explanation column
  (administrative comment amendment) and no DELETE path at all.

CONCURRENCY:
  A store-wide mutex serializes WithTx scopes, so one order's distribution
  never observes another's partially-applied production. SQLite runs in
  WAL mode; SQLITE_BUSY style failures surface as ErrTransientStore so
  callers can retry.

SEE ALSO:
  - commission/store.go: Interface definitions
  - commission/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/commission"
	"github.com/warp/commission-engine/product"
)

// Store implements commission.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	session // default session runs against db directly
}

// Compile-time interface check.
var _ commission.TxStore = (*Store)(nil)

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	s.session = session{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside one database transaction. Scopes serialize through
// the store mutex.
func (s *Store) WithTx(ctx context.Context, fn func(commission.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	if err := fn(session{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Agents (introducer hierarchy + derived state)
	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		introducer_id TEXT NOT NULL DEFAULT '',
		tier_title TEXT NOT NULL,
		team_production TEXT NOT NULL,
		earnings TEXT NOT NULL,
		producer_number TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agents_introducer
		ON agents(introducer_id);

	-- Life orders: active applications and archive
	CREATE TABLE IF NOT EXISTS life_applications (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		carrier TEXT NOT NULL,
		product TEXT NOT NULL,
		face_amount TEXT NOT NULL,
		initial_premium TEXT NOT NULL,
		target_premium TEXT NOT NULL,
		product_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		split_partner_id TEXT NOT NULL DEFAULT '',
		split_percent TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS life_archive (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		carrier TEXT NOT NULL,
		product TEXT NOT NULL,
		face_amount TEXT NOT NULL,
		initial_premium TEXT NOT NULL,
		target_premium TEXT NOT NULL,
		product_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		split_partner_id TEXT NOT NULL DEFAULT '',
		split_percent TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Annuity orders: active applications and archive
	CREATE TABLE IF NOT EXISTS annuity_applications (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		carrier TEXT NOT NULL,
		product TEXT NOT NULL,
		age_bracket TEXT NOT NULL DEFAULT '',
		flex_premium TEXT NOT NULL,
		product_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		split_partner_id TEXT NOT NULL DEFAULT '',
		split_percent TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS annuity_archive (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		carrier TEXT NOT NULL,
		product TEXT NOT NULL,
		age_bracket TEXT NOT NULL DEFAULT '',
		flex_premium TEXT NOT NULL,
		product_rate TEXT NOT NULL,
		status TEXT NOT NULL,
		split_partner_id TEXT NOT NULL DEFAULT '',
		split_percent TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_life_archive_status
		ON life_archive(status, created_at);
	CREATE INDEX IF NOT EXISTS idx_annuity_archive_status
		ON annuity_archive(status, created_at);
	CREATE INDEX IF NOT EXISTS idx_life_applications_agent
		ON life_applications(agent_id);
	CREATE INDEX IF NOT EXISTS idx_annuity_applications_agent
		ON annuity_applications(agent_id);

	-- Commission ledger (append-only)
	CREATE TABLE IF NOT EXISTS commission_entries (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		category TEXT NOT NULL,
		percent TEXT NOT NULL,
		amount TEXT NOT NULL,
		order_id TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		snap_owner_name TEXT NOT NULL DEFAULT '',
		snap_line TEXT NOT NULL DEFAULT '',
		snap_carrier TEXT NOT NULL DEFAULT '',
		snap_product TEXT NOT NULL DEFAULT '',
		snap_premium TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_entries_order
		ON commission_entries(order_id);
	CREATE INDEX IF NOT EXISTS idx_entries_agent
		ON commission_entries(agent_id);

	-- Tier chart
	CREATE TABLE IF NOT EXISTS tier_rows (
		title TEXT PRIMARY KEY,
		threshold TEXT NOT NULL,
		percent TEXT NOT NULL,
		management BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Product rates
	CREATE TABLE IF NOT EXISTS product_rates (
		line TEXT NOT NULL,
		carrier TEXT NOT NULL,
		product TEXT NOT NULL,
		age_bracket TEXT NOT NULL DEFAULT '',
		product_rate TEXT NOT NULL,
		excess_rate TEXT NOT NULL,
		renewal_rate TEXT NOT NULL,
		fiso_rate TEXT NOT NULL,
		PRIMARY KEY (line, carrier, product, age_bracket)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return fmt.Errorf("%w: %v", commission.ErrTransientStore, err)
		case sqlite3.ErrConstraint:
			return fmt.Errorf("%w: %v", commission.ErrDuplicateEntry, err)
		}
	}
	return err
}

// =============================================================================
// TYPED TABLE SELECTION - never string-built from input
// =============================================================================

func activeTable(line commission.ProductLine) (string, error) {
	switch line {
	case commission.LineLife:
		return "life_applications", nil
	case commission.LineAnnuity:
		return "annuity_applications", nil
	default:
		return "", &commission.ValidationError{Field: "line", Reason: string(line)}
	}
}

func archiveTable(line commission.ProductLine) (string, error) {
	switch line {
	case commission.LineLife:
		return "life_archive", nil
	case commission.LineAnnuity:
		return "annuity_archive", nil
	default:
		return "", &commission.ValidationError{Field: "line", Reason: string(line)}
	}
}

// =============================================================================
// SESSION - Store operations bound to either *sql.DB or *sql.Tx
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type session struct {
	db dbtx
}

var _ commission.Store = session{}

// -----------------------------------------------------------------------------
// AgentStore
// -----------------------------------------------------------------------------

const agentColumns = `id, name, introducer_id, tier_title, team_production, earnings, producer_number, created_at`

func (q session) GetAgent(ctx context.Context, id commission.AgentID) (*commission.Agent, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
	a, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %s: %w", id, commission.ErrAgentNotFound)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (q session) GetAgents(ctx context.Context, ids []commission.AgentID) (map[commission.AgentID]*commission.Agent, error) {
	out := make(map[commission.AgentID]*commission.Agent, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, mapErr(rows.Err())
}

func (q session) ListAgents(ctx context.Context) ([]*commission.Agent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM agents ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*commission.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}

func (q session) PutAgent(ctx context.Context, a *commission.Agent) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO agents (`+agentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.IntroducerID, a.TierTitle,
		a.TeamProduction.Value.String(), a.Earnings.Value.String(),
		a.ProducerNumber, a.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapErr(err)
}

func (q session) SetProduction(ctx context.Context, id commission.AgentID, production commission.Money, tier string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE agents SET team_production = ?, tier_title = ? WHERE id = ?`,
		production.Value.String(), tier, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("agent %s: %w", id, commission.ErrAgentNotFound)
	}
	return nil
}

func (q session) AddEarnings(ctx context.Context, id commission.AgentID, delta commission.Money) error {
	a, err := q.GetAgent(ctx, id)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`UPDATE agents SET earnings = ? WHERE id = ?`,
		a.Earnings.Add(delta).Value.String(), id)
	return mapErr(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(r rowScanner) (*commission.Agent, error) {
	var (
		a          commission.Agent
		production string
		earnings   string
		createdAt  string
	)
	if err := r.Scan(&a.ID, &a.Name, &a.IntroducerID, &a.TierTitle,
		&production, &earnings, &a.ProducerNumber, &createdAt); err != nil {
		return nil, err
	}
	a.TeamProduction = commission.MustParseMoney(production)
	a.Earnings = commission.MustParseMoney(earnings)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// -----------------------------------------------------------------------------
// EntryStore
// -----------------------------------------------------------------------------

func (q session) AppendEntries(ctx context.Context, entries []commission.Entry) error {
	for _, e := range entries {
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO commission_entries
			(id, agent_id, agent_name, category, percent, amount, order_id, explanation,
			 snap_owner_name, snap_line, snap_carrier, snap_product, snap_premium, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			        (SELECT COALESCE(MAX(seq), 0) + 1 FROM commission_entries))`,
			e.ID, e.AgentID, e.AgentName, e.Category,
			e.Percent.String(), e.Amount.Value.String(),
			e.OrderID, e.Explanation,
			e.Snapshot.OwnerName, e.Snapshot.Line, e.Snapshot.Carrier,
			e.Snapshot.Product, e.Snapshot.Premium.Value.String(),
			e.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

const entryColumns = `id, agent_id, agent_name, category, percent, amount, order_id, explanation,
	snap_owner_name, snap_line, snap_carrier, snap_product, snap_premium, created_at`

func (q session) EntriesByOrder(ctx context.Context, orderID commission.OrderID) ([]commission.Entry, error) {
	return q.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM commission_entries WHERE order_id = ? ORDER BY seq ASC`, orderID)
}

func (q session) EntriesByAgent(ctx context.Context, agentID commission.AgentID) ([]commission.Entry, error) {
	return q.queryEntries(ctx,
		`SELECT `+entryColumns+` FROM commission_entries WHERE agent_id = ? ORDER BY seq ASC`, agentID)
}

func (q session) AmendExplanation(ctx context.Context, id commission.EntryID, explanation string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE commission_entries SET explanation = ? WHERE id = ?`, explanation, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %s: %w", id, commission.ErrEntryNotFound)
	}
	return nil
}

func (q session) queryEntries(ctx context.Context, query string, args ...any) ([]commission.Entry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []commission.Entry
	for rows.Next() {
		var (
			e           commission.Entry
			percent     string
			amount      string
			snapPremium string
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.AgentID, &e.AgentName, &e.Category,
			&percent, &amount, &e.OrderID, &e.Explanation,
			&e.Snapshot.OwnerName, &e.Snapshot.Line, &e.Snapshot.Carrier,
			&e.Snapshot.Product, &snapPremium, &createdAt); err != nil {
			return nil, err
		}
		e.Percent, _ = decimal.NewFromString(percent)
		e.Amount = commission.MustParseMoney(amount)
		e.Snapshot.Premium = commission.MustParseMoney(snapPremium)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, e)
	}
	return out, mapErr(rows.Err())
}

// -----------------------------------------------------------------------------
// OrderStore
// -----------------------------------------------------------------------------

func (q session) GetActiveOrder(ctx context.Context, line commission.ProductLine, id commission.OrderID) (*commission.Order, error) {
	table, err := activeTable(line)
	if err != nil {
		return nil, err
	}
	return q.getOrder(ctx, table, line, id)
}

func (q session) ListActiveOrders(ctx context.Context, line commission.ProductLine) ([]*commission.Order, error) {
	table, err := activeTable(line)
	if err != nil {
		return nil, err
	}
	return q.listOrders(ctx, table, line, ``)
}

func (q session) InsertActiveOrder(ctx context.Context, o *commission.Order) error {
	table, err := activeTable(o.Line)
	if err != nil {
		return err
	}
	return q.insertOrder(ctx, table, o)
}

func (q session) DeleteActiveOrder(ctx context.Context, line commission.ProductLine, id commission.OrderID) error {
	table, err := activeTable(line)
	if err != nil {
		return err
	}
	return q.deleteOrder(ctx, table, id)
}

func (q session) GetArchivedOrder(ctx context.Context, line commission.ProductLine, id commission.OrderID) (*commission.Order, error) {
	table, err := archiveTable(line)
	if err != nil {
		return nil, err
	}
	return q.getOrder(ctx, table, line, id)
}

func (q session) ListArchivedOrders(ctx context.Context, line commission.ProductLine) ([]*commission.Order, error) {
	table, err := archiveTable(line)
	if err != nil {
		return nil, err
	}
	return q.listOrders(ctx, table, line, ``)
}

func (q session) InsertArchivedOrder(ctx context.Context, o *commission.Order) error {
	table, err := archiveTable(o.Line)
	if err != nil {
		return err
	}
	return q.insertOrder(ctx, table, o)
}

func (q session) DeleteArchivedOrder(ctx context.Context, line commission.ProductLine, id commission.OrderID) error {
	table, err := archiveTable(line)
	if err != nil {
		return err
	}
	return q.deleteOrder(ctx, table, id)
}

func (q session) UpdateArchivedNotes(ctx context.Context, line commission.ProductLine, id commission.OrderID, notes string) error {
	table, err := archiveTable(line)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE `+table+` SET notes = ? WHERE id = ?`, notes, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", id, commission.ErrOrderNotFound)
	}
	return nil
}

func (q session) ListDistributedSince(ctx context.Context, line commission.ProductLine, since time.Time) ([]*commission.Order, error) {
	table, err := archiveTable(line)
	if err != nil {
		return nil, err
	}
	return q.listOrders(ctx, table, line,
		`WHERE status = 'distributed' AND created_at >= ?`,
		since.UTC().Format(time.RFC3339))
}

// Per-line column shapes mirror the domain: life carries face/initial/target
// premiums, annuities a single flex premium.
func lineColumns(line commission.ProductLine) string {
	if line == commission.LineAnnuity {
		return `id, agent_id, agent_name, carrier, product, age_bracket, flex_premium,
			product_rate, status, split_partner_id, split_percent, notes, created_at, updated_at`
	}
	return `id, agent_id, agent_name, carrier, product, face_amount, initial_premium, target_premium,
		product_rate, status, split_partner_id, split_percent, notes, created_at, updated_at`
}

func (q session) getOrder(ctx context.Context, table string, line commission.ProductLine, id commission.OrderID) (*commission.Order, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+lineColumns(line)+` FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapErr(err)
		}
		return nil, fmt.Errorf("order %s: %w", id, commission.ErrOrderNotFound)
	}
	return scanOrder(rows, line)
}

func (q session) listOrders(ctx context.Context, table string, line commission.ProductLine, where string, args ...any) ([]*commission.Order, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+lineColumns(line)+` FROM `+table+` `+where+` ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []*commission.Order
	for rows.Next() {
		o, err := scanOrder(rows, line)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, mapErr(rows.Err())
}

func (q session) insertOrder(ctx context.Context, table string, o *commission.Order) error {
	var err error
	if o.Line == commission.LineAnnuity {
		_, err = q.db.ExecContext(ctx, `
			INSERT INTO `+table+` (`+lineColumns(o.Line)+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.AgentID, o.AgentName, o.Carrier, o.Product, o.AgeBracket,
			o.FlexPremium.Value.String(), o.ProductRate.String(), o.Status,
			o.SplitPartnerID, o.SplitPercent.String(), o.Notes,
			o.CreatedAt.UTC().Format(time.RFC3339), o.UpdatedAt.UTC().Format(time.RFC3339),
		)
	} else {
		_, err = q.db.ExecContext(ctx, `
			INSERT INTO `+table+` (`+lineColumns(o.Line)+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.AgentID, o.AgentName, o.Carrier, o.Product,
			o.FaceAmount.Value.String(), o.InitialPremium.Value.String(), o.TargetPremium.Value.String(),
			o.ProductRate.String(), o.Status,
			o.SplitPartnerID, o.SplitPercent.String(), o.Notes,
			o.CreatedAt.UTC().Format(time.RFC3339), o.UpdatedAt.UTC().Format(time.RFC3339),
		)
	}
	return mapErr(err)
}

func (q session) deleteOrder(ctx context.Context, table string, id commission.OrderID) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", id, commission.ErrOrderNotFound)
	}
	return nil
}

func scanOrder(rows *sql.Rows, line commission.ProductLine) (*commission.Order, error) {
	var (
		o           commission.Order
		productRate string
		splitPct    string
		createdAt   string
		updatedAt   string
	)
	o.Line = line

	if line == commission.LineAnnuity {
		var flex string
		if err := rows.Scan(&o.ID, &o.AgentID, &o.AgentName, &o.Carrier, &o.Product, &o.AgeBracket,
			&flex, &productRate, &o.Status, &o.SplitPartnerID, &splitPct, &o.Notes,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		o.FlexPremium = commission.MustParseMoney(flex)
	} else {
		var face, initial, target string
		if err := rows.Scan(&o.ID, &o.AgentID, &o.AgentName, &o.Carrier, &o.Product,
			&face, &initial, &target, &productRate, &o.Status, &o.SplitPartnerID, &splitPct, &o.Notes,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		o.FaceAmount = commission.MustParseMoney(face)
		o.InitialPremium = commission.MustParseMoney(initial)
		o.TargetPremium = commission.MustParseMoney(target)
	}

	o.ProductRate, _ = decimal.NewFromString(productRate)
	o.SplitPercent, _ = decimal.NewFromString(splitPct)
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &o, nil
}

// =============================================================================
// TIER CHART PERSISTENCE
// =============================================================================

// LoadChart reads the persisted tier chart, or (nil, nil) when no rows exist.
func (s *Store) LoadChart(ctx context.Context) (*commission.Chart, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, threshold, percent, management FROM tier_rows`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var tierRows []commission.TierRow
	for rows.Next() {
		var (
			r         commission.TierRow
			threshold string
			percent   string
		)
		if err := rows.Scan(&r.Title, &threshold, &percent, &r.Management); err != nil {
			return nil, err
		}
		r.Threshold = commission.MustParseMoney(threshold)
		r.Percent, _ = decimal.NewFromString(percent)
		tierRows = append(tierRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	if len(tierRows) == 0 {
		return nil, nil
	}
	return commission.NewChart(tierRows)
}

// SaveChart replaces the persisted tier chart.
func (s *Store) SaveChart(ctx context.Context, chart *commission.Chart) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tier_rows`); err != nil {
		return mapErr(err)
	}
	for _, r := range chart.Rows() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tier_rows (title, threshold, percent, management)
			VALUES (?, ?, ?, ?)`,
			r.Title, r.Threshold.Value.String(), r.Percent.String(), r.Management); err != nil {
			return mapErr(err)
		}
	}
	return mapErr(tx.Commit())
}

// =============================================================================
// PRODUCT RATE PERSISTENCE
// =============================================================================

// LoadProductRates reads all product rate rows for the resolver.
func (s *Store) LoadProductRates(ctx context.Context) ([]product.Rate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT line, carrier, product, age_bracket, product_rate, excess_rate, renewal_rate, fiso_rate
		FROM product_rates`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []product.Rate
	for rows.Next() {
		var (
			r                               product.Rate
			prodRate, excess, renewal, fiso string
		)
		if err := rows.Scan(&r.Line, &r.Carrier, &r.Product, &r.AgeBracket,
			&prodRate, &excess, &renewal, &fiso); err != nil {
			return nil, err
		}
		r.Rates.Product, _ = decimal.NewFromString(prodRate)
		r.Rates.Excess, _ = decimal.NewFromString(excess)
		r.Rates.Renewal, _ = decimal.NewFromString(renewal)
		r.Rates.Fiso, _ = decimal.NewFromString(fiso)
		out = append(out, r)
	}
	return out, mapErr(rows.Err())
}

// SaveProductRate upserts one product rate row.
func (s *Store) SaveProductRate(ctx context.Context, r product.Rate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_rates (line, carrier, product, age_bracket, product_rate, excess_rate, renewal_rate, fiso_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (line, carrier, product, age_bracket) DO UPDATE SET
			product_rate = excluded.product_rate,
			excess_rate = excluded.excess_rate,
			renewal_rate = excluded.renewal_rate,
			fiso_rate = excluded.fiso_rate`,
		r.Line, r.Carrier, r.Product, r.AgeBracket,
		r.Rates.Product.String(), r.Rates.Excess.String(),
		r.Rates.Renewal.String(), r.Rates.Fiso.String())
	return mapErr(err)
}
