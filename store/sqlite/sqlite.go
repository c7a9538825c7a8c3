/*
Package sqlite provides a SQLite-backed implementation of the fund storage
interfaces.

PURPOSE:
  Implements fund.Store and fund.SnapshotStore on SQLite. The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  members:           Fund roster
  contributions:     Recorded payments, one row per payment
  settings:          Single-row document (goal + rate-rule JSON)
  balance_snapshots: Daily balance rows written by the scheduler

CASCADE:
  contributions.member_id references members(id) ON DELETE CASCADE, so
  removing a member removes their payments in one statement. Foreign
  keys are switched on in the DSN.

WAL MODE:
  The database is opened with WAL for better concurrency: readers don't
  block, one writer at a time, better crash recovery.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - fund/store.go: Interface definitions
  - fund/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lagoon/fund-engine/fund"
	"github.com/lagoon/fund-engine/schedule"
)

// Store implements fund.Store and fund.SnapshotStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ fund.Store = (*Store)(nil)
var _ fund.SnapshotStore = (*Store)(nil)

// New opens (or creates) a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		join_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contributions (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		amount TEXT NOT NULL
	);

	-- Balance and streak queries load one member's payments by date
	CREATE INDEX IF NOT EXISTS idx_contributions_member_date
		ON contributions(member_id, date);
	CREATE INDEX IF NOT EXISTS idx_contributions_date
		ON contributions(date);

	-- Single-row settings document, like the original settings store
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		goal TEXT NOT NULL,
		rules_json TEXT NOT NULL,
		calendar_json TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS balance_snapshots (
		member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		as_of TEXT NOT NULL,
		expected TEXT NOT NULL,
		paid TEXT NOT NULL,
		outstanding TEXT NOT NULL,
		streak INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (member_id, as_of)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_member
		ON balance_snapshots(member_id, as_of);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// MEMBERS (fund.Store interface)
// =============================================================================

func (s *Store) ListMembers(ctx context.Context) ([]fund.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, join_date, created_at FROM members ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []fund.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) GetMember(ctx context.Context, id fund.MemberID) (*fund.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, join_date, created_at FROM members WHERE id = ?`, id)

	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMember(ctx context.Context, m fund.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, name, join_date, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.Name, m.JoinDate.String(), createdAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fund.ErrDuplicateID
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id fund.MemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// ON DELETE CASCADE removes the member's contributions and snapshots.
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fund.ErrMemberNotFound
	}
	return nil
}

// =============================================================================
// CONTRIBUTIONS
// =============================================================================

func (s *Store) ListContributions(ctx context.Context) ([]fund.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContributions(ctx,
		`SELECT id, member_id, date, amount FROM contributions ORDER BY date, id`)
}

func (s *Store) ListContributionsInRange(ctx context.Context, from, to schedule.Date) ([]fund.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContributions(ctx,
		`SELECT id, member_id, date, amount FROM contributions WHERE date >= ? AND date <= ? ORDER BY date, id`,
		from.String(), to.String())
}

func (s *Store) ListMemberContributions(ctx context.Context, id fund.MemberID) ([]fund.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContributions(ctx,
		`SELECT id, member_id, date, amount FROM contributions WHERE member_id = ? ORDER BY date, id`, id)
}

func (s *Store) queryContributions(ctx context.Context, query string, args ...any) ([]fund.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var out []fund.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetContribution(ctx context.Context, id fund.ContributionID) (*fund.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, member_id, date, amount FROM contributions WHERE id = ?`, id)

	c, err := scanContribution(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) AddContribution(ctx context.Context, c fund.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contributions (id, member_id, date, amount) VALUES (?, ?, ?, ?)`,
		c.ID, c.MemberID, c.Date.String(), c.Amount.String())
	if err != nil {
		if isUniqueConstraintError(err) {
			return fund.ErrDuplicateID
		}
		if isForeignKeyError(err) {
			return fund.ErrMemberNotFound
		}
		return fmt.Errorf("failed to add contribution: %w", err)
	}
	return nil
}

func (s *Store) UpdateContribution(ctx context.Context, c fund.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE contributions SET member_id = ?, date = ?, amount = ? WHERE id = ?`,
		c.MemberID, c.Date.String(), c.Amount.String(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update contribution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fund.ErrContributionNotFound
	}
	return nil
}

func (s *Store) DeleteContribution(ctx context.Context, id fund.ContributionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM contributions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fund.ErrContributionNotFound
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

type ruleJSON struct {
	EffectiveDate string `json:"effective_date"`
	Amount        string `json:"amount"`
}

type calendarRevisionJSON struct {
	EffectiveFrom string `json:"effective_from,omitempty"`
	Excluded      []int  `json:"excluded_weekdays"`
}

func (s *Store) LoadSettings(ctx context.Context) (fund.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT goal, rules_json, calendar_json FROM settings WHERE id = 1`)

	var goalStr, rulesStr, calendarStr string
	err := row.Scan(&goalStr, &rulesStr, &calendarStr)
	if err == sql.ErrNoRows {
		return fund.DefaultSettings(), nil
	}
	if err != nil {
		return fund.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	goal, err := decimal.NewFromString(goalStr)
	if err != nil {
		return fund.Settings{}, fmt.Errorf("corrupt goal %q: %w", goalStr, err)
	}

	var raw []ruleJSON
	if err := json.Unmarshal([]byte(rulesStr), &raw); err != nil {
		return fund.Settings{}, fmt.Errorf("corrupt rules: %w", err)
	}

	rules := make([]schedule.Rule, 0, len(raw))
	for _, r := range raw {
		d, err := schedule.ParseDate(r.EffectiveDate)
		if err != nil {
			return fund.Settings{}, fmt.Errorf("corrupt rule date: %w", err)
		}
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return fund.Settings{}, fmt.Errorf("corrupt rule amount %q: %w", r.Amount, err)
		}
		rules = append(rules, schedule.Rule{EffectiveDate: d, Amount: amount})
	}

	var rawCal []calendarRevisionJSON
	if err := json.Unmarshal([]byte(calendarStr), &rawCal); err != nil {
		return fund.Settings{}, fmt.Errorf("corrupt calendar: %w", err)
	}

	calendar := make([]schedule.PolicyRevision, 0, len(rawCal))
	for _, rev := range rawCal {
		var from schedule.Date
		if rev.EffectiveFrom != "" {
			if from, err = schedule.ParseDate(rev.EffectiveFrom); err != nil {
				return fund.Settings{}, fmt.Errorf("corrupt calendar date: %w", err)
			}
		}
		excluded := make([]time.Weekday, len(rev.Excluded))
		for i, wd := range rev.Excluded {
			excluded[i] = time.Weekday(wd)
		}
		calendar = append(calendar, schedule.PolicyRevision{EffectiveFrom: from, Excluded: excluded})
	}

	return fund.Settings{Goal: goal, Rules: rules, Calendar: calendar}, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings fund.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make([]ruleJSON, len(settings.Rules))
	for i, r := range settings.Rules {
		raw[i] = ruleJSON{EffectiveDate: r.EffectiveDate.String(), Amount: r.Amount.String()}
	}
	rulesStr, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	rawCal := make([]calendarRevisionJSON, len(settings.Calendar))
	for i, rev := range settings.Calendar {
		row := calendarRevisionJSON{Excluded: make([]int, len(rev.Excluded))}
		if !rev.EffectiveFrom.IsZero() {
			row.EffectiveFrom = rev.EffectiveFrom.String()
		}
		for j, wd := range rev.Excluded {
			row.Excluded[j] = int(wd)
		}
		rawCal[i] = row
	}
	calendarStr, err := json.Marshal(rawCal)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, goal, rules_json, calendar_json, updated_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET goal = excluded.goal,
			rules_json = excluded.rules_json, calendar_json = excluded.calendar_json,
			updated_at = excluded.updated_at`,
		settings.Goal.String(), string(rulesStr), string(calendarStr), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// SNAPSHOTS (fund.SnapshotStore interface)
// =============================================================================

func (s *Store) SaveSnapshots(ctx context.Context, snaps []fund.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO balance_snapshots (member_id, as_of, expected, paid, outstanding, streak, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(member_id, as_of) DO UPDATE SET expected = excluded.expected,
			paid = excluded.paid, outstanding = excluded.outstanding,
			streak = excluded.streak, created_at = excluded.created_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, snap := range snaps {
		if _, err := stmt.ExecContext(ctx,
			snap.MemberID, snap.AsOf.String(),
			snap.Expected.String(), snap.Paid.String(), snap.Outstanding.String(),
			snap.Streak, now); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListSnapshots(ctx context.Context, id fund.MemberID, from, to schedule.Date) ([]fund.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT member_id, as_of, expected, paid, outstanding, streak
		FROM balance_snapshots
		WHERE member_id = ? AND as_of >= ? AND as_of <= ?
		ORDER BY as_of`,
		id, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []fund.BalanceSnapshot
	for rows.Next() {
		var snap fund.BalanceSnapshot
		var asOf, expected, paid, outstanding string
		if err := rows.Scan(&snap.MemberID, &asOf, &expected, &paid, &outstanding, &snap.Streak); err != nil {
			return nil, err
		}
		if snap.AsOf, err = schedule.ParseDate(asOf); err != nil {
			return nil, err
		}
		if snap.Expected, err = decimal.NewFromString(expected); err != nil {
			return nil, err
		}
		if snap.Paid, err = decimal.NewFromString(paid); err != nil {
			return nil, err
		}
		if snap.Outstanding, err = decimal.NewFromString(outstanding); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (fund.Member, error) {
	var m fund.Member
	var joinDate, createdAt string
	if err := row.Scan(&m.ID, &m.Name, &joinDate, &createdAt); err != nil {
		return fund.Member{}, err
	}

	var err error
	if m.JoinDate, err = schedule.ParseDate(joinDate); err != nil {
		return fund.Member{}, fmt.Errorf("corrupt join date: %w", err)
	}
	if m.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return fund.Member{}, fmt.Errorf("corrupt created_at: %w", err)
	}
	return m, nil
}

func scanContribution(row rowScanner) (fund.Contribution, error) {
	var c fund.Contribution
	var date, amount string
	if err := row.Scan(&c.ID, &c.MemberID, &date, &amount); err != nil {
		return fund.Contribution{}, err
	}

	var err error
	if c.Date, err = schedule.ParseDate(date); err != nil {
		return fund.Contribution{}, fmt.Errorf("corrupt contribution date: %w", err)
	}
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return fund.Contribution{}, fmt.Errorf("corrupt contribution amount: %w", err)
	}
	return c, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
