/*
Package sqlite provides a SQLite-backed implementation of the leave store
interfaces.

PURPOSE:
  Implements leave.Stores and leave.TxRunner using SQLite. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  leave_types:       Leave code master data (day value, parent group)
  leave_periods:     Fiscal period windows
  employees:         Profiles incl. opening balances and joining allocations
  leave_allocations: Global and employee-specific allocation rows
  leave_entries:     Leave requests; only approved rows reach the engine
  holidays:          Non-working dates
  balance_snapshots: Materialized balances, UNIQUE(employee_id, balance_date)

AMOUNT STORAGE:
  Quantities are stored as decimal strings, never floats, so half-day
  values round-trip exactly.

JOIN-DATE RESOLUTION:
  The source data carries more than one candidate joining-date column.
  scanProfile resolves them in a fixed order (joining_date first, then
  the legacy confirmation_date) into the single Profile.JoinDate; the
  engine never sees the candidates.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./admindesk.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  activator := leave.NewActivator(engine, st)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: Interface definitions and contracts
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// Store implements leave.Stores and leave.TxRunner using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ leave.Stores = (*Store)(nil)
var _ leave.TxRunner = (*Store)(nil)

// New creates a store with the given database path.
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
	CREATE TABLE IF NOT EXISTS leave_types (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		day_value TEXT NOT NULL DEFAULT '1',
		is_half BOOLEAN NOT NULL DEFAULT FALSE,
		parent_code TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS leave_periods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_leave_periods_start
		ON leave_periods(start_date);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		joining_date TEXT,
		confirmation_date TEXT,
		left_date TEXT,
		calc_date TEXT,
		el_balance TEXT NOT NULL DEFAULT '0',
		cl_balance TEXT NOT NULL DEFAULT '0',
		sl_balance TEXT NOT NULL DEFAULT '0',
		vac_balance TEXT NOT NULL DEFAULT '0',
		joining_alloc_el TEXT NOT NULL DEFAULT '0',
		joining_alloc_cl TEXT NOT NULL DEFAULT '0',
		joining_alloc_sl TEXT NOT NULL DEFAULT '0',
		joining_alloc_vac TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_allocations (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		period_id TEXT NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL DEFAULT '0',
		sandwich BOOLEAN NOT NULL DEFAULT FALSE,
		carried BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_allocations_period
		ON leave_allocations(period_id);
	CREATE INDEX IF NOT EXISTS idx_leave_allocations_employee
		ON leave_allocations(employee_id, period_id);

	CREATE TABLE IF NOT EXISTS leave_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		type_code TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		sandwich INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_entries_employee
		ON leave_entries(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_leave_entries_status
		ON leave_entries(status, start_date);

	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS balance_snapshots (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		balance_date TEXT NOT NULL,
		starting_amounts TEXT NOT NULL,
		allocated_amounts TEXT NOT NULL,
		used_amounts TEXT NOT NULL,
		ending_amounts TEXT NOT NULL,
		allocation_ref TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, balance_date)
	);

	CREATE INDEX IF NOT EXISTS idx_balance_snapshots_employee
		ON balance_snapshots(employee_id, balance_date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer abstracts *sql.DB and *sql.Tx so the same statements serve both.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// SaveType inserts or updates a leave type master row.
func (s *Store) SaveType(ctx context.Context, t leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_types (code, name, day_value, is_half, parent_code, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			day_value = excluded.day_value,
			is_half = excluded.is_half,
			parent_code = excluded.parent_code,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		t.Code, t.Name, t.DayValue.String(), t.IsHalf, t.ParentCode, t.Active)
	return err
}

func (s *Store) ListTypes(ctx context.Context) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTypes(ctx, s.db)
}

func listTypes(ctx context.Context, q queryer) ([]leave.LeaveType, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT code, name, day_value, is_half, parent_code, active FROM leave_types ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		var t leave.LeaveType
		var dayValue string
		if err := rows.Scan(&t.Code, &t.Name, &dayValue, &t.IsHalf, &t.ParentCode, &t.Active); err != nil {
			return nil, err
		}
		t.DayValue = parseDecimal(dayValue)
		types = append(types, t)
	}
	return types, rows.Err()
}

// =============================================================================
// PERIODS
// =============================================================================

// SavePeriod inserts or updates a period window.
func (s *Store) SavePeriod(ctx context.Context, p leave.PeriodWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_periods (id, name, start_date, end_date, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Start.String(), p.End.String(), p.Active)
	return err
}

func (s *Store) ListPeriods(ctx context.Context) ([]leave.PeriodWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPeriods(ctx, s.db)
}

func listPeriods(ctx context.Context, q queryer) ([]leave.PeriodWindow, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, start_date, end_date, active FROM leave_periods ORDER BY start_date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []leave.PeriodWindow
	for rows.Next() {
		var p leave.PeriodWindow
		var start, end string
		if err := rows.Scan(&p.ID, &p.Name, &start, &end, &p.Active); err != nil {
			return nil, err
		}
		p.Start, p.End = parseDate(start), parseDate(end)
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) GetPeriod(ctx context.Context, id string) (*leave.PeriodWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPeriod(ctx, s.db, id)
}

func getPeriod(ctx context.Context, q queryer, id string) (*leave.PeriodWindow, error) {
	row := q.QueryRowContext(ctx,
		"SELECT id, name, start_date, end_date, active FROM leave_periods WHERE id = ?", id)

	var p leave.PeriodWindow
	var start, end string
	err := row.Scan(&p.ID, &p.Name, &start, &end, &p.Active)
	if err == sql.ErrNoRows {
		return nil, leave.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Start, p.End = parseDate(start), parseDate(end)
	return &p, nil
}

func (s *Store) MarkActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markActive(ctx, s.db, id)
}

func markActive(ctx context.Context, q queryer, id string) error {
	res, err := q.ExecContext(ctx,
		"UPDATE leave_periods SET active = TRUE WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrPeriodNotFound
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveProfile inserts or updates an employee profile.
func (s *Store) SaveProfile(ctx context.Context, p leave.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees
			(id, name, joining_date, left_date, calc_date,
			 el_balance, cl_balance, sl_balance, vac_balance,
			 joining_alloc_el, joining_alloc_cl, joining_alloc_sl, joining_alloc_vac,
			 created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			joining_date = excluded.joining_date,
			left_date = excluded.left_date,
			calc_date = excluded.calc_date,
			el_balance = excluded.el_balance,
			cl_balance = excluded.cl_balance,
			sl_balance = excluded.sl_balance,
			vac_balance = excluded.vac_balance,
			joining_alloc_el = excluded.joining_alloc_el,
			joining_alloc_cl = excluded.joining_alloc_cl,
			joining_alloc_sl = excluded.joining_alloc_sl,
			joining_alloc_vac = excluded.joining_alloc_vac
	`
	_, err := s.db.ExecContext(ctx, query,
		string(p.EmployeeID), p.Name,
		nullDate(p.JoinDate), nullDate(p.LeftDate), nullDate(p.CalcDate),
		balanceOf(p.OpeningBalance, leave.CodeEL), balanceOf(p.OpeningBalance, leave.CodeCL),
		balanceOf(p.OpeningBalance, leave.CodeSL), balanceOf(p.OpeningBalance, leave.CodeVAC),
		balanceOf(p.JoiningAllocation, leave.CodeEL), balanceOf(p.JoiningAllocation, leave.CodeCL),
		balanceOf(p.JoiningAllocation, leave.CodeSL), balanceOf(p.JoiningAllocation, leave.CodeVAC),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

const profileColumns = `id, name, joining_date, confirmation_date, left_date, calc_date,
	el_balance, cl_balance, sl_balance, vac_balance,
	joining_alloc_el, joining_alloc_cl, joining_alloc_sl, joining_alloc_vac`

func (s *Store) ListProfiles(ctx context.Context) ([]leave.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProfiles(ctx, s.db)
}

func listProfiles(ctx context.Context, q queryer) ([]leave.Profile, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM employees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []leave.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) GetProfile(ctx context.Context, id leave.EmployeeID) (*leave.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProfile(ctx, s.db, id)
}

func getProfile(ctx context.Context, q queryer, id leave.EmployeeID) (*leave.Profile, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM employees WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, leave.ErrEmployeeNotFound
	}
	p, err := scanProfile(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProfile(rows *sql.Rows) (leave.Profile, error) {
	var (
		p                       leave.Profile
		id                      string
		joining, confirmation   sql.NullString
		left, calc              sql.NullString
		el, cl, sl, vac         string
		jaEL, jaCL, jaSL, jaVAC string
	)
	err := rows.Scan(&id, &p.Name, &joining, &confirmation, &left, &calc,
		&el, &cl, &sl, &vac, &jaEL, &jaCL, &jaSL, &jaVAC)
	if err != nil {
		return p, err
	}

	p.EmployeeID = leave.EmployeeID(id)
	// Candidate joining-date columns resolved here in a fixed order; the
	// engine only ever sees the single resolved date.
	p.JoinDate = firstDate(joining, confirmation)
	p.LeftDate = firstDate(left)
	p.CalcDate = firstDate(calc)
	p.OpeningBalance = map[leave.Code]decimal.Decimal{
		leave.CodeEL:  parseDecimal(el),
		leave.CodeCL:  parseDecimal(cl),
		leave.CodeSL:  parseDecimal(sl),
		leave.CodeVAC: parseDecimal(vac),
	}
	p.JoiningAllocation = map[leave.Code]decimal.Decimal{
		leave.CodeEL:  parseDecimal(jaEL),
		leave.CodeCL:  parseDecimal(jaCL),
		leave.CodeSL:  parseDecimal(jaSL),
		leave.CodeVAC: parseDecimal(jaVAC),
	}
	return p, nil
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func (s *Store) AllocationsForPeriods(ctx context.Context, periodIDs []string) ([]leave.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return allocationsForPeriods(ctx, s.db, periodIDs)
}

func allocationsForPeriods(ctx context.Context, q queryer, periodIDs []string) ([]leave.Allocation, error) {
	if len(periodIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(periodIDs)), ",")
	args := make([]any, len(periodIDs))
	for i, id := range periodIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, code, period_id, employee_id, quantity, sandwich, carried FROM leave_allocations WHERE period_id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []leave.Allocation
	for rows.Next() {
		var a leave.Allocation
		var emp, quantity string
		if err := rows.Scan(&a.ID, &a.Code, &a.PeriodID, &emp, &quantity, &a.Sandwich, &a.Carried); err != nil {
			return nil, err
		}
		a.EmployeeID = leave.EmployeeID(emp)
		a.Quantity = parseDecimal(quantity)
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

func (s *Store) UpsertAllocation(ctx context.Context, a leave.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertAllocation(ctx, s.db, a)
}

func upsertAllocation(ctx context.Context, q queryer, a leave.Allocation) error {
	query := `
		INSERT INTO leave_allocations (id, code, period_id, employee_id, quantity, sandwich, carried, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			period_id = excluded.period_id,
			employee_id = excluded.employee_id,
			quantity = excluded.quantity,
			sandwich = excluded.sandwich,
			carried = excluded.carried,
			updated_at = excluded.updated_at
	`
	_, err := q.ExecContext(ctx, query,
		a.ID, a.Code, a.PeriodID, string(a.EmployeeID),
		a.Quantity.String(), a.Sandwich, a.Carried,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// ENTRIES
// =============================================================================

// SaveEntry inserts or updates a leave entry.
func (s *Store) SaveEntry(ctx context.Context, e leave.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sandwich any // tri-state: NULL, 0, 1
	if e.Sandwich != nil {
		if *e.Sandwich {
			sandwich = 1
		} else {
			sandwich = 0
		}
	}

	query := `
		INSERT INTO leave_entries (id, employee_id, type_code, start_date, end_date, status, sandwich, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			type_code = excluded.type_code,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			sandwich = excluded.sandwich
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, string(e.EmployeeID), e.TypeCode,
		e.Start.String(), e.End.String(), e.Status, sandwich,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// ApprovedEntries returns approved entries overlapping [from, to].
// The status filter lives here: the engine must never see other statuses.
func (s *Store) ApprovedEntries(ctx context.Context, from, to leave.Date) ([]leave.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return approvedEntries(ctx, s.db, from, to)
}

func approvedEntries(ctx context.Context, q queryer, from, to leave.Date) ([]leave.Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, employee_id, type_code, start_date, end_date, status, sandwich
		FROM leave_entries
		WHERE status = ? AND end_date >= ? AND start_date <= ?
		ORDER BY start_date ASC
	`, leave.StatusApproved, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []leave.Entry
	for rows.Next() {
		var e leave.Entry
		var emp, start, end string
		var sandwich sql.NullInt64
		if err := rows.Scan(&e.ID, &emp, &e.TypeCode, &start, &end, &e.Status, &sandwich); err != nil {
			return nil, err
		}
		e.EmployeeID = leave.EmployeeID(emp)
		e.Start, e.End = parseDate(start), parseDate(end)
		if sandwich.Valid {
			v := sandwich.Int64 != 0
			e.Sandwich = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts a holiday date, updating the name on conflict.
func (s *Store) SaveHoliday(ctx context.Context, d leave.Date, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holidays (date, name) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET name = excluded.name",
		d.String(), name)
	return err
}

func (s *Store) ListHolidays(ctx context.Context) ([]leave.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listHolidays(ctx, s.db)
}

func listHolidays(ctx context.Context, q queryer) ([]leave.Date, error) {
	rows, err := q.QueryContext(ctx, "SELECT date FROM holidays ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []leave.Date
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, parseDate(d))
	}
	return dates, rows.Err()
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (s *Store) UpsertSnapshot(ctx context.Context, snap leave.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertSnapshot(ctx, s.db, snap)
}

func upsertSnapshot(ctx context.Context, q queryer, snap leave.BalanceSnapshot) error {
	query := `
		INSERT INTO balance_snapshots
			(id, employee_id, balance_date, starting_amounts, allocated_amounts,
			 used_amounts, ending_amounts, allocation_ref, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, balance_date) DO UPDATE SET
			starting_amounts = excluded.starting_amounts,
			allocated_amounts = excluded.allocated_amounts,
			used_amounts = excluded.used_amounts,
			ending_amounts = excluded.ending_amounts,
			allocation_ref = excluded.allocation_ref,
			note = excluded.note,
			updated_at = excluded.updated_at
	`
	_, err := q.ExecContext(ctx, query,
		snap.ID, string(snap.EmployeeID), snap.BalanceDate.String(),
		encodeBalances(snap.Starting), encodeBalances(snap.Allocated),
		encodeBalances(snap.Used), encodeBalances(snap.Ending),
		snap.AllocationRef, snap.Note,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetSnapshot(ctx context.Context, emp leave.EmployeeID, date leave.Date) (*leave.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSnapshot(ctx, s.db, emp, date)
}

func getSnapshot(ctx context.Context, q queryer, emp leave.EmployeeID, date leave.Date) (*leave.BalanceSnapshot, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, employee_id, balance_date, starting_amounts, allocated_amounts,
		       used_amounts, ending_amounts, allocation_ref, note
		FROM balance_snapshots WHERE employee_id = ? AND balance_date = ?
	`, string(emp), date.String())

	var snap leave.BalanceSnapshot
	var empID, balanceDate string
	var starting, allocated, used, ending string
	err := row.Scan(&snap.ID, &empID, &balanceDate, &starting, &allocated, &used, &ending,
		&snap.AllocationRef, &snap.Note)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap.EmployeeID = leave.EmployeeID(empID)
	snap.BalanceDate = parseDate(balanceDate)
	snap.Starting = decodeBalances(starting)
	snap.Allocated = decodeBalances(allocated)
	snap.Used = decodeBalances(used)
	snap.Ending = decodeBalances(ending)
	return &snap, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn against a transactional store view. Writes are atomic;
// a returned error rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(st leave.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every operation through the transaction so reads inside
// WithTx observe the view's own uncommitted writes.
type txStore struct {
	tx *sql.Tx
}

var _ leave.Stores = (*txStore)(nil)

func (ts *txStore) ListPeriods(ctx context.Context) ([]leave.PeriodWindow, error) {
	return listPeriods(ctx, ts.tx)
}

func (ts *txStore) GetPeriod(ctx context.Context, id string) (*leave.PeriodWindow, error) {
	return getPeriod(ctx, ts.tx, id)
}

func (ts *txStore) MarkActive(ctx context.Context, id string) error {
	return markActive(ctx, ts.tx, id)
}

func (ts *txStore) ListProfiles(ctx context.Context) ([]leave.Profile, error) {
	return listProfiles(ctx, ts.tx)
}

func (ts *txStore) GetProfile(ctx context.Context, id leave.EmployeeID) (*leave.Profile, error) {
	return getProfile(ctx, ts.tx, id)
}

func (ts *txStore) ListTypes(ctx context.Context) ([]leave.LeaveType, error) {
	return listTypes(ctx, ts.tx)
}

func (ts *txStore) ListHolidays(ctx context.Context) ([]leave.Date, error) {
	return listHolidays(ctx, ts.tx)
}

func (ts *txStore) AllocationsForPeriods(ctx context.Context, ids []string) ([]leave.Allocation, error) {
	return allocationsForPeriods(ctx, ts.tx, ids)
}

func (ts *txStore) UpsertAllocation(ctx context.Context, a leave.Allocation) error {
	return upsertAllocation(ctx, ts.tx, a)
}

func (ts *txStore) ApprovedEntries(ctx context.Context, from, to leave.Date) ([]leave.Entry, error) {
	return approvedEntries(ctx, ts.tx, from, to)
}

func (ts *txStore) UpsertSnapshot(ctx context.Context, snap leave.BalanceSnapshot) error {
	return upsertSnapshot(ctx, ts.tx, snap)
}

func (ts *txStore) GetSnapshot(ctx context.Context, emp leave.EmployeeID, date leave.Date) (*leave.BalanceSnapshot, error) {
	return getSnapshot(ctx, ts.tx, emp, date)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) leave.Date {
	d, err := leave.ParseDate(s)
	if err != nil {
		return leave.Date{}
	}
	return d
}

func nullDate(d *leave.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// firstDate returns the first candidate column that parses as a date.
func firstDate(candidates ...sql.NullString) *leave.Date {
	for _, c := range candidates {
		if !c.Valid || c.String == "" {
			continue
		}
		d, err := leave.ParseDate(c.String)
		if err != nil {
			continue
		}
		return &d
	}
	return nil
}

func balanceOf(m map[leave.Code]decimal.Decimal, code leave.Code) string {
	if m == nil {
		return "0"
	}
	return m[code].String()
}

// encodeBalances serializes a per-code balance map as CODE=value pairs in
// tracked-code order, e.g. "EL=12,CL=0.5,SL=6,VAC=0".
func encodeBalances(m map[leave.Code]decimal.Decimal) string {
	codes := leave.DefaultTrackedCodes()
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		v := decimal.Zero
		if m != nil {
			v = m[c]
		}
		parts = append(parts, string(c)+"="+v.String())
	}
	return strings.Join(parts, ",")
}

func decodeBalances(s string) map[leave.Code]decimal.Decimal {
	out := make(map[leave.Code]decimal.Decimal)
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[leave.Code(kv[0])] = parseDecimal(kv[1])
	}
	return out
}
