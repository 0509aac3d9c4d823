/*
Package sqlite provides a SQLite-backed implementation of the engine
storage interfaces.

PURPOSE:
  Implements engine.AssetStore, engine.EventStore, engine.RequestStore,
  engine.UserDirectory, and engine.LocationDirectory on SQLite. The same
  patterns apply to PostgreSQL with minor dialect differences.

APPEND-ONLY ENFORCEMENT:
  The events table never sees an UPDATE or DELETE statement. History is
  corrected by appending compensating events only.

KEY TABLES:
  assets:    Mutable current-state projection per asset
  events:    Immutable ledger of all custody/state changes
  requests:  Asset request workflow records
  users:     External-directory mirror (id, role, active flag)
  locations: Weak-reference lookup targets

WAL MODE:
  SQLite is opened with WAL for better read concurrency and crash
  recovery. Foreign keys are enabled so events cannot reference a
  missing asset.

USAGE:
  store, err := sqlite.New("./data/assets.db")
  defer store.Close()
  ledger := engine.NewLedger(store, store)

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fleetline/asset-engine/engine"
)

// Store implements all engine storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_tag TEXT NOT NULL UNIQUE,
		asset_type TEXT NOT NULL,
		category TEXT,
		manufacturer TEXT,
		model TEXT,
		serial_number TEXT,
		condition TEXT,
		warranty_start TEXT,
		warranty_end TEXT,
		warranty_extended_months INTEGER NOT NULL DEFAULT 0,
		location_id TEXT,
		assigned_to TEXT,
		subscription TEXT,
		purchase_date TEXT,
		renewal_date TEXT,
		seats_total INTEGER,
		status TEXT NOT NULL,
		notes TEXT,
		purchase_cost TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assets_type_status ON assets(asset_type, status);
	CREATE INDEX IF NOT EXISTS idx_assets_assigned_to ON assets(assigned_to)
		WHERE assigned_to IS NOT NULL;

	-- Append-only ledger. No UPDATE, no DELETE, ever.
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		asset_id INTEGER NOT NULL REFERENCES assets(id),
		event_type TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		from_user_id TEXT,
		to_user_id TEXT,
		from_location_id TEXT,
		to_location_id TEXT,
		actor_id TEXT NOT NULL,
		notes TEXT,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_events_asset_time ON events(asset_id, timestamp, seq);

	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_type TEXT NOT NULL,
		asset_type_requested TEXT NOT NULL,
		description TEXT NOT NULL,
		requester_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		resolved_by TEXT,
		resolution_notes TEXT,
		asset_id INTEGER,
		created_at TEXT NOT NULL,
		resolved_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TIME / NULL HELPERS
// =============================================================================

const dateTimeFormat = time.RFC3339Nano

func fmtTime(t time.Time) string { return t.UTC().Format(dateTimeFormat) }

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(dateTimeFormat, s)
	if err != nil {
		// Dates imported without a time component.
		t, err = time.Parse("2006-01-02", s)
	}
	return t, err
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func strPtr[T ~string](ns sql.NullString) *T {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	v := T(ns.String)
	return &v
}

func ptrVal[T ~string](p *T) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

// =============================================================================
// ASSET STORE
// =============================================================================

func (s *Store) CreateAsset(ctx context.Context, a *engine.Asset) error {
	var cost any
	if a.PurchaseCost != nil {
		cost = a.PurchaseCost.String()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (
			asset_tag, asset_type, category, manufacturer, model, serial_number,
			condition, warranty_start, warranty_end, warranty_extended_months,
			location_id, assigned_to, subscription, purchase_date, renewal_date,
			seats_total, status, notes, purchase_cost, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.AssetTag, string(a.Type), string(a.Category), a.Manufacturer, a.Model,
		a.SerialNumber, string(a.Condition), fmtTimePtr(a.WarrantyStart),
		fmtTimePtr(a.WarrantyEnd), a.WarrantyExtendedMonths,
		ptrVal(a.LocationID), ptrVal(a.AssignedTo), a.Subscription,
		fmtTimePtr(a.PurchaseDate), fmtTimePtr(a.RenewalDate),
		a.SeatsTotal, string(a.Status), a.Notes, cost,
		fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = engine.AssetID(id)
	return nil
}

const assetColumns = `
	id, asset_tag, asset_type, category, manufacturer, model, serial_number,
	condition, warranty_start, warranty_end, warranty_extended_months,
	location_id, assigned_to, subscription, purchase_date, renewal_date,
	seats_total, status, notes, purchase_cost, created_at, updated_at`

func (s *Store) scanAsset(row interface{ Scan(...any) error }) (*engine.Asset, error) {
	var (
		a                                 engine.Asset
		category, condition               sql.NullString
		warrantyStart, warrantyEnd        sql.NullString
		locationID, assignedTo            sql.NullString
		purchaseDate, renewalDate         sql.NullString
		seatsTotal                        sql.NullInt64
		notes, cost, createdAt, updatedAt sql.NullString
		manufacturer, model, serial, sub  sql.NullString
	)

	err := row.Scan(
		&a.ID, &a.AssetTag, &a.Type, &category, &manufacturer, &model, &serial,
		&condition, &warrantyStart, &warrantyEnd, &a.WarrantyExtendedMonths,
		&locationID, &assignedTo, &sub, &purchaseDate, &renewalDate,
		&seatsTotal, &a.Status, &notes, &cost, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Category = engine.Category(category.String)
	a.Manufacturer = manufacturer.String
	a.Model = model.String
	a.SerialNumber = serial.String
	a.Condition = engine.Condition(condition.String)
	a.Subscription = sub.String
	a.Notes = notes.String
	a.LocationID = strPtr[engine.LocationID](locationID)
	a.AssignedTo = strPtr[engine.UserID](assignedTo)

	if a.WarrantyStart, err = parseTimePtr(warrantyStart); err != nil {
		return nil, err
	}
	if a.WarrantyEnd, err = parseTimePtr(warrantyEnd); err != nil {
		return nil, err
	}
	if a.PurchaseDate, err = parseTimePtr(purchaseDate); err != nil {
		return nil, err
	}
	if a.RenewalDate, err = parseTimePtr(renewalDate); err != nil {
		return nil, err
	}
	if seatsTotal.Valid {
		n := int(seatsTotal.Int64)
		a.SeatsTotal = &n
	}
	if cost.Valid && cost.String != "" {
		d, err := decimal.NewFromString(cost.String)
		if err != nil {
			return nil, fmt.Errorf("bad purchase_cost %q: %w", cost.String, err)
		}
		a.PurchaseCost = &d
	}
	if createdAt.Valid {
		if a.CreatedAt, err = parseTime(createdAt.String); err != nil {
			return nil, err
		}
	}
	if updatedAt.Valid {
		if a.UpdatedAt, err = parseTime(updatedAt.String); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (s *Store) GetAsset(ctx context.Context, id engine.AssetID) (*engine.Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	a, err := s.scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "asset", ID: fmt.Sprint(id)}
	}
	return a, err
}

func (s *Store) GetAssetByTag(ctx context.Context, tag string) (*engine.Asset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE asset_tag = ?`, tag)
	a, err := s.scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (s *Store) UpdateAsset(ctx context.Context, a *engine.Asset) error {
	var cost any
	if a.PurchaseCost != nil {
		cost = a.PurchaseCost.String()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE assets SET
			asset_tag = ?, category = ?, manufacturer = ?, model = ?,
			serial_number = ?, condition = ?, warranty_start = ?, warranty_end = ?,
			warranty_extended_months = ?, location_id = ?, assigned_to = ?,
			subscription = ?, purchase_date = ?, renewal_date = ?, seats_total = ?,
			status = ?, notes = ?, purchase_cost = ?, updated_at = ?
		WHERE id = ?`,
		a.AssetTag, string(a.Category), a.Manufacturer, a.Model, a.SerialNumber,
		string(a.Condition), fmtTimePtr(a.WarrantyStart), fmtTimePtr(a.WarrantyEnd),
		a.WarrantyExtendedMonths, ptrVal(a.LocationID), ptrVal(a.AssignedTo),
		a.Subscription, fmtTimePtr(a.PurchaseDate), fmtTimePtr(a.RenewalDate),
		a.SeatsTotal, string(a.Status), a.Notes, cost, fmtTime(time.Now()),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &engine.NotFoundError{Kind: "asset", ID: fmt.Sprint(a.ID)}
	}
	return nil
}

func (s *Store) ListAssets(ctx context.Context, f engine.AssetFilter) ([]*engine.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE 1=1`
	var args []any
	if f.Type != "" {
		query += ` AND asset_type = ?`
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.AssignedTo != nil {
		query += ` AND assigned_to = ?`
		args = append(args, string(*f.AssignedTo))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.Asset
	for rows.Next() {
		a, err := s.scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// EVENT STORE - Append-only
// =============================================================================

func (s *Store) AppendEvent(ctx context.Context, e engine.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, asset_id, event_type, timestamp, from_user_id, to_user_id,
			from_location_id, to_location_id, actor_id, notes, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE asset_id = ?))`,
		e.ID, e.AssetID, string(e.Type), fmtTime(e.Timestamp),
		ptrVal(e.FromUserID), ptrVal(e.ToUserID),
		ptrVal(e.FromLocationID), ptrVal(e.ToLocationID),
		string(e.ActorID), e.Notes, e.AssetID,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *Store) EventsByAsset(ctx context.Context, id engine.AssetID) ([]engine.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, asset_id, event_type, timestamp, from_user_id, to_user_id,
		       from_location_id, to_location_id, actor_id, notes
		FROM events WHERE asset_id = ?
		ORDER BY timestamp, seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Event
	for rows.Next() {
		var (
			e                        engine.Event
			ts                       string
			fromUser, toUser         sql.NullString
			fromLocation, toLocation sql.NullString
			notes                    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.AssetID, &e.Type, &ts, &fromUser, &toUser,
			&fromLocation, &toLocation, &e.ActorID, &notes); err != nil {
			return nil, err
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		e.FromUserID = strPtr[engine.UserID](fromUser)
		e.ToUserID = strPtr[engine.UserID](toUser)
		e.FromLocationID = strPtr[engine.LocationID](fromLocation)
		e.ToLocationID = strPtr[engine.LocationID](toLocation)
		e.Notes = notes.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) CreateRequest(ctx context.Context, r *engine.AssetRequest) error {
	var assetID any
	if r.AssetID != nil {
		assetID = int64(*r.AssetID)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (
			request_type, asset_type_requested, description, requester_id,
			status, resolved_by, resolution_notes, asset_id, created_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RequestType, string(r.AssetTypeRequested), r.Description,
		string(r.RequesterID), string(r.Status), ptrVal(r.ResolvedByID),
		r.ResolutionNotes, assetID, fmtTime(r.CreatedAt), fmtTimePtr(r.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = engine.RequestID(id)
	return nil
}

const requestColumns = `
	id, request_type, asset_type_requested, description, requester_id,
	status, resolved_by, resolution_notes, asset_id, created_at, resolved_at`

func (s *Store) scanRequest(row interface{ Scan(...any) error }) (*engine.AssetRequest, error) {
	var (
		r                          engine.AssetRequest
		resolvedBy, resolutionNote sql.NullString
		assetID                    sql.NullInt64
		createdAt                  string
		resolvedAt                 sql.NullString
	)
	err := row.Scan(&r.ID, &r.RequestType, &r.AssetTypeRequested, &r.Description,
		&r.RequesterID, &r.Status, &resolvedBy, &resolutionNote, &assetID,
		&createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	r.ResolvedByID = strPtr[engine.UserID](resolvedBy)
	r.ResolutionNotes = resolutionNote.String
	if assetID.Valid {
		id := engine.AssetID(assetID.Int64)
		r.AssetID = &id
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.ResolvedAt, err = parseTimePtr(resolvedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) GetRequest(ctx context.Context, id engine.RequestID) (*engine.AssetRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id)
	r, err := s.scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "request", ID: fmt.Sprint(id)}
	}
	return r, err
}

func (s *Store) UpdateRequest(ctx context.Context, r *engine.AssetRequest) error {
	var assetID any
	if r.AssetID != nil {
		assetID = int64(*r.AssetID)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests SET
			status = ?, resolved_by = ?, resolution_notes = ?, asset_id = ?, resolved_at = ?
		WHERE id = ?`,
		string(r.Status), ptrVal(r.ResolvedByID), r.ResolutionNotes,
		assetID, fmtTimePtr(r.ResolvedAt), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &engine.NotFoundError{Kind: "request", ID: fmt.Sprint(r.ID)}
	}
	return nil
}

func (s *Store) ListRequests(ctx context.Context, status engine.RequestStatus) ([]*engine.AssetRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.AssetRequest
	for rows.Next() {
		r, err := s.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// DIRECTORIES
// =============================================================================

func (s *Store) SaveUser(ctx context.Context, u engine.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, email = excluded.email,
			role = excluded.role, is_active = excluded.is_active`,
		string(u.ID), u.Name, u.Email, string(u.Role), u.IsActive,
	)
	return err
}

func (s *Store) GetUser(ctx context.Context, id engine.UserID) (*engine.User, error) {
	var u engine.User
	var email sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, is_active FROM users WHERE id = ?`, string(id)).
		Scan(&u.ID, &u.Name, &email, &u.Role, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "user", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*engine.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, role, is_active FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*engine.User
	for rows.Next() {
		var u engine.User
		var email sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &email, &u.Role, &u.IsActive); err != nil {
			return nil, err
		}
		u.Email = email.String
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (s *Store) SaveLocation(ctx context.Context, l engine.Location) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		string(l.ID), l.Name,
	)
	return err
}

func (s *Store) GetLocation(ctx context.Context, id engine.LocationID) (*engine.Location, error) {
	var l engine.Location
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM locations WHERE id = ?`, string(id)).
		Scan(&l.ID, &l.Name)
	if err == sql.ErrNoRows {
		return nil, &engine.NotFoundError{Kind: "location", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Compile-time interface checks
var (
	_ engine.AssetStore        = (*Store)(nil)
	_ engine.EventStore        = (*Store)(nil)
	_ engine.RequestStore      = (*Store)(nil)
	_ engine.UserDirectory     = (*Store)(nil)
	_ engine.LocationDirectory = (*Store)(nil)
)
