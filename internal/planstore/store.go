package planstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/handoff"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// ErrNotFound is returned when the store holds no plan.
var ErrNotFound = errors.New("no recorded plan")

// Record is one stored resolution.
type Record struct {
	ID          string
	Fingerprint string
	Policy      string
	CreatedAt   time.Time
	// Previous is the ID of the plan that was latest before this one, if any.
	Previous string
	// Superseded reports whether this plan replaced a previous plan with
	// different values.
	Superseded bool
	Document   handoff.Document
}

// Store persists plans in SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.StorageError("open plan store").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.StorageError("initialize plan store schema").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plans (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		fingerprint TEXT NOT NULL,
		policy TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		previous TEXT NOT NULL DEFAULT '',
		superseded INTEGER NOT NULL DEFAULT 0,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_plans_fingerprint ON plans(fingerprint);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores plan as the new latest resolution.
func (s *Store) Record(ctx context.Context, plan resolver.BuildPlan) (Record, error) {
	if plan.IsZero() {
		return Record{}, ferrors.InternalError("cannot record an unresolved plan").Build()
	}
	doc := handoff.NewDocument(plan)
	payload, err := json.Marshal(doc)
	if err != nil {
		return Record{}, ferrors.WrapError(err, ferrors.CategoryInternal, "marshal plan document").Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, storageError(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	rec := Record{
		ID:          uuid.NewString(),
		Fingerprint: doc.Fingerprint,
		Policy:      doc.Policy,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		Document:    doc,
	}

	var prevFingerprint string
	err = tx.QueryRowContext(ctx, "SELECT id, fingerprint FROM plans ORDER BY seq DESC LIMIT 1").
		Scan(&rec.Previous, &prevFingerprint)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Record{}, storageError(err, "query latest plan")
	default:
		rec.Superseded = prevFingerprint != rec.Fingerprint
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO plans (id, fingerprint, policy, created_at, previous, superseded, payload) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Fingerprint, rec.Policy, rec.CreatedAt.UnixMilli(), rec.Previous, rec.Superseded, payload,
	)
	if err != nil {
		return Record{}, storageError(err, "insert plan")
	}
	if err := tx.Commit(); err != nil {
		return Record{}, storageError(err, "commit plan")
	}
	return rec, nil
}

// Latest returns the most recently recorded plan, or ErrNotFound.
func (s *Store) Latest(ctx context.Context) (Record, error) {
	records, err := s.History(ctx, 1)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}

// Get returns the plan recorded under id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectPlans+" WHERE id = ?", id)
	if err != nil {
		return Record{}, storageError(err, "query plan")
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}

// History returns up to limit plans, newest first. A limit <= 0 returns all.
func (s *Store) History(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectPlans + " ORDER BY seq DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(err, "query plans")
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectPlans = "SELECT id, fingerprint, policy, created_at, previous, superseded, payload FROM plans"

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt int64
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Fingerprint, &rec.Policy, &createdAt, &rec.Previous, &rec.Superseded, &payload); err != nil {
			return nil, storageError(err, "scan plan")
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		doc, err := handoff.Decode(payload)
		if err != nil {
			return nil, storageError(err, fmt.Sprintf("decode plan %s", rec.ID))
		}
		rec.Document = doc
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "iterate plans")
	}
	return records, nil
}

func storageError(err error, op string) error {
	return ferrors.StorageError(op).WithCause(err).Build()
}
