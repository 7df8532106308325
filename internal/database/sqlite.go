package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fic-go/internal/fic"
	"fic-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Schema mirrors the embedded migrations and is applied directly by
// test helpers that want a throwaway in-memory store without running
// the migration machinery.
const Schema = `
CREATE TABLE records (
    identity        TEXT PRIMARY KEY,
    digest          TEXT NOT NULL,
    algorithm       TEXT NOT NULL DEFAULT 'sha256',
    size_bytes      INTEGER NOT NULL CHECK (size_bytes >= 0),
    added_at        TIMESTAMP NOT NULL,
    last_checked_at TIMESTAMP NOT NULL,
    status          TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    check_count     INTEGER NOT NULL CHECK (check_count >= 0)
);
CREATE TABLE check_operations (
    id          TEXT PRIMARY KEY,
    operation   TEXT NOT NULL,
    parameters  TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    status      TEXT NOT NULL DEFAULT 'success'
);
`

// SQLiteStore implements fic.RecordStore on SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens a SQLite record store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the store relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys default to OFF in SQLite for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Single connection: the store is single-writer, and an extra pooled
	// connection to a ":memory:" path would see a different database.
	db.SetMaxOpenConns(1)

	return db, nil
}

const recordColumns = "identity, digest, algorithm, size_bytes, added_at, last_checked_at, status, description, check_count"

func scanRecord(row interface{ Scan(...any) error }) (*model.Record, error) {
	var rec model.Record
	var status string
	err := row.Scan(
		&rec.Identity,
		&rec.Digest,
		&rec.Algorithm,
		&rec.SizeBytes,
		&rec.AddedAt,
		&rec.LastCheckedAt,
		&status,
		&rec.Description,
		&rec.CheckCount,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = model.ParseStatus(status)
	return &rec, nil
}

func (s *SQLiteStore) Get(identity string) (*model.Record, error) {
	row := s.db.QueryRow("SELECT "+recordColumns+" FROM records WHERE identity = ?", identity)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not tracked
		}
		return nil, fmt.Errorf("finding record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Put(record *model.Record) error {
	if err := putRecord(s.db, record); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	return nil
}

// execer covers *sql.DB and *sql.Tx so the insert is reused inside transactions.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func putRecord(e execer, r *model.Record) error {
	_, err := e.Exec(
		`INSERT OR REPLACE INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Identity,
		r.Digest,
		r.Algorithm,
		r.SizeBytes,
		r.AddedAt.UTC(),
		r.LastCheckedAt.UTC(),
		string(r.Status),
		r.Description,
		r.CheckCount,
	)
	return err
}

func (s *SQLiteStore) Delete(identity string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM records WHERE identity = ?", identity)
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) List() ([]*model.Record, error) {
	rows, err := s.db.Query("SELECT " + recordColumns + " FROM records ORDER BY identity")
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) ReplaceAll(records []*model.Record) error {
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM records"); err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}
		for _, r := range records {
			if err := putRecord(tx, r); err != nil {
				return fmt.Errorf("inserting record %s: %w", r.Identity, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) MergeAll(records []*model.Record) error {
	return s.inTx(func(tx *sql.Tx) error {
		for _, r := range records {
			if err := putRecord(tx, r); err != nil {
				return fmt.Errorf("upserting record %s: %w", r.Identity, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CheckOperation history

func (s *SQLiteStore) CreateOperation(op *model.CheckOperation) error {
	_, err := s.db.Exec(
		`INSERT INTO check_operations (id, operation, parameters, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		op.ID, op.Operation, op.Parameters, op.StartedAt.UTC(), op.Status,
	)
	if err != nil {
		return fmt.Errorf("creating operation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishOperation(id string, finishedAt time.Time, status string) error {
	res, err := s.db.Exec(
		"UPDATE check_operations SET finished_at = ?, status = ? WHERE id = ?",
		finishedAt.UTC(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing operation: no operation with id %s", id)
	}
	return nil
}

func (s *SQLiteStore) ListOperations(limit int) ([]*model.CheckOperation, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, started_at, finished_at, status
		 FROM check_operations ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.CheckOperation
	for rows.Next() {
		var op model.CheckOperation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &finished, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			op.FinishedAt = finished.Time
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteStore implements fic.RecordStore.
var _ fic.RecordStore = (*SQLiteStore)(nil)
