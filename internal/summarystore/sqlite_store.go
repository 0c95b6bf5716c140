package summarystore

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/localrivet/polysum/internal/errortypes"
	"github.com/localrivet/polysum/internal/util"
)

// SQLiteStore is an implementation of Store that uses SQLite. A single
// connection is shared, so every call holds the mutex.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string
	now    func() time.Time
	mu     sync.Mutex
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// Initialize opens the database and creates the schema.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open SQLite database").WithField("path", dbPath)
	}
	s.conn = conn

	if err := s.createSchema(); err != nil {
		s.conn.Close()
		s.conn = nil
		return errortypes.DatabaseError(err, "failed to create schema")
	}

	return nil
}

// createSchema creates the summaries table and its owner index.
func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS summaries (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			source_label TEXT NOT NULL,
			summary_text TEXT NOT NULL,
			source_language TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_owner_created
			ON summaries (owner_id, created_at DESC);`,
	}

	for _, sql := range statements {
		stmt, err := s.conn.Prepare(sql)
		if err != nil {
			return fmt.Errorf("failed to prepare schema statement: %w", err)
		}
		_, err = stmt.Step()
		stmt.Reset()
		if err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *SQLiteStore) ready() error {
	if s.conn == nil {
		return errortypes.DatabaseError(fmt.Errorf("store is not initialized"), "summary store unavailable")
	}
	return nil
}

// Save stores rec. An empty ID is derived from the summary and timestamp.
func (s *SQLiteStore) Save(rec *Record) error {
	if rec == nil {
		return errortypes.ValidationError(fmt.Errorf("nil record"), "record is required")
	}
	if strings.TrimSpace(rec.OwnerID) == "" {
		return errortypes.ValidationError(fmt.Errorf("empty owner id"), "owner id is required")
	}
	if rec.SourceLabel == "" {
		rec.SourceLabel = PastedTextLabel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.ID == "" {
		rec.ID = util.GenerateHash(rec.OwnerID+"\x00"+rec.SourceLabel+"\x00"+rec.SummaryText, rec.CreatedAt.UnixNano())
	}

	stmt, err := s.conn.Prepare(`
	INSERT OR REPLACE INTO summaries (id, owner_id, source_label, summary_text, source_language, created_at)
	VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare insert statement")
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, rec.ID)
	stmt.BindText(2, rec.OwnerID)
	stmt.BindText(3, rec.SourceLabel)
	stmt.BindText(4, rec.SummaryText)
	stmt.BindText(5, rec.SourceLanguage)
	stmt.BindInt64(6, rec.CreatedAt.UnixNano())

	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to insert summary").WithField("id", rec.ID)
	}

	return nil
}

// List returns the owner's records, newest first.
func (s *SQLiteStore) List(ownerID string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	stmt, err := s.conn.Prepare(`
	SELECT id, owner_id, source_label, summary_text, source_language, created_at
	FROM summaries WHERE owner_id = ?
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?;`)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, ownerID)
	stmt.BindInt64(2, int64(limit))

	records := []Record{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, errortypes.DatabaseError(err, "failed to list summaries")
		}
		if !hasRow {
			break
		}
		records = append(records, scanRecord(stmt))
	}

	return records, nil
}

// Get returns the record with id if it belongs to ownerID.
func (s *SQLiteStore) Get(id, ownerID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return Record{}, err
	}

	stmt, err := s.conn.Prepare(`
	SELECT id, owner_id, source_label, summary_text, source_language, created_at
	FROM summaries WHERE id = ? AND owner_id = ?;`)
	if err != nil {
		return Record{}, errortypes.DatabaseError(err, "failed to prepare select statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, id)
	stmt.BindText(2, ownerID)

	hasRow, err := stmt.Step()
	if err != nil {
		return Record{}, errortypes.DatabaseError(err, "failed to read summary").WithField("id", id)
	}
	if !hasRow {
		return Record{}, ErrNotFound
	}
	return scanRecord(stmt), nil
}

// Delete removes the record with id if it belongs to ownerID.
func (s *SQLiteStore) Delete(id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}

	stmt, err := s.conn.Prepare(`DELETE FROM summaries WHERE id = ? AND owner_id = ?;`)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to prepare delete statement")
	}
	defer stmt.Reset()

	stmt.BindText(1, id)
	stmt.BindText(2, ownerID)

	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to delete summary").WithField("id", id)
	}
	if s.conn.Changes() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanRecord reads the current row. Column indices are 0-based.
func scanRecord(stmt *sqlite.Stmt) Record {
	return Record{
		ID:             stmt.ColumnText(0),
		OwnerID:        stmt.ColumnText(1),
		SourceLabel:    stmt.ColumnText(2),
		SummaryText:    stmt.ColumnText(3),
		SourceLanguage: stmt.ColumnText(4),
		CreatedAt:      time.Unix(0, stmt.ColumnInt64(5)),
	}
}
