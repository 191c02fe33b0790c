// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists terminal research runs to SQLite so past
// reports and conversation logs can be listed and replayed. Only
// finished states are stored; in-flight state never touches disk.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jwmatthews/deep-research-agent/pkg/types"
)

const dbFile = "research-agent.db"

// Store manages the session history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at dataDir/research-agent.db
// and creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			phase TEXT NOT NULL,
			failure TEXT,
			cancelled INTEGER NOT NULL DEFAULT 0,
			retry_count INTEGER NOT NULL DEFAULT 0,
			report TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exchanges (
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			seq INTEGER NOT NULL,
			node TEXT NOT NULL,
			content TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Session is one stored research run.
type Session struct {
	ID         int64
	Query      string
	Phase      types.Phase
	Failure    string
	Cancelled  bool
	RetryCount int
	Report     *types.Report
	CreatedAt  time.Time
}

// Save persists a terminal research state and its conversation log,
// returning the new session id. Non-terminal states are rejected.
func (s *Store) Save(ctx context.Context, state types.ResearchState) (int64, error) {
	if !state.Phase.Terminal() {
		return 0, fmt.Errorf("refusing to save non-terminal state in phase %q", state.Phase)
	}

	var reportJSON sql.NullString
	if state.Report != nil {
		data, err := json.Marshal(state.Report)
		if err != nil {
			return 0, fmt.Errorf("marshaling report: %w", err)
		}
		reportJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (query, phase, failure, cancelled, retry_count, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		state.Query, string(state.Phase), state.Failure, boolToInt(state.Cancelled),
		state.RetryCount, reportJSON, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading session id: %w", err)
	}

	for seq, ex := range state.ConversationLog {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exchanges (session_id, seq, node, content, at) VALUES (?, ?, ?, ?, ?)`,
			id, seq, ex.Node, ex.Content, ex.At.UTC().Format(time.RFC3339)); err != nil {
			return 0, fmt.Errorf("inserting exchange %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing session: %w", err)
	}
	return id, nil
}

// List returns up to limit sessions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, phase, failure, cancelled, retry_count, report, created_at
		 FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Get returns one session and its conversation log.
func (s *Store) Get(ctx context.Context, id int64) (Session, []types.Exchange, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, phase, failure, cancelled, retry_count, report, created_at
		 FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return Session{}, nil, fmt.Errorf("session %d not found", id)
	}
	if err != nil {
		return Session{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT node, content, at FROM exchanges WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return Session{}, nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	var log []types.Exchange
	for rows.Next() {
		var ex types.Exchange
		var at string
		if err := rows.Scan(&ex.Node, &ex.Content, &at); err != nil {
			return Session{}, nil, fmt.Errorf("scanning exchange: %w", err)
		}
		ex.At, _ = time.Parse(time.RFC3339, at)
		log = append(log, ex)
	}
	return sess, log, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess       Session
		phase      string
		failure    sql.NullString
		cancelled  int
		reportJSON sql.NullString
		createdAt  string
	)
	if err := row.Scan(&sess.ID, &sess.Query, &phase, &failure, &cancelled,
		&sess.RetryCount, &reportJSON, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scanning session: %w", err)
	}

	sess.Phase = types.Phase(phase)
	sess.Failure = failure.String
	sess.Cancelled = cancelled != 0
	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if reportJSON.Valid {
		var r types.Report
		if err := json.Unmarshal([]byte(reportJSON.String), &r); err != nil {
			return Session{}, fmt.Errorf("parsing stored report: %w", err)
		}
		sess.Report = &r
	}
	return sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
