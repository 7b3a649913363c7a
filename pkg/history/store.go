// Package history persists completed conversation records. It is the
// collaborator that takes ownership of a record once the orchestrator's turn
// loop terminates; the core never mutates a record after handing it over.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dynamaic/assistant-core/pkg/record"
)

// ErrNotFound reports a lookup for an unknown record ID.
var ErrNotFound = errors.New("history: record not found")

// Store persists records in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history store: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		request TEXT NOT NULL,
		response_id TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS call_events (
		record_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		call_id TEXT NOT NULL,
		name TEXT NOT NULL,
		arguments TEXT NOT NULL DEFAULT '{}',
		output TEXT NOT NULL DEFAULT '',
		callback_kind TEXT NOT NULL DEFAULT '',
		callback_text TEXT NOT NULL DEFAULT '',
		callback_image BLOB,
		PRIMARY KEY (record_id, seq),
		FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_call_events_record ON call_events(record_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists a completed record and its call events. The record must not
// be mutated after Save returns.
func (s *Store) Save(ctx context.Context, rec *record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	answer, _ := rec.Answer()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (id, request, response_id, answer, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Request, rec.ResponseID(), answer, rec.ErrorMessage(), rec.CreatedAt); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	for seq, evt := range rec.Events() {
		args, err := json.Marshal(evt.Call.Arguments)
		if err != nil {
			return fmt.Errorf("encode call arguments: %w", err)
		}
		var (
			cbKind  string
			cbText  string
			cbImage []byte
		)
		if cb := evt.Callback; cb != nil {
			cbKind = string(cb.Kind)
			switch cb.Kind {
			case record.CallbackText:
				cbText = cb.Text
			case record.CallbackFunctionResult:
				if cb.Result != nil {
					cbText = cb.Result.Output
				}
			case record.CallbackImage:
				cbImage = cb.Image
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO call_events (record_id, seq, timestamp, call_id, name, arguments, output, callback_kind, callback_text, callback_image)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, seq, evt.Timestamp, evt.Call.CallID, evt.Call.Name,
			string(args), evt.Result.Output, cbKind, cbText, cbImage); err != nil {
			return fmt.Errorf("insert call event: %w", err)
		}
	}

	return tx.Commit()
}

// Summary is one listing row of stored history.
type Summary struct {
	ID        string
	Request   string
	Answer    string
	Error     string
	CreatedAt time.Time
	CallCount int
}

// List returns stored records newest first. If limit > 0, at most that many
// rows are returned.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	query := `
		SELECT r.id, r.request, r.answer, r.error, r.created_at,
		       (SELECT COUNT(1) FROM call_events e WHERE e.record_id = r.id)
		FROM records r ORDER BY r.created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Request, &sum.Answer, &sum.Error, &sum.CreatedAt, &sum.CallCount); err != nil {
			return nil, err
		}
		all = append(all, sum)
	}
	return all, rows.Err()
}

// CallEvent is the stored form of one function-call trace entry.
type CallEvent struct {
	Timestamp    time.Time
	CallID       string
	Name         string
	Arguments    map[string]string
	Output       string
	CallbackKind string
	CallbackText string
	CallbackSize int
}

// Get loads one record summary with its full call trace.
func (s *Store) Get(ctx context.Context, id string) (*Summary, []CallEvent, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT id, request, answer, error, created_at FROM records WHERE id = ?`, id).
		Scan(&sum.ID, &sum.Request, &sum.Answer, &sum.Error, &sum.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, call_id, name, arguments, output, callback_kind, callback_text,
		       COALESCE(LENGTH(callback_image), 0)
		FROM call_events WHERE record_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var events []CallEvent
	for rows.Next() {
		var (
			evt     CallEvent
			rawArgs string
		)
		if err := rows.Scan(&evt.Timestamp, &evt.CallID, &evt.Name, &rawArgs,
			&evt.Output, &evt.CallbackKind, &evt.CallbackText, &evt.CallbackSize); err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal([]byte(rawArgs), &evt.Arguments); err != nil {
			return nil, nil, fmt.Errorf("decode stored arguments: %w", err)
		}
		events = append(events, evt)
	}
	sum.CallCount = len(events)
	return &sum, events, rows.Err()
}
