// Package container implements the named, typed key/value stores the
// assistant exposes to the model as persistent local storage. Two kinds
// exist: a single-value container and an ordered multi-entry container.
package container

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Container kinds as advertised to the model.
const (
	KindSingle   = "single"
	KindMultiple = "multiple/array"
)

var (
	ErrNotFound     = errors.New("there is no container with this key")
	ErrDuplicate    = errors.New("a container already exists with this key")
	ErrKindMismatch = errors.New("a container was found, but its kind does not match that requested")
	ErrInvalidKind  = errors.New("invalid container kind (single vs. multiple/array) given")
)

// Details is the listing entry served to the model so it can decide which
// container to fetch.
type Details struct {
	Key         string `json:"key"`
	Description string `json:"container_description"`
	Kind        string `json:"type"`
}

// Entry is one element of a multiple/array container.
type Entry struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Data string `json:"data"`
}

// Container is the fully-loaded form returned by Get.
type Container struct {
	Details
	// Value is set for single containers.
	Value string `json:"value,omitempty"`
	// Entries is set for multiple/array containers, ordered by entry ID.
	Entries []Entry `json:"entries,omitempty"`
}

// preferencesKey names the auto-provisioned container holding user
// preferences.
const preferencesKey = "user-preferences"

const preferencesDescription = "A system-created container that contains user preferences. " +
	"This includes which endpoints can be authenticated, and other settings to which the user has direct control."

// Store persists containers in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the container database at path and runs
// migrations. The user-preferences container is provisioned on first open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open container store: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate container store: %w", err)
	}
	if err := s.ensurePreferences(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS containers (
		key TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS container_entries (
		container_key TEXT NOT NULL,
		id INTEGER NOT NULL,
		key TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (container_key, id),
		FOREIGN KEY (container_key) REFERENCES containers(key) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) ensurePreferences() error {
	err := s.Create(context.Background(), KindMultiple, preferencesKey, preferencesDescription)
	if err != nil && !errors.Is(err, ErrDuplicate) {
		return err
	}
	return nil
}

// List returns the details of every container, ordered by key.
func (s *Store) List(ctx context.Context) ([]Details, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, description, kind FROM containers ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Details
	for rows.Next() {
		var d Details
		if err := rows.Scan(&d.Key, &d.Description, &d.Kind); err != nil {
			return nil, err
		}
		all = append(all, d)
	}
	return all, rows.Err()
}

// Create provisions a new container of the given kind. The key must be
// unused.
func (s *Store) Create(ctx context.Context, kind, key, description string) error {
	if kind != KindSingle && kind != KindMultiple {
		return ErrInvalidKind
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO containers (key, description, kind) VALUES (?, ?, ?)`,
		key, description, kind)
	if err != nil {
		var exists int
		if scanErr := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM containers WHERE key = ?`, key).Scan(&exists); scanErr == nil && exists > 0 {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Get loads a container by key. The kind must match the stored container.
func (s *Store) Get(ctx context.Context, key, kind string) (*Container, error) {
	var c Container
	err := s.db.QueryRowContext(ctx,
		`SELECT key, description, kind, value FROM containers WHERE key = ?`, key).
		Scan(&c.Key, &c.Description, &c.Kind, &c.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if kind != "" && c.Kind != kind {
		return nil, ErrKindMismatch
	}
	if c.Kind == KindMultiple {
		c.Value = ""
		entries, err := s.entries(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Entries = entries
	}
	return &c, nil
}

func (s *Store) entries(ctx context.Context, key string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, data FROM container_entries WHERE container_key = ? ORDER BY id`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Key, &e.Data); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetValue replaces the value of a single container.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	c, err := s.Get(ctx, key, KindSingle)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE containers SET value = ? WHERE key = ?`, value, c.Key)
	return err
}

// Append adds an entry to a multiple/array container, assigning the next
// entry ID.
func (s *Store) Append(ctx context.Context, containerKey, entryKey, data string) error {
	if _, err := s.Get(ctx, containerKey, KindMultiple); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO container_entries (container_key, id, key, data)
		VALUES (?, (SELECT COALESCE(MAX(id), -1) + 1 FROM container_entries WHERE container_key = ?), ?, ?)`,
		containerKey, containerKey, entryKey, data)
	return err
}

// Dump serializes every container with its contents to JSON. The
// fetch-local-storage tool returns this to the model verbatim.
func (s *Store) Dump(ctx context.Context) (string, error) {
	details, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	all := make([]*Container, 0, len(details))
	for _, d := range details {
		c, err := s.Get(ctx, d.Key, d.Kind)
		if err != nil {
			return "", err
		}
		all = append(all, c)
	}
	out, err := json.Marshal(all)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
