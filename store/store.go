// Package store keeps compiled wire templates in SQLite. Templates are
// stored as canonical CBOR under their name and content hash, so a project
// can be rendered without re-reading its sources.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/trellis/compiler/hash"
	"github.com/chazu/trellis/wire"
)

var log = commonlog.GetLogger("trellis.store")

// ErrTemplateNotFound indicates the requested template doesn't exist.
var ErrTemplateNotFound = errors.New("store: template not found")

// Kind distinguishes entry templates from component layouts.
type Kind string

const (
	KindTemplate  Kind = "template"
	KindComponent Kind = "component"
)

// Entry describes one stored template.
type Entry struct {
	Name      string
	Kind      Kind
	Hash      string
	UpdatedAt time.Time
}

// Store is a SQLite-backed template store.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the store at path. ":memory:" opens a private
// in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(err, "store: creating directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "store: opening database")
	}
	// An in-memory database lives as long as its one connection.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: setting busy timeout")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS templates (
		name       TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		hash       TEXT NOT NULL,
		data       BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: creating table")
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS templates_hash ON templates (hash)"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: creating index")
	}

	log.Debugf("opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores t under name, replacing any previous version, and returns its
// content hash. changed reports whether the stored content differs from
// what was there before.
func (s *Store) Put(name string, kind Kind, t *wire.Template) (sum string, changed bool, err error) {
	data, err := wire.MarshalTemplate(t)
	if err != nil {
		return "", false, errors.Wrapf(err, "store: encoding %s", name)
	}
	sum = hash.Hex(t)

	s.mu.Lock()
	defer s.mu.Unlock()

	var previous string
	err = s.db.QueryRow("SELECT hash FROM templates WHERE name = ?", name).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", false, errors.Wrapf(err, "store: looking up %s", name)
	}
	if previous == sum {
		return sum, false, nil
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO templates (name, kind, hash, data, updated_at) VALUES (?, ?, ?, ?, ?)",
		name, string(kind), sum, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return "", false, errors.Wrapf(err, "store: saving %s", name)
	}
	log.Debugf("stored %s %s as %s", kind, name, sum[:12])
	return sum, true, nil
}

// Get loads the template stored under name.
func (s *Store) Get(name string) (*wire.Template, Entry, error) {
	return s.load("name", name)
}

// GetByHash loads a template by content hash.
func (s *Store) GetByHash(sum string) (*wire.Template, Entry, error) {
	return s.load("hash", sum)
}

func (s *Store) load(column, key string) (*wire.Template, Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		e       Entry
		kind    string
		data    []byte
		updated int64
	)
	err := s.db.QueryRow(
		"SELECT name, kind, hash, data, updated_at FROM templates WHERE "+column+" = ? LIMIT 1", key,
	).Scan(&e.Name, &kind, &e.Hash, &data, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, Entry{}, errors.Wrapf(ErrTemplateNotFound, "%s %q", column, key)
		}
		return nil, Entry{}, errors.Wrap(err, "store: querying template")
	}
	e.Kind = Kind(kind)
	e.UpdatedAt = time.UnixMilli(updated)

	t, err := wire.UnmarshalTemplate(data)
	if err != nil {
		return nil, Entry{}, errors.Wrapf(err, "store: decoding %s", e.Name)
	}
	return t, e, nil
}

// List returns every stored template, ordered by name.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT name, kind, hash, updated_at FROM templates ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "store: listing templates")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			kind    string
			updated int64
		)
		if err := rows.Scan(&e.Name, &kind, &e.Hash, &updated); err != nil {
			return nil, errors.Wrap(err, "store: scanning template")
		}
		e.Kind = Kind(kind)
		e.UpdatedAt = time.UnixMilli(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the template stored under name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM templates WHERE name = ?", name)
	if err != nil {
		return errors.Wrapf(err, "store: deleting %s", name)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrTemplateNotFound, "name %q", name)
	}
	return nil
}
