// Package dbstore provides the single shared SQLite connection used by the
// snapshot and dependency-graph stores, following the teacher's
// store.Store pattern: one WAL-mode connection, explicit transactions, a
// Querier abstraction so callers can't tell whether they're inside one.
package dbstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB wraps the shared SQLite connection. A single physical file backs both
// the snapshot and dependency-graph tables per SPEC_FULL.md §4.2/§4.3 — one
// connection, not one handle per collection, so the dispatcher can query
// across projects without juggling N open files.
type DB struct {
	conn *sql.DB
	q    Querier
	path string
}

// DefaultPath returns ~/.cache/codeindexd/index.db (or $XDG_CACHE_HOME).
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "codeindexd")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir cache dir: %w", err)
	}
	return filepath.Join(dir, "index.db"), nil
}

// Open opens (creating if needed) the shared database at the default path.
func Open() (*DB, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens a database at an explicit path.
func OpenPath(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn, path: path}
	db.q = conn
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory database, for tests. Each pooled connection
// to ":memory:" is a separate SQLite database, so the pool is pinned to a
// single connection to make the one-database claim actually hold.
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	db := &DB{conn: conn, path: ":memory:"}
	db.q = conn
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Q returns the active Querier: the raw connection, or the enclosing
// transaction when called on a tx-scoped DB handed to WithTransaction's fn.
func (d *DB) Q() Querier { return d.q }

// Conn returns the underlying *sql.DB, for migrations/diagnostics.
func (d *DB) Conn() *sql.DB { return d.conn }

// Close closes the connection.
func (d *DB) Close() error { return d.conn.Close() }

// WithTransaction runs fn against a transaction-scoped DB. All mutations in
// spec.md (snapshot replace, dependency-graph batch writes) go through this.
func (d *DB) WithTransaction(fn func(tx *DB) error) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txDB := &DB{conn: d.conn, q: tx, path: d.path}
	if err := fn(txDB); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot_metadata (
		collection_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		collection_id TEXT NOT NULL,
		file_path TEXT NOT NULL,
		mtime_ms INTEGER NOT NULL,
		size INTEGER NOT NULL,
		hash TEXT NOT NULL,
		PRIMARY KEY (collection_id, file_path)
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_collection ON snapshots(collection_id);

	CREATE TABLE IF NOT EXISTS dependency_nodes (
		collection_id TEXT NOT NULL,
		file_path TEXT NOT NULL,
		module_path TEXT NOT NULL DEFAULT '',
		lang TEXT NOT NULL DEFAULT '',
		is_external INTEGER NOT NULL DEFAULT 0,
		package_name TEXT,
		hash TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (collection_id, file_path)
	);
	CREATE INDEX IF NOT EXISTS idx_dep_nodes_collection ON dependency_nodes(collection_id);

	CREATE TABLE IF NOT EXISTS dependency_edges (
		collection_id TEXT NOT NULL,
		source_file TEXT NOT NULL,
		target_module TEXT NOT NULL,
		line_number INTEGER NOT NULL,
		target_file TEXT,
		import_type TEXT NOT NULL,
		imported_names TEXT,
		is_resolved INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (collection_id, source_file, target_module, line_number)
	);
	CREATE INDEX IF NOT EXISTS idx_dep_edges_source ON dependency_edges(collection_id, source_file);
	CREATE INDEX IF NOT EXISTS idx_dep_edges_target ON dependency_edges(collection_id, target_file);
	`
	_, err := d.conn.Exec(schema)
	return err
}
