// Package docstore is the alternate vault backend: records live as JSON
// documents in a SQLite table, keyed by generated object ids, with
// creation and update timestamps maintained by the database.
package docstore

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with a Unicode-aware fold_lower(text) SQL
// function, so Search folds case the same way as the file backend.
const driverName = "sqlite3_recvault"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold_lower", strings.ToLower, true)
		},
	})
}

// DefaultCollection is the table used when none is configured.
const DefaultCollection = "records"

var collectionRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS {{c}} (
	id         TEXT PRIMARY KEY,
	doc        TEXT NOT NULL CHECK (json_valid(doc)),
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_{{c}}_created ON {{c}}(created_at);

CREATE TRIGGER IF NOT EXISTS trg_{{c}}_touch
AFTER UPDATE OF doc ON {{c}}
BEGIN
	UPDATE {{c}}
	SET updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	WHERE id = NEW.id;
END;
`

// Store wraps a sql.DB holding one document collection.
type Store struct {
	conn       *sql.DB
	collection string
}

// Open opens (or creates) the SQLite database at dsn and prepares the
// collection table.
func Open(dsn, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if !collectionRe.MatchString(collection) {
		return nil, fmt.Errorf("docstore: invalid collection name %q", collection)
	}
	conn, err := sql.Open(driverName, dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("docstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docstore: ping: %w", err)
	}
	schema := strings.ReplaceAll(schemaTemplate, "{{c}}", collection)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("docstore: apply schema: %w", err)
	}
	return &Store{conn: conn, collection: collection}, nil
}

// Collection returns the table name backing this store.
func (s *Store) Collection() string { return s.collection }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// q substitutes the collection name into a query template.
func (s *Store) q(query string) string {
	return strings.ReplaceAll(query, "{{c}}", s.collection)
}
