package ledger

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Validator is the contract a Ledger requires of its schema collaborator:
// validate(schema_id, blob) -> ok | error. internal/schemaregistry.Registry
// satisfies this interface; the ledger never imports that package directly.
type Validator interface {
	Validate(schemaID string, blob []byte) error
}

// Ledger is a single content-addressed, append-only event log backed by
// SQLite in WAL mode with a single writer connection.
//
// No run_id is special to a Ledger. An external caching adapter (an LLM
// wrapper, say) can keep its entries in an ordinary run such as
// "llm-cache": it publishes the prompt, so the event's sha is
// sha256(prompt), and finds an earlier entry by re-deriving that sha and
// looking for it among the run's events.
type Ledger struct {
	db             *sql.DB
	validator      Validator
	integrityCheck bool
	notifier       *notifier
}

// Option configures a Ledger at Open time.
type Option func(*Ledger)

// WithoutIntegrityCheck disables re-validation of stored blobs against
// their schema during Replay and Subscribe delivery. Integrity checking is
// on by default: every delivered event is re-validated against its schema,
// catching ledger corruption or a schema document that changed underneath
// already-published data. Disabling it trades that safety net for a lazier,
// read-only fast path.
func WithoutIntegrityCheck() Option {
	return func(l *Ledger) {
		l.integrityCheck = false
	}
}

// Open creates or opens a SQLite-backed ledger at path, applying pragmas
// and schema migrations. Safe to call multiple times against the same file.
func Open(path string, validator Validator, opts ...Option) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger: connect: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY errors under concurrent reactor goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger: pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger: schema: %w", err)
	}

	l := &Ledger{
		db:             db,
		validator:      validator,
		integrityCheck: true,
		notifier:       newNotifier(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
