package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - sequences table with schema_meta variant marker
const currentSchemaVersion = 1

// Schema variant names stored in schema_meta.
const (
	VariantStrict = "strict"
	VariantLegacy = "legacy"
)

// Store provides durable storage for sequencing records.
// Uses SQLite with a single open connection.
type Store struct {
	db      *sql.DB
	variant string
	logger  *slog.Logger
	closed  bool
}

// Option configures Open.
type Option func(*options)

type options struct {
	legacy bool
	logger *slog.Logger
}

// WithLegacySchema selects the legacy variant in which alternate terms may
// be empty.
func WithLegacySchema() Option {
	return func(o *options) { o.legacy = true }
}

// WithLogger sets the logger used for diagnostics. Defaults to a discarding
// logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times on one path.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	variant := VariantStrict
	if o.legacy {
		variant = VariantLegacy
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, wrap("open", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap("open", fmt.Errorf("connect: %w", err))
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, wrap("open", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, wrap("open", err)
	}

	if err := checkVariant(db, variant); err != nil {
		db.Close()
		return nil, err
	}

	o.logger.Debug("store opened", "path", path, "variant", variant)
	return &Store{db: db, variant: variant, logger: o.logger}, nil
}

// Close releases the database handle. Close is idempotent; every other
// operation returns ErrClosed afterwards.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("store closed")
	return wrap("close", s.db.Close())
}

// Variant returns VariantStrict or VariantLegacy.
func (s *Store) Variant() string {
	return s.variant
}

// Strict reports whether alternates are required on Create.
func (s *Store) Strict() bool {
	return s.variant == VariantStrict
}

func (s *Store) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and stamps user_version.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// checkVariant records the variant on first open and rejects a mismatch on
// later opens.
func checkVariant(db *sql.DB, want string) error {
	if _, err := db.Exec(
		`INSERT INTO schema_meta (key, value) VALUES ('variant', ?) ON CONFLICT(key) DO NOTHING`,
		want,
	); err != nil {
		return wrap("open", fmt.Errorf("record schema variant: %w", err))
	}

	var got string
	err := db.QueryRow(`SELECT value FROM schema_meta WHERE key = 'variant'`).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return wrap("open", fmt.Errorf("schema variant missing"))
	}
	if err != nil {
		return wrap("open", fmt.Errorf("read schema variant: %w", err))
	}
	if got != want {
		return fmt.Errorf("%w: database is %s, opened as %s", ErrSchemaVariant, got, want)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
