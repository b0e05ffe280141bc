//Package sqlstore stores module configuration in a relational database. PostgreSQL is reached through pgx and
//SQLite through the pure-Go modernc driver; both share the same queries.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//Dialect selects the schema flavour and driver
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) driver() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

//Store is a module.Repository backed by database/sql
type Store struct {
	db      *sql.DB
	dialect Dialect
}

type options struct {
	initialConns int
	maxConns     int
}

//Option customises Open
type Option func(*options)

//WithPoolSize sets the number of idle connections kept open and the maximum number of open connections
func WithPoolSize(initial, max int) Option {
	return func(o *options) {
		o.initialConns = initial
		o.maxConns = max
	}
}

//Open connects to the database named by url. postgres:// and postgresql:// URLs are handed to pgx as they are;
//sqlite://<path> opens a SQLite file, with sqlite://:memory: giving a private in-memory database.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	o := options{initialConns: 2, maxConns: 20}
	for _, opt := range opts {
		opt(&o)
	}

	var dialect Dialect
	var dsn string
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		dialect, dsn = Postgres, url
	case strings.HasPrefix(url, "sqlite://"):
		dialect, dsn = SQLite, strings.TrimPrefix(url, "sqlite://")
	default:
		return nil, fmt.Errorf("unsupported database url scheme in `%v`", url)
	}

	db, err := sql.Open(dialect.driver(), dsn)
	if err != nil {
		logrus.Errorf("Failed to open %v database: %v", dialect, err)
		return nil, fmt.Errorf("failed to open %v database: %w", dialect, err)
	}
	if dialect == SQLite && dsn == ":memory:" {
		//every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(o.maxConns)
		db.SetMaxIdleConns(o.initialConns)
	}

	store, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

//New wraps an already opened database and makes sure every table exists
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		logrus.Errorf("Failed to connect to %v database: %v", dialect, err)
		return nil, fmt.Errorf("failed to connect to %v database: %w", dialect, err)
	}
	s := &Store{db: db, dialect: dialect}
	if err := s.createTables(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

//Close cleanly terminates the database connection
func (s *Store) Close() error {
	logrus.Info("Terminating DB connection...")
	return s.db.Close()
}

var placeholderRegex = regexp.MustCompile(`\$\d+`)

//rebind adapts a query written with PostgreSQL placeholders to the store's dialect. Queries must number their
//placeholders in the order they appear, as SQLite gets plain positional ones.
func (s *Store) rebind(query string) string {
	if s.dialect == SQLite {
		return placeholderRegex.ReplaceAllString(query, "?")
	}
	return query
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *Store) createTables(ctx context.Context) error {
	stmts := schema(s.dialect)
	if s.dialect == SQLite {
		stmts = append([]string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 10000"}, stmts...)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			logrus.Errorf("Failed to create tables: %v", err)
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

func schema(dialect Dialect) []string {
	actionID := "id BIGSERIAL PRIMARY KEY"
	if dialect == SQLite {
		actionID = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return []string{`
CREATE TABLE IF NOT EXISTS modules (
	guild TEXT NOT NULL,
	module TEXT NOT NULL,
	enabled BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (guild, module)
)`, `
CREATE TABLE IF NOT EXISTS module_settings (
	guild TEXT NOT NULL,
	module TEXT NOT NULL,
	setting TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (guild, module, setting)
)`, `
CREATE TABLE IF NOT EXISTS module_exclusions (
	guild TEXT NOT NULL,
	module TEXT NOT NULL,
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	PRIMARY KEY (guild, module, kind, id)
)`, `
CREATE TABLE IF NOT EXISTS actions (
	` + actionID + `,
	guild TEXT NOT NULL,
	module TEXT NOT NULL,
	action TEXT NOT NULL,
	in_channel TEXT,
	message TEXT
)`, `
CREATE INDEX IF NOT EXISTS actions_guild_module_idx ON actions (guild, module)
`}
}
