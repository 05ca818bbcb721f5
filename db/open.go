package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
)

// SQLite's built-in lower() only folds ASCII. Overriding it keeps
// case-insensitive search in line with Postgres and Mongo for accented text.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// OpenSQLite opens path (":memory:" for a private in-memory database) on a
// single connection and applies the connection pragmas. One connection
// prevents concurrent write conflicts and keeps an in-memory database alive.
func OpenSQLite(path string) (*CompatDB, error) {
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	raw.SetMaxOpenConns(1)
	raw.SetMaxIdleConns(1)
	raw.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := raw.Exec(pragma); err != nil {
			raw.Close()
			return nil, fmt.Errorf("pragma failed (%s): %w", pragma, err)
		}
	}
	return NewCompatDB(raw, DialectSQLite), nil
}

// OpenPostgres opens a pgx-backed pool for dsn and verifies it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*CompatDB, error) {
	raw, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	raw.SetMaxOpenConns(20)
	raw.SetMaxIdleConns(5)
	if err := raw.PingContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewCompatDB(raw, DialectPostgres), nil
}
