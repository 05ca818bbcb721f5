// Package db is the SQL compatibility layer shared by the SQLite and
// PostgreSQL stores: placeholder rewriting, connection setup, embedded
// migrations and transactions.
package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Dialect represents the SQL database backend in use.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Querier is the subset of *CompatDB and *CompatConn the stores use, so a
// store method runs the same way on the pool or inside WithTx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CompatDB wraps *sql.DB to provide transparent ? → $N placeholder
// conversion for Postgres while keeping SQLite queries unchanged.
type CompatDB struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewCompatDB(db *sql.DB, dialect Dialect) *CompatDB {
	return &CompatDB{DB: db, Dialect: dialect}
}

func (d *CompatDB) Close() error    { return d.DB.Close() }
func (d *CompatDB) IsPostgres() bool { return d.Dialect == DialectPostgres }

func (d *CompatDB) PingContext(ctx context.Context) error { return d.DB.PingContext(ctx) }

func (d *CompatDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return d.DB.ExecContext(ctx, rewrite(d.Dialect, query), args...)
}

func (d *CompatDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, rewrite(d.Dialect, query), args...)
}

func (d *CompatDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.DB.QueryRowContext(ctx, rewrite(d.Dialect, query), args...)
}

func (d *CompatDB) Conn(ctx context.Context) (*CompatConn, error) {
	conn, err := d.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &CompatConn{Conn: conn, dialect: d.Dialect}, nil
}

// CompatConn wraps *sql.Conn with automatic placeholder conversion.
type CompatConn struct {
	Conn    *sql.Conn
	dialect Dialect
}

func (c *CompatConn) Close() error { return c.Conn.Close() }

func (c *CompatConn) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.Conn.ExecContext(ctx, rewrite(c.dialect, query), args...)
}

func (c *CompatConn) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.Conn.QueryContext(ctx, rewrite(c.dialect, query), args...)
}

func (c *CompatConn) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.Conn.QueryRowContext(ctx, rewrite(c.dialect, query), args...)
}

func rewrite(d Dialect, query string) string {
	if d == DialectSQLite {
		return query
	}
	return rewritePlaceholders(query)
}

// rewritePlaceholders converts ? to $1, $2, ... for Postgres.
// Respects single-quoted string literals and escaped quotes ('').
func rewritePlaceholders(query string) string {
	var buf strings.Builder
	buf.Grow(len(query) + 32)
	n := 1
	inStr := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			if inStr && i+1 < len(query) && query[i+1] == '\'' {
				buf.WriteByte(c)
				buf.WriteByte(query[i+1])
				i++
				continue
			}
			inStr = !inStr
			buf.WriteByte(c)
		case c == '?' && !inStr:
			buf.WriteByte('$')
			buf.WriteString(strconv.Itoa(n))
			n++
		default:
			buf.WriteByte(c)
		}
	}
	return buf.String()
}

// BeginTxSQL returns the SQL statement to begin a write transaction.
func (d *CompatDB) BeginTxSQL() string {
	if d.IsPostgres() {
		return "BEGIN"
	}
	return "BEGIN IMMEDIATE"
}

// TimeLayout is the fixed-width UTC text form timestamps are stored in, so
// that lexical order equals chronological order in both dialects.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// ParseTime reads a stored timestamp. Values written by other tools in plain
// RFC 3339 are accepted too.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
