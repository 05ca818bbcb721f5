package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"vidtube/query"
)

// projection is the select list of one allow-listed read and the mapping of
// each field to a scan destination.
type projection[T any] struct {
	name   string
	fields []string
	sql    string
	bind   func(*T) map[string]any
}

func newProjection[T any](al query.Allowlist, name string, columns map[string]string, bind func(*T) map[string]any) (*projection[T], error) {
	fields := al.Projection(name)
	if len(fields) == 0 {
		return nil, fmt.Errorf("sqlstore: projection %q is empty", name)
	}
	dests := bind(new(T))
	exprs := make([]string, 0, len(fields))
	for _, f := range fields {
		expr, ok := columns[f]
		if !ok {
			return nil, fmt.Errorf("sqlstore: projection %q: no column for %q", name, f)
		}
		if _, ok := dests[f]; !ok {
			return nil, fmt.Errorf("sqlstore: projection %q: no destination for %q", name, f)
		}
		exprs = append(exprs, expr)
	}
	return &projection[T]{name: name, fields: fields, sql: strings.Join(exprs, ", "), bind: bind}, nil
}

func (p *projection[T]) targets(v *T) []any {
	m := p.bind(v)
	out := make([]any, len(p.fields))
	for i, f := range p.fields {
		out[i] = m[f]
	}
	return out
}

func (p *projection[T]) scanRow(row *sql.Row) (*T, error) {
	v := new(T)
	if err := row.Scan(p.targets(v)...); err != nil {
		return nil, err
	}
	return v, nil
}

// scanAll drains rows. It always closes rows, so the connection is free for
// the next statement when it returns.
func (p *projection[T]) scanAll(rows *sql.Rows) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var v T
		if err := rows.Scan(p.targets(&v)...); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
