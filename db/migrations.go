package db

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"vidtube/logger"
)

//go:embed migrations/*
var migrationsFS embed.FS

// RunMigrations applies every embedded migration for d.Dialect that is not yet
// recorded in schema_migrations, in file-name order, each in its own
// transaction.
func RunMigrations(ctx context.Context, d *CompatDB) error {
	createTableSQL := `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if d.IsPostgres() {
		createTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`
	}
	if _, err := d.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := migrationFiles(d.Dialect)
	if err != nil {
		return err
	}

	for _, file := range files {
		var applied int
		err := d.QueryRowContext(ctx, "SELECT 1 FROM schema_migrations WHERE version = ?", file).Scan(&applied)
		if err == nil && applied == 1 {
			continue
		}
		if err != nil && !IsNoRows(err) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := migrationsFS.ReadFile("migrations/" + string(d.Dialect) + "/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		logger.L().WithField("migration", file).Info("applying migration")
		err = WithTx(ctx, d, func(conn *CompatConn) error {
			for _, stmt := range splitStatements(string(content)) {
				if _, err := conn.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("exec migration %s: %w", file, err)
				}
			}
			if _, err := conn.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", file); err != nil {
				return fmt.Errorf("record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func migrationFiles(d Dialect) ([]string, error) {
	dir := "migrations/" + string(d)
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %s: %w", d, err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements splits a migration on semicolons that end a line. The
// migrations contain no procedural bodies, so this is sufficient.
func splitStatements(script string) []string {
	var out []string
	var cur strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}
