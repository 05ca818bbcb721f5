package db

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"vidtube/logger"
)

// WithTx executes fn inside a transaction on a dedicated connection.
// Uses BEGIN IMMEDIATE for SQLite or plain BEGIN for Postgres.
// If fn returns an error, the transaction is rolled back. fn must issue every
// statement through conn: on SQLite the pool holds a single connection.
func WithTx(ctx context.Context, db *CompatDB, fn func(conn *CompatConn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, db.BeginTxSQL()); err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := fn(conn); err != nil {
		// The request context may already be cancelled; rollback must still run.
		if _, rbErr := conn.ExecContext(context.Background(), "ROLLBACK"); rbErr != nil {
			logger.L().WithFields(logrus.Fields{"error": rbErr, "cause": err}).Error("rollback failed")
		}
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
