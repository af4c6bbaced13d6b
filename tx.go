package joli

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/syssam/joli/dialect"
)

// Transaction groups statements between BEGIN and COMMIT on the client
// connection. There is no rollback: a caller that gives up on a
// transaction issues its own compensating statements.
type Transaction struct {
	conn      dialect.Connection
	log       *slog.Logger
	id        uuid.UUID
	committed bool
}

// Begin starts a transaction.
func (c *Client) Begin(ctx context.Context) (*Transaction, error) {
	tx := &Transaction{conn: c.conn, id: uuid.New()}
	tx.log = c.log.With("tx_id", tx.id.String())
	if _, err := c.conn.Exec(ctx, "BEGIN;"); err != nil {
		return nil, err
	}
	tx.log.DebugContext(ctx, "joli: transaction started")
	return tx, nil
}

// ID returns the identifier of the transaction, used in logs.
func (tx *Transaction) ID() string { return tx.id.String() }

// Committed reports whether Commit succeeded.
func (tx *Transaction) Committed() bool { return tx.committed }

// Commit commits the transaction. Committing twice returns an
// *AlreadyCommittedError. A failed commit may be retried.
func (tx *Transaction) Commit(ctx context.Context) error {
	if tx.committed {
		return &AlreadyCommittedError{TxID: tx.id.String()}
	}
	if _, err := tx.conn.Exec(ctx, "COMMIT;"); err != nil {
		return err
	}
	tx.committed = true
	tx.log.DebugContext(ctx, "joli: transaction committed")
	return nil
}
