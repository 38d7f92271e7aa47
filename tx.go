package typeorm

import "context"

// transactionCoordinator enforces the begin/commit/rollback state machine.
// The state lives on the DatabaseConnection record, so transactions on
// distinct pooled connections are independent. No nested transactions, no
// savepoints.
type transactionCoordinator struct {
	exec *queryExecutor
}

// begin transitions Idle -> Active. The flag flips only after the statement
// succeeds, so a failed START TRANSACTION leaves the connection Idle.
func (t *transactionCoordinator) begin(ctx context.Context, conn *DatabaseConnection) error {
	if conn.transactionActive {
		return ErrTransactionAlreadyStarted
	}
	if _, err := t.exec.query(ctx, conn, "START TRANSACTION"); err != nil {
		return err
	}
	conn.transactionActive = true
	return nil
}

// commit transitions Active -> Idle.
func (t *transactionCoordinator) commit(ctx context.Context, conn *DatabaseConnection) error {
	if !conn.transactionActive {
		return ErrTransactionNotStarted
	}
	if _, err := t.exec.query(ctx, conn, "COMMIT"); err != nil {
		return err
	}
	conn.transactionActive = false
	return nil
}

// rollback transitions Active -> Idle.
func (t *transactionCoordinator) rollback(ctx context.Context, conn *DatabaseConnection) error {
	if !conn.transactionActive {
		return ErrTransactionNotStarted
	}
	if _, err := t.exec.query(ctx, conn, "ROLLBACK"); err != nil {
		return err
	}
	conn.transactionActive = false
	return nil
}
