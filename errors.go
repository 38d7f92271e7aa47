package typeorm

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the driver itself. Errors coming from the
// underlying client library are passed through unchanged.
var (
	// ErrConnectionNotSet is returned when an operation that needs an
	// established connection or pool is invoked before Connect (or after
	// Disconnect).
	ErrConnectionNotSet = errors.New("typeorm: connection with the database is not established, check connection configuration")

	// ErrTransactionAlreadyStarted is returned by BeginTransaction when the
	// given connection already has an active transaction.
	ErrTransactionAlreadyStarted = errors.New("typeorm: transaction already started for the given connection, commit current transaction before starting a new one")

	// ErrTransactionNotStarted is returned by CommitTransaction and
	// RollbackTransaction when no transaction is active on the connection.
	ErrTransactionNotStarted = errors.New("typeorm: transaction is not started yet, start transaction before committing or rolling it back")

	// ErrDriverPackageNotInstalled is returned at construction time when no
	// client factory was injected and none is registered under the requested
	// name.
	ErrDriverPackageNotInstalled = errors.New("typeorm: client package has not been found, inject a ClientFactory or register one")

	// ErrDriverPackageLoad is returned when a registered client factory
	// constructor fails to produce a factory.
	ErrDriverPackageLoad = errors.New("typeorm: client package cannot be loaded")
)

// ConnectionError wraps a failure to open the underlying client connection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("typeorm: connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MarshallingError reports a value conversion failure in the type marshaller.
type MarshallingError struct {
	Type  ColumnType
	Value any
	Err   error
}

func (e *MarshallingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("typeorm: cannot marshal %T as %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("typeorm: cannot marshal %T as %s", e.Value, e.Type)
}

func (e *MarshallingError) Unwrap() error { return e.Err }
