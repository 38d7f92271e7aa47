package typeorm

import (
	"context"

	gge "github.com/yggai/ygggo_env"
	"golang.org/x/sync/errgroup"
)

// Driver is the facade consumed by schema-builder and persistence-layer
// collaborators. It composes the connection manager, the transaction
// coordinator and the query executor over an injected client factory.
type Driver struct {
	opts    *Options
	factory ClientFactory
	manager *connectionManager
	exec    *queryExecutor
	txc     *transactionCoordinator
}

// DriverOption customizes driver construction.
type DriverOption func(*Driver)

// WithClientFactory injects the transport adapter, bypassing the registry.
func WithClientFactory(factory ClientFactory) DriverOption {
	return func(d *Driver) { d.factory = factory }
}

// WithQueryLogger injects the logging collaborator.
func WithQueryLogger(logger QueryLogger) DriverOption {
	return func(d *Driver) { d.exec.logger = logger }
}

// NewDriver validates opts, resolves the client factory and assembles the
// driver. Construction fails fast: option validation and factory resolution
// errors are returned synchronously, before any I/O happens.
func NewDriver(opts *Options, driverOpts ...DriverOption) (*Driver, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		opts: opts,
		exec: &queryExecutor{
			logger:    NewSlogQueryLogger(nil),
			telemetry: &telemetry{},
			metrics:   &driverMetrics{},
		},
	}
	for _, apply := range driverOpts {
		apply(d)
	}
	if d.factory == nil {
		factory, err := resolveClientFactory(opts.clientPackage())
		if err != nil {
			return nil, err
		}
		d.factory = factory
	}
	d.manager = newConnectionManager(opts, d.factory)
	d.exec.manager = d.manager
	d.txc = &transactionCoordinator{exec: d.exec}
	return d, nil
}

// NewDriverEnv builds a driver from TYPEORM_* environment variables, loading
// a .env file first when present.
func NewDriverEnv(driverOpts ...DriverOption) (*Driver, error) {
	gge.LoadEnv()
	opts := &Options{}
	applyEnv(opts)
	return NewDriver(opts, driverOpts...)
}

// Connect establishes the transport resource: the pool object in pooled mode
// (no physical connection yet), or the single persistent connection.
func (d *Driver) Connect(ctx context.Context) error {
	return d.manager.connect(ctx)
}

// Disconnect releases every tracked pooled connection, closes the pool or
// the single connection, and clears the tracked collection. It fails with
// ErrConnectionNotSet when nothing is established.
func (d *Driver) Disconnect(ctx context.Context) error {
	return d.manager.disconnect(ctx)
}

// RetrieveConnection hands out a DatabaseConnection. In pooled mode this may
// suspend until a physical connection becomes available; callers must pair
// every retrieve with ReleaseConnection on all exit paths.
func (d *Driver) RetrieveConnection(ctx context.Context) (*DatabaseConnection, error) {
	conn, err := d.manager.retrieve(ctx)
	if err != nil {
		return nil, err
	}
	d.exec.metrics.recordConnection(ctx, 1)
	return conn, nil
}

// ReleaseConnection returns a pooled connection. Releasing twice, or
// releasing the single persistent connection, is a no-op.
func (d *Driver) ReleaseConnection(conn *DatabaseConnection) {
	if conn != nil && conn.release != nil {
		d.exec.metrics.recordConnection(context.Background(), -1)
	}
	d.manager.release(conn)
}

// BeginTransaction starts a transaction on the given connection.
func (d *Driver) BeginTransaction(ctx context.Context, conn *DatabaseConnection) error {
	return d.txc.begin(ctx, conn)
}

// CommitTransaction commits the active transaction on the given connection.
func (d *Driver) CommitTransaction(ctx context.Context, conn *DatabaseConnection) error {
	return d.txc.commit(ctx, conn)
}

// RollbackTransaction rolls back the active transaction on the given
// connection.
func (d *Driver) RollbackTransaction(ctx context.Context, conn *DatabaseConnection) error {
	return d.txc.rollback(ctx, conn)
}

// Query executes raw SQL with positional parameters on the connection and
// returns the materialized rows.
func (d *Driver) Query(ctx context.Context, conn *DatabaseConnection, sql string, params ...any) ([]Row, error) {
	return d.exec.query(ctx, conn, sql, params...)
}

// Insert inserts one row and returns the full result row sequence.
func (d *Driver) Insert(ctx context.Context, conn *DatabaseConnection, table string, columnValues map[string]any) ([]Row, error) {
	return d.exec.insert(ctx, conn, table, columnValues, "")
}

// InsertWithID inserts one row with a RETURNING clause and returns the
// generated value of idColumn from the first result row.
func (d *Driver) InsertWithID(ctx context.Context, conn *DatabaseConnection, table string, columnValues map[string]any, idColumn string) (any, error) {
	rows, err := d.exec.insert(ctx, conn, table, columnValues, idColumn)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0][idColumn], nil
}

// Update updates rows matched by conditions. Empty conditions update every
// row; scoping is the caller's responsibility.
func (d *Driver) Update(ctx context.Context, conn *DatabaseConnection, table string, valuesMap, conditions map[string]any) error {
	return d.exec.update(ctx, conn, table, valuesMap, conditions)
}

// Delete deletes rows matched by conditions.
func (d *Driver) Delete(ctx context.Context, conn *DatabaseConnection, table string, conditions map[string]any) error {
	return d.exec.delete(ctx, conn, table, conditions)
}

// InsertIntoClosureTable maintains the closure table for a new node and
// returns its depth. newID and parentID must be driver-internal values; see
// the executor documentation.
func (d *Driver) InsertIntoClosureTable(ctx context.Context, conn *DatabaseConnection, table string, newID, parentID any, hasLevel bool) (int, error) {
	return d.exec.insertIntoClosureTable(ctx, conn, table, newID, parentID, hasLevel)
}

// selectDropsQuery generates one DROP statement per table in the default
// schema.
const selectDropsQuery = `SELECT 'DROP TABLE IF EXISTS "' || tablename || '" CASCADE;' as "query" FROM "pg_tables" WHERE "schemaname" = 'public'`

// ClearDatabase drops every table in the default schema. In pooled mode the
// drops run concurrently on separate connections; on a single persistent
// connection they run sequentially, since one physical connection executes
// statements in submission order.
func (d *Driver) ClearDatabase(ctx context.Context) error {
	conn, err := d.RetrieveConnection(ctx)
	if err != nil {
		return err
	}
	drops, err := d.Query(ctx, conn, selectDropsQuery)
	if err != nil {
		d.ReleaseConnection(conn)
		return err
	}

	if !d.opts.pooled() {
		defer d.ReleaseConnection(conn)
		for _, drop := range drops {
			stmt, _ := drop["query"].(string)
			if _, err := d.Query(ctx, conn, stmt); err != nil {
				return err
			}
		}
		return nil
	}

	d.ReleaseConnection(conn)
	g, gctx := errgroup.WithContext(ctx)
	for _, drop := range drops {
		stmt, _ := drop["query"].(string)
		g.Go(func() error {
			dropConn, err := d.RetrieveConnection(gctx)
			if err != nil {
				return err
			}
			defer d.ReleaseConnection(dropConn)
			_, err = d.Query(gctx, dropConn, stmt)
			return err
		})
	}
	return g.Wait()
}

// Ping verifies liveness by running a trivial statement over a retrieved
// connection.
func (d *Driver) Ping(ctx context.Context) error {
	conn, err := d.RetrieveConnection(ctx)
	if err != nil {
		return err
	}
	defer d.ReleaseConnection(conn)
	_, err = d.Query(ctx, conn, "SELECT 1")
	return err
}

// NativeHandles exposes the raw client library objects for collaborators
// needing transport-level access.
type NativeHandles struct {
	Factory    ClientFactory
	Pool       any
	Connection any
}

// NativeInterface returns the escape hatch to the underlying client objects:
// the factory, the raw pool (pooled mode) and the raw single connection
// (non-pooled mode).
func (d *Driver) NativeInterface() NativeHandles {
	return NativeHandles{
		Factory:    d.factory,
		Pool:       d.manager.nativePool(),
		Connection: d.manager.nativeSingle(),
	}
}
