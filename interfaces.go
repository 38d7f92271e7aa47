package typeorm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ClientRows is the row-set surface the driver consumes from the transport:
// an ordered, finite, non-restartable sequence of rows.
type ClientRows interface {
	// Columns returns the result column names in selection order.
	Columns() []string
	// Next advances to the next row, reporting false when exhausted.
	Next() bool
	// Values returns the current row's values in column order.
	Values() ([]any, error)
	// Err returns the error, if any, that terminated iteration.
	Err() error
	// Close releases resources held by the row set.
	Close()
}

// ClientConn is the capability surface of one physical connection in the
// underlying client library.
type ClientConn interface {
	// Query submits a statement with positional arguments and returns the
	// resulting rows. Statements on a single connection execute in
	// submission order.
	Query(ctx context.Context, sql string, args ...any) (ClientRows, error)
	// Close terminates the physical connection.
	Close(ctx context.Context) error
	// Raw exposes the client library's own connection object. Two wrappers
	// over the same physical connection return the same Raw value, which is
	// what the connection manager uses for handle identity.
	Raw() any
}

// PooledClientConn is a ClientConn checked out of a pool. Release returns it;
// the release token is only valid for the current checkout.
type PooledClientConn interface {
	ClientConn
	Release()
}

// ClientPool is the capability surface of the client library's pool object.
// Construction does not establish connections; Acquire may suspend until a
// physical connection is available.
type ClientPool interface {
	Acquire(ctx context.Context) (PooledClientConn, error)
	Close()
	// Raw exposes the client library's own pool object.
	Raw() any
}

// ClientFactory constructs the pooled or single-connection transport from
// merged connection parameters. A concrete adapter exists per client
// library; the driver itself never touches sockets.
type ClientFactory interface {
	NewPool(ctx context.Context, params map[string]string) (ClientPool, error)
	NewConn(ctx context.Context, params map[string]string) (ClientConn, error)
}

// Factory registry. Adapters register themselves by name (the pgx adapter
// registers as "pgx" in its init), and drivers constructed without an
// injected factory resolve one by Options.ClientPackage.
var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]func() (ClientFactory, error))
)

// RegisterClientFactory makes a client factory constructor available under
// the given name. It panics on duplicate registration, matching the
// database/sql convention.
func RegisterClientFactory(name string, construct func() (ClientFactory, error)) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if construct == nil {
		panic("typeorm: RegisterClientFactory with nil constructor")
	}
	if _, dup := factories[name]; dup {
		panic("typeorm: RegisterClientFactory called twice for " + name)
	}
	factories[name] = construct
}

// RegisteredClientFactories returns the sorted names of registered factories.
func RegisteredClientFactories() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveClientFactory loads the factory registered under name.
func resolveClientFactory(name string) (ClientFactory, error) {
	factoriesMu.RLock()
	construct, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrDriverPackageNotInstalled, name, RegisteredClientFactories())
	}
	factory, err := construct()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDriverPackageLoad, name, err)
	}
	return factory, nil
}
