package typeorm

import (
	"context"
	"sync"
)

// DatabaseConnection identifies one logical connection handed out by the
// driver. In pooled mode a record exists per distinct physical connection
// seen so far; in single mode there is exactly one record for the lifetime
// of the driver. Records are owned by the connection manager; the
// transaction coordinator mutates only the transaction flag and the query
// executor only reads the client handle.
type DatabaseConnection struct {
	// ID is unique within the driver instance.
	ID int64

	client            ClientConn
	transactionActive bool

	// release returns the physical connection to the pool. It is re-attached
	// on every retrieval (pools may hand back the same physical connection
	// with a new release token) and nil for the single persistent connection.
	release func()
}

// TransactionActive reports whether a transaction is open on this connection.
func (c *DatabaseConnection) TransactionActive() bool { return c.transactionActive }

// Native exposes the client library's raw connection object.
func (c *DatabaseConnection) Native() any {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Raw()
}

// connectionManager owns the pooled-or-single transport resource and the
// tracked-connection collection. The collection's mutations are serialized
// by mu; pool acquisition itself happens outside the lock since it may
// suspend while waiting for a free physical connection.
type connectionManager struct {
	opts    *Options
	factory ClientFactory

	mu          sync.Mutex
	pool        ClientPool
	single      ClientConn
	singleConn  *DatabaseConnection
	connections []*DatabaseConnection
	nextID      int64
}

func newConnectionManager(opts *Options, factory ClientFactory) *connectionManager {
	return &connectionManager{opts: opts, factory: factory}
}

// connect establishes the transport resource. Pooled mode instantiates the
// pool object only; no physical connection is opened until the first
// retrieve. Single mode opens the one persistent connection eagerly and
// reports a *ConnectionError when the open fails.
func (m *connectionManager) connect(ctx context.Context) error {
	params := m.opts.connectionParams()
	if m.opts.pooled() {
		pool, err := m.factory.NewPool(ctx, params)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.pool = pool
		m.mu.Unlock()
		return nil
	}
	conn, err := m.factory.NewConn(ctx, params)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	m.mu.Lock()
	m.single = conn
	m.nextID++
	m.singleConn = &DatabaseConnection{ID: m.nextID, client: conn}
	m.mu.Unlock()
	return nil
}

// disconnect tears the transport down: the single connection is closed, every
// tracked pooled connection is released before the pool itself is closed, and
// the tracked collection is cleared. A second disconnect without an
// intervening connect fails with ErrConnectionNotSet.
func (m *connectionManager) disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil && m.single == nil {
		return ErrConnectionNotSet
	}
	var closeErr error
	if m.single != nil {
		closeErr = m.single.Close(ctx)
		m.single = nil
		m.singleConn = nil
	}
	if m.pool != nil {
		for _, c := range m.connections {
			if c.release != nil {
				c.release()
				c.release = nil
			}
		}
		m.connections = nil
		m.pool.Close()
		m.pool = nil
	}
	return closeErr
}

// retrieve hands out a DatabaseConnection. Pooled mode acquires a handle from
// the pool (possibly suspending under contention) and deduplicates it against
// the tracked collection by underlying handle identity; the fresh release
// token is attached even for a previously seen handle. Single mode returns
// the persistent record.
func (m *connectionManager) retrieve(ctx context.Context) (*DatabaseConnection, error) {
	m.mu.Lock()
	pool, single := m.pool, m.singleConn
	m.mu.Unlock()

	switch {
	case pool != nil:
		acquired, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return m.track(acquired), nil
	case single != nil:
		return single, nil
	default:
		return nil, ErrConnectionNotSet
	}
}

// track records a freshly acquired pooled handle, reusing the existing
// record when the pool handed back a physical connection seen before.
func (m *connectionManager) track(acquired PooledClientConn) *DatabaseConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw := acquired.Raw()
	for _, c := range m.connections {
		if c.client.Raw() == raw {
			c.client = acquired
			c.release = acquired.Release
			return c
		}
	}
	m.nextID++
	c := &DatabaseConnection{ID: m.nextID, client: acquired, release: acquired.Release}
	m.connections = append(m.connections, c)
	return c
}

// release returns a pooled connection. The release callback runs at most
// once per checkout; releasing a connection twice, or releasing in single
// mode, is a no-op.
func (m *connectionManager) release(conn *DatabaseConnection) {
	if conn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil || conn.release == nil {
		return
	}
	rel := conn.release
	conn.release = nil
	for i, c := range m.connections {
		if c == conn {
			m.connections = append(m.connections[:i], m.connections[i+1:]...)
			break
		}
	}
	rel()
}

// established reports whether a pool or single connection exists.
func (m *connectionManager) established() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool != nil || m.single != nil
}

// nativePool returns the raw pool object, or nil outside pooled mode.
func (m *connectionManager) nativePool() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil {
		return nil
	}
	return m.pool.Raw()
}

// nativeSingle returns the raw single connection object, or nil in pooled
// mode.
func (m *connectionManager) nativeSingle() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.single == nil {
		return nil
	}
	return m.single.Raw()
}

// trackedCount returns the number of tracked pooled connections.
func (m *connectionManager) trackedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}
