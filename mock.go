package typeorm

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MockFactory is an in-memory ClientFactory for tests and for consumers that
// want to exercise driver behavior without a database. Results are scripted
// by SQL substring match and every executed statement is recorded.
type MockFactory struct {
	mu         sync.Mutex
	scripts    []mockScript
	queries    []MockQuery
	connectErr error
	acquireErr error
	nextConnID int
	pool       *MockPool
	conns      []*MockConn
}

type mockScript struct {
	substr string
	rows   []Row
	err    error
}

// MockQuery records one executed statement.
type MockQuery struct {
	SQL    string
	Args   []any
	ConnID int
}

// NewMockFactory creates an empty mock factory. Unscripted statements
// succeed with an empty result.
func NewMockFactory() *MockFactory {
	return &MockFactory{}
}

// OnQuery scripts the rows returned by statements containing substr.
func (f *MockFactory) OnQuery(substr string, rows ...Row) *MockFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, mockScript{substr: substr, rows: rows})
	return f
}

// FailQuery scripts an error for statements containing substr.
func (f *MockFactory) FailQuery(substr string, err error) *MockFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, mockScript{substr: substr, err: err})
	return f
}

// FailConnect makes single-connection opens fail with err.
func (f *MockFactory) FailConnect(err error) *MockFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
	return f
}

// FailAcquire makes pool acquisitions fail with err.
func (f *MockFactory) FailAcquire(err error) *MockFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquireErr = err
	return f
}

// Queries returns the executed statements in submission order.
func (f *MockFactory) Queries() []MockQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]MockQuery, len(f.queries))
	copy(out, f.queries)
	return out
}

// Pool returns the pool created by the factory, if any.
func (f *MockFactory) Pool() *MockPool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pool
}

// Conns returns every physical mock connection created so far.
func (f *MockFactory) Conns() []*MockConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*MockConn, len(f.conns))
	copy(out, f.conns)
	return out
}

// NewPool implements ClientFactory.
func (f *MockFactory) NewPool(_ context.Context, _ map[string]string) (ClientPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool := &MockPool{factory: f}
	f.pool = pool
	return pool, nil
}

// NewConn implements ClientFactory.
func (f *MockFactory) NewConn(_ context.Context, _ map[string]string) (ClientConn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.newConnLocked(), nil
}

func (f *MockFactory) newConnLocked() *MockConn {
	f.nextConnID++
	conn := &MockConn{id: f.nextConnID, factory: f}
	f.conns = append(f.conns, conn)
	return conn
}

// dispatch records the statement and applies the first matching script.
func (f *MockFactory) dispatch(conn *MockConn, sql string, args []any) (ClientRows, error) {
	f.mu.Lock()
	f.queries = append(f.queries, MockQuery{SQL: sql, Args: args, ConnID: conn.id})
	scripts := f.scripts
	f.mu.Unlock()
	for _, s := range scripts {
		if strings.Contains(sql, s.substr) {
			if s.err != nil {
				return nil, s.err
			}
			return newMockRows(s.rows), nil
		}
	}
	return newMockRows(nil), nil
}

// MockPool is the pool object handed to the connection manager. Released
// physical connections are reused by later acquisitions, so handle
// deduplication paths are exercised naturally.
type MockPool struct {
	factory *MockFactory

	mu     sync.Mutex
	idle   []*MockConn
	closed bool
}

// Acquire implements ClientPool.
func (p *MockPool) Acquire(_ context.Context) (PooledClientConn, error) {
	p.factory.mu.Lock()
	acquireErr := p.factory.acquireErr
	p.factory.mu.Unlock()
	if acquireErr != nil {
		return nil, acquireErr
	}

	p.mu.Lock()
	var conn *MockConn
	if n := len(p.idle); n > 0 {
		conn = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.mu.Unlock()
	if conn == nil {
		p.factory.mu.Lock()
		conn = p.factory.newConnLocked()
		p.factory.mu.Unlock()
	}
	return &mockPooledConn{pool: p, conn: conn}, nil
}

// Close implements ClientPool.
func (p *MockPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Closed reports whether Close was called.
func (p *MockPool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Raw implements ClientPool.
func (p *MockPool) Raw() any { return p }

func (p *MockPool) release(conn *MockConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, conn)
}

// MockConn is one physical mock connection.
type MockConn struct {
	id      int
	factory *MockFactory

	mu       sync.Mutex
	closed   bool
	releases int
}

// ID returns the connection's ordinal.
func (c *MockConn) ID() int { return c.id }

// Releases returns how many times a release token for this connection was
// invoked.
func (c *MockConn) Releases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.releases
}

// Closed reports whether the physical connection was closed.
func (c *MockConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Query implements ClientConn.
func (c *MockConn) Query(_ context.Context, sql string, args ...any) (ClientRows, error) {
	return c.factory.dispatch(c, sql, args)
}

// Close implements ClientConn.
func (c *MockConn) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Raw implements ClientConn.
func (c *MockConn) Raw() any { return c }

// mockPooledConn is one checkout of a MockConn.
type mockPooledConn struct {
	pool *MockPool
	conn *MockConn
}

func (c *mockPooledConn) Query(ctx context.Context, sql string, args ...any) (ClientRows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *mockPooledConn) Close(ctx context.Context) error { return c.conn.Close(ctx) }
func (c *mockPooledConn) Raw() any                        { return c.conn }

func (c *mockPooledConn) Release() {
	c.conn.mu.Lock()
	c.conn.releases++
	c.conn.mu.Unlock()
	c.pool.release(c.conn)
}

// mockRows replays scripted rows. Column order is the sorted key set of the
// first row.
type mockRows struct {
	columns []string
	rows    []Row
	index   int
}

func newMockRows(rows []Row) *mockRows {
	r := &mockRows{rows: rows, index: -1}
	if len(rows) > 0 {
		for col := range rows[0] {
			r.columns = append(r.columns, col)
		}
		sort.Strings(r.columns)
	}
	return r
}

func (r *mockRows) Columns() []string { return r.columns }

func (r *mockRows) Next() bool {
	r.index++
	return r.index < len(r.rows)
}

func (r *mockRows) Values() ([]any, error) {
	row := r.rows[r.index]
	values := make([]any, len(r.columns))
	for i, col := range r.columns {
		values[i] = row[col]
	}
	return values, nil
}

func (r *mockRows) Err() error { return nil }
func (r *mockRows) Close()     {}
