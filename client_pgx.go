package typeorm

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgx-backed client factory, registered as "pgx". pgxpool creates physical
// connections lazily, which matches the pooled connect contract: pool
// construction succeeds without touching the network.

func init() {
	RegisterClientFactory("pgx", func() (ClientFactory, error) {
		return pgxFactory{}, nil
	})
}

type pgxFactory struct{}

func (pgxFactory) NewPool(ctx context.Context, params map[string]string) (ClientPool, error) {
	cfg, err := pgxpool.ParseConfig(renderConnString(params))
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &pgxPool{pool: pool}, nil
}

func (pgxFactory) NewConn(ctx context.Context, params map[string]string) (ClientConn, error) {
	conn, err := pgx.Connect(ctx, renderConnString(params))
	if err != nil {
		return nil, err
	}
	return &pgxConn{conn: conn}, nil
}

type pgxPool struct {
	pool *pgxpool.Pool
}

func (p *pgxPool) Acquire(ctx context.Context) (PooledClientConn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxPooledConn{conn: conn}, nil
}

func (p *pgxPool) Close()   { p.pool.Close() }
func (p *pgxPool) Raw() any { return p.pool }

// pgxPooledConn wraps one checkout. Raw returns the underlying *pgx.Conn so
// two checkouts of the same physical connection compare equal.
type pgxPooledConn struct {
	conn *pgxpool.Conn
}

func (c *pgxPooledConn) Query(ctx context.Context, sql string, args ...any) (ClientRows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (c *pgxPooledConn) Close(ctx context.Context) error { return c.conn.Conn().Close(ctx) }
func (c *pgxPooledConn) Raw() any                        { return c.conn.Conn() }
func (c *pgxPooledConn) Release()                        { c.conn.Release() }

type pgxConn struct {
	conn *pgx.Conn
}

func (c *pgxConn) Query(ctx context.Context, sql string, args ...any) (ClientRows, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &pgxRows{rows: rows}, nil
}

func (c *pgxConn) Close(ctx context.Context) error { return c.conn.Close(ctx) }
func (c *pgxConn) Raw() any                        { return c.conn }

type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Columns() []string {
	fields := r.rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return columns
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Values() ([]any, error) { return r.rows.Values() }
func (r *pgxRows) Err() error             { return r.rows.Err() }
func (r *pgxRows) Close()                 { r.rows.Close() }
