package typeorm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDriver(t *testing.T, factory *MockFactory, usePool bool) *Driver {
	t.Helper()
	d, err := NewDriver(&Options{
		Host:     "localhost",
		Database: "test",
		UsePool:  Bool(usePool),
	}, WithClientFactory(factory), WithQueryLogger(NopQueryLogger{}))
	require.NoError(t, err)
	return d
}

func TestConnect_PooledCreatesNoConnections(t *testing.T) {
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)

	require.NoError(t, d.Connect(context.Background()))

	require.NotNil(t, factory.Pool())
	assert.Empty(t, factory.Conns(), "pooled connect must not open physical connections")
}

func TestConnect_SingleOpensEagerly(t *testing.T) {
	factory := NewMockFactory()
	d := newMockDriver(t, factory, false)

	require.NoError(t, d.Connect(context.Background()))
	assert.Len(t, factory.Conns(), 1)
}

func TestConnect_SingleOpenFailure(t *testing.T) {
	openErr := errors.New("no route to host")
	factory := NewMockFactory().FailConnect(openErr)
	d := newMockDriver(t, factory, false)

	err := d.Connect(context.Background())
	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, openErr)
}

func TestRetrieve_BeforeConnect(t *testing.T) {
	d := newMockDriver(t, NewMockFactory(), true)

	_, err := d.RetrieveConnection(context.Background())
	assert.ErrorIs(t, err, ErrConnectionNotSet)
}

func TestRetrieve_Pooled(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	conn, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), conn.ID)
	assert.Equal(t, 1, d.manager.trackedCount())

	// A second retrieval without release checks out a different physical
	// connection and a distinct record.
	other, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)
	assert.NotSame(t, conn, other)
	assert.Equal(t, 2, d.manager.trackedCount())
}

func TestRetrieve_ReusedPhysicalConnectionGetsFreshToken(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	conn, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)
	d.ReleaseConnection(conn)

	// The mock pool hands the released physical connection back under a new
	// checkout; the record is fresh but the physical connection is the same.
	again, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)
	require.Len(t, factory.Conns(), 1)
	assert.Equal(t, 1, d.manager.trackedCount())

	d.ReleaseConnection(again)
	assert.Equal(t, 2, factory.Conns()[0].Releases(), "release token must be re-attached per checkout")
}

func TestTrack_DeduplicatesByHandleIdentity(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	conn, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)

	// A second checkout of a still-tracked physical connection reuses the
	// existing record and attaches the new checkout's release token.
	physical := factory.Conns()[0]
	again := d.manager.track(&mockPooledConn{pool: factory.Pool(), conn: physical})
	assert.Same(t, conn, again)
	assert.Equal(t, 1, d.manager.trackedCount())
}

func TestRelease_InvokesCallbackExactlyOnce(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	conn, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)

	d.ReleaseConnection(conn)
	assert.Equal(t, 0, d.manager.trackedCount())
	assert.Equal(t, 1, factory.Conns()[0].Releases())

	// Double release is a guarded no-op.
	d.ReleaseConnection(conn)
	assert.Equal(t, 1, factory.Conns()[0].Releases())
}

func TestRelease_SingleModeIsNoOp(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, false)
	require.NoError(t, d.Connect(ctx))

	conn, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)

	d.ReleaseConnection(conn)
	assert.Equal(t, 0, factory.Conns()[0].Releases())

	// The persistent connection is handed out again afterwards.
	again, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)
	assert.Same(t, conn, again)
}

func TestDisconnect_WithoutConnect(t *testing.T) {
	d := newMockDriver(t, NewMockFactory(), true)
	assert.ErrorIs(t, d.Disconnect(context.Background()), ErrConnectionNotSet)
}

func TestDisconnect_ReleasesTrackedAndClosesPool(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	_, err := d.RetrieveConnection(ctx)
	require.NoError(t, err)
	_, err = d.RetrieveConnection(ctx)
	require.NoError(t, err)

	require.NoError(t, d.Disconnect(ctx))

	assert.True(t, factory.Pool().Closed())
	assert.Equal(t, 0, d.manager.trackedCount())
	for _, conn := range factory.Conns() {
		assert.Equal(t, 1, conn.Releases())
	}

	// A second disconnect without an intervening connect fails.
	assert.ErrorIs(t, d.Disconnect(ctx), ErrConnectionNotSet)
}

func TestDisconnect_ClosesSingleConnection(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, false)
	require.NoError(t, d.Connect(ctx))

	require.NoError(t, d.Disconnect(ctx))
	assert.True(t, factory.Conns()[0].Closed())

	_, err := d.RetrieveConnection(ctx)
	assert.ErrorIs(t, err, ErrConnectionNotSet)
}

func TestAcquireFailurePropagates(t *testing.T) {
	ctx := context.Background()
	acquireErr := errors.New("pool exhausted")
	factory := NewMockFactory().FailAcquire(acquireErr)
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	_, err := d.RetrieveConnection(ctx)
	assert.ErrorIs(t, err, acquireErr)
}
