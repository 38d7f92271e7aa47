package typeorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriver_ValidatesOptions(t *testing.T) {
	_, err := NewDriver(&Options{Database: "app"})
	require.Error(t, err)

	_, err = NewDriver(&Options{Host: "localhost"})
	require.Error(t, err)
}

func TestNewDriver_UnknownClientPackage(t *testing.T) {
	_, err := NewDriver(&Options{
		Host:          "localhost",
		Database:      "app",
		ClientPackage: "no-such-client",
	})
	assert.ErrorIs(t, err, ErrDriverPackageNotInstalled)
}

func TestRegisteredClientFactories_IncludesPgx(t *testing.T) {
	assert.Contains(t, RegisteredClientFactories(), "pgx")
}

func TestEscapeNames(t *testing.T) {
	d := newMockDriver(t, NewMockFactory(), true)

	assert.Equal(t, `"user"`, d.EscapeColumnName("user"))
	assert.Equal(t, `"order"`, d.EscapeTableName("order"))
	assert.Equal(t, `"u"`, d.EscapeAliasName("u"))
}

func TestPing(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	require.NoError(t, d.Ping(ctx))

	recorded := factory.Queries()
	require.Len(t, recorded, 1)
	assert.Equal(t, "SELECT 1", recorded[0].SQL)

	// Ping releases its connection.
	assert.Equal(t, 0, d.manager.trackedCount())
}

func TestClearDatabase_Pooled(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory().OnQuery("pg_tables",
		Row{"query": `DROP TABLE IF EXISTS "users" CASCADE;`},
		Row{"query": `DROP TABLE IF EXISTS "orders" CASCADE;`},
	)
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	require.NoError(t, d.ClearDatabase(ctx))

	recorded := factory.Queries()
	require.Len(t, recorded, 3)
	assert.Contains(t, recorded[0].SQL, "pg_tables")

	// Drops run concurrently in pooled mode, so only the set is stable.
	drops := []string{recorded[1].SQL, recorded[2].SQL}
	assert.ElementsMatch(t, []string{
		`DROP TABLE IF EXISTS "users" CASCADE;`,
		`DROP TABLE IF EXISTS "orders" CASCADE;`,
	}, drops)

	assert.Equal(t, 0, d.manager.trackedCount(), "every drop connection is released")
}

func TestClearDatabase_Single(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory().OnQuery("pg_tables",
		Row{"query": `DROP TABLE IF EXISTS "users" CASCADE;`},
		Row{"query": `DROP TABLE IF EXISTS "orders" CASCADE;`},
	)
	d := newMockDriver(t, factory, false)
	require.NoError(t, d.Connect(ctx))

	require.NoError(t, d.ClearDatabase(ctx))

	recorded := factory.Queries()
	require.Len(t, recorded, 3)
	// One physical connection executes everything in submission order.
	assert.Equal(t, `DROP TABLE IF EXISTS "users" CASCADE;`, recorded[1].SQL)
	assert.Equal(t, `DROP TABLE IF EXISTS "orders" CASCADE;`, recorded[2].SQL)
	for _, q := range recorded {
		assert.Equal(t, 1, q.ConnID)
	}
}

func TestClearDatabase_EmptySchema(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	require.NoError(t, d.ClearDatabase(ctx))
	assert.Len(t, factory.Queries(), 1)
}

func TestNativeInterface_Pooled(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, true)
	require.NoError(t, d.Connect(ctx))

	handles := d.NativeInterface()
	assert.Same(t, factory, handles.Factory.(*MockFactory))
	assert.Same(t, factory.Pool(), handles.Pool.(*MockPool))
	assert.Nil(t, handles.Connection)
}

func TestNativeInterface_Single(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory()
	d := newMockDriver(t, factory, false)
	require.NoError(t, d.Connect(ctx))

	handles := d.NativeInterface()
	assert.Nil(t, handles.Pool)
	assert.Same(t, factory.Conns()[0], handles.Connection.(*MockConn))
}

func TestSchemaBuilder_HasTable(t *testing.T) {
	ctx := context.Background()
	factory := NewMockFactory().
		OnQuery(`"tablename" = $1`, Row{"tablename": "users"})
	d := newMockDriver(t, factory, true)
	conn := beginConn(t, d)
	defer d.ReleaseConnection(conn)

	builder := d.CreateSchemaBuilder(conn)
	exists, err := builder.HasTable(ctx, "users")
	require.NoError(t, err)
	assert.True(t, exists)

	recorded := factory.Queries()
	require.Len(t, recorded, 1)
	assert.Equal(t, []any{"users"}, recorded[0].Args)
}

func TestSchemaBuilder_HasTableMissing(t *testing.T) {
	ctx := context.Background()
	d := newMockDriver(t, NewMockFactory(), true)
	conn := beginConn(t, d)
	defer d.ReleaseConnection(conn)

	exists, err := d.CreateSchemaBuilder(conn).HasTable(ctx, "ghosts")
	require.NoError(t, err)
	assert.False(t, exists)
}
