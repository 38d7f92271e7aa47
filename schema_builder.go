package typeorm

import "context"

// SchemaBuilder is the schema-building collaborator. It is constructed by
// the driver with a connection handle and talks to the database exclusively
// through the driver's Query operation; DDL generation itself lives outside
// this package.
type SchemaBuilder struct {
	driver *Driver
	conn   *DatabaseConnection
}

// CreateSchemaBuilder constructs a schema builder bound to the given
// connection.
func (d *Driver) CreateSchemaBuilder(conn *DatabaseConnection) *SchemaBuilder {
	return &SchemaBuilder{driver: d, conn: conn}
}

// Query executes a statement on the builder's connection.
func (b *SchemaBuilder) Query(ctx context.Context, sql string, params ...any) ([]Row, error) {
	return b.driver.Query(ctx, b.conn, sql, params...)
}

// HasTable reports whether a table exists in the default schema.
func (b *SchemaBuilder) HasTable(ctx context.Context, table string) (bool, error) {
	rows, err := b.Query(ctx, `SELECT "tablename" FROM "pg_tables" WHERE "schemaname" = 'public' AND "tablename" = $1`, table)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
