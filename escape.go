package typeorm

// Identifier escaping for the Postgres dialect. Identifiers are wrapped in
// double quotes; quote characters inside the raw name are not escaped, so
// names must come from trusted metadata, never from external input.

// EscapeColumnName quotes a column name for use in a statement.
func (d *Driver) EscapeColumnName(name string) string { return escapeIdentifier(name) }

// EscapeAliasName quotes an alias name for use in a statement.
func (d *Driver) EscapeAliasName(name string) string { return escapeIdentifier(name) }

// EscapeTableName quotes a table name for use in a statement.
func (d *Driver) EscapeTableName(name string) string { return escapeIdentifier(name) }
