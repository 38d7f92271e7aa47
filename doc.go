// Package typeorm provides a PostgreSQL driver abstraction for Go.
//
// # Overview
//
// The package manages the physical connection lifecycle (pooled or single
// persistent connection), coordinates per-connection transaction state,
// builds parameterized insert/update/delete and closure-table statements,
// converts values between application and wire representations, and rewrites
// named placeholders into positional ones.
//
// # Quick Start
//
//	import orm "github.com/phonghoang2k/typeorm"
//
//	driver, err := orm.NewDriver(&orm.Options{
//		Host:     "localhost",
//		Username: "postgres",
//		Password: "postgres",
//		Database: "app",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := driver.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer driver.Disconnect(ctx)
//
//	conn, err := driver.RetrieveConnection(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer driver.ReleaseConnection(conn)
//
//	rows, err := driver.Query(ctx, conn, `SELECT * FROM "users" WHERE "id" = $1`, 1)
//
// # Transactions
//
// Transaction state is tracked per connection, so transactions on distinct
// pooled connections are independent:
//
//	if err := driver.BeginTransaction(ctx, conn); err != nil { ... }
//	if _, err := driver.Query(ctx, conn, stmt, args...); err != nil {
//		driver.RollbackTransaction(ctx, conn)
//		return err
//	}
//	return driver.CommitTransaction(ctx, conn)
//
// # Named Parameters
//
// EscapeQueryWithParameters rewrites :name tokens into positional $n
// placeholders, expanding slices for IN lists:
//
//	sql, args := driver.EscapeQueryWithParameters(
//		`SELECT * FROM "t" WHERE "x" = :v AND "y" IN (:list)`,
//		map[string]any{"v": 5, "list": []int{1, 2, 3}},
//	)
//
// # Transports
//
// The driver talks to the database through the ClientFactory capability
// interface. A pgx-backed adapter is registered as "pgx" and used by
// default; tests and embedders can inject MockFactory or their own adapter
// with WithClientFactory.
//
// # Observability
//
// Query logging goes through the QueryLogger collaborator (log/slog JSON by
// default, ygggo_log via UseYgggoLoggerFromEnv). OpenTelemetry tracing and
// metrics are available behind EnableTelemetry and EnableMetrics.
//
// # Configuration
//
// Options can be populated from TYPEORM_* environment variables with
// NewDriverEnv; a .env file is loaded when present.
package typeorm

// Version returns the current library version.
func Version() string { return "v0.1.0" }
