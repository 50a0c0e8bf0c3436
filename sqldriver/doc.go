// Package sqldriver adapts any database/sql/driver implementation to the
// database facade.
//
// Statements are written with '?' placeholders; for dialects such as
// PostgreSQL they are rewritten with sqlx.Rebind before being prepared. The
// rewrite does not look inside string literals, so a literal '?' must be
// passed as a bound value instead.
//
// Three backends are wired in:
//
//	db, err := sqldriver.OpenModernc("file:app.db?_pragma=foreign_keys(1)", sqldriver.Config{})
//	db, err := sqldriver.OpenPostgres("postgres://app@localhost:5432/app", sqldriver.Config{})
//	db, err := sqldriver.OpenMySQL(ctx, mysqlConfig, sqldriver.Config{})
//
// Transactions go through the driver's BeginTx, so Begin, Commit and Rollback
// must be used instead of literal BEGIN and COMMIT statements. Savepoints
// opened by database.Connection.InTransaction work inside them.
package sqldriver
