// Package sqlite3 is the SQLite backend of the database facade, built on
// github.com/mattn/go-sqlite3 (cgo).
//
// Open returns a *database.Connection:
//
//	db, err := sqlite3.Open("app.db", sqlite3.Config{Mode: sqlite3.ReadWriteCreate, BusyTimeout: time.Second})
//
// Statements are prepared on the native connection and stepped row by row.
// Transactions run the literal statements BEGIN, COMMIT and ROLLBACK, so they
// can be mixed freely with SQL issued through Exec. Native failures surface as
// *types.DriverError with the SQLite primary and extended result codes.
//
// Backup copies a live database to a file with the SQLite online backup API.
package sqlite3
