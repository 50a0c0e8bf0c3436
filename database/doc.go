// Package database is the backend-agnostic face of the module: a Connection
// prepares Statements, a Statement steps to Results, and a Result hands out
// typed, null-aware column values. Backends plug in through the adapter
// package; see the sqlite3 and sqldriver packages for the bundled ones.
//
//	db, err := sqlite3.Open("app.db", sqlite3.Config{})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	n, err := database.Value[int](db, "SELECT COUNT(*) FROM person WHERE age < ?", 40)
package database
