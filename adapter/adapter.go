package adapter

import "github.com/tomyedwab/dbfacade/bind"

// Connection is an open session with a backend.
type Connection interface {
	Prepare(sql string) (Statement, error)
	Begin() error
	Commit() error
	Rollback() error
	// Name identifies the backend, e.g. "sqlite3".
	Name() string
	Close() error
}

// Statement is a prepared statement. The bind.Binder primitives fill
// placeholders left to right.
type Statement interface {
	bind.Binder

	// PreBind is called before n values are bound. It fails, without
	// touching existing bindings, when n differs from ParameterCount.
	PreBind(n int) error
	// PostBind is called after binding with the number of values that were
	// bound successfully. A partial bind is cleared.
	PostBind(n, completed int)

	// Step advances to the next row. A finished statement yields an empty
	// Result.
	Step() (Result, error)
	// Reset rewinds the statement so the next Step starts over. Bindings are
	// kept.
	Reset() error
	ClearBindings() error

	ParameterCount() int
	SQL() string

	// Release drops the caller's reference. The native statement is finalized
	// once every holder, including Results, has released it.
	Release() error
}

// Result is a single row produced by Statement.Step.
//
// The typed getters write to out and return true, or return false and leave
// out untouched when the column is NULL.
type Result interface {
	Empty() bool
	ColumnCount() int
	ColumnName(i int) (string, error)
	// ColumnIndex returns -1 when no column has that name.
	ColumnIndex(name string) int
	IsNull(i int) (bool, error)

	Int64(i int, out *int64) (bool, error)
	Uint64(i int, out *uint64) (bool, error)
	Float64(i int, out *float64) (bool, error)
	Text(i int, out *string) (bool, error)
	Blob(i int, out *[]byte) (bool, error)
	Value(i int, out *bind.Value) (bool, error)

	// InsertID returns the id generated by the most recent insert on the
	// connection. seq names the sequence on backends that need one.
	InsertID(seq string) (int64, error)

	Release() error
}
