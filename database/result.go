package database

import (
	"github.com/tomyedwab/dbfacade/adapter"
	"github.com/tomyedwab/dbfacade/types"
)

// Result is one row produced by Statement.Step. The zero Result is empty.
//
// A Result keeps the statement that produced it alive until Release is
// called; with SQLite an unreleased Result may hold a read lock that blocks
// schema changes such as DROP TABLE.
type Result struct {
	impl adapter.Result
}

// Adapter returns the backend result, or nil for a zero or moved Result.
func (r *Result) Adapter() adapter.Result {
	if r == nil {
		return nil
	}
	return r.impl
}

// Empty reports whether the Result holds no row.
func (r *Result) Empty() bool {
	return r == nil || r.impl == nil || r.impl.Empty()
}

func (r *Result) check() error {
	if r.Empty() {
		return types.ErrEmptyResult
	}
	return nil
}

func (r *Result) checkColumn(i int) error {
	if err := r.check(); err != nil {
		return err
	}
	if n := r.impl.ColumnCount(); i < 0 || i >= n {
		return &types.ColumnError{Kind: types.ErrColumnIndexOutOfRange, Index: i, Count: n}
	}
	return nil
}

func (r *Result) ColumnCount() (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	return r.impl.ColumnCount(), nil
}

func (r *Result) ColumnName(i int) (string, error) {
	if err := r.checkColumn(i); err != nil {
		return "", err
	}
	return r.impl.ColumnName(i)
}

// ColumnIndex returns the index of the column called name.
func (r *Result) ColumnIndex(name string) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	i := r.impl.ColumnIndex(name)
	if i < 0 {
		return 0, &types.ColumnError{Kind: types.ErrColumnNotFound, Name: name}
	}
	return i, nil
}

// HasColumn reports whether a column called name exists. It is false for an
// empty Result.
func (r *Result) HasColumn(name string) bool {
	if r.Empty() {
		return false
	}
	return r.impl.ColumnIndex(name) >= 0
}

func (r *Result) IsNull(i int) (bool, error) {
	if err := r.checkColumn(i); err != nil {
		return false, err
	}
	return r.impl.IsNull(i)
}

func (r *Result) IsNullNamed(name string) (bool, error) {
	i, err := r.ColumnIndex(name)
	if err != nil {
		return false, err
	}
	return r.IsNull(i)
}

// InsertID returns the id generated by the most recent insert on the
// connection that produced r. It also works on the empty Result of an
// INSERT.
func (r *Result) InsertID() (int64, error) {
	return r.SequenceInsertID("")
}

// SequenceInsertID is InsertID for backends that read the id from a named
// sequence. SQLite ignores seq.
func (r *Result) SequenceInsertID(seq string) (int64, error) {
	if r == nil || r.impl == nil {
		return 0, types.ErrEmptyResult
	}
	return r.impl.InsertID(seq)
}

// Move returns a Result holding r's row and leaves r empty.
func (r *Result) Move() *Result {
	if r == nil {
		return &Result{}
	}
	m := &Result{impl: r.impl}
	r.impl = nil
	return m
}

// Release lets go of the underlying statement and leaves r empty.
func (r *Result) Release() error {
	if r == nil || r.impl == nil {
		return nil
	}
	err := r.impl.Release()
	r.impl = nil
	return err
}
