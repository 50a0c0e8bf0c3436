package database

import (
	"iter"

	"github.com/tomyedwab/dbfacade/adapter"
	"github.com/tomyedwab/dbfacade/bind"
	"github.com/tomyedwab/dbfacade/types"
)

// Statement is a prepared statement. The zero Statement, and any Statement
// after Close or Move, is invalid.
type Statement struct {
	impl adapter.Statement
	conn *Connection
}

func (s *Statement) valid() error {
	if s == nil || s.impl == nil {
		return types.ErrInvalidStatement
	}
	return nil
}

// Bind replaces the statement's bindings with args, one value per
// placeholder. A count mismatch fails before anything is sent to the
// backend; a value that fails to bind leaves the statement with no
// bindings.
func (s *Statement) Bind(args ...any) error {
	if err := s.valid(); err != nil {
		return err
	}
	n := len(args)
	if err := s.impl.PreBind(n); err != nil {
		return err
	}
	completed, err := bind.All(s.impl, args...)
	s.impl.PostBind(n, completed)
	return err
}

// BindNext binds v to the next unbound placeholder, keeping earlier
// bindings.
func (s *Statement) BindNext(v any) error {
	if err := s.valid(); err != nil {
		return err
	}
	return bind.Bind(s.impl, v)
}

// BindNull binds NULL to the next unbound placeholder.
func (s *Statement) BindNull() error {
	return s.BindNext(nil)
}

// Reset rewinds the statement. With args, existing bindings are cleared and
// args bound in their place; without, bindings are kept.
func (s *Statement) Reset(args ...any) error {
	if err := s.valid(); err != nil {
		return err
	}
	if err := s.impl.Reset(); err != nil {
		return err
	}
	if len(args) > 0 {
		return s.Bind(args...)
	}
	return nil
}

// Rebind rewinds the statement, clears every binding and binds args.
func (s *Statement) Rebind(args ...any) error {
	if err := s.valid(); err != nil {
		return err
	}
	if err := s.impl.Reset(); err != nil {
		return err
	}
	if err := s.impl.ClearBindings(); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return s.Bind(args...)
}

// Step executes the statement up to the next row. When no rows remain the
// Result is empty.
func (s *Statement) Step() (*Result, error) {
	if err := s.valid(); err != nil {
		return nil, err
	}
	impl, err := s.impl.Step()
	if err != nil {
		return nil, err
	}
	return &Result{impl: impl}, nil
}

// Rows steps through the remaining rows. Iteration stops at the first empty
// Result or error.
//
//	for row, err := range stmt.Rows() {
//	    if err != nil {
//	        return err
//	    }
//	    name, err := database.Get[string](row, 0)
//	    ...
//	}
func (s *Statement) Rows() iter.Seq2[*Result, error] {
	return func(yield func(*Result, error) bool) {
		for {
			res, err := s.Step()
			if err != nil {
				yield(nil, err)
				return
			}
			if res.Empty() {
				res.Release()
				return
			}
			if !yield(res, nil) {
				return
			}
		}
	}
}

// SQL returns the statement text.
func (s *Statement) SQL() string {
	if s.valid() != nil {
		return ""
	}
	return s.impl.SQL()
}

// ParameterCount returns the number of placeholders.
func (s *Statement) ParameterCount() int {
	if s.valid() != nil {
		return 0
	}
	return s.impl.ParameterCount()
}

// Move returns a Statement owning s's prepared statement and leaves s
// invalid.
func (s *Statement) Move() *Statement {
	if s == nil {
		return &Statement{}
	}
	m := &Statement{impl: s.impl, conn: s.conn}
	s.impl = nil
	return m
}

// Close releases the statement. Results it produced remain readable.
func (s *Statement) Close() error {
	if s.valid() != nil {
		return nil
	}
	err := s.impl.Release()
	s.impl = nil
	return err
}
