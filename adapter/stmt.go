package adapter

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"

	"github.com/tomyedwab/dbfacade/types"
)

// StmtConfig describes a prepared driver.Stmt to wrap with NewStatement.
type StmtConfig struct {
	SQL  string
	Stmt driver.Stmt
	// ParameterCount is the number of placeholders in SQL.
	ParameterCount int
	// InsertID is attached to every Result the statement produces.
	InsertID InsertIDFunc
	// WrapError translates native errors. Optional.
	WrapError func(op, query string, err error) error
}

// DriverStatement implements Statement on top of database/sql/driver. The
// query is (re)started on the first Step after a bind or Reset; each Step
// then reads one row.
type DriverStatement struct {
	Bindings

	cfg      StmtConfig
	handle   *Handle
	columns  *Columns
	rows     driver.Rows
	released bool
}

var _ Statement = (*DriverStatement)(nil)

func NewStatement(cfg StmtConfig) *DriverStatement {
	s := &DriverStatement{cfg: cfg}
	s.Expect(cfg.ParameterCount)
	s.handle = NewHandle(s.finalize)
	return s
}

func (s *DriverStatement) SQL() string { return s.cfg.SQL }

// Columns returns the column metadata, which is known after the first Step.
func (s *DriverStatement) Columns() *Columns { return s.columns }

func (s *DriverStatement) wrap(op string, err error) error {
	if s.cfg.WrapError != nil {
		return s.cfg.WrapError(op, s.cfg.SQL, err)
	}
	return &types.DriverError{Op: op, Message: err.Error(), Query: s.cfg.SQL, Err: err}
}

func (s *DriverStatement) PreBind(n int) error {
	if s.released {
		return types.ErrInvalidStatement
	}
	s.closeRows()
	return s.Bindings.PreBind(n)
}

func (s *DriverStatement) Step() (Result, error) {
	if s.released {
		return nil, types.ErrInvalidStatement
	}
	if s.rows == nil || s.Changed() {
		s.closeRows()
		rows, err := s.query(context.Background(), s.Args())
		if err != nil {
			return nil, s.wrap("step", err)
		}
		s.rows = rows
		if s.columns == nil {
			s.columns = NewColumns(rows.Columns())
		}
	}

	dest := make([]driver.Value, s.columns.Count())
	err := s.rows.Next(dest)
	if errors.Is(err, io.EOF) {
		s.closeRows()
		return NewRow(nil, s.columns, s.handle, s.cfg.InsertID), nil
	}
	if err != nil {
		s.closeRows()
		return nil, s.wrap("step", err)
	}
	for i, v := range dest {
		// Drivers may reuse byte buffers between calls to Next.
		if b, ok := v.([]byte); ok {
			dest[i] = append([]byte{}, b...)
		}
	}
	return NewRow(dest, s.columns, s.handle, s.cfg.InsertID), nil
}

func (s *DriverStatement) query(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if qc, ok := s.cfg.Stmt.(driver.StmtQueryContext); ok {
		return qc.QueryContext(ctx, args)
	}
	values := make([]driver.Value, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	return s.cfg.Stmt.Query(values) //nolint:staticcheck // fallback for drivers without QueryContext
}

func (s *DriverStatement) Reset() error {
	if s.released {
		return types.ErrInvalidStatement
	}
	s.closeRows()
	return nil
}

func (s *DriverStatement) ClearBindings() error {
	if s.released {
		return types.ErrInvalidStatement
	}
	s.closeRows()
	s.Clear()
	return nil
}

// Release gives up the statement's own reference. Further calls on the
// statement fail; Results already produced stay readable.
func (s *DriverStatement) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	return s.handle.Release()
}

func (s *DriverStatement) closeRows() {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
}

func (s *DriverStatement) finalize() error {
	s.closeRows()
	if err := s.cfg.Stmt.Close(); err != nil {
		return s.wrap("finalize", err)
	}
	return nil
}

// Exec prepares sql on c, steps it once and releases everything. It is used
// for statements such as BEGIN and COMMIT.
func Exec(c Connection, sql string) error {
	st, err := c.Prepare(sql)
	if err != nil {
		return err
	}
	defer st.Release()
	res, err := st.Step()
	if err != nil {
		return err
	}
	return res.Release()
}
