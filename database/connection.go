package database

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tomyedwab/dbfacade/adapter"
	"github.com/tomyedwab/dbfacade/types"
)

// Config holds configuration options for a Connection.
type Config struct {
	Logger *slog.Logger // Optional, defaults to slog.Default()
}

// Connection is a session with a database, reached through a backend
// adapter. A Connection is not safe for concurrent use.
type Connection struct {
	impl   adapter.Connection
	logger *slog.Logger

	// savepoints holds the names of the open nested InTransaction scopes.
	savepoints []string
	inTx       bool
}

// NewConnection wraps a backend connection. It is normally called by a
// backend's Open function.
func NewConnection(impl adapter.Connection, config Config) *Connection {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{
		impl:   impl,
		logger: logger.With("adapter", impl.Name()),
	}
}

func (c *Connection) valid() error {
	if c == nil || c.impl == nil {
		return types.ErrInvalidConnection
	}
	return nil
}

// Adapter returns the backend connection.
func (c *Connection) Adapter() adapter.Connection {
	if c == nil {
		return nil
	}
	return c.impl
}

// AdapterName returns the name of the backend in use, e.g. "sqlite3".
func (c *Connection) AdapterName() string {
	if c.valid() != nil {
		return ""
	}
	return c.impl.Name()
}

// Logger returns the logger the connection reports to.
func (c *Connection) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Prepare creates a statement for sql. When args are given they are bound
// immediately and must match the placeholder count.
func (c *Connection) Prepare(sql string, args ...any) (*Statement, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	impl, err := c.impl.Prepare(sql)
	if err != nil {
		c.logger.Debug("prepare failed", "sql", sql, "error", err)
		return nil, err
	}
	st := &Statement{impl: impl, conn: c}
	if len(args) > 0 {
		if err := st.Bind(args...); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

// Exec prepares sql, binds args and steps once. The returned Result holds
// the first row, if any. Statements such as INSERT yield an empty Result
// that still answers InsertID.
//
// A non-empty Result keeps the underlying statement open until it is
// released, which may hold a read lock.
func (c *Connection) Exec(sql string, args ...any) (*Result, error) {
	st, err := c.Prepare(sql, args...)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Step()
}

// Begin starts a transaction.
func (c *Connection) Begin() error {
	if err := c.valid(); err != nil {
		return err
	}
	c.logger.Debug("begin transaction")
	if err := c.impl.Begin(); err != nil {
		return err
	}
	c.inTx = true
	return nil
}

// Commit commits the current transaction.
func (c *Connection) Commit() error {
	if err := c.valid(); err != nil {
		return err
	}
	c.logger.Debug("commit transaction")
	if err := c.impl.Commit(); err != nil {
		return err
	}
	c.inTx = false
	return nil
}

// Rollback rolls back the current transaction.
func (c *Connection) Rollback() error {
	if err := c.valid(); err != nil {
		return err
	}
	c.logger.Debug("rollback transaction")
	if err := c.impl.Rollback(); err != nil {
		return err
	}
	c.inTx = false
	return nil
}

// InTransaction runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise. Calls made while a transaction is already open
// run inside a savepoint instead.
func (c *Connection) InTransaction(fn func() error) error {
	if err := c.valid(); err != nil {
		return err
	}
	if c.inTx {
		return c.inSavepoint(fn)
	}

	if err := c.Begin(); err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := c.Rollback(); rbErr != nil {
				c.logger.Warn("rollback failed", "error", rbErr)
			}
		}
	}()

	if err := fn(); err != nil {
		return err
	}
	if err := c.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (c *Connection) inSavepoint(fn func() error) error {
	name := "sp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := c.execSQL("SAVEPOINT " + name); err != nil {
		return err
	}
	c.savepoints = append(c.savepoints, name)
	c.logger.Debug("savepoint", "name", name, "depth", len(c.savepoints))

	released := false
	defer func() {
		c.savepoints = c.savepoints[:len(c.savepoints)-1]
		if !released {
			if err := c.execSQL("ROLLBACK TO " + name); err != nil {
				c.logger.Warn("rollback to savepoint failed", "name", name, "error", err)
			}
			if err := c.execSQL("RELEASE " + name); err != nil {
				c.logger.Warn("release savepoint failed", "name", name, "error", err)
			}
		}
	}()

	if err := fn(); err != nil {
		return err
	}
	if err := c.execSQL("RELEASE " + name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	released = true
	return nil
}

func (c *Connection) execSQL(sql string) error {
	res, err := c.Exec(sql)
	if err != nil {
		return err
	}
	return res.Release()
}

// Close closes the connection. Statements and Results must be released
// first.
func (c *Connection) Close() error {
	if err := c.valid(); err != nil {
		return err
	}
	err := c.impl.Close()
	c.impl = nil
	return err
}

// Value runs sql and returns the single column of its first row.
func Value[T any](c *Connection, sql string, args ...any) (T, error) {
	var zero T
	res, err := c.singleColumn(sql, args...)
	if err != nil {
		return zero, err
	}
	defer res.Release()
	return Get[T](res, 0)
}

// OptionalValue is like Value, but reports false instead of failing when the
// value is NULL.
func OptionalValue[T any](c *Connection, sql string, args ...any) (T, bool, error) {
	var zero T
	res, err := c.singleColumn(sql, args...)
	if err != nil {
		return zero, false, err
	}
	defer res.Release()
	return GetOptional[T](res, 0)
}

func (c *Connection) singleColumn(sql string, args ...any) (*Result, error) {
	res, err := c.Exec(sql, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.ColumnCount()
	if err != nil {
		res.Release()
		return nil, err
	}
	if n != 1 {
		res.Release()
		return nil, fmt.Errorf("%w: %d columns in result of %q", types.ErrNotSingleColumn, n, sql)
	}
	return res, nil
}

// QueryRow runs sql and scans the first row into dst. Either every
// destination is written or none is.
func (c *Connection) QueryRow(sql string, args []any, dst ...any) error {
	res, err := c.Exec(sql, args...)
	if err != nil {
		return err
	}
	defer res.Release()
	return res.Scan(dst...)
}
