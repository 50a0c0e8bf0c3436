package sqlite3

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	gosqlite3 "github.com/mattn/go-sqlite3"

	"github.com/tomyedwab/dbfacade/adapter"
	"github.com/tomyedwab/dbfacade/database"
	"github.com/tomyedwab/dbfacade/types"
)

// AdapterName is reported by Connection.Name.
const AdapterName = "sqlite3"

// OpenMode selects read/write access and whether a missing database is
// created.
type OpenMode int

const (
	ReadWriteCreate OpenMode = iota // Open read-write, create the database if needed
	ReadOnly                        // Open read-only, fail if missing
	ReadWrite                       // Open read-write, fail if missing
)

func (m OpenMode) param() string {
	switch m {
	case ReadOnly:
		return "ro"
	case ReadWrite:
		return "rw"
	}
	return "rwc"
}

// OpenFlag adjusts how a database is opened. Flags may be combined.
type OpenFlag uint

const (
	URI          OpenFlag = 1 << iota // The path is a "file:" URI and is passed through
	Memory                            // Open an in-memory database named by the path
	NoMutex                           // Multi-thread threading mode
	FullMutex                         // Serialized threading mode
	SharedCache                       // Enable shared cache
	PrivateCache                      // Disable shared cache
)

// Config holds the options for Open.
type Config struct {
	Mode        OpenMode      // Optional, defaults to ReadWriteCreate
	Flags       OpenFlag      // Optional
	BusyTimeout time.Duration // Optional, 0 keeps the SQLite default
	ForeignKeys bool          // Enforce foreign key constraints
	Logger      *slog.Logger  // Optional, defaults to slog.Default()
}

// DSN renders path and config as a go-sqlite3 data source name.
func DSN(path string, config Config) string {
	params := url.Values{}
	if config.Flags&Memory != 0 {
		params.Set("mode", "memory")
	} else {
		params.Set("mode", config.Mode.param())
	}
	switch {
	case config.Flags&SharedCache != 0:
		params.Set("cache", "shared")
	case config.Flags&PrivateCache != 0:
		params.Set("cache", "private")
	}
	switch {
	case config.Flags&NoMutex != 0:
		params.Set("_mutex", "no")
	case config.Flags&FullMutex != 0:
		params.Set("_mutex", "full")
	}
	if config.BusyTimeout > 0 {
		params.Set("_busy_timeout", strconv.FormatInt(config.BusyTimeout.Milliseconds(), 10))
	}
	if config.ForeignKeys {
		params.Set("_foreign_keys", "1")
	}

	name := path
	if config.Flags&URI == 0 && !strings.HasPrefix(path, "file:") {
		name = "file:" + escapePath(path)
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + params.Encode()
}

// escapePath escapes the characters that would otherwise end the path part
// of a "file:" URI.
func escapePath(p string) string {
	return strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(p)
}

// Open opens the SQLite database at path. ":memory:" opens a private
// in-memory database.
func Open(path string, config Config) (*database.Connection, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := openConn(path, config)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened sqlite database", "path", path, "mode", config.Mode.param())
	return database.NewConnection(&Connection{conn: conn}, database.Config{Logger: logger}), nil
}

func openConn(path string, config Config) (*gosqlite3.SQLiteConn, error) {
	dsn := DSN(path, config)
	c, err := (&gosqlite3.SQLiteDriver{}).Open(dsn)
	if err != nil {
		return nil, wrapError("open", "", fmt.Errorf("%s: %w", path, err))
	}
	conn, ok := c.(*gosqlite3.SQLiteConn)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("sqlite3: unexpected connection type %T", c)
	}
	return conn, nil
}

// --- Connection implementation ---

// Connection implements adapter.Connection over a go-sqlite3 connection.
type Connection struct {
	conn *gosqlite3.SQLiteConn
}

var _ adapter.Connection = (*Connection)(nil)

func (c *Connection) Name() string { return AdapterName }

// Conn exposes the underlying go-sqlite3 connection.
func (c *Connection) Conn() *gosqlite3.SQLiteConn { return c.conn }

func (c *Connection) Prepare(sql string) (adapter.Statement, error) {
	st, err := c.conn.Prepare(sql)
	if err != nil {
		return nil, wrapError("prepare", sql, err)
	}
	return adapter.NewStatement(adapter.StmtConfig{
		SQL:            sql,
		Stmt:           st,
		ParameterCount: st.NumInput(),
		InsertID:       c.lastInsertID,
		WrapError:      wrapError,
	}), nil
}

func (c *Connection) Begin() error    { return adapter.Exec(c, "BEGIN") }
func (c *Connection) Commit() error   { return adapter.Exec(c, "COMMIT") }
func (c *Connection) Rollback() error { return adapter.Exec(c, "ROLLBACK") }

func (c *Connection) Close() error {
	if err := c.conn.Close(); err != nil {
		return wrapError("close", "", err)
	}
	return nil
}

// lastInsertID ignores the sequence name; SQLite tracks the last rowid per
// connection.
func (c *Connection) lastInsertID(string) (int64, error) {
	const query = "SELECT last_insert_rowid()"
	rows, err := c.conn.QueryContext(context.Background(), query, nil)
	if err != nil {
		return 0, wrapError("insert id", query, err)
	}
	defer rows.Close()
	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, types.ErrEmptyResult
		}
		return 0, wrapError("insert id", query, err)
	}
	return adapter.ToInt64(dest[0])
}

// wrapError converts go-sqlite3 errors into *types.DriverError carrying the
// SQLite result codes.
func wrapError(op, query string, err error) error {
	de := &types.DriverError{Op: "sqlite3: " + op, Message: err.Error(), Query: query, Err: err}
	var se gosqlite3.Error
	if errors.As(err, &se) {
		de.Code = int(se.Code) & 0xff
		de.ExtendedCode = int(se.ExtendedCode)
	}
	return de
}
