package sqldriver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tomyedwab/dbfacade/adapter"
	"github.com/tomyedwab/dbfacade/bind"
	"github.com/tomyedwab/dbfacade/database"
	"github.com/tomyedwab/dbfacade/types"
)

// Dialect describes the SQL flavour spoken behind a driver.
type Dialect struct {
	Name string
	// BindType is one of the sqlx bind types. Statements are written with '?'
	// placeholders and rewritten for the dialect.
	BindType int
	// InsertIDQuery returns a query, written with '?' placeholders, that
	// reads the id generated by the last insert, together with its
	// arguments.
	InsertIDQuery func(seq string) (string, []any)
}

var (
	SQLite = Dialect{
		Name:     "sqlite",
		BindType: sqlx.QUESTION,
		InsertIDQuery: func(string) (string, []any) {
			return "SELECT last_insert_rowid()", nil
		},
	}
	Postgres = Dialect{
		Name:     "postgres",
		BindType: sqlx.DOLLAR,
		InsertIDQuery: func(seq string) (string, []any) {
			if seq == "" {
				return "SELECT lastval()", nil
			}
			return "SELECT currval(?)", []any{seq}
		},
	}
	MySQL = Dialect{
		Name:     "mysql",
		BindType: sqlx.QUESTION,
		InsertIDQuery: func(string) (string, []any) {
			return "SELECT LAST_INSERT_ID()", nil
		},
	}
)

// DialectFor returns the dialect matching a database/sql driver name.
// Unknown drivers get a dialect with the sqlx bind type for that name and no
// insert id support.
func DialectFor(driverName string) Dialect {
	switch driverName {
	case "sqlite", "sqlite3":
		return SQLite
	case "postgres", "pgx", "postgresql":
		return Postgres
	case "mysql":
		return MySQL
	}
	bt := sqlx.BindType(driverName)
	if bt == sqlx.UNKNOWN {
		bt = sqlx.QUESTION
	}
	return Dialect{Name: driverName, BindType: bt}
}

// Config holds configuration options for the Open functions.
type Config struct {
	Logger *slog.Logger // Optional, defaults to slog.Default()
}

// Open opens a connection through drv and wraps it in a facade connection
// speaking dialect.
func Open(drv driver.Driver, dsn string, dialect Dialect, config Config) (*database.Connection, error) {
	conn, err := drv.Open(dsn)
	if err != nil {
		return nil, wrapError(dialect.Name, "open", "", err)
	}
	return newConnection(conn, dialect, config), nil
}

// OpenConnector is Open for drivers configured through a driver.Connector.
func OpenConnector(ctx context.Context, c driver.Connector, dialect Dialect, config Config) (*database.Connection, error) {
	conn, err := c.Connect(ctx)
	if err != nil {
		return nil, wrapError(dialect.Name, "open", "", err)
	}
	return newConnection(conn, dialect, config), nil
}

// OpenRegistered opens dsn with the database/sql driver registered as
// driverName.
func OpenRegistered(driverName, dsn string, config Config) (*database.Connection, error) {
	db, err := sql.Open(driverName, "")
	if err != nil {
		return nil, err
	}
	drv := db.Driver()
	db.Close()
	return Open(drv, dsn, DialectFor(driverName), config)
}

// OpenModernc opens a SQLite database with the pure Go modernc.org/sqlite
// driver. dsn is a file name or "file:" URI, optionally with _pragma
// parameters.
func OpenModernc(dsn string, config Config) (*database.Connection, error) {
	return OpenRegistered("sqlite", dsn, config)
}

// OpenPostgres opens a PostgreSQL connection through pgx. dsn is either a URL
// or a keyword/value connection string.
func OpenPostgres(dsn string, config Config) (*database.Connection, error) {
	return Open(stdlib.GetDefaultDriver(), dsn, Postgres, config)
}

// OpenMySQL opens a MySQL connection described by cfg.
func OpenMySQL(ctx context.Context, cfg *mysql.Config, config Config) (*database.Connection, error) {
	c, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, wrapError(MySQL.Name, "open", "", err)
	}
	return OpenConnector(ctx, c, MySQL, config)
}

func newConnection(conn driver.Conn, dialect Dialect, config Config) *database.Connection {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return database.NewConnection(&Connection{conn: conn, dialect: dialect}, database.Config{Logger: logger})
}

// --- Connection implementation ---

// Connection implements adapter.Connection over a database/sql/driver
// connection.
type Connection struct {
	conn    driver.Conn
	dialect Dialect
	tx      driver.Tx
}

var _ adapter.Connection = (*Connection)(nil)

func (c *Connection) Name() string { return c.dialect.Name }

// Conn exposes the underlying driver connection.
func (c *Connection) Conn() driver.Conn { return c.conn }

func (c *Connection) Dialect() Dialect { return c.dialect }

func (c *Connection) Prepare(sql string) (adapter.Statement, error) {
	query := rebind(c.dialect.BindType, sql)

	var st driver.Stmt
	var err error
	if pc, ok := c.conn.(driver.ConnPrepareContext); ok {
		st, err = pc.PrepareContext(context.Background(), query)
	} else {
		st, err = c.conn.Prepare(query)
	}
	if err != nil {
		return nil, c.wrapError("prepare", sql, err)
	}

	n := st.NumInput()
	if n < 0 {
		n = adapter.CountPlaceholders(query)
	}
	return adapter.NewStatement(adapter.StmtConfig{
		SQL:            sql,
		Stmt:           st,
		ParameterCount: n,
		InsertID:       c.lastInsertID,
		WrapError:      c.wrapError,
	}), nil
}

// rebind rewrites '?' placeholders in the style of an sqlx bind type. Unlike
// sqlx.Rebind it leaves question marks inside literals and comments alone.
func rebind(bindType int, query string) string {
	var format string
	switch bindType {
	case sqlx.DOLLAR:
		format = "$%d"
	case sqlx.NAMED:
		format = ":arg%d"
	case sqlx.AT:
		format = "@p%d"
	default:
		return query
	}
	return adapter.Rebind(query, func(n int) string { return fmt.Sprintf(format, n) })
}

func (c *Connection) Begin() error {
	if c.tx != nil {
		return fmt.Errorf("%s: begin: transaction already in progress", c.dialect.Name)
	}
	var tx driver.Tx
	var err error
	if bt, ok := c.conn.(driver.ConnBeginTx); ok {
		tx, err = bt.BeginTx(context.Background(), driver.TxOptions{})
	} else {
		tx, err = c.conn.Begin() //nolint:staticcheck // fallback for drivers without BeginTx
	}
	if err != nil {
		return c.wrapError("begin", "", err)
	}
	c.tx = tx
	return nil
}

func (c *Connection) Commit() error {
	tx, err := c.takeTx("commit")
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return c.wrapError("commit", "", err)
	}
	return nil
}

func (c *Connection) Rollback() error {
	tx, err := c.takeTx("rollback")
	if err != nil {
		return err
	}
	if err := tx.Rollback(); err != nil {
		return c.wrapError("rollback", "", err)
	}
	return nil
}

func (c *Connection) takeTx(op string) (driver.Tx, error) {
	if c.tx == nil {
		return nil, fmt.Errorf("%s: %s: no transaction in progress", c.dialect.Name, op)
	}
	tx := c.tx
	c.tx = nil
	return tx, nil
}

func (c *Connection) Close() error {
	if c.tx != nil {
		c.tx.Rollback()
		c.tx = nil
	}
	if err := c.conn.Close(); err != nil {
		return c.wrapError("close", "", err)
	}
	return nil
}

func (c *Connection) lastInsertID(seq string) (int64, error) {
	if c.dialect.InsertIDQuery == nil {
		return 0, fmt.Errorf("%s: insert id: %w", c.dialect.Name, types.ErrUnsupportedValue)
	}
	query, args := c.dialect.InsertIDQuery(seq)
	st, err := c.Prepare(query)
	if err != nil {
		return 0, err
	}
	defer st.Release()

	if err := st.PreBind(len(args)); err != nil {
		return 0, err
	}
	completed, err := bind.All(st, args...)
	st.PostBind(len(args), completed)
	if err != nil {
		return 0, err
	}

	res, err := st.Step()
	if err != nil {
		return 0, err
	}
	defer res.Release()
	if res.Empty() {
		return 0, types.ErrEmptyResult
	}
	var id int64
	ok, err := res.Int64(0, &id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &types.ValueError{Kind: types.ErrNullValueNotAllowed, Target: "int64", Reason: "no insert id"}
	}
	return id, nil
}

func (c *Connection) wrapError(op, query string, err error) error {
	return wrapError(c.dialect.Name, op, query, err)
}

// wrapError converts driver errors into *types.DriverError, keeping the
// native error codes where the driver exposes them.
func wrapError(dialect, op, query string, err error) error {
	de := &types.DriverError{Op: dialect + ": " + op, Message: err.Error(), Query: query, Err: err}

	var myErr *mysql.MySQLError
	var pgErr *pgconn.PgError
	var coded interface{ Code() int }
	switch {
	case errors.As(err, &myErr):
		de.Code = int(myErr.Number)
		de.Message = myErr.Message
	case errors.As(err, &pgErr):
		de.Message = fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	case errors.As(err, &coded):
		// SQLite: the low byte is the primary result code.
		de.ExtendedCode = coded.Code()
		de.Code = de.ExtendedCode & 0xff
	}
	return de
}
