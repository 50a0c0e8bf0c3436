package sqldriver

import (
	"database/sql/driver"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	gosqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/dbfacade/database"
	"github.com/tomyedwab/dbfacade/internal/persons"
	"github.com/tomyedwab/dbfacade/types"
)

func openModernc(t *testing.T) *database.Connection {
	t.Helper()
	db, err := OpenModernc(":memory:", Config{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, "sqlite", DialectFor("sqlite3").Name)
	assert.Equal(t, sqlx.DOLLAR, DialectFor("pgx").BindType)
	assert.Equal(t, "mysql", DialectFor("mysql").Name)

	d := DialectFor("sqlserver")
	assert.Equal(t, "sqlserver", d.Name)
	assert.Equal(t, sqlx.AT, d.BindType)
	assert.Nil(t, d.InsertIDQuery)

	assert.Equal(t, sqlx.QUESTION, DialectFor("no-such-driver").BindType)
}

func TestInsertIDQueries(t *testing.T) {
	q, args := Postgres.InsertIDQuery("")
	assert.Equal(t, "SELECT lastval()", q)
	assert.Empty(t, args)

	q, args = Postgres.InsertIDQuery("person_id_seq")
	assert.Equal(t, "SELECT $1", sqlx.Rebind(Postgres.BindType, "SELECT ?"))
	assert.Equal(t, "SELECT currval($1)", sqlx.Rebind(Postgres.BindType, q))
	assert.Equal(t, []any{"person_id_seq"}, args)
}

func TestModerncPersons(t *testing.T) {
	db := openModernc(t)
	assert.Equal(t, "sqlite", db.AdapterName())

	f, err := persons.Populate(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.JohnDoe.ID)
	assert.Equal(t, int64(3), f.AndersSvensson.ID)

	n, err := database.Value[int](db, "SELECT COUNT(*) FROM person WHERE age > ?", 40)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	spouse, ok, err := database.OptionalValue[int64](db, "SELECT spouse_id FROM person WHERE id = ?", f.JohnDoe.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.JaneDoe.ID, spouse)

	_, err = db.Exec("SELECT * FROM person WHERE id = ?", 1, 2)
	assert.ErrorIs(t, err, types.ErrTooManyParameters)

	st, err := db.Prepare("SELECT name FROM person ORDER BY id")
	require.NoError(t, err)
	defer st.Close()
	var names []string
	for row, err := range st.Rows() {
		require.NoError(t, err)
		name, err := database.Get[string](row, 0)
		require.NoError(t, err)
		names = append(names, name)
		row.Release()
	}
	assert.Equal(t, []string{"John Doe", "Jane Doe", "Anders Svensson"}, names)
}

func TestModerncTransactions(t *testing.T) {
	db := openModernc(t)
	_, err := persons.Populate(db)
	require.NoError(t, err)

	count := func() int {
		n, err := database.Value[int](db, "SELECT COUNT(*) FROM person")
		require.NoError(t, err)
		return n
	}

	require.NoError(t, db.Begin())
	res, err := db.Exec("INSERT INTO person (name, age) VALUES (?, ?)", "Donald Duck", 86)
	require.NoError(t, err)
	id, err := res.InsertID()
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	require.NoError(t, db.Rollback())
	assert.Equal(t, persons.Count, count())

	assert.Error(t, db.Commit())

	err = db.InTransaction(func() error {
		if _, err := db.Exec("INSERT INTO person (name, age) VALUES ('Kept', 1)"); err != nil {
			return err
		}
		inner := db.InTransaction(func() error {
			if _, err := db.Exec("INSERT INTO person (name, age) VALUES ('Dropped', 2)"); err != nil {
				return err
			}
			return errors.New("undo")
		})
		assert.EqualError(t, inner, "undo")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, persons.Count+1, count())
}

func TestModerncDriverError(t *testing.T) {
	db := openModernc(t)
	_, err := persons.Populate(db)
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO person (name) VALUES ('Nobody')")
	var de *types.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 19, de.Code) // SQLITE_CONSTRAINT
	assert.Equal(t, "sqlite: step", de.Op)

	_, err = db.Exec("SELECT FROM WHERE")
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Op, "sqlite: ")
	assert.Equal(t, "SELECT FROM WHERE", de.Query)
}

func TestDollarPlaceholders(t *testing.T) {
	// SQLite also understands $N, so a dollar dialect can be exercised
	// without a PostgreSQL server.
	dialect := SQLite
	dialect.BindType = sqlx.DOLLAR
	db, err := Open(&gosqlite3.SQLiteDriver{}, ":memory:", dialect, Config{})
	require.NoError(t, err)
	defer db.Close()

	st, err := db.Prepare("SELECT ? || ?, ?")
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, "SELECT ? || ?, ?", st.SQL())
	assert.Equal(t, 3, st.ParameterCount())
	require.NoError(t, st.Bind("foo", "bar", 7))
	res, err := st.Step()
	require.NoError(t, err)
	s, n, err := database.ToTuple2[string, int](res)
	require.NoError(t, err)
	assert.Equal(t, "foobar", s)
	assert.Equal(t, 7, n)
}

// recordingDriver remembers the statement text it is asked to prepare.
type recordingDriver struct {
	prepared []string
}

func (d *recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{d: d}, nil }

type recordingConn struct {
	d *recordingDriver
}

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	c.d.prepared = append(c.d.prepared, query)
	return recordingStmt{}, nil
}

func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return nil, errors.New("not supported") }

type recordingStmt struct{}

func (recordingStmt) Close() error  { return nil }
func (recordingStmt) NumInput() int { return -1 }
func (recordingStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("not supported")
}
func (recordingStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("not supported")
}

func TestRebindSkipsQuotedText(t *testing.T) {
	tests := []struct {
		dialect Dialect
		query   string
		want    string
		params  int
	}{
		{Postgres, "SELECT '?' AS q WHERE x = ?", "SELECT '?' AS q WHERE x = $1", 1},
		{Postgres, `SELECT "a?" FROM t /* ? */ WHERE a = ? AND b = ? -- ?`, `SELECT "a?" FROM t /* ? */ WHERE a = $1 AND b = $2 -- ?`, 2},
		{MySQL, "SELECT '?' AS q WHERE x = ?", "SELECT '?' AS q WHERE x = ?", 1},
		{Dialect{Name: "mssql", BindType: sqlx.AT}, "SELECT '?', ?, ?", "SELECT '?', @p1, @p2", 2},
		{Dialect{Name: "oracle", BindType: sqlx.NAMED}, "SELECT ? FROM dual", "SELECT :arg1 FROM dual", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			drv := &recordingDriver{}
			db, err := Open(drv, "", tt.dialect, Config{})
			require.NoError(t, err)
			defer db.Close()

			st, err := db.Prepare(tt.query)
			require.NoError(t, err)
			defer st.Close()
			assert.Equal(t, []string{tt.want}, drv.prepared)
			assert.Equal(t, tt.query, st.SQL())
			assert.Equal(t, tt.params, st.ParameterCount())
		})
	}
}

func TestModerncFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persons.db")
	db, err := OpenModernc(path, Config{})
	require.NoError(t, err)
	_, err = persons.Populate(db)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	x := sqlx.MustConnect("sqlite", path)
	defer x.Close()
	var names []string
	require.NoError(t, x.Select(&names, "SELECT name FROM person WHERE spouse_id IS NOT NULL ORDER BY id"))
	assert.Equal(t, []string{"John Doe", "Jane Doe"}, names)
}

func TestWrapErrorCodes(t *testing.T) {
	err := wrapError("mysql", "step", "INSERT", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	var de *types.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1062, de.Code)
	assert.Equal(t, "Duplicate entry", de.Message)

	err = wrapError("postgres", "step", "INSERT", &pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "duplicate key value (SQLSTATE 23505)", de.Message)
	assert.Equal(t, 0, de.Code)

	plain := errors.New("boom")
	err = wrapError("x", "open", "", plain)
	assert.ErrorIs(t, err, plain)
	assert.Equal(t, "x: open: boom", err.Error())
}
