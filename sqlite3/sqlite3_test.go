package sqlite3

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyedwab/dbfacade/database"
	"github.com/tomyedwab/dbfacade/internal/persons"
	"github.com/tomyedwab/dbfacade/sqldriver"
	"github.com/tomyedwab/dbfacade/types"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config Config
		want   string
	}{
		{
			name: "defaults",
			path: "app.db",
			want: "file:app.db?mode=rwc",
		},
		{
			name:   "read only with busy timeout",
			path:   "/var/lib/app.db",
			config: Config{Mode: ReadOnly, BusyTimeout: 1500 * time.Millisecond},
			want:   "file:/var/lib/app.db?_busy_timeout=1500&mode=ro",
		},
		{
			name:   "shared memory",
			path:   "cache",
			config: Config{Flags: Memory | SharedCache},
			want:   "file:cache?cache=shared&mode=memory",
		},
		{
			name:   "flags and foreign keys",
			path:   "a?b#c.db",
			config: Config{Mode: ReadWrite, Flags: FullMutex | PrivateCache, ForeignKeys: true},
			want:   "file:a%3fb%23c.db?_foreign_keys=1&_mutex=full&cache=private&mode=rw",
		},
		{
			name:   "uri passthrough",
			path:   "file:data.db?vfs=unix-dotfile",
			config: Config{Flags: URI | NoMutex},
			want:   "file:data.db?vfs=unix-dotfile&_mutex=no&mode=rwc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.path, tt.config))
		})
	}
}

func TestOpenModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.db")

	_, err := Open(path, Config{Mode: ReadOnly})
	var de *types.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 14, de.Code) // SQLITE_CANTOPEN

	_, err = Open(path, Config{Mode: ReadWrite})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 14, de.Code)

	db, err := Open(path, Config{})
	require.NoError(t, err)
	assert.Equal(t, AdapterName, db.AdapterName())
	_, err = persons.Populate(db)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ro, err := Open(path, Config{Mode: ReadOnly})
	require.NoError(t, err)
	defer ro.Close()
	n, err := database.Value[int](ro, "SELECT COUNT(*) FROM person")
	require.NoError(t, err)
	assert.Equal(t, persons.Count, n)

	_, err = ro.Exec("DELETE FROM person")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 8, de.Code) // SQLITE_READONLY
}

func TestConstraintError(t *testing.T) {
	db, err := Open(":memory:", Config{ForeignKeys: true})
	require.NoError(t, err)
	defer db.Close()
	_, err = persons.Populate(db)
	require.NoError(t, err)

	_, err = db.Exec("INSERT INTO person (name) VALUES ('Nobody')")
	var de *types.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 19, de.Code)           // SQLITE_CONSTRAINT
	assert.Equal(t, 1299, de.ExtendedCode) // SQLITE_CONSTRAINT_NOTNULL
	assert.Equal(t, "INSERT INTO person (name) VALUES ('Nobody')", de.Query)

	_, err = db.Exec("UPDATE person SET spouse_id = 1000 WHERE id = 1")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 19, de.Code)
	assert.Equal(t, 787, de.ExtendedCode) // SQLITE_CONSTRAINT_FOREIGNKEY
}

func TestPrepareError(t *testing.T) {
	db, err := Open(":memory:", Config{})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Prepare("SELECT * FROM missing")
	var de *types.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "sqlite3: prepare", de.Op)
	assert.Equal(t, 1, de.Code) // SQLITE_ERROR
	assert.Contains(t, de.Message, "no such table")
}

func TestCommitVisibleToOtherConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.db")
	db, err := Open(path, Config{BusyTimeout: time.Second})
	require.NoError(t, err)
	defer db.Close()
	_, err = persons.Populate(db)
	require.NoError(t, err)

	x := sqlx.MustConnect("sqlite3", path)
	defer x.Close()
	countOutside := func() int {
		var n int
		require.NoError(t, x.Get(&n, "SELECT COUNT(*) FROM person"))
		return n
	}

	tx, err := db.BeginTransaction()
	require.NoError(t, err)
	res, err := db.Exec("INSERT INTO person (name, age) VALUES (?, ?)", "James Smith", 103)
	require.NoError(t, err)
	require.NoError(t, res.Release())
	assert.Equal(t, persons.Count, countOutside())
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Close())
	assert.Equal(t, persons.Count+1, countOutside())
}

func TestBackup(t *testing.T) {
	db, err := Open(":memory:", Config{})
	require.NoError(t, err)
	defer db.Close()
	f, err := persons.Populate(db)
	require.NoError(t, err)

	// Enough rows to span several pages.
	for i := range 200 {
		res, err := db.Exec("INSERT INTO person (name, age) VALUES (?, ?)", f.JohnDoe.Name, i)
		require.NoError(t, err)
		res.Release()
	}

	dest := filepath.Join(t.TempDir(), "backup.db")
	var steps, lastRemaining int
	err = Backup(db, dest, BackupConfig{
		PagesPerStep: 1,
		Sleep:        time.Millisecond,
		Progress: func(remaining, total int) {
			steps++
			lastRemaining = remaining
			assert.LessOrEqual(t, remaining, total)
		},
	})
	require.NoError(t, err)
	assert.Greater(t, steps, 1)
	assert.Equal(t, 0, lastRemaining)

	x := sqlx.MustConnect("sqlite3", dest)
	defer x.Close()
	var n int
	require.NoError(t, x.Get(&n, "SELECT COUNT(*) FROM person"))
	assert.Equal(t, persons.Count+200, n)

	var spouse int64
	require.NoError(t, x.Get(&spouse, "SELECT spouse_id FROM person WHERE id = ?", f.JohnDoe.ID))
	assert.Equal(t, f.JaneDoe.ID, spouse)
}

func TestBackupAdapterMismatch(t *testing.T) {
	db, err := sqldriver.OpenModernc(":memory:", sqldriver.Config{})
	require.NoError(t, err)
	defer db.Close()

	err = Backup(db, filepath.Join(t.TempDir(), "never.db"), BackupConfig{})
	assert.ErrorIs(t, err, types.ErrAdapterMismatch)
}
