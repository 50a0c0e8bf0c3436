package sqlite3

import (
	"fmt"
	"time"

	"github.com/tomyedwab/dbfacade/database"
	"github.com/tomyedwab/dbfacade/types"
)

const (
	defaultPagesPerStep = 5
	defaultBackupSleep  = 250 * time.Millisecond
)

// BackupConfig holds the options for Backup.
type BackupConfig struct {
	PagesPerStep int           // Optional, defaults to 5
	Sleep        time.Duration // Optional, pause between steps, defaults to 250ms
	// Progress is called after every step with the number of pages left and
	// the total page count. Optional.
	Progress func(remaining, total int)
}

// Backup copies the main database of db into the file at path using the
// online backup API. The source stays usable while the copy runs; steps that
// find it busy or locked are retried after the configured pause.
func Backup(db *database.Connection, path string, config BackupConfig) error {
	src, ok := db.Adapter().(*Connection)
	if !ok {
		return fmt.Errorf("sqlite3: backup needs a sqlite3 connection, got %q: %w", db.AdapterName(), types.ErrAdapterMismatch)
	}
	pages := config.PagesPerStep
	if pages == 0 {
		pages = defaultPagesPerStep
	}
	sleep := config.Sleep
	if sleep == 0 {
		sleep = defaultBackupSleep
	}

	dest, err := openConn(path, Config{})
	if err != nil {
		return err
	}
	defer dest.Close()

	bk, err := dest.Backup("main", src.conn, "main")
	if err != nil {
		return wrapError("backup", "", err)
	}

	logger := db.Logger()
	logger.Info("backup started", "path", path, "pages_per_step", pages)
	for {
		done, err := bk.Step(pages)
		if err != nil {
			bk.Finish()
			return wrapError("backup", "", err)
		}
		remaining, total := bk.Remaining(), bk.PageCount()
		if config.Progress != nil {
			config.Progress(remaining, total)
		}
		logger.Debug("backup step", "remaining", remaining, "total", total)
		if done {
			break
		}
		time.Sleep(sleep)
	}
	if err := bk.Finish(); err != nil {
		return wrapError("backup", "", err)
	}
	logger.Info("backup finished", "path", path)
	return nil
}
