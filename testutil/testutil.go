// Package testutil opens throwaway migrated databases for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/charmlog"
	"github.com/benjamonnguyen/pomodo/sqlite"
)

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type TestDB struct {
	DB        *sql.DB
	Tasks     pomodo.TaskRepo
	Pomodoros pomodo.PomodoroRepo
	Settings  pomodo.SettingsRepo
	Clock     *Clock
}

// SetupTestDB migrates a fresh database file under t.TempDir and closes it on cleanup.
// Task timestamps come from the returned Clock.
func SetupTestDB(t *testing.T) TestDB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "pomodo-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, db.Migrate())

	logger := charmlog.Discard()
	clock := NewClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))
	transactor, dbGetter := txStdLib.NewTransactor(db.DB(), txStdLib.NestedTransactionsSavepoints)

	return TestDB{
		DB:        db.DB(),
		Tasks:     sqlite.NewTaskRepo(transactor, dbGetter, logger, sqlite.WithClock(clock.Now)),
		Pomodoros: sqlite.NewPomodoroRepo(transactor, dbGetter, logger),
		Settings:  sqlite.NewSettingsRepo(dbGetter, logger),
		Clock:     clock,
	}
}
