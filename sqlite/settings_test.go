package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomodo"
	"github.com/benjamonnguyen/pomodo/sqlite"
	"github.com/benjamonnguyen/pomodo/testutil"
)

func TestSettings(t *testing.T) {
	tdb := testutil.SetupTestDB(t)
	ctx := context.Background()

	_, err := tdb.Settings.GetSetting(ctx, pomodo.SettingWorkDuration)
	require.ErrorIs(t, err, pomodo.ErrNotFound)

	require.NoError(t, tdb.Settings.SetSetting(ctx, pomodo.SettingWorkDuration, "30"))
	require.NoError(t, tdb.Settings.SetSetting(ctx, pomodo.SettingWorkDuration, "45"))

	v, err := tdb.Settings.GetSetting(ctx, pomodo.SettingWorkDuration)
	require.NoError(t, err)
	assert.Equal(t, "45", v)

	require.ErrorIs(t, tdb.Settings.SetSetting(ctx, "", "x"), pomodo.ErrValidation)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	path := t.TempDir() + "/nested/dir/pomodo.db"

	db, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())
	require.NoError(t, db.Close())

	db, err = sqlite.Open(path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	require.NoError(t, db.Migrate())

	var n int
	require.NoError(t, db.DB().QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n))
	assert.Zero(t, n)
}
