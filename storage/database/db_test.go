package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lonesystem/core"
)

func TestPostgresURL(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database.Host = "db"
	conf.Database.Port = 5433
	conf.Database.User = "lon"
	conf.Database.Password = "s3cret"
	conf.Database.AdminUser = "postgres"
	conf.Database.AdminPassword = "root"
	conf.Database.DisableTLS = false

	assert.Equal(t, "postgres://lon:s3cret@db:5433/lonesystem?sslmode=require&timezone=utc", postgresURL("lonesystem", false, conf))
	assert.Equal(t, "postgres://postgres:root@db:5433/postgres?sslmode=require&timezone=utc", postgresURL("postgres", true, conf))

	conf.Database.DisableTLS = true
	assert.Contains(t, postgresURL("lonesystem", false, conf), "sslmode=disable")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:lon.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:lon.db"))
	assert.Equal(t, "file::memory:?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file::memory:?cache=shared"))
}

func TestOpen_UnknownEngine(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database.Engine = "mysql"
	_, err := Open(conf)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestRunMigrations(t *testing.T) {
	conf := core.NewTestConfig()
	db, err := Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	t.Run("mocked runner receives the engine directory", func(t *testing.T) {
		orig := gooseRunFunc
		defer func() { gooseRunFunc = orig }()

		var gotCmd, gotDir string
		var gotArgs []string
		gooseRunFunc = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
			gotCmd, gotDir, gotArgs = command, dir, args
			return nil
		}
		require.NoError(t, RunMigrations(context.Background(), db, EngineSqlite, "down-to", "0"))
		assert.Equal(t, "down-to", gotCmd)
		assert.Equal(t, "migrations/sqlite", gotDir)
		assert.Equal(t, []string{"0"}, gotArgs)
	})

	t.Run("embedded migrations apply", func(t *testing.T) {
		require.NoError(t, Migrate(context.Background(), db, EngineSqlite))
		for _, table := range []string{"employees", "salary_raises", "semester_withdrawals", "users"} {
			var cnt int
			require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&cnt), table)
			assert.Zero(t, cnt)
		}
		require.NoError(t, StatusCheck(context.Background(), db))
	})
}
