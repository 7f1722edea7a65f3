package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers "postgres"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/trezcool/lonesystem/core"
	appfs "github.com/trezcool/lonesystem/fs"
)

const (
	EnginePostgres = "postgres"
	EnginePgx      = "pgx"
	EngineSqlite   = "sqlite"
)

var (
	ErrUnknownEngine = errors.New("unknown database engine")

	gooseRunFunc = goose.RunContext // mockable
)

func postgresURL(dbName string, admin bool, conf *core.Config) string {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// sqliteDSN enables foreign keys on every connection of the pool.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	switch conf.Database.Engine {
	case EnginePostgres, EnginePgx:
		return sqlx.Open(conf.Database.Engine, postgresURL(dbName, admin, conf))
	case EngineSqlite:
		db, err := sqlx.Open(EngineSqlite, sqliteDSN(conf.Database.Path))
		if err != nil {
			return nil, err
		}
		// a single connection keeps in-memory databases alive and serializes writers
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		return db, nil
	default:
		return nil, errors.Wrap(ErrUnknownEngine, conf.Database.Engine)
	}
}

// Open opens the application database and waits for it to be ready.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db, 30); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB, maxAttempts int) error {
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// StatusCheck reports whether the database answers.
func StatusCheck(ctx context.Context, db core.DB) error {
	return db.PingContext(ctx)
}

func exists(db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	err := db.QueryRowx(db.Rebind(query), args...).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = ?", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %q CREATEDB ENCRYPTED PASSWORD '%s'",
			conf.Database.User, strings.ReplaceAll(conf.Database.Password, "'", "''"))
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = ?", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the application role and database on postgres servers. It is a no-op for sqlite.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine == EngineSqlite {
		return nil
	}

	// connect as admin
	adminDB, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = adminDB.Close() }()

	if err = ping(adminDB, 30); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(adminDB, conf); err != nil {
		return errors.Wrap(err, "creating app user")
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()

	if err = createDB(appDB, conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

func gooseDialect(engine string) string {
	if engine == EngineSqlite {
		return "sqlite3"
	}
	return "postgres"
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset...) with the embedded migrations of the engine.
func RunMigrations(ctx context.Context, db *sqlx.DB, engine, command string, args ...string) error {
	if err := goose.SetDialect(gooseDialect(engine)); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	goose.SetBaseFS(appfs.FS)
	defer goose.SetBaseFS(nil)

	dir := "migrations/postgres"
	if engine == EngineSqlite {
		dir = "migrations/sqlite"
	}
	if err := gooseRunFunc(ctx, command, db.DB, dir, args...); err != nil {
		return errors.Wrapf(err, "running migrations: %s", command)
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sqlx.DB, engine string) error {
	return RunMigrations(ctx, db, engine, "up")
}
