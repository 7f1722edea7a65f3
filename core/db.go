package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		PingContext(ctx context.Context) error
	}
)

// WithTx runs fn inside a transaction which is committed if fn succeeds and rolled back otherwise.
func WithTx(ctx context.Context, db DB, fn func(tx DBExecutor) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available on exec's driver.
func SupportsRowLocks(exec DBExecutor) bool {
	switch exec.DriverName() {
	case "postgres", "pgx":
		return true
	default:
		return false
	}
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Pagination mirrors the skip/limit query parameters of list endpoints.
// A zero Limit means "no limit" for repositories; Clean applies the API defaults.
type Pagination struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

func (p *Pagination) Clean() {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	} else if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}
