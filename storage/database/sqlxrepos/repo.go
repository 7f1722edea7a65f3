// Package sqlxrepos implements the domain repositories on top of jmoiron/sqlx.
// Queries are written with "?" placeholders and rebound to the driver's bind type.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
)

// baseRepository holds what every repository shares: the default executor.
type baseRepository struct {
	exec core.DBExecutor
}

// getExec returns the executor provided by the service (usually a transaction), else the repository's.
func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps sql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isSqlite(exec core.DBExecutor) bool {
	return strings.HasPrefix(exec.DriverName(), "sqlite")
}

// orderBy builds an ORDER BY clause from whitelisted fields. numeric fields are stored as text on sqlite.
func orderBy(exec core.DBExecutor, ordering []core.DBOrdering, allowed map[string]bool, numeric map[string]bool, tiebreak string) string {
	parts := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if !allowed[ord.Field] {
			continue
		}
		if numeric[ord.Field] && isSqlite(exec) {
			ord.Field = "CAST(" + ord.Field + " AS REAL)"
		}
		parts = append(parts, ord.String())
	}
	if tiebreak != "" {
		parts = append(parts, tiebreak)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// limitOffset renders the pagination, a zero limit meaning all rows.
func limitOffset(exec core.DBExecutor, p core.Pagination, args []interface{}) (string, []interface{}) {
	if p.Limit <= 0 {
		if p.Skip <= 0 {
			return "", args
		}
		if isSqlite(exec) {
			return " LIMIT -1 OFFSET ?", append(args, p.Skip)
		}
		return " OFFSET ?", append(args, p.Skip)
	}
	return " LIMIT ? OFFSET ?", append(args, p.Limit, p.Skip)
}

// where joins conditions with AND.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func sqlxSelect(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, exec, dest, exec.Rebind(query), args...)
}

func sqlxGet(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, exec, dest, exec.Rebind(query), args...)
}
