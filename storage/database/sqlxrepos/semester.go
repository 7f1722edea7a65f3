package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/semester"
)

const withdrawalColumns = "id, employee_id, antal_dagar, datum, created_at"

type withdrawalRow struct {
	ID         int       `db:"id"`
	EmployeeID int       `db:"employee_id"`
	AntalDagar int       `db:"antal_dagar"`
	Datum      core.Date `db:"datum"`
	CreatedAt  time.Time `db:"created_at"`
}

type semesterRepository struct {
	baseRepository
}

var _ semester.Repository = (*semesterRepository)(nil) // interface compliance check

func NewSemesterRepository(exec core.DBExecutor) *semesterRepository {
	return &semesterRepository{baseRepository{exec: exec}}
}

func (repo semesterRepository) fromRow(row withdrawalRow) semester.Withdrawal {
	return semester.Withdrawal{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		AntalDagar: row.AntalDagar,
		Datum:      row.Datum,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

// dateConds restricts datum to [from, to), unset bounds being open.
func dateConds(from, to core.Date, conds []string, args []interface{}) ([]string, []interface{}) {
	if from.IsSet() {
		conds = append(conds, "datum >= ?")
		args = append(args, from)
	}
	if to.IsSet() {
		conds = append(conds, "datum < ?")
		args = append(args, to)
	}
	return conds, args
}

func (repo semesterRepository) CreateWithdrawal(ctx context.Context, w semester.Withdrawal, exec ...core.DBExecutor) (semester.Withdrawal, error) {
	exe := repo.getExec(exec)
	row := withdrawalRow{
		EmployeeID: w.EmployeeID,
		AntalDagar: w.AntalDagar,
		Datum:      w.Datum,
		CreatedAt:  w.CreatedAt.UTC(),
	}

	q := exe.Rebind(`INSERT INTO semester_withdrawals (employee_id, antal_dagar, datum, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`)
	if err := exe.QueryRowxContext(ctx, q, row.EmployeeID, row.AntalDagar, row.Datum, row.CreatedAt).Scan(&row.ID); err != nil {
		return semester.Withdrawal{}, errors.Wrap(err, "inserting vacation withdrawal")
	}
	return repo.fromRow(row), nil
}

func (repo semesterRepository) QueryWithdrawals(ctx context.Context, employeeID int, from, to core.Date, exec ...core.DBExecutor) ([]semester.Withdrawal, error) {
	exe := repo.getExec(exec)

	var (
		conds []string
		args  []interface{}
	)
	if employeeID != 0 {
		conds = append(conds, "employee_id = ?")
		args = append(args, employeeID)
	}
	conds, args = dateConds(from, to, conds, args)

	var rows []withdrawalRow
	q := "SELECT " + withdrawalColumns + " FROM semester_withdrawals" + where(conds) + " ORDER BY datum DESC, id DESC"
	if err := sqlxSelect(ctx, exe, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying vacation withdrawals")
	}
	withdrawals := make([]semester.Withdrawal, 0, len(rows))
	for _, row := range rows {
		withdrawals = append(withdrawals, repo.fromRow(row))
	}
	return withdrawals, nil
}

func (repo semesterRepository) GetWithdrawalByID(ctx context.Context, id int, exec ...core.DBExecutor) (semester.Withdrawal, error) {
	exe := repo.getExec(exec)
	var row withdrawalRow
	if err := sqlxGet(ctx, exe, &row, "SELECT "+withdrawalColumns+" FROM semester_withdrawals WHERE id = ?", id); err != nil {
		return semester.Withdrawal{}, trapNoRowsErr(err, semester.ErrNotFound, "finding vacation withdrawal by ID")
	}
	return repo.fromRow(row), nil
}

func (repo semesterRepository) DeleteWithdrawal(ctx context.Context, id int, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	res, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM semester_withdrawals WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting vacation withdrawal")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return semester.ErrNotFound
	}
	return nil
}

func (repo semesterRepository) WithdrawnDays(ctx context.Context, from, to core.Date, employeeID int, exec ...core.DBExecutor) (map[int]int, error) {
	exe := repo.getExec(exec)

	var (
		conds []string
		args  []interface{}
	)
	if employeeID != 0 {
		conds = append(conds, "employee_id = ?")
		args = append(args, employeeID)
	}
	conds, args = dateConds(from, to, conds, args)

	var sums []struct {
		EmployeeID int `db:"employee_id"`
		Days       int `db:"days"`
	}
	q := "SELECT employee_id, SUM(antal_dagar) AS days FROM semester_withdrawals" + where(conds) + " GROUP BY employee_id"
	if err := sqlxSelect(ctx, exe, &sums, q, args...); err != nil {
		return nil, errors.Wrap(err, "summing vacation withdrawals")
	}

	days := make(map[int]int, len(sums))
	for _, s := range sums {
		days[s.EmployeeID] = s.Days
	}
	return days, nil
}
