package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
)

const employeeColumns = "id, namn, personnummer, lon, avdelning, epost, created_at, updated_at"

var (
	employeeOrderingFields = map[string]bool{
		"id": true, "namn": true, "personnummer": true, "lon": true, "avdelning": true, "created_at": true,
	}
	employeeNumericFields = map[string]bool{"lon": true}
)

type employeeRow struct {
	ID           int             `db:"id"`
	Namn         string          `db:"namn"`
	Personnummer string          `db:"personnummer"`
	Lon          decimal.Decimal `db:"lon"`
	Avdelning    string          `db:"avdelning"`
	Epost        null.String     `db:"epost"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    null.Time       `db:"updated_at"`
}

type employeeRepository struct {
	baseRepository
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(exec core.DBExecutor) *employeeRepository {
	return &employeeRepository{baseRepository{exec: exec}}
}

func (repo employeeRepository) toRow(emp employee.Employee) employeeRow {
	updatedAt := emp.UpdatedAt
	if updatedAt.Valid {
		updatedAt.Time = updatedAt.Time.UTC()
	}
	return employeeRow{
		ID:           emp.ID,
		Namn:         emp.Namn,
		Personnummer: emp.Personnummer,
		Lon:          emp.Lon,
		Avdelning:    emp.Avdelning,
		Epost:        emp.Epost,
		CreatedAt:    emp.CreatedAt.UTC(),
		UpdatedAt:    updatedAt,
	}
}

func (repo employeeRepository) fromRow(row employeeRow) employee.Employee {
	updatedAt := row.UpdatedAt
	if updatedAt.Valid {
		updatedAt.Time = updatedAt.Time.UTC()
	}
	return employee.Employee{
		ID:           row.ID,
		Namn:         row.Namn,
		Personnummer: row.Personnummer,
		Lon:          row.Lon,
		Avdelning:    row.Avdelning,
		Epost:        row.Epost,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    updatedAt,
	}
}

func (repo employeeRepository) fromRows(rows []employeeRow) []employee.Employee {
	emps := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		emps = append(emps, repo.fromRow(row))
	}
	return emps
}

func (repo employeeRepository) CreateEmployee(ctx context.Context, emp employee.Employee, exec ...core.DBExecutor) (employee.Employee, error) {
	exe := repo.getExec(exec)
	row := repo.toRow(emp)

	q := exe.Rebind(`INSERT INTO employees (namn, personnummer, lon, avdelning, epost, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := exe.QueryRowxContext(ctx, q, row.Namn, row.Personnummer, row.Lon, row.Avdelning, row.Epost, row.CreatedAt).Scan(&row.ID)
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "inserting employee")
	}
	return repo.fromRow(row), nil
}

func (repo employeeRepository) QueryEmployees(ctx context.Context, filter employee.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]employee.Employee, error) {
	exe := repo.getExec(exec)

	var (
		conds []string
		args  []interface{}
	)
	// employees with namn or personnummer matching the search keyword
	if filter.Search != "" {
		val := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds, "(LOWER(namn) LIKE ? OR personnummer LIKE ?)")
		args = append(args, val, val)
	}
	if filter.Avdelning != "" {
		conds = append(conds, "LOWER(avdelning) = ?")
		args = append(args, strings.ToLower(filter.Avdelning))
	}
	if !filter.CreatedBefore.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, filter.CreatedBefore.UTC())
	}

	q := "SELECT " + employeeColumns + " FROM employees" + where(conds) +
		orderBy(exe, ordering, employeeOrderingFields, employeeNumericFields, "id ASC")
	var page string
	page, args = limitOffset(exe, filter.Pagination, args)

	var rows []employeeRow
	if err := sqlxSelect(ctx, exe, &rows, q+page, args...); err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}
	return repo.fromRows(rows), nil
}

func (repo employeeRepository) getEmployee(ctx context.Context, exe core.DBExecutor, id int, suffix string) (employee.Employee, error) {
	var row employeeRow
	q := exe.Rebind("SELECT " + employeeColumns + " FROM employees WHERE id = ?" + suffix)
	if err := sqlxGet(ctx, exe, &row, q, id); err != nil {
		return employee.Employee{}, trapNoRowsErr(err, employee.ErrNotFound, "finding employee by ID")
	}
	return repo.fromRow(row), nil
}

func (repo employeeRepository) GetEmployeeByID(ctx context.Context, id int, exec ...core.DBExecutor) (employee.Employee, error) {
	return repo.getEmployee(ctx, repo.getExec(exec), id, "")
}

func (repo employeeRepository) GetEmployeeForUpdate(ctx context.Context, id int, exec core.DBExecutor) (employee.Employee, error) {
	exe := repo.getExec([]core.DBExecutor{exec})
	suffix := ""
	if core.SupportsRowLocks(exe) {
		suffix = " FOR UPDATE"
	}
	return repo.getEmployee(ctx, exe, id, suffix)
}

func (repo employeeRepository) PersonnummerExists(ctx context.Context, pnr string, excludedID int, exec ...core.DBExecutor) (bool, error) {
	exe := repo.getExec(exec)
	var cnt int
	q := exe.Rebind("SELECT COUNT(*) FROM employees WHERE personnummer = ? AND id <> ?")
	if err := exe.QueryRowxContext(ctx, q, pnr, excludedID).Scan(&cnt); err != nil {
		return false, errors.Wrap(err, "checking personnummer")
	}
	return cnt > 0, nil
}

func (repo employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee, exec ...core.DBExecutor) (employee.Employee, error) {
	exe := repo.getExec(exec)
	row := repo.toRow(emp)

	q := exe.Rebind(`UPDATE employees SET namn = ?, personnummer = ?, lon = ?, avdelning = ?, epost = ?, updated_at = ?
		WHERE id = ?`)
	res, err := exe.ExecContext(ctx, q, row.Namn, row.Personnummer, row.Lon, row.Avdelning, row.Epost, row.UpdatedAt, row.ID)
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "updating employee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return employee.Employee{}, employee.ErrNotFound
	}
	return repo.fromRow(row), nil
}

func (repo employeeRepository) DeleteEmployee(ctx context.Context, id int, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	for _, stmt := range []struct{ q, msg string }{
		{"DELETE FROM semester_withdrawals WHERE employee_id = ?", "deleting vacation withdrawals"},
		{"DELETE FROM salary_raises WHERE employee_id = ?", "deleting salary raises"},
	} {
		if _, err := exe.ExecContext(ctx, exe.Rebind(stmt.q), id); err != nil {
			return errors.Wrap(err, stmt.msg)
		}
	}

	res, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM employees WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return employee.ErrNotFound
	}
	return nil
}

func (repo employeeRepository) QueryDepartments(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	exe := repo.getExec(exec)
	depts := make([]string, 0)
	if err := sqlxSelect(ctx, exe, &depts, "SELECT DISTINCT avdelning FROM employees ORDER BY avdelning"); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	return depts, nil
}
