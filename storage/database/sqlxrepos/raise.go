package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/raise"
)

const raiseColumns = "id, employee_id, gammal_lon, ny_lon, procent_okning, orsak, created_at"

type raiseRow struct {
	ID            int             `db:"id"`
	EmployeeID    int             `db:"employee_id"`
	GammalLon     decimal.Decimal `db:"gammal_lon"`
	NyLon         decimal.Decimal `db:"ny_lon"`
	ProcentOkning decimal.Decimal `db:"procent_okning"`
	Orsak         null.String     `db:"orsak"`
	CreatedAt     time.Time       `db:"created_at"`
}

type raiseRepository struct {
	baseRepository
}

var _ raise.Repository = (*raiseRepository)(nil) // interface compliance check

func NewRaiseRepository(exec core.DBExecutor) *raiseRepository {
	return &raiseRepository{baseRepository{exec: exec}}
}

func (repo raiseRepository) fromRow(row raiseRow) raise.SalaryRaise {
	return raise.SalaryRaise{
		ID:            row.ID,
		EmployeeID:    row.EmployeeID,
		GammalLon:     row.GammalLon,
		NyLon:         row.NyLon,
		ProcentOkning: row.ProcentOkning,
		Orsak:         row.Orsak,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func (repo raiseRepository) CreateRaise(ctx context.Context, r raise.SalaryRaise, exec ...core.DBExecutor) (raise.SalaryRaise, error) {
	exe := repo.getExec(exec)
	row := raiseRow{
		EmployeeID:    r.EmployeeID,
		GammalLon:     r.GammalLon,
		NyLon:         r.NyLon,
		ProcentOkning: r.ProcentOkning,
		Orsak:         r.Orsak,
		CreatedAt:     r.CreatedAt.UTC(),
	}

	q := exe.Rebind(`INSERT INTO salary_raises (employee_id, gammal_lon, ny_lon, procent_okning, orsak, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := exe.QueryRowxContext(ctx, q, row.EmployeeID, row.GammalLon, row.NyLon, row.ProcentOkning, row.Orsak, row.CreatedAt).Scan(&row.ID)
	if err != nil {
		return raise.SalaryRaise{}, errors.Wrap(err, "inserting salary raise")
	}
	return repo.fromRow(row), nil
}

func (repo raiseRepository) QueryRaises(ctx context.Context, filter raise.QueryFilter, exec ...core.DBExecutor) ([]raise.SalaryRaise, error) {
	exe := repo.getExec(exec)

	var (
		conds []string
		args  []interface{}
	)
	if filter.EmployeeID != 0 {
		conds = append(conds, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	q := "SELECT " + raiseColumns + " FROM salary_raises" + where(conds) + " ORDER BY created_at DESC, id DESC"
	var page string
	page, args = limitOffset(exe, filter.Pagination, args)

	var rows []raiseRow
	if err := sqlxSelect(ctx, exe, &rows, q+page, args...); err != nil {
		return nil, errors.Wrap(err, "querying salary raises")
	}
	raises := make([]raise.SalaryRaise, 0, len(rows))
	for _, row := range rows {
		raises = append(raises, repo.fromRow(row))
	}
	return raises, nil
}
