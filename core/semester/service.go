package semester

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("Semesteruttag hittades inte")
	ErrEmployeeNotFound = errors.New("Anställd hittades inte")
	ErrInvalidPeriod    = errors.New("Ogiltigt år eller månad")
)

// InsufficientBalanceError is returned when a withdrawal exceeds the remaining days of its year.
type InsufficientBalanceError struct {
	Remaining int
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Otillräckligt semestersaldo (%d dagar kvar)", e.Remaining)
}

type (
	Repository interface {
		CreateWithdrawal(ctx context.Context, w Withdrawal, exec ...core.DBExecutor) (Withdrawal, error)
		// QueryWithdrawals returns withdrawals dated within [from, to), unset bounds being open, latest first.
		QueryWithdrawals(ctx context.Context, employeeID int, from, to core.Date, exec ...core.DBExecutor) ([]Withdrawal, error)
		GetWithdrawalByID(ctx context.Context, id int, exec ...core.DBExecutor) (Withdrawal, error)
		DeleteWithdrawal(ctx context.Context, id int, exec ...core.DBExecutor) error
		// WithdrawnDays sums the days withdrawn within [from, to) per employee. employeeID 0 means all employees.
		WithdrawnDays(ctx context.Context, from, to core.Date, employeeID int, exec ...core.DBExecutor) (map[int]int, error)
	}

	Service struct {
		db          core.DB
		repo        Repository
		empRepo     employee.Repository
		daysPerYear int
	}
)

func NewService(db core.DB, repo Repository, empRepo employee.Repository, conf core.SemesterConfig) *Service {
	return &Service{db: db, repo: repo, empRepo: empRepo, daysPerYear: conf.DaysPerYear}
}

func yearRange(year int) (core.Date, core.Date) {
	return core.NewDate(year, time.January, 1), core.NewDate(year+1, time.January, 1)
}

func (svc *Service) balance(employeeID, year, withdrawn int) Balance {
	return Balance{
		EmployeeID:    employeeID,
		Year:          year,
		DagarTillagda: svc.daysPerYear,
		DagarUttagna:  withdrawn,
		Saldo:         svc.daysPerYear - withdrawn,
	}
}

func (svc *Service) cleanYear(year int) (int, error) {
	if year == 0 {
		return core.NowFunc().Year(), nil
	}
	if !core.ValidYearMonth(year, 1) {
		return 0, core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "year", Error: ErrInvalidPeriod.Error()})
	}
	return year, nil
}

// Balances returns the vacation balance of every employee for year (0 = current year), ordered by employee id.
func (svc *Service) Balances(ctx context.Context, year int) ([]Balance, error) {
	year, err := svc.cleanYear(year)
	if err != nil {
		return nil, err
	}

	emps, err := svc.empRepo.QueryEmployees(ctx, employee.QueryFilter{}, []core.DBOrdering{{Field: "id", Ascending: true}})
	if err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}
	from, to := yearRange(year)
	withdrawn, err := svc.repo.WithdrawnDays(ctx, from, to, 0)
	if err != nil {
		return nil, errors.Wrap(err, "summing withdrawn days")
	}

	balances := make([]Balance, 0, len(emps))
	for _, emp := range emps {
		balances = append(balances, svc.balance(emp.ID, year, withdrawn[emp.ID]))
	}
	return balances, nil
}

// Balance returns the vacation balance of one employee for year (0 = current year).
func (svc *Service) Balance(ctx context.Context, employeeID, year int) (Balance, error) {
	year, err := svc.cleanYear(year)
	if err != nil {
		return Balance{}, err
	}
	if _, err = svc.empRepo.GetEmployeeByID(ctx, employeeID); err != nil {
		return Balance{}, err
	}
	return svc.balanceOf(ctx, employeeID, year, nil)
}

func (svc *Service) balanceOf(ctx context.Context, employeeID, year int, exec core.DBExecutor) (Balance, error) {
	from, to := yearRange(year)
	var execs []core.DBExecutor
	if exec != nil {
		execs = append(execs, exec)
	}
	withdrawn, err := svc.repo.WithdrawnDays(ctx, from, to, employeeID, execs...)
	if err != nil {
		return Balance{}, errors.Wrap(err, "summing withdrawn days")
	}
	return svc.balance(employeeID, year, withdrawn[employeeID]), nil
}

func (svc *Service) QueryWithdrawals(ctx context.Context, filter QueryFilter) ([]Withdrawal, error) {
	if filter.Year != 0 && !core.ValidYearMonth(filter.Year, 1) {
		return nil, core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "year", Error: ErrInvalidPeriod.Error()})
	}
	if filter.Month != 0 && !core.ValidYearMonth(2000, filter.Month) {
		return nil, core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "month", Error: ErrInvalidPeriod.Error()})
	}
	from, to := filter.DateRange()
	return svc.repo.QueryWithdrawals(ctx, filter.EmployeeID, from, to)
}

// CreateWithdrawal books a validated NewWithdrawal. The days must be covered by the balance of the year of Datum.
func (svc *Service) CreateWithdrawal(ctx context.Context, nw NewWithdrawal) (Withdrawal, error) {
	datum, err := core.ParseDate(nw.Datum)
	if err != nil {
		return Withdrawal{}, core.NewValidationError(err, core.FieldError{Field: "datum", Error: "must be a date formatted as YYYY-MM-DD"})
	}
	if !core.ValidYearMonth(datum.Year, int(datum.Month)) {
		return Withdrawal{}, core.NewValidationError(ErrInvalidPeriod, core.FieldError{Field: "datum", Error: ErrInvalidPeriod.Error()})
	}

	var w Withdrawal
	err = core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		// the employee row lock serializes concurrent withdrawals of the same employee
		if _, err := svc.empRepo.GetEmployeeForUpdate(ctx, nw.EmployeeID, tx); err != nil {
			if core.IsNotFound(err) {
				return core.NewValidationError(ErrEmployeeNotFound, core.FieldError{Field: "employee_id", Error: ErrEmployeeNotFound.Error()})
			}
			return errors.Wrap(err, "getting employee")
		}

		bal, err := svc.balanceOf(ctx, nw.EmployeeID, datum.Year, tx)
		if err != nil {
			return err
		}
		if nw.AntalDagar > bal.Saldo {
			remaining := bal.Saldo
			if remaining < 0 {
				remaining = 0
			}
			errBal := InsufficientBalanceError{Remaining: remaining}
			return core.NewValidationError(errBal, core.FieldError{Field: "antal_dagar", Error: errBal.Error()})
		}

		w, err = svc.repo.CreateWithdrawal(ctx, Withdrawal{
			EmployeeID: nw.EmployeeID,
			AntalDagar: nw.AntalDagar,
			Datum:      datum,
			CreatedAt:  core.NowFunc(),
		}, tx)
		return err
	})
	return w, err
}

func (svc *Service) DeleteWithdrawal(ctx context.Context, id int) error {
	return core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetWithdrawalByID(ctx, id, tx); err != nil {
			return err
		}
		return svc.repo.DeleteWithdrawal(ctx, id, tx)
	})
}
