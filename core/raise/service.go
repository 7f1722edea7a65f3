package raise

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
)

var (
	// errors
	ErrEmployeeNotFound = errors.New("Anställd hittades inte")
	ErrNotHigher        = errors.New("Ny lön måste vara högre än nuvarande")
	ErrZeroSalary       = errors.New("Nuvarande lön är 0, procentuell ökning kan inte beräknas")
)

type (
	Repository interface {
		CreateRaise(ctx context.Context, r SalaryRaise, exec ...core.DBExecutor) (SalaryRaise, error)
		// QueryRaises returns raises newest first. A zero QueryFilter.Limit returns all matching raises.
		QueryRaises(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]SalaryRaise, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		empRepo employee.Repository
	}
)

func NewService(db core.DB, repo Repository, empRepo employee.Repository) *Service {
	return &Service{db: db, repo: repo, empRepo: empRepo}
}

// Create records a salary raise and sets the employee's salary to the new one, atomically.
func (svc *Service) Create(ctx context.Context, nr NewSalaryRaise) (SalaryRaise, error) {
	var sr SalaryRaise
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		emp, err := svc.empRepo.GetEmployeeForUpdate(ctx, nr.EmployeeID, tx)
		if err != nil {
			if core.IsNotFound(err) {
				return core.NewValidationError(ErrEmployeeNotFound, core.FieldError{Field: "employee_id", Error: ErrEmployeeNotFound.Error()})
			}
			return errors.Wrap(err, "getting employee")
		}

		nyLon := nr.NyLon.Decimal
		if !nyLon.GreaterThan(emp.Lon) {
			return core.NewValidationError(ErrNotHigher, core.FieldError{Field: "ny_lon", Error: ErrNotHigher.Error()})
		}
		if emp.Lon.IsZero() {
			return core.NewValidationError(ErrZeroSalary)
		}

		now := core.NowFunc()
		sr, err = svc.repo.CreateRaise(ctx, SalaryRaise{
			EmployeeID:    emp.ID,
			GammalLon:     emp.Lon,
			NyLon:         nyLon,
			ProcentOkning: core.PercentChange(emp.Lon, nyLon),
			Orsak:         nr.Orsak,
			CreatedAt:     now,
		}, tx)
		if err != nil {
			return errors.Wrap(err, "creating salary raise")
		}

		emp.Lon = nyLon
		emp.UpdatedAt = null.TimeFrom(now)
		if _, err = svc.empRepo.UpdateEmployee(ctx, emp, tx); err != nil {
			return errors.Wrap(err, "updating employee salary")
		}
		return nil
	})
	return sr, err
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]SalaryRaise, error) {
	filter.Pagination.Clean()
	return svc.repo.QueryRaises(ctx, filter)
}
