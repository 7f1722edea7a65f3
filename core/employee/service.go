package employee

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lonesystem/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("Anställd hittades inte")
	ErrPersonnummerExists = errors.New("En anställd med detta personnummer finns redan")
	ErrPersonnummerTaken  = errors.New("En annan anställd har redan detta personnummer")
)

type (
	Repository interface {
		CreateEmployee(ctx context.Context, emp Employee, exec ...core.DBExecutor) (Employee, error)
		// QueryEmployees applies AND operation on available QueryFilter fields.
		// A zero QueryFilter.Limit returns all matching employees.
		QueryEmployees(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Employee, error)
		GetEmployeeByID(ctx context.Context, id int, exec ...core.DBExecutor) (Employee, error)
		// GetEmployeeForUpdate locks the employee row until exec's transaction ends, where the driver supports it.
		GetEmployeeForUpdate(ctx context.Context, id int, exec core.DBExecutor) (Employee, error)
		// PersonnummerExists reports whether another employee than excludedID owns pnr.
		PersonnummerExists(ctx context.Context, pnr string, excludedID int, exec ...core.DBExecutor) (bool, error)
		UpdateEmployee(ctx context.Context, emp Employee, exec ...core.DBExecutor) (Employee, error)
		// DeleteEmployee removes the employee together with its salary raises and vacation withdrawals.
		DeleteEmployee(ctx context.Context, id int, exec ...core.DBExecutor) error
		QueryDepartments(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
	}

	Service struct {
		db         core.DB
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(db core.DB, repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{db: db, repo: repo, validate: validate, translator: translator}
}

func (svc *Service) checkUniqueness(ctx context.Context, pnr string, excludedID int, exec core.DBExecutor) error {
	exists, err := svc.repo.PersonnummerExists(ctx, pnr, excludedID, exec)
	if err != nil {
		return errors.Wrap(err, "checking personnummer uniqueness")
	}
	if exists {
		errExists := ErrPersonnummerExists
		if excludedID != 0 {
			errExists = ErrPersonnummerTaken
		}
		return core.NewValidationError(errExists, core.FieldError{Field: "personnummer", Error: errExists.Error()})
	}
	return nil
}

// Create stores a validated NewEmployee.
func (svc *Service) Create(ctx context.Context, ne NewEmployee) (Employee, error) {
	var emp Employee
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.checkUniqueness(ctx, ne.Personnummer, 0, tx); err != nil {
			return err
		}
		var err error
		emp, err = svc.repo.CreateEmployee(ctx, Employee{
			Namn:         ne.Namn,
			Personnummer: ne.Personnummer,
			Lon:          ne.Lon.Decimal,
			Avdelning:    ne.Avdelning,
			Epost:        ne.Epost,
			CreatedAt:    core.NowFunc(),
		}, tx)
		return err
	})
	return emp, err
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Employee, error) {
	filter.Clean()
	filter.Pagination.Clean()
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "id", Ascending: true}}
	}
	return svc.repo.QueryEmployees(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Employee, error) {
	return svc.repo.GetEmployeeByID(ctx, id)
}

// Update applies a validated UpdateEmployee to the employee with the given id.
func (svc *Service) Update(ctx context.Context, id int, ue UpdateEmployee) (Employee, error) {
	var emp Employee
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		orig, err := svc.repo.GetEmployeeForUpdate(ctx, id, tx)
		if err != nil {
			return err
		}
		if ue.Personnummer != nil && *ue.Personnummer != orig.Personnummer {
			if err = svc.checkUniqueness(ctx, *ue.Personnummer, id, tx); err != nil {
				return err
			}
		}
		emp = ue.Apply(orig)
		emp.UpdatedAt = null.TimeFrom(core.NowFunc())
		emp, err = svc.repo.UpdateEmployee(ctx, emp, tx)
		return err
	})
	return emp, err
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetEmployeeForUpdate(ctx, id, tx); err != nil {
			return err
		}
		return svc.repo.DeleteEmployee(ctx, id, tx)
	})
}

func (svc *Service) Departments(ctx context.Context) ([]string, error) {
	return svc.repo.QueryDepartments(ctx)
}

// Import validates and creates the employees of a spreadsheet.
// Rows are handled independently: invalid rows are reported and do not prevent the others from being created.
func (svc *Service) Import(ctx context.Context, rows [][]string) (ImportResult, error) {
	res := ImportResult{Created: make([]Employee, 0), Errors: make([]ImportError, 0)}

	parsed, parseErrs := ParseRows(rows)
	res.Errors = append(res.Errors, parseErrs...)

	for _, pr := range parsed {
		ne := pr.NewEmployee
		if err := ne.Validate(svc.validate); err != nil {
			res.Errors = append(res.Errors, ImportError{Row: pr.Row, Detail: svc.describe(err)})
			continue
		}
		emp, err := svc.Create(ctx, ne)
		if err != nil {
			if _, ok := errors.Cause(err).(*core.ValidationError); ok {
				res.Errors = append(res.Errors, ImportError{Row: pr.Row, Detail: err.Error()})
				continue
			}
			return res, errors.Wrapf(err, "importing row %d", pr.Row)
		}
		res.Created = append(res.Created, emp)
	}
	return res, nil
}

func (svc *Service) describe(err error) string {
	if vErrs, ok := errors.Cause(err).(validator.ValidationErrors); ok && len(vErrs) > 0 {
		return fmt.Sprintf("%s: %s", vErrs[0].Field(), vErrs[0].Translate(svc.translator))
	}
	return err.Error()
}
