package report

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/raise"
	"github.com/trezcool/lonesystem/core/semester"
	"github.com/trezcool/lonesystem/core/tax"
)

var ErrInvalidPeriod = errors.New("Ogiltigt år eller månad")

type (
	Row struct {
		EmployeeID    int             `json:"employee_id"`
		Namn          string          `json:"namn"`
		Avdelning     string          `json:"avdelning"`
		Bruttolon     decimal.Decimal `json:"bruttolon"`
		Skatt         decimal.Decimal `json:"skatt"`
		Nettolon      decimal.Decimal `json:"nettolon"`
		SemesterDagar int             `json:"semester_dagar"`
	}

	// Monthly aggregates the payroll of one calendar month.
	Monthly struct {
		Year               int             `json:"year"`
		Month              int             `json:"month"`
		AntalAnstallda     int             `json:"antal_anstallda"`
		TotalLonekostnad   decimal.Decimal `json:"total_lonekostnad"`
		TotalSkatt         decimal.Decimal `json:"total_skatt"`
		TotalNettolon      decimal.Decimal `json:"total_nettolon"`
		SemesterUttagDagar int             `json:"semester_uttag_dagar"`
		Rader              []Row           `json:"rader"`
	}

	Service struct {
		empRepo      employee.Repository
		raiseRepo    raise.Repository
		semesterRepo semester.Repository
		calc         tax.Calculator
	}
)

func NewService(empRepo employee.Repository, raiseRepo raise.Repository, semesterRepo semester.Repository, calc tax.Calculator) *Service {
	return &Service{empRepo: empRepo, raiseRepo: raiseRepo, semesterRepo: semesterRepo, calc: calc}
}

// Monthly builds the report of the given month. Employees created before the end of the month are included,
// each with the salary in effect at the end of the month.
func (svc *Service) Monthly(ctx context.Context, year, month int) (Monthly, error) {
	if !core.ValidYearMonth(year, month) {
		return Monthly{}, core.NewValidationError(ErrInvalidPeriod)
	}
	start, end := core.MonthRange(year, month)

	var (
		emps      []employee.Employee
		raises    []raise.SalaryRaise
		withdrawn map[int]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emps, err = svc.empRepo.QueryEmployees(gctx, employee.QueryFilter{CreatedBefore: end}, []core.DBOrdering{{Field: "id", Ascending: true}})
		return errors.Wrap(err, "querying employees")
	})
	g.Go(func() error {
		var err error
		raises, err = svc.raiseRepo.QueryRaises(gctx, raise.QueryFilter{})
		return errors.Wrap(err, "querying salary raises")
	})
	g.Go(func() error {
		var err error
		withdrawn, err = svc.semesterRepo.WithdrawnDays(gctx, core.DateOf(start), core.DateOf(end), 0)
		return errors.Wrap(err, "summing withdrawn days")
	})
	if err := g.Wait(); err != nil {
		return Monthly{}, err
	}

	return svc.aggregate(year, month, end.Add(-time.Nanosecond), emps, raises, withdrawn)
}

func (svc *Service) aggregate(year, month int, at time.Time, emps []employee.Employee, raises []raise.SalaryRaise, withdrawn map[int]int) (Monthly, error) {
	rep := Monthly{
		Year:             year,
		Month:            month,
		AntalAnstallda:   len(emps),
		TotalLonekostnad: decimal.Zero,
		TotalSkatt:       decimal.Zero,
		TotalNettolon:    decimal.Zero,
		Rader:            make([]Row, 0, len(emps)),
	}

	for _, emp := range emps {
		m, err := svc.calc.Monthly(raise.SalaryAt(emp, raises, at))
		if err != nil {
			return Monthly{}, errors.Wrapf(err, "computing tax of employee %d", emp.ID)
		}
		days := withdrawn[emp.ID]

		rep.Rader = append(rep.Rader, Row{
			EmployeeID:    emp.ID,
			Namn:          emp.Namn,
			Avdelning:     emp.Avdelning,
			Bruttolon:     m.Manadslon,
			Skatt:         m.TotalSkatt,
			Nettolon:      m.Nettolon,
			SemesterDagar: days,
		})
		rep.TotalLonekostnad = rep.TotalLonekostnad.Add(m.Manadslon)
		rep.TotalSkatt = rep.TotalSkatt.Add(m.TotalSkatt)
		rep.TotalNettolon = rep.TotalNettolon.Add(m.Nettolon)
		rep.SemesterUttagDagar += days
	}
	return rep, nil
}
