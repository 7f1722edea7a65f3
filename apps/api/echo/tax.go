package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/tax"
)

var (
	errTaxInputMissing = errors.New("Ange employee_id eller lon")
	errInvalidLon      = errors.New("Ogiltig lön")
)

type taxApi struct {
	empSvc *employee.Service
	calc   tax.Calculator
}

func registerTaxAPI(g *echo.Group, empSvc *employee.Service, calc tax.Calculator) {
	api := taxApi{empSvc: empSvc, calc: calc}

	g.GET("/tax/calculate", api.calculate)
}

// calculate summarizes the taxes of an employee's current salary (?employee_id=) or of an ad-hoc monthly salary (?lon=).
func (api *taxApi) calculate(ctx echo.Context) error {
	var (
		employeeID int
		monthly    decimal.Decimal
	)

	switch {
	case ctx.QueryParam("employee_id") != "":
		id, err := parseID(ctx.QueryParam("employee_id"))
		if err != nil {
			return employee.ErrNotFound
		}
		emp, err := api.empSvc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "finding employee by ID")
		}
		employeeID, monthly = emp.ID, emp.Lon
	case ctx.QueryParam("lon") != "":
		lon, err := decimal.NewFromString(strings.TrimSpace(ctx.QueryParam("lon")))
		if err != nil {
			return core.NewValidationError(errInvalidLon, core.FieldError{Field: "lon", Error: errInvalidLon.Error()})
		}
		monthly = lon
	default:
		return core.NewValidationError(errTaxInputMissing)
	}

	sum, err := api.calc.Summarize(monthly)
	if err != nil {
		if err == tax.ErrNegativeSalary {
			return core.NewValidationError(err, core.FieldError{Field: "lon", Error: err.Error()})
		}
		return errors.Wrap(err, "calculating tax")
	}
	sum.EmployeeID = employeeID
	return ctx.JSON(http.StatusOK, sum)
}
