package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/payslip"
)

const importFileField = "file"

var errNoImportFile = errors.New("Ingen fil bifogad")

type employeeApi struct {
	svc        *employee.Service
	payslipSvc *payslip.Service
	validate   *validator.Validate
}

func registerEmployeeAPI(g *echo.Group, svc *employee.Service, payslipSvc *payslip.Service, validate *validator.Validate) {
	api := employeeApi{svc: svc, payslipSvc: payslipSvc, validate: validate}

	eg := g.Group("/employees")
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/departments", api.departments)
	eg.POST("/import", api.importFile)

	// detail endpoints
	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/payslip", api.payslip)
	dg.POST("/payslip/send", api.sendPayslip)
}

// Handlers

func (api *employeeApi) query(ctx echo.Context) error {
	var filter employee.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to employee.QueryFilter")
	}
	var ord Ordering
	if err := ord.Bind(ctx, employee.OrderingFields...); err != nil {
		return err
	}

	emps, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying employees")
	}
	return ctx.JSON(http.StatusOK, emps)
}

func (api *employeeApi) create(ctx echo.Context) error {
	var data employee.NewEmployee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to employee.NewEmployee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	emp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating employee")
	}
	return ctx.JSON(http.StatusCreated, emp)
}

func (api *employeeApi) departments(ctx echo.Context) error {
	depts, err := api.svc.Departments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *employeeApi) importFile(ctx echo.Context) error {
	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return core.NewValidationError(errNoImportFile, core.FieldError{Field: importFileField, Error: errNoImportFile.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	rows, err := employee.ReadSpreadsheet(f, fh.Filename)
	if err != nil {
		msg := errors.Cause(err).Error()
		return core.NewValidationError(errors.New(msg), core.FieldError{Field: importFileField, Error: msg})
	}

	res, err := api.svc.Import(ctx.Request().Context(), rows)
	if err != nil {
		return errors.Wrap(err, "importing employees")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id", employee.ErrNotFound)
	if err != nil {
		return err
	}
	emp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding employee by ID")
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id", employee.ErrNotFound)
	if err != nil {
		return err
	}
	var data employee.UpdateEmployee
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to employee.UpdateEmployee")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	emp, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating employee")
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id", employee.ErrNotFound)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Anställd borttagen"})
}

func (api *employeeApi) payslip(ctx echo.Context) error {
	id, err := pathID(ctx, "id", employee.ErrNotFound)
	if err != nil {
		return err
	}
	var period Period
	if err = bindQuery(ctx, &period); err != nil {
		return errors.Wrap(err, "binding to Period")
	}

	p, content, err := api.payslipSvc.Render(ctx.Request().Context(), id, period.Year, period.Month)
	if err != nil {
		return errors.Wrap(err, "rendering payslip")
	}
	setAttachment(ctx, p.Filename())
	return ctx.Stream(http.StatusOK, "application/pdf", bytes.NewReader(content))
}

func (api *employeeApi) sendPayslip(ctx echo.Context) error {
	id, err := pathID(ctx, "id", employee.ErrNotFound)
	if err != nil {
		return err
	}
	var period Period
	if err = (&echo.DefaultBinder{}).BindBody(ctx, &period); err != nil {
		return errors.Wrap(err, "binding to Period")
	}

	p, err := api.payslipSvc.Send(ctx.Request().Context(), id, period.Year, period.Month)
	if err != nil {
		return errors.Wrap(err, "sending payslip")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Lönespecifikation skickad till " + p.Employee.Epost.String})
}
