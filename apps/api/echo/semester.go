package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/semester"
)

type semesterApi struct {
	svc      *semester.Service
	validate *validator.Validate
}

type yearQuery struct {
	Year int `query:"year"`
}

func registerSemesterAPI(g *echo.Group, svc *semester.Service, validate *validator.Validate) {
	api := semesterApi{svc: svc, validate: validate}

	sg := g.Group("/semester")
	sg.GET("/saldo", api.balances)
	sg.GET("/saldo/:employee_id", api.balance)
	sg.GET("/uttag", api.queryWithdrawals)
	sg.POST("/uttag", api.createWithdrawal)
	sg.DELETE("/uttag/:id", api.destroyWithdrawal)
}

func (api *semesterApi) balances(ctx echo.Context) error {
	var q yearQuery
	if err := bindQuery(ctx, &q); err != nil {
		return errors.Wrap(err, "binding to yearQuery")
	}

	balances, err := api.svc.Balances(ctx.Request().Context(), q.Year)
	if err != nil {
		return errors.Wrap(err, "computing vacation balances")
	}
	return ctx.JSON(http.StatusOK, balances)
}

func (api *semesterApi) balance(ctx echo.Context) error {
	employeeID, err := pathID(ctx, "employee_id", employee.ErrNotFound)
	if err != nil {
		return err
	}
	var q yearQuery
	if err = bindQuery(ctx, &q); err != nil {
		return errors.Wrap(err, "binding to yearQuery")
	}

	bal, err := api.svc.Balance(ctx.Request().Context(), employeeID, q.Year)
	if err != nil {
		return errors.Wrap(err, "computing vacation balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

func (api *semesterApi) queryWithdrawals(ctx echo.Context) error {
	var filter semester.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to semester.QueryFilter")
	}

	withdrawals, err := api.svc.QueryWithdrawals(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying vacation withdrawals")
	}
	return ctx.JSON(http.StatusOK, withdrawals)
}

func (api *semesterApi) createWithdrawal(ctx echo.Context) error {
	var data semester.NewWithdrawal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to semester.NewWithdrawal")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	w, err := api.svc.CreateWithdrawal(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating vacation withdrawal")
	}
	return ctx.JSON(http.StatusCreated, w)
}

func (api *semesterApi) destroyWithdrawal(ctx echo.Context) error {
	id, err := pathID(ctx, "id", semester.ErrNotFound)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteWithdrawal(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting vacation withdrawal")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Semesteruttag borttaget"})
}
