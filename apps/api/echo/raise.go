package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core/raise"
)

type raiseApi struct {
	svc      *raise.Service
	validate *validator.Validate
}

func registerRaiseAPI(g *echo.Group, svc *raise.Service, validate *validator.Validate) {
	api := raiseApi{svc: svc, validate: validate}

	rg := g.Group("/salary-raises")
	rg.GET("", api.query)
	rg.POST("", api.create)
}

func (api *raiseApi) query(ctx echo.Context) error {
	var filter raise.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to raise.QueryFilter")
	}

	raises, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying salary raises")
	}
	return ctx.JSON(http.StatusOK, raises)
}

func (api *raiseApi) create(ctx echo.Context) error {
	var data raise.NewSalaryRaise
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to raise.NewSalaryRaise")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating salary raise")
	}
	return ctx.JSON(http.StatusCreated, sr)
}
