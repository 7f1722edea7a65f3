package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, svc *report.Service) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports")
	rg.GET("/monthly", api.monthly)
	rg.GET("/monthly/export", api.export)
}

func (api *reportApi) build(ctx echo.Context) (report.Monthly, error) {
	var period Period
	if err := bindQuery(ctx, &period); err != nil {
		return report.Monthly{}, errors.Wrap(err, "binding to Period")
	}
	period = period.OrCurrent()

	rep, err := api.svc.Monthly(ctx.Request().Context(), period.Year, period.Month)
	if err != nil {
		return report.Monthly{}, errors.Wrap(err, "building monthly report")
	}
	return rep, nil
}

func (api *reportApi) monthly(ctx echo.Context) error {
	rep, err := api.build(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) export(ctx echo.Context) error {
	rep, err := api.build(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = report.WriteXLSX(rep, &buf); err != nil {
		return errors.Wrap(err, "writing report workbook")
	}
	filename := fmt.Sprintf("rapport_%d_%02d.xlsx", rep.Year, rep.Month)
	setAttachment(ctx, filename)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
