package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core/report"
)

func (cli *commandLine) exportReport(ctx context.Context, year, month int, path string) error {
	rep, err := cli.reportSvc.Monthly(ctx, year, month)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating report file")
	}
	if err = report.WriteXLSX(rep, f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing report file")
	}
	cli.printf("report %d-%02d written to %s (%d employees)\n", year, month, path, rep.AntalAnstallda)
	return nil
}
