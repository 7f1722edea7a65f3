package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/lonesystem/core/employee"
)

func (cli *commandLine) importEmployees(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening spreadsheet")
	}
	defer func() { _ = f.Close() }()

	rows, err := employee.ReadSpreadsheet(f, path)
	if err != nil {
		return err
	}
	res, err := cli.empSvc.Import(ctx, rows)
	if err != nil {
		return err
	}

	cli.printf("%d employee(s) created\n", len(res.Created))
	for _, ie := range res.Errors {
		cli.printf("row %d: %s\n", ie.Row, ie.Detail)
	}
	return nil
}
