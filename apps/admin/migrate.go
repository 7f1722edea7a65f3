package main

import "context"

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	return runMigrationsFunc(ctx, cli.db, cli.conf.Database.Engine, args[0], args[1:]...)
}
