package main

import (
	"context"

	"github.com/trezcool/lonesystem/core/user"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd, confirm string) error {
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	sp := user.SetUserPassword{Password: pwd, PasswordConfirm: confirm}
	if err = sp.Validate(cli.validate, usr); err != nil {
		return err
	}
	if _, err = cli.usrSvc.SetPassword(ctx, usr, sp); err != nil {
		return err
	}
	cli.printf("password of %q updated\n", usr.Username)
	return nil
}
