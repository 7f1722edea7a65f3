package main

import (
	"context"

	"github.com/trezcool/lonesystem/core/user"
)

// addUser creates an active administrator account.
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	cli.printf("user %q created (%s)\n", usr.Username, usr.ID)
	return nil
}
