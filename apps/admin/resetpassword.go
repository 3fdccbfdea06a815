package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

// findAccount looks an Account up by username, then by email.
func (cli *commandLine) findAccount(ctx context.Context, unameOrEmail string) (account.Account, error) {
	unameOrEmail = core.CleanString(unameOrEmail, true /* lower */)
	acc, err := cli.accounts.GetAccount(ctx, account.GetFilter{Username: unameOrEmail})
	if errors.Cause(err) == account.ErrNotFound {
		acc, err = cli.accounts.GetAccount(ctx, account.GetFilter{Email: unameOrEmail})
	}
	return acc, err
}

func (cli *commandLine) resetPassword(unameOrEmail, pwd string) error {
	ctx := context.Background()
	acc, err := cli.findAccount(ctx, unameOrEmail)
	if err != nil {
		return err
	}
	if err = cli.accSvc.SetPassword(ctx, acc, pwd); err != nil {
		return err
	}
	fmt.Printf("password of %q updated\n", acc.Username)
	return nil
}

func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	acc, err := cli.accSvc.SaveAdmin(context.Background(), uname, email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("admin %q saved (id_user=%d)\n", acc.Username, acc.ID)
	return nil
}
