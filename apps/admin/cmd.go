package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	accounts account.Repository
	accSvc   *account.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Println("  createadmin -username USERNAME [-email EMAIL] - create an Admin account or promote an existing one")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an account's password")
}

// promptPassword reads a password from the terminal; an empty one prints the usage of cmd.
func promptPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username. The password will be prompted next.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account's username or email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminUname == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(createAdminCmd)
		if err != nil {
			return err
		}
		return cli.createAdmin(*createAdminUname, *createAdminEmail, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}
