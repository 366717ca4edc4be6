package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/edupreneurx/submissions-api/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword // swapped in tests

	errHelp = errors.New("help provided")
)

type adminProvisioner interface {
	CreateAdmin(ctx context.Context, email, fullName, password string) (*models.AdminUser, error)
	SetPassword(ctx context.Context, email, password string) error
}

type commandLine struct {
	auth adminProvisioner
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  create-admin -email EMAIL -name FULL_NAME - create a dashboard admin")
	fmt.Fprintln(cli.out, "  set-password -email EMAIL - reset an admin's password")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createCmd := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	createCmd.SetOutput(cli.out)
	createEmail := createCmd.String("email", "", "The admin's login email. The password will be prompted next.")
	createName := createCmd.String("name", "", "The admin's display name.")

	passwordCmd := flag.NewFlagSet("set-password", flag.ContinueOnError)
	passwordCmd.SetOutput(cli.out)
	passwordEmail := passwordCmd.String("email", "", "The admin's login email. The password will be prompted next.")

	switch args[1] {
	case "create-admin":
		if err := createCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createEmail == "" || *createName == "" {
			createCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createCmd.Usage()
			return errHelp
		}
		user, err := cli.auth.CreateAdmin(ctx, *createEmail, *createName, pwd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "admin %s created (%s)\n", user.Email, user.ID)
		return nil
	case "set-password":
		if err := passwordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *passwordEmail == "" {
			passwordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			passwordCmd.Usage()
			return errHelp
		}
		if err := cli.auth.SetPassword(ctx, *passwordEmail, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "password updated for %s\n", *passwordEmail)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
