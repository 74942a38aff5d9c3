package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	usrSvc user.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addadmin -email EMAIL - create an admin account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminEmail := addAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")

	switch args[1] {
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminEmail == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminEmail, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

// addAdmin registers an admin account using the app's admin secret key.
func (cli *commandLine) addAdmin(email, pwd string) error {
	nu := user.NewUser{
		Email:          core.CleanString(email, true /* lower */),
		Password:       pwd,
		Role:           user.RoleAdmin,
		AdminSecretKey: cli.conf.AdminSecretKey,
	}

	usr, err := cli.usrSvc.Register(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created (id %s)\n", usr.Email, usr.ID)
	return nil
}
