package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/noah-isme/eduvillage-api/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword

	errHelp = errors.New("help provided")
)

type adminCreator interface {
	CreateAdmin(ctx context.Context, email, password, name string) (*models.User, error)
}

type commandLine struct {
	migrate func(command string, args ...string) error
	admins  adminCreator
	seeder  *courseSeeder
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate <up|down|status|redo|version|up-to N|down-to N> - manage the database schema")
	fmt.Fprintln(cli.out, "  createadmin -email EMAIL -name NAME                      - create an administrator (password prompted)")
	fmt.Fprintln(cli.out, "  seed -file courses.yaml                                  - load courses for an existing teacher")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	adminEmail := createAdminCmd.String("email", "", "Administrator email. The password will be prompted next.")
	adminName := createAdminCmd.String("name", "Administrator", "Display name.")

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedFile := seedCmd.String("file", "", "YAML file describing the courses to create.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2], args[3:]...)
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *adminEmail == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAdminCmd.Usage()
			return errHelp
		}
		user, err := cli.admins.CreateAdmin(ctx, *adminEmail, string(pwd), *adminName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "admin %s created (%s)\n", user.Email, user.ID)
		return nil
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		file, err := loadSeedFile(*seedFile)
		if err != nil {
			return err
		}
		created, err := cli.seeder.Seed(ctx, file)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "seeded %d course(s) for %s\n", created, file.TeacherEmail)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}
