package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/alama/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("migrations need the postgres database engine")
	errNoPassword = errors.New("password is required")
)

type commandLine struct {
	db     *sqlx.DB // nil with the memory engine
	usrSvc *user.Service
	out    io.Writer
}

func (cli *commandLine) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Alama administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	migrateCmd := &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, down, status, redo...) over the embedded migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return cli.migrate(args[0], args[1:])
		},
		DisableFlagParsing: true, // goose commands take raw arguments
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default users if no user exists yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.seed()
		},
	}

	var addUname string
	var addAdmin bool
	addUserCmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the password and role of an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			role := user.RoleUser
			if addAdmin {
				role = user.RoleAdmin
			}
			return cli.addUser(addUname, pwd, role)
		},
	}
	addUserCmd.Flags().StringVar(&addUname, "username", "", "The user's username. The password will be prompted next.")
	addUserCmd.Flags().BoolVar(&addAdmin, "admin", false, "Give the user the admin role")
	_ = addUserCmd.MarkFlagRequired("username")

	var resetUname string
	resetPasswordCmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			return cli.resetPassword(resetUname, pwd)
		},
	}
	resetPasswordCmd.Flags().StringVar(&resetUname, "username", "", "The user's username. The password will be prompted next.")
	_ = resetPasswordCmd.MarkFlagRequired("username")

	root.AddCommand(migrateCmd, seedCmd, addUserCmd, resetPasswordCmd)
	return root
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.newRootCmd()
	root.SetArgs(args[1:])
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errNoPassword
	}
	return string(pwd), nil
}
