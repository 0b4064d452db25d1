package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) seed() error {
	seeded, err := cli.usrSvc.SeedDefaults(context.Background())
	if err != nil {
		return err
	}
	if seeded {
		fmt.Fprintln(cli.out, "Default users created")
	} else {
		fmt.Fprintln(cli.out, "Users already exist, nothing to do")
	}
	return nil
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, pwd, role string) error {
	usr, err := cli.usrSvc.AddUser(context.Background(), uname, pwd, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "User %q saved with role %q\n", usr.Username, usr.Role)
	return nil
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrSvc.SetPassword(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Password of %q reset\n", usr.Username)
	return nil
}
