package main

import (
	"context"
	"fmt"

	"github.com/trezcool/icba/core/user"
)

// addUser updates or creates a user.User, adding them to the groups.
func (cli *commandLine) addUser(nu user.NewUser, groups ...string) error {
	usr, err := cli.usrSvc.AddUser(context.Background(), nu, groups...)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "user %q saved (groups: %v)\n", usr.Username, usr.Groups)
	return nil
}

func (cli *commandLine) addGroup(uname, group string) error {
	if err := cli.usrSvc.AddToGroup(context.Background(), uname, group); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "user %q added to %q\n", uname, group)
	return nil
}
