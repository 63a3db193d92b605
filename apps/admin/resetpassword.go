package main

import (
	"context"
	"fmt"
)

// resetPassword sets the user's password, logging them out everywhere.
func (cli *commandLine) resetPassword(uname, pwd string) error {
	if err := cli.usrSvc.SetPassword(context.Background(), uname, pwd); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "password of %q reset\n", uname)
	return nil
}
