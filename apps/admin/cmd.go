package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/icba/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc *user.Service
	db     *sql.DB
	engine string
	out    io.Writer
}

// groupsFlag collects the repeated -group flags.
type groupsFlag []string

func (g *groupsFlag) String() string { return strings.Join(*g, ",") }

func (g *groupsFlag) Set(value string) error {
	*g = append(*g, strings.ToLower(strings.TrimSpace(value)))
	return nil
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  adduser -username USERNAME -email EMAIL [-first NAME] [-last NAME] [-group GROUP]... - create or update a user")
	_, _ = fmt.Fprintln(cli.out, "  addgroup -username USERNAME -group GROUP - add a user to a group ("+strings.Join(user.AllGroups, "|")+")")
	_, _ = fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset user's password")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command: up, up-by-one, up-to, down, down-to, redo, reset, status, version")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses the subcommand flags, reporting -h as errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		var groups groupsFlag
		cmd := cli.newFlagSet("adduser")
		uname := cmd.String("username", "", "The user's username.")
		email := cmd.String("email", "", "The user's email.")
		first := cmd.String("first", "", "The user's first name.")
		last := cmd.String("last", "", "The user's last name.")
		cmd.Var(&groups, "group", "A group to add the user to. May be repeated.")
		if err := parse(cmd, args[2:]); err != nil {
			return err
		}
		if *uname == "" || *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(cmd)
		if err != nil {
			return err
		}
		return cli.addUser(user.NewUser{Username: *uname, Password: pwd, Email: *email, FirstName: *first, LastName: *last}, groups...)

	case "addgroup":
		cmd := cli.newFlagSet("addgroup")
		uname := cmd.String("username", "", "The user's username.")
		group := cmd.String("group", "", "The group to add the user to.")
		if err := parse(cmd, args[2:]); err != nil {
			return err
		}
		if *uname == "" || *group == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addGroup(*uname, strings.ToLower(strings.TrimSpace(*group)))

	case "resetpassword":
		cmd := cli.newFlagSet("resetpassword")
		uname := cmd.String("username", "", "The user's username. The password will be prompted next.")
		if err := parse(cmd, args[2:]); err != nil {
			return err
		}
		if *uname == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(cmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*uname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(cmd *flag.FlagSet) (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
