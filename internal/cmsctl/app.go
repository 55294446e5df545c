// Package cmsctl implements the operator command line: bootstrapping
// accounts directly against the store before anyone can log in.
package cmsctl

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/newsnow/internal/flagx"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
)

const usage = `usage: cmsctl <command> [flags]

commands:
  create-user  -username NAME [-name "Full Name"] [-role admin|author]
  help         show this message
`

// App runs one cmsctl command.
type App struct {
	users   *services.UserService
	in      *bufio.Reader
	out     io.Writer
	stdinFd int
}

func NewApp(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		users:   services.NewUserService(db, m, cfg),
		in:      bufio.NewReader(in),
		out:     out,
		stdinFd: int(os.Stdin.Fd()),
	}
}

// Run dispatches args[0] as the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("no command given")
	}

	switch args[0] {
	case "create-user":
		return a.createUser(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(a.out)

	userName := fs.String("username", "", "login name")
	fullName := fs.String("name", "", "full name")
	role := fs.String("role", models.RoleAdmin.String(), "admin or author")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-username", "-name", "-role"})); err != nil {
		return err
	}

	var err error
	if *userName == "" {
		if *userName, err = GetSimpleText(a.in, "Username", a.out); err != nil {
			return err
		}
	}
	if *fullName == "" {
		if *fullName, err = GetSimpleText(a.in, "Full name", a.out); err != nil {
			return err
		}
	}

	password, err := GetPassword(a.stdinFd, a.out)
	if err != nil {
		return err
	}

	u, err := a.users.Create(ctx, services.UserInput{
		FullName: *fullName,
		UserName: *userName,
		Password: password,
		Role:     *role,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(a.out, "created %s %q (%s)\n", u.Role, u.UserName, u.ID)
	return nil
}
