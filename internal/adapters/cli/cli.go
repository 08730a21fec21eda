package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ops-portal/internal/adapters/repl"
	"ops-portal/internal/adapters/web"
	"ops-portal/internal/app"
	"ops-portal/internal/core"
)

// Options carries what the one-shot commands need beyond the ApplicationService.
type Options struct {
	In        *bufio.Reader // password prompts and wizards; nil disables them
	Out       io.Writer
	JWTSecret string
	ActorID   int
}

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, opts Options) error {
	if len(args) == 0 {
		return errors.New("no command given")
	}

	switch args[0] {
	case "user-add":
		// Usage: app user-add <username> <email> [role]   (password read from stdin)
		if len(args) < 3 {
			return errors.New("usage: app user-add <username> <email> [role]")
		}
		role := core.RoleStaff
		if len(args) > 3 {
			role = args[3]
		}
		password, err := readPassword(opts)
		if err != nil {
			return err
		}
		user, err := svc.CreateUser(ctx, app.CreateUserRequest{
			Username: args[1],
			Email:    args[2],
			Password: password,
			Role:     role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(opts.Out, "User %s created (ID: %d, role: %s).\n", user.Username, user.UserID, user.Role)
		return nil

	case "token":
		// Usage: app token <username>   (password read from stdin)
		if len(args) < 2 {
			return errors.New("usage: app token <username>")
		}
		password, err := readPassword(opts)
		if err != nil {
			return err
		}
		session, err := svc.AuthenticateUser(ctx, args[1], password)
		if err != nil {
			return err
		}
		token, err := web.IssueToken(opts.JWTSecret, session, web.TokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(opts.Out, token)
		return nil
	}

	err := repl.NewConsole(svc, opts.In, opts.Out, opts.ActorID).Execute(ctx, args)
	if errors.Is(err, repl.ErrExit) {
		return nil
	}
	return err
}

func readPassword(opts Options) (string, error) {
	if opts.In == nil {
		return "", errors.New("password must be supplied on stdin")
	}
	fmt.Fprint(opts.Out, "Password: ")
	line, err := opts.In.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
