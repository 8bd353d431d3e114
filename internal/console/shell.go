package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Menu entries that are not commands.
const (
	ChoiceRefresh = 0
	ChoiceLogout  = 99
)

// Shell is the line-based operator surface of a Console.
type Shell struct {
	console  *Console
	in       *bufio.Reader
	out      io.Writer
	password func() (string, error)
}

// NewShell binds a console to an input and output stream. Passwords are read
// without echo when in is a terminal.
func NewShell(c *Console, in io.Reader, out io.Writer) *Shell {
	s := &Shell{console: c, in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		s.password = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return s
}

// Run serves login and menu cycles until input ends or ctx is done. End of
// input is a normal exit.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sess, err := s.login(ctx)
		if err != nil {
			return eofIsNil(err)
		}

		if err := s.menu(ctx, sess); err != nil {
			_ = s.console.Logout(sess)
			return eofIsNil(err)
		}
	}
}

func (s *Shell) login(ctx context.Context) (*Session, error) {
	fmt.Fprintln(s.out, titleStyle.Render("BOTTLECELL - HMI3 EMERGENCY STATION"))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.console.BeginLogin()

		fmt.Fprint(s.out, "Username: ")
		user, err := s.readLine()
		if err != nil {
			return nil, err
		}
		fmt.Fprint(s.out, "Password: ")
		pass, err := s.readPassword()
		if err != nil {
			return nil, err
		}

		sess, err := s.console.Authenticate(ctx, user, pass)
		if errors.Is(err, ErrAuthFailure) {
			fmt.Fprintln(s.out, "Authentication failed. Another attempt is allowed.")
			continue
		}
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(s.out, "Logged in: %s\n", sess.Username)
		if sess.EmergencyAccess {
			fmt.Fprintln(s.out, alertStyle.Render("ALERT: former employee account detected"))
			fmt.Fprintln(s.out, alertStyle.Render("Emergency privileged access granted"))
		}
		return sess, nil
	}
}

func (s *Shell) menu(ctx context.Context, sess *Session) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		st, err := s.console.Status(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "Sensor read error: %v\n", err)
		} else {
			fmt.Fprintln(s.out, RenderPanel(sess.Username, sess.EmergencyAccess, st))
		}
		fmt.Fprint(s.out, RenderMenu())

		fmt.Fprint(s.out, "Choice (0-6, 99): ")
		line, err := s.readLine()
		if err != nil {
			return err
		}

		choice, err := ParseChoice(line)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid choice: %v\n", err)
			continue
		}

		switch choice {
		case ChoiceRefresh:
			continue
		case ChoiceLogout:
			if err := s.console.Logout(sess); err != nil {
				fmt.Fprintf(s.out, "Logout: %v\n", err)
			}
			fmt.Fprintln(s.out, "Logged out.")
			return nil
		}

		res, err := s.execute(ctx, sess, CommandID(choice))
		if err != nil {
			return err
		}
		s.printResult(res)
	}
}

func (s *Shell) execute(ctx context.Context, sess *Session, id CommandID) (CommandResult, error) {
	args := Args{Confirm: s.confirm}

	if id == ValveMaintenance {
		fmt.Fprintln(s.out, "1=Inlet ON, 2=Outlet ON, 3=All OFF")
		fmt.Fprint(s.out, "Option: ")
		line, err := s.readLine()
		if err != nil {
			return CommandResult{}, err
		}
		// a non-numeric option is passed through as 0 and rejected by the command
		args.Sub, _ = strconv.Atoi(line)
	}

	return s.console.Dispatch(ctx, sess, id, args), nil
}

func (s *Shell) confirm(cmd Command) bool {
	fmt.Fprintf(s.out, "Critical command %q - confirm (y/N): ", cmd.Description)
	line, err := s.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *Shell) printResult(res CommandResult) {
	switch res.Status {
	case Executed:
		fmt.Fprintln(s.out, okStyle.Render(fmt.Sprintf("Command %d executed (%d writes)", int(res.Command), len(res.Writes))))
		for _, w := range res.Writes {
			fmt.Fprintf(s.out, "  %s <- %g\n", w.Tag, w.Value)
		}
	case Cancelled:
		fmt.Fprintln(s.out, "Cancelled.")
	default:
		fmt.Fprintln(s.out, alertStyle.Render(fmt.Sprintf("Command %d %s: %v", int(res.Command), res.Status, res.Err)))
	}
}

// ParseChoice parses a menu entry: 0, 1-6 or 99.
func ParseChoice(line string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidChoice, line)
	}
	if n == ChoiceRefresh || n == ChoiceLogout {
		return n, nil
	}
	if n < int(FullStop) || n > int(ValveMaintenance) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChoice, n)
	}
	return n, nil
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo unless input was typed ahead; buffered
// bytes are consumed first so they are not lost to the raw terminal read.
func (s *Shell) readPassword() (string, error) {
	if s.password != nil && s.in.Buffered() == 0 {
		return s.password()
	}
	return s.readLine()
}

func eofIsNil(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
