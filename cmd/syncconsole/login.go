package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sss-sync/console/internal/errors"
	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/authmw"
)

func loginCmd(flags *globalFlags) *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in against the sync backend",
		Long: `Log in against the sync backend and persist the session.

The password is read from --password-stdin, --password, or an
interactive prompt, in that order.

Examples:
  syncconsole login -u admin
  echo "$PASSWORD" | syncconsole login -u ops --password-stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			return runLogin(cmd, flags, username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func runLogin(cmd *cobra.Command, flags *globalFlags, username, password string) error {
	e, err := loadEnv(flags)
	if err != nil {
		return err
	}

	if interactive(cmd.InOrStdin()) {
		if username == "" {
			if username, err = prompt("Username", false); err != nil {
				return errors.New("C501").WithSuggestion("Pass --username and --password-stdin").Wrap(err)
			}
		}
		if password == "" {
			if password, err = prompt("Password", true); err != nil {
				return errors.New("C501").WithSuggestion("Pass --username and --password-stdin").Wrap(err)
			}
		}
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.New("C500").WithSuggestion("Pass --username and --password-stdin")
	}

	ctx := cmd.Context()
	store, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Login(ctx, auth.Credentials{Username: username, Password: password})
	if err != nil {
		return loginError(err)
	}

	success("Logged in as %s (%s)", st.Username, st.Role)
	info("Landing: %s", authmw.LandingFor(store))
	return nil
}

// readPassword reads one line from r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt asks for one line on the terminal. Replaced in tests.
var prompt = func(label string, masked bool) (string, error) {
	input := pterm.DefaultInteractiveTextInput
	if masked {
		return input.WithMask("*").Show(label)
	}
	return input.Show(label)
}

// interactive reports whether r is a terminal. Replaced in tests.
var interactive = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
