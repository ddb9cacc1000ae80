package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sss-sync/console/internal/errors"
	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/authmw"
	"github.com/sss-sync/console/pkg/console"
	"github.com/sss-sync/console/pkg/routepath"
	"github.com/sss-sync/console/pkg/router"
)

// simulated is a fixed session used by navigate --as.
type simulated struct{ auth.State }

func (s simulated) Role() string { return s.State.Role }

// sessionAs returns a fixed session for role, or nil for "" (use the store).
func sessionAs(role string) (authmw.Session, error) {
	switch strings.ToUpper(role) {
	case "":
		return nil, nil
	case "ANONYMOUS", "GUEST":
		return simulated{}, nil
	case auth.RoleUser, auth.RoleAdmin:
		r := strings.ToUpper(role)
		return simulated{auth.State{Token: "simulated", UserID: "0", Username: "simulated", Role: r}}, nil
	}
	return nil, fmt.Errorf("--as must be anonymous, USER or ADMIN, got %q", role)
}

func navigateCmd(flags *globalFlags) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "navigate <path>",
		Short: "Resolve a console path for the current session",
		Long: `Resolve a console path through the route table and guard, printing
every redirect taken and the view that finally renders.

Examples:
  syncconsole navigate /admin/conflicts
  syncconsole navigate /login --as USER`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}

			s, err := sessionAs(as)
			if err != nil {
				return err
			}
			if s == nil {
				store, err := e.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()
				s = store
			}

			c, err := console.New(s, console.WithLogger(e.logger))
			if err != nil {
				return err
			}
			res, err := c.Navigate(cmd.Context(), args[0])
			if err != nil {
				return navigationError(args[0], err)
			}
			return renderNavigation(args[0], res)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Simulate a session: anonymous, USER or ADMIN")

	return cmd
}

// navigationError maps a navigation failure onto a console error code.
func navigationError(path string, err error) error {
	switch {
	case routepath.IsInvalid(err):
		return errors.New("C400").WithDetail("Path " + path).Wrap(err)
	case stderrors.Is(err, router.ErrTooManyRedirects), stderrors.Is(err, router.ErrRedirectLoop):
		return errors.New("C401").WithDetail("Path " + path).Wrap(err)
	}
	return err
}

func renderNavigation(requested string, res *router.Result) error {
	if len(res.Redirects) > 0 {
		rows := [][]string{{"#", "From", "To", "Reason"}}
		for i, h := range res.Redirects {
			rows = append(rows, []string{fmt.Sprint(i + 1), h.From, h.To, string(h.Reason)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Println()
	}

	name := ""
	if res.Route != nil {
		name = res.Route.Name
	}
	success("%s → %s", requested, res.Location())
	info("Route: %s", name)
	info("View:  %s", res.View)
	return nil
}
