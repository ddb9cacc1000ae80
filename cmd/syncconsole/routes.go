package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sss-sync/console/pkg/console"
	"github.com/sss-sync/console/pkg/router"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the console route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadEnv(flags); err != nil {
				return err
			}
			routes, err := newRoutesTable()
			if err != nil {
				return err
			}
			return pterm.DefaultTable.WithHasHeader().WithData(routeRows(routes)).Render()
		},
	}
}

// newRoutesTable compiles the console routes. The table does not depend on
// the session, so an anonymous one is used.
func newRoutesTable() ([]*router.Route, error) {
	r, err := router.New(console.Routes(simulated{}))
	if err != nil {
		return nil, err
	}
	return r.Routes(), nil
}

func routeRows(routes []*router.Route) [][]string {
	rows := [][]string{{"Pattern", "Name", "View", "Redirect", "Access"}}
	for _, rt := range routes {
		redirect := ""
		if rt.Redirect != nil {
			redirect = rt.Redirect.String()
		}
		rows = append(rows, []string{rt.Pattern, rt.Name, string(rt.View), redirect, access(rt.MergedMeta())})
	}
	return rows
}

func access(m router.Meta) string {
	var parts []string
	if m.RequiresAuth {
		parts = append(parts, "auth")
	}
	if m.RequiresGuest {
		parts = append(parts, "guest")
	}
	if m.HasRoles() {
		parts = append(parts, strings.Join(m.Roles, "|"))
	}
	if len(parts) == 0 {
		return "public"
	}
	return strings.Join(parts, ", ")
}
