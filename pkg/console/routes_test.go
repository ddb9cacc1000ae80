package console_test

import (
	"slices"
	"testing"

	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/console"
	"github.com/sss-sync/console/pkg/router"
)

func TestRoutesTable(t *testing.T) {
	r, err := router.New(console.Routes(auth.NewStore(t.Context(), nil, nil)))
	if err != nil {
		t.Fatalf("router.New error = %v", err)
	}

	tests := []struct {
		name    string
		pattern string
		view    router.ViewID
		auth    bool
		guest   bool
		roles   []string
	}{
		{console.RouteLogin, "/login", console.ViewLogin, false, true, nil},
		{console.RouteOrderNew, "/orders/new", console.ViewOrderNew, true, false, []string{"USER", "ADMIN"}},
		{console.RouteAdminLayout, "/admin", console.ViewAdminLayout, true, false, []string{"ADMIN"}},
		{console.RouteComplexQuery, "/admin/queries/complex", console.ViewComplexQuery, true, false, []string{"ADMIN"}},
		{console.RouteDailySyncReport, "/admin/reports/daily-sync", console.ViewDailySyncReport, true, false, []string{"ADMIN"}},
		{console.RouteConflictManagement, "/admin/conflicts", console.ViewConflictManagement, true, false, []string{"ADMIN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, ok := r.ByName(tt.name)
			if !ok {
				t.Fatalf("route %q not found", tt.name)
			}
			if route.Pattern != tt.pattern || route.View != tt.view {
				t.Errorf("route = %s %s, want %s %s", route.Pattern, route.View, tt.pattern, tt.view)
			}
			meta := route.MergedMeta()
			if meta.RequiresAuth != tt.auth || meta.RequiresGuest != tt.guest || !slices.Equal(meta.Roles, tt.roles) {
				t.Errorf("meta = %+v", meta)
			}
		})
	}
}

func TestRoutesRedirectRecords(t *testing.T) {
	r := router.MustNew(console.Routes(auth.NewStore(t.Context(), nil, nil)))

	admin, _ := r.ByName(console.RouteAdminLayout)
	if admin.Redirect == nil || admin.Redirect.Dynamic() || admin.Redirect.Target(nil) != "/admin/queries/complex" {
		t.Errorf("/admin redirect = %v", admin.Redirect)
	}

	m, err := r.Resolve("/")
	if err != nil {
		t.Fatal(err)
	}
	if m.Route.Redirect == nil || !m.Route.Redirect.Dynamic() {
		t.Error("/ must use a computed redirect")
	}

	m, err = r.Resolve("/no/such/page")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Route.IsCatchAll || m.Route.Redirect.Target(nil) != "/" {
		t.Errorf("unmatched path resolved to %s", m.Route.Pattern)
	}
	if m.Params["pathMatch"] != "no/such/page" {
		t.Errorf("pathMatch = %q", m.Params["pathMatch"])
	}
}
