package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sss-sync/console/internal/errors"
	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/authmw"
)

func whoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Long: `Show the stored session and the claims carried by its token.
The token is decoded without verifying its signature.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}

			store, err := e.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			st := store.State()
			if !st.IsAuthenticated() {
				return errors.New("C203").WithSuggestion("Run: syncconsole login")
			}

			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Session")).
				WithPadding(1).
				Println(describeSession(st, authmw.LandingFor(store), time.Now()))
			return nil
		},
	}
}

// describeSession renders the session lines shown by whoami.
func describeSession(st auth.State, landing string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User:     %s (id %s)\n", st.Username, st.UserID)
	fmt.Fprintf(&b, "Role:     %s\n", st.Role)
	fmt.Fprintf(&b, "Landing:  %s", landing)

	claims, err := auth.ParseClaims(st.Token)
	if err != nil {
		b.WriteString("\nToken:    opaque")
		return b.String()
	}
	if claims.Subject != "" {
		fmt.Fprintf(&b, "\nSubject:  %s", claims.Subject)
	}
	if claims.Issuer != "" {
		fmt.Fprintf(&b, "\nIssuer:   %s", claims.Issuer)
	}
	if claims.IssuedAt != nil {
		fmt.Fprintf(&b, "\nIssued:   %s", claims.IssuedAt.Format(time.RFC3339))
	}
	if claims.ExpiresAt != nil {
		if claims.Expired(now) {
			fmt.Fprintf(&b, "\nExpires:  %s (expired)", claims.ExpiresAt.Format(time.RFC3339))
		} else {
			fmt.Fprintf(&b, "\nExpires:  %s (in %s)", claims.ExpiresAt.Format(time.RFC3339),
				claims.TimeLeft(now).Round(time.Second))
		}
	}
	return b.String()
}
