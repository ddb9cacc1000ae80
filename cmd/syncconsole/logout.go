package main

import (
	"github.com/spf13/cobra"
)

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Long:  `Clear the stored session. Logging out without a session is not an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			was := store.Username()
			store.Logout(ctx)

			if was == "" {
				info("No session was stored")
				return nil
			}
			success("Logged out %s", was)
			return nil
		},
	}
}
