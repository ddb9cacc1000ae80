package main

import (
	"runtime"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version, commit, and build information for syncconsole.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				pterm.Println(version)
				return
			}

			printBanner()
			pterm.Println()
			pterm.Printf("  Version:    %s\n", version)
			pterm.Printf("  Commit:     %s\n", commit)
			pterm.Printf("  Built:      %s\n", date)
			pterm.Printf("  Go version: %s\n", runtime.Version())
			pterm.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
			pterm.Println()
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")

	return cmd
}
