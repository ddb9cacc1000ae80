package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sss-sync/console/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗╔═╗╔═╗  ┌─┐┌─┐┌┐┌┌─┐┌─┐┬  ┌─┐
  ╚═╗╚═╗╚═╗  │  │ ││││└─┐│ ││  ├┤
  ╚═╝╚═╝╚═╝  └─┘└─┘┘└┘└─┘└─┘┴─┘└─┘
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	backend    string
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "syncconsole",
		Short: "Command line shell for the SSS sync admin console",
		Long: `syncconsole logs in against the sync backend, keeps the session
in a persistent store and resolves console navigation exactly as the
browser console does.

  • Role aware route guard (USER / ADMIN)
  • Session persisted to a file, the OS keyring, Redis or SQL
  • Local HTTP server with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to console.json (default: search upward from the working directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&flags.backend, "backend", "", "Session storage backend: memory, file, keyring, redis, sql")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		loginCmd(flags),
		logoutCmd(flags),
		whoamiCmd(flags),
		navigateCmd(flags),
		routesCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the console ASCII art banner.
func printBanner() {
	pterm.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	pterm.Println(pterm.FgGreen.Sprint("✓") + " " + fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	pterm.Println("  " + fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	pterm.Println(pterm.FgYellow.Sprint("⚠") + " " + fmt.Sprintf(format, args...))
}
