// Package main is the entry point for the sidebar CLI.
//
// The CLI loads a YAML board definition and runs it against an in-memory
// host, so boards can be checked and previewed without a game server.
//
// Usage:
//
//	sidebar render -c board.yaml   # Print every surface once
//	sidebar serve -c board.yaml    # Serve a live preview
//	sidebar validate -c board.yaml # Validate a board definition
//	sidebar version                # Show version info
//
// Flags can also be set through SIDEBAR_ environment variables, for example
// SIDEBAR_CONFIG or SIDEBAR_LOG_LEVEL, and through a .env file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "sidebar",
	Short: "Preview scoreboard sidebars from a board definition",
	Long: `sidebar runs a scoreboard sidebar board from a YAML definition.

Boards are evaluated against simulated viewers: render prints what every
surface shows, serve keeps the board refreshing and streams it to a browser.

Quick start:
  1. Create a board definition (board.yaml)
  2. Run: sidebar serve -c board.yaml
  3. Open http://localhost:8080 in your browser

Example definition:
  kind: global
  title: "&6&lArena"
  lines:
    - "&aOnline: {{len .Online}}"
    - "Tick: {{.Tick}}"
  viewers: [alice, bob]`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this sidebar binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "sidebar %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to board definition (env SIDEBAR_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error (env SIDEBAR_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading settings; missing files are ignored")

	rootCmd.AddCommand(versionCmd)
}
