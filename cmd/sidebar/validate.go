package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a board definition without running it.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a board definition",
	Long: `Validate a board definition without running it.

This command parses the YAML, expands environment variables, and validates
all fields including line templates. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Definition is valid
  1 - Definition is invalid (error details printed to stderr)

Example:
  sidebar validate -c board.yaml
  SIDEBAR_CONFIG=/etc/sidebar/board.yaml sidebar validate`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	v, err := settings(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	feed := "none"
	if cfg.Feed != nil {
		feed = fmt.Sprintf("%s every %s", cfg.Feed.URL, cfg.Feed.Interval.Duration())
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Config is valid!\n")
	_, _ = fmt.Fprintf(out, "  Kind:             %s\n", cfg.Kind)
	_, _ = fmt.Fprintf(out, "  Port:             %d\n", cfg.Port)
	_, _ = fmt.Fprintf(out, "  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
	_, _ = fmt.Fprintf(out, "  Lines:            %d\n", len(cfg.Lines))
	_, _ = fmt.Fprintf(out, "  Feed:             %s\n", feed)
	_, _ = fmt.Fprintf(out, "  Teams:            %d\n", len(cfg.Teams))
	_, _ = fmt.Fprintf(out, "  Viewers:          %d\n", len(cfg.Viewers))

	return nil
}
