package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/sidebar/internal/preview"
	"github.com/jpalmerr/sidebar/internal/server"
)

// renderCmd evaluates a board once and prints every surface.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a board once",
	Long: `Evaluate a board definition once and print what every surface shows.

Color codes are removed from the output. Frames are printed even when some
pushes fail; the command then exits with status 1 and reports the errors.

Example:
  sidebar render -c board.yaml
  sidebar render -c board.yaml --json`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Bool("json", false, "print frames as JSON (env SIDEBAR_JSON)")
	renderCmd.Flags().Duration("timeout", 10*time.Second, "limit for fetching the feed (env SIDEBAR_TIMEOUT)")
}

func runRender(cmd *cobra.Command, args []string) error {
	v, err := settings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(v)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	p, err := preview.New(cfg, preview.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
	defer cancel()

	frames, renderErr := p.RenderOnce(ctx)

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(frames); err != nil {
			return fmt.Errorf("failed to encode frames: %w", err)
		}
	} else if err := server.WriteText(out, frames); err != nil {
		return fmt.Errorf("failed to write frames: %w", err)
	}

	if renderErr != nil {
		return fmt.Errorf("render failed: %w", renderErr)
	}
	return nil
}
