package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/sidebar/config"
)

const envPrefix = "SIDEBAR"

// loadEnvFile loads the dotenv file into the process environment. Variables
// already set win, so the shell can always override the file.
func loadEnvFile(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// settings binds cmd's flags to SIDEBAR_ environment variables. An explicit
// flag beats the environment, which beats the flag default.
func settings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// loadConfig reads the board definition named by --config or SIDEBAR_CONFIG.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := v.GetString("config")
	if path == "" {
		return nil, errors.New("a board definition is required: pass --config or set SIDEBAR_CONFIG")
	}
	return config.Load(path)
}

// newLogger creates a JSON logger for CLI use.
func newLogger(v *viper.Viper) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}
