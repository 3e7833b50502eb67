// Package config provides YAML board definitions for the sidebar CLI.
//
// A definition describes a board the way a plugin would build one in code:
// its kind, title, line templates, teams and the viewers to simulate. It
// lets boards be previewed and served without writing a host integration.
//
// Example configuration:
//
//	kind: personal
//	title: "&6&l{{.Viewer}}"
//	refresh_interval: 5s
//	port: 8080
//
//	lines:
//	  - "&aOnline: {{len .Online}}"
//	  - "Tick: {{.Tick}}"
//
//	feed:
//	  url: ${FEED_URL:-http://localhost:9000/lines}
//	  interval: 30s
//
//	viewers: [alice, bob]
//
//	teams:
//	  - name: red
//	    display_name: "&c"
//	    members: [alice]
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/sidebar"
)

// minRefreshInterval keeps configs from spinning the scheduler.
const minRefreshInterval = 1 * time.Second

// Board kinds.
const (
	KindGlobal   = "global"
	KindPersonal = "personal"
)

// Config is the root of a board definition.
//
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Kind is "global" or "personal". Defaults to "global".
	Kind string `yaml:"kind"`

	// Title is a text/template evaluated on every refresh.
	Title string `yaml:"title"`

	// Objective overrides the objective name. Defaults to "sidebar".
	Objective string `yaml:"objective"`

	// Lines are text/templates evaluated on every refresh, top to bottom.
	// When empty, the feed's lines are shown instead.
	Lines []string `yaml:"lines"`

	// Feed optionally pulls lines from an HTTP endpoint.
	Feed *FeedConfig `yaml:"feed"`

	// Viewers are the names of simulated viewers that join on start.
	Viewers []string `yaml:"viewers"`

	// Teams are created on the board at build time.
	Teams []TeamConfig `yaml:"teams"`

	// RefreshInterval is the time between board updates. Defaults to 5s.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// Port is the preview server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PreviewTitle is shown on the preview page.
	PreviewTitle string `yaml:"preview_title"`
}

// FeedConfig describes an HTTP line source.
type FeedConfig struct {
	// URL supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Interval between fetches. Defaults to the board's refresh_interval.
	Interval Duration `yaml:"interval"`

	// Timeout per fetch. Defaults to 5s.
	Timeout Duration `yaml:"timeout"`

	// Headers are sent with each request. Values support environment
	// variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// TeamConfig describes a team created at build time.
type TeamConfig struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Members     []string `yaml:"members"`
}

// Duration wraps time.Duration for YAML unmarshaling.
//
// It accepts duration strings like "10s", "1m", "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML board definition.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML board definition.
//
// Environment variables are expanded in the feed URL and header values.
// Defaults are applied for Kind (global), Port (8080) and RefreshInterval (5s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Kind == "" {
		cfg.Kind = KindGlobal
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = Duration(5 * time.Second)
	}
	if cfg.Feed != nil && cfg.Feed.Interval == 0 {
		cfg.Feed.Interval = cfg.RefreshInterval
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) expandAndValidate() error {
	if c.Kind != KindGlobal && c.Kind != KindPersonal {
		return fmt.Errorf("kind must be %q or %q, got %q", KindGlobal, KindPersonal, c.Kind)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if d := c.RefreshInterval.Duration(); d < minRefreshInterval || d > time.Hour {
		return fmt.Errorf("refresh_interval must be between 1s and 1h, got %s", d)
	}

	if c.Objective != "" && len([]rune(c.Objective)) > sidebar.MaxTeamNameLen {
		return fmt.Errorf("objective must be at most %d characters, got %q", sidebar.MaxTeamNameLen, c.Objective)
	}

	// fail fast before the board evaluates a broken template
	if _, err := template.New("title").Parse(c.Title); err != nil {
		return fmt.Errorf("invalid title template: %w", err)
	}
	if len(c.Lines) > sidebar.MaxEntries {
		return fmt.Errorf("at most %d lines are supported, got %d", sidebar.MaxEntries, len(c.Lines))
	}
	for i, line := range c.Lines {
		if _, err := template.New("line").Parse(line); err != nil {
			return fmt.Errorf("lines[%d]: invalid template: %w", i, err)
		}
	}

	if err := c.validateFeed(); err != nil {
		return err
	}

	if len(c.Lines) == 0 && c.Feed == nil {
		return errors.New("at least one line or a feed must be defined")
	}

	viewers := make(map[string]struct{}, len(c.Viewers))
	for i, name := range c.Viewers {
		if name == "" {
			return fmt.Errorf("viewers[%d]: name is required", i)
		}
		if _, exists := viewers[name]; exists {
			return fmt.Errorf("viewers[%d]: duplicate viewer %q", i, name)
		}
		viewers[name] = struct{}{}
	}

	for i, t := range c.Teams {
		if t.Name == "" {
			return fmt.Errorf("teams[%d]: name is required", i)
		}
		for _, m := range t.Members {
			if _, ok := viewers[m]; !ok {
				return fmt.Errorf("teams[%d] (%s): member %q is not a configured viewer", i, t.Name, m)
			}
		}
	}

	return nil
}

func (c *Config) validateFeed() error {
	f := c.Feed
	if f == nil {
		return nil
	}

	if f.URL == "" {
		return errors.New("feed: url is required")
	}
	expanded, err := expandEnvVars(f.URL)
	if err != nil {
		return fmt.Errorf("feed: url: %w", err)
	}
	f.URL = expanded

	parsedURL, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("feed: invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("feed: url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range f.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("feed: headers[%s]: %w", k, err)
		}
		f.Headers[k] = expanded
	}

	if f.Timeout != 0 && f.Timeout.Duration() < time.Second {
		return fmt.Errorf("feed: timeout must be at least 1s if specified, got %s", f.Timeout.Duration())
	}

	if d := f.Interval.Duration(); d < minRefreshInterval || d > time.Hour {
		return fmt.Errorf("feed: interval must be between 1s and 1h, got %s", d)
	}

	return nil
}
