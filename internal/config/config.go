// Package config loads hreq defaults from the environment and an optional
// YAML file in the config directory.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/adammpkins/hreq/internal/parser"
	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/types"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests.
	DefaultTimeout = 30 * time.Second
	// FileName is the name of the config file inside the config directory.
	FileName = "config.yaml"
)

var (
	ErrInvalidScheme = errors.New("default_scheme must be http or https")
	ErrInvalidPretty = errors.New("pretty must be auto, always or never")
	ErrInvalidHeader = errors.New("headers entries must use the Name:value form")
	ErrInvalidHost   = errors.New("hostnames must be non-empty and contain no '/', ':' or spaces")
)

// Config is the resolved configuration for one invocation.
type Config struct {
	Dir           string
	DefaultScheme string
	FallbackHost  string
	HTTPHosts     []string
	Timeout       time.Duration
	Pretty        string
	Headers       types.HeaderList
	SessionDir    string
	Verbosity     int
}

// fileConfig mirrors config.yaml.
type fileConfig struct {
	DefaultScheme string   `yaml:"default_scheme"`
	FallbackHost  string   `yaml:"fallback_hostname"`
	HTTPHosts     []string `yaml:"http_hostnames"`
	Timeout       string   `yaml:"timeout"`
	Pretty        string   `yaml:"pretty"`
	Headers       []string `yaml:"headers"`
	SessionDir    string   `yaml:"session_dir"`
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Dir:           dir,
		DefaultScheme: "https",
		FallbackHost:  planner.DefaultFallbackHost,
		HTTPHosts:     slices.Clone(planner.DefaultHTTPHosts),
		Timeout:       DefaultTimeout,
		Pretty:        "auto",
		SessionDir:    filepath.Join(dir, "sessions"),
	}
}

// Dir returns the config directory: $HREQ_CONFIG_DIR when set, otherwise
// hreq under the user config directory.
func Dir() string {
	if dir := os.Getenv("HREQ_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".hreq"
	}
	return filepath.Join(base, "hreq")
}

// Load reads the config file from Dir() if it exists and applies
// environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	dir := Dir()
	return load(Default(dir), filepath.Join(dir, FileName), false)
}

// LoadFile reads the config file at path, which must exist. Sessions still
// default to the config directory.
func LoadFile(path string) (*Config, error) {
	return load(Default(Dir()), expandHome(path), true)
}

func load(cfg *Config, path string, required bool) (*Config, error) {
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f.Name(), err)
		}
	case required || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	cfg.Verbosity = Verbosity()
	return cfg, nil
}

// HostRules returns the URL completion rules for the planner.
func (c *Config) HostRules() planner.HostRules {
	return planner.HostRules{
		FallbackHost:  c.FallbackHost,
		HTTPHosts:     c.HTTPHosts,
		DefaultScheme: c.DefaultScheme,
	}
}

// Verbosity reads HREQ_DEBUG: a number, or any true-ish value for 1.
func Verbosity() int {
	s := strings.TrimSpace(os.Getenv("HREQ_DEBUG"))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil && b {
		return 1
	}
	return 0
}

func (c *Config) decode(r io.Reader) error {
	var fc fileConfig
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	if fc.DefaultScheme != "" {
		scheme := strings.ToLower(fc.DefaultScheme)
		if scheme != "http" && scheme != "https" {
			return fmt.Errorf("%w: %q", ErrInvalidScheme, fc.DefaultScheme)
		}
		c.DefaultScheme = scheme
	}

	if fc.FallbackHost != "" {
		if !validHost(fc.FallbackHost) {
			return fmt.Errorf("%w: fallback_hostname %q", ErrInvalidHost, fc.FallbackHost)
		}
		c.FallbackHost = fc.FallbackHost
	}

	if fc.HTTPHosts != nil {
		hosts := make([]string, 0, len(fc.HTTPHosts))
		for _, h := range fc.HTTPHosts {
			if !validHost(h) {
				return fmt.Errorf("%w: http_hostnames entry %q", ErrInvalidHost, h)
			}
			hosts = append(hosts, strings.ToLower(h))
		}
		c.HTTPHosts = hosts
	}

	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		c.Timeout = d
	}

	if fc.Pretty != "" {
		switch fc.Pretty {
		case "auto", "always", "never":
			c.Pretty = fc.Pretty
		default:
			return fmt.Errorf("%w: %q", ErrInvalidPretty, fc.Pretty)
		}
	}

	for _, item := range fc.Headers {
		comp, err := parser.ParseComponent(item)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidHeader, item)
		}
		h, ok := comp.(types.Header)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidHeader, item)
		}
		c.Headers.Add(h.Name, h.Value)
	}

	if fc.SessionDir != "" {
		c.SessionDir = expandHome(fc.SessionDir)
	}

	return nil
}

func validHost(h string) bool {
	return h != "" && !strings.ContainsAny(h, "/: \t")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
