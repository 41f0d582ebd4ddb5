package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adammpkins/hreq/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("HREQ_CONFIG_DIR", dir)
	return dir
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HREQ_CONFIG_DIR", dir)
	t.Setenv("HREQ_DEBUG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(dir), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := writeConfig(t, `
default_scheme: HTTP
fallback_hostname: dev.local
http_hostnames:
  - Dev.Local
  - intranet
timeout: 5s
pretty: never
session_dir: /tmp/hreq-sessions
headers:
  - "Accept:application/json"
  - "X-Trace: on"
  - "X-Trace:again"
  - "Authorization:Basic YWRhOmxvdmVsYWNl=="
`)
	t.Setenv("HREQ_DEBUG", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Config{
		Dir:           dir,
		DefaultScheme: "http",
		FallbackHost:  "dev.local",
		HTTPHosts:     []string{"dev.local", "intranet"},
		Timeout:       5 * time.Second,
		Pretty:        "never",
		SessionDir:    "/tmp/hreq-sessions",
		Verbosity:     2,
		Headers: types.HeaderList{
			{Name: "Accept", Value: "application/json"},
			{Name: "X-Trace", Value: " on"},
			{Name: "X-Trace", Value: "again"},
			{Name: "Authorization", Value: "Basic YWRhOmxvdmVsYWNl=="},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := writeConfig(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultScheme != "https" || cfg.Timeout != DefaultTimeout || cfg.Dir != dir {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{"bad scheme", "default_scheme: ftp\n", ErrInvalidScheme, ""},
		{"bad pretty", "pretty: sometimes\n", ErrInvalidPretty, ""},
		{"fallback with port", "fallback_hostname: \"localhost:8080\"\n", ErrInvalidHost, ""},
		{"empty http hostname", "http_hostnames:\n  - \"\"\n", ErrInvalidHost, ""},
		{"body item as header", "headers:\n  - \"a=b\"\n", ErrInvalidHeader, ""},
		{"unparseable header", "headers:\n  - \"not a header\"\n", ErrInvalidHeader, ""},
		{"bad timeout", "timeout: soon\n", nil, "invalid timeout"},
		{"unknown field", "colour: red\n", nil, "colour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestHostRules(t *testing.T) {
	cfg := Default(t.TempDir())

	rules := cfg.HostRules()
	if got := rules.SchemeFor("localhost"); got != "http" {
		t.Errorf("SchemeFor(localhost) = %q, want http", got)
	}
	if got := rules.SchemeFor("example.com"); got != "https" {
		t.Errorf("SchemeFor(example.com) = %q, want https", got)
	}

	cfg.HTTPHosts = []string{}
	if got := cfg.HostRules().SchemeFor("localhost"); got != "https" {
		t.Errorf("SchemeFor(localhost) with no http hosts = %q, want https", got)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Setenv("HREQ_CONFIG_DIR", t.TempDir())
	t.Setenv("HREQ_DEBUG", "")

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("fallback_hostname: box\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.FallbackHost != "box" {
		t.Errorf("FallbackHost = %q, want box", cfg.FallbackHost)
	}
	if cfg.SessionDir != filepath.Join(Dir(), "sessions") {
		t.Errorf("SessionDir = %q, want it under %s", cfg.SessionDir, Dir())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) error = %v, want ErrNotExist", err)
	}
}

func TestVerbosity(t *testing.T) {
	tests := map[string]int{
		"":      0,
		"1":     1,
		"2":     2,
		"true":  1,
		"false": 0,
		"junk":  0,
	}
	for value, want := range tests {
		t.Setenv("HREQ_DEBUG", value)
		if got := Verbosity(); got != want {
			t.Errorf("Verbosity() with HREQ_DEBUG=%q = %d, want %d", value, got, want)
		}
	}
}
