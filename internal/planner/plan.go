// Package planner folds a parsed command and its defaults into an
// execution plan ready for the HTTP runtime.
package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adammpkins/hreq/internal/jsontree"
	"github.com/adammpkins/hreq/internal/types"
)

const (
	jsonContentType = "application/json"
	jsonAccept      = "application/json, */*;q=0.5"

	// DefaultFallbackHost completes the ":port/path" shorthand.
	DefaultFallbackHost = "localhost"
)

// ErrDataWithBody is returned when a raw body is combined with body items.
var ErrDataWithBody = errors.New("cannot specify both --data and body items")

// DefaultHTTPHosts are the hosts reached over plain http when no list is
// configured.
var DefaultHTTPHosts = []string{"localhost"}

// ExecutionPlan represents a fully resolved request.
type ExecutionPlan struct {
	Method      string           `json:"method"`
	URL         string           `json:"url"`
	Query       []types.Pair     `json:"query,omitempty"`
	Headers     types.HeaderList `json:"headers,omitempty"`
	Body        *BodyPlan        `json:"body,omitempty"`
	Output      *OutputPlan      `json:"output,omitempty"`
	Timeout     *time.Duration   `json:"timeout,omitempty"`
	Proxy       string           `json:"proxy,omitempty"`
	Insecure    bool             `json:"insecure,omitempty"`
	CheckStatus bool             `json:"check_status,omitempty"`
}

// BodyPlan represents the request body.
type BodyPlan struct {
	Type    string `json:"type"` // json or raw
	Content string `json:"content"`
}

// OutputPlan represents how the response is presented.
type OutputPlan struct {
	Pretty      string `json:"pretty"` // auto, always or never
	Pick        string `json:"pick,omitempty"`
	Destination string `json:"destination,omitempty"`
	Headers     bool   `json:"headers,omitempty"`
}

// HostRules completes URLs typed without a scheme or a host.
type HostRules struct {
	// FallbackHost replaces the missing host in ":port/path".
	FallbackHost string
	// HTTPHosts are reached over http. Nil means DefaultHTTPHosts.
	HTTPHosts []string
	// DefaultScheme is used for every other host; https when empty.
	DefaultScheme string
	// SessionScheme is the scheme stored in the active session and wins
	// over everything above.
	SessionScheme string
}

func (r HostRules) fallbackHost() string {
	if r.FallbackHost == "" {
		return DefaultFallbackHost
	}
	return r.FallbackHost
}

// SchemeFor returns the scheme used for host when the URL names none.
func (r HostRules) SchemeFor(host string) string {
	if r.SessionScheme != "" {
		return r.SessionScheme
	}
	hosts := r.HTTPHosts
	if hosts == nil {
		hosts = DefaultHTTPHosts
	}
	if slices.Contains(hosts, strings.ToLower(host)) {
		return "http"
	}
	if r.DefaultScheme != "" {
		return r.DefaultScheme
	}
	return "https"
}

// Options carries everything that does not come from request items.
type Options struct {
	Hosts HostRules
	// Data is a raw body sent as-is. It cannot be combined with body items.
	Data *string
	// DefaultHeaders are config and session headers, already layered.
	DefaultHeaders types.HeaderList
	UserAgent      string
	Timeout        time.Duration
	Proxy          string
	Insecure       bool
	CheckStatus    bool
	Pretty         string
	Pick           string
	Output         string
	Download       bool
	PrintHeaders   bool
}

// Plan creates an ExecutionPlan from a parsed Command.
//
// Header layers are applied in this order, each replacing earlier values
// for the names it sets: User-Agent, JSON defaults (only with a body),
// DefaultHeaders, then headers from the command line.
func Plan(cmd *types.Command, opts Options) (*ExecutionPlan, error) {
	resolved, err := ResolveURL(cmd.URL, opts.Hosts)
	if err != nil {
		return nil, err
	}

	plan := &ExecutionPlan{
		URL:         resolved,
		Proxy:       opts.Proxy,
		Insecure:    opts.Insecure,
		CheckStatus: opts.CheckStatus,
		Output: &OutputPlan{
			Pretty:      opts.Pretty,
			Pick:        opts.Pick,
			Destination: opts.Output,
			Headers:     opts.PrintHeaders,
		},
	}
	if plan.Output.Pretty == "" {
		plan.Output.Pretty = "auto"
	}
	if opts.Timeout > 0 {
		timeout := opts.Timeout
		plan.Timeout = &timeout
	}

	var parsed types.HeaderList
	builder := jsontree.NewBuilder()
	for _, component := range cmd.Components {
		switch c := component.(type) {
		case types.QueryParam:
			plan.Query = append(plan.Query, types.Pair{Name: c.Name, Value: c.Value})
		case types.Header:
			parsed.Add(c.Name, c.Value)
		case types.BodyFragment:
			if err := builder.Apply(c); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unsupported request component: %T", component)
		}
	}

	content, hasBody, err := builder.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	isJSON := hasBody
	switch {
	case opts.Data != nil && hasBody:
		return nil, ErrDataWithBody
	case opts.Data != nil:
		plan.Body = &BodyPlan{Type: "raw", Content: *opts.Data}
		hasBody = true
	case hasBody:
		plan.Body = &BodyPlan{Type: "json", Content: content}
	}

	plan.Method = cmd.Method
	if plan.Method == "" {
		plan.Method = http.MethodGet
		if hasBody {
			plan.Method = http.MethodPost
		}
		slog.Debug("inferred method", "method", plan.Method, "body", hasBody)
	}

	var base types.HeaderList
	if opts.UserAgent != "" {
		base.Add("User-Agent", opts.UserAgent)
	}
	if isJSON {
		base.Set("Content-Type", jsonContentType)
		base.Set("Accept", jsonAccept)
	}
	plan.Headers = base.Merge(opts.DefaultHeaders).Merge(parsed)

	if opts.Download && plan.Output.Destination == "" {
		plan.Output.Destination = extractFilenameFromURL(plan.URL)
	} else if plan.Output.Destination != "" && isDirectory(plan.Output.Destination) {
		plan.Output.Destination = filepath.Join(plan.Output.Destination, extractFilenameFromURL(plan.URL))
	}

	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	slog.Debug("planned request",
		"method", plan.Method,
		"url", plan.URL,
		"query", len(plan.Query),
		"headers", len(plan.Headers),
		"body", hasBody,
		"fragments", builder.Len())

	return plan, nil
}

// ResolveURL completes a URL typed on the command line. ":3000/x" and
// ":/x" use the fallback host; a URL without "://" gets the scheme chosen
// by rules for its host.
func ResolveURL(raw string, rules HostRules) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, ":") {
		rest := s[1:]
		if rest == "" || strings.HasPrefix(rest, "/") {
			s = rules.fallbackHost() + rest
		} else {
			s = rules.fallbackHost() + ":" + rest
		}
	}
	if !strings.Contains(s, "://") {
		u, err := url.Parse("//" + s)
		if err != nil {
			return "", fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		s = rules.SchemeFor(u.Hostname()) + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return s, nil
}

// validatePlan validates the execution plan.
func validatePlan(plan *ExecutionPlan) error {
	if plan.Method == "" {
		return fmt.Errorf("method is required")
	}
	if plan.URL == "" {
		return fmt.Errorf("URL is required")
	}
	if plan.Body != nil && (plan.Method == http.MethodGet || plan.Method == http.MethodHead) {
		slog.Debug("sending a body with a method that usually has none", "method", plan.Method)
	}
	return nil
}

// extractFilenameFromURL extracts a filename from a URL.
func extractFilenameFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "download"
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "download"
	}

	parts := strings.Split(path, "/")
	filename := parts[len(parts)-1]

	filename, err = url.PathUnescape(filename)
	if err != nil {
		filename = parts[len(parts)-1]
	}

	if filename == "" || !strings.Contains(filename, ".") {
		filename = "download"
	}

	// Clean the filename (remove any path separators)
	return filepath.Base(filename)
}

// isDirectory checks if a path is a directory.
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
