// Package runtime executes HTTP requests based on execution plans.
package runtime

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/types"
)

// Executor executes HTTP requests.
type Executor struct {
	client *http.Client
}

// Response is a completed HTTP exchange. Body is nil when the response was
// written to a file.
type Response struct {
	Proto      string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
	SavedTo    string
	Elapsed    time.Duration
}

// NewExecutor creates a new executor.
func NewExecutor(plan *planner.ExecutionPlan) (*Executor, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	if plan.Timeout != nil {
		client.Timeout = *plan.Timeout
	}

	// Configure TLS if insecure
	if plan.Insecure {
		transport := &http.Transport{
			TLSClientConfig: getInsecureTLSConfig(),
		}
		client.Transport = transport
	}

	// Configure proxy if specified
	if plan.Proxy != "" {
		proxyURL, err := url.Parse(plan.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport := &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		}
		if plan.Insecure {
			transport.TLSClientConfig = getInsecureTLSConfig()
		}
		client.Transport = transport
	}

	return &Executor{client: client}, nil
}

// NewRequest builds the http.Request described by plan. Headers are
// validated first so that untransmittable bytes fail before any I/O.
func NewRequest(ctx context.Context, plan *planner.ExecutionPlan) (*http.Request, error) {
	if err := validateHeaders(plan); err != nil {
		return nil, err
	}

	reqURL, err := appendQuery(plan.URL, plan.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if plan.Body != nil {
		body = strings.NewReader(plan.Body.Content)
	}

	req, err := http.NewRequestWithContext(ctx, plan.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for _, h := range plan.Headers {
		if strings.EqualFold(h.Name, "Host") {
			req.Host = h.Value
			continue
		}
		req.Header.Add(h.Name, h.Value)
	}

	return req, nil
}

// Execute sends the request and reads the response. With CheckStatus set,
// a 3xx/4xx/5xx status yields both the response and an *ExecutionError.
func (e *Executor) Execute(ctx context.Context, plan *planner.ExecutionPlan) (*Response, error) {
	req, err := NewRequest(ctx, plan)
	if err != nil {
		return nil, err
	}

	slog.Debug("sending request", "method", req.Method, "url", req.URL.String(), "headers", len(req.Header))
	start := time.Now()

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &ExecutionError{Code: transportExitCode(err), Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	result := &Response{
		Proto:      resp.Proto,
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}

	if plan.Output != nil && plan.Output.Destination != "" && resp.StatusCode < 300 {
		if err := saveToFile(resp.Body, plan.Output.Destination); err != nil {
			return nil, &ExecutionError{Code: ExitError, Err: err}
		}
		result.SavedTo = plan.Output.Destination
	} else {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &ExecutionError{Code: transportExitCode(err), Err: fmt.Errorf("failed to read response: %w", err)}
		}
		result.Body = data
	}
	result.Elapsed = time.Since(start)

	slog.Debug("received response", "status", resp.StatusCode, "bytes", len(result.Body), "elapsed", result.Elapsed)

	if plan.CheckStatus {
		if code := statusExitCode(resp.StatusCode); code != 0 {
			return result, &ExecutionError{Code: code, Err: fmt.Errorf("HTTP %s", resp.Status)}
		}
	}

	return result, nil
}

// FormatRequest renders the request in HTTP/1.1 wire format without
// sending it.
func FormatRequest(plan *planner.ExecutionPlan) (string, error) {
	req, err := NewRequest(context.Background(), plan)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := req.Write(&buf); err != nil {
		return "", fmt.Errorf("failed to format request: %w", err)
	}
	return buf.String(), nil
}

// appendQuery adds the query pairs, in order, after any query
// already present in rawURL.
func appendQuery(rawURL string, pairs []types.Pair) (string, error) {
	if len(pairs) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	var q strings.Builder
	q.WriteString(u.RawQuery)
	for _, p := range pairs {
		if q.Len() > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(p.Name))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(p.Value))
	}
	u.RawQuery = q.String()
	return u.String(), nil
}

// validateHeaders checks every header against the HTTP field grammar.
func validateHeaders(plan *planner.ExecutionPlan) error {
	for _, h := range plan.Headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return &HeaderEncodingError{Name: h.Name, Value: h.Value, Reason: "invalid header name"}
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return &HeaderEncodingError{Name: h.Name, Value: h.Value, Reason: "invalid value for header"}
		}
	}
	return nil
}

// saveToFile saves the response body to a file.
func saveToFile(body io.Reader, destination string) error {
	if isDirectory(destination) {
		return fmt.Errorf("destination is a directory: %s (use a full path like /tmp/file.zip)", destination)
	}

	// Create directory if needed (for paths like /tmp/file.zip)
	dir := filepath.Dir(destination)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// isDirectory checks if a path is a directory.
func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// getInsecureTLSConfig returns an insecure TLS config.
func getInsecureTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
	}
}
