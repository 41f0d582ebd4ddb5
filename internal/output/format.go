// Package output provides formatting and pretty-printing for plans and
// responses.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/theory/jsonpath"

	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/runtime"
)

// ErrNoMatch is returned by Pick when the expression selects nothing.
var ErrNoMatch = errors.New("JSONPath matched nothing")

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatPlan formats an ExecutionPlan as JSON for output.
func FormatPlan(plan *planner.ExecutionPlan) ([]byte, error) {
	if IsTerminal(os.Stdout) {
		// Pretty print when outputting to terminal
		return json.MarshalIndent(plan, "", "  ")
	}
	// Compact JSON when piped
	return json.Marshal(plan)
}

// ShouldPretty resolves a pretty mode (auto, always, never) against
// whether output goes to a terminal.
func ShouldPretty(mode string, tty bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return tty
}

// Pick selects from a JSON body with a JSONPath expression. A single match
// is returned as-is; several matches are returned as a JSON array.
func Pick(body []byte, expr string) ([]byte, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %s: %w", expr, err)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	results := path.Select(data)
	switch len(results) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, expr)
	case 1:
		return json.Marshal(results[0])
	}
	return json.Marshal(results)
}

// FormatBody pretty-prints and highlights JSON bodies when pretty is set.
// Anything else is returned unchanged.
func FormatBody(body []byte, pretty bool) string {
	if !pretty || !json.Valid(body) {
		return string(body)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		return string(body)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = highlightJSONLine(line)
	}
	return strings.Join(lines, "\n")
}

// FormatHeaders renders the status line and headers of a response.
func FormatHeaders(resp *runtime.Response, pretty bool) string {
	var s strings.Builder
	status := resp.Proto + " " + resp.Status
	if pretty {
		status = statusStyle(resp.StatusCode).Render(status)
	}
	s.WriteString(status)
	s.WriteString("\n")

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			label := name
			if pretty {
				label = headerNameStyle.Render(name)
			}
			fmt.Fprintf(&s, "%s: %s\n", label, v)
		}
	}
	return s.String()
}

// WriteResponse prints a response according to the output plan.
func WriteResponse(w io.Writer, resp *runtime.Response, out *planner.OutputPlan, tty bool) error {
	if out == nil {
		out = &planner.OutputPlan{Pretty: "auto"}
	}
	pretty := ShouldPretty(out.Pretty, tty)

	if out.Headers {
		if _, err := fmt.Fprintln(w, FormatHeaders(resp, pretty)); err != nil {
			return err
		}
	}

	if resp.SavedTo != "" {
		_, err := fmt.Fprintf(w, "Saved to %s\n", resp.SavedTo)
		return err
	}

	body := resp.Body
	if out.Pick != "" {
		picked, err := Pick(body, out.Pick)
		if err != nil {
			return err
		}
		body = picked
	}
	if len(body) == 0 {
		return nil
	}

	text := FormatBody(body, pretty)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}
