package output

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammpkins/hreq/internal/planner"
	"github.com/adammpkins/hreq/internal/runtime"
)

func TestShouldPretty(t *testing.T) {
	assert.True(t, ShouldPretty("always", false))
	assert.False(t, ShouldPretty("never", true))
	assert.True(t, ShouldPretty("auto", true))
	assert.False(t, ShouldPretty("auto", false))
	assert.False(t, ShouldPretty("", false))
}

func TestPick(t *testing.T) {
	body := []byte(`{"user":{"name":"Ada","tags":["a","b"]},"count":2}`)

	tests := []struct {
		expr string
		want string
	}{
		{"$.user.name", `"Ada"`},
		{"$.count", `2`},
		{"$.user.tags[*]", `["a","b"]`},
		{"$.user.tags[1]", `"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Pick(body, tt.expr)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestPickErrors(t *testing.T) {
	_, err := Pick([]byte(`{"a":1}`), "$.missing")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Pick([]byte(`{"a":1}`), "$[")
	assert.Error(t, err)

	_, err = Pick([]byte(`not json`), "$.a")
	assert.Error(t, err)
}

func TestFormatBody(t *testing.T) {
	body := []byte(`{"b":1,"a":[true,null]}`)

	assert.Equal(t, string(body), FormatBody(body, false))
	assert.Equal(t, "plain text", FormatBody([]byte("plain text"), true))

	// Member order survives indentation.
	pretty := FormatBody(body, true)
	assert.Less(t, strings.Index(pretty, `"b"`), strings.Index(pretty, `"a"`))
	assert.Contains(t, pretty, "\n")
}

func TestHighlightJSONLinePreservesText(t *testing.T) {
	// Without a color profile lipgloss renders plain text, so the
	// highlighted line must read the same as its input.
	lines := []string{
		`  "name": "Ada",`,
		`  "n": -1.5e3,`,
		`  "ok": true,`,
		`  "none": null`,
		`  "esc": "a \"quoted\" word"`,
		`}`,
	}
	for _, line := range lines {
		assert.Equal(t, line, stripANSI(highlightJSONLine(line)))
	}
}

func TestWriteResponse(t *testing.T) {
	resp := &runtime.Response{
		Proto:      "HTTP/1.1",
		Status:     "201 Created",
		StatusCode: 201,
		Header:     http.Header{"Content-Type": {"application/json"}, "X-Id": {"7"}},
		Body:       []byte(`{"id":7,"name":"Ada"}`),
	}

	t.Run("body only", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteResponse(&buf, resp, &planner.OutputPlan{Pretty: "never"}, false)
		require.NoError(t, err)
		assert.Equal(t, "{\"id\":7,\"name\":\"Ada\"}\n", buf.String())
	})

	t.Run("headers", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteResponse(&buf, resp, &planner.OutputPlan{Pretty: "never", Headers: true}, false)
		require.NoError(t, err)
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 201 Created\n"))
		assert.Contains(t, out, "Content-Type: application/json\n")
		assert.Less(t, strings.Index(out, "Content-Type"), strings.Index(out, "X-Id"))
	})

	t.Run("pick", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteResponse(&buf, resp, &planner.OutputPlan{Pretty: "never", Pick: "$.name"}, false)
		require.NoError(t, err)
		assert.Equal(t, "\"Ada\"\n", buf.String())
	})

	t.Run("saved", func(t *testing.T) {
		saved := *resp
		saved.SavedTo = "/tmp/out.json"
		var buf bytes.Buffer
		require.NoError(t, WriteResponse(&buf, &saved, nil, false))
		assert.Equal(t, "Saved to /tmp/out.json\n", buf.String())
	})
}

func TestFormatPlan(t *testing.T) {
	plan := &planner.ExecutionPlan{Method: "GET", URL: "http://example.com"}
	data, err := FormatPlan(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"method"`)
}

func stripANSI(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}
