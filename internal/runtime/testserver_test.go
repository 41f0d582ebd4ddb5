package runtime

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"
)

// testServer provides an HTTP server with echo and status endpoints.
type testServer struct {
	server *httptest.Server
}

// echoReply is what /echo returns.
type echoReply struct {
	Method   string              `json:"method"`
	RawQuery string              `json:"raw_query"`
	Host     string              `json:"host"`
	Headers  map[string][]string `json:"headers"`
	Body     string              `json:"body"`
}

func newTestServer() *testServer {
	mux := http.NewServeMux()
	ts := &testServer{}

	mux.HandleFunc("/echo", ts.handleEcho)
	mux.HandleFunc("/status/", ts.handleStatus)
	mux.HandleFunc("/gzip", ts.handleGzip)
	mux.HandleFunc("/slow", ts.handleSlow)
	mux.HandleFunc("/file.txt", ts.handleFile)

	ts.server = httptest.NewServer(mux)
	return ts
}

func (ts *testServer) URL() string {
	return ts.server.URL
}

func (ts *testServer) Close() {
	ts.server.Close()
}

// handleEcho returns request details as JSON.
func (ts *testServer) handleEcho(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(echoReply{
		Method:   r.Method,
		RawQuery: r.URL.RawQuery,
		Host:     r.Host,
		Headers:  r.Header,
		Body:     string(body),
	})
}

// handleStatus returns the status code named in the path.
func (ts *testServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/status/"))
	if err != nil {
		http.Error(w, "bad status", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%d}`, code)
}

// handleGzip returns gzipped content.
func (ts *testServer) handleGzip(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Set("Content-Type", "text/plain")

	gz := gzip.NewWriter(w)
	defer gz.Close()
	fmt.Fprint(gz, "This is gzipped content")
}

// handleSlow sleeps longer than the tests' client timeout.
func (ts *testServer) handleSlow(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(2 * time.Second):
	case <-r.Context().Done():
	}
	fmt.Fprint(w, "late")
}

func (ts *testServer) handleFile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "file contents\n")
}
