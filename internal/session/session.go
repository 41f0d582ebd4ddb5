// Package session manages persistent per-host sessions: headers, cookies
// and an authorization value replayed as default headers.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adammpkins/hreq/internal/types"
)

// ErrInsecurePermissions is returned when a session file is readable by
// group or others.
var ErrInsecurePermissions = errors.New("session file has insecure permissions")

// Session represents a stored session for a host.
type Session struct {
	Host          string            `json:"host"`
	Name          string            `json:"name"`
	Headers       types.HeaderList  `json:"headers,omitempty"`
	Cookies       map[string]string `json:"cookies,omitempty"`
	Authorization string            `json:"authorization,omitempty"`
	// Scheme, when set, completes URLs for this host typed without one.
	Scheme        string            `json:"scheme,omitempty"`
}

// New returns an empty session.
func New(host, name string) *Session {
	return &Session{
		Host:    host,
		Name:    name,
		Cookies: make(map[string]string),
	}
}

// Store reads and writes session files below Dir.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// sanitize makes a host or session name safe to use as a path element.
func sanitize(s string) string {
	r := strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")
	return r.Replace(s)
}

// path returns the file path for a host's named session.
func (s *Store) path(host, name string) string {
	return filepath.Join(s.Dir, sanitize(host), sanitize(name)+".json")
}

// Load loads a session. It returns nil, nil when none exists.
func (s *Store) Load(host, name string) (*Session, error) {
	path := s.path(host, name)

	// Check file permissions - refuse to load if group or world readable
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat session file: %w", err)
	}

	mode := info.Mode().Perm()
	if mode&0044 != 0 {
		return nil, fmt.Errorf("%w: %s (%s): group or world readable, refusing to load", ErrInsecurePermissions, path, mode.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if sess.Cookies == nil {
		sess.Cookies = make(map[string]string)
	}

	return &sess, nil
}

// Save writes a session with 0600 permissions.
func (s *Store) Save(sess *Session) error {
	path := s.path(sess.Host, sess.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(host, name string) error {
	if err := os.Remove(s.path(host, name)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns the session names stored for host.
func (s *Store) List(host string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Dir, sanitize(host)))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names, nil
}

// ExtractHost extracts the host (with port) from a URL.
func ExtractHost(urlStr string) (string, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL: no host in %q", urlStr)
	}
	return u.Host, nil
}

// DefaultHeaders renders the session as headers to send before any
// headers given on the command line.
func (sess *Session) DefaultHeaders() types.HeaderList {
	headers := make(types.HeaderList, 0, len(sess.Headers)+2)
	headers = append(headers, sess.Headers...)

	if sess.Authorization != "" {
		headers.Set("Authorization", sess.Authorization)
	}

	if len(sess.Cookies) > 0 {
		names := make([]string, 0, len(sess.Cookies))
		for name := range sess.Cookies {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, len(names))
		for i, name := range names {
			pairs[i] = name + "=" + sess.Cookies[name]
		}
		headers.Set("Cookie", strings.Join(pairs, "; "))
	}

	return headers
}

// Update records the headers sent with a request and the cookies and token
// returned by the server. Authorization and Cookie headers are stored in
// their dedicated fields rather than as plain headers.
func (sess *Session) Update(sent types.HeaderList, setCookies []string, body []byte) {
	for _, name := range sent.Names() {
		values := sent.Values(name)
		switch strings.ToLower(name) {
		case "authorization":
			sess.Authorization = values[len(values)-1]
		case "cookie":
			for _, v := range values {
				sess.mergeCookies(v)
			}
		case "content-type", "content-length", "accept", "host":
			// Request-specific; never replayed.
		default:
			sess.Headers.Set(name, values...)
		}
	}

	// Simple cookie parsing (just get name=value part)
	for _, cookieHeader := range setCookies {
		parts := strings.Split(cookieHeader, ";")
		if len(parts) > 0 {
			sess.mergeCookies(parts[0])
		}
	}

	// Try to extract access_token from JSON body
	if len(body) > 0 {
		var jsonData map[string]interface{}
		if err := json.Unmarshal(body, &jsonData); err == nil {
			if token, ok := jsonData["access_token"].(string); ok && token != "" {
				sess.Authorization = "Bearer " + token
			}
		}
	}
}

// mergeCookies stores each name=value pair of a Cookie header value.
func (sess *Session) mergeCookies(header string) {
	for _, cookiePart := range strings.Split(header, ";") {
		cookiePart = strings.TrimSpace(cookiePart)
		eqIdx := strings.Index(cookiePart, "=")
		if eqIdx > 0 {
			sess.Cookies[cookiePart[:eqIdx]] = cookiePart[eqIdx+1:]
		}
	}
}

// Redact creates a redacted copy of a session for display.
func Redact(sess *Session) *Session {
	redacted := &Session{
		Host:    sess.Host,
		Name:    sess.Name,
		Scheme:  sess.Scheme,
		Cookies: make(map[string]string),
	}

	for _, h := range sess.Headers {
		redacted.Headers.Add(h.Name, h.Value)
	}

	// Redact cookies (show only names)
	for name := range sess.Cookies {
		redacted.Cookies[name] = "***"
	}

	if sess.Authorization != "" {
		redacted.Authorization = "***"
		if scheme, _, found := strings.Cut(sess.Authorization, " "); found {
			redacted.Authorization = scheme + " ***"
		}
	}

	return redacted
}
