// Package parser implements the request item grammar for hreq.
//
// Grammar (EBNF):
//
//	component = query | body | header
//	query     = key "==" value                 (* key: one or more chars except "=" *)
//	body      = [ bare ] { segment } ( ":=" | "=" ) value
//	segment   = "[" index "]" | "[" key "]" | "[]" | "." key | bare
//	header    = name ":" value                 (* name: [A-Za-z0-9_-]+ *)
//
// Query values and header values must be non-empty. A bare segment made
// only of decimal digits is an array index, wherever it appears.
//
// Alternatives are tried in the order query, body, header; the first one
// that consumes the whole token wins.
package parser

import (
	"strconv"
	"strings"

	"github.com/adammpkins/hreq/internal/types"
)

// ParseComponent classifies a single request item token.
func ParseComponent(token string) (types.RequestComponent, error) {
	if c, ok := parseQueryParam(token); ok {
		return c, nil
	}
	if c, ok := parseBodyFragment(token); ok {
		return c, nil
	}
	if c, ok := parseHeader(token); ok {
		return c, nil
	}
	return nil, &ComponentError{Token: token}
}

// parseQueryParam parses "key==value". The key ends at the first "=";
// neither side may be empty, so "foo==" and "X-Sig:abc==" fall through to
// the body and header grammars.
func parseQueryParam(s string) (types.QueryParam, bool) {
	eqIdx := strings.IndexByte(s, '=')
	if eqIdx <= 0 || len(s) <= eqIdx+2 || !strings.HasPrefix(s[eqIdx:], "==") {
		return types.QueryParam{}, false
	}
	return types.QueryParam{Name: s[:eqIdx], Value: s[eqIdx+2:]}, true
}

// parseHeader parses "Name:value" where Name is an HTTP token and value is
// non-empty.
func parseHeader(s string) (types.Header, bool) {
	i := 0
	for i < len(s) && isHeaderNameChar(s[i]) {
		i++
	}
	if i == 0 || i+1 >= len(s) || s[i] != ':' {
		return types.Header{}, false
	}
	return types.Header{Name: s[:i], Value: s[i+1:]}, true
}

func isHeaderNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// pathScanner walks the path prefix of a body fragment.
type pathScanner struct {
	input string
	pos   int
	path  []types.PathAccessor
}

// parseBodyFragment parses a path prefix followed by ":=" or "=" and a value.
func parseBodyFragment(s string) (types.BodyFragment, bool) {
	p := &pathScanner{input: s}

	if !strings.HasPrefix(s, "[") {
		if key := p.takeUntil(":=[."); key != "" {
			p.push(bareAccessor(key))
		}
	}

	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '=':
			return types.Literal{Path: p.path, Value: p.input[p.pos+1:]}, true
		case ':':
			if !strings.HasPrefix(p.input[p.pos:], ":=") {
				return nil, false
			}
			return types.Raw{Path: p.path, Value: p.input[p.pos+2:]}, true
		case '[':
			if !p.bracket() {
				return nil, false
			}
		case '.':
			p.pos++
			key := p.takeUntil(".[=:")
			if key == "" {
				return nil, false
			}
			p.push(types.ObjectKey{Name: key})
		default:
			p.push(bareAccessor(p.takeUntil(".[=:")))
		}
	}

	// Ran out of input without an assignment operator.
	return nil, false
}

func (p *pathScanner) push(acc types.PathAccessor) {
	p.path = append(p.path, acc)
}

// takeUntil consumes and returns the longest run of bytes not in stop.
func (p *pathScanner) takeUntil(stop string) string {
	start := p.pos
	for p.pos < len(p.input) && strings.IndexByte(stop, p.input[p.pos]) < 0 {
		p.pos++
	}
	return p.input[start:p.pos]
}

// bracket consumes "[...]" starting at the current position.
func (p *pathScanner) bracket() bool {
	end := strings.IndexByte(p.input[p.pos+1:], ']')
	if end < 0 {
		return false
	}
	content := p.input[p.pos+1 : p.pos+1+end]
	p.pos += end + 2

	if content == "" {
		p.push(types.ArrayAppend{})
		return true
	}
	p.push(bareAccessor(content))
	return true
}

// bareAccessor maps a segment to an ArrayIndex when it is entirely decimal
// digits that fit in 32 bits, and to an ObjectKey otherwise.
func bareAccessor(segment string) types.PathAccessor {
	if isDigits(segment) {
		if idx, err := strconv.ParseUint(segment, 10, 32); err == nil {
			return types.ArrayIndex{Index: uint32(idx)}
		}
	}
	return types.ObjectKey{Name: segment}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
