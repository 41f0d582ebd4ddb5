package types

import "strings"

// Command represents a parsed hreq invocation: an optional method, the
// target URL and the request items in command-line order.
type Command struct {
	Method     string
	URL        string
	Components []RequestComponent
}

// Pair is an ordered name/value pair used for query parameters and headers.
type Pair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HeaderList is an ordered, multi-valued header collection. Name lookups
// are case-insensitive; the original spelling of each name is preserved.
type HeaderList []Pair

// Add appends a value for name, keeping any existing values.
func (h *HeaderList) Add(name, value string) {
	*h = append(*h, Pair{Name: name, Value: value})
}

// Del removes every value for name.
func (h *HeaderList) Del(name string) {
	kept := (*h)[:0]
	for _, p := range *h {
		if !strings.EqualFold(p.Name, name) {
			kept = append(kept, p)
		}
	}
	*h = kept
}

// Set replaces all values for name with the given values.
func (h *HeaderList) Set(name string, values ...string) {
	h.Del(name)
	for _, v := range values {
		h.Add(name, v)
	}
}

// Get returns the first value for name.
func (h HeaderList) Get(name string) (string, bool) {
	for _, p := range h {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns every value for name in insertion order.
func (h HeaderList) Values(name string) []string {
	var values []string
	for _, p := range h {
		if strings.EqualFold(p.Name, name) {
			values = append(values, p.Value)
		}
	}
	return values
}

// Names returns the distinct header names in first-seen order.
func (h HeaderList) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range h {
		key := strings.ToLower(p.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// Merge applies overrides on top of h: every name present in overrides
// replaces all of its values in h, and overrides' own repeated values
// accumulate.
func (h HeaderList) Merge(overrides HeaderList) HeaderList {
	merged := make(HeaderList, len(h))
	copy(merged, h)
	for _, name := range overrides.Names() {
		merged.Set(name, overrides.Values(name)...)
	}
	return merged
}
