// Package types provides shared types used across the hreq packages.
package types

import (
	"strconv"
	"strings"
)

// PathAccessor is a single navigation step into the JSON body tree.
// This is a sum type: ObjectKey, ArrayIndex or ArrayAppend.
type PathAccessor interface {
	accessor()
}

// ObjectKey navigates to (or creates) an object member.
type ObjectKey struct {
	Name string
}

func (ObjectKey) accessor() {}

// ArrayIndex navigates to (or creates) an array element at a fixed position.
type ArrayIndex struct {
	Index uint32
}

func (ArrayIndex) accessor() {}

// ArrayAppend creates a new element at the end of an array. The resulting
// index is only known when the fragment is applied to a tree.
type ArrayAppend struct{}

func (ArrayAppend) accessor() {}

// RequestComponent is the parsed form of a single request item token.
// This is a sum type: QueryParam, Header or a BodyFragment.
type RequestComponent interface {
	component()
}

// QueryParam represents a "name==value" item.
type QueryParam struct {
	Name  string
	Value string
}

func (QueryParam) component() {}

// Header represents a "Name:value" item.
type Header struct {
	Name  string
	Value string
}

func (Header) component() {}

// BodyFragment is a body-bound component: either Literal or Raw.
type BodyFragment interface {
	RequestComponent
	bodyFragment()
}

// Literal represents a "path=value" item; Value becomes a JSON string.
type Literal struct {
	Path  []PathAccessor
	Value string
}

func (Literal) component()    {}
func (Literal) bodyFragment() {}

// Raw represents a "path:=json" item; Value is parsed as JSON text.
type Raw struct {
	Path  []PathAccessor
	Value string
}

func (Raw) component()    {}
func (Raw) bodyFragment() {}

// FormatPath renders an accessor path in bracket notation, e.g. [a][0][].
// The empty path renders as the root marker "$".
func FormatPath(path []PathAccessor) string {
	if len(path) == 0 {
		return "$"
	}
	var b strings.Builder
	for _, acc := range path {
		switch a := acc.(type) {
		case ObjectKey:
			b.WriteString("[" + a.Name + "]")
		case ArrayIndex:
			b.WriteString("[" + strconv.FormatUint(uint64(a.Index), 10) + "]")
		case ArrayAppend:
			b.WriteString("[]")
		default:
			panic("types: unknown path accessor")
		}
	}
	return b.String()
}
