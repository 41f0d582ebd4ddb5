// Package jsontree builds a JSON document by applying path-addressed body
// fragments, in order, to a single mutable tree.
package jsontree

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kind identifies the JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is a node of the JSON tree.
// This is a sum type: Null, *Object, *Array, String, Number or Bool.
type Value interface {
	Kind() Kind
}

// Null is the JSON null literal.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

// String is a JSON string.
type String string

func (String) Kind() Kind { return KindString }

// Number is a JSON number, kept as its original text.
type Number string

func (Number) Kind() Kind { return KindNumber }

// Bool is a JSON boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Object is a JSON object whose members keep their insertion order.
type Object struct {
	members *linkedhashmap.Map
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{members: linkedhashmap.New()}
}

func (*Object) Kind() Kind { return KindObject }

// Get returns the member named key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.members.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Value), true
}

// Set stores v under key. An existing member keeps its position.
func (o *Object) Set(key string, v Value) {
	o.members.Put(key, v)
}

// Len returns the number of members.
func (o *Object) Len() int {
	return o.members.Size()
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.members.Size())
	for _, k := range o.members.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

// Array is a JSON array.
type Array struct {
	elems []Value
}

// NewArray returns an array holding elems.
func NewArray(elems ...Value) *Array {
	return &Array{elems: elems}
}

func (*Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.elems)
}

// At returns element i. It panics if i is out of range.
func (a *Array) At(i int) Value {
	return a.elems[i]
}

// Append adds v at the end and returns its index.
func (a *Array) Append(v Value) int {
	a.elems = append(a.elems, v)
	return len(a.elems) - 1
}

// grow pads the array with nulls until it holds at least n elements.
func (a *Array) grow(n int) {
	for len(a.elems) < n {
		a.elems = append(a.elems, Null{})
	}
}
