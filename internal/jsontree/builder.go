package jsontree

import (
	"fmt"

	"github.com/adammpkins/hreq/internal/logutil"
	"github.com/adammpkins/hreq/internal/types"
)

// DefaultMaxIndex bounds explicit array indices so a single fragment cannot
// force an arbitrarily large allocation.
const DefaultMaxIndex = 1 << 16

// Builder folds body fragments into one JSON document. A Builder owns its
// tree exclusively; it must not be used after Apply returns an error.
type Builder struct {
	root    Value
	applied int

	// MaxIndex is the largest ArrayIndex accepted.
	MaxIndex uint32
}

// NewBuilder returns a builder whose root is JSON null.
func NewBuilder() *Builder {
	return &Builder{root: Null{}, MaxIndex: DefaultMaxIndex}
}

// Apply folds one fragment into the tree. Fragments must be applied in
// command-line order: a later fragment addressing the same location
// replaces whatever an earlier one stored there.
func (b *Builder) Apply(fragment types.BodyFragment) error {
	var (
		path []types.PathAccessor
		leaf Value
	)

	switch f := fragment.(type) {
	case types.Literal:
		path, leaf = f.Path, String(f.Value)
	case types.Raw:
		v, err := Parse(f.Value)
		if err != nil {
			return &RawValueError{Path: types.FormatPath(f.Path), Value: f.Value, Err: err}
		}
		path, leaf = f.Path, v
	default:
		panic(fmt.Sprintf("jsontree: unknown body fragment %T", fragment))
	}

	root, err := b.assign(b.root, path, 0, leaf)
	if err != nil {
		return err
	}
	b.root = root
	b.applied++
	logutil.Trace("applied body fragment", "path", types.FormatPath(path), "kind", leaf.Kind())
	return nil
}

// Root returns the current tree.
func (b *Builder) Root() Value {
	return b.root
}

// Len returns the number of fragments applied so far.
func (b *Builder) Len() int {
	return b.applied
}

// Encode serializes the tree. ok is false when no fragment was applied,
// meaning the request has no body.
func (b *Builder) Encode() (body string, ok bool, err error) {
	if b.applied == 0 {
		return "", false, nil
	}
	data, err := Marshal(b.root)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// assign stores leaf at path[depth:] below cur and returns the (possibly
// promoted) node that should replace cur in its parent.
func (b *Builder) assign(cur Value, path []types.PathAccessor, depth int, leaf Value) (Value, error) {
	if depth == len(path) {
		return leaf, nil
	}

	switch acc := path[depth].(type) {
	case types.ObjectKey:
		obj, err := asObject(cur, path, depth)
		if err != nil {
			return nil, err
		}
		child, ok := obj.Get(acc.Name)
		if !ok {
			child = Null{}
		}
		v, err := b.assign(child, path, depth+1, leaf)
		if err != nil {
			return nil, err
		}
		obj.Set(acc.Name, v)
		return obj, nil

	case types.ArrayIndex:
		if acc.Index > b.MaxIndex {
			return nil, fmt.Errorf("%w: %d at %s exceeds %d", ErrIndexTooLarge, acc.Index, types.FormatPath(path[:depth]), b.MaxIndex)
		}
		arr, err := asArray(cur, path, depth)
		if err != nil {
			return nil, err
		}
		idx := int(acc.Index)
		arr.grow(idx + 1)
		v, err := b.assign(arr.elems[idx], path, depth+1, leaf)
		if err != nil {
			return nil, err
		}
		arr.elems[idx] = v
		return arr, nil

	case types.ArrayAppend:
		arr, err := asArray(cur, path, depth)
		if err != nil {
			return nil, err
		}
		idx := arr.Append(Null{})
		v, err := b.assign(arr.elems[idx], path, depth+1, leaf)
		if err != nil {
			return nil, err
		}
		arr.elems[idx] = v
		return arr, nil

	default:
		panic(fmt.Sprintf("jsontree: unknown path accessor %T", acc))
	}
}

// asObject promotes null to an empty object and rejects any other non-object.
func asObject(cur Value, path []types.PathAccessor, depth int) (*Object, error) {
	switch v := cur.(type) {
	case Null:
		return NewObject(), nil
	case *Object:
		return v, nil
	}
	return nil, &TypeConflictError{Path: types.FormatPath(path[:depth]), Expected: KindObject, Found: cur.Kind()}
}

// asArray promotes null to an empty array and rejects any other non-array.
func asArray(cur Value, path []types.PathAccessor, depth int) (*Array, error) {
	switch v := cur.(type) {
	case Null:
		return NewArray(), nil
	case *Array:
		return v, nil
	}
	return nil, &TypeConflictError{Path: types.FormatPath(path[:depth]), Expected: KindArray, Found: cur.Kind()}
}
