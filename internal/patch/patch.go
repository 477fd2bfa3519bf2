// internal/patch/patch.go
//
// Tri-state PATCH field.
//
// Context
// -------
// HTTP PATCH semantics need three states per field: the client did not send
// the key at all, the client sent an explicit `null`, or the client sent a
// value.  A plain pointer collapses the first two, so update payloads use
// Field[T] instead.  The zero value is Undefined, which means a key that is
// simply missing from the decoded JSON stays Undefined without any custom
// decoding of the enclosing struct.
//
// Usage
// -----
//
//	type categoryPatch struct {
//	    Name  patch.Field[string] `json:"name,omitzero"  patch:"name"`
//	    Order patch.Field[int64]  `json:"order,omitzero" patch:"sort_order"`
//	}
//
// Notes
// -----
// • Marshalling an Undefined field with `omitzero` omits the key entirely,
//   so decode(encode(x)) preserves all three states.
// • Oxford commas, two spaces after periods.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state wrapper for one optional update field.  The zero
// value is Undefined.
type Field[T any] struct {
	defined bool
	null    bool
	val     T
}

// Value wraps v in a defined, non-null Field.
func Value[T any](v T) Field[T] {
	return Field[T]{defined: true, val: v}
}

// Null returns a Field that was explicitly cleared by the client.
func Null[T any]() Field[T] {
	return Field[T]{defined: true, null: true}
}

// Defined reports whether the key was present in the payload at all.
func (f Field[T]) Defined() bool { return f.defined }

// IsNull reports whether the key was present with an explicit null.
func (f Field[T]) IsNull() bool { return f.defined && f.null }

// Get returns the wrapped value and true only when the field carries one.
func (f Field[T]) Get() (T, bool) {
	if !f.defined || f.null {
		var zero T
		return zero, false
	}
	return f.val, true
}

// IsZero lets encoding/json's `omitzero` option drop Undefined fields, which
// is what keeps the wire round-trip faithful.
func (f Field[T]) IsZero() bool { return !f.defined }

// UnmarshalJSON is only invoked when the key is present, so reaching this
// method already rules out Undefined.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.defined = true
	if bytes.Equal(data, []byte("null")) {
		f.null = true
		var zero T
		f.val = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.val)
}

// MarshalJSON emits null for Null and the wrapped value otherwise.
// Undefined fields never get here when tagged `omitzero`.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.defined || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.val)
}

// diffable is the type-erased view the extractor uses.  Only Field[T]
// implements it, so a field map can never be built from anything but
// compile-time-known struct members.
type diffable interface {
	state() (defined, null bool)
	raw() any
}

func (f Field[T]) state() (bool, bool) { return f.defined, f.null }

func (f Field[T]) raw() any {
	if f.null {
		return nil
	}
	return f.val
}
