// internal/patch/extract.go
//
// Field-diff extractor.
//
// Context
// -------
// Update handlers decode a payload into a struct whose members are Field[T]
// values tagged with the column they map to:
//
//	type projectPatch struct {
//	    Name patch.Field[string] `json:"name,omitzero" patch:"name"`
//	}
//
// Fields() walks such a struct and returns only the entries the client
// explicitly supplied: Value → the unwrapped value, Null → a nil entry, and
// Undefined → no entry at all.  Column names come from the `patch` tag, never
// from request data, so the resulting map is safe to interpolate as SQL
// column identifiers downstream.
//
// Notes
// -----
// • Members without a `patch` tag (or tagged "-") are skipped; that is how
//   file-upload fields ride along in the same form without leaking into the
//   UPDATE statement.
// • The operation cannot fail; a form with nothing set yields an empty map.
package patch

import "reflect"

// Fields extracts the explicitly-supplied fields of form into a column→value
// map.  form must be a struct or a pointer to one; anything else yields an
// empty map.
func Fields(form any) map[string]any {
	out := make(map[string]any)

	v := reflect.ValueOf(form)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return out
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return out
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		col := sf.Tag.Get("patch")
		if col == "" || col == "-" || !sf.IsExported() {
			continue
		}

		d, ok := v.Field(i).Interface().(diffable)
		if !ok {
			continue
		}
		defined, null := d.state()
		if !defined {
			continue
		}
		if null {
			out[col] = nil
			continue
		}
		out[col] = d.raw()
	}
	return out
}
