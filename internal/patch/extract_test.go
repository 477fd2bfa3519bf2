// internal/patch/extract_test.go
//
// Unit-tests for the field-diff extractor.

package patch

import (
	"reflect"
	"testing"
)

type form struct {
	Name        Field[string] `patch:"name"`
	Description Field[string] `patch:"description"`
	Order       Field[int64]  `patch:"sort_order"`
	Skipped     Field[string] `patch:"-"`
	Untagged    Field[string]
	SideBand    string `patch:"-"`
}

func TestFieldsExtraction(t *testing.T) {
	f := form{
		Name:        Value("hello"),
		Description: Null[string](),
		Skipped:     Value("never"),
		Untagged:    Value("never"),
	}

	got := Fields(&f)
	want := map[string]any{
		"name":        "hello",
		"description": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields = %#v, want %#v", got, want)
	}
}

func TestFieldsEmptyForm(t *testing.T) {
	if got := Fields(&form{}); len(got) != 0 {
		t.Fatalf("all-Undefined form must yield an empty map, got %#v", got)
	}
}

func TestFieldsNonStruct(t *testing.T) {
	if got := Fields(42); len(got) != 0 {
		t.Fatalf("non-struct input must yield an empty map, got %#v", got)
	}
	var nilForm *form
	if got := Fields(nilForm); len(got) != 0 {
		t.Fatalf("nil pointer must yield an empty map, got %#v", got)
	}
}
