// internal/patch/patch_test.go
//
// Unit-tests for the tri-state Field wrapper.
//
// Run: go test ./internal/patch -v

package patch

import (
	"encoding/json"
	"testing"
)

type payload struct {
	Name  Field[string] `json:"name,omitzero"`
	Order Field[int64]  `json:"order,omitzero"`
}

func TestUnmarshalThreeStates(t *testing.T) {
	var p payload
	if err := json.Unmarshal([]byte(`{"name":"hello"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got, ok := p.Name.Get(); !ok || got != "hello" {
		t.Fatalf("Name = (%q, %v), want (hello, true)", got, ok)
	}
	if p.Order.Defined() {
		t.Fatal("absent key must stay Undefined")
	}

	p = payload{}
	if err := json.Unmarshal([]byte(`{"name":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Name.IsNull() {
		t.Fatal("explicit null must become Null, not Undefined")
	}
	if _, ok := p.Name.Get(); ok {
		t.Fatal("Get must report no value for Null")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	in := payload{Name: Null[string](), Order: Value(int64(3))}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"name":null,"order":3}` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Name.IsNull() {
		t.Fatal("Null lost in round trip")
	}
	if got, ok := out.Order.Get(); !ok || got != 3 {
		t.Fatalf("Order = (%d, %v), want (3, true)", got, ok)
	}
}

func TestMarshalOmitsUndefined(t *testing.T) {
	data, err := json.Marshal(payload{Order: Value(int64(1))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"order":1}` {
		t.Fatalf("Undefined key must be omitted, got %s", data)
	}
}

func TestZeroValueIsUndefined(t *testing.T) {
	var f Field[string]
	if f.Defined() || f.IsNull() {
		t.Fatal("zero Field must be Undefined")
	}
	if !f.IsZero() {
		t.Fatal("IsZero must be true for Undefined")
	}
	if Value("x").IsZero() || Null[string]().IsZero() {
		t.Fatal("IsZero must be false once the key was present")
	}
}

func TestValueZeroIsNotUndefined(t *testing.T) {
	// A client sending the zero value is still an update.
	var p payload
	if err := json.Unmarshal([]byte(`{"order":0}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got, ok := p.Order.Get(); !ok || got != 0 {
		t.Fatalf("Order = (%d, %v), want (0, true)", got, ok)
	}
}
