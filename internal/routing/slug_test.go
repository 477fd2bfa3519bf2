// internal/routing/slug_test.go

package routing

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Déjà vu!  ", "d-j-vu"},
		{"a---b", "a-b"},
		{"--trimmed--", "trimmed"},
		{"UPPER case 42", "upper-case-42"},
		{"🎉🎉", "item"},
		{"", "item"},
	}
	for _, c := range cases {
		if got := MakeSlug(c.in); got != c.want {
			t.Errorf("MakeSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMakeSlugCapsLength(t *testing.T) {
	got := MakeSlug(strings.Repeat("a", 150))
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Fatal("truncated slug must not end with a dash")
	}
}

func TestURI(t *testing.T) {
	if got := URI("Lorem Ipsum", 17); got != "lorem-ipsum-17" {
		t.Fatalf("URI = %q, want lorem-ipsum-17", got)
	}
	// Renames regenerate the slug but the id suffix stays stable.
	if got := URI("Dolor", 17); got != "dolor-17" {
		t.Fatalf("URI = %q, want dolor-17", got)
	}
}
