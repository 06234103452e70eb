package normalization

import (
	"reflect"
	"testing"
)

func TestEmail(t *testing.T) {
	cases := map[string]string{
		"  Ada@Example.COM ": "ada@example.com",
		"ada@example.com":    "ada@example.com",
		"   ":                "",
	}
	for in, want := range cases {
		if got := Email(in); got != want {
			t.Errorf("Email(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 010-9999": "15550109999",
		"1.555.010.9999":    "15550109999",
		"15550109999":       "15550109999",
		"ext":               "",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Errorf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestName(t *testing.T) {
	cases := map[string]string{
		"  Ada   Lovelace ": "ada lovelace",
		"Ada Lovelace":      "ada lovelace",
		"\tAda\nLovelace":   "ada lovelace",
		"":                  "",
	}
	for in, want := range cases {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmailsDropsEmptiesAndRepeats(t *testing.T) {
	got := Emails([]string{" Ada@Example.com ", "   ", "b@c.io", "ada@example.com"})
	want := []string{"ada@example.com", "b@c.io"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Emails = %v, want %v", got, want)
	}
	if Emails(nil) != nil {
		t.Fatalf("Emails(nil) should be nil")
	}
	if Phones([]string{"abc"}) != nil {
		t.Fatalf("Phones with no digits should be nil")
	}
	if got := Phones([]string{"+1 (555) 010-9999", "15550109999"}); len(got) != 1 {
		t.Fatalf("Phones should collapse same-key values, got %v", got)
	}
}
