package decoder

import (
	"testing"

	"bitbucket.org/sofidex/tracing_backend/models"
)

func TestTransformPostalCode(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"75011", "75011", true},
		{"7500", "07500", true},
		{" 7500 ", "07500", true},
		{"75 011", "75011", true},
		{"PARIS", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := transformPostalCode([]string{c.in})
		if got != c.want || ok != c.wantOk {
			t.Fatalf("transformPostalCode(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.wantOk)
		}
	}
}

func TestTransformPhoneKeepsDigitsOnly(t *testing.T) {
	got, ok := transformPhone([]string{"01.42.68.53.00"})
	if !ok || got != "0142685300" {
		t.Fatalf("transformPhone = (%q, %v)", got, ok)
	}
}

func TestTransformDateParts(t *testing.T) {
	cases := []struct {
		parts  []string
		want   string
		wantOk bool
	}{
		{[]string{"5", "3", "1970"}, "05/03/1970", true},
		{[]string{"05", "03", "70"}, "05/03/1970", true},
		{[]string{"5", "3", "26"}, "05/03/2026", true},
		{[]string{"5", "3", "31"}, "05/03/1931", true},
		{[]string{"5", "3", ""}, "", false},
		{[]string{"5", "3"}, "", false},
		{nil, "", false},
	}
	for _, c := range cases {
		got, ok := transformDateParts(c.parts)
		if got != c.want || ok != c.wantOk {
			t.Fatalf("transformDateParts(%v) = (%q, %v), want (%q, %v)", c.parts, got, ok, c.want, c.wantOk)
		}
	}
}

func TestTransformComposite(t *testing.T) {
	got, ok := transformComposite([]string{" 12 ", "", "rue de la Paix", " "})
	if !ok || got != "12 rue de la Paix" {
		t.Fatalf("transformComposite = (%q, %v)", got, ok)
	}
	if got, ok := transformComposite(nil); !ok || got != "" {
		t.Fatalf("transformComposite(nil) = (%q, %v)", got, ok)
	}
}

// Every transform must survive an empty parts slice: transforms run on
// whatever the file contains and may never panic mid-batch.
func TestTransformsAreTotal(t *testing.T) {
	for kind := range transformTable {
		fn, err := LookupTransform(kind)
		if err != nil {
			t.Fatalf("LookupTransform(%q): %v", kind, err)
		}
		fn(nil)
		fn([]string{})
		fn([]string{""})
	}
}

func TestLookupTransformRejectsUnknown(t *testing.T) {
	if _, err := LookupTransform(models.TransformKind("Uppercase")); err == nil {
		t.Fatal("unknown transform accepted")
	}
}
