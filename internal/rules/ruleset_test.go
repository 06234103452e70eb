package rules

import (
	"strings"
	"testing"
)

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	rs := RuleSet{
		Operator: CombinatorAnd,
		Conditions: []Condition{
			{Field: FieldDisplayName, Operator: OpContains, Value: "smith"},
			{Field: FieldStarred, Operator: OpEquals, Value: true},
			{Field: FieldEngagementScore, Operator: OpGreaterThan, Value: 10},
			{Field: "fact:birthday", Operator: OpIsNotEmpty},
		},
	}
	if err := rs.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		rs   RuleSet
		want string
	}{
		{
			name: "bad combinator",
			rs:   RuleSet{Operator: "XOR", Conditions: []Condition{{Field: FieldEmail, Operator: OpIsEmpty}}},
			want: "combinator",
		},
		{
			name: "no conditions",
			rs:   RuleSet{Operator: CombinatorOr},
			want: "at least one condition",
		},
		{
			name: "unknown field",
			rs:   RuleSet{Operator: CombinatorAnd, Conditions: []Condition{{Field: "shoe_size", Operator: OpEquals, Value: "44"}}},
			want: "unknown field",
		},
		{
			name: "empty fact key",
			rs:   RuleSet{Operator: CombinatorAnd, Conditions: []Condition{{Field: "fact: ", Operator: OpIsEmpty}}},
			want: "unknown field",
		},
		{
			name: "unknown operator",
			rs:   RuleSet{Operator: CombinatorAnd, Conditions: []Condition{{Field: FieldEmail, Operator: "matches", Value: "x"}}},
			want: "unknown operator",
		},
		{
			name: "missing value",
			rs:   RuleSet{Operator: CombinatorAnd, Conditions: []Condition{{Field: FieldEmail, Operator: OpEquals}}},
			want: "requires a value",
		},
		{
			name: "blank value",
			rs:   RuleSet{Operator: CombinatorAnd, Conditions: []Condition{{Field: FieldEmail, Operator: OpEquals, Value: "  "}}},
			want: "requires a value",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rs.Validate()
			if err == nil {
				t.Fatalf("Validate accepted %+v", tc.rs)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestNormalizeCanonicalizesCaseAndSpace(t *testing.T) {
	rs := RuleSet{
		Operator: " and ",
		Conditions: []Condition{
			{Field: "  display_name ", Operator: "CONTAINS", Value: "x"},
		},
	}
	rs.Normalize()
	if rs.Operator != CombinatorAnd {
		t.Fatalf("Operator = %q, want %q", rs.Operator, CombinatorAnd)
	}
	if rs.Conditions[0].Field != FieldDisplayName {
		t.Fatalf("Field = %q", rs.Conditions[0].Field)
	}
	if rs.Conditions[0].Operator != OpContains {
		t.Fatalf("Operator = %q", rs.Conditions[0].Operator)
	}
	if err := rs.Validate(); err != nil {
		t.Fatalf("Validate after Normalize: %v", err)
	}
}

func TestParseRoundTrip(t *testing.T) {
	raw := []byte(`{"operator":"or","conditions":[{"field":"email","operator":"is_empty"},{"field":"engagement_score","operator":"less_than","value":5}]}`)
	rs, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rs.Operator != CombinatorOr {
		t.Fatalf("Operator = %q", rs.Operator)
	}
	if len(rs.Conditions) != 2 {
		t.Fatalf("len(Conditions) = %d", len(rs.Conditions))
	}
	if err := rs.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	encoded, err := Encode(rs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse(Encode): %v", err)
	}
	if again.Operator != rs.Operator || len(again.Conditions) != len(rs.Conditions) {
		t.Fatalf("round trip changed the document: %+v", again)
	}

	if _, err := Parse([]byte(`{"operator":`)); err == nil {
		t.Fatalf("Parse accepted truncated JSON")
	}
}

func TestKnownField(t *testing.T) {
	for _, f := range Fields() {
		if !KnownField(f) {
			t.Errorf("registry field %q not resolvable", f)
		}
	}
	if !KnownField("fact:employer") {
		t.Errorf("fact:employer should be resolvable")
	}
	if KnownField("fact:") {
		t.Errorf("fact: with empty key should not be resolvable")
	}
	if KnownField("favorite_color") {
		t.Errorf("unregistered field should not be resolvable")
	}
}
