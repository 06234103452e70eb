package rules

import (
	"testing"

	"github.com/google/uuid"

	"github.com/touchbasehq/touchbase-backend/internal/domain"
)

func snapshot() *ContactSnapshot {
	importance := 3
	return &ContactSnapshot{
		Contact: &domain.Contact{
			ID:               uuid.New(),
			DisplayName:      "Ada Lovelace",
			FirstName:        "Ada",
			LastName:         "Lovelace",
			Starred:          true,
			ManualImportance: &importance,
			EngagementScore:  72.5,
			Emails:           domain.StringList([]string{"ada@example.com", "ada@work.io"}),
			Phones:           domain.StringList([]string{"15550109999"}),
		},
		TagIDs:   []string{"9531d2d5-0f21-4e6a-9f5a-2f8e1c62d700"},
		GroupIDs: []string{"0d4f9f5e-6a2b-4c3d-8e1f-aa11bb22cc33"},
		Facts:    map[string]string{"birthday": "1815-12-10", "employer": ""},
	}
}

func cond(field string, op Operator, value interface{}) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

func evalOne(t *testing.T, c Condition) bool {
	t.Helper()
	return Evaluate(RuleSet{Operator: CombinatorAnd, Conditions: []Condition{c}}, snapshot())
}

func TestOperatorMatrix(t *testing.T) {
	cases := []struct {
		name string
		c    Condition
		want bool
	}{
		{"equals case-insensitive", cond(FieldDisplayName, OpEquals, "ada lovelace"), true},
		{"equals mismatch", cond(FieldDisplayName, OpEquals, "grace hopper"), false},
		{"not_equals", cond(FieldDisplayName, OpNotEquals, "grace hopper"), true},
		{"contains substring", cond(FieldDisplayName, OpContains, "Love"), true},
		{"contains miss", cond(FieldDisplayName, OpContains, "xyz"), false},

		{"bool equals", cond(FieldStarred, OpEquals, true), true},
		{"bool equals string form", cond(FieldStarred, OpEquals, "true"), true},
		{"bool not_equals", cond(FieldStarred, OpNotEquals, false), true},

		{"number greater_than", cond(FieldEngagementScore, OpGreaterThan, 50), true},
		{"number greater_than boundary", cond(FieldEngagementScore, OpGreaterThan, 72.5), false},
		{"number less_than", cond(FieldEngagementScore, OpLessThan, 100), true},
		{"numeric string coercion", cond(FieldEngagementScore, OpGreaterThan, "70"), true},
		{"nullable number equals", cond(FieldManualImportance, OpEquals, 3), true},
		{"greater_than non-numeric value", cond(FieldEngagementScore, OpGreaterThan, "lots"), false},

		{"set equals any element", cond(FieldEmail, OpEquals, "ada@work.io"), true},
		{"set contains any element", cond(FieldEmail, OpContains, "@example."), true},
		{"set miss", cond(FieldEmail, OpEquals, "nobody@nowhere"), false},
		{"tag membership", cond(FieldTag, OpContains, "9531d2d5-0f21-4e6a-9f5a-2f8e1c62d700"), true},
		{"group membership", cond(FieldGroup, OpContains, "0d4f9f5e-6a2b-4c3d-8e1f-aa11bb22cc33"), true},
		{"phone is_not_empty", cond(FieldPhone, OpIsNotEmpty, nil), true},

		{"fact equals", cond("fact:birthday", OpEquals, "1815-12-10"), true},
		{"fact empty value is_empty", cond("fact:employer", OpIsEmpty, nil), true},
		{"fact missing is_empty", cond("fact:astrology", OpIsEmpty, nil), true},
		{"fact missing is_not_empty", cond("fact:astrology", OpIsNotEmpty, nil), false},
		{"fact missing equals fails closed", cond("fact:astrology", OpEquals, "aries"), false},
		{"fact missing not_equals", cond("fact:astrology", OpNotEquals, "aries"), true},

		{"unknown field fails closed", cond("shoe_size", OpEquals, "44"), false},
		{"unknown field is_empty fails closed", cond("shoe_size", OpIsEmpty, nil), false},
		{"unknown operator fails closed", cond(FieldDisplayName, "matches", "ada"), false},
		{"set greater_than fails closed", cond(FieldEmail, OpGreaterThan, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := evalOne(t, tc.c); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNullableFieldEmptiness(t *testing.T) {
	s := snapshot()
	s.Contact.ManualImportance = nil
	s.Contact.Emails = nil

	rs := RuleSet{Operator: CombinatorAnd, Conditions: []Condition{
		cond(FieldManualImportance, OpIsEmpty, nil),
		cond(FieldEmail, OpIsEmpty, nil),
	}}
	if !Evaluate(rs, s) {
		t.Fatalf("nil importance and no emails should both be empty")
	}

	rs = RuleSet{Operator: CombinatorAnd, Conditions: []Condition{
		cond(FieldManualImportance, OpEquals, 3),
	}}
	if Evaluate(rs, s) {
		t.Fatalf("equals on a nil value must fail closed")
	}
}

func TestCombinators(t *testing.T) {
	s := snapshot()
	hit := cond(FieldStarred, OpEquals, true)
	miss := cond(FieldDisplayName, OpEquals, "grace hopper")

	if !Evaluate(RuleSet{Operator: CombinatorAnd, Conditions: []Condition{hit, hit}}, s) {
		t.Errorf("AND of two hits should match")
	}
	if Evaluate(RuleSet{Operator: CombinatorAnd, Conditions: []Condition{hit, miss}}, s) {
		t.Errorf("AND with one miss should not match")
	}
	if !Evaluate(RuleSet{Operator: CombinatorOr, Conditions: []Condition{miss, hit}}, s) {
		t.Errorf("OR with one hit should match")
	}
	if Evaluate(RuleSet{Operator: CombinatorOr, Conditions: []Condition{miss, miss}}, s) {
		t.Errorf("OR of two misses should not match")
	}
	if Evaluate(RuleSet{Operator: CombinatorAnd}, s) {
		t.Errorf("empty condition list must not match")
	}
	if Evaluate(RuleSet{Operator: "XOR", Conditions: []Condition{hit}}, s) {
		t.Errorf("unknown combinator must not match")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	s := snapshot()
	rs := RuleSet{Operator: CombinatorOr, Conditions: []Condition{
		cond(FieldEmail, OpContains, "example"),
		cond(FieldEngagementScore, OpGreaterThan, 100),
	}}
	first := Evaluate(rs, s)
	for i := 0; i < 50; i++ {
		if Evaluate(rs, s) != first {
			t.Fatalf("evaluation changed across runs")
		}
	}
	if s.Contact.DisplayName != "Ada Lovelace" {
		t.Fatalf("evaluation mutated the snapshot")
	}
}
