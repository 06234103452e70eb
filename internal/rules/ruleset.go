package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Combinator joins the conditions of a rule set. The document is a flat
// list by construction; there is no nesting to recurse into.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

func (op Operator) Known() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// RequiresValue reports whether the operator compares against a value.
// is_empty / is_not_empty ignore Value entirely.
func (op Operator) RequiresValue() bool {
	return op != OpIsEmpty && op != OpIsNotEmpty
}

// Condition is one field test. Value carries whatever JSON scalar the
// client sent (string, number, or bool).
type Condition struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value,omitempty"`
}

// RuleSet is the stored rule document.
type RuleSet struct {
	Operator   Combinator  `json:"operator"`
	Conditions []Condition `json:"conditions"`
}

// Parse decodes a stored rule document and normalizes it.
func Parse(raw []byte) (RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode rule set: %w", err)
	}
	rs.Normalize()
	return rs, nil
}

// Encode serializes the rule set for storage.
func Encode(rs RuleSet) ([]byte, error) {
	return json.Marshal(rs)
}

// Normalize upper-cases the combinator and trims field names so documents
// compare and validate consistently regardless of client formatting.
func (rs *RuleSet) Normalize() {
	rs.Operator = Combinator(strings.ToUpper(strings.TrimSpace(string(rs.Operator))))
	for i := range rs.Conditions {
		rs.Conditions[i].Field = strings.TrimSpace(rs.Conditions[i].Field)
		rs.Conditions[i].Operator = Operator(strings.ToLower(strings.TrimSpace(string(rs.Conditions[i].Operator))))
	}
}

// Validate rejects documents the engine could not faithfully evaluate:
// unknown combinators, empty condition lists, unknown fields or operators,
// and value-comparing operators with no value.
func (rs RuleSet) Validate() error {
	switch rs.Operator {
	case CombinatorAnd, CombinatorOr:
	default:
		return fmt.Errorf("combinator must be %q or %q, got %q", CombinatorAnd, CombinatorOr, rs.Operator)
	}
	if len(rs.Conditions) == 0 {
		return errors.New("rule set needs at least one condition")
	}
	for i, c := range rs.Conditions {
		if c.Field == "" {
			return fmt.Errorf("condition %d: field is required", i)
		}
		if !KnownField(c.Field) {
			return fmt.Errorf("condition %d: unknown field %q", i, c.Field)
		}
		if !c.Operator.Known() {
			return fmt.Errorf("condition %d: unknown operator %q", i, c.Operator)
		}
		if c.Operator.RequiresValue() && missingValue(c.Value) {
			return fmt.Errorf("condition %d: operator %q requires a value", i, c.Operator)
		}
	}
	return nil
}

func missingValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
