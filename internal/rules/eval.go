package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluate applies rs to one contact through r. It is pure: no I/O, no
// mutation, and the same (rule set, snapshot) pair always yields the same
// answer. Conditions on fields the resolver cannot answer, and comparisons
// that make no sense for the resolved type, evaluate to false rather than
// erroring: stored documents must never be able to break a scan.
func Evaluate(rs RuleSet, r FieldResolver) bool {
	if len(rs.Conditions) == 0 {
		return false
	}
	switch Combinator(strings.ToUpper(string(rs.Operator))) {
	case CombinatorAnd:
		for _, c := range rs.Conditions {
			if !evalCondition(c, r) {
				return false
			}
		}
		return true
	case CombinatorOr:
		for _, c := range rs.Conditions {
			if evalCondition(c, r) {
				return true
			}
		}
		return false
	}
	return false
}

func evalCondition(c Condition, r FieldResolver) bool {
	field := strings.TrimSpace(c.Field)
	if !KnownField(field) {
		return false
	}
	have, ok := r.Resolve(field)
	if !ok {
		return false
	}

	switch Operator(strings.ToLower(string(c.Operator))) {
	case OpIsEmpty:
		return isEmpty(have)
	case OpIsNotEmpty:
		return !isEmpty(have)
	case OpEquals:
		return equals(have, c.Value)
	case OpNotEquals:
		return !equals(have, c.Value)
	case OpContains:
		return contains(have, c.Value)
	case OpGreaterThan:
		return numericCompare(have, c.Value, func(a, b float64) bool { return a > b })
	case OpLessThan:
		return numericCompare(have, c.Value, func(a, b float64) bool { return a < b })
	}
	return false
}

// equals on a multi-valued field matches when any element matches.
func equals(have, want interface{}) bool {
	if set, ok := have.([]string); ok {
		for _, el := range set {
			if scalarEquals(el, want) {
				return true
			}
		}
		return false
	}
	return scalarEquals(have, want)
}

func scalarEquals(have, want interface{}) bool {
	switch h := have.(type) {
	case nil:
		return false
	case bool:
		w, ok := asBool(want)
		return ok && h == w
	case float64:
		w, ok := asNumber(want)
		return ok && h == w
	case string:
		if hn, ok := asNumber(h); ok {
			if wn, ok := asNumber(want); ok {
				return hn == wn
			}
		}
		return strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(asString(want)))
	}
	return false
}

// contains is case-insensitive substring on the string form; on a
// multi-valued field it matches when any element contains the value.
func contains(have, want interface{}) bool {
	needle := strings.ToLower(strings.TrimSpace(asString(want)))
	if needle == "" {
		return false
	}
	if set, ok := have.([]string); ok {
		for _, el := range set {
			if strings.Contains(strings.ToLower(el), needle) {
				return true
			}
		}
		return false
	}
	if have == nil {
		return false
	}
	return strings.Contains(strings.ToLower(asString(have)), needle)
}

func numericCompare(have, want interface{}, cmp func(a, b float64) bool) bool {
	h, ok := asNumber(have)
	if !ok {
		return false
	}
	w, ok := asNumber(want)
	if !ok {
		return false
	}
	return cmp(h, w)
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	}
	return false
}

func asNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func asBool(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t)))
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
