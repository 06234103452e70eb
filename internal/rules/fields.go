package rules

import (
	"sort"
	"strings"
)

// FactFieldPrefix names a fact by key: "fact:birthday" resolves to the
// contact's stored value for that key.
const FactFieldPrefix = "fact:"

// Resolvable contact fields.
const (
	FieldDisplayName      = "display_name"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldStarred          = "starred"
	FieldManualImportance = "manual_importance"
	FieldEngagementScore  = "engagement_score"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldTag              = "tag"
	FieldGroup            = "group"
)

var knownFields = map[string]struct{}{
	FieldDisplayName:      {},
	FieldFirstName:        {},
	FieldLastName:         {},
	FieldStarred:          {},
	FieldManualImportance: {},
	FieldEngagementScore:  {},
	FieldEmail:            {},
	FieldPhone:            {},
	FieldTag:              {},
	FieldGroup:            {},
}

// KnownField reports whether the engine can resolve name. Any non-empty
// fact key is resolvable through the fact: prefix.
func KnownField(name string) bool {
	if strings.HasPrefix(name, FactFieldPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(name, FactFieldPrefix)) != ""
	}
	_, ok := knownFields[name]
	return ok
}

// Fields lists the fixed resolvable field names, sorted. fact:<key> is
// additionally accepted for any non-empty key.
func Fields() []string {
	out := make([]string, 0, len(knownFields))
	for f := range knownFields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
