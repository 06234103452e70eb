package rules

import (
	"strings"

	"github.com/touchbasehq/touchbase-backend/internal/domain"
)

// FieldResolver supplies the value of a named field for one contact, so the
// engine stays independent of how contacts are stored or joined.
// Implementations return ok=false for fields they cannot answer; the engine
// treats those conditions as non-matching rather than failing.
type FieldResolver interface {
	Resolve(field string) (interface{}, bool)
}

// ContactSnapshot is the standard resolver: one contact row plus its joined
// dimensions, bulk-loaded by the caller. Resolved values are Go scalars
// (string, bool, float64), string slices for multi-valued fields, or nil
// when the contact has no value (which is what is_empty tests).
type ContactSnapshot struct {
	Contact  *domain.Contact
	TagIDs   []string
	GroupIDs []string
	Facts    map[string]string
}

func (s *ContactSnapshot) Resolve(field string) (interface{}, bool) {
	if strings.HasPrefix(field, FactFieldPrefix) {
		key := strings.TrimSpace(strings.TrimPrefix(field, FactFieldPrefix))
		if key == "" {
			return nil, false
		}
		v, ok := s.Facts[key]
		if !ok {
			return nil, true
		}
		return v, true
	}

	switch field {
	case FieldDisplayName:
		return s.Contact.DisplayName, true
	case FieldFirstName:
		return s.Contact.FirstName, true
	case FieldLastName:
		return s.Contact.LastName, true
	case FieldStarred:
		return s.Contact.Starred, true
	case FieldManualImportance:
		if s.Contact.ManualImportance == nil {
			return nil, true
		}
		return float64(*s.Contact.ManualImportance), true
	case FieldEngagementScore:
		return s.Contact.EngagementScore, true
	case FieldEmail:
		return s.Contact.EmailList(), true
	case FieldPhone:
		return s.Contact.PhoneList(), true
	case FieldTag:
		return s.TagIDs, true
	case FieldGroup:
		return s.GroupIDs, true
	}
	return nil, false
}
