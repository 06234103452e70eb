package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
	"github.com/touchbasehq/touchbase-backend/internal/rules"
)

const (
	matchBatchSize   = 200
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// contactCursor is the opaque page token: the (created_at, id) key of the
// last contact examined, matched or not. Resuming from the last examined row
// rather than the last match keeps evaluation position-independent.
type contactCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

func encodeCursor(c contactCursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(op, s string) (*contactCursor, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, apperr.Validation(op, "malformed cursor")
	}
	var c contactCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, apperr.Validation(op, "malformed cursor")
	}
	if c.ID == uuid.Nil && c.CreatedAt.IsZero() {
		return nil, apperr.Validation(op, "malformed cursor")
	}
	return &c, nil
}

func clampPageLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

// contactMatcher batch-scans live contacts in (created_at, id) order and
// evaluates a rule set against a bulk-loaded snapshot of each one.
type contactMatcher struct {
	contactRepo      repos.ContactRepo
	contactTagRepo   repos.ContactTagRepo
	contactGroupRepo repos.ContactGroupRepo
	factRepo         repos.FactRepo
}

// Match returns up to limit matching contacts and the cursor to resume from.
// An empty cursor means the contact table was exhausted.
func (m *contactMatcher) Match(ctx context.Context, tx *gorm.DB, rs rules.RuleSet, cursor *contactCursor, limit int) ([]*types.Contact, string, error) {
	limit = clampPageLimit(limit)

	var (
		matched []*types.Contact
		afterAt *time.Time
		afterID *uuid.UUID
	)
	if cursor != nil {
		at, id := cursor.CreatedAt, cursor.ID
		afterAt, afterID = &at, &id
	}

	for {
		batch, err := m.contactRepo.ListAfterCursor(ctx, tx, afterAt, afterID, matchBatchSize)
		if err != nil {
			return nil, "", err
		}
		if len(batch) == 0 {
			return matched, "", nil
		}

		snapshots, err := m.loadSnapshots(ctx, tx, batch)
		if err != nil {
			return nil, "", err
		}
		for i, c := range batch {
			if rules.Evaluate(rs, snapshots[i]) {
				matched = append(matched, c)
			}
			if len(matched) >= limit {
				return matched, encodeCursor(contactCursor{CreatedAt: c.CreatedAt, ID: c.ID}), nil
			}
		}

		if len(batch) < matchBatchSize {
			return matched, "", nil
		}
		last := batch[len(batch)-1]
		at, id := last.CreatedAt, last.ID
		afterAt, afterID = &at, &id
	}
}

func (m *contactMatcher) loadSnapshots(ctx context.Context, tx *gorm.DB, batch []*types.Contact) ([]*rules.ContactSnapshot, error) {
	ids := make([]uuid.UUID, 0, len(batch))
	for _, c := range batch {
		ids = append(ids, c.ID)
	}

	tagRows, err := m.contactTagRepo.GetByContactIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	groupRows, err := m.contactGroupRepo.GetByContactIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	factRows, err := m.factRepo.GetByContactIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	tagsByContact := make(map[uuid.UUID][]string)
	for _, row := range tagRows {
		tagsByContact[row.ContactID] = append(tagsByContact[row.ContactID], row.TagID.String())
	}
	groupsByContact := make(map[uuid.UUID][]string)
	for _, row := range groupRows {
		groupsByContact[row.ContactID] = append(groupsByContact[row.ContactID], row.GroupID.String())
	}
	factsByContact := make(map[uuid.UUID]map[string]string)
	for _, row := range factRows {
		facts := factsByContact[row.ContactID]
		if facts == nil {
			facts = make(map[string]string)
			factsByContact[row.ContactID] = facts
		}
		facts[row.Key] = row.Value
	}

	out := make([]*rules.ContactSnapshot, len(batch))
	for i, c := range batch {
		out[i] = &rules.ContactSnapshot{
			Contact:  c,
			TagIDs:   tagsByContact[c.ID],
			GroupIDs: groupsByContact[c.ID],
			Facts:    factsByContact[c.ID],
		}
	}
	return out, nil
}
