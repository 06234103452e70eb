package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/testutil"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
)

type smartListServiceFixture struct {
	db   *gorm.DB
	svc  SmartListService
	tags repos.ContactTagRepo
}

func newSmartListServiceFixture(t *testing.T) *smartListServiceFixture {
	t.Helper()
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	tags := repos.NewContactTagRepo(db, log)
	svc := NewSmartListService(db, log,
		repos.NewSmartListRepo(db, log),
		repos.NewContactRepo(db, log),
		tags,
		repos.NewContactGroupRepo(db, log),
		repos.NewFactRepo(db, log),
	)
	return &smartListServiceFixture{db: db, svc: svc, tags: tags}
}

func TestSmartListServiceCreateValidations(t *testing.T) {
	f := newSmartListServiceFixture(t)
	ctx := context.Background()

	good := json.RawMessage(`{"operator":"and","conditions":[{"field":"starred","operator":"equals","value":true}]}`)

	if _, err := f.svc.Create(ctx, "  ", good); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("blank name: want validation, got %v", err)
	}
	if _, err := f.svc.Create(ctx, "vips", json.RawMessage(`{"operator":`)); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("broken json: want validation, got %v", err)
	}
	if _, err := f.svc.Create(ctx, "vips", json.RawMessage(`{"operator":"AND","conditions":[{"field":"shoe_size","operator":"equals","value":12}]}`)); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("unknown field: want validation, got %v", err)
	}
	if _, err := f.svc.Create(ctx, "vips", json.RawMessage(`{"operator":"AND","conditions":[]}`)); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("empty conditions: want validation, got %v", err)
	}

	created, err := f.svc.Create(ctx, " vips ", good)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "vips" {
		t.Fatalf("name not trimmed: %q", created.Name)
	}
	var stored struct {
		Operator string `json:"operator"`
	}
	if err := json.Unmarshal(created.Rules, &stored); err != nil {
		t.Fatalf("decode stored rules: %v", err)
	}
	if stored.Operator != "AND" {
		t.Fatalf("rules not normalized: combinator %q", stored.Operator)
	}
}

func TestSmartListServiceUpdateAndDelete(t *testing.T) {
	f := newSmartListServiceFixture(t)
	ctx := context.Background()

	rulesDoc := json.RawMessage(`{"operator":"AND","conditions":[{"field":"starred","operator":"equals","value":true}]}`)
	sl, err := f.svc.Create(ctx, "old name", rulesDoc)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "new name"
	updated, err := f.svc.Update(ctx, sl.ID, UpdateSmartListInput{Name: &newName})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Name != "new name" {
		t.Fatalf("rename: got %q", updated.Name)
	}

	if _, err := f.svc.Update(ctx, sl.ID, UpdateSmartListInput{Rules: json.RawMessage(`{"operator":"NOR","conditions":[]}`)}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("bad rules replacement: want validation, got %v", err)
	}
	if _, err := f.svc.Update(ctx, uuid.New(), UpdateSmartListInput{Name: &newName}); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("update missing: want not_found, got %v", err)
	}

	if err := f.svc.Delete(ctx, sl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, sl.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("get after delete: want not_found, got %v", err)
	}
	if err := f.svc.Delete(ctx, sl.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("delete again: want not_found, got %v", err)
	}
}

func TestSmartListServiceMatching(t *testing.T) {
	f := newSmartListServiceFixture(t)
	ctx := context.Background()

	vip := testutil.SeedTag(t, ctx, f.db, "vip")

	starredTagged := testutil.SeedContact(t, ctx, f.db, "Starred Tagged", []string{"st@example.com"}, nil)
	starredPlain := testutil.SeedContact(t, ctx, f.db, "Starred Plain", nil, nil)
	taggedOnly := testutil.SeedContact(t, ctx, f.db, "Tagged Only", nil, nil)
	for _, id := range []uuid.UUID{starredTagged.ID, starredPlain.ID} {
		if err := f.db.Model(&types.Contact{}).Where("id = ?", id).Update("starred", true).Error; err != nil {
			t.Fatalf("star contact: %v", err)
		}
	}
	if _, err := f.tags.CreateIgnoreDuplicates(ctx, nil, []*types.ContactTag{
		{ID: uuid.New(), ContactID: starredTagged.ID, TagID: vip.ID},
		{ID: uuid.New(), ContactID: taggedOnly.ID, TagID: vip.ID},
	}); err != nil {
		t.Fatalf("tag contacts: %v", err)
	}

	andDoc := fmt.Sprintf(`{"operator":"AND","conditions":[{"field":"starred","operator":"equals","value":true},{"field":"tag","operator":"contains","value":%q}]}`, vip.ID)
	andList, err := f.svc.Create(ctx, "starred vips", json.RawMessage(andDoc))
	if err != nil {
		t.Fatalf("create and-list: %v", err)
	}
	matched, next, err := f.svc.GetMatchingContacts(ctx, andList.ID, "", 0)
	if err != nil {
		t.Fatalf("match and-list: %v", err)
	}
	if next != "" {
		t.Fatalf("and-list cursor: want exhausted, got %q", next)
	}
	if len(matched) != 1 || matched[0].ID != starredTagged.ID {
		t.Fatalf("and-list matches: want just %s, got %v", starredTagged.ID, matchedIDs(matched))
	}

	orDoc := fmt.Sprintf(`{"operator":"OR","conditions":[{"field":"starred","operator":"equals","value":true},{"field":"tag","operator":"contains","value":%q}]}`, vip.ID)
	orList, err := f.svc.Create(ctx, "starred or vips", json.RawMessage(orDoc))
	if err != nil {
		t.Fatalf("create or-list: %v", err)
	}
	matched, _, err = f.svc.GetMatchingContacts(ctx, orList.ID, "", 0)
	if err != nil {
		t.Fatalf("match or-list: %v", err)
	}
	if len(matched) != 3 {
		t.Fatalf("or-list matches: want 3, got %v", matchedIDs(matched))
	}

	// Conditions the snapshot cannot answer never match.
	factDoc := `{"operator":"AND","conditions":[{"field":"fact:employer","operator":"equals","value":"acme"}]}`
	factList, err := f.svc.Create(ctx, "acme people", json.RawMessage(factDoc))
	if err != nil {
		t.Fatalf("create fact-list: %v", err)
	}
	matched, _, err = f.svc.GetMatchingContacts(ctx, factList.ID, "", 0)
	if err != nil {
		t.Fatalf("match fact-list: %v", err)
	}
	if len(matched) != 0 {
		t.Fatalf("fact-list matches: want 0, got %v", matchedIDs(matched))
	}
}

func TestSmartListServiceMatchingPagination(t *testing.T) {
	f := newSmartListServiceFixture(t)
	ctx := context.Background()

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	want := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		c := testutil.SeedContactAt(t, ctx, f.db, fmt.Sprintf("Member %d", i), base.Add(time.Duration(i)*time.Second))
		want = append(want, c.ID)
	}

	sl, err := f.svc.Create(ctx, "everyone", json.RawMessage(`{"operator":"AND","conditions":[{"field":"display_name","operator":"contains","value":"member"}]}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var got []uuid.UUID
	cursor := ""
	for page := 0; ; page++ {
		matched, next, err := f.svc.GetMatchingContacts(ctx, sl.ID, cursor, 2)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		got = append(got, matchedIDs(matched)...)
		if next == "" {
			break
		}
		if page > 5 {
			t.Fatalf("pagination did not terminate")
		}
		cursor = next
	}
	if len(got) != len(want) {
		t.Fatalf("paged matches: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paged order at %d: want %s, got %s", i, want[i], got[i])
		}
	}

	if _, _, err := f.svc.GetMatchingContacts(ctx, sl.ID, "not-a-cursor!!", 0); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("malformed cursor: want validation, got %v", err)
	}
	if _, _, err := f.svc.GetMatchingContacts(ctx, uuid.New(), "", 0); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("missing list: want not_found, got %v", err)
	}
}

func TestSmartListServiceCorruptStoredRules(t *testing.T) {
	f := newSmartListServiceFixture(t)
	ctx := context.Background()

	sl := testutil.SeedSmartList(t, ctx, f.db, "broken", []byte(`{"operator":`))
	if _, _, err := f.svc.GetMatchingContacts(ctx, sl.ID, "", 0); !apperr.IsCode(err, apperr.CodeInternal) {
		t.Fatalf("corrupt stored rules: want internal, got %v", err)
	}
}

func matchedIDs(rows []*types.Contact) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		out = append(out, c.ID)
	}
	return out
}
