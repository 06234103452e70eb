package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	redisclient "github.com/touchbasehq/touchbase-backend/internal/clients/redis"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/testutil"
	"github.com/touchbasehq/touchbase-backend/internal/dedupe"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
	"github.com/touchbasehq/touchbase-backend/internal/domain/apperr"
)

type duplicateServiceFixture struct {
	db  *gorm.DB
	svc DuplicateService

	contacts      repos.ContactRepo
	notes         repos.NoteRepo
	comms         repos.CommunicationRepo
	facts         repos.FactRepo
	relationships repos.RelationshipRepo
	followups     repos.FollowupRepo
	contactTags   repos.ContactTagRepo
	contactGroups repos.ContactGroupRepo
}

func newDuplicateServiceFixture(t *testing.T, cache *redisclient.Cache) *duplicateServiceFixture {
	t.Helper()
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)

	f := &duplicateServiceFixture{
		db:            db,
		contacts:      repos.NewContactRepo(db, log),
		notes:         repos.NewNoteRepo(db, log),
		comms:         repos.NewCommunicationRepo(db, log),
		facts:         repos.NewFactRepo(db, log),
		relationships: repos.NewRelationshipRepo(db, log),
		followups:     repos.NewFollowupRepo(db, log),
		contactTags:   repos.NewContactTagRepo(db, log),
		contactGroups: repos.NewContactGroupRepo(db, log),
	}
	f.svc = NewDuplicateService(db, log, cache,
		f.contacts, f.notes, f.comms, f.facts, f.relationships, f.followups, f.contactTags, f.contactGroups)
	return f
}

func pairKey(a, b uuid.UUID) [2]uuid.UUID {
	if b.String() < a.String() {
		a, b = b, a
	}
	return [2]uuid.UUID{a, b}
}

func TestDuplicateServiceScanFindsPairs(t *testing.T) {
	f := newDuplicateServiceFixture(t, nil)
	ctx := context.Background()

	jon := testutil.SeedContact(t, ctx, f.db, "Jon Smith", []string{"aj@example.com"}, nil)
	john := testutil.SeedContact(t, ctx, f.db, "John Smith", nil, nil)
	bob := testutil.SeedContact(t, ctx, f.db, "Bob Pine", []string{"shared@example.com"}, nil)
	robert := testutil.SeedContact(t, ctx, f.db, "Robert Pine III", []string{"Shared@Example.com "}, nil)
	carol := testutil.SeedContact(t, ctx, f.db, "Carol", nil, []string{"+1 (555) 010-0001"})
	caz := testutil.SeedContact(t, ctx, f.db, "Caz", nil, []string{"15550100001"})
	testutil.SeedContact(t, ctx, f.db, "Unrelated Zed", []string{"zed@example.com"}, nil)

	pairs, err := f.svc.Scan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("pairs: want 3, got %d (%+v)", len(pairs), pairs)
	}

	byKey := make(map[[2]uuid.UUID]dedupe.CandidatePair, len(pairs))
	for _, p := range pairs {
		if p.ContactB.String() < p.ContactA.String() {
			t.Fatalf("pair not canonical: %+v", p)
		}
		byKey[pairKey(p.ContactA, p.ContactB)] = p
	}

	emailPair, ok := byKey[pairKey(bob.ID, robert.ID)]
	if !ok || emailPair.Reason != dedupe.ReasonSameEmail || emailPair.Confidence != 1.0 {
		t.Fatalf("email pair: got %+v", emailPair)
	}
	phonePair, ok := byKey[pairKey(carol.ID, caz.ID)]
	if !ok || phonePair.Reason != dedupe.ReasonSamePhone || phonePair.Confidence != 1.0 {
		t.Fatalf("phone pair: got %+v", phonePair)
	}
	namePair, ok := byKey[pairKey(jon.ID, john.ID)]
	if !ok || namePair.Reason != dedupe.ReasonSimilarName {
		t.Fatalf("name pair: got %+v", namePair)
	}
	if namePair.Confidence < dedupe.NameSimilarityThreshold || namePair.Confidence >= 1.0 {
		t.Fatalf("name confidence out of range: %v", namePair.Confidence)
	}

	// Soft-deleted contacts drop out of detection.
	if err := f.db.WithContext(ctx).Where("id = ?", robert.ID).Delete(&types.Contact{}).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	pairs, err = f.svc.Scan(ctx)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs after soft delete: want 2, got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.ContactA == robert.ID || p.ContactB == robert.ID {
			t.Fatalf("soft-deleted contact still paired: %+v", p)
		}
	}
}

func TestDuplicateServiceScanUsesRevisionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := redisclient.NewCache(rdb, testutil.Logger(t))
	f := newDuplicateServiceFixture(t, cache)
	ctx := context.Background()

	testutil.SeedContact(t, ctx, f.db, "One", []string{"same@example.com"}, nil)
	testutil.SeedContact(t, ctx, f.db, "Two", []string{"same@example.com"}, nil)

	pairs, err := f.svc.Scan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("first scan: want 1 pair, got %d", len(pairs))
	}

	// A write that bypasses the service leaves the revision untouched, so
	// the next scan is served from cache.
	testutil.SeedContact(t, ctx, f.db, "Three", []string{"same@example.com"}, nil)
	pairs, err = f.svc.Scan(ctx)
	if err != nil {
		t.Fatalf("cached scan: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("cached scan: want stale 1 pair, got %d", len(pairs))
	}

	if err := cache.IncrRevision(ctx); err != nil {
		t.Fatalf("bump revision: %v", err)
	}
	pairs, err = f.svc.Scan(ctx)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("rescan: want 3 pairs, got %d", len(pairs))
	}
}

// seedMergeScenario builds the canonical merge case: a target and source
// with child rows, overlapping memberships, and edges that collapse.
func seedMergeScenario(t *testing.T, f *duplicateServiceFixture) (target, source *types.Contact) {
	t.Helper()
	ctx := context.Background()

	target = testutil.SeedContact(t, ctx, f.db, "Keep Me", []string{"keep@example.com"}, nil)
	source = testutil.SeedContact(t, ctx, f.db, "Fold Me", []string{"fold@example.com"}, nil)
	other := testutil.SeedContact(t, ctx, f.db, "Mutual Friend", nil, nil)
	mentor := testutil.SeedContact(t, ctx, f.db, "Mentor", nil, nil)

	if _, err := f.notes.Create(ctx, nil, []*types.Note{
		{ID: uuid.New(), ContactID: source.ID, Body: "first"},
		{ID: uuid.New(), ContactID: source.ID, Body: "second"},
	}); err != nil {
		t.Fatalf("seed notes: %v", err)
	}
	if _, err := f.comms.Create(ctx, nil, []*types.Communication{
		{ID: uuid.New(), ContactID: source.ID, Channel: types.ChannelCall, Direction: types.DirectionInbound, OccurredAt: time.Now()},
	}); err != nil {
		t.Fatalf("seed communication: %v", err)
	}
	if _, err := f.facts.Create(ctx, nil, []*types.Fact{
		{ID: uuid.New(), ContactID: source.ID, Key: "employer", Value: "acme"},
	}); err != nil {
		t.Fatalf("seed fact: %v", err)
	}
	if _, err := f.followups.Create(ctx, nil, []*types.Followup{
		{ID: uuid.New(), ContactID: source.ID, DueAt: time.Now().Add(48 * time.Hour)},
	}); err != nil {
		t.Fatalf("seed followup: %v", err)
	}

	// source->other duplicates target->other after the rewrite;
	// source->target collapses into a self-loop; source->mentor moves.
	if _, err := f.relationships.Create(ctx, nil, []*types.Relationship{
		{ID: uuid.New(), ContactID: target.ID, RelatedContactID: other.ID, Kind: "friend"},
		{ID: uuid.New(), ContactID: source.ID, RelatedContactID: other.ID, Kind: "friend"},
		{ID: uuid.New(), ContactID: source.ID, RelatedContactID: target.ID, Kind: "colleague"},
		{ID: uuid.New(), ContactID: source.ID, RelatedContactID: mentor.ID, Kind: "mentor"},
	}); err != nil {
		t.Fatalf("seed relationships: %v", err)
	}

	shared := testutil.SeedGroup(t, ctx, f.db, "shared circle", nil)
	onlySource := testutil.SeedGroup(t, ctx, f.db, "source circle", nil)
	if _, err := f.contactGroups.CreateIgnoreDuplicates(ctx, nil, []*types.ContactGroup{
		{ID: uuid.New(), ContactID: target.ID, GroupID: shared.ID},
		{ID: uuid.New(), ContactID: source.ID, GroupID: shared.ID},
		{ID: uuid.New(), ContactID: source.ID, GroupID: onlySource.ID},
	}); err != nil {
		t.Fatalf("seed group joins: %v", err)
	}

	vip := testutil.SeedTag(t, ctx, f.db, "vip")
	if _, err := f.contactTags.CreateIgnoreDuplicates(ctx, nil, []*types.ContactTag{
		{ID: uuid.New(), ContactID: source.ID, TagID: vip.ID},
	}); err != nil {
		t.Fatalf("seed tag join: %v", err)
	}

	return target, source
}

func assertMergeCounts(t *testing.T, got *MergeResult) {
	t.Helper()
	wantMoved := MergeCounts{Notes: 2, Communications: 1, Facts: 1, Relationships: 1, Followups: 1, Groups: 1, Tags: 1}
	wantDeduped := MergeCounts{Relationships: 2, Groups: 1}
	if got.Moved != wantMoved {
		t.Fatalf("moved counts: want %+v, got %+v", wantMoved, got.Moved)
	}
	if got.Deduped != wantDeduped {
		t.Fatalf("deduped counts: want %+v, got %+v", wantDeduped, got.Deduped)
	}
}

func TestDuplicateServiceMergePreviewIsReadOnly(t *testing.T) {
	f := newDuplicateServiceFixture(t, nil)
	ctx := context.Background()
	target, source := seedMergeScenario(t, f)

	preview, err := f.svc.MergePreview(ctx, target.ID, source.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	assertMergeCounts(t, preview)

	// Nothing moved: the source is live and still owns its rows.
	still, err := f.contacts.GetByID(ctx, nil, source.ID)
	if err != nil || still == nil {
		t.Fatalf("source after preview: %v %v", still, err)
	}
	n, err := f.notes.CountByContactIDs(ctx, nil, []uuid.UUID{source.ID})
	if err != nil || n != 2 {
		t.Fatalf("source notes after preview: want 2, got %d (%v)", n, err)
	}
	edges, err := f.relationships.GetInvolvingContact(ctx, nil, source.ID)
	if err != nil || len(edges) != 3 {
		t.Fatalf("source edges after preview: want 3, got %d (%v)", len(edges), err)
	}
}

func TestDuplicateServiceMerge(t *testing.T) {
	f := newDuplicateServiceFixture(t, nil)
	ctx := context.Background()
	target, source := seedMergeScenario(t, f)

	result, err := f.svc.Merge(ctx, target.ID, source.ID)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	assertMergeCounts(t, result)

	gone, err := f.contacts.GetByID(ctx, nil, source.ID)
	if err != nil {
		t.Fatalf("source lookup: %v", err)
	}
	if gone != nil {
		t.Fatalf("source still live after merge")
	}

	n, err := f.notes.CountByContactIDs(ctx, nil, []uuid.UUID{target.ID})
	if err != nil || n != 2 {
		t.Fatalf("target notes: want 2, got %d (%v)", n, err)
	}
	n, err = f.followups.CountByContactIDs(ctx, nil, []uuid.UUID{target.ID})
	if err != nil || n != 1 {
		t.Fatalf("target followups: want 1, got %d (%v)", n, err)
	}

	sourceEdges, err := f.relationships.GetInvolvingContact(ctx, nil, source.ID)
	if err != nil {
		t.Fatalf("source edges: %v", err)
	}
	if len(sourceEdges) != 0 {
		t.Fatalf("edges still touch source: %+v", sourceEdges)
	}
	targetEdges, err := f.relationships.GetInvolvingContact(ctx, nil, target.ID)
	if err != nil {
		t.Fatalf("target edges: %v", err)
	}
	kinds := map[string]int{}
	for _, e := range targetEdges {
		kinds[e.Kind]++
	}
	if len(targetEdges) != 2 || kinds["friend"] != 1 || kinds["mentor"] != 1 {
		t.Fatalf("target edges after merge: %+v", targetEdges)
	}

	groups, err := f.contactGroups.GetByContactID(ctx, nil, target.ID)
	if err != nil || len(groups) != 2 {
		t.Fatalf("target groups: want 2, got %d (%v)", len(groups), err)
	}
	tags, err := f.contactTags.GetByContactID(ctx, nil, target.ID)
	if err != nil || len(tags) != 1 {
		t.Fatalf("target tags: want 1, got %d (%v)", len(tags), err)
	}
	sourceGroups, err := f.contactGroups.GetByContactID(ctx, nil, source.ID)
	if err != nil || len(sourceGroups) != 0 {
		t.Fatalf("source groups: want 0, got %d (%v)", len(sourceGroups), err)
	}

	// Merging the other way now fails: the source row is gone.
	if _, err := f.svc.Merge(ctx, source.ID, target.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("merge into deleted: want not_found, got %v", err)
	}
}

func TestDuplicateServiceMergeValidations(t *testing.T) {
	f := newDuplicateServiceFixture(t, nil)
	ctx := context.Background()

	c := testutil.SeedContact(t, ctx, f.db, "Solo", nil, nil)
	if _, err := f.svc.Merge(ctx, c.ID, c.ID); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("self merge: want validation, got %v", err)
	}
	if _, err := f.svc.Merge(ctx, uuid.New(), c.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("missing target: want not_found, got %v", err)
	}
	if _, err := f.svc.MergePreview(ctx, c.ID, uuid.New()); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("missing source: want not_found, got %v", err)
	}
}

// failingFollowupRepo fails ReassignContact to force a mid-merge abort.
type failingFollowupRepo struct {
	repos.FollowupRepo
}

func (f *failingFollowupRepo) ReassignContact(ctx context.Context, tx *gorm.DB, fromContactID, toContactID uuid.UUID) (int64, error) {
	return 0, errors.New("reassign blew up")
}

func TestDuplicateServiceMergeRollsBackOnFailure(t *testing.T) {
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	followups := &failingFollowupRepo{FollowupRepo: repos.NewFollowupRepo(db, log)}

	f := &duplicateServiceFixture{
		db:            db,
		contacts:      repos.NewContactRepo(db, log),
		notes:         repos.NewNoteRepo(db, log),
		comms:         repos.NewCommunicationRepo(db, log),
		facts:         repos.NewFactRepo(db, log),
		relationships: repos.NewRelationshipRepo(db, log),
		followups:     repos.NewFollowupRepo(db, log),
		contactTags:   repos.NewContactTagRepo(db, log),
		contactGroups: repos.NewContactGroupRepo(db, log),
	}
	f.svc = NewDuplicateService(db, log, nil,
		f.contacts, f.notes, f.comms, f.facts, f.relationships, followups, f.contactTags, f.contactGroups)

	ctx := context.Background()
	target, source := seedMergeScenario(t, f)

	if _, err := f.svc.Merge(ctx, target.ID, source.ID); err == nil {
		t.Fatalf("merge should fail when a reassign fails")
	}

	// The whole transaction rolled back, including the reassigns that
	// succeeded before the failure.
	still, err := f.contacts.GetByID(ctx, nil, source.ID)
	if err != nil || still == nil {
		t.Fatalf("source after failed merge: %v %v", still, err)
	}
	n, err := f.notes.CountByContactIDs(ctx, nil, []uuid.UUID{source.ID})
	if err != nil || n != 2 {
		t.Fatalf("source notes after failed merge: want 2, got %d (%v)", n, err)
	}
	n, err = f.notes.CountByContactIDs(ctx, nil, []uuid.UUID{target.ID})
	if err != nil || n != 0 {
		t.Fatalf("target notes after failed merge: want 0, got %d (%v)", n, err)
	}
}
