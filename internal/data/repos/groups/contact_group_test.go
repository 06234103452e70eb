package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/testutil"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
)

func TestContactGroupRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewContactGroupRepo(db, testutil.Logger(t))

	g1 := testutil.SeedGroup(t, ctx, tx, "friends", nil)
	g2 := testutil.SeedGroup(t, ctx, tx, "work", nil)
	a := testutil.SeedContact(t, ctx, tx, "a", nil, nil)
	b := testutil.SeedContact(t, ctx, tx, "b", nil, nil)

	n, err := repo.CreateIgnoreDuplicates(ctx, tx, []*types.ContactGroup{
		{ID: uuid.New(), ContactID: a.ID, GroupID: g1.ID},
		{ID: uuid.New(), ContactID: b.ID, GroupID: g1.ID},
		{ID: uuid.New(), ContactID: a.ID, GroupID: g2.ID},
	})
	if err != nil || n != 3 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}

	// Re-adding an existing membership inserts nothing.
	n, err = repo.CreateIgnoreDuplicates(ctx, tx, []*types.ContactGroup{
		{ID: uuid.New(), ContactID: a.ID, GroupID: g1.ID},
	})
	if err != nil || n != 0 {
		t.Fatalf("CreateIgnoreDuplicates repeat: n=%d err=%v", n, err)
	}

	if rows, err := repo.GetByContactID(ctx, tx, a.ID); err != nil || len(rows) != 2 {
		t.Fatalf("GetByContactID: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByGroupIDs(ctx, tx, []uuid.UUID{g1.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByGroupIDs: err=%v len=%d", err, len(rows))
	}

	counts, err := repo.CountByGroupIDs(ctx, tx, []uuid.UUID{g1.ID, g2.ID})
	if err != nil || counts[g1.ID] != 2 || counts[g2.ID] != 1 {
		t.Fatalf("CountByGroupIDs: counts=%v err=%v", counts, err)
	}

	// Soft-deleted contacts drop out of membership counts.
	if err := tx.WithContext(ctx).Where("id = ?", b.ID).Delete(&types.Contact{}).Error; err != nil {
		t.Fatalf("soft delete contact: %v", err)
	}
	counts, err = repo.CountByGroupIDs(ctx, tx, []uuid.UUID{g1.ID})
	if err != nil || counts[g1.ID] != 1 {
		t.Fatalf("CountByGroupIDs after soft delete: counts=%v err=%v", counts, err)
	}

	removed, err := repo.FullDeleteByContactIDAndGroupIDs(ctx, tx, a.ID, []uuid.UUID{g2.ID})
	if err != nil || removed != 1 {
		t.Fatalf("FullDeleteByContactIDAndGroupIDs: removed=%d err=%v", removed, err)
	}
	removed, err = repo.FullDeleteByContactIDAndGroupIDs(ctx, tx, a.ID, []uuid.UUID{g2.ID})
	if err != nil || removed != 0 {
		t.Fatalf("repeat remove: removed=%d err=%v", removed, err)
	}

	if err := repo.FullDeleteByGroupIDs(ctx, tx, []uuid.UUID{g1.ID}); err != nil {
		t.Fatalf("FullDeleteByGroupIDs: %v", err)
	}
	if rows, err := repo.GetByGroupIDs(ctx, tx, []uuid.UUID{g1.ID, g2.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after group delete: err=%v len=%d", err, len(rows))
	}
}
