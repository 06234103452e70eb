package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/touchbasehq/touchbase-backend/internal/data/repos/testutil"
	types "github.com/touchbasehq/touchbase-backend/internal/domain"
)

func TestGroupRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewGroupRepo(db, testutil.Logger(t))

	root := &types.Group{ID: uuid.New(), Name: "family"}
	if _, err := repo.Create(ctx, tx, []*types.Group{root}); err != nil {
		t.Fatalf("Create root: %v", err)
	}

	childB := &types.Group{ID: uuid.New(), Name: "brooklyn", ParentID: &root.ID, FollowupDays: testutil.PtrInt(30)}
	childA := &types.Group{ID: uuid.New(), Name: "astoria", ParentID: &root.ID}
	if _, err := repo.Create(ctx, tx, []*types.Group{childB, childA}); err != nil {
		t.Fatalf("Create children: %v", err)
	}

	all, err := repo.GetAll(ctx, tx)
	if err != nil || len(all) != 3 || all[0].Name != "astoria" {
		t.Fatalf("GetAll: err=%v len=%d", err, len(all))
	}

	kids, err := repo.GetByParentIDs(ctx, tx, []uuid.UUID{root.ID})
	if err != nil || len(kids) != 2 || kids[0].Name != "astoria" || kids[1].Name != "brooklyn" {
		t.Fatalf("GetByParentIDs: err=%v len=%d", err, len(kids))
	}

	got, err := repo.GetByID(ctx, tx, childB.ID)
	if err != nil || got == nil || got.FollowupDays == nil || *got.FollowupDays != 30 {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}

	if err := repo.UpdateFields(ctx, tx, childA.ID, map[string]interface{}{
		"name":      "queens",
		"parent_id": nil,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, childA.ID)
	if err != nil || got == nil || got.Name != "queens" || got.ParentID != nil {
		t.Fatalf("after UpdateFields: got=%+v err=%v", got, err)
	}

	if err := repo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{childB.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(ctx, tx, childB.ID); err != nil || got != nil {
		t.Fatalf("GetByID soft-deleted: got=%v err=%v", got, err)
	}
	if kids, err := repo.GetByParentIDs(ctx, tx, []uuid.UUID{root.ID}); err != nil || len(kids) != 0 {
		t.Fatalf("children after delete/reparent: err=%v len=%d", err, len(kids))
	}
}
