package hierarchy

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/touchbasehq/touchbase-backend/internal/domain"
)

func g(name string, parent *domain.Group) *domain.Group {
	grp := &domain.Group{ID: uuid.New(), Name: name}
	if parent != nil {
		pid := parent.ID
		grp.ParentID = &pid
	}
	return grp
}

func TestDepthAndSubtreeHeight(t *testing.T) {
	root := g("root", nil)
	mid := g("mid", root)
	leaf := g("leaf", mid)
	other := g("other", nil)

	f := NewForest([]*domain.Group{root, mid, leaf, other})

	for _, tc := range []struct {
		grp  *domain.Group
		want int
	}{
		{root, 1}, {mid, 2}, {leaf, 3}, {other, 1},
	} {
		got, err := f.Depth(tc.grp.ID)
		if err != nil {
			t.Fatalf("Depth(%s): %v", tc.grp.Name, err)
		}
		if got != tc.want {
			t.Errorf("Depth(%s) = %d, want %d", tc.grp.Name, got, tc.want)
		}
	}

	for _, tc := range []struct {
		grp  *domain.Group
		want int
	}{
		{root, 2}, {mid, 1}, {leaf, 0}, {other, 0},
	} {
		got, err := f.SubtreeHeight(tc.grp.ID)
		if err != nil {
			t.Fatalf("SubtreeHeight(%s): %v", tc.grp.Name, err)
		}
		if got != tc.want {
			t.Errorf("SubtreeHeight(%s) = %d, want %d", tc.grp.Name, got, tc.want)
		}
	}
}

func TestDepthTreatsDanglingParentAsRoot(t *testing.T) {
	missing := uuid.New()
	orphan := &domain.Group{ID: uuid.New(), Name: "orphan", ParentID: &missing}
	f := NewForest([]*domain.Group{orphan})

	got, err := f.Depth(orphan.ID)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if got != 1 {
		t.Fatalf("Depth(orphan) = %d, want 1", got)
	}
}

func TestDescendants(t *testing.T) {
	root := g("root", nil)
	a := g("a", root)
	b := g("b", root)
	aa := g("aa", a)

	f := NewForest([]*domain.Group{root, a, b, aa})

	desc, err := f.Descendants(root.ID)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if len(desc) != 3 {
		t.Fatalf("len(Descendants(root)) = %d, want 3", len(desc))
	}
	if _, ok := desc[root.ID]; ok {
		t.Fatalf("Descendants must exclude the node itself")
	}
	if _, ok := desc[aa.ID]; !ok {
		t.Fatalf("Descendants(root) missing grandchild")
	}

	desc, err = f.Descendants(b.ID)
	if err != nil {
		t.Fatalf("Descendants(b): %v", err)
	}
	if len(desc) != 0 {
		t.Fatalf("Descendants(leaf) should be empty, got %d", len(desc))
	}
}

func TestWalksDetectStoredCycle(t *testing.T) {
	a := &domain.Group{ID: uuid.New(), Name: "a"}
	b := &domain.Group{ID: uuid.New(), Name: "b"}
	a.ParentID = &b.ID
	b.ParentID = &a.ID

	f := NewForest([]*domain.Group{a, b})

	if _, err := f.Depth(a.ID); !errors.Is(err, ErrCycle) {
		t.Fatalf("Depth on cyclic data: err = %v, want ErrCycle", err)
	}
	if _, err := f.SubtreeHeight(a.ID); !errors.Is(err, ErrCycle) {
		t.Fatalf("SubtreeHeight on cyclic data: err = %v, want ErrCycle", err)
	}
	if _, err := f.Descendants(a.ID); !errors.Is(err, ErrCycle) {
		t.Fatalf("Descendants on cyclic data: err = %v, want ErrCycle", err)
	}
}

func TestBuildTreeSortsAndPromotesOrphans(t *testing.T) {
	work := g("Work", nil)
	friends := g("Friends", nil)
	zurich := g("Zurich", work)
	amsterdam := g("Amsterdam", work)

	missing := uuid.New()
	orphan := &domain.Group{ID: uuid.New(), Name: "Lost", ParentID: &missing}

	counts := map[uuid.UUID]int64{
		work.ID:      2,
		amsterdam.ID: 7,
	}

	roots := BuildTree([]*domain.Group{work, friends, zurich, amsterdam, orphan}, counts)

	if len(roots) != 3 {
		t.Fatalf("len(roots) = %d, want 3", len(roots))
	}
	wantOrder := []string{"Friends", "Lost", "Work"}
	for i, name := range wantOrder {
		if roots[i].Name != name {
			t.Fatalf("roots[%d] = %q, want %q", i, roots[i].Name, name)
		}
	}

	var workNode *Node
	for _, r := range roots {
		if r.Name == "Work" {
			workNode = r
		}
	}
	if workNode.ContactCount != 2 {
		t.Errorf("Work count = %d, want 2", workNode.ContactCount)
	}
	if len(workNode.Children) != 2 {
		t.Fatalf("Work children = %d, want 2", len(workNode.Children))
	}
	if workNode.Children[0].Name != "Amsterdam" || workNode.Children[1].Name != "Zurich" {
		t.Fatalf("children not name-sorted: %q, %q", workNode.Children[0].Name, workNode.Children[1].Name)
	}
	if workNode.Children[0].ContactCount != 7 {
		t.Errorf("Amsterdam count = %d, want 7", workNode.Children[0].ContactCount)
	}
	if workNode.Children[1].ContactCount != 0 {
		t.Errorf("Zurich count = %d, want 0", workNode.Children[1].ContactCount)
	}
}
