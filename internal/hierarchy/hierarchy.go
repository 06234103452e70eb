package hierarchy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/touchbasehq/touchbase-backend/internal/domain"
)

// ErrCycle is returned when stored parent pointers loop. Walks are guarded
// by visited sets so corrupt data surfaces as an error, never a hang.
var ErrCycle = errors.New("group hierarchy contains a cycle")

// Forest is an in-memory snapshot of all group rows, indexed for the
// transitive-closure walks the hierarchy invariants need. Closure is
// computed by explicit iteration over parent/child pointers; nothing here
// depends on the store's query language.
type Forest struct {
	byID     map[uuid.UUID]*domain.Group
	children map[uuid.UUID][]uuid.UUID
}

func NewForest(groups []*domain.Group) *Forest {
	f := &Forest{
		byID:     make(map[uuid.UUID]*domain.Group, len(groups)),
		children: make(map[uuid.UUID][]uuid.UUID, len(groups)),
	}
	for _, g := range groups {
		f.byID[g.ID] = g
	}
	for _, g := range groups {
		if g.ParentID == nil {
			continue
		}
		if _, ok := f.byID[*g.ParentID]; !ok {
			continue
		}
		f.children[*g.ParentID] = append(f.children[*g.ParentID], g.ID)
	}
	return f
}

func (f *Forest) Has(id uuid.UUID) bool {
	_, ok := f.byID[id]
	return ok
}

// Depth returns the 1-based level of id (a root is level 1). A node whose
// parent row is missing from the snapshot counts as a root, matching the
// orphan promotion rule used by BuildTree.
func (f *Forest) Depth(id uuid.UUID) (int, error) {
	g, ok := f.byID[id]
	if !ok {
		return 0, fmt.Errorf("group %s not in snapshot", id)
	}
	depth := 1
	seen := map[uuid.UUID]struct{}{id: {}}
	for g.ParentID != nil {
		parent, ok := f.byID[*g.ParentID]
		if !ok {
			break
		}
		if _, dup := seen[parent.ID]; dup {
			return 0, ErrCycle
		}
		seen[parent.ID] = struct{}{}
		depth++
		g = parent
	}
	return depth, nil
}

// SubtreeHeight returns the height in edges of the subtree rooted at id
// (a leaf is 0). depth(parent) + SubtreeHeight(id) + 1 is the deepest level
// the subtree would reach under that parent.
func (f *Forest) SubtreeHeight(id uuid.UUID) (int, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, fmt.Errorf("group %s not in snapshot", id)
	}
	height := 0
	seen := map[uuid.UUID]struct{}{id: {}}
	frontier := []uuid.UUID{id}
	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, cur := range frontier {
			for _, child := range f.children[cur] {
				if _, dup := seen[child]; dup {
					return 0, ErrCycle
				}
				seen[child] = struct{}{}
				next = append(next, child)
			}
		}
		if len(next) > 0 {
			height++
		}
		frontier = next
	}
	return height, nil
}

// Descendants returns every node strictly below id.
func (f *Forest) Descendants(id uuid.UUID) (map[uuid.UUID]struct{}, error) {
	if _, ok := f.byID[id]; !ok {
		return nil, fmt.Errorf("group %s not in snapshot", id)
	}
	out := make(map[uuid.UUID]struct{})
	seen := map[uuid.UUID]struct{}{id: {}}
	frontier := []uuid.UUID{id}
	for len(frontier) > 0 {
		var next []uuid.UUID
		for _, cur := range frontier {
			for _, child := range f.children[cur] {
				if _, dup := seen[child]; dup {
					return nil, ErrCycle
				}
				seen[child] = struct{}{}
				out[child] = struct{}{}
				next = append(next, child)
			}
		}
		frontier = next
	}
	return out, nil
}

// Node is one rendered entry of the group tree.
type Node struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	FollowupDays *int       `json:"followup_days,omitempty"`
	ContactCount int64      `json:"contact_count"`
	Children     []*Node    `json:"children"`
}

// BuildTree assembles groups into a rooted forest: one pass to index nodes
// by id, one pass to attach each node to its parent. Nodes whose parent is
// not present are promoted to roots. Roots and every sibling list are sorted
// by name ascending (id as tiebreaker, for a stable render).
func BuildTree(groups []*domain.Group, counts map[uuid.UUID]int64) []*Node {
	nodes := make(map[uuid.UUID]*Node, len(groups))
	for _, g := range groups {
		nodes[g.ID] = &Node{
			ID:           g.ID,
			Name:         g.Name,
			ParentID:     g.ParentID,
			FollowupDays: g.FollowupDays,
			ContactCount: counts[g.ID],
			Children:     []*Node{},
		}
	}
	roots := make([]*Node, 0, len(groups))
	for _, g := range groups {
		n := nodes[g.ID]
		if g.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*g.ParentID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(ns []*Node) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Name != ns[j].Name {
			return ns[i].Name < ns[j].Name
		}
		return ns[i].ID.String() < ns[j].ID.String()
	})
	for _, n := range ns {
		sortNodes(n.Children)
	}
}
