package usecase

import (
	"fmt"
	"sort"

	"opsplan-service/internal/domain/entity"
)

// MaxNodesPerPlan caps the node count accepted per plan so that board
// aggregation and calendar rendering stay bounded.
const MaxNodesPerPlan = 500

// TreeNode is one entry in a built plan tree with its children sorted by
// sibling order.
type TreeNode struct {
	Node     *entity.PlanNode
	Children []*TreeNode
}

// PlanTree is the validated hierarchical view over a plan's flat node list.
// Nodes are indexed by id; parent/child links are kept as indices into the
// shared map rather than free-floating pointers so ownership stays with the
// plan aggregate.
type PlanTree struct {
	roots []*TreeNode
	byID  map[string]*TreeNode
}

// BuildPlanTree validates a flat node list and produces the tree. It rejects
// duplicate node ids, parent references outside the supplied set, duplicate
// sibling order values under one parent, cycles, and node counts above
// MaxNodesPerPlan. On error no partial tree is returned.
func BuildPlanTree(nodes []*entity.PlanNode) (*PlanTree, error) {
	if len(nodes) > MaxNodesPerPlan {
		return nil, &ValidationError{Reason: fmt.Sprintf("plan has %d nodes, maximum is %d", len(nodes), MaxNodesPerPlan)}
	}

	byID := make(map[string]*TreeNode, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, &ValidationError{Reason: "node with empty id"}
		}
		if _, exists := byID[n.ID]; exists {
			return nil, &ValidationError{Reason: fmt.Sprintf("duplicate node id %s", n.ID)}
		}
		byID[n.ID] = &TreeNode{Node: n}
	}

	// Attach children and check order uniqueness per parent.
	orderSeen := make(map[string]map[int]string, len(nodes))
	var roots []*TreeNode
	for _, n := range nodes {
		parentKey := n.ParentID
		if orderSeen[parentKey] == nil {
			orderSeen[parentKey] = make(map[int]string)
		}
		if otherID, dup := orderSeen[parentKey][n.OrderNo]; dup {
			return nil, &ValidationError{Reason: fmt.Sprintf("nodes %s and %s share sibling order %d", otherID, n.ID, n.OrderNo)}
		}
		orderSeen[parentKey][n.OrderNo] = n.ID

		if n.ParentID == "" {
			roots = append(roots, byID[n.ID])
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("node %s references unknown parent %s", n.ID, n.ParentID)}
		}
		if n.ParentID == n.ID {
			return nil, &ValidationError{Reason: fmt.Sprintf("node %s is its own parent", n.ID)}
		}
		parent.Children = append(parent.Children, byID[n.ID])
	}

	// Every node must be reachable from a root; anything left over sits on
	// a parent cycle.
	reachable := 0
	var walk func(tn *TreeNode)
	walk = func(tn *TreeNode) {
		reachable++
		for _, c := range tn.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	if reachable != len(nodes) {
		return nil, &ValidationError{Reason: "node tree contains a cycle"}
	}

	tree := &PlanTree{roots: roots, byID: byID}
	tree.sortChildren()
	return tree, nil
}

func (t *PlanTree) sortChildren() {
	sort.Slice(t.roots, func(i, j int) bool {
		return t.roots[i].Node.OrderNo < t.roots[j].Node.OrderNo
	})
	for _, tn := range t.byID {
		children := tn.Children
		sort.Slice(children, func(i, j int) bool {
			return children[i].Node.OrderNo < children[j].Node.OrderNo
		})
	}
}

// Roots returns the top-level nodes sorted by sibling order
func (t *PlanTree) Roots() []*TreeNode {
	return t.roots
}

// Node returns the node with the given id, or nil
func (t *PlanTree) Node(id string) *entity.PlanNode {
	if tn, ok := t.byID[id]; ok {
		return tn.Node
	}
	return nil
}

// Len returns the total node count
func (t *PlanTree) Len() int {
	return len(t.byID)
}

// Flatten returns all nodes depth-first, parents before children, siblings
// in order. The result is freshly computed on every call.
func (t *PlanTree) Flatten() []*entity.PlanNode {
	out := make([]*entity.PlanNode, 0, len(t.byID))
	var walk func(tn *TreeNode)
	walk = func(tn *TreeNode) {
		out = append(out, tn.Node)
		for _, c := range tn.Children {
			walk(c)
		}
	}
	for _, r := range t.roots {
		walk(r)
	}
	return out
}

// TotalExpectedMinutes sums the expected duration of every node that has
// one. Nodes without a value are excluded rather than counted as zero.
func (t *PlanTree) TotalExpectedMinutes() int {
	total := 0
	for _, tn := range t.byID {
		if tn.Node.ExpectedMinutes != nil {
			total += *tn.Node.ExpectedMinutes
		}
	}
	return total
}
