package doctransform

// arenaNode is one entry of the flat rule-tree vector. Children, when
// present, occupy a contiguous index range [Start, End] — Invariant I2.
type arenaNode struct {
	Kind        SegmentKind
	ID          string
	Index       int // meaningful only when Kind == SegArray
	HasChildren bool
	Start, End  int
	Rules       []*Transform
}

func (n *arenaNode) matches(seg Segment) bool {
	if n.Kind != seg.Kind || n.ID != seg.ID {
		return false
	}
	if n.Kind == SegArray {
		return n.Index == seg.Index
	}
	return true
}

// Arena is the flat, never-shrunk vector of rule-tree nodes keyed by
// source path segments. Index 0 always exists and represents the input
// root (Invariant I1): an Object node with empty id.
type Arena struct {
	nodes []arenaNode
}

// NewArena returns an arena containing only the root node.
func NewArena() *Arena {
	return &Arena{nodes: []arenaNode{{Kind: SegObject, ID: ""}}}
}

// NodeCount reports how many nodes the arena currently holds.
func (a *Arena) NodeCount() int { return len(a.nodes) }

// Add walks path from the root, creating nodes as needed while
// preserving contiguous sibling ranges (Invariant I2) and child
// identity (Invariant I3), then appends rule to the resulting node's
// rule list in insertion order (Invariant I4). See spec §4.3.
func (a *Arena) Add(path Path, rule *Transform) {
	cur := 0
	for _, seg := range path {
		cur = a.findOrCreateChild(cur, seg)
	}
	a.nodes[cur].Rules = append(a.nodes[cur].Rules, rule)
}

func (a *Arena) findOrCreateChild(parent int, seg Segment) int {
	node := &a.nodes[parent]
	if node.HasChildren {
		for i := node.Start; i <= node.End; i++ {
			if a.nodes[i].matches(seg) {
				return i
			}
		}
	}

	var newIndex int
	if node.HasChildren {
		newIndex = node.End + 1
	} else {
		newIndex = len(a.nodes)
	}
	a.insertNodeAt(newIndex, seg)

	node = &a.nodes[parent]
	if !node.HasChildren {
		node.HasChildren = true
		node.Start = newIndex
		node.End = newIndex
	} else {
		node.End++
	}
	return newIndex
}

// insertNodeAt reindexes every sibling range that starts at or after
// newIndex, then ripples the vector one slot right and writes the new
// node into the freed slot. This preserves Invariant I2: ranges that
// end before newIndex are untouched, ranges that start at or after it
// shift intact.
func (a *Arena) insertNodeAt(newIndex int, seg Segment) {
	for i := range a.nodes {
		if a.nodes[i].HasChildren && a.nodes[i].Start >= newIndex {
			a.nodes[i].Start++
			a.nodes[i].End++
		}
	}

	a.nodes = append(a.nodes, arenaNode{})
	copy(a.nodes[newIndex+1:], a.nodes[newIndex:])
	a.nodes[newIndex] = arenaNode{Kind: seg.Kind, ID: seg.ID, Index: seg.Index}
}

// rulesAt returns the rule list attached to node idx, in insertion order.
func (a *Arena) rulesAt(idx int) []*Transform { return a.nodes[idx].Rules }

// nodeInfo reports the segment kind/id/array-index that node idx was
// created from.
func (a *Arena) nodeInfo(idx int) (SegmentKind, string, int) {
	n := &a.nodes[idx]
	return n.Kind, n.ID, n.Index
}

// children returns the child indices of node idx in index order.
func (a *Arena) children(idx int) []int {
	node := &a.nodes[idx]
	if !node.HasChildren {
		return nil
	}
	out := make([]int, 0, node.End-node.Start+1)
	for i := node.Start; i <= node.End; i++ {
		out = append(out, i)
	}
	return out
}

// NodeView is a read-only projection of one arena node, for
// introspection/debugging tooling (e.g. a UI listing the compiled rule
// tree), grounded on the teacher's Walk/FindAll traversal helpers.
type NodeView struct {
	Index     int
	Kind      SegmentKind
	ID        string
	ArrayIdx  int
	RuleCount int
	Children  []int
}

// Dump returns a flat snapshot of every node in the arena, in storage
// order.
func (a *Arena) Dump() []NodeView {
	out := make([]NodeView, len(a.nodes))
	for i, n := range a.nodes {
		out[i] = NodeView{
			Index:     i,
			Kind:      n.Kind,
			ID:        n.ID,
			ArrayIdx:  n.Index,
			RuleCount: len(n.Rules),
			Children:  a.children(i),
		}
	}
	return out
}
