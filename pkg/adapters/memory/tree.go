package memory

import (
	"fmt"

	"github.com/espalier-dev/espalier/pkg/ports"
)

// Node is the in-memory view node. It carries the view identity, the rendered
// title text and the question identity tags used by the option-specific path.
type Node struct {
	ID         string
	QuestionID string
	// ForOptionID and LinkedQuestionID tag option-specific nodes for lookup.
	ForOptionID      string
	LinkedQuestionID string
	Title            string
	Flags            map[string]bool
}

// NodeID implements ports.NodeRef.
func (n *Node) NodeID() string { return n.ID }

// Flag returns the current value of a visual flag.
func (n *Node) Flag(name string) bool { return n.Flags[name] }

// Tree implements ports.ViewTree as an ordered in-memory node list spanning
// one rendered step. Not goroutine-safe; the session serializes mutations.
type Tree struct {
	nodes []*Node
	byID  map[string]*Node
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{byID: make(map[string]*Node)}
}

// QueryByID returns the live node with the given identity, or nil.
func (t *Tree) QueryByID(id string) ports.NodeRef {
	node, ok := t.byID[id]
	if !ok {
		return nil
	}
	return node
}

// InsertBefore places node immediately before ref.
func (t *Tree) InsertBefore(node, ref ports.NodeRef) error {
	n, err := t.own(node)
	if err != nil {
		return err
	}
	idx := t.indexOf(ref)
	if idx < 0 {
		return fmt.Errorf("reference node %s not in tree", ref.NodeID())
	}
	if _, exists := t.byID[n.ID]; exists {
		return fmt.Errorf("node %s already in tree", n.ID)
	}
	t.nodes = append(t.nodes, nil)
	copy(t.nodes[idx+1:], t.nodes[idx:])
	t.nodes[idx] = n
	t.byID[n.ID] = n
	return nil
}

// Append places node at the end of the container.
func (t *Tree) Append(node ports.NodeRef) error {
	n, err := t.own(node)
	if err != nil {
		return err
	}
	if _, exists := t.byID[n.ID]; exists {
		return fmt.Errorf("node %s already in tree", n.ID)
	}
	t.nodes = append(t.nodes, n)
	t.byID[n.ID] = n
	return nil
}

// Remove physically detaches the node.
func (t *Tree) Remove(node ports.NodeRef) error {
	idx := t.indexOf(node)
	if idx < 0 {
		return fmt.Errorf("node %s not in tree", node.NodeID())
	}
	delete(t.byID, t.nodes[idx].ID)
	t.nodes = append(t.nodes[:idx], t.nodes[idx+1:]...)
	return nil
}

// NextSibling returns the node immediately following ref, or nil.
func (t *Tree) NextSibling(ref ports.NodeRef) ports.NodeRef {
	idx := t.indexOf(ref)
	if idx < 0 || idx+1 >= len(t.nodes) {
		return nil
	}
	return t.nodes[idx+1]
}

// SetVisualFlag toggles a named cosmetic flag on the node.
func (t *Tree) SetVisualFlag(node ports.NodeRef, name string, value bool) {
	n, ok := node.(*Node)
	if !ok {
		return
	}
	if n.Flags == nil {
		n.Flags = make(map[string]bool)
	}
	n.Flags[name] = value
}

// Order returns the current node IDs in render order.
func (t *Tree) Order() []string {
	ids := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Nodes returns the live nodes in render order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) own(node ports.NodeRef) (*Node, error) {
	n, ok := node.(*Node)
	if !ok {
		return nil, fmt.Errorf("foreign node type %T", node)
	}
	return n, nil
}

func (t *Tree) indexOf(node ports.NodeRef) int {
	if node == nil {
		return -1
	}
	for i, n := range t.nodes {
		if n.ID == node.NodeID() {
			return i
		}
	}
	return -1
}
