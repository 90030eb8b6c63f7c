package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/zclconf/go-cty/cty"
)

// Graph is the node and pin arena of one mission graph.
type Graph struct {
	nodes []*Node
	pins  []*Pin
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode copies n into the graph and returns the stored node. The id and
// parent are assigned by the graph; a zero GUID is replaced by a fresh one.
func (g *Graph) AddNode(n Node) *Node {
	stored := n
	stored.ID = NodeID(len(g.nodes))
	stored.Parent = NoNode
	stored.Pins = nil
	stored.SubNodes = nil
	stored.removed = false
	if stored.GUID == uuid.Nil {
		stored.GUID = uuid.New()
	}
	if stored.Data.Type() == cty.NilType {
		stored.Data = cty.NullVal(cty.DynamicPseudoType)
	}
	g.nodes = append(g.nodes, &stored)
	return &stored
}

// Node returns the live node id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id].removed {
		return nil, false
	}
	return g.nodes[id], true
}

func (g *Graph) mustNode(id NodeID) (*Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return n, nil
}

// Nodes returns the live nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if !n.removed {
			out = append(out, n)
		}
	}
	return out
}

// NodeByName returns the first live node called name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	for _, n := range g.nodes {
		if !n.removed && n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// NodeByGUID returns the live node with the given GUID.
func (g *Graph) NodeByGUID(id uuid.UUID) (*Node, bool) {
	for _, n := range g.nodes {
		if !n.removed && n.GUID == id {
			return n, true
		}
	}
	return nil, false
}

// RemoveNode deletes a node together with its sub-nodes, breaking every link
// of their pins and detaching it from its parent.
func (g *Graph) RemoveNode(id NodeID) error {
	n, err := g.mustNode(id)
	if err != nil {
		return err
	}
	if n.ReadOnly {
		return fmt.Errorf("remove node '%s': %w", n.Name, ErrReadOnly)
	}
	if n.Parent != NoNode {
		if p, ok := g.Node(n.Parent); ok {
			p.SubNodes = slices.DeleteFunc(p.SubNodes, func(c NodeID) bool { return c == id })
		}
	}
	g.destroy(n)
	return nil
}

func (g *Graph) destroy(n *Node) {
	for _, child := range n.SubNodes {
		if c, ok := g.Node(child); ok {
			g.destroy(c)
		}
	}
	g.RemovePins(n.ID)
	n.SubNodes = nil
	n.Parent = NoNode
	n.removed = true
}

// AddSubNode appends child to parent's sub-nodes.
func (g *Graph) AddSubNode(parent, child NodeID) error {
	return g.InsertSubNodeAt(parent, child, -1)
}

// InsertSubNodeAt inserts child into parent's sub-nodes at idx. A negative or
// out of range idx appends.
func (g *Graph) InsertSubNodeAt(parent, child NodeID, idx int) error {
	p, err := g.mustNode(parent)
	if err != nil {
		return err
	}
	c, err := g.mustNode(child)
	if err != nil {
		return err
	}
	if parent == child {
		return fmt.Errorf("node '%s' cannot own itself", p.Name)
	}
	for cur := p; cur != nil; {
		if cur.ID == child {
			return fmt.Errorf("node '%s' is an ancestor of '%s'", c.Name, p.Name)
		}
		next, ok := g.Node(cur.Parent)
		if !ok {
			break
		}
		cur = next
	}
	if c.Parent != NoNode {
		if err := g.RemoveSubNode(c.Parent, child); err != nil {
			return err
		}
	}

	if idx < 0 || idx > len(p.SubNodes) {
		p.SubNodes = append(p.SubNodes, child)
	} else {
		p.SubNodes = slices.Insert(p.SubNodes, idx, child)
	}
	c.Parent = parent
	return nil
}

// RemoveSubNode detaches child from parent without deleting it.
func (g *Graph) RemoveSubNode(parent, child NodeID) error {
	p, err := g.mustNode(parent)
	if err != nil {
		return err
	}
	c, err := g.mustNode(child)
	if err != nil {
		return err
	}
	i := slices.Index(p.SubNodes, child)
	if i < 0 || c.Parent != parent {
		return fmt.Errorf("node '%s' is not a sub-node of '%s': %w", c.Name, p.Name, ErrNotFound)
	}
	p.SubNodes = slices.Delete(p.SubNodes, i, i+1)
	c.Parent = NoNode
	return nil
}

// SubNodeIndex returns the position of child in its parent's sub-node list,
// or -1.
func (g *Graph) SubNodeIndex(child NodeID) int {
	c, ok := g.Node(child)
	if !ok || c.Parent == NoNode {
		return -1
	}
	p, _ := g.Node(c.Parent)
	return slices.Index(p.SubNodes, child)
}

// CreatePin appends a pin to owner.
func (g *Graph) CreatePin(owner NodeID, dir pintype.Direction, t pintype.PinType, name string) (*Pin, error) {
	n, err := g.mustNode(owner)
	if err != nil {
		return nil, err
	}
	p := &Pin{
		ID:             PinID(len(g.pins)),
		Owner:          owner,
		Direction:      dir,
		Type:           t,
		Name:           name,
		PersistentGUID: uuid.New(),
	}
	g.pins = append(g.pins, p)
	n.Pins = append(n.Pins, p.ID)
	return p, nil
}

// Pin returns the live pin id.
func (g *Graph) Pin(id PinID) (*Pin, bool) {
	if id < 0 || int(id) >= len(g.pins) || g.pins[id].removed {
		return nil, false
	}
	return g.pins[id], true
}

// Pins returns the live pins of owner in order.
func (g *Graph) Pins(owner NodeID) []*Pin {
	n, ok := g.Node(owner)
	if !ok {
		return nil
	}
	out := make([]*Pin, 0, len(n.Pins))
	for _, id := range n.Pins {
		if p, ok := g.Pin(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// FindPin returns the pin of owner called name with direction dir.
func (g *Graph) FindPin(owner NodeID, name string, dir pintype.Direction) (*Pin, bool) {
	for _, p := range g.Pins(owner) {
		if p.Name == name && p.Direction == dir {
			return p, true
		}
	}
	return nil, false
}

// FindPinByName returns the first pin of owner called name in either direction.
func (g *Graph) FindPinByName(owner NodeID, name string) (*Pin, bool) {
	for _, p := range g.Pins(owner) {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// RemovePins breaks every link of owner's pins and deletes them.
func (g *Graph) RemovePins(owner NodeID) {
	n, ok := g.Node(owner)
	if !ok {
		return
	}
	for _, id := range n.Pins {
		if p, ok := g.Pin(id); ok {
			g.BreakPinLinks(id)
			p.removed = true
		}
	}
	n.Pins = nil
}

// BuildDefaultPins creates the default pins of owner from its kind's
// capabilities.
func (g *Graph) BuildDefaultPins(owner NodeID, caps nodekind.Capabilities) error {
	n, err := g.mustNode(owner)
	if err != nil {
		return err
	}
	if caps.BuildPins == nil {
		return nil
	}
	b := &pinBuilder{g: g, owner: owner}
	caps.BuildPins(b, n.Record)
	return b.err
}

type pinBuilder struct {
	g     *Graph
	owner NodeID
	err   error
}

func (b *pinBuilder) AddPin(dir pintype.Direction, t pintype.PinType, name string) {
	if b.err != nil {
		return
	}
	_, b.err = b.g.CreatePin(b.owner, dir, t, name)
}
