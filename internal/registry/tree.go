package registry

// NodeIndex addresses a ClassNode in the registry arena.
type NodeIndex int

// NoNode is the parent index of the root and of detached nodes.
const NoNode NodeIndex = -1

// ClassNode is one kind in the class tree.
type ClassNode struct {
	Data Descriptor
	// ParentClassName names the parent kind; it is what wires the node in.
	ParentClassName string

	parent   NodeIndex
	children []NodeIndex
}

// Parent returns the index of the parent node, or NoNode.
func (n *ClassNode) Parent() NodeIndex { return n.parent }

// Children returns the child indices in attachment order.
func (n *ClassNode) Children() []NodeIndex {
	out := make([]NodeIndex, len(n.children))
	copy(out, n.children)
	return out
}

type classTree struct {
	nodes []ClassNode
	root  NodeIndex
}

func (t *classTree) add(d Descriptor) NodeIndex {
	t.nodes = append(t.nodes, ClassNode{Data: d, ParentClassName: d.Parent, parent: NoNode})
	return NodeIndex(len(t.nodes) - 1)
}

func (t *classTree) node(i NodeIndex) *ClassNode {
	return &t.nodes[i]
}

// attach appends child to parent unless an equal descriptor is already
// attached, in which case that child's data is refreshed. It returns the
// index that ends up in the parent's list.
func (t *classTree) attach(parent, child NodeIndex) NodeIndex {
	p := t.node(parent)
	c := t.node(child)
	for _, existing := range p.children {
		if t.node(existing).Data.Equal(c.Data) {
			t.node(existing).Data = c.Data
			return existing
		}
	}
	if c.Data.Tag == 0 {
		c.Data.Tag = p.Data.Tag
	}
	if c.Data.Record == "" {
		c.Data.Record = p.Data.Record
	}
	c.parent = parent
	p.children = append(p.children, child)
	return child
}

func (t *classTree) detach(child NodeIndex) {
	c := t.node(child)
	if c.parent == NoNode {
		return
	}
	p := t.node(c.parent)
	for i, idx := range p.children {
		if idx == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	c.parent = NoNode
}

// addClassGraphChildren moves every pending node whose parent name matches
// the class of parent under it, then recurses into the newly attached
// children. Quadratic in the number of kinds.
func (t *classTree) addClassGraphChildren(parent NodeIndex, pending *[]NodeIndex) {
	name := t.node(parent).Data.ClassName

	var attached []NodeIndex
	remaining := make([]NodeIndex, 0, len(*pending))
	for _, idx := range *pending {
		if t.node(idx).ParentClassName == name {
			attached = append(attached, idx)
		} else {
			remaining = append(remaining, idx)
		}
	}
	*pending = remaining

	for i, idx := range attached {
		attached[i] = t.attach(parent, idx)
	}
	for _, idx := range attached {
		t.addClassGraphChildren(idx, pending)
	}
}

// find returns the first node, depth first from the root, whose class name is
// name.
func (t *classTree) find(name string) (NodeIndex, bool) {
	if t.root == NoNode {
		return NoNode, false
	}
	return t.findFrom(t.root, name)
}

func (t *classTree) findFrom(at NodeIndex, name string) (NodeIndex, bool) {
	if t.node(at).Data.ClassName == name {
		return at, true
	}
	for _, c := range t.node(at).children {
		if idx, ok := t.findFrom(c, name); ok {
			return idx, true
		}
	}
	return NoNode, false
}

// walk visits at and its descendants, parents first.
func (t *classTree) walk(at NodeIndex, depth int, fn func(idx NodeIndex, depth int)) {
	fn(at, depth)
	for _, c := range t.node(at).children {
		t.walk(c, depth+1, fn)
	}
}
