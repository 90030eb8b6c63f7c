package schema

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pintype"
)

// ErrNoLink is returned when a knot is requested on pins that are not linked.
var ErrNoLink = errors.New("pins are not linked")

// Schema validates and applies edits to one graph.
type Schema struct {
	g     *graph.Graph
	kinds *nodekind.Table

	cacheID int
}

// New returns the schema of g. kinds supplies the knot's pins.
func New(g *graph.Graph, kinds *nodekind.Table) *Schema {
	return &Schema{g: g, kinds: kinds}
}

// CanCreateConnection decides whether pins a and b may be linked. The first
// failing check wins.
func (s *Schema) CanCreateConnection(a, b graph.PinID) Response {
	pa, okA := s.g.Pin(a)
	pb, okB := s.g.Pin(b)
	if !okA || !okB {
		return disallow(MsgPinMissing)
	}
	if pa.Owner == pb.Owner {
		return disallow(MsgSameNode)
	}
	if pa.Direction == pintype.Input && pb.Direction == pintype.Input {
		return disallow(MsgInputToInput)
	}
	if pa.Direction == pintype.Output && pb.Direction == pintype.Output {
		return disallow(MsgOutputToOutput)
	}

	out, in := pa, pb
	if pa.Direction == pintype.Input {
		out, in = pb, pa
	}
	if s.wouldCycle(out.Owner, in.Owner) {
		return disallow(MsgCycle)
	}

	ca, cb := pa.Type.Category, pb.Type.Category
	if (ca.IsLogicalPath() || cb.IsLogicalPath()) && ca != cb {
		return disallow(MsgLogicalPath)
	}

	inSingle := in.Type.Category.IsSingleLink()
	outSingle := out.Type.Category.IsSingleLink()
	inIsA := in == pa

	if in.HasLinks() && (inSingle || outSingle) {
		if outSingle && out.HasLinks() {
			return Response{Kind: BreakOthersAB, Message: MsgReplace}
		}
		if inIsA {
			return Response{Kind: BreakOthersA, Message: MsgReplace}
		}
		return Response{Kind: BreakOthersB, Message: MsgReplace}
	}
	if outSingle && out.HasLinks() {
		if inIsA {
			return Response{Kind: BreakOthersB, Message: MsgReplace}
		}
		return Response{Kind: BreakOthersA, Message: MsgReplace}
	}
	return Response{Kind: Make, Message: MsgConnect}
}

// wouldCycle walks backwards from the output owner through every input link.
// Reaching the input owner means the new link would close a cycle; nodes
// reached twice by other paths are not cycles.
func (s *Schema) wouldCycle(outOwner, inOwner graph.NodeID) bool {
	visited := map[graph.NodeID]bool{inOwner: true}
	var visit func(graph.NodeID) bool
	visit = func(id graph.NodeID) bool {
		visited[id] = true
		for _, pred := range s.g.Predecessors(id) {
			if pred == inOwner {
				return true
			}
			if visited[pred] {
				continue
			}
			if visit(pred) {
				return true
			}
		}
		return false
	}
	if outOwner == inOwner {
		return true
	}
	return visit(outOwner)
}

// TryCreateConnection applies CanCreateConnection: links that must be broken
// are broken first, then a and b are linked. A disallowed link changes
// nothing.
func (s *Schema) TryCreateConnection(a, b graph.PinID) (Response, error) {
	resp := s.CanCreateConnection(a, b)
	switch resp.Kind {
	case Disallow:
		return resp, nil
	case BreakOthersA:
		s.g.BreakPinLinks(a)
	case BreakOthersB:
		s.g.BreakPinLinks(b)
	case BreakOthersAB:
		s.g.BreakPinLinks(a)
		s.g.BreakPinLinks(b)
	}
	if err := s.g.MakeLink(a, b); err != nil {
		return resp, fmt.Errorf("failed to link pins: %w", err)
	}
	s.ForceVisualizationCacheClear()
	return resp, nil
}

// CanMergeNodes decides whether node a may be dropped onto node b. Only
// sub-nodes merge.
func (s *Schema) CanMergeNodes(a, b graph.NodeID) Response {
	if a == b {
		return disallow(MsgSameNodeMerge)
	}
	na, okA := s.g.Node(a)
	nb, okB := s.g.Node(b)
	if !okA || !okB || !na.IsSubNode() || !nb.IsSubNode() {
		return disallow(MsgNotSubNodes)
	}
	for cur := nb.Parent; cur != graph.NoNode; {
		if cur == a {
			return disallow(MsgMergeIntoSubNode)
		}
		n, ok := s.g.Node(cur)
		if !ok {
			break
		}
		cur = n.Parent
	}
	return Response{Kind: Make}
}

// MergeNodes moves sub-node a next to b, after it in b's parent.
func (s *Schema) MergeNodes(a, b graph.NodeID) (Response, error) {
	resp := s.CanMergeNodes(a, b)
	if !resp.Allowed() {
		return resp, nil
	}
	nb, _ := s.g.Node(b)
	if nb.Parent == graph.NoNode {
		return resp, fmt.Errorf("merge target '%s' has no parent node: %w", nb.Name, graph.ErrNotFound)
	}
	if na, _ := s.g.Node(a); na.Parent != graph.NoNode {
		if err := s.g.RemoveSubNode(na.Parent, a); err != nil {
			return resp, fmt.Errorf("failed to merge nodes: %w", err)
		}
	}
	idx := s.g.SubNodeIndex(b) + 1
	if err := s.g.InsertSubNodeAt(nb.Parent, a, idx); err != nil {
		return resp, fmt.Errorf("failed to merge nodes: %w", err)
	}
	s.ForceVisualizationCacheClear()
	return resp, nil
}

// InsertKnot splices a reroute knot centred on (x, y) into the link a-b.
func (s *Schema) InsertKnot(a, b graph.PinID, x, y float64) (*graph.Node, error) {
	if !s.g.IsLinked(a, b) {
		return nil, fmt.Errorf("insert knot between pins %d and %d: %w", a, b, ErrNoLink)
	}
	pa, _ := s.g.Pin(a)
	pb, _ := s.g.Pin(b)
	out, in := pa, pb
	if pa.Direction == pintype.Input {
		out, in = pb, pa
	}

	knot := s.g.AddNode(graph.Node{
		Name: "Reroute",
		Tag:  nodekind.Knot,
		X:    x - nodekind.KnotWidth/2.0,
		Y:    y - nodekind.KnotHeight/2.0,
	})
	if err := s.g.BuildDefaultPins(knot.ID, s.kinds.MustLookup(nodekind.Knot)); err != nil {
		return nil, err
	}
	knotIn, _ := s.g.FindPin(knot.ID, nodekind.PinKnotIn, pintype.Input)
	knotOut, _ := s.g.FindPin(knot.ID, nodekind.PinKnotOut, pintype.Output)
	knotIn.Type = out.Type
	knotOut.Type = out.Type

	if err := s.g.BreakLink(a, b); err != nil {
		return nil, err
	}
	if err := s.g.MakeLink(out.ID, knotIn.ID); err != nil {
		return nil, err
	}
	if err := s.g.MakeLink(knotOut.ID, in.ID); err != nil {
		return nil, err
	}
	s.ForceVisualizationCacheClear()
	return knot, nil
}

// BreakPinLinks removes every link of pin p.
func (s *Schema) BreakPinLinks(p graph.PinID) {
	s.g.BreakPinLinks(p)
	s.ForceVisualizationCacheClear()
}

// BreakNodeLinks removes every link of node n.
func (s *Schema) BreakNodeLinks(n graph.NodeID) {
	s.g.BreakNodeLinks(n)
	s.ForceVisualizationCacheClear()
}

// BreakSinglePinLink removes the link between a and b.
func (s *Schema) BreakSinglePinLink(a, b graph.PinID) error {
	if err := s.g.BreakLink(a, b); err != nil {
		return err
	}
	s.ForceVisualizationCacheClear()
	return nil
}

// ShouldHidePinDefaultValue reports whether the default value editor of p is
// hidden.
func (s *Schema) ShouldHidePinDefaultValue(p graph.PinID) bool {
	pin, ok := s.g.Pin(p)
	return ok && pin.DefaultValueIgnored
}

// CurrentVisualizationCacheID identifies the current state of the graph's
// visual cache.
func (s *Schema) CurrentVisualizationCacheID() int { return s.cacheID }

// IsCacheVisualizationOutOfDate reports whether id predates the last clear.
func (s *Schema) IsCacheVisualizationOutOfDate(id int) bool { return id != s.cacheID }

// ForceVisualizationCacheClear invalidates every cached visualization.
func (s *Schema) ForceVisualizationCacheClear() { s.cacheID++ }
