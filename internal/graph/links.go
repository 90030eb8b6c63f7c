package graph

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/missiongraph/internal/pintype"
)

// MakeLink joins an input and an output pin of two different nodes. Linking
// two pins that are already linked is a no-op.
func (g *Graph) MakeLink(a, b PinID) error {
	pa, ok := g.Pin(a)
	if !ok {
		return fmt.Errorf("pin %d: %w", a, ErrNotFound)
	}
	pb, ok := g.Pin(b)
	if !ok {
		return fmt.Errorf("pin %d: %w", b, ErrNotFound)
	}
	if pa.Owner == pb.Owner {
		return fmt.Errorf("%w: pins '%s' and '%s' are on the same node", ErrInvalidLink, pa.Name, pb.Name)
	}
	if pa.Direction == pb.Direction {
		return fmt.Errorf("%w: pins '%s' and '%s' are both %s pins", ErrInvalidLink, pa.Name, pb.Name, pa.Direction)
	}
	if slices.Contains(pa.LinkedTo, b) {
		return nil
	}
	pa.LinkedTo = append(pa.LinkedTo, b)
	pb.LinkedTo = append(pb.LinkedTo, a)
	return nil
}

// IsLinked reports whether a and b are linked.
func (g *Graph) IsLinked(a, b PinID) bool {
	pa, ok := g.Pin(a)
	return ok && slices.Contains(pa.LinkedTo, b)
}

// BreakLink removes the link between a and b.
func (g *Graph) BreakLink(a, b PinID) error {
	pa, okA := g.Pin(a)
	pb, okB := g.Pin(b)
	if !okA || !okB || !slices.Contains(pa.LinkedTo, b) {
		return fmt.Errorf("link %d-%d: %w", a, b, ErrNotFound)
	}
	pa.LinkedTo = slices.DeleteFunc(pa.LinkedTo, func(id PinID) bool { return id == b })
	pb.LinkedTo = slices.DeleteFunc(pb.LinkedTo, func(id PinID) bool { return id == a })
	return nil
}

// BreakPinLinks removes every link of pin id and returns the pins it was
// linked to.
func (g *Graph) BreakPinLinks(id PinID) []PinID {
	p, ok := g.Pin(id)
	if !ok {
		return nil
	}
	linked := slices.Clone(p.LinkedTo)
	for _, other := range linked {
		if op, ok := g.Pin(other); ok {
			op.LinkedTo = slices.DeleteFunc(op.LinkedTo, func(x PinID) bool { return x == id })
		}
	}
	p.LinkedTo = nil
	return linked
}

// BreakNodeLinks removes every link of every pin of node id.
func (g *Graph) BreakNodeLinks(id NodeID) {
	for _, p := range g.Pins(id) {
		g.BreakPinLinks(p.ID)
	}
}

// Predecessors returns the distinct nodes linked into id's input pins, in
// pin and link order.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return g.neighbours(id, func(p *Pin) bool { return p.Direction == pintype.Input })
}

// Successors returns the distinct nodes linked to id's output pins.
func (g *Graph) Successors(id NodeID) []NodeID {
	return g.neighbours(id, func(p *Pin) bool { return p.Direction == pintype.Output })
}

func (g *Graph) neighbours(id NodeID, keep func(*Pin) bool) []NodeID {
	var out []NodeID
	for _, p := range g.Pins(id) {
		if !keep(p) {
			continue
		}
		for _, other := range p.LinkedTo {
			op, ok := g.Pin(other)
			if !ok || slices.Contains(out, op.Owner) {
				continue
			}
			out = append(out, op.Owner)
		}
	}
	return out
}
