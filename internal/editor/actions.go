package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/specialistvlad/missiongraph/internal/registry"
)

// GraphCategory is the palette category of actions that are not classes.
const GraphCategory = "Graph"

// ActionKind says what performing an action does.
type ActionKind uint8

const (
	// ActionPlaceClass places a node of the action's class.
	ActionPlaceClass ActionKind = iota
	// ActionPlaceKnot places a reroute knot.
	ActionPlaceKnot
)

// Action is one entry of the context menu.
type Action struct {
	Kind     ActionKind
	Category string
	Title    string
	Tooltip  string
	Class    registry.Descriptor
}

// ContextActions lists what can be placed on the graph. With a pin being
// dragged, only classes whose default pins can take a link from it are
// listed and graph actions are left out. Actions are grouped by category.
func (s *Session) ContextActions(ctx context.Context, dragged graph.PinID) []Action {
	var from *graph.Pin
	s.mu.Lock()
	if p, ok := s.g.Pin(dragged); ok {
		c := *p
		from = &c
	}
	s.mu.Unlock()

	var actions []Action
	for _, class := range s.reg.GatherClasses(ctx, s.reg.RootKind()) {
		caps, ok := s.kinds.Lookup(class.Tag)
		if !ok {
			continue
		}
		if from != nil && !acceptsLinkFrom(caps, class.Record, from) {
			continue
		}
		category := class.Category
		if category == "" {
			category = caps.DisplayName
		}
		actions = append(actions, Action{
			Kind:     ActionPlaceClass,
			Category: category,
			Title:    class.Title(),
			Tooltip:  class.Tooltip,
			Class:    class,
		})
	}
	slices.SortStableFunc(actions, func(a, b Action) int {
		return strings.Compare(a.Category, b.Category)
	})

	if from == nil {
		if knot, ok := s.kinds.Lookup(nodekind.Knot); ok {
			actions = append(actions, Action{Kind: ActionPlaceKnot, Category: GraphCategory, Title: knot.DisplayName})
		}
	}
	ctxlog.FromContext(ctx).Debug("Context actions gathered.", "actions", len(actions), "dragging", from != nil)
	return actions
}

type collectedPin struct {
	dir pintype.Direction
	typ pintype.PinType
}

// pinCollector records the default pins of a kind without creating them.
type pinCollector []collectedPin

func (c *pinCollector) AddPin(dir pintype.Direction, t pintype.PinType, _ string) {
	*c = append(*c, collectedPin{dir, t})
}

func acceptsLinkFrom(caps nodekind.Capabilities, record string, from *graph.Pin) bool {
	if caps.BuildPins == nil {
		return false
	}
	var pins pinCollector
	caps.BuildPins(&pins, record)
	for _, p := range pins {
		if p.dir != from.Direction && compatible(p.typ.Category, from.Type.Category) {
			return true
		}
	}
	return false
}

func compatible(a, b pintype.Category) bool {
	if a.IsLogicalPath() || b.IsLogicalPath() {
		return a == b
	}
	return true
}

// Perform carries out action at (x, y). If dragged is a live pin, the new
// node is connected to it through its first pin that accepts the link.
func (s *Session) Perform(ctx context.Context, action Action, x, y float64, dragged graph.PinID) (*graph.Node, error) {
	var n *graph.Node
	var err error
	switch action.Kind {
	case ActionPlaceClass:
		n, err = s.PlaceNode(ctx, action.Class, x, y)
	case ActionPlaceKnot:
		n, err = s.placeKnot(ctx, x, y)
	default:
		return nil, fmt.Errorf("unknown action kind %d", action.Kind)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.g.Pin(dragged); !ok {
		return n, nil
	}
	for _, p := range s.g.Pins(n.ID) {
		if s.schema.CanCreateConnection(dragged, p.ID).Allowed() {
			if _, err := s.schema.TryCreateConnection(dragged, p.ID); err != nil {
				return n, err
			}
			break
		}
	}
	return n, nil
}

func (s *Session) placeKnot(ctx context.Context, x, y float64) (*graph.Node, error) {
	caps, ok := s.kinds.Lookup(nodekind.Knot)
	if !ok {
		return nil, fmt.Errorf("knot: %w", ErrNoKind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.g.AddNode(graph.Node{
		Name: uniqueName(s.g, "Reroute"),
		Tag:  nodekind.Knot,
		X:    x - nodekind.KnotWidth/2.0,
		Y:    y - nodekind.KnotHeight/2.0,
	})
	if err := s.g.BuildDefaultPins(n.ID, caps); err != nil {
		_ = s.g.RemoveNode(n.ID)
		return nil, err
	}
	s.schema.ForceVisualizationCacheClear()
	return n, nil
}
