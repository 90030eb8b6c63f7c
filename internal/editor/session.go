package editor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pins"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/specialistvlad/missiongraph/internal/registry"
	"github.com/specialistvlad/missiongraph/internal/schema"
)

var (
	// ErrUnknownClass is returned when a class cannot be resolved.
	ErrUnknownClass = errors.New("class could not be loaded")
	// ErrNoKind is returned for classes whose node kind has no capabilities.
	ErrNoKind = errors.New("no node kind")
	// ErrNotDuplicable is returned when pasting a kind that cannot be copied.
	ErrNotDuplicable = errors.New("node kind cannot be duplicated")
)

// Session is an editing session over one mission graph. It is safe for
// concurrent use.
type Session struct {
	reg   *registry.Registry
	kinds *nodekind.Table
	synth *pins.Synthesizer

	mu     sync.Mutex
	g      *graph.Graph
	schema *schema.Schema

	refreshing  atomic.Bool
	unsubscribe func()
}

// New creates a session with an empty graph and subscribes it to reg's
// package-list notifications. Call Close to unsubscribe.
func New(reg *registry.Registry, kinds *nodekind.Table, synth *pins.Synthesizer) *Session {
	g := graph.New()
	s := &Session{
		reg:    reg,
		kinds:  kinds,
		synth:  synth,
		g:      g,
		schema: schema.New(g, kinds),
	}
	s.unsubscribe = reg.SubscribePackageListUpdated(func(ctx context.Context) {
		s.RefreshClasses(ctx)
	})
	return s
}

// Close unsubscribes the session from the registry.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Graph returns the current graph. LoadMission replaces it.
func (s *Session) Graph() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g
}

// Schema returns the schema of the current graph.
func (s *Session) Schema() *schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// resolve loads the definition of an unresolved dynamic class.
func (s *Session) resolve(ctx context.Context, class registry.Descriptor) (registry.Descriptor, error) {
	if class.IsResolved() {
		return class, nil
	}
	resolved, ok := s.reg.ResolveClass(ctx, class)
	if !ok {
		return class, fmt.Errorf("class '%s': %w", class, ErrUnknownClass)
	}
	return resolved, nil
}

// PlaceNode adds a node of class at (x, y) with its default and record pins.
func (s *Session) PlaceNode(ctx context.Context, class registry.Descriptor, x, y float64) (*graph.Node, error) {
	class, err := s.resolve(ctx, class)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.place(ctx, s.g, class, class.Name(), x, y)
	if err != nil {
		return nil, err
	}
	s.schema.ForceVisualizationCacheClear()
	return n, nil
}

// AddSubNode places a node of class and appends it to parent's sub-nodes.
func (s *Session) AddSubNode(ctx context.Context, parent graph.NodeID, class registry.Descriptor) (*graph.Node, error) {
	class, err := s.resolve(ctx, class)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.g.Node(parent)
	if !ok {
		return nil, fmt.Errorf("parent node %d: %w", parent, graph.ErrNotFound)
	}
	n, err := s.place(ctx, s.g, class, class.Name(), p.X, p.Y)
	if err != nil {
		return nil, err
	}
	if err := s.g.AddSubNode(parent, n.ID); err != nil {
		_ = s.g.RemoveNode(n.ID)
		return nil, fmt.Errorf("failed to add sub-node to '%s': %w", p.Name, err)
	}
	s.schema.ForceVisualizationCacheClear()
	ctxlog.FromContext(ctx).Debug("Added sub-node.", "node", n.Name, "parent", p.Name)
	return n, nil
}

// place creates a node of class in g. The node is removed again if its pins
// cannot be built.
func (s *Session) place(ctx context.Context, g *graph.Graph, class registry.Descriptor, name string, x, y float64) (*graph.Node, error) {
	if class.Abstract {
		return nil, fmt.Errorf("class '%s' is abstract and cannot be placed", class.Name())
	}
	caps, ok := s.kinds.Lookup(class.Tag)
	if !ok {
		return nil, fmt.Errorf("class '%s' (%s): %w", class.Name(), class.Tag, ErrNoKind)
	}

	n := g.AddNode(graph.Node{
		Name:        uniqueName(g, name),
		Tag:         class.Tag,
		Class:       class,
		Record:      class.Record,
		SubNodeOnly: caps.SubNodeOnly,
		X:           x,
		Y:           y,
	})
	if err := s.allocatePins(ctx, g, n.ID, caps); err != nil {
		_ = g.RemoveNode(n.ID)
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Placed node.", "node", n.Name, "class", class.String(), "tag", class.Tag.String())
	return n, nil
}

func (s *Session) allocatePins(ctx context.Context, g *graph.Graph, id graph.NodeID, caps nodekind.Capabilities) error {
	if err := g.BuildDefaultPins(id, caps); err != nil {
		return fmt.Errorf("failed to build default pins: %w", err)
	}
	if _, err := s.synth.AllocateRecordPins(ctx, g, id); err != nil {
		return fmt.Errorf("failed to allocate record pins: %w", err)
	}
	return nil
}

// PasteNode duplicates node id, its pins and its sub-nodes, offset by
// (dx, dy). Copies get fresh GUIDs and no links. A pasted sub-node is inserted
// right after the original in the same parent.
func (s *Session) PasteNode(ctx context.Context, id graph.NodeID, dx, dy float64) (*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.g.Node(id)
	if !ok {
		return nil, fmt.Errorf("paste node %d: %w", id, graph.ErrNotFound)
	}
	if src.ReadOnly {
		return nil, fmt.Errorf("paste node '%s': %w", src.Name, graph.ErrReadOnly)
	}
	if caps, ok := s.kinds.Lookup(src.Tag); ok && !caps.Duplicable {
		return nil, fmt.Errorf("paste node '%s': %w", src.Name, ErrNotDuplicable)
	}

	dup, err := s.duplicate(src, dx, dy)
	if err != nil {
		return nil, err
	}
	if src.Parent != graph.NoNode {
		if err := s.g.InsertSubNodeAt(src.Parent, dup.ID, s.g.SubNodeIndex(src.ID)+1); err != nil {
			return nil, fmt.Errorf("failed to paste sub-node: %w", err)
		}
	}
	s.schema.ForceVisualizationCacheClear()
	ctxlog.FromContext(ctx).Debug("Pasted node.", "source", src.Name, "node", dup.Name)
	return dup, nil
}

func (s *Session) duplicate(src *graph.Node, dx, dy float64) (*graph.Node, error) {
	dup := s.g.AddNode(graph.Node{
		Name:        uniqueName(s.g, src.Name),
		Tag:         src.Tag,
		Class:       src.Class,
		SubNodeOnly: src.SubNodeOnly,
		Record:      src.Record,
		Data:        src.Data,
		X:           src.X + dx,
		Y:           src.Y + dy,
	})
	for _, p := range s.g.Pins(src.ID) {
		cp, err := s.g.CreatePin(dup.ID, p.Direction, p.Type, p.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to copy pin '%s': %w", p.Name, err)
		}
		cp.FriendlyName = p.FriendlyName
		cp.Tooltip = p.Tooltip
		cp.DefaultValue = p.DefaultValue
		cp.AutogeneratedDefault = p.AutogeneratedDefault
		cp.Hidden = p.Hidden
		cp.NotConnectable = p.NotConnectable
		cp.DefaultValueIgnored = p.DefaultValueIgnored
		cp.Advanced = p.Advanced
	}
	for _, childID := range src.SubNodes {
		child, ok := s.g.Node(childID)
		if !ok || child.ReadOnly {
			continue
		}
		c, err := s.duplicate(child, dx, dy)
		if err != nil {
			return nil, err
		}
		if err := s.g.AddSubNode(dup.ID, c.ID); err != nil {
			return nil, err
		}
	}
	return dup, nil
}

// DeleteNode removes node id and its sub-nodes. Read-only nodes are refused.
func (s *Session) DeleteNode(ctx context.Context, id graph.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.g.RemoveNode(id); err != nil {
		return err
	}
	s.schema.ForceVisualizationCacheClear()
	ctxlog.FromContext(ctx).Debug("Deleted node.", "id", int(id))
	return nil
}

// Connect links pins a and b if the schema allows it, breaking the links the
// response asks for.
func (s *Session) Connect(ctx context.Context, a, b graph.PinID) (schema.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, err := s.schema.TryCreateConnection(a, b)
	if err != nil {
		return resp, err
	}
	ctxlog.FromContext(ctx).Debug("Connection requested.", "response", resp.Kind.String(), "message", resp.Message)
	return resp, nil
}

// ReconstructNode rebuilds the pins of node id from its class and record
// type. Links and edited default values are carried over to pins with the
// same name and direction; links the schema no longer allows are dropped.
func (s *Session) ReconstructNode(ctx context.Context, id graph.NodeID) error {
	s.mu.Lock()
	n, ok := s.g.Node(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("reconstruct node %d: %w", id, graph.ErrNotFound)
	}
	class := n.Class
	s.mu.Unlock()

	if !class.IsZero() && !class.IsResolved() {
		if resolved, ok := s.reg.ResolveClass(ctx, class); ok {
			class = resolved
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconstruct(ctx, id, class)
}

type pinKey struct {
	dir  pintype.Direction
	name string
}

type savedPin struct {
	peers        []graph.PinID
	defaultValue string
	edited       bool
}

func (s *Session) reconstruct(ctx context.Context, id graph.NodeID, class registry.Descriptor) error {
	logger := ctxlog.FromContext(ctx)
	n, ok := s.g.Node(id)
	if !ok {
		return fmt.Errorf("reconstruct node %d: %w", id, graph.ErrNotFound)
	}
	n.Class = class
	if class.Record != "" {
		n.Record = class.Record
	}
	if n.Tag == nodekind.Unknown {
		n.Tag = class.Tag
	}
	caps, ok := s.kinds.Lookup(n.Tag)
	if !ok {
		return fmt.Errorf("reconstruct node '%s' (%s): %w", n.Name, n.Tag, ErrNoKind)
	}

	saved := make(map[pinKey]savedPin)
	for _, p := range s.g.Pins(id) {
		saved[pinKey{p.Direction, p.Name}] = savedPin{
			peers:        slices.Clone(p.LinkedTo),
			defaultValue: p.DefaultValue,
			edited:       p.DefaultValue != p.AutogeneratedDefault,
		}
	}
	s.g.RemovePins(id)
	if err := s.allocatePins(ctx, s.g, id, caps); err != nil {
		return fmt.Errorf("reconstruct node '%s': %w", n.Name, err)
	}

	dropped := 0
	for _, p := range s.g.Pins(id) {
		key := pinKey{p.Direction, p.Name}
		sp, ok := saved[key]
		if !ok {
			continue
		}
		delete(saved, key)
		if sp.edited && !p.DefaultValueIgnored {
			p.DefaultValue = sp.defaultValue
		}
		// Restored links never displace links made since.
		for _, peer := range sp.peers {
			if s.schema.CanCreateConnection(p.ID, peer).Kind != schema.Make {
				dropped++
				continue
			}
			if err := s.g.MakeLink(p.ID, peer); err != nil {
				dropped++
			}
		}
	}
	for _, sp := range saved {
		dropped += len(sp.peers)
	}
	if dropped > 0 {
		logger.Warn("Links dropped while reconstructing node.", "node", n.Name, "links", dropped)
	}
	s.schema.ForceVisualizationCacheClear()
	logger.Debug("Reconstructed node.", "node", n.Name, "pins", len(n.Pins))
	return nil
}

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// uniqueName turns base into a node name usable in pin references and not
// yet taken in g.
func uniqueName(g *graph.Graph, base string) string {
	base = invalidNameChars.ReplaceAllString(base, "_")
	if base == "" || base == "_" {
		base = "Node"
	}
	if _, taken := g.NodeByName(base); !taken {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if _, taken := g.NodeByName(name); !taken {
			return name
		}
	}
}
