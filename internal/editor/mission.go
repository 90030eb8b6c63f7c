package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/nodeid"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/registry"
	"github.com/specialistvlad/missiongraph/internal/schema"
)

// ErrLinkRejected is wrapped by link errors the schema refused.
var ErrLinkRejected = errors.New("link rejected")

// LinkError reports a mission link that could not be created.
type LinkError struct {
	Link *config.Link
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s -> %s: %v", e.Link.From, e.Link.To, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// LoadMission builds a new graph from m and makes it the session's graph.
// Node errors abort the load and leave the current graph in place. Links are
// created one by one; the ones that fail are returned and skipped.
func (s *Session) LoadMission(ctx context.Context, m *config.Mission) ([]*LinkError, error) {
	logger := ctxlog.FromContext(ctx).With("mission", m.Name)
	logger.Debug("Loading mission.", "nodes", len(m.Nodes), "links", len(m.Links))

	g := graph.New()
	sch := schema.New(g, s.kinds)

	// First pass: nodes.
	var errs []string
	for _, mn := range m.Nodes {
		if err := s.loadNode(ctx, g, mn); err != nil {
			errs = append(errs, err.Error())
		}
	}

	// Second pass: ownership.
	for _, mn := range m.Nodes {
		if mn.Parent == "" {
			continue
		}
		child, ok := g.NodeByName(mn.Name)
		if !ok {
			continue
		}
		parent, ok := g.NodeByName(mn.Parent)
		if !ok {
			errs = append(errs, fmt.Sprintf("node '%s': parent node '%s' not found", mn.Name, mn.Parent))
			continue
		}
		if err := g.AddSubNode(parent.ID, child.ID); err != nil {
			errs = append(errs, fmt.Sprintf("node '%s': %v", mn.Name, err))
		}
	}

	if len(errs) > 0 {
		logger.Error("Mission nodes could not be created.", "count", len(errs))
		return nil, fmt.Errorf("mission '%s' load failed:\n- %s", m.Name, strings.Join(errs, "\n- "))
	}

	// Third pass: links.
	var linkErrs []*LinkError
	for _, l := range m.Links {
		if err := connectRefs(g, sch, l); err != nil {
			logger.Warn("Mission link skipped.", "from", l.From, "to", l.To, "error", err)
			linkErrs = append(linkErrs, &LinkError{Link: l, Err: err})
		}
	}

	s.mu.Lock()
	s.g = g
	s.schema = sch
	s.mu.Unlock()

	logger.Info("Mission loaded.", "nodes", len(g.Nodes()), "skipped_links", len(linkErrs))
	return linkErrs, nil
}

func (s *Session) loadNode(ctx context.Context, g *graph.Graph, mn *config.MissionNode) error {
	logger := ctxlog.FromContext(ctx)
	if mn.Name == "" {
		return fmt.Errorf("node of kind '%s' has no name", mn.Kind)
	}
	if _, taken := g.NodeByName(mn.Name); taken {
		return fmt.Errorf("node '%s' is declared more than once", mn.Name)
	}

	var class registry.Descriptor
	if mn.Class != "" {
		found, ok := s.reg.Find(ctx, mn.Class)
		switch {
		case !ok:
			// Kept unresolved so that validation can flag it.
			class = registry.Descriptor{AssetName: mn.Class, ClassName: mn.Class}
			logger.Warn("Mission node references an unknown class.", "node", mn.Name, "class", mn.Class)
		case found.IsResolved():
			class = found
		default:
			class, _ = s.reg.ResolveClass(ctx, found)
		}
	}

	tag := class.Tag
	if mn.Kind != "" {
		var err error
		if tag, err = nodekind.ParseTag(mn.Kind); err != nil {
			return fmt.Errorf("node '%s': %w", mn.Name, err)
		}
	}
	caps, ok := s.kinds.Lookup(tag)
	if !ok {
		return fmt.Errorf("node '%s' (%s): %w", mn.Name, tag, ErrNoKind)
	}

	n := g.AddNode(graph.Node{
		Name:        mn.Name,
		Tag:         tag,
		Class:       class,
		ReadOnly:    mn.ReadOnly,
		SubNodeOnly: caps.SubNodeOnly,
		Record:      class.Record,
		Data:        mn.Data,
		X:           mn.X,
		Y:           mn.Y,
	})
	if err := s.allocatePins(ctx, g, n.ID, caps); err != nil {
		return fmt.Errorf("node '%s': %w", mn.Name, err)
	}
	return nil
}

// connectRefs links the pins named by l. Only links the schema would make
// without breaking others are accepted.
func connectRefs(g *graph.Graph, sch *schema.Schema, l *config.Link) error {
	from, err := pinByRef(g, l.From)
	if err != nil {
		return err
	}
	to, err := pinByRef(g, l.To)
	if err != nil {
		return err
	}

	resp := sch.CanCreateConnection(from, to)
	switch resp.Kind {
	case schema.Make:
	case schema.Disallow:
		return fmt.Errorf("%w: %s", ErrLinkRejected, resp.Message)
	default:
		return fmt.Errorf("%w: conflicts with an existing link (%s)", ErrLinkRejected, resp.Kind)
	}
	return g.MakeLink(from, to)
}

func pinByRef(g *graph.Graph, ref string) (graph.PinID, error) {
	addr, err := nodeid.ParsePinRef(ref)
	if err != nil {
		return graph.NoPin, err
	}
	n, ok := g.NodeByName(addr.NodeName())
	if !ok {
		return graph.NoPin, fmt.Errorf("node '%s': %w", addr.NodeName(), graph.ErrNotFound)
	}
	p, ok := g.FindPinByName(n.ID, addr.PinName())
	if !ok {
		return graph.NoPin, fmt.Errorf("pin '%s' on node '%s': %w", addr.PinName(), n.Name, graph.ErrNotFound)
	}
	return p.ID, nil
}
