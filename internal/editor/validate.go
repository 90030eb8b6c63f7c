package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/dag"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/registry"
)

// Validate checks the whole graph: it must be acyclic, and every node's
// class must be known and not deprecated. Class problems are also stored as
// the node's ErrorMessage; nodes without problems have theirs cleared.
func (s *Session) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	var problems []string
	d, err := s.dependencies(false)
	if err != nil {
		problems = append(problems, err.Error())
	} else if err := d.DetectCycles(); err != nil {
		problems = append(problems, err.Error())
	}

	for _, n := range s.g.Nodes() {
		n.ErrorMessage = s.classProblem(ctx, n.Class)
		if n.ErrorMessage != "" {
			problems = append(problems, fmt.Sprintf("node '%s': %s", n.Name, n.ErrorMessage))
		}
	}

	if len(problems) > 0 {
		logger.Warn("Mission validation found problems.", "count", len(problems))
		return fmt.Errorf("mission validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	logger.Debug("Mission validation passed.", "nodes", d.Len())
	return nil
}

func (s *Session) classProblem(ctx context.Context, class registry.Descriptor) string {
	if class.IsZero() {
		return ""
	}
	if _, ok := s.reg.Find(ctx, class.Name()); !ok || !s.reg.IsClassKnown(class) {
		return fmt.Sprintf(unknownClassMessage, class.Name())
	}
	return registry.DeprecationMessage(class)
}

// ExecutionOrder returns the nodes so that every node follows the nodes
// linked into it and its parent; sub-nodes keep their order. Among nodes
// that are ready together, the leftmost (then topmost) comes first.
func (s *Session) ExecutionOrder(ctx context.Context) ([]*graph.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.dependencies(true)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*graph.Node)
	for _, n := range s.g.Nodes() {
		byName[n.Name] = n
	}
	names, err := d.TopologicalSort(func(a, b string) bool {
		na, nb := byName[a], byName[b]
		if na.X != nb.X {
			return na.X < nb.X
		}
		return na.Y < nb.Y
	})
	if err != nil {
		return nil, fmt.Errorf("error ordering mission: %w", err)
	}

	out := make([]*graph.Node, len(names))
	for i, name := range names {
		out[i] = byName[name]
	}
	ctxlog.FromContext(ctx).Debug("Execution order computed.", "nodes", len(out))
	return out, nil
}

// dependencies builds the node dependency graph from the links, and with
// ownership set also from parent/sub-node relations.
func (s *Session) dependencies(ownership bool) (*dag.Graph, error) {
	d := dag.New()
	nodes := s.g.Nodes()
	for _, n := range nodes {
		d.AddNode(n.Name)
	}
	for _, n := range nodes {
		for _, succ := range s.g.Successors(n.ID) {
			if to, ok := s.g.Node(succ); ok {
				if err := d.AddEdge(n.Name, to.Name); err != nil {
					return nil, err
				}
			}
		}
		if !ownership {
			continue
		}
		prev := n.Name
		for _, childID := range n.SubNodes {
			child, ok := s.g.Node(childID)
			if !ok {
				continue
			}
			if err := d.AddEdge(prev, child.Name); err != nil {
				return nil, err
			}
			prev = child.Name
		}
	}
	return d, nil
}
