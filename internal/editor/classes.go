package editor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/registry"
)

// unknownClassMessage is the node error of a class that cannot be loaded.
const unknownClassMessage = "Unknown class '%s'. Its package could not be loaded."

// RefreshClasses re-resolves the dynamic class of every node and rebuilds
// the nodes whose kind or record type changed. It returns the number of
// nodes that changed. A refresh already in progress absorbs nested and
// concurrent requests.
func (s *Session) RefreshClasses(ctx context.Context) int {
	if !s.refreshing.CompareAndSwap(false, true) {
		return 0
	}
	defer s.refreshing.Store(false)
	logger := ctxlog.FromContext(ctx)

	type candidate struct {
		id    graph.NodeID
		class registry.Descriptor
	}
	s.mu.Lock()
	var candidates []candidate
	for _, n := range s.g.Nodes() {
		if !n.Class.IsZero() && n.Class.IsDynamic() {
			candidates = append(candidates, candidate{n.ID, n.Class})
		}
	}
	s.mu.Unlock()

	type outcome struct {
		class registry.Descriptor
		ok    bool
	}
	outcomes := make([]outcome, len(candidates))
	for i, c := range candidates {
		fresh := registry.Descriptor{
			AssetName: c.class.AssetName,
			Package:   c.class.Package,
			ClassName: c.class.ClassName,
			Parent:    c.class.Parent,
			Record:    c.class.Record,
			Tag:       c.class.Tag,
		}
		resolved, ok := s.reg.ResolveClass(ctx, fresh)
		outcomes[i] = outcome{resolved, ok}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i, c := range candidates {
		n, ok := s.g.Node(c.id)
		if !ok || !n.Class.Equal(c.class) {
			continue
		}
		o := outcomes[i]
		if !o.ok {
			msg := fmt.Sprintf(unknownClassMessage, c.class.Name())
			if n.ErrorMessage != msg {
				n.ErrorMessage = msg
				changed++
			}
			continue
		}

		rebuild := o.class.Record != n.Record || (n.Tag != o.class.Tag && o.class.Tag != nodekind.Unknown)
		wasUnresolved := !n.Class.IsResolved()
		n.Class = o.class
		if n.ErrorMessage == fmt.Sprintf(unknownClassMessage, c.class.Name()) {
			n.ErrorMessage = ""
		}
		if rebuild {
			if o.class.Tag != nodekind.Unknown {
				n.Tag = o.class.Tag
			}
			if err := s.reconstruct(ctx, n.ID, o.class); err != nil {
				logger.Warn("Node could not be rebuilt after class refresh.", "node", n.Name, "error", err)
				n.ErrorMessage = err.Error()
			}
		}
		if rebuild || wasUnresolved {
			changed++
		}
	}
	if changed > 0 {
		s.schema.ForceVisualizationCacheClear()
	}
	logger.Debug("Classes refreshed.", "candidates", len(candidates), "changed", changed)
	return changed
}
