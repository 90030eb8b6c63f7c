package pins

import (
	"context"
	"fmt"
	"maps"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/specialistvlad/missiongraph/internal/recordtype"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMaxDepth bounds record nesting when no depth is configured.
const DefaultMaxDepth = 8

// PinSink creates pins on nodes. *graph.Graph implements it.
type PinSink interface {
	CreatePin(owner graph.NodeID, dir pintype.Direction, t pintype.PinType, name string) (*graph.Pin, error)
}

var _ PinSink = (*graph.Graph)(nil)

// Realized pairs a field with the pin created for it.
type Realized struct {
	Field recordtype.Field
	// Path is the dotted field path from the synthesized record.
	Path string
	Pin  graph.PinID
}

// Synthesizer creates pins from record fields.
type Synthesizer struct {
	reflector recordtype.Reflector
	maxDepth  int
}

// New creates a synthesizer. maxDepth <= 0 selects DefaultMaxDepth.
func New(reflector recordtype.Reflector, maxDepth int) *Synthesizer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Synthesizer{reflector: reflector, maxDepth: maxDepth}
}

// MaxDepth returns the configured nesting limit.
func (s *Synthesizer) MaxDepth() int { return s.maxDepth }

type walkState struct {
	sink     PinSink
	owner    graph.NodeID
	dir      pintype.Direction
	realized []Realized
}

// CreateVisiblePins creates pins on owner for every visible field of
// recordType. sample, when non-nil, supplies default values. Fields whose
// type cannot be mapped to a pin are skipped with a warning. Only sink
// failures are returned as errors.
func (s *Synthesizer) CreateVisiblePins(
	ctx context.Context,
	sink PinSink,
	fields []recordtype.Field,
	recordType string,
	dir pintype.Direction,
	owner graph.NodeID,
	sample *cty.Value,
) ([]Realized, error) {
	st := &walkState{sink: sink, owner: owner, dir: dir}
	path := map[string]bool{}
	if recordType != "" {
		path[recordType] = true
	}
	if err := s.walk(ctx, st, fields, recordType, "", sample, path, 0); err != nil {
		return st.realized, err
	}
	return st.realized, nil
}

func (s *Synthesizer) walk(
	ctx context.Context,
	st *walkState,
	fields []recordtype.Field,
	recordType string,
	prefix string,
	sample *cty.Value,
	path map[string]bool,
	depth int,
) error {
	logger := ctxlog.FromContext(ctx)

	for _, f := range fields {
		if !f.ShowPin {
			continue
		}
		pt, err := s.reflector.ResolvePinType(f.Type)
		if err != nil {
			logger.Warn("Skipping field with unsupported type.", "record", recordType, "field", f.Name, "type", f.Type.String(), "error", err)
			continue
		}

		name := prefix + f.Name
		nested := fieldSample(sample, f.Name)

		if !f.Type.Record || f.Type.Container != pintype.None {
			if err := s.createFieldPins(ctx, st, f, pt, name, nested); err != nil {
				return err
			}
			continue
		}

		sub := f.Type.Name
		policy := s.reflector.Policy(sub)
		if path[sub] || depth+1 > s.maxDepth {
			logger.Debug("Record recursion stopped.", "record", recordType, "field", name, "nested", sub, "depth", depth+1)
			policy = config.PolicyStopDepth
		}

		switch policy {
		case config.PolicySkipPast:
			if err := s.recurse(ctx, st, sub, prefix, nested, path, depth); err != nil {
				return err
			}
		case config.PolicyStopDepth:
			if err := s.createPin(ctx, st, f, pt, name, f.FriendlyName, nested); err != nil {
				return err
			}
		default:
			if err := s.createPin(ctx, st, f, pt, name, f.FriendlyName, nested); err != nil {
				return err
			}
			if err := s.recurse(ctx, st, sub, name+".", nested, path, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Synthesizer) recurse(
	ctx context.Context,
	st *walkState,
	recordType string,
	prefix string,
	sample *cty.Value,
	path map[string]bool,
	depth int,
) error {
	fields, err := s.reflector.Fields(ctx, recordType)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Nested record could not be reflected.", "record", recordType, "error", err)
		return nil
	}
	inner := maps.Clone(path)
	inner[recordType] = true
	return s.walk(ctx, st, fields, recordType, prefix, sample, inner, depth+1)
}

// createFieldPins creates the pin of a non-record or container field. Arrays
// with sample elements get one pin per element.
func (s *Synthesizer) createFieldPins(ctx context.Context, st *walkState, f recordtype.Field, pt pintype.PinType, name string, sample *cty.Value) error {
	if pt.Container != pintype.Array || sample == nil || !isSequence(*sample) {
		return s.createPin(ctx, st, f, pt, name, f.FriendlyName, sample)
	}

	elemType := pt
	elemType.Container = pintype.None
	elemField := f
	elemField.Type.Container = pintype.None

	i := 0
	for it := sample.ElementIterator(); it.Next(); i++ {
		_, elem := it.Element()
		elemName := fmt.Sprintf("%s_%d", name, i)
		friendly := fmt.Sprintf("%s %d", f.FriendlyName, i)
		if err := s.createPin(ctx, st, elemField, elemType, elemName, friendly, &elem); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synthesizer) createPin(ctx context.Context, st *walkState, f recordtype.Field, pt pintype.PinType, name, friendly string, sample *cty.Value) error {
	p, err := st.sink.CreatePin(st.owner, st.dir, pt, name)
	if err != nil {
		return fmt.Errorf("failed to create pin '%s': %w", name, err)
	}
	p.FriendlyName = friendly
	p.Tooltip = f.Tooltip
	p.Advanced = f.Advanced
	p.NotConnectable = !f.Settable
	p.DefaultValueIgnored = !f.Settable || pt.IsContainer()

	if !pt.IsContainer() {
		p.DefaultValue = s.defaultValue(ctx, f, pt, sample)
		p.AutogeneratedDefault = p.DefaultValue
	}
	st.realized = append(st.realized, Realized{Field: f, Path: name, Pin: p.ID})
	return nil
}

// AllocateRecordPins synthesizes the input pins of node from its record type,
// using the node's data as sample. Nodes without a record get no pins; an
// unknown record is logged and skipped.
func (s *Synthesizer) AllocateRecordPins(ctx context.Context, g *graph.Graph, id graph.NodeID) ([]Realized, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, fmt.Errorf("allocate record pins for node %d: %w", id, graph.ErrNotFound)
	}
	if n.Record == "" {
		return nil, nil
	}
	fields, err := s.reflector.Fields(ctx, n.Record)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Node record could not be reflected; no data pins created.", "node", n.Name, "record", n.Record, "error", err)
		return nil, nil
	}
	var sample *cty.Value
	if n.Data.IsKnown() && !n.Data.IsNull() {
		data := n.Data
		sample = &data
	}
	return s.CreateVisiblePins(ctx, g, fields, n.Record, pintype.Input, id, sample)
}
