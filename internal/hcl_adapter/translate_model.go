package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateKind converts a `kind` block into the format-agnostic model.
func translateKind(ctx context.Context, k *KindBlock, source string) (*config.KindDefinition, error) {
	def := &config.KindDefinition{
		Name:        k.Name,
		Parent:      k.Parent,
		Category:    k.Category,
		DisplayName: k.DisplayName,
		Tooltip:     k.Tooltip,
		Abstract:    k.Abstract,
		Hidden:      k.Hidden,
		HideParent:  k.HideParent,
		Record:      k.Record,
		Source:      source,
	}

	val, ok, err := evalOptional(ctx, k.Deprecated, "deprecated")
	if err != nil {
		return nil, fmt.Errorf("in kind '%s': %w", k.Name, err)
	}
	if ok {
		switch {
		case val.Type().Equals(cty.Bool):
			def.DeprecatedFlag = val.True()
		case val.Type().Equals(cty.String):
			def.Deprecated = val.AsString()
		default:
			return nil, fmt.Errorf("in kind '%s': 'deprecated' must be a bool or a message string, got %s", k.Name, val.Type().FriendlyName())
		}
	}

	ctxlog.FromContext(ctx).Debug("Translated kind.", "kind", def.Name, "parent", def.Parent)
	return def, nil
}

// translateRecord converts a `record` block, keeping field order.
func translateRecord(ctx context.Context, r *RecordBlock, source string) (*config.RecordDefinition, error) {
	policy, err := config.ParsePolicy(r.Policy)
	if err != nil {
		return nil, fmt.Errorf("in record '%s': %w", r.Name, err)
	}

	def := &config.RecordDefinition{
		Name:   r.Name,
		Policy: policy,
		Source: source,
	}
	seen := make(map[string]struct{}, len(r.Fields))
	for _, f := range r.Fields {
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("in record '%s': field '%s' declared twice", r.Name, f.Name)
		}
		seen[f.Name] = struct{}{}

		field, err := translateField(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("in record '%s', field '%s': %w", r.Name, f.Name, err)
		}
		def.Fields = append(def.Fields, field)
	}
	return def, nil
}

func translateField(ctx context.Context, f *FieldBlock) (*config.FieldDefinition, error) {
	ref, err := typeExprToTypeRef(ctx, f.Type)
	if err != nil {
		return nil, err
	}

	field := &config.FieldDefinition{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		Tooltip:     f.Tooltip,
		Type:        ref,
		Advanced:    f.Advanced,
		ShowPin:     true,
		Settable:    true,
	}
	if f.ShowPin != nil {
		field.ShowPin = *f.ShowPin
	}
	if f.Settable != nil {
		field.Settable = *f.Settable
	}

	val, ok, err := evalOptional(ctx, f.Default, "default")
	if err != nil {
		return nil, err
	}
	if ok {
		s, err := literalString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid default: %w", err)
		}
		field.Default = &s
	}
	return field, nil
}

// translateMission converts a `mission` document.
func translateMission(ctx context.Context, m *MissionBlock, source string) (*config.Mission, error) {
	mission := &config.Mission{Name: m.Name, Source: source}
	names := make(map[string]struct{}, len(m.Nodes))

	for _, n := range m.Nodes {
		if _, dup := names[n.Name]; dup {
			return nil, fmt.Errorf("in mission '%s': node '%s' declared twice", m.Name, n.Name)
		}
		names[n.Name] = struct{}{}

		node := &config.MissionNode{
			Kind:     n.Kind,
			Name:     n.Name,
			Class:    n.Class,
			Parent:   n.Parent,
			ReadOnly: n.ReadOnly,
		}

		data, _, err := evalOptional(ctx, n.Data, "data")
		if err != nil {
			return nil, fmt.Errorf("in mission '%s', node '%s': %w", m.Name, n.Name, err)
		}
		node.Data = data

		switch len(n.Position) {
		case 0:
		case 2:
			node.X, node.Y = n.Position[0], n.Position[1]
		default:
			return nil, fmt.Errorf("in mission '%s', node '%s': position needs exactly two coordinates, got %d", m.Name, n.Name, len(n.Position))
		}
		mission.Nodes = append(mission.Nodes, node)
	}

	for _, l := range m.Links {
		mission.Links = append(mission.Links, &config.Link{From: l.From, To: l.To})
	}

	ctxlog.FromContext(ctx).Debug("Translated mission.", "mission", m.Name, "nodes", len(mission.Nodes), "links", len(mission.Links))
	return mission, nil
}
