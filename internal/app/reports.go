package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/registry"
)

// ErrUnknownKind is returned for kind names the registry does not know.
var ErrUnknownKind = errors.New("unknown kind")

// PaletteEntry is one kind of the class tree as shown to users.
type PaletteEntry struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title" yaml:"title"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Package     string `json:"package,omitempty" yaml:"package,omitempty"`
	Depth       int    `json:"depth" yaml:"depth"`
	Visible     bool   `json:"visible" yaml:"visible"`
	Abstract    bool   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Deprecation string `json:"deprecation,omitempty" yaml:"deprecation,omitempty"`
}

// Palette walks the class tree from the configured root kind. With all set,
// kinds hidden from the palette are included and flagged.
func (a *App) Palette(ctx context.Context, all bool) []PaletteEntry {
	var out []PaletteEntry
	for _, e := range a.registry.Walk(ctx, a.config.RootKind) {
		if !all && !e.Visible {
			continue
		}
		d := e.Descriptor
		entry := PaletteEntry{
			Name:        d.Name(),
			Title:       d.Title(),
			Category:    d.Category,
			Depth:       e.Depth,
			Visible:     e.Visible,
			Abstract:    d.Abstract,
			Deprecation: registry.DeprecationMessage(d),
		}
		if d.IsDynamic() {
			entry.Package = d.Package
		}
		out = append(out, entry)
	}
	return out
}

// PinEntry describes one pin of a placed node.
type PinEntry struct {
	Name           string `json:"name" yaml:"name"`
	FriendlyName   string `json:"friendly_name" yaml:"friendly_name"`
	Direction      string `json:"direction" yaml:"direction"`
	Type           string `json:"type" yaml:"type"`
	Default        string `json:"default,omitempty" yaml:"default,omitempty"`
	Tooltip        string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Advanced       bool   `json:"advanced,omitempty" yaml:"advanced,omitempty"`
	NotConnectable bool   `json:"not_connectable,omitempty" yaml:"not_connectable,omitempty"`
}

// Pins places a node of kind in a scratch session and lists the pins it gets.
func (a *App) Pins(ctx context.Context, kind string) ([]PinEntry, error) {
	class, ok := a.registry.Find(ctx, kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	s := a.NewSession()
	defer s.Close()
	n, err := s.PlaceNode(ctx, class, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to place '%s': %w", kind, err)
	}

	var out []PinEntry
	for _, p := range s.Graph().Pins(n.ID) {
		if p.Hidden {
			continue
		}
		out = append(out, PinEntry{
			Name:           p.Name,
			FriendlyName:   p.DisplayName(),
			Direction:      p.Direction.String(),
			Type:           p.Type.String(),
			Default:        p.DefaultValue,
			Tooltip:        p.Tooltip,
			Advanced:       p.Advanced,
			NotConnectable: p.NotConnectable,
		})
	}
	return out, nil
}

// MissionReport is the outcome of loading and validating one mission.
type MissionReport struct {
	Name     string   `json:"name" yaml:"name"`
	Source   string   `json:"source" yaml:"source"`
	Order    []string `json:"order,omitempty" yaml:"order,omitempty"`
	Problems []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// OK reports whether the mission loaded and validated cleanly.
func (r MissionReport) OK() bool { return len(r.Problems) == 0 }

// CheckMissions loads every mission document into its own session and
// validates it. Problems are reported per mission; only I/O and parse
// failures are returned as errors.
func (a *App) CheckMissions(ctx context.Context) ([]MissionReport, error) {
	missions, err := a.LoadMissions(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]MissionReport, 0, len(missions))
	for _, m := range missions {
		reports = append(reports, a.checkMission(ctx, m))
	}
	return reports, nil
}

func (a *App) checkMission(ctx context.Context, m *config.Mission) MissionReport {
	logger := ctxlog.FromContext(ctx)
	report := MissionReport{Name: m.Name, Source: m.Source}

	s := a.NewSession()
	defer s.Close()

	linkErrs, err := s.LoadMission(ctx, m)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
		return report
	}
	for _, le := range linkErrs {
		report.Problems = append(report.Problems, le.Error())
	}
	if err := s.Validate(ctx); err != nil {
		report.Problems = append(report.Problems, err.Error())
	}

	order, err := s.ExecutionOrder(ctx)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
	}
	for _, n := range order {
		report.Order = append(report.Order, n.Name)
	}
	logger.Debug("Mission checked.", "mission", m.Name, "problems", len(report.Problems))
	return report
}
