package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/specialistvlad/missiongraph/internal/app"
	"gopkg.in/yaml.v3"
)

type format string

const (
	formatText format = "text"
	formatJSON format = "json"
	formatYAML format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format '%s': must be 'text', 'json' or 'yaml'", s)
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	kindColor   = color.New(color.FgGreen)
	hiddenColor = color.New(color.Faint)
	detailColor = color.New(color.FgWhite)
	warnColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
)

func encode(w io.Writer, f format, v any) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("format %s cannot be encoded", f)
}

// renderPaletteTree prints one kind per line, indented by depth.
func renderPaletteTree(w io.Writer, entries []app.PaletteEntry) error {
	if len(entries) == 0 {
		_, err := warnColor.Fprintln(w, "No placeable kinds.")
		return err
	}
	for _, e := range entries {
		name := kindColor
		if !e.Visible {
			name = hiddenColor
		}
		fmt.Fprint(w, strings.Repeat("  ", e.Depth))
		name.Fprint(w, e.Name)

		var details []string
		if e.Title != e.Name {
			details = append(details, fmt.Sprintf("%q", e.Title))
		}
		if e.Category != "" {
			details = append(details, "["+e.Category+"]")
		}
		if e.Package != "" {
			details = append(details, "from "+e.Package)
		}
		if e.Abstract {
			details = append(details, "abstract")
		}
		if len(details) > 0 {
			detailColor.Fprint(w, " "+strings.Join(details, " "))
		}
		if e.Deprecation != "" {
			warnColor.Fprint(w, " "+e.Deprecation)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func renderPins(w io.Writer, kind string, pins []app.PinEntry) error {
	headerColor.Fprintf(w, "%s\n", kind)
	for _, p := range pins {
		arrow := "->"
		if p.Direction == "output" {
			arrow = "<-"
		}
		fmt.Fprintf(w, "  %s ", arrow)
		kindColor.Fprint(w, p.Name)
		detailColor.Fprintf(w, " (%s)", p.Type)
		if p.Default != "" {
			fmt.Fprintf(w, " = %q", p.Default)
		}
		var flags []string
		if p.Advanced {
			flags = append(flags, "advanced")
		}
		if p.NotConnectable {
			flags = append(flags, "read-only")
		}
		if len(flags) > 0 {
			hiddenColor.Fprintf(w, " [%s]", strings.Join(flags, ", "))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func renderReports(w io.Writer, reports []app.MissionReport) error {
	if len(reports) == 0 {
		_, err := warnColor.Fprintln(w, "No missions found.")
		return err
	}
	for _, r := range reports {
		if r.OK() {
			okColor.Fprint(w, "PASS ")
		} else {
			failColor.Fprint(w, "FAIL ")
		}
		fmt.Fprintf(w, "%s (%s)\n", r.Name, r.Source)
		if len(r.Order) > 0 {
			detailColor.Fprintf(w, "  order: %s\n", strings.Join(r.Order, " -> "))
		}
		for _, p := range r.Problems {
			for _, line := range strings.Split(p, "\n") {
				warnColor.Fprintf(w, "  %s\n", line)
			}
		}
	}
	return nil
}
