package config

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a set of loaded
// files.
type Model struct {
	// Kinds keeps declaration order across files.
	Kinds    []*KindDefinition
	Records  map[string]*RecordDefinition
	Missions []*Mission
}

// NewModel returns an empty model with its maps initialized.
func NewModel() *Model {
	return &Model{Records: make(map[string]*RecordDefinition)}
}

// Merge appends other's definitions into m. Later record definitions win.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Kinds = append(m.Kinds, other.Kinds...)
	for name, rec := range other.Records {
		m.Records[name] = rec
	}
	m.Missions = append(m.Missions, other.Missions...)
}

// Kind returns the kind definition with the given name, or nil.
func (m *Model) Kind(name string) *KindDefinition {
	for _, k := range m.Kinds {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// --- Kind Models ---

// KindDefinition describes a dynamic node kind authored as an asset file.
type KindDefinition struct {
	Name        string
	Parent      string
	Category    string
	DisplayName string
	Tooltip     string
	Abstract    bool
	Hidden      bool
	HideParent  bool
	// Deprecated holds the deprecation message. Deprecated kinds with no
	// message use DeprecatedFlag.
	Deprecated     string
	DeprecatedFlag bool
	// Record names the record type whose fields the kind exposes as pins.
	Record string
	// Source is the file the kind was declared in.
	Source string
}

// IsDeprecated reports whether the kind carries deprecation metadata.
func (k *KindDefinition) IsDeprecated() bool {
	return k.DeprecatedFlag || k.Deprecated != ""
}

// --- Record Models ---

// RecursionPolicy decides what the pin synthesizer does when it meets a
// field whose type is itself a record.
type RecursionPolicy uint8

const (
	// PolicyContinue creates a pin for the field and recurses into it.
	PolicyContinue RecursionPolicy = iota
	// PolicySkipPast creates no pin and exposes the nested fields directly.
	PolicySkipPast
	// PolicyStopDepth creates a pin and does not recurse.
	PolicyStopDepth
)

func (p RecursionPolicy) String() string {
	switch p {
	case PolicyContinue:
		return "continue"
	case PolicySkipPast:
		return "skip_past"
	case PolicyStopDepth:
		return "stop_depth"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy converts a policy keyword. An empty string means continue.
func ParsePolicy(s string) (RecursionPolicy, error) {
	switch strings.ToLower(s) {
	case "", "continue":
		return PolicyContinue, nil
	case "skip_past", "skippast":
		return PolicySkipPast, nil
	case "stop_depth", "stopdepthlim":
		return PolicyStopDepth, nil
	default:
		return PolicyContinue, fmt.Errorf("unknown recursion policy %q", s)
	}
}

// RecordDefinition is an ordered list of fields.
type RecordDefinition struct {
	Name   string
	Policy RecursionPolicy
	Fields []*FieldDefinition
	Source string
}

// FieldDefinition is the declaration of a single record field.
type FieldDefinition struct {
	Name        string
	DisplayName string
	Tooltip     string
	Type        TypeRef
	Advanced    bool
	// ShowPin controls whether the field is exposed as a pin at all.
	ShowPin bool
	// Settable is false for fields whose value cannot be set from the graph.
	Settable bool
	// Default is the explicit default metadata, if declared.
	Default *string
}

// TypeRef is a declared field type. Name is either a builtin keyword
// (bool, int, float, string, name, text, ...) or a record type name when
// Record is set.
type TypeRef struct {
	Name      string
	Record    bool
	Container pintype.Container
}

func (t TypeRef) String() string {
	s := t.Name
	if t.Record {
		s = "record(" + s + ")"
	}
	switch t.Container {
	case pintype.Array:
		s = "list(" + s + ")"
	case pintype.Set:
		s = "set(" + s + ")"
	case pintype.Map:
		s = "map(" + s + ")"
	}
	return s
}

// CtyType returns the cty type values of this field are converted to.
// Record references and unknown keywords map to cty.DynamicPseudoType.
func (t TypeRef) CtyType() cty.Type {
	elem := cty.DynamicPseudoType
	if !t.Record {
		switch t.Name {
		case "bool":
			elem = cty.Bool
		case "int", "float", "number":
			elem = cty.Number
		case "string", "name", "text":
			elem = cty.String
		}
	}
	switch t.Container {
	case pintype.Array:
		return cty.List(elem)
	case pintype.Set:
		return cty.Set(elem)
	case pintype.Map:
		return cty.Map(elem)
	}
	return elem
}

// --- Mission Models ---

// Mission is a mission graph document.
type Mission struct {
	Name   string
	Nodes  []*MissionNode
	Links  []*Link
	Source string
}

// MissionNode is a node placed in a mission document.
type MissionNode struct {
	// Kind is the node kind keyword (entry, main_quest, side_quest,
	// event_quest, knot).
	Kind string
	Name string
	// Class names the registry kind backing the node.
	Class    string
	Parent   string
	ReadOnly bool
	Data     cty.Value
	X, Y     float64
}

// Link connects two pins given as "node.pin" addresses.
type Link struct {
	From string
	To   string
}
