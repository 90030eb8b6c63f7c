package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Kinds    []*KindBlock    `hcl:"kind,block"`
	Records  []*RecordBlock  `hcl:"record,block"`
	Missions []*MissionBlock `hcl:"mission,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// --- Kind Asset Schemas ---

// KindBlock declares a dynamic node kind.
type KindBlock struct {
	Name        string `hcl:"name,label"`
	Parent      string `hcl:"parent"`
	Category    string `hcl:"category,optional"`
	DisplayName string `hcl:"display_name,optional"`
	Tooltip     string `hcl:"tooltip,optional"`
	Abstract    bool   `hcl:"abstract,optional"`
	Hidden      bool   `hcl:"hidden,optional"`
	HideParent  bool   `hcl:"hide_parent,optional"`
	// Deprecated is either `true` or a message string.
	Deprecated hcl.Expression `hcl:"deprecated,optional"`
	Record     string         `hcl:"record,optional"`
}

// RecordBlock declares a record type with ordered fields.
type RecordBlock struct {
	Name   string        `hcl:"name,label"`
	Policy string        `hcl:"policy,optional"`
	Fields []*FieldBlock `hcl:"field,block"`
}

// FieldBlock declares one record field.
type FieldBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	DisplayName string         `hcl:"display_name,optional"`
	Tooltip     string         `hcl:"tooltip,optional"`
	Advanced    bool           `hcl:"advanced,optional"`
	ShowPin     *bool          `hcl:"show_pin,optional"`
	Settable    *bool          `hcl:"settable,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// --- Mission Document Schemas ---

// MissionBlock is a mission graph document.
type MissionBlock struct {
	Name  string       `hcl:"name,label"`
	Nodes []*NodeBlock `hcl:"node,block"`
	Links []*LinkBlock `hcl:"link,block"`
}

// NodeBlock places a node in a mission graph.
type NodeBlock struct {
	Kind     string         `hcl:"kind,label"`
	Name     string         `hcl:"name,label"`
	Class    string         `hcl:"class,optional"`
	Parent   string         `hcl:"parent,optional"`
	ReadOnly bool           `hcl:"read_only,optional"`
	Data     hcl.Expression `hcl:"data,optional"`
	Position []float64      `hcl:"position,optional"`
}

// LinkBlock connects an output pin to an input pin.
type LinkBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
