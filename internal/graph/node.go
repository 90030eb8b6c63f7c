package graph

import (
	"errors"

	"github.com/google/uuid"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/specialistvlad/missiongraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrReadOnly    = errors.New("node is read-only")
	ErrInvalidLink = errors.New("invalid link")
)

// NodeID addresses a node in its graph.
type NodeID int

// PinID addresses a pin in its graph.
type PinID int

const (
	NoNode NodeID = -1
	NoPin  PinID  = -1
)

// Node is one graph node.
type Node struct {
	ID    NodeID
	GUID  uuid.UUID
	Name  string
	Tag   nodekind.Tag
	Class registry.Descriptor

	Pins     []PinID
	Parent   NodeID
	SubNodes []NodeID

	ReadOnly bool
	// SubNodeOnly marks nodes that are sub-nodes even while unparented.
	SubNodeOnly bool

	// Record is the record type of Data.
	Record string
	Data   cty.Value

	ErrorMessage string
	X, Y         float64

	removed bool
}

// IsSubNode reports whether n is owned by another node or flagged sub-node-only.
func (n *Node) IsSubNode() bool {
	return n.Parent != NoNode || n.SubNodeOnly
}

// Pin is one connection socket of a node.
type Pin struct {
	ID        PinID
	Owner     NodeID
	Direction pintype.Direction
	Type      pintype.PinType

	Name         string
	FriendlyName string
	Tooltip      string

	DefaultValue         string
	AutogeneratedDefault string

	Hidden              bool
	NotConnectable      bool
	DefaultValueIgnored bool
	Advanced            bool

	PersistentGUID uuid.UUID
	LinkedTo       []PinID

	removed bool
}

// DisplayName is the friendly name, falling back to the pin name.
func (p *Pin) DisplayName() string {
	if p.FriendlyName != "" {
		return p.FriendlyName
	}
	return p.Name
}

// HasLinks reports whether the pin has at least one link.
func (p *Pin) HasLinks() bool { return len(p.LinkedTo) > 0 }
