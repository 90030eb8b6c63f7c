// Package pintype defines the vocabulary shared by every component that
// creates, links or inspects pins: directions, categories and the PinType
// triple.
package pintype

import "fmt"

// Direction is the data-flow direction of a pin.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Input {
		return Output
	}
	return Input
}

// Category is the primary type tag of a pin.
type Category string

const (
	// Structural categories used by mission flow pins.
	MissionRow      Category = "mission_row"
	MultipleNodes   Category = "multiple_nodes"
	SingleComposite Category = "single_composite"
	SingleTask      Category = "single_task"
	SingleNode      Category = "single_node"
	Wildcard        Category = "wildcard"

	// Data categories produced by the pin synthesizer.
	Bool   Category = "bool"
	Int    Category = "int"
	Float  Category = "float"
	String Category = "string"
	Name   Category = "name"
	Text   Category = "text"
	Struct Category = "struct"
)

// IsLogicalPath reports whether c carries control flow between nodes.
// Logical-path pins may only be linked to pins of the identical category.
func (c Category) IsLogicalPath() bool {
	return c == MultipleNodes
}

// IsSingleLink reports whether an input of category c accepts at most one link.
func (c Category) IsSingleLink() bool {
	switch c {
	case SingleComposite, SingleTask, SingleNode:
		return true
	}
	return false
}

// IsStructural reports whether c is one of the mission flow categories.
func (c Category) IsStructural() bool {
	switch c {
	case MissionRow, MultipleNodes, SingleComposite, SingleTask, SingleNode, Wildcard:
		return true
	}
	return false
}

// Container describes how a pin wraps its element type.
type Container uint8

const (
	None Container = iota
	Array
	Set
	Map
)

func (c Container) String() string {
	switch c {
	case None:
		return "none"
	case Array:
		return "array"
	case Set:
		return "set"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("container(%d)", uint8(c))
	}
}

// PinType is the full type of a pin.
type PinType struct {
	Category Category
	// SubCategoryObject names the record type for Struct and MissionRow pins.
	SubCategoryObject string
	Container         Container
}

// IsContainer reports whether the pin wraps its element in a container.
func (t PinType) IsContainer() bool {
	return t.Container != None
}

func (t PinType) String() string {
	s := string(t.Category)
	if t.SubCategoryObject != "" {
		s += "(" + t.SubCategoryObject + ")"
	}
	if t.Container != None {
		s = t.Container.String() + "<" + s + ">"
	}
	return s
}
