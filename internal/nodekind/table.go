package nodekind

import (
	"fmt"
	"sync"

	"github.com/specialistvlad/missiongraph/internal/pintype"
)

// Knot dimensions used when a reroute knot is dropped on a link.
const (
	KnotWidth  = 42
	KnotHeight = 24
)

// Names of the pins created by the default builders.
const (
	PinIn      = "In"
	PinOut     = "Out"
	PinMission = "Mission"
	PinKnotIn  = "InputPin"
	PinKnotOut = "OutputPin"
)

// PinBuilder receives the default pins of a node.
type PinBuilder interface {
	AddPin(dir pintype.Direction, t pintype.PinType, name string)
}

// Capabilities is the behaviour attached to a tag.
type Capabilities struct {
	DisplayName string
	BodyColor   Color
	PathColor   Color
	// MissionRow nodes get a mission-row input pin naming their record type.
	MissionRow  bool
	SubNodeOnly bool
	// Duplicable is false for kinds that must not be pasted.
	Duplicable bool
	// BuildPins creates the default pins. record is the node's record type.
	BuildPins func(b PinBuilder, record string)
}

// Table maps tags to capabilities. It is safe for concurrent use.
type Table struct {
	mu   sync.RWMutex
	caps map[Tag]Capabilities
}

// NewTable returns a table pre-populated with the built-in kinds.
func NewTable() *Table {
	t := &Table{caps: make(map[Tag]Capabilities)}
	t.Register(EntryPoint, Capabilities{
		DisplayName: "Entry Point",
		BodyColor:   BodyDefault,
		PathColor:   PinDefault,
		MissionRow:  true,
		Duplicable:  true,
		BuildPins:   entryPins,
	})
	t.Register(MainQuest, questCapabilities("Main Mission", PathMainQuest))
	t.Register(SideQuest, questCapabilities("Side Mission", PathSideQuest))
	t.Register(EventQuest, questCapabilities("Event Mission", PathEventQuest))
	t.Register(Knot, Capabilities{
		DisplayName: "Reroute Node",
		BodyColor:   BodyDefault,
		PathColor:   PinDefault,
		Duplicable:  true,
		BuildPins:   knotPins,
	})
	t.Register(Objective, Capabilities{
		DisplayName: "Objective",
		BodyColor:   BodyDefault,
		PathColor:   PinDefault,
		SubNodeOnly: true,
		Duplicable:  true,
		BuildPins:   func(PinBuilder, string) {},
	})
	return t
}

// Register sets the capabilities of tag, replacing any earlier entry.
func (t *Table) Register(tag Tag, c Capabilities) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.caps[tag] = c
}

// Lookup returns the capabilities of tag.
func (t *Table) Lookup(tag Tag) (Capabilities, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.caps[tag]
	return c, ok
}

// MustLookup is Lookup for tags that are known to be registered.
func (t *Table) MustLookup(tag Tag) Capabilities {
	c, ok := t.Lookup(tag)
	if !ok {
		panic(fmt.Sprintf("nodekind: no capabilities registered for %s", tag))
	}
	return c
}

func questCapabilities(title string, path Color) Capabilities {
	return Capabilities{
		DisplayName: title,
		BodyColor:   BodyDefault,
		PathColor:   path,
		MissionRow:  true,
		Duplicable:  true,
		BuildPins:   questPins,
	}
}

var logicalPath = pintype.PinType{Category: pintype.MultipleNodes}

func missionRowPin(b PinBuilder, record string) {
	b.AddPin(pintype.Input, pintype.PinType{Category: pintype.MissionRow, SubCategoryObject: record}, PinMission)
}

func entryPins(b PinBuilder, record string) {
	missionRowPin(b, record)
	b.AddPin(pintype.Output, logicalPath, PinOut)
}

func questPins(b PinBuilder, record string) {
	b.AddPin(pintype.Input, logicalPath, PinIn)
	missionRowPin(b, record)
	b.AddPin(pintype.Output, logicalPath, PinOut)
}

func knotPins(b PinBuilder, _ string) {
	wildcard := pintype.PinType{Category: pintype.Wildcard}
	b.AddPin(pintype.Input, wildcard, PinKnotIn)
	b.AddPin(pintype.Output, wildcard, PinKnotOut)
}
