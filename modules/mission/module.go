// Package mission contributes the compiled-in node kinds and record types of
// the mission graph.
package mission

import (
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/registry"
)

// RootKind is the base of every mission node kind.
const RootKind = "MissionNode"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the native records first, since kinds refer to them.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRecord("Vector", Vector{}, config.PolicyStopDepth)
	r.RegisterRecord("LinearColor", LinearColor{}, config.PolicyStopDepth)
	r.RegisterRecord("GameplayTag", GameplayTag{}, config.PolicyStopDepth)
	r.RegisterRecord("Reward", Reward{}, config.PolicyContinue)
	r.RegisterRecord("Presentation", Presentation{}, config.PolicySkipPast)
	r.RegisterRecord("EntryData", EntryData{}, config.PolicyContinue)
	r.RegisterRecord("QuestData", QuestData{}, config.PolicyContinue)
	r.RegisterRecord("ObjectiveData", ObjectiveData{}, config.PolicyContinue)

	r.RegisterNative(registry.NativeKind{
		Name:     RootKind,
		Abstract: true,
	})
	r.RegisterNative(registry.NativeKind{
		Name:        "EntryPoint",
		Parent:      RootKind,
		Category:    "Flow",
		DisplayName: "Entry Point",
		Tooltip:     "Where the mission starts.",
		Tag:         nodekind.EntryPoint,
		Record:      "EntryData",
	})
	r.RegisterNative(registry.NativeKind{
		Name:     "Quest",
		Parent:   RootKind,
		Abstract: true,
		Tag:      nodekind.MainQuest,
		Record:   "QuestData",
	})
	r.RegisterNative(registry.NativeKind{
		Name:        "MainQuest",
		Parent:      "Quest",
		Category:    "Quests",
		DisplayName: "Main Mission",
		Tag:         nodekind.MainQuest,
	})
	r.RegisterNative(registry.NativeKind{
		Name:        "SideQuest",
		Parent:      "Quest",
		Category:    "Quests",
		DisplayName: "Side Mission",
		Tag:         nodekind.SideQuest,
	})
	r.RegisterNative(registry.NativeKind{
		Name:        "EventQuest",
		Parent:      "Quest",
		Category:    "Quests",
		DisplayName: "Event Mission",
		Tooltip:     "Triggered by a world event rather than by the flow.",
		Tag:         nodekind.EventQuest,
	})
	r.RegisterNative(registry.NativeKind{
		Name:        "Objective",
		Parent:      RootKind,
		Category:    "Objectives",
		DisplayName: "Objective",
		Tag:         nodekind.Objective,
		Record:      "ObjectiveData",
	})
	r.RegisterNative(registry.NativeKind{
		Name:               "TimedQuest",
		Parent:             "Quest",
		Category:           "Quests",
		Tag:                nodekind.MainQuest,
		Deprecated:         true,
		DeprecationMessage: "Use a MainQuest with a timed objective.",
	})
}
