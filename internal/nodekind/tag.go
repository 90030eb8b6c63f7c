package nodekind

import (
	"fmt"
	"strings"
)

// Tag identifies a node kind.
type Tag uint8

const (
	Unknown Tag = iota
	EntryPoint
	MainQuest
	SideQuest
	EventQuest
	Knot
	// Objective is a sub-node kind owned by a quest.
	Objective
)

var tagNames = map[Tag]string{
	Unknown:    "unknown",
	EntryPoint: "entry_point",
	MainQuest:  "main_quest",
	SideQuest:  "side_quest",
	EventQuest: "event_quest",
	Knot:       "knot",
	Objective:  "objective",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// ParseTag is the inverse of Tag.String. It also accepts "EntryPoint" style
// spellings.
func ParseTag(s string) (Tag, error) {
	norm := strings.ToLower(strings.ReplaceAll(s, "-", "_"))
	for tag, name := range tagNames {
		if norm == name || norm == strings.ReplaceAll(name, "_", "") {
			return tag, nil
		}
	}
	return Unknown, fmt.Errorf("unknown node kind '%s'", s)
}

// IsQuest reports whether t is one of the quest kinds.
func (t Tag) IsQuest() bool {
	return t == MainQuest || t == SideQuest || t == EventQuest
}
