package mission

import (
	"testing"

	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/pins"
	"github.com/specialistvlad/missiongraph/internal/recordtype"
	"github.com/specialistvlad/missiongraph/internal/registry"
	"github.com/specialistvlad/missiongraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx, _ := testutil.Context(t)
	reg := registry.New(RootKind, recordtype.NewCatalog(0))
	reg.Load(ctx, &Module{})
	require.NoError(t, reg.Validate(ctx))
	return reg
}

func TestModule_Register(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := newRegistry(t)

	var names []string
	for _, d := range reg.GatherClasses(ctx, RootKind) {
		names = append(names, d.ClassName)
	}
	assert.ElementsMatch(t, []string{"EntryPoint", "MainQuest", "SideQuest", "EventQuest", "Objective"}, names)

	assert.True(t, reg.IsChildOf(ctx, "EventQuest", "Quest"))
	old, ok := reg.Find(ctx, "TimedQuest")
	require.True(t, ok)
	assert.Equal(t, "DEPRECATED: Use a MainQuest with a timed objective.", registry.DeprecationMessage(old))

	records := reg.Records()
	assert.Equal(t, config.PolicySkipPast, records.Policy("Presentation"))
	assert.Equal(t, config.PolicyStopDepth, records.Policy("Vector"))
	assert.Equal(t, config.PolicyContinue, records.Policy("Reward"))

	t.Run("registering twice panics", func(t *testing.T) {
		assert.Panics(t, func() { (&Module{}).Register(reg) })
	})
}

func TestModule_QuestPins(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	reg := newRegistry(t)
	synth := pins.New(reg.Records(), 0)

	data, err := reg.Records().ToCty(QuestData{
		Presentation: Presentation{Title: "Hunt", Description: "Track the beast."},
		Location:     Vector{X: 1, Y: 2.5},
		Reward:       Reward{Gold: 250},
	})
	require.NoError(t, err)

	g := graph.New()
	n := g.AddNode(graph.Node{Name: "hunt", Record: "QuestData", Data: data})

	// --- Act ---
	realized, err := synth.AllocateRecordPins(ctx, g, n.ID)

	// --- Assert ---
	require.NoError(t, err)
	var paths []string
	for _, r := range realized {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{
		"title", "description", "tint",
		"location",
		"reward", "reward.experience", "reward.gold", "reward.items", "reward.unlocks",
		"bRepeatable", "requirements", "metadata",
	}, paths)

	pin := func(name string) *graph.Pin {
		p, ok := g.FindPinByName(n.ID, name)
		require.True(t, ok, name)
		return p
	}
	assert.Equal(t, "New Mission", pin("title").DefaultValue, "explicit default wins over the sample")
	assert.Equal(t, "Track the beast.", pin("description").DefaultValue)
	assert.Equal(t, "Shown in the quest log.", pin("description").Tooltip)
	assert.True(t, pin("tint").Advanced)
	assert.Equal(t, "1,2.5,0", pin("location").DefaultValue)
	assert.Equal(t, "250", pin("reward.gold").DefaultValue)
	assert.Equal(t, "Repeatable", pin("bRepeatable").FriendlyName)
	assert.True(t, pin("metadata").NotConnectable)
	_, hidden := g.FindPinByName(n.ID, "editor_note")
	assert.False(t, hidden)
}
