package schema

import (
	"errors"
	"testing"

	"github.com/specialistvlad/missiongraph/internal/graph"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/pintype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGraph struct {
	t *testing.T
	g *graph.Graph
	s *Schema
}

func newTestGraph(t *testing.T) *testGraph {
	g := graph.New()
	return &testGraph{t: t, g: g, s: New(g, nodekind.NewTable())}
}

// quest adds a node with In, Mission and Out pins.
func (tg *testGraph) quest(name string) *graph.Node {
	tg.t.Helper()
	n := tg.g.AddNode(graph.Node{Name: name, Tag: nodekind.MainQuest, Record: "QuestData"})
	require.NoError(tg.t, tg.g.BuildDefaultPins(n.ID, nodekind.NewTable().MustLookup(nodekind.MainQuest)))
	return n
}

// single adds a node with a single-link input "Parent" and output "Child".
func (tg *testGraph) single(name string) *graph.Node {
	tg.t.Helper()
	n := tg.g.AddNode(graph.Node{Name: name})
	_, err := tg.g.CreatePin(n.ID, pintype.Input, pintype.PinType{Category: pintype.SingleNode}, "Parent")
	require.NoError(tg.t, err)
	_, err = tg.g.CreatePin(n.ID, pintype.Output, pintype.PinType{Category: pintype.SingleNode}, "Child")
	require.NoError(tg.t, err)
	return n
}

// multi adds a node with a plain data input "Data" and output "Result".
func (tg *testGraph) multi(name string) *graph.Node {
	tg.t.Helper()
	n := tg.g.AddNode(graph.Node{Name: name})
	_, err := tg.g.CreatePin(n.ID, pintype.Input, pintype.PinType{Category: pintype.String}, "Data")
	require.NoError(tg.t, err)
	_, err = tg.g.CreatePin(n.ID, pintype.Output, pintype.PinType{Category: pintype.Wildcard}, "Result")
	require.NoError(tg.t, err)
	return n
}

func (tg *testGraph) pin(n *graph.Node, name string) graph.PinID {
	tg.t.Helper()
	p, ok := tg.g.FindPinByName(n.ID, name)
	require.True(tg.t, ok, "pin %s on %s", name, n.Name)
	return p.ID
}

func (tg *testGraph) link(from *graph.Node, out string, to *graph.Node, in string) {
	tg.t.Helper()
	require.NoError(tg.t, tg.g.MakeLink(tg.pin(from, out), tg.pin(to, in)))
}

func TestCanCreateConnection_Disallow(t *testing.T) {
	tg := newTestGraph(t)
	a, b, c, d := tg.quest("a"), tg.quest("b"), tg.quest("c"), tg.quest("d")
	tg.link(a, "Out", b, "In")
	tg.link(b, "Out", c, "In")

	testCases := []struct {
		name string
		a, b graph.PinID
		want string
	}{
		{"missing pin", tg.pin(a, "Out"), graph.NoPin, MsgPinMissing},
		{"same node", tg.pin(a, "Out"), tg.pin(a, "In"), MsgSameNode},
		{"input to input", tg.pin(a, "In"), tg.pin(d, "In"), MsgInputToInput},
		{"output to output", tg.pin(a, "Out"), tg.pin(d, "Out"), MsgOutputToOutput},
		{"direct cycle", tg.pin(b, "Out"), tg.pin(a, "In"), MsgCycle},
		{"transitive cycle", tg.pin(c, "Out"), tg.pin(a, "In"), MsgCycle},
		{"logical path to data", tg.pin(d, "Out"), tg.pin(a, "Mission"), MsgLogicalPath},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			forward := tg.s.CanCreateConnection(tc.a, tc.b)
			backward := tg.s.CanCreateConnection(tc.b, tc.a)

			// --- Assert ---
			assert.Equal(t, Disallow, forward.Kind)
			assert.Equal(t, tc.want, forward.Message)
			assert.False(t, forward.Allowed())
			assert.Equal(t, forward, backward, "the verdict does not depend on argument order")
		})
	}
}

func TestCanCreateConnection_Allow(t *testing.T) {
	tg := newTestGraph(t)
	a, b, c, d := tg.quest("a"), tg.quest("b"), tg.quest("c"), tg.quest("d")
	tg.link(a, "Out", b, "In")
	tg.link(a, "Out", c, "In")
	tg.link(b, "Out", d, "In")

	t.Run("diamonds are not cycles", func(t *testing.T) {
		resp := tg.s.CanCreateConnection(tg.pin(c, "Out"), tg.pin(d, "In"))
		assert.Equal(t, Response{Kind: Make, Message: MsgConnect}, resp)
		assert.Equal(t, resp, tg.s.CanCreateConnection(tg.pin(d, "In"), tg.pin(c, "Out")))
	})

	t.Run("multi-link inputs accept more links", func(t *testing.T) {
		assert.Equal(t, Make, tg.s.CanCreateConnection(tg.pin(c, "Out"), tg.pin(b, "In")).Kind)
	})

	t.Run("non-logical categories may differ", func(t *testing.T) {
		m := tg.multi("m")
		assert.Equal(t, Make, tg.s.CanCreateConnection(tg.pin(m, "Result"), tg.pin(a, "Mission")).Kind)
	})
}

func TestCanCreateConnection_SingleLink(t *testing.T) {
	tg := newTestGraph(t)
	parent, other, child, free := tg.single("parent"), tg.single("other"), tg.single("child"), tg.single("free")
	tg.link(parent, "Child", child, "Parent")

	t.Run("linked single-link input is replaced", func(t *testing.T) {
		in, out := tg.pin(child, "Parent"), tg.pin(other, "Child")
		assert.Equal(t, Response{Kind: BreakOthersB, Message: MsgReplace}, tg.s.CanCreateConnection(out, in))
		assert.Equal(t, BreakOthersA, tg.s.CanCreateConnection(in, out).Kind)
	})

	t.Run("linked single-link output is replaced", func(t *testing.T) {
		out, in := tg.pin(parent, "Child"), tg.pin(free, "Parent")
		assert.Equal(t, BreakOthersA, tg.s.CanCreateConnection(out, in).Kind)
		assert.Equal(t, BreakOthersB, tg.s.CanCreateConnection(in, out).Kind)
	})

	t.Run("both ends linked", func(t *testing.T) {
		second := tg.single("second")
		tg.link(other, "Child", second, "Parent")
		assert.Equal(t, BreakOthersAB, tg.s.CanCreateConnection(tg.pin(other, "Child"), tg.pin(child, "Parent")).Kind)
	})

	t.Run("single-link output into a linked multi input", func(t *testing.T) {
		m, n := tg.multi("m"), tg.multi("n")
		require.NoError(t, tg.g.MakeLink(tg.pin(n, "Result"), tg.pin(m, "Data")))
		assert.Equal(t, BreakOthersB, tg.s.CanCreateConnection(tg.pin(free, "Child"), tg.pin(m, "Data")).Kind)
	})
}

func TestTryCreateConnection(t *testing.T) {
	tg := newTestGraph(t)
	parent, other, child := tg.single("parent"), tg.single("other"), tg.single("child")
	tg.link(parent, "Child", child, "Parent")
	before := tg.s.CurrentVisualizationCacheID()

	resp, err := tg.s.TryCreateConnection(tg.pin(other, "Child"), tg.pin(child, "Parent"))
	require.NoError(t, err)
	assert.Equal(t, BreakOthersB, resp.Kind)
	assert.False(t, tg.g.IsLinked(tg.pin(parent, "Child"), tg.pin(child, "Parent")), "the old link is replaced")
	assert.True(t, tg.g.IsLinked(tg.pin(other, "Child"), tg.pin(child, "Parent")))
	assert.True(t, tg.s.IsCacheVisualizationOutOfDate(before))

	t.Run("disallowed links change nothing", func(t *testing.T) {
		resp, err := tg.s.TryCreateConnection(tg.pin(child, "Child"), tg.pin(other, "Parent"))
		require.NoError(t, err)
		assert.Equal(t, Disallow, resp.Kind)
		assert.Equal(t, MsgCycle, resp.Message)
		p, _ := tg.g.Pin(tg.pin(other, "Parent"))
		assert.False(t, p.HasLinks())
	})
}

func TestMergeNodes(t *testing.T) {
	tg := newTestGraph(t)
	root := tg.quest("root")
	first := tg.g.AddNode(graph.Node{Name: "first"})
	second := tg.g.AddNode(graph.Node{Name: "second"})
	third := tg.g.AddNode(graph.Node{Name: "third"})
	loose := tg.g.AddNode(graph.Node{Name: "loose"})
	for _, n := range []*graph.Node{first, second, third} {
		require.NoError(t, tg.g.AddSubNode(root.ID, n.ID))
	}

	assert.Equal(t, MsgSameNodeMerge, tg.s.CanMergeNodes(first.ID, first.ID).Message)
	assert.False(t, tg.s.CanMergeNodes(loose.ID, first.ID).Allowed(), "top-level nodes are never promoted")
	assert.False(t, tg.s.CanMergeNodes(first.ID, root.ID).Allowed())
	assert.True(t, tg.s.CanMergeNodes(first.ID, third.ID).Allowed())

	resp, err := tg.s.MergeNodes(first.ID, third.ID)
	require.NoError(t, err)
	assert.Equal(t, Make, resp.Kind)
	assert.Equal(t, []graph.NodeID{second.ID, third.ID, first.ID}, root.SubNodes)

	resp, err = tg.s.MergeNodes(loose.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, Disallow, resp.Kind)
	assert.Equal(t, graph.NoNode, loose.Parent)

	t.Run("a node never merges into its own sub-tree", func(t *testing.T) {
		// --- Arrange ---
		child := tg.g.AddNode(graph.Node{Name: "child"})
		grandchild := tg.g.AddNode(graph.Node{Name: "grandchild"})
		require.NoError(t, tg.g.AddSubNode(second.ID, child.ID))
		require.NoError(t, tg.g.AddSubNode(child.ID, grandchild.ID))

		// --- Act ---
		resp, err := tg.s.MergeNodes(second.ID, child.ID)
		require.NoError(t, err)
		deep := tg.s.CanMergeNodes(second.ID, grandchild.ID)

		// --- Assert ---
		assert.Equal(t, Disallow, resp.Kind)
		assert.Equal(t, MsgMergeIntoSubNode, resp.Message)
		assert.Equal(t, MsgMergeIntoSubNode, deep.Message)
		assert.Equal(t, []graph.NodeID{second.ID, third.ID, first.ID}, root.SubNodes)
		assert.Equal(t, root.ID, second.Parent)
		assert.True(t, second.IsSubNode())
		assert.True(t, tg.s.CanMergeNodes(child.ID, third.ID).Allowed())
	})
}

func TestInsertKnot(t *testing.T) {
	tg := newTestGraph(t)
	a, b := tg.quest("a"), tg.quest("b")
	out, in := tg.pin(a, "Out"), tg.pin(b, "In")

	_, err := tg.s.InsertKnot(out, in, 0, 0)
	assert.True(t, errors.Is(err, ErrNoLink))

	tg.link(a, "Out", b, "In")
	knot, err := tg.s.InsertKnot(in, out, 100, 50)
	require.NoError(t, err)

	assert.Equal(t, nodekind.Knot, knot.Tag)
	assert.Equal(t, 79.0, knot.X)
	assert.Equal(t, 38.0, knot.Y)
	assert.False(t, tg.g.IsLinked(out, in))

	knotIn := tg.pin(knot, nodekind.PinKnotIn)
	knotOut := tg.pin(knot, nodekind.PinKnotOut)
	assert.True(t, tg.g.IsLinked(out, knotIn))
	assert.True(t, tg.g.IsLinked(knotOut, in))

	p, _ := tg.g.Pin(knotOut)
	assert.Equal(t, pintype.MultipleNodes, p.Type.Category, "knot pins take the type of the rerouted link")
	assert.Equal(t, MsgCycle, tg.s.CanCreateConnection(tg.pin(b, "Out"), tg.pin(a, "In")).Message, "cycles are still seen through knots")
}

func TestBreakLinksAndDefaults(t *testing.T) {
	tg := newTestGraph(t)
	a, b, c := tg.quest("a"), tg.quest("b"), tg.quest("c")
	tg.link(a, "Out", b, "In")
	tg.link(a, "Out", c, "In")
	tg.link(b, "Out", c, "In")

	require.NoError(t, tg.s.BreakSinglePinLink(tg.pin(a, "Out"), tg.pin(b, "In")))
	assert.Error(t, tg.s.BreakSinglePinLink(tg.pin(a, "Out"), tg.pin(b, "In")))

	tg.s.BreakPinLinks(tg.pin(a, "Out"))
	assert.False(t, tg.g.IsLinked(tg.pin(a, "Out"), tg.pin(c, "In")))

	tg.s.BreakNodeLinks(c.ID)
	assert.False(t, tg.g.IsLinked(tg.pin(b, "Out"), tg.pin(c, "In")))

	p, _ := tg.g.Pin(tg.pin(a, "Mission"))
	p.DefaultValueIgnored = true
	assert.True(t, tg.s.ShouldHidePinDefaultValue(p.ID))
	assert.False(t, tg.s.ShouldHidePinDefaultValue(tg.pin(a, "In")))
	assert.False(t, tg.s.ShouldHidePinDefaultValue(graph.NoPin))

	id := tg.s.CurrentVisualizationCacheID()
	assert.False(t, tg.s.IsCacheVisualizationOutOfDate(id))
	tg.s.ForceVisualizationCacheClear()
	assert.True(t, tg.s.IsCacheVisualizationOutOfDate(id))
}
