package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/specialistvlad/missiongraph/internal/assetindex"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
	"github.com/specialistvlad/missiongraph/internal/recordtype"
	"github.com/specialistvlad/missiongraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is an in-memory AssetIndex and KindResolver.
type fakeIndex struct {
	mu       sync.Mutex
	assets   []assetindex.Asset
	packages map[string]bool
	loading  bool
	kinds    map[string]*config.KindDefinition
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{packages: make(map[string]bool), kinds: make(map[string]*config.KindDefinition)}
}

func (f *fakeIndex) add(pkg string, k *config.KindDefinition) assetindex.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := map[string]string{
		assetindex.TagGeneratedClass: k.Name,
		assetindex.TagParentClass:    k.Parent,
	}
	if k.Abstract {
		tags[assetindex.TagAbstract] = "true"
	}
	if k.HideParent {
		tags[assetindex.TagHideParent] = "true"
	}
	if k.IsDeprecated() {
		tags[assetindex.TagDeprecated] = k.Deprecated
	}
	a := assetindex.Asset{ObjectPath: pkg + "." + k.Name, PackageName: pkg, AssetName: k.Name, Tags: tags}
	f.assets = append(f.assets, a)
	f.packages[pkg] = true
	f.kinds[pkg+"."+k.Name] = k
	return a
}

func (f *fakeIndex) KindAssets() []assetindex.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]assetindex.Asset(nil), f.assets...)
}

func (f *fakeIndex) IsLoadingAssets() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *fakeIndex) PackageExists(pkg string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.packages[pkg]
}

func (f *fakeIndex) DerivedKindNames(base string) []string {
	var out []string
	frontier := map[string]bool{base: true}
	for changed := true; changed; {
		changed = false
		for _, a := range f.KindAssets() {
			name, _ := a.Tag(assetindex.TagGeneratedClass)
			parent, _ := a.Tag(assetindex.TagParentClass)
			if frontier[parent] && !frontier[name] {
				frontier[name] = true
				out = append(out, name)
				changed = true
			}
		}
	}
	return out
}

func (f *fakeIndex) ResolveKind(_ context.Context, pkg, className string) (*config.KindDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.packages[pkg] {
		return nil, errors.New("package not found")
	}
	k, ok := f.kinds[pkg+"."+className]
	if !ok {
		return nil, errors.New("kind not found")
	}
	return k, nil
}

func names(ds []Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ClassName
	}
	return out
}

func newMissionRegistry(t *testing.T) (*Registry, *fakeIndex, context.Context) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	r := New("MissionNode", recordtype.NewCatalog(0))
	r.RegisterNative(NativeKind{Name: "MissionNode", Abstract: true})
	r.RegisterNative(NativeKind{Name: "EntryPoint", Parent: "MissionNode", Tag: nodekind.EntryPoint, Record: "EntryData"})
	r.RegisterNative(NativeKind{Name: "Quest", Parent: "MissionNode", Abstract: true, Tag: nodekind.MainQuest, Record: "QuestData"})
	r.RegisterNative(NativeKind{Name: "MainQuest", Parent: "Quest", Tag: nodekind.MainQuest})
	r.RegisterNative(NativeKind{Name: "SideQuest", Parent: "Quest", Tag: nodekind.SideQuest})
	r.RegisterNative(NativeKind{Name: "LegacyQuest", Parent: "Quest", Deprecated: true})
	r.RegisterNative(NativeKind{Name: "DebugQuest", Parent: "Quest", Hidden: true})
	r.RegisterNative(NativeKind{Name: "Unrelated"})

	ix := newFakeIndex()
	r.SetAssetIndex(ix, ix)
	return r, ix, ctx
}

func TestGatherClasses_HideParentScenario(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	r := New("R", nil)
	r.RegisterNative(NativeKind{Name: "R"})
	r.RegisterNative(NativeKind{Name: "A", Parent: "R"})
	r.RegisterNative(NativeKind{Name: "B", Parent: "A", HideParent: true})

	// --- Act ---
	got := r.GatherClasses(ctx, "R")

	// --- Assert ---
	assert.Equal(t, []string{"R", "B"}, names(got))
}

func TestGatherClasses(t *testing.T) {
	r, ix, ctx := newMissionRegistry(t)
	ix.add("quests/boss", &config.KindDefinition{Name: "BossQuest", Parent: "MainQuest"})
	ix.add("quests/hidden", &config.KindDefinition{Name: "Template", Parent: "Quest", Abstract: true})
	ix.add("quests/old", &config.KindDefinition{Name: "OldQuest", Parent: "SideQuest", Deprecated: "use SideQuest"})
	ix.add("quests/orphan", &config.KindDefinition{Name: "Orphan", Parent: "Nowhere"})

	t.Run("natives first then dynamic kinds, filtered", func(t *testing.T) {
		got := r.GatherClasses(ctx, "MissionNode")
		assert.Equal(t, []string{"EntryPoint", "MainQuest", "BossQuest", "SideQuest"}, names(got))
		for _, d := range got {
			assert.False(t, d.Abstract)
			assert.False(t, d.Hidden)
			assert.False(t, d.IsDeprecated())
		}
	})

	t.Run("subtree", func(t *testing.T) {
		assert.Equal(t, []string{"MainQuest", "BossQuest"}, names(r.GatherClasses(ctx, "MainQuest")))
	})

	t.Run("unknown base yields nothing", func(t *testing.T) {
		assert.Empty(t, r.GatherClasses(ctx, "Missing"))
		assert.Empty(t, r.GatherClasses(ctx, "Unrelated"), "kinds outside the root are not in the tree")
	})

	t.Run("forced hidden", func(t *testing.T) {
		r.AddForcedHiddenKind("MainQuest")
		defer r.SetForcedHiddenKinds(nil)
		assert.Equal(t, []string{"EntryPoint", "BossQuest", "SideQuest"}, names(r.GatherClasses(ctx, "MissionNode")))
	})

	t.Run("dynamic gathering disabled", func(t *testing.T) {
		r.SetGatherDynamic(false)
		defer r.SetGatherDynamic(true)
		assert.Equal(t, []string{"EntryPoint", "MainQuest", "SideQuest"}, names(r.GatherClasses(ctx, "MissionNode")))
	})

	t.Run("dynamic kinds inherit tag and record", func(t *testing.T) {
		d, ok := r.Find(ctx, "BossQuest")
		require.True(t, ok)
		assert.Equal(t, nodekind.MainQuest, d.Tag)
		assert.Equal(t, "QuestData", d.Record)
		assert.True(t, r.IsChildOf(ctx, "BossQuest", "Quest"))
		assert.False(t, r.IsChildOf(ctx, "BossQuest", "SideQuest"))
	})
}

func TestBuildTree_Integrity(t *testing.T) {
	r, ix, ctx := newMissionRegistry(t)
	ix.add("quests/boss", &config.KindDefinition{Name: "BossQuest", Parent: "MainQuest"})
	ix.add("quests/boss", &config.KindDefinition{Name: "FinalBoss", Parent: "BossQuest"})

	r.BuildTree(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	tree := r.tree
	require.NotNil(t, tree)

	attached := 0
	tree.walk(tree.root, 0, func(idx NodeIndex, _ int) {
		n := tree.node(idx)
		if idx == tree.root {
			assert.Equal(t, NoNode, n.Parent())
			return
		}
		attached++
		require.NotEqual(t, NoNode, n.Parent())
		assert.Equal(t, n.ParentClassName, tree.node(n.Parent()).Data.ClassName)
		assert.Contains(t, tree.node(n.Parent()).Children(), idx)
	})
	assert.Equal(t, 8, attached)
}

func TestUnknownPackageConvergence(t *testing.T) {
	// --- Arrange ---
	r, ix, ctx := newMissionRegistry(t)
	broadcasts := 0
	unsubscribe := r.SubscribePackageListUpdated(func(context.Context) { broadcasts++ })
	defer unsubscribe()

	missing := Descriptor{AssetName: "BossQuest", Package: "quests/boss", ClassName: "BossQuest"}
	r.AddUnknownClass(missing)
	require.False(t, r.IsClassKnown(missing))
	require.NotContains(t, names(r.GatherClasses(ctx, "MissionNode")), "BossQuest")

	// --- Act ---
	asset := ix.add("quests/boss", &config.KindDefinition{Name: "BossQuest", Parent: "MainQuest"})
	r.OnAssetAdded(ctx, asset)
	r.OnAssetAdded(ctx, asset)

	// --- Assert ---
	assert.True(t, r.IsClassKnown(missing))
	assert.Equal(t, 1, broadcasts)
	assert.Empty(t, r.UnknownPackages())
	assert.Equal(t, []string{"MainQuest", "BossQuest"}, names(r.GatherClasses(ctx, "MainQuest")))

	t.Run("native kinds are always known", func(t *testing.T) {
		k, _ := r.NativeKind("MainQuest")
		assert.True(t, r.IsClassKnown(NativeDescriptor(k)))
	})
}

func TestOnAssetAddedAndRemoved(t *testing.T) {
	r, ix, ctx := newMissionRegistry(t)
	r.BuildTree(ctx)
	built := r.tree

	asset := ix.add("quests/escort", &config.KindDefinition{Name: "EscortQuest", Parent: "SideQuest"})
	r.OnAssetAdded(ctx, asset)

	assert.Same(t, built, r.tree, "adding patches the tree in place")
	assert.Equal(t, []string{"SideQuest", "EscortQuest"}, names(r.GatherClasses(ctx, "SideQuest")))

	r.OnAssetAdded(ctx, asset)
	assert.Equal(t, []string{"SideQuest", "EscortQuest"}, names(r.GatherClasses(ctx, "SideQuest")), "children are unique")

	r.OnAssetRemoved(ctx, asset)
	assert.Equal(t, []string{"SideQuest"}, names(r.GatherClasses(ctx, "SideQuest")))

	t.Run("hide parent applies to incremental adds", func(t *testing.T) {
		hider := ix.add("quests/hider", &config.KindDefinition{Name: "Hider", Parent: "SideQuest", HideParent: true})
		r.OnAssetAdded(ctx, hider)
		assert.Equal(t, []string{"Hider"}, names(r.GatherClasses(ctx, "SideQuest")))
	})

	t.Run("package missing on disk is tracked as unknown", func(t *testing.T) {
		ghost := assetindex.Asset{
			PackageName: "quests/ghost",
			AssetName:   "Ghost",
			Tags:        map[string]string{assetindex.TagGeneratedClass: "Ghost", assetindex.TagParentClass: "MainQuest"},
		}
		r.OnAssetAdded(ctx, ghost)
		assert.Equal(t, []string{"quests/ghost"}, r.UnknownPackages())
		assert.NotContains(t, names(r.GatherClasses(ctx, "MainQuest")), "Ghost")
	})

	t.Run("invalidation rebuilds", func(t *testing.T) {
		r.OnFilesLoaded(ctx)
		assert.Nil(t, r.tree)
		assert.NotEmpty(t, r.GatherClasses(ctx, "MissionNode"))
		assert.NotSame(t, built, r.tree)
	})
}

func TestObservedKindCount(t *testing.T) {
	r, ix, ctx := newMissionRegistry(t)
	r.AddObservedKind("MainQuest")
	assert.Equal(t, 0, r.ObservedKindCount("MainQuest"))

	ix.loading = true
	a := ix.add("quests/boss", &config.KindDefinition{Name: "BossQuest", Parent: "MainQuest"})
	r.OnAssetAdded(ctx, a)
	assert.Equal(t, 0, r.ObservedKindCount("MainQuest"), "rescan is deferred while the index loads")

	ix.loading = false
	b := ix.add("quests/boss", &config.KindDefinition{Name: "FinalBoss", Parent: "BossQuest"})
	r.OnAssetAdded(ctx, b)
	assert.Equal(t, 2, r.ObservedKindCount("MainQuest"))
	assert.Equal(t, 0, r.ObservedKindCount("SideQuest"), "unobserved kinds report zero")
}

func TestResolveClass(t *testing.T) {
	r, ix, ctx := newMissionRegistry(t)
	ix.add("quests/boss", &config.KindDefinition{Name: "BossQuest", Parent: "MainQuest", DisplayName: "Boss", DeprecatedFlag: true})

	t.Run("resolves through the index", func(t *testing.T) {
		d, ok := r.Find(ctx, "BossQuest")
		require.True(t, ok)
		require.False(t, d.IsResolved())

		resolved, ok := r.ResolveClass(ctx, d)
		require.True(t, ok)
		assert.NotNil(t, resolved.Definition)
		assert.Equal(t, "Boss", resolved.Title())
		assert.Equal(t, nodekind.MainQuest, resolved.Tag)
		assert.True(t, resolved.Equal(d))
		assert.Equal(t, "DEPRECATED: Please remove it!", DeprecationMessage(resolved))
	})

	t.Run("failure is tracked, not returned", func(t *testing.T) {
		missing := Descriptor{AssetName: "Gone", Package: "quests/gone", ClassName: "Gone"}
		_, ok := r.ResolveClass(ctx, missing)
		assert.False(t, ok)
		assert.False(t, r.IsClassKnown(missing))
	})
}

func TestDescriptor(t *testing.T) {
	a := &NativeKind{Name: "A"}
	b := &NativeKind{Name: "A"}
	assert.True(t, NativeDescriptor(a).Equal(NativeDescriptor(a)))
	assert.False(t, NativeDescriptor(a).Equal(NativeDescriptor(b)), "natives compare by identity")

	x := Descriptor{AssetName: "X", Package: "p", ClassName: "X"}
	y := Descriptor{AssetName: "X", Package: "q", ClassName: "X"}
	assert.True(t, x.Equal(x))
	assert.False(t, x.Equal(y))
	assert.Equal(t, "p.X", x.String())

	assert.Equal(t, "", DeprecationMessage(x))
	assert.Equal(t, "DEPRECATED: use Y", DeprecationMessage(Descriptor{DeprecatedMessage: "use Y"}))
}

func TestRegistry_RegisterAndValidate(t *testing.T) {
	ctx, _ := testutil.Context(t)

	t.Run("duplicate natives panic", func(t *testing.T) {
		r := New("Root", nil)
		r.RegisterNative(NativeKind{Name: "Root"})
		assert.Panics(t, func() { r.RegisterNative(NativeKind{Name: "Root"}) })
	})

	t.Run("valid registry", func(t *testing.T) {
		r := New("Root", recordtype.NewCatalog(0))
		r.RegisterNative(NativeKind{Name: "Root"})
		r.RegisterRecord("Data", struct {
			Gold int `cty:"gold"`
		}{}, config.PolicyContinue)
		r.RegisterNative(NativeKind{Name: "Child", Parent: "Root", Record: "Data"})
		assert.NoError(t, r.Validate(ctx))
	})

	t.Run("problems are aggregated", func(t *testing.T) {
		r := New("Root", recordtype.NewCatalog(0))
		r.RegisterNative(NativeKind{Name: "Orphan"})
		r.RegisterNative(NativeKind{Name: "Lost", Parent: "Ghost"})
		r.RegisterNative(NativeKind{Name: "Child", Parent: "Root", Record: "Missing"})

		err := r.Validate(ctx)
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, "registry validation failed")
		assert.Contains(t, msg, "native kind 'Orphan': no parent kind")
		assert.Contains(t, msg, "parent 'Ghost' is not registered")
		assert.Contains(t, msg, "record 'Missing' is not registered")
	})
}

type testModule struct{ kinds []NativeKind }

func (m testModule) Register(r *Registry) {
	for _, k := range m.kinds {
		r.RegisterNative(k)
	}
}

func TestRegistry_Load(t *testing.T) {
	ctx, _ := testutil.Context(t)
	r := New("Root", nil)
	r.Load(ctx, testModule{kinds: []NativeKind{{Name: "Root"}, {Name: "Leaf", Parent: "Root"}}})

	assert.Len(t, r.Natives(), 2)
	assert.Equal(t, []string{"Root", "Leaf"}, names(r.GatherClasses(ctx, "Root")))

	entries := r.Walk(ctx, "Root")
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[1].Depth)
	assert.True(t, entries[1].Visible)
}
