package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/missiongraph/internal/assetindex"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/specialistvlad/missiongraph/internal/recordtype"
)

// Module is implemented by packages that contribute native kinds and records.
type Module interface {
	Register(r *Registry)
}

// AssetIndex is the view of the asset index the registry needs.
type AssetIndex interface {
	KindAssets() []assetindex.Asset
	IsLoadingAssets() bool
	PackageExists(pkg string) bool
	DerivedKindNames(base string) []string
}

// KindResolver loads the definition of a dynamic kind.
type KindResolver interface {
	ResolveKind(ctx context.Context, pkg, className string) (*config.KindDefinition, error)
}

// Registry owns the class tree of one editor session.
type Registry struct {
	mu sync.Mutex

	rootKind string
	records  *recordtype.Catalog

	natives      []*NativeKind
	nativeByName map[string]*NativeKind

	index         AssetIndex
	resolver      KindResolver
	gatherDynamic bool

	// tree is nil until the first query after an invalidation.
	tree *classTree

	unknownPackages []string
	observedCounts  map[string]int
	forcedHidden    map[string]bool

	listeners    map[int]func(ctx context.Context)
	nextListener int
}

// New creates a registry rooted at rootKind. records receives the native
// record types contributed by modules and may be nil.
func New(rootKind string, records *recordtype.Catalog) *Registry {
	return &Registry{
		rootKind:       rootKind,
		records:        records,
		nativeByName:   make(map[string]*NativeKind),
		gatherDynamic:  true,
		observedCounts: make(map[string]int),
		forcedHidden:   make(map[string]bool),
		listeners:      make(map[int]func(ctx context.Context)),
	}
}

// RootKind returns the configured root kind name.
func (r *Registry) RootKind() string { return r.rootKind }

// Records returns the record catalog handed to New.
func (r *Registry) Records() *recordtype.Catalog { return r.records }

// SetAssetIndex connects the source of dynamic kinds. resolver may be nil.
func (r *Registry) SetAssetIndex(index AssetIndex, resolver KindResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = index
	r.resolver = resolver
	r.tree = nil
}

// Listener adapts the registry to asset index notifications.
func (r *Registry) Listener() assetindex.Listener {
	return assetindex.Listener{
		OnAdded:         r.OnAssetAdded,
		OnRemoved:       r.OnAssetRemoved,
		OnPackageLoaded: func(ctx context.Context, _ string) { r.OnPackageLoadedOrUnloaded(ctx) },
		OnFilesLoaded:   r.OnFilesLoaded,
	}
}

// RegisterNative adds a compiled-in kind. Registering a name twice panics.
func (r *Registry) RegisterNative(k NativeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nativeByName[k.Name]; exists {
		panic(fmt.Sprintf("native kind '%s' already registered", k.Name))
	}
	kind := k
	r.natives = append(r.natives, &kind)
	r.nativeByName[k.Name] = &kind
	r.tree = nil
}

// RegisterRecord adds a Go struct as native record type. Errors panic, like
// duplicate kind registration.
func (r *Registry) RegisterRecord(name string, sample any, policy config.RecursionPolicy) {
	if r.records == nil {
		panic(fmt.Sprintf("native record '%s' registered on a registry without a record catalog", name))
	}
	if err := r.records.DefineGo(name, sample, policy); err != nil {
		panic(err.Error())
	}
}

// NativeKind returns the registered native kind name.
func (r *Registry) NativeKind(name string) (*NativeKind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.nativeByName[name]
	return k, ok
}

// Natives returns the native kinds in registration order.
func (r *Registry) Natives() []*NativeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*NativeKind, len(r.natives))
	copy(out, r.natives)
	return out
}

// SetGatherDynamic toggles whether dynamic kinds are part of the tree.
func (r *Registry) SetGatherDynamic(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gatherDynamic != v {
		r.gatherDynamic = v
		r.tree = nil
	}
}

// AddForcedHiddenKind hides name regardless of its metadata.
func (r *Registry) AddForcedHiddenKind(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forcedHidden[name] = true
	r.tree = nil
}

// SetForcedHiddenKinds replaces the forced-hidden set.
func (r *Registry) SetForcedHiddenKinds(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forcedHidden = make(map[string]bool, len(names))
	for _, n := range names {
		r.forcedHidden[n] = true
	}
	r.tree = nil
}

// BuildTree rebuilds the class tree from the native kinds and, when dynamic
// gathering is enabled, the indexed kind assets.
func (r *Registry) BuildTree(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildTreeLocked(ctx)
}

func (r *Registry) buildTreeLocked(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	tree := &classTree{root: NoNode}
	hiddenByChild := make(map[string]bool)
	var pending []NodeIndex

	rootKind, ok := r.nativeByName[r.rootKind]
	if !ok {
		rootKind = &NativeKind{Name: r.rootKind}
	}
	tree.root = tree.add(r.decorate(NativeDescriptor(rootKind)))
	tree.node(tree.root).ParentClassName = ""

	for _, k := range r.natives {
		if k.Name == r.rootKind || !r.descendsFromRoot(k) {
			continue
		}
		d := r.decorate(NativeDescriptor(k))
		if d.HideParent {
			hiddenByChild[d.Parent] = true
		}
		pending = append(pending, tree.add(d))
	}

	dynamic := 0
	if r.gatherDynamic && r.index != nil {
		for _, a := range r.index.KindAssets() {
			d := r.decorate(DynamicDescriptor(a))
			if d.HideParent {
				hiddenByChild[d.Parent] = true
			}
			pending = append(pending, tree.add(d))
			dynamic++
		}
	}

	for i := range tree.nodes {
		if hiddenByChild[tree.nodes[i].Data.ClassName] {
			tree.nodes[i].Data.Hidden = true
		}
	}

	tree.addClassGraphChildren(tree.root, &pending)
	r.tree = tree

	logger.Debug("Class tree built.",
		"root", r.rootKind,
		"natives", len(r.natives),
		"dynamic", dynamic,
		"unattached", len(pending),
	)
}

// decorate applies registry-level overrides to a freshly created descriptor.
func (r *Registry) decorate(d Descriptor) Descriptor {
	if r.forcedHidden[d.ClassName] {
		d.Hidden = true
	}
	return d
}

func (r *Registry) descendsFromRoot(k *NativeKind) bool {
	seen := make(map[string]bool)
	for cur := k; cur != nil; cur = r.nativeByName[cur.Parent] {
		if cur.Parent == r.rootKind {
			return true
		}
		if seen[cur.Name] {
			return false
		}
		seen[cur.Name] = true
	}
	return false
}

func (r *Registry) ensureTree(ctx context.Context) *classTree {
	if r.tree == nil {
		r.buildTreeLocked(ctx)
	}
	return r.tree
}

// GatherClasses returns base and every kind below it that is neither abstract,
// deprecated, hidden nor backed by an unknown package. Parents precede their
// children; children keep attachment order. An unknown base yields nil.
func (r *Registry) GatherClasses(ctx context.Context, base string) []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree := r.ensureTree(ctx)
	start, ok := tree.find(base)
	if !ok {
		ctxlog.FromContext(ctx).Debug("Base kind not found in class tree.", "base", base)
		return nil
	}

	var out []Descriptor
	tree.walk(start, 0, func(idx NodeIndex, _ int) {
		d := tree.node(idx).Data
		if r.isGatherable(d) {
			out = append(out, d)
		}
	})
	return out
}

func (r *Registry) isGatherable(d Descriptor) bool {
	if d.Abstract || d.IsDeprecated() || d.Hidden {
		return false
	}
	return !(d.IsDynamic() && r.hasUnknownPackage(d.Package))
}

// Entry is one kind visited by Walk.
type Entry struct {
	Descriptor Descriptor
	Depth      int
	// Visible reports whether GatherClasses would return the kind.
	Visible bool
}

// Walk returns base and all its descendants, parents first, including kinds
// GatherClasses would filter out.
func (r *Registry) Walk(ctx context.Context, base string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree := r.ensureTree(ctx)
	start, ok := tree.find(base)
	if !ok {
		return nil
	}
	var out []Entry
	tree.walk(start, 0, func(idx NodeIndex, depth int) {
		d := tree.node(idx).Data
		out = append(out, Entry{Descriptor: d, Depth: depth, Visible: r.isGatherable(d)})
	})
	return out
}

// Find returns the descriptor of the kind named name.
func (r *Registry) Find(ctx context.Context, name string) (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tree := r.ensureTree(ctx)
	idx, ok := tree.find(name)
	if !ok {
		return Descriptor{}, false
	}
	return tree.node(idx).Data, true
}

// IsChildOf reports whether kind descends from (or is) base.
func (r *Registry) IsChildOf(ctx context.Context, kind, base string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tree := r.ensureTree(ctx)
	idx, ok := tree.find(kind)
	for ok && idx != NoNode {
		if tree.node(idx).Data.ClassName == base {
			return true
		}
		idx = tree.node(idx).parent
	}
	return false
}
