package registry

import (
	"context"
	"slices"

	"github.com/specialistvlad/missiongraph/internal/assetindex"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
)

// OnAssetAdded patches a newly indexed kind asset into the tree without a
// rebuild and updates the unknown-package set.
func (r *Registry) OnAssetAdded(ctx context.Context, a assetindex.Asset) {
	logger := ctxlog.FromContext(ctx)
	var notify bool

	func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		d := r.decorate(DynamicDescriptor(a))
		if r.tree != nil && r.gatherDynamic {
			if parent, ok := r.tree.find(d.Parent); ok {
				if d.HideParent {
					r.tree.node(parent).Data.Hidden = true
				}
				r.tree.attach(parent, r.tree.add(d))
				logger.Debug("Attached dynamic kind.", "kind", d.String(), "parent", d.Parent)
			} else {
				logger.Debug("Dynamic kind has no parent in the class tree.", "kind", d.String(), "parent", d.Parent)
			}
		}

		if r.index != nil && !r.index.PackageExists(a.PackageName) {
			r.addUnknownPackage(a.PackageName)
		} else {
			notify = r.removeUnknownPackage(a.PackageName)
		}

		r.rescanObservedIfIdle(ctx)
	}()

	if notify {
		r.broadcastPackageListUpdated(ctx)
	}
}

// OnAssetRemoved detaches the kind of a removed asset from the tree.
func (r *Registry) OnAssetRemoved(ctx context.Context, a assetindex.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tree != nil {
		d := DynamicDescriptor(a)
		for i := range r.tree.nodes {
			n := r.tree.node(NodeIndex(i))
			if n.parent != NoNode && n.Data.IsDynamic() && n.Data.Equal(d) {
				r.tree.detach(NodeIndex(i))
				ctxlog.FromContext(ctx).Debug("Detached dynamic kind.", "kind", d.String())
			}
		}
	}
	r.rescanObservedIfIdle(ctx)
}

// InvalidateCache drops the class tree; the next query rebuilds it.
func (r *Registry) InvalidateCache(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree = nil
	r.rescanObserved()
	ctxlog.FromContext(ctx).Debug("Class tree invalidated.")
}

// OnFilesLoaded is called once the index finished its initial scan.
func (r *Registry) OnFilesLoaded(ctx context.Context) { r.InvalidateCache(ctx) }

// OnKindRecompiled is called when a dynamic kind's definition changed.
func (r *Registry) OnKindRecompiled(ctx context.Context) { r.InvalidateCache(ctx) }

// OnReloadComplete is called after a hot reload of native modules.
func (r *Registry) OnReloadComplete(ctx context.Context) { r.InvalidateCache(ctx) }

// OnPackageLoadedOrUnloaded is called when a package enters or leaves memory.
func (r *Registry) OnPackageLoadedOrUnloaded(ctx context.Context) { r.InvalidateCache(ctx) }

// SubscribePackageListUpdated registers fn to be called whenever a package
// leaves the unknown set. The returned function unsubscribes.
func (r *Registry) SubscribePackageListUpdated(fn func(ctx context.Context)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Registry) broadcastPackageListUpdated(ctx context.Context) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(context.Context), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.listeners[id])
	}
	r.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Package list updated.", "listeners", len(fns))
	for _, fn := range fns {
		fn(ctx)
	}
}

// IsClassKnown reports whether d can currently be resolved. Native kinds and
// resolved dynamic kinds are always known.
func (r *Registry) IsClassKnown(d Descriptor) bool {
	if d.IsResolved() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.hasUnknownPackage(d.Package)
}

// AddUnknownClass records the package of an unresolved dynamic kind as unknown.
func (r *Registry) AddUnknownClass(d Descriptor) {
	if d.IsResolved() || d.Package == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addUnknownPackage(d.Package)
}

// UnknownPackages returns the unknown packages in the order they were added.
func (r *Registry) UnknownPackages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.unknownPackages)
}

func (r *Registry) hasUnknownPackage(pkg string) bool {
	return slices.Contains(r.unknownPackages, pkg)
}

func (r *Registry) addUnknownPackage(pkg string) {
	if !r.hasUnknownPackage(pkg) {
		r.unknownPackages = append(r.unknownPackages, pkg)
	}
}

// removeUnknownPackage reports whether pkg was in the set.
func (r *Registry) removeUnknownPackage(pkg string) bool {
	i := slices.Index(r.unknownPackages, pkg)
	if i < 0 {
		return false
	}
	r.unknownPackages = slices.Delete(r.unknownPackages, i, i+1)
	return true
}

// ResolveClass loads the definition of a dynamic kind. A kind that cannot be
// loaded is tracked as unknown and returned unresolved with ok == false.
func (r *Registry) ResolveClass(ctx context.Context, d Descriptor) (Descriptor, bool) {
	if d.IsResolved() {
		return d, true
	}
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	resolver := r.resolver
	r.mu.Unlock()

	if resolver == nil {
		r.AddUnknownClass(d)
		return d, false
	}
	def, err := resolver.ResolveKind(ctx, d.Package, d.ClassName)
	if err != nil {
		logger.Debug("Dynamic kind could not be resolved; tracking as unknown.", "kind", d.String(), "error", err)
		r.AddUnknownClass(d)
		return d, false
	}

	resolved := d.withDefinition(def)
	r.mu.Lock()
	resolved = r.decorate(resolved)
	if resolved.Tag == 0 || resolved.Record == "" {
		if parent, ok := r.ensureTree(ctx).find(resolved.Parent); ok {
			pd := r.tree.node(parent).Data
			if resolved.Tag == 0 {
				resolved.Tag = pd.Tag
			}
			if resolved.Record == "" {
				resolved.Record = pd.Record
			}
		}
	}
	notify := r.removeUnknownPackage(d.Package)
	r.mu.Unlock()

	if notify {
		r.broadcastPackageListUpdated(ctx)
	}
	return resolved, true
}

// AddObservedKind starts counting the dynamic kinds derived from base.
func (r *Registry) AddObservedKind(base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observedCounts[base] = r.countDerived(base)
}

// ObservedKindCount returns the number of dynamic kinds derived from an
// observed base kind.
func (r *Registry) ObservedKindCount(base string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observedCounts[base]
}

func (r *Registry) rescanObservedIfIdle(ctx context.Context) {
	if r.index != nil && r.index.IsLoadingAssets() {
		ctxlog.FromContext(ctx).Debug("Asset index still loading; deferring observed kind rescan.")
		return
	}
	r.rescanObserved()
}

func (r *Registry) rescanObserved() {
	for base := range r.observedCounts {
		r.observedCounts[base] = r.countDerived(base)
	}
}

func (r *Registry) countDerived(base string) int {
	if r.index == nil {
		return 0
	}
	return len(r.index.DerivedKindNames(base))
}
