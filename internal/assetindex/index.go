package assetindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/ctxlog"
	"github.com/tidwall/btree"
)

// DefaultPattern selects every HCL file below the root.
const DefaultPattern = "**/*.hcl"

// ErrPackageNotFound is returned when a package has no backing file on disk.
var ErrPackageNotFound = errors.New("package not found on disk")

// FileLoader parses a single asset file.
type FileLoader interface {
	LoadFile(ctx context.Context, path string) (*config.Model, error)
}

// packageContents is what one file contributed to the index.
type packageContents struct {
	objectPaths []string
	kinds       []*config.KindDefinition
	records     []*config.RecordDefinition
}

// Index is a file-backed asset index.
type Index struct {
	root    string
	pattern string
	loader  FileLoader

	mu       sync.RWMutex
	assets   btree.Map[string, Asset]
	packages map[string]*packageContents
	loading  bool

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New creates an index over root. An empty pattern selects DefaultPattern.
func New(root, pattern string, loader FileLoader) *Index {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Index{
		root:      root,
		pattern:   pattern,
		loader:    loader,
		packages:  make(map[string]*packageContents),
		listeners: make(map[int]Listener),
	}
}

// Root returns the indexed directory.
func (ix *Index) Root() string {
	return ix.root
}

// Subscribe registers l and returns a function that removes it.
func (ix *Index) Subscribe(l Listener) func() {
	ix.listenersMu.Lock()
	defer ix.listenersMu.Unlock()
	id := ix.nextID
	ix.nextID++
	ix.listeners[id] = l
	return func() {
		ix.listenersMu.Lock()
		defer ix.listenersMu.Unlock()
		delete(ix.listeners, id)
	}
}

func (ix *Index) snapshotListeners() []Listener {
	ix.listenersMu.Lock()
	defer ix.listenersMu.Unlock()
	ids := make([]int, 0, len(ix.listeners))
	for id := range ix.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, ix.listeners[id])
	}
	return out
}

// IsLoadingAssets reports whether a full scan is in progress.
func (ix *Index) IsLoadingAssets() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.loading
}

// PackageName maps a file path to its package name: the slash-separated
// path relative to the root, without extension. Relative paths are taken as
// relative to the root already.
func (ix *Index) PackageName(path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(ix.root, path)
		if err != nil {
			return "", fmt.Errorf("path %s is outside of %s: %w", path, ix.root, err)
		}
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside of %s", path, ix.root)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel)), nil
}

func (ix *Index) packagePath(pkg string) string {
	return filepath.Join(ix.root, filepath.FromSlash(pkg)+".hcl")
}

// PackageExists reports whether the package's file is present on disk.
func (ix *Index) PackageExists(pkg string) bool {
	info, err := os.Stat(ix.packagePath(pkg))
	return err == nil && !info.IsDir()
}

// ScanAll loads every file matching the pattern, removes packages whose file
// disappeared and finally emits OnFilesLoaded.
func (ix *Index) ScanAll(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	files, err := doublestar.Glob(os.DirFS(ix.root), ix.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("failed to scan %s for %s: %w", ix.root, ix.pattern, err)
	}
	sort.Strings(files)
	logger.Debug("Asset scan started.", "root", ix.root, "pattern", ix.pattern, "files", len(files))

	ix.setLoading(true)
	defer ix.setLoading(false)

	seen := make(map[string]struct{}, len(files))
	for _, rel := range files {
		pkg, err := ix.PackageName(rel)
		if err != nil {
			return err
		}
		seen[pkg] = struct{}{}
		if err := ix.loadPackage(ctx, pkg); err != nil {
			return err
		}
	}

	for _, pkg := range ix.Packages() {
		if _, ok := seen[pkg]; !ok {
			ix.RemovePackage(ctx, pkg)
		}
	}

	ix.setLoading(false)
	logger.Debug("Asset scan finished.", "assets", ix.Len())
	for _, l := range ix.snapshotListeners() {
		if l.OnFilesLoaded != nil {
			l.OnFilesLoaded(ctx)
		}
	}
	return nil
}

func (ix *Index) setLoading(v bool) {
	ix.mu.Lock()
	ix.loading = v
	ix.mu.Unlock()
}

// Rescan reloads a single file, or removes its package if it is gone.
func (ix *Index) Rescan(ctx context.Context, path string) error {
	pkg, err := ix.PackageName(path)
	if err != nil {
		return err
	}
	if !ix.PackageExists(pkg) {
		ix.RemovePackage(ctx, pkg)
		return nil
	}
	return ix.loadPackage(ctx, pkg)
}

// loadPackage parses the package file and replaces its previous contents,
// emitting removals before additions.
func (ix *Index) loadPackage(ctx context.Context, pkg string) error {
	model, err := ix.loader.LoadFile(ctx, ix.packagePath(pkg))
	if err != nil {
		return fmt.Errorf("failed to load package %s: %w", pkg, err)
	}

	contents := &packageContents{kinds: model.Kinds}
	recordNames := make([]string, 0, len(model.Records))
	for name := range model.Records {
		recordNames = append(recordNames, name)
	}
	sort.Strings(recordNames)
	for _, name := range recordNames {
		contents.records = append(contents.records, model.Records[name])
	}

	next := make(map[string]Asset, len(model.Kinds))
	for _, k := range model.Kinds {
		asset := assetFromKind(pkg, k)
		next[asset.ObjectPath] = asset
		contents.objectPaths = append(contents.objectPaths, asset.ObjectPath)
	}

	var removed, added []Asset
	ix.mu.Lock()
	if prev, ok := ix.packages[pkg]; ok {
		for _, path := range prev.objectPaths {
			old, _ := ix.assets.Get(path)
			if cur, still := next[path]; still && sameTags(old.Tags, cur.Tags) {
				continue
			}
			ix.assets.Delete(path)
			removed = append(removed, old)
		}
	}
	for _, path := range contents.objectPaths {
		if _, exists := ix.assets.Get(path); exists {
			continue
		}
		ix.assets.Set(path, next[path])
		added = append(added, next[path])
	}
	ix.packages[pkg] = contents
	ix.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Package loaded.", "package", pkg, "added", len(added), "removed", len(removed))
	ix.emit(ctx, removed, added)
	for _, l := range ix.snapshotListeners() {
		if l.OnPackageLoaded != nil {
			l.OnPackageLoaded(ctx, pkg)
		}
	}
	return nil
}

// RemovePackage drops every asset of pkg.
func (ix *Index) RemovePackage(ctx context.Context, pkg string) {
	ix.mu.Lock()
	prev, ok := ix.packages[pkg]
	if !ok {
		ix.mu.Unlock()
		return
	}
	var removed []Asset
	for _, path := range prev.objectPaths {
		if old, deleted := ix.assets.Delete(path); deleted {
			removed = append(removed, old)
		}
	}
	delete(ix.packages, pkg)
	ix.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Package removed.", "package", pkg, "removed", len(removed))
	ix.emit(ctx, removed, nil)
	for _, l := range ix.snapshotListeners() {
		if l.OnPackageLoaded != nil {
			l.OnPackageLoaded(ctx, pkg)
		}
	}
}

func (ix *Index) emit(ctx context.Context, removed, added []Asset) {
	listeners := ix.snapshotListeners()
	for _, a := range removed {
		for _, l := range listeners {
			if l.OnRemoved != nil {
				l.OnRemoved(ctx, a)
			}
		}
	}
	for _, a := range added {
		for _, l := range listeners {
			if l.OnAdded != nil {
				l.OnAdded(ctx, a)
			}
		}
	}
}

// Len returns the number of indexed assets.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.assets.Len()
}

// KindAssets returns every indexed kind asset ordered by object path.
func (ix *Index) KindAssets() []Asset {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]Asset, 0, ix.assets.Len())
	ix.assets.Scan(func(_ string, a Asset) bool {
		out = append(out, a)
		return true
	})
	return out
}

// Packages returns the loaded package names, sorted.
func (ix *Index) Packages() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.packages))
	for pkg := range ix.packages {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// DerivedKindNames returns the names of every indexed kind that descends,
// directly or transitively, from base.
func (ix *Index) DerivedKindNames(base string) []string {
	children := make(map[string][]string)
	for _, a := range ix.KindAssets() {
		parent, _ := a.Tag(TagParentClass)
		name, _ := a.Tag(TagGeneratedClass)
		children[parent] = append(children[parent], name)
	}

	var out []string
	visited := map[string]bool{base: true}
	queue := []string{base}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// Records returns every record type declared by the loaded packages.
func (ix *Index) Records() map[string]*config.RecordDefinition {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make(map[string]*config.RecordDefinition)
	for _, pkg := range sortedPackageNames(ix.packages) {
		for _, rec := range ix.packages[pkg].records {
			out[rec.Name] = rec
		}
	}
	return out
}

// ResolveKind returns the definition of className from pkg. The package must
// still exist on disk.
func (ix *Index) ResolveKind(ctx context.Context, pkg, className string) (*config.KindDefinition, error) {
	if !ix.PackageExists(pkg) {
		return nil, fmt.Errorf("kind %s: %w: %s", className, ErrPackageNotFound, pkg)
	}

	ix.mu.RLock()
	contents, ok := ix.packages[pkg]
	ix.mu.RUnlock()
	if !ok {
		if err := ix.loadPackage(ctx, pkg); err != nil {
			return nil, err
		}
		ix.mu.RLock()
		contents = ix.packages[pkg]
		ix.mu.RUnlock()
	}

	for _, k := range contents.kinds {
		if k.Name == className {
			return k, nil
		}
	}
	return nil, fmt.Errorf("kind %s is not declared in package %s", className, pkg)
}

func sortedPackageNames(m map[string]*packageContents) []string {
	out := make([]string, 0, len(m))
	for pkg := range m {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}
