// Package registry discovers and caches the hierarchy of node kinds the
// mission editor can place.
//
// Native kinds are compiled in and contributed by modules through
// RegisterNative. Dynamic kinds are declared by asset files and arrive through
// an AssetIndex. The Registry arranges both into a single tree rooted at the
// configured root kind, builds it lazily on the first query and patches it as
// the index reports added or removed assets. Tree nodes live in an arena and
// refer to their parent and children by index.
//
// A Registry is an explicit instance; independent registries do not share
// state. All methods are safe for concurrent use.
package registry
