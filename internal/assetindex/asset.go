package assetindex

import (
	"context"
	"strconv"

	"github.com/specialistvlad/missiongraph/internal/config"
)

// Tag names carried by kind assets.
const (
	TagGeneratedClass = "GeneratedClass"
	TagParentClass    = "ParentClass"
	TagCategory       = "Category"
	TagDisplayName    = "DisplayName"
	TagTooltip        = "Tooltip"
	TagAbstract       = "Abstract"
	TagHidden         = "Hidden"
	TagHideParent     = "HideParent"
	TagDeprecated     = "Deprecated"
	TagRecord         = "Record"
)

// Asset is one indexed kind asset.
type Asset struct {
	ObjectPath  string
	PackageName string
	AssetName   string
	Tags        map[string]string
}

// Tag returns the value of a tag.
func (a Asset) Tag(name string) (string, bool) {
	v, ok := a.Tags[name]
	return v, ok
}

// BoolTag reports whether a tag is present and set to "true".
func (a Asset) BoolTag(name string) bool {
	v, ok := a.Tags[name]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func sameTags(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// assetFromKind builds the asset describing a kind declared in pkg.
func assetFromKind(pkg string, k *config.KindDefinition) Asset {
	tags := map[string]string{
		TagGeneratedClass: k.Name,
		TagParentClass:    k.Parent,
	}
	if k.Category != "" {
		tags[TagCategory] = k.Category
	}
	if k.DisplayName != "" {
		tags[TagDisplayName] = k.DisplayName
	}
	if k.Tooltip != "" {
		tags[TagTooltip] = k.Tooltip
	}
	if k.Abstract {
		tags[TagAbstract] = "true"
	}
	if k.Hidden {
		tags[TagHidden] = "true"
	}
	if k.HideParent {
		tags[TagHideParent] = "true"
	}
	if k.IsDeprecated() {
		tags[TagDeprecated] = k.Deprecated
	}
	if k.Record != "" {
		tags[TagRecord] = k.Record
	}
	return Asset{
		ObjectPath:  pkg + "." + k.Name,
		PackageName: pkg,
		AssetName:   k.Name,
		Tags:        tags,
	}
}

// Listener receives index notifications. Nil callbacks are skipped.
// Callbacks run on the goroutine that changed the index, outside index locks.
type Listener struct {
	OnAdded         func(ctx context.Context, asset Asset)
	OnRemoved       func(ctx context.Context, asset Asset)
	OnPackageLoaded func(ctx context.Context, pkg string)
	OnFilesLoaded   func(ctx context.Context)
}
