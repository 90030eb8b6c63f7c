package registry

import (
	"github.com/specialistvlad/missiongraph/internal/assetindex"
	"github.com/specialistvlad/missiongraph/internal/config"
	"github.com/specialistvlad/missiongraph/internal/nodekind"
)

// DefaultDeprecationMessage is shown for deprecated kinds without a message.
const DefaultDeprecationMessage = "Please remove it!"

// NativeKind is a compiled-in node kind.
type NativeKind struct {
	Name        string
	Parent      string
	Category    string
	DisplayName string
	Tooltip     string
	Abstract    bool
	Hidden      bool
	HideParent  bool
	// Deprecated marks the kind deprecated; DeprecationMessage is optional.
	Deprecated         bool
	DeprecationMessage string
	// Record names the record type whose fields become pins.
	Record string
	Tag    nodekind.Tag
}

// Descriptor identifies a node kind and carries its display metadata.
//
// Native descriptors are identified by their NativeKind. Dynamic descriptors
// are identified by the {AssetName, Package, ClassName} triple until their
// definition has been resolved.
type Descriptor struct {
	native *NativeKind

	AssetName string
	Package   string
	ClassName string
	Parent    string

	Category    string
	DisplayName string
	Tooltip     string
	Abstract    bool
	Hidden      bool
	HideParent  bool

	Deprecated        bool
	DeprecatedMessage string

	Record string
	Tag    nodekind.Tag

	// Definition is set once a dynamic kind has been resolved.
	Definition *config.KindDefinition
}

// NativeDescriptor returns the descriptor of a native kind.
func NativeDescriptor(k *NativeKind) Descriptor {
	return Descriptor{
		native:            k,
		ClassName:         k.Name,
		Parent:            k.Parent,
		Category:          k.Category,
		DisplayName:       k.DisplayName,
		Tooltip:           k.Tooltip,
		Abstract:          k.Abstract,
		Hidden:            k.Hidden,
		HideParent:        k.HideParent,
		Deprecated:        k.Deprecated,
		DeprecatedMessage: k.DeprecationMessage,
		Record:            k.Record,
		Tag:               k.Tag,
	}
}

// DynamicDescriptor returns the unresolved descriptor of an indexed kind asset.
func DynamicDescriptor(a assetindex.Asset) Descriptor {
	className, _ := a.Tag(assetindex.TagGeneratedClass)
	if className == "" {
		className = a.AssetName
	}
	parent, _ := a.Tag(assetindex.TagParentClass)
	category, _ := a.Tag(assetindex.TagCategory)
	display, _ := a.Tag(assetindex.TagDisplayName)
	tooltip, _ := a.Tag(assetindex.TagTooltip)
	record, _ := a.Tag(assetindex.TagRecord)
	msg, deprecated := a.Tag(assetindex.TagDeprecated)

	return Descriptor{
		AssetName:         a.AssetName,
		Package:           a.PackageName,
		ClassName:         className,
		Parent:            parent,
		Category:          category,
		DisplayName:       display,
		Tooltip:           tooltip,
		Abstract:          a.BoolTag(assetindex.TagAbstract),
		Hidden:            a.BoolTag(assetindex.TagHidden),
		HideParent:        a.BoolTag(assetindex.TagHideParent),
		Deprecated:        deprecated,
		DeprecatedMessage: msg,
		Record:            record,
	}
}

// withDefinition returns d resolved against def.
func (d Descriptor) withDefinition(def *config.KindDefinition) Descriptor {
	d.Definition = def
	d.Parent = def.Parent
	d.Category = def.Category
	d.DisplayName = def.DisplayName
	d.Tooltip = def.Tooltip
	d.Abstract = def.Abstract
	d.Hidden = d.Hidden || def.Hidden
	d.HideParent = def.HideParent
	d.Deprecated = def.IsDeprecated()
	d.DeprecatedMessage = def.Deprecated
	if def.Record != "" {
		d.Record = def.Record
	}
	return d
}

// Native returns the native kind, or nil for dynamic descriptors.
func (d Descriptor) Native() *NativeKind { return d.native }

// IsDynamic reports whether the kind is declared by an asset.
func (d Descriptor) IsDynamic() bool { return d.native == nil }

// IsResolved reports whether the kind is native or its definition is loaded.
func (d Descriptor) IsResolved() bool { return d.native != nil || d.Definition != nil }

// IsZero reports whether d is the zero descriptor.
func (d Descriptor) IsZero() bool { return d.native == nil && d.ClassName == "" && d.AssetName == "" }

// IsDeprecated reports whether the kind is deprecated.
func (d Descriptor) IsDeprecated() bool { return d.Deprecated || d.DeprecatedMessage != "" }

// Name returns the class name with no package qualification.
func (d Descriptor) Name() string { return d.ClassName }

// Equal compares by resolved identity when both sides are resolved and by the
// unresolved triple otherwise.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.native != nil || o.native != nil {
		return d.native == o.native
	}
	if d.Definition != nil && o.Definition != nil {
		return d.Definition == o.Definition ||
			(d.Definition.Name == o.Definition.Name && d.Package == o.Package)
	}
	return d.AssetName == o.AssetName && d.Package == o.Package && d.ClassName == o.ClassName
}

// Title is the display name, falling back to the class name.
func (d Descriptor) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ClassName
}

func (d Descriptor) String() string {
	if d.native != nil {
		return d.ClassName
	}
	return d.Package + "." + d.ClassName
}

// DeprecationMessage returns the message shown on nodes of a deprecated kind,
// or "" if the kind is not deprecated.
func DeprecationMessage(d Descriptor) string {
	if !d.IsDeprecated() {
		return ""
	}
	msg := d.DeprecatedMessage
	if msg == "" {
		msg = DefaultDeprecationMessage
	}
	return "DEPRECATED: " + msg
}
