// Package nodekind describes the kinds of graph nodes the mission editor can
// place: a closed set of tags plus a capability table that tells the graph
// how each kind builds its default pins, which colour its body uses and
// whether it may only exist nested inside another node.
//
// Capabilities are registered per tag on a Table, so new kinds are added by
// registration rather than by embedding.
package nodekind
