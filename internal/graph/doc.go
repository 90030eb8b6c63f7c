// Package graph holds the nodes and pins of one mission graph.
//
// # Arena
//
// Nodes and pins live in two arenas owned by a Graph and are addressed by
// NodeID and PinID. Relationships are stored as ids, never as pointers: a
// pin names its owning node, a node lists its pins and sub-nodes in order and
// names its parent. Removed entries keep their slot so that ids stay stable
// for the lifetime of the graph.
//
// # Ownership
//
// A node either stands on its own (Parent == NoNode) or is a sub-node owned
// by exactly one parent. Removing a node removes its sub-nodes with it and
// detaches it from its parent. Read-only nodes refuse removal.
//
// # Links
//
// A link joins one input pin and one output pin of two different nodes and is
// recorded on both pins. The Graph performs only these structural checks;
// whether a link makes sense for the mission is decided by package schema.
//
// A Graph is not safe for concurrent use.
package graph
