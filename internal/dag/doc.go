// Package dag holds a small directed graph used to validate whole mission
// documents: it reports cycles between nodes and yields the execution order
// of a mission, where ties between independent nodes are broken by the
// caller (the editor orders them by horizontal position).
package dag
