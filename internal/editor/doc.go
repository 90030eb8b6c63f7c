// Package editor ties a mission graph to the class registry, the graph schema
// and the pin synthesizer.
//
// A Session owns one graph. Every operation that changes the graph goes
// through the schema so that links stay valid, and every node placed from a
// class gets its default pins from the node kind table plus one pin per
// visible field of its record type. The session subscribes to the registry's
// package-list notifications and re-resolves dynamic classes whose packages
// come back.
//
// Registry calls that may broadcast (class resolution) are never made while
// the session lock is held.
package editor
