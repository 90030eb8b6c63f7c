// Package app is the composition root of missiongraph. It wires the record
// catalog, the class registry, the asset index and the pin synthesizer into
// one App, and offers the read-only reports the command line prints, decoupled
// from any specific entrypoint.
package app
