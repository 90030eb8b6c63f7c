// Package pins derives the pins a graph node exposes from the fields of its
// record type.
//
// The Synthesizer walks a record's ordered field list and creates one pin per
// visible field, recursing into record-typed fields according to the
// recursion policy of the nested record. A record that is already being
// expanded on the current path, or that lies deeper than MaxDepth, is treated
// as a leaf so that self-referential records terminate.
package pins
