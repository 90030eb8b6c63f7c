// Package schema decides which edits a mission graph accepts: whether two pins
// may be linked, whether two nodes may be merged, and how a reroute knot is
// spliced into an existing link.
//
// Policy violations are not errors. CanCreateConnection and CanMergeNodes
// return a Response carrying a human readable message, and the Try* helpers
// leave the graph untouched when the response disallows the edit.
package schema
