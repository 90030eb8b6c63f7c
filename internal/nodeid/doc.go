// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for the pin references
used in mission documents, based on the canonical format `node.pin`.

The format is a dot-separated sequence of segments, e.g. `quest.In`,
`quest.reward.gold` or `quest.objectives[1]`. The first segment names the
node; the remaining segments name the pin. A trailing index addresses one
element pin of an array field, which the pin synthesizer names
`<field>_<index>`.
*/
package nodeid
