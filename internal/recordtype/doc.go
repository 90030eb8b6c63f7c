// Package recordtype reflects record types into ordered field lists for the
// pin synthesizer.
//
// A Catalog holds two sources of records: definitions loaded from asset files
// (config.RecordDefinition) and Go structs registered by native modules,
// reflected through their `cty` and `mission` struct tags. Field lists are
// cached in an LRU cache that is purged whenever a definition changes.
package recordtype
