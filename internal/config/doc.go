// Package config defines the format-agnostic model of everything the mission
// editor reads from disk: dynamic node kind definitions, record types whose
// fields become pins, and mission graph documents. It also declares the
// Loader interface implemented by format-specific adapters.
//
// Concrete implementations of the interfaces, such as for HCL, are provided
// in separate packages.
package config
