// Package topology defines the canonical topology graph types for Cirrus.
// The graph is the single serializable source of truth handed to and from
// persistence; the interactive canvas is a derived, disposable view of it.
package topology
