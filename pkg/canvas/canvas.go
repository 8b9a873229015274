// Package canvas defines the abstract rendering-surface boundary.
// Implementations (webview, headless) place and remove visual primitives
// behind this interface and report user interaction back through a single
// event pipe. The surface abstraction lets the editor session run unchanged
// against the real diagramming frontend or an in-memory stand-in.
package canvas

import "github.com/hollisb/cirrus/pkg/topology"

// View is the live visual state of one node as the surface knows it.
type View struct {
	ID       string
	Position topology.Position
}

// EventKind enumerates the structural notifications a surface can deliver.
type EventKind int

const (
	// EventNodeMoved reports that the user dragged a node to a new position.
	EventNodeMoved EventKind = iota
	// EventConnectionCreated reports a user-drawn connection between two nodes.
	EventConnectionCreated
	// EventConnectionRemoved reports that the surface dropped a connection.
	EventConnectionRemoved
	// EventNodePicked reports that the user clicked/selected a node.
	EventNodePicked
)

func (k EventKind) String() string {
	switch k {
	case EventNodeMoved:
		return "node-moved"
	case EventConnectionCreated:
		return "connection-created"
	case EventConnectionRemoved:
		return "connection-removed"
	case EventNodePicked:
		return "node-picked"
	default:
		return "unknown"
	}
}

// Event is a single canvas-originated notification. Which fields are set
// depends on Kind: NodeID for node events, ConnectionID/SourceID/TargetID/
// KindID for connection events, Position for moves.
type Event struct {
	Kind         EventKind
	NodeID       string
	ConnectionID string
	SourceID     string
	TargetID     string
	KindID       string
	Position     topology.Position
}

// Surface is the injected rendering capability the editor session drives.
// The session treats it as a write-through projection of the graph model:
// the surface is rebuilt from scratch on load and patched on every explicit
// mutation, never the other way around.
//
// All methods are synchronous from the caller's point of view.
// Implementations that render asynchronously must keep their own mirror so
// reads (NodeView, NodeOrder, HasNode) reflect every prior write.
type Surface interface {
	// AddNode places a node primitive at the given position.
	AddNode(id, label, icon string, pos topology.Position) error
	// RemoveNode removes a node primitive. Unknown ids are a no-op.
	RemoveNode(id string)
	// AddConnection places a connection primitive between two existing nodes.
	AddConnection(id, sourceID, targetID, label string) error
	// RemoveConnection removes a connection primitive. Unknown ids are a no-op.
	RemoveConnection(id string)
	// TranslateTo moves an existing node primitive to a new position.
	TranslateTo(id string, pos topology.Position)
	// NodeView returns the live view of a node for position read-back.
	NodeView(id string) (View, bool)
	// NodeOrder returns all node ids in insertion order.
	NodeOrder() []string
	// HasNode reports whether a node primitive is present.
	HasNode(id string) bool
	// ZoomToFit frames the view so every node is visible.
	ZoomToFit()
	// Clear removes every primitive from the surface.
	Clear()
	// Events returns the surface's event pipe. The channel is closed by Close.
	Events() <-chan Event
	// Close tears the surface down and closes the event pipe.
	Close() error
}
