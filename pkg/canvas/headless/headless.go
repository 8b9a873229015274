// Package headless provides an in-memory canvas.Surface with no rendering.
// It backs tests and the scripting console, and is the reference for the
// ordering and read-back semantics real surfaces must preserve.
package headless

import (
	"fmt"
	"sync"

	"github.com/hollisb/cirrus/pkg/canvas"
	"github.com/hollisb/cirrus/pkg/topology"
)

// eventBuffer bounds the pipe so Inject never blocks a test that has not
// started draining yet.
const eventBuffer = 64

// Surface is an in-memory canvas. It preserves node insertion order and
// tracks positions, which is all the editor reads back at serialize time.
type Surface struct {
	mu     sync.Mutex
	closed bool

	nodes map[string]canvas.View
	order []string
	conns map[string]connection

	zoomCalls int
	events    chan canvas.Event
}

type connection struct {
	sourceID string
	targetID string
	label    string
}

// New creates an empty headless surface.
func New() *Surface {
	return &Surface{
		nodes:  make(map[string]canvas.View),
		conns:  make(map[string]connection),
		events: make(chan canvas.Event, eventBuffer),
	}
}

// AddNode places a node, keeping insertion order.
func (s *Surface) AddNode(id, label, icon string, pos topology.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[id]; exists {
		return fmt.Errorf("headless: node %q already present", id)
	}
	s.nodes[id] = canvas.View{ID: id, Position: pos}
	s.order = append(s.order, id)
	return nil
}

// RemoveNode removes a node and forgets its ordering slot.
func (s *Surface) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[id]; !exists {
		return
	}
	delete(s.nodes, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// AddConnection places a connection between two existing nodes.
func (s *Surface) AddConnection(id, sourceID, targetID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[sourceID]; !ok {
		return fmt.Errorf("headless: connection source %q not present", sourceID)
	}
	if _, ok := s.nodes[targetID]; !ok {
		return fmt.Errorf("headless: connection target %q not present", targetID)
	}
	s.conns[id] = connection{sourceID: sourceID, targetID: targetID, label: label}
	return nil
}

// RemoveConnection removes a connection primitive.
func (s *Surface) RemoveConnection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

// TranslateTo moves a node to a new position.
func (s *Surface) TranslateTo(id string, pos topology.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.nodes[id]; ok {
		v.Position = pos
		s.nodes[id] = v
	}
}

// NodeView returns the live view of a node.
func (s *Surface) NodeView(id string) (canvas.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.nodes[id]
	return v, ok
}

// NodeOrder returns node ids in insertion order.
func (s *Surface) NodeOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// HasNode reports whether a node is present.
func (s *Surface) HasNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[id]
	return ok
}

// ConnectionCount reports how many connection primitives are present.
// Test helper; not part of canvas.Surface.
func (s *Surface) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// ZoomCalls reports how many times ZoomToFit ran. Test helper.
func (s *Surface) ZoomCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoomCalls
}

// ZoomToFit records the framing request. There is nothing to frame.
func (s *Surface) ZoomToFit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoomCalls++
}

// Clear removes every primitive.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]canvas.View)
	s.order = nil
	s.conns = make(map[string]connection)
}

// Events returns the event pipe.
func (s *Surface) Events() <-chan canvas.Event {
	return s.events
}

// Inject simulates a user interaction by delivering an event through the
// pipe. For moved-node events the surface's own position mirror is updated
// first, matching what a real surface does before notifying.
func (s *Surface) Inject(ev canvas.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if ev.Kind == canvas.EventNodeMoved {
		if v, ok := s.nodes[ev.NodeID]; ok {
			v.Position = ev.Position
			s.nodes[ev.NodeID] = v
		}
	}
	select {
	case s.events <- ev:
	default:
		// Buffer full without a running pump; the test gets to keep going.
	}
}

// Close tears the surface down and closes the event pipe.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}
