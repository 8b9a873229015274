// Package webview adapts the Wails frontend's diagramming engine to the
// canvas.Surface interface. Placement commands are emitted to the frontend
// as runtime events; interaction notifications come back the same way and
// are forwarded into the surface's event pipe. The frontend owns rendering
// only: a Go-side mirror of node order and positions keeps reads synchronous
// regardless of how long the webview takes to mount an element.
package webview

import (
	"context"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/hollisb/cirrus/pkg/canvas"
	"github.com/hollisb/cirrus/pkg/topology"
)

// Frontend event names. The emit side carries placement commands, the
// subscribe side carries interaction notifications.
const (
	emitAddNode          = "canvas:add-node"
	emitRemoveNode       = "canvas:remove-node"
	emitAddConnection    = "canvas:add-connection"
	emitRemoveConnection = "canvas:remove-connection"
	emitTranslate        = "canvas:translate"
	emitZoomToFit        = "canvas:zoom-to-fit"
	emitClear            = "canvas:clear"

	onNodeMoved         = "canvas:node-moved"
	onConnectionCreated = "canvas:connection-created"
	onConnectionRemoved = "canvas:connection-removed"
	onNodePicked        = "canvas:node-picked"
)

const eventBuffer = 64

// Surface drives the diagramming engine hosted in the Wails webview.
type Surface struct {
	ctx context.Context

	mu     sync.Mutex
	closed bool
	nodes  map[string]canvas.View
	order  []string

	events      chan canvas.Event
	unsubscribe []func()
}

// New creates a surface bound to a Wails runtime context and subscribes to
// the frontend's interaction events. The context must be the one handed to
// the application's OnStartup hook.
func New(ctx context.Context) *Surface {
	s := &Surface{
		ctx:    ctx,
		nodes:  make(map[string]canvas.View),
		events: make(chan canvas.Event, eventBuffer),
	}
	s.unsubscribe = []func(){
		runtime.EventsOn(ctx, onNodeMoved, s.handleNodeMoved),
		runtime.EventsOn(ctx, onConnectionCreated, s.handleConnectionCreated),
		runtime.EventsOn(ctx, onConnectionRemoved, s.handleConnectionRemoved),
		runtime.EventsOn(ctx, onNodePicked, s.handleNodePicked),
	}
	return s
}

// AddNode mirrors the node locally and asks the frontend to mount it.
func (s *Surface) AddNode(id, label, icon string, pos topology.Position) error {
	s.mu.Lock()
	if _, exists := s.nodes[id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("webview: node %q already present", id)
	}
	s.nodes[id] = canvas.View{ID: id, Position: pos}
	s.order = append(s.order, id)
	s.mu.Unlock()

	runtime.EventsEmit(s.ctx, emitAddNode, map[string]any{
		"id": id, "label": label, "icon": icon, "x": pos.X, "y": pos.Y,
	})
	return nil
}

// RemoveNode drops the node from the mirror and the frontend.
func (s *Surface) RemoveNode(id string) {
	s.mu.Lock()
	if _, exists := s.nodes[id]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.nodes, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	runtime.EventsEmit(s.ctx, emitRemoveNode, id)
}

// AddConnection asks the frontend to mount a connection primitive.
func (s *Surface) AddConnection(id, sourceID, targetID, label string) error {
	s.mu.Lock()
	_, srcOK := s.nodes[sourceID]
	_, tgtOK := s.nodes[targetID]
	s.mu.Unlock()
	if !srcOK {
		return fmt.Errorf("webview: connection source %q not present", sourceID)
	}
	if !tgtOK {
		return fmt.Errorf("webview: connection target %q not present", targetID)
	}

	runtime.EventsEmit(s.ctx, emitAddConnection, map[string]any{
		"id": id, "source": sourceID, "target": targetID, "label": label,
	})
	return nil
}

// RemoveConnection drops a connection primitive from the frontend.
func (s *Surface) RemoveConnection(id string) {
	runtime.EventsEmit(s.ctx, emitRemoveConnection, id)
}

// TranslateTo moves a node, mirror first.
func (s *Surface) TranslateTo(id string, pos topology.Position) {
	s.mu.Lock()
	if v, ok := s.nodes[id]; ok {
		v.Position = pos
		s.nodes[id] = v
	}
	s.mu.Unlock()

	runtime.EventsEmit(s.ctx, emitTranslate, map[string]any{
		"id": id, "x": pos.X, "y": pos.Y,
	})
}

// NodeView reads the mirrored view of a node.
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

// HasNode reports whether a node is mirrored.
func (s *Surface) HasNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[id]
	return ok
}

// ZoomToFit asks the frontend to frame all nodes.
func (s *Surface) ZoomToFit() {
	runtime.EventsEmit(s.ctx, emitZoomToFit)
}

// Clear empties the mirror and the frontend surface.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.nodes = make(map[string]canvas.View)
	s.order = nil
	s.mu.Unlock()

	runtime.EventsEmit(s.ctx, emitClear)
}

// Events returns the event pipe.
func (s *Surface) Events() <-chan canvas.Event {
	return s.events
}

// Close unsubscribes from frontend events and closes the pipe.
func (s *Surface) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	for _, off := range s.unsubscribe {
		off()
	}
	return nil
}

// forward delivers an event unless the surface is already closed. The send
// happens under the lock so Close cannot slip between the closed check and
// the send; the default arm keeps it non-blocking.
func (s *Surface) forward(ev canvas.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		// Pipe full: the session pump has stalled or is gone. Dropping the
		// notification keeps the UI thread responsive; positions are still
		// correct in the mirror.
	}
}

// ---------------------------------------------------------------------------
// Frontend notification handlers. Wails delivers JSON payloads as
// map[string]interface{} with float64 numbers.
// ---------------------------------------------------------------------------

func (s *Surface) handleNodeMoved(data ...interface{}) {
	p, ok := payload(data)
	if !ok {
		return
	}
	id := str(p, "id")
	pos := topology.Position{X: num(p, "x"), Y: num(p, "y")}

	s.mu.Lock()
	if v, exists := s.nodes[id]; exists {
		v.Position = pos
		s.nodes[id] = v
	}
	s.mu.Unlock()

	s.forward(canvas.Event{Kind: canvas.EventNodeMoved, NodeID: id, Position: pos})
}

func (s *Surface) handleConnectionCreated(data ...interface{}) {
	p, ok := payload(data)
	if !ok {
		return
	}
	s.forward(canvas.Event{
		Kind:         canvas.EventConnectionCreated,
		ConnectionID: str(p, "id"),
		SourceID:     str(p, "source"),
		TargetID:     str(p, "target"),
		KindID:       str(p, "kind"),
	})
}

func (s *Surface) handleConnectionRemoved(data ...interface{}) {
	p, ok := payload(data)
	if !ok {
		return
	}
	s.forward(canvas.Event{Kind: canvas.EventConnectionRemoved, ConnectionID: str(p, "id")})
}

func (s *Surface) handleNodePicked(data ...interface{}) {
	p, ok := payload(data)
	if !ok {
		return
	}
	s.forward(canvas.Event{Kind: canvas.EventNodePicked, NodeID: str(p, "id")})
}

func payload(data []interface{}) (map[string]interface{}, bool) {
	if len(data) == 0 {
		return nil, false
	}
	p, ok := data[0].(map[string]interface{})
	return p, ok
}

func str(p map[string]interface{}, key string) string {
	v, _ := p[key].(string)
	return v
}

func num(p map[string]interface{}, key string) float64 {
	v, _ := p[key].(float64)
	return v
}
