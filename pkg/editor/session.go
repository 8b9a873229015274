package editor

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/hollisb/cirrus/pkg/canvas"
	"github.com/hollisb/cirrus/pkg/catalog"
	"github.com/hollisb/cirrus/pkg/topology"
)

// Session is one editing context over one topology graph. All structural
// truth lives in the session's maps; the canvas surface is a disposable
// projection rebuilt on Load and patched on every explicit mutation.
//
// A session is safe for concurrent use. Direct API calls and pump-delivered
// canvas events are serialized by a single mutex, so state changes apply one
// at a time in arrival order.
type Session struct {
	mu          sync.Mutex
	initialized bool
	surface     canvas.Surface
	types       *catalog.Catalog

	// Side maps, keyed by entity identity. Exclusively owned by the session;
	// accessors hand out copies.
	nodeTypes        map[string]string
	nodeLabels       map[string]string
	nodeProps        map[string]map[string]any
	nodeCompartments map[string]string
	connections      map[string]topology.Connection
	connOrder        []string
	compartments     map[string]topology.Compartment
	compartmentOrder []string
	stacks           map[string]topology.StackInstance
	stackOrder       []string

	selection Selection
	clipboard *clipboardEntry

	version  uint64
	onChange func()

	pumpDone chan struct{}
}

// New creates a session. It accepts no operations until Init attaches a
// surface and a type catalog.
func New() *Session {
	s := &Session{}
	s.reset()
	return s
}

// reset reinitializes every side map. Caller holds the lock (or owns the
// session exclusively, as in New).
func (s *Session) reset() {
	s.nodeTypes = make(map[string]string)
	s.nodeLabels = make(map[string]string)
	s.nodeProps = make(map[string]map[string]any)
	s.nodeCompartments = make(map[string]string)
	s.connections = make(map[string]topology.Connection)
	s.connOrder = nil
	s.compartments = make(map[string]topology.Compartment)
	s.compartmentOrder = nil
	s.stacks = make(map[string]topology.StackInstance)
	s.stackOrder = nil
	s.selection = Selection{}
}

// Init attaches the rendering surface and the semantic-type catalog, and
// starts the event pump. A session can be initialized once; create a new
// session instead of re-initializing.
func (s *Session) Init(surface canvas.Surface, types *catalog.Catalog) error {
	if surface == nil {
		return errors.New("editor: nil surface")
	}
	if types == nil {
		types = catalog.New(nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return errors.New("editor: session already initialized")
	}
	s.initialized = true
	s.surface = surface
	s.types = types
	s.pumpDone = make(chan struct{})
	go s.pump(surface.Events())
	return nil
}

// Destroy tears the session down: it detaches and closes the surface, stops
// the event pump, and clears all internal maps. Further operations return
// absent results. Canvas events still in flight when Destroy runs are
// ignored.
func (s *Session) Destroy() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = false
	surface := s.surface
	s.surface = nil
	s.clipboard = nil
	s.reset()
	s.mu.Unlock()

	surface.Close()
	<-s.pumpDone
}

// Initialized reports whether the session is live.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Version returns the change token. It increments at least once for every
// structural mutation; observers must treat it as "something changed", not
// as a mutation count.
func (s *Session) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// OnChange registers a hook invoked after every change-token bump. The hook
// runs outside the session lock, so it may call back into the session.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// bump advances the change token. Caller holds the lock; the returned notify
// closure must be called after the lock is released.
func (s *Session) bump() func() {
	s.version++
	fn := s.onChange
	if fn == nil {
		return func() {}
	}
	return fn
}

// newID generates a fresh identity. Identities are unique across all entity
// kinds within a session, which UUIDs give us for free.
func newID() string {
	return uuid.NewString()
}

// ---------------------------------------------------------------------------
// Canvas event pipe
// ---------------------------------------------------------------------------

// pump drains the surface's event pipe until it closes. One pump per
// session; events are handled strictly one at a time.
func (s *Session) pump(events <-chan canvas.Event) {
	defer close(s.pumpDone)
	for ev := range events {
		s.handleEvent(ev)
	}
}

// handleEvent applies one canvas-originated event to the session state.
func (s *Session) handleEvent(ev canvas.Event) {
	s.mu.Lock()
	if !s.initialized {
		// Torn-down session: the in-flight event is abandoned.
		s.mu.Unlock()
		return
	}

	notify := func() {}
	switch ev.Kind {
	case canvas.EventNodeMoved:
		// Positions live in the surface and are read back at serialize
		// time; the move only needs to advance the change token.
		if _, known := s.nodeTypes[ev.NodeID]; known {
			notify = s.bump()
		}

	case canvas.EventConnectionCreated:
		// A user-drawn connection. The surface (after consulting pkg/rules)
		// names the relationship kind; a missing kind is recorded as the
		// empty string rather than rejected, so the editor stays usable
		// with partially-inconsistent data.
		_, srcKnown := s.nodeTypes[ev.SourceID]
		_, tgtKnown := s.nodeTypes[ev.TargetID]
		if srcKnown && tgtKnown {
			id := ev.ConnectionID
			if id == "" {
				id = newID()
			}
			if _, dup := s.connections[id]; !dup {
				s.connections[id] = topology.Connection{
					ID:       id,
					SourceID: ev.SourceID,
					TargetID: ev.TargetID,
					KindID:   ev.KindID,
				}
				s.connOrder = append(s.connOrder, id)
				notify = s.bump()
			}
		}

	case canvas.EventConnectionRemoved:
		if _, known := s.connections[ev.ConnectionID]; known {
			s.deleteConnection(ev.ConnectionID)
			notify = s.bump()
		}

	case canvas.EventNodePicked:
		if _, known := s.nodeTypes[ev.NodeID]; known {
			s.selection = Selection{Kind: SelectionNode, ID: ev.NodeID}
			notify = s.bump()
		}
	}
	s.mu.Unlock()

	notify()
}
