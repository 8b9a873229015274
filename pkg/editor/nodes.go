package editor

import "github.com/hollisb/cirrus/pkg/topology"

// AddNode creates a node of the given semantic type at a position and
// returns its fresh identity. The property bag is seeded from the type's
// schema defaults. On an uninitialized session it returns ("", false) and
// changes nothing. An unknown type identity is a data-integrity gap, not an
// error: the raw identity stands in for the display label.
func (s *Session) AddNode(typeID string, pos topology.Position) (string, bool) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return "", false
	}

	id := newID()
	label := typeID
	icon := ""
	props := map[string]any{}
	if t, ok := s.types.TypeByID(typeID); ok {
		if t.DisplayName != "" {
			label = t.DisplayName
		}
		icon = t.Icon
		props = t.DefaultProperties()
	}

	if err := s.surface.AddNode(id, label, icon, pos); err != nil {
		s.mu.Unlock()
		return "", false
	}
	s.nodeTypes[id] = typeID
	s.nodeLabels[id] = label
	s.nodeProps[id] = props
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return id, true
}

// RemoveNode removes a node, cascading over every connection that touches
// it first so no dangling edge can survive. A selected node that is removed
// leaves the selection empty.
func (s *Session) RemoveNode(id string) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.nodeTypes[id]; !known {
		s.mu.Unlock()
		return false
	}

	for _, connID := range s.connOrder {
		c := s.connections[connID]
		if c.SourceID == id || c.TargetID == id {
			s.surface.RemoveConnection(connID)
			delete(s.connections, connID)
		}
	}
	s.compactConnOrder()

	s.surface.RemoveNode(id)
	delete(s.nodeTypes, id)
	delete(s.nodeLabels, id)
	delete(s.nodeProps, id)
	delete(s.nodeCompartments, id)

	if s.selection.Kind == SelectionNode && s.selection.ID == id {
		s.selection = Selection{}
	}
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// RemoveSelected removes whatever is selected; the selection kind decides
// which remove path runs. No-op when nothing is selected.
func (s *Session) RemoveSelected() bool {
	sel := s.Selection()
	switch sel.Kind {
	case SelectionNode:
		return s.RemoveNode(sel.ID)
	case SelectionCompartment:
		return s.RemoveCompartment(sel.ID)
	case SelectionStack:
		return s.RemoveStack(sel.ID)
	default:
		return false
	}
}

// AddConnection joins two nodes that are both live on the canvas and returns
// the connection's fresh identity. The session does not consult the rule
// engine here: callers presenting a connection UI validate with pkg/rules
// first, and directly-specified connections are trusted.
func (s *Session) AddConnection(sourceID, targetID, kindID string) (string, bool) {
	s.mu.Lock()
	if !s.initialized || !s.surface.HasNode(sourceID) || !s.surface.HasNode(targetID) {
		s.mu.Unlock()
		return "", false
	}

	id := newID()
	if err := s.surface.AddConnection(id, sourceID, targetID, kindID); err != nil {
		s.mu.Unlock()
		return "", false
	}
	s.connections[id] = topology.Connection{
		ID:       id,
		SourceID: sourceID,
		TargetID: targetID,
		KindID:   kindID,
	}
	s.connOrder = append(s.connOrder, id)
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return id, true
}

// RemoveConnection removes a single connection.
func (s *Session) RemoveConnection(id string) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.connections[id]; !known {
		s.mu.Unlock()
		return false
	}
	s.surface.RemoveConnection(id)
	s.deleteConnection(id)
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// SetNodeLabel updates a node's display label.
func (s *Session) SetNodeLabel(id, label string) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.nodeTypes[id]; !known {
		s.mu.Unlock()
		return false
	}
	s.nodeLabels[id] = label
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// SetNodeProperties replaces a node's property bag with a copy of props.
func (s *Session) SetNodeProperties(id string, props map[string]any) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.nodeTypes[id]; !known {
		s.mu.Unlock()
		return false
	}
	s.nodeProps[id] = topology.CloneProperties(props)
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// SetNodeProperty sets a single property on a node.
func (s *Session) SetNodeProperty(id, key string, value any) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.nodeTypes[id]; !known {
		s.mu.Unlock()
		return false
	}
	if s.nodeProps[id] == nil {
		s.nodeProps[id] = make(map[string]any)
	}
	s.nodeProps[id][key] = value
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// SetNodeCompartment assigns a node to a compartment, or to the root when
// compartmentID is empty. The compartment must exist.
func (s *Session) SetNodeCompartment(nodeID, compartmentID string) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.nodeTypes[nodeID]; !known {
		s.mu.Unlock()
		return false
	}
	if compartmentID != "" {
		if _, known := s.compartments[compartmentID]; !known {
			s.mu.Unlock()
			return false
		}
	}
	if compartmentID == "" {
		delete(s.nodeCompartments, nodeID)
	} else {
		s.nodeCompartments[nodeID] = compartmentID
	}
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// NodeLabel returns a node's display label.
func (s *Session) NodeLabel(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, ok := s.nodeLabels[id]
	return label, ok
}

// NodeProperties returns a copy of a node's property bag.
func (s *Session) NodeProperties(id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.nodeTypes[id]; !known {
		return nil, false
	}
	return topology.CloneProperties(s.nodeProps[id]), true
}

// NodeType returns a node's semantic type identity.
func (s *Session) NodeType(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	typeID, ok := s.nodeTypes[id]
	return typeID, ok
}

// Connection returns a connection by identity.
func (s *Session) Connection(id string) (topology.Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	return c, ok
}

// deleteConnection removes a connection from the side maps and its ordering
// slot. Caller holds the lock.
func (s *Session) deleteConnection(id string) {
	delete(s.connections, id)
	for i, other := range s.connOrder {
		if other == id {
			s.connOrder = append(s.connOrder[:i], s.connOrder[i+1:]...)
			break
		}
	}
}

// compactConnOrder drops ordering slots whose connection no longer exists.
// Caller holds the lock.
func (s *Session) compactConnOrder() {
	kept := s.connOrder[:0]
	for _, id := range s.connOrder {
		if _, ok := s.connections[id]; ok {
			kept = append(kept, id)
		}
	}
	s.connOrder = kept
}
