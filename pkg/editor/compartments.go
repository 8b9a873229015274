package editor

import "github.com/hollisb/cirrus/pkg/topology"

// AddCompartment creates a compartment and returns its fresh identity. An
// empty parentID places it at the root; a non-empty one must name an
// existing compartment.
func (s *Session) AddCompartment(name, parentID string) (string, bool) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return "", false
	}
	if parentID != "" {
		if _, known := s.compartments[parentID]; !known {
			s.mu.Unlock()
			return "", false
		}
	}

	id := newID()
	s.compartments[id] = topology.Compartment{ID: id, Name: name, ParentID: parentID}
	s.compartmentOrder = append(s.compartmentOrder, id)
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return id, true
}

// UpdateCompartment renames and/or reparents an existing compartment. A
// reparent that would make the compartment its own ancestor is rejected, so
// the forest invariant holds constructively.
func (s *Session) UpdateCompartment(c topology.Compartment) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.compartments[c.ID]; !known {
		s.mu.Unlock()
		return false
	}
	if c.ParentID != "" {
		if _, known := s.compartments[c.ParentID]; !known {
			s.mu.Unlock()
			return false
		}
		if s.isCompartmentAncestor(c.ID, c.ParentID) || c.ParentID == c.ID {
			s.mu.Unlock()
			return false
		}
	}
	s.compartments[c.ID] = c
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// RemoveCompartment deletes a compartment and reparents its dependents:
// child compartments and member nodes move to the root, never get deleted.
func (s *Session) RemoveCompartment(id string) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.compartments[id]; !known {
		s.mu.Unlock()
		return false
	}

	delete(s.compartments, id)
	for i, other := range s.compartmentOrder {
		if other == id {
			s.compartmentOrder = append(s.compartmentOrder[:i], s.compartmentOrder[i+1:]...)
			break
		}
	}
	for cid, c := range s.compartments {
		if c.ParentID == id {
			c.ParentID = ""
			s.compartments[cid] = c
		}
	}
	for nid, owner := range s.nodeCompartments {
		if owner == id {
			delete(s.nodeCompartments, nid)
		}
	}
	for sid, st := range s.stacks {
		if st.CompartmentID == id {
			st.CompartmentID = ""
			s.stacks[sid] = st
		}
	}

	if s.selection.Kind == SelectionCompartment && s.selection.ID == id {
		s.selection = Selection{}
	}
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// Compartment returns a compartment by identity.
func (s *Session) Compartment(id string) (topology.Compartment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.compartments[id]
	return c, ok
}

// Compartments returns all compartments in creation order.
func (s *Session) Compartments() []topology.Compartment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]topology.Compartment, 0, len(s.compartmentOrder))
	for _, id := range s.compartmentOrder {
		out = append(out, s.compartments[id])
	}
	return out
}

// isCompartmentAncestor reports whether id appears on candidate's ancestor
// chain, walking parent references. Caller holds the lock.
func (s *Session) isCompartmentAncestor(id, candidate string) bool {
	seen := make(map[string]bool)
	for cur := candidate; cur != ""; {
		if cur == id {
			return true
		}
		if seen[cur] {
			return false // pre-existing cycle; treat as not an ancestor
		}
		seen[cur] = true
		c, ok := s.compartments[cur]
		if !ok {
			return false
		}
		cur = c.ParentID
	}
	return false
}
