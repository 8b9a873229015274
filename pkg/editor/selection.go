package editor

// SelectionKind enumerates what the session currently has selected. Exactly
// one entity (or nothing) is selected at a time; selecting one kind clears
// the other two.
type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionNode
	SelectionCompartment
	SelectionStack
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionNone:
		return "none"
	case SelectionNode:
		return "node"
	case SelectionCompartment:
		return "compartment"
	case SelectionStack:
		return "stack"
	default:
		return "unknown"
	}
}

// Selection is the session's current selection. The zero value means nothing
// is selected.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// IsNone reports whether nothing is selected.
func (sel Selection) IsNone() bool {
	return sel.Kind == SelectionNone
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SelectNode selects a node, clearing any compartment or stack selection.
// It returns false if the node does not exist.
func (s *Session) SelectNode(id string) bool {
	return s.setSelection(SelectionNode, id)
}

// SelectCompartment selects a compartment, clearing the other kinds.
func (s *Session) SelectCompartment(id string) bool {
	return s.setSelection(SelectionCompartment, id)
}

// SelectStack selects a stack instance, clearing the other kinds.
func (s *Session) SelectStack(id string) bool {
	return s.setSelection(SelectionStack, id)
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	if !s.initialized || s.selection.IsNone() {
		s.mu.Unlock()
		return
	}
	s.selection = Selection{}
	notify := s.bump()
	s.mu.Unlock()
	notify()
}

func (s *Session) setSelection(kind SelectionKind, id string) bool {
	s.mu.Lock()
	if !s.initialized || !s.entityExists(kind, id) {
		s.mu.Unlock()
		return false
	}
	s.selection = Selection{Kind: kind, ID: id}
	notify := s.bump()
	s.mu.Unlock()
	notify()
	return true
}

// entityExists checks the side map matching the selection kind. Caller holds
// the lock.
func (s *Session) entityExists(kind SelectionKind, id string) bool {
	switch kind {
	case SelectionNode:
		_, ok := s.nodeTypes[id]
		return ok
	case SelectionCompartment:
		_, ok := s.compartments[id]
		return ok
	case SelectionStack:
		_, ok := s.stacks[id]
		return ok
	default:
		return false
	}
}
