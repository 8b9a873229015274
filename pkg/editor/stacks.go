package editor

import "github.com/hollisb/cirrus/pkg/topology"

// AddStack creates a stack instance and returns its fresh identity. The
// dependency list is sanitized: the new identity can obviously not appear in
// it, unknown stack identities are rejected, and a list that would close a
// dependency cycle is rejected.
func (s *Session) AddStack(st topology.StackInstance) (string, bool) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return "", false
	}

	st.ID = newID()
	deps, ok := s.sanitizeStackDeps(st.ID, st.DependsOn)
	if !ok {
		s.mu.Unlock()
		return "", false
	}
	st.DependsOn = deps
	st.Parameters = topology.CloneParameters(st.Parameters)

	s.stacks[st.ID] = st
	s.stackOrder = append(s.stackOrder, st.ID)
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return st.ID, true
}

// UpdateStack replaces an existing stack instance. Self-references are
// stripped from the dependency list; updates that would close a dependency
// cycle are rejected.
func (s *Session) UpdateStack(st topology.StackInstance) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.stacks[st.ID]; !known {
		s.mu.Unlock()
		return false
	}
	deps, ok := s.sanitizeStackDeps(st.ID, st.DependsOn)
	if !ok {
		s.mu.Unlock()
		return false
	}
	st.DependsOn = deps
	st.Parameters = topology.CloneParameters(st.Parameters)

	s.stacks[st.ID] = st
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// RemoveStack deletes a stack instance and strips its identity from every
// remaining instance's dependency list.
func (s *Session) RemoveStack(id string) bool {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return false
	}
	if _, known := s.stacks[id]; !known {
		s.mu.Unlock()
		return false
	}

	delete(s.stacks, id)
	for i, other := range s.stackOrder {
		if other == id {
			s.stackOrder = append(s.stackOrder[:i], s.stackOrder[i+1:]...)
			break
		}
	}
	for sid, st := range s.stacks {
		kept := st.DependsOn[:0]
		for _, dep := range st.DependsOn {
			if dep != id {
				kept = append(kept, dep)
			}
		}
		st.DependsOn = kept
		s.stacks[sid] = st
	}

	if s.selection.Kind == SelectionStack && s.selection.ID == id {
		s.selection = Selection{}
	}
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return true
}

// Stack returns a copy of a stack instance by identity. The dependency list
// and parameter map are copies too; mutate and hand back via UpdateStack.
func (s *Session) Stack(id string) (topology.StackInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stacks[id]
	if !ok {
		return topology.StackInstance{}, false
	}
	return cloneStack(st), true
}

// Stacks returns copies of all stack instances in creation order.
func (s *Session) Stacks() []topology.StackInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]topology.StackInstance, 0, len(s.stackOrder))
	for _, id := range s.stackOrder {
		out = append(out, cloneStack(s.stacks[id]))
	}
	return out
}

// cloneStack copies a stack instance's owned collections.
func cloneStack(st topology.StackInstance) topology.StackInstance {
	st.DependsOn = append([]string(nil), st.DependsOn...)
	st.Parameters = topology.CloneParameters(st.Parameters)
	return st
}

// sanitizeStackDeps drops self-references and duplicates from deps, rejects
// unknown stack identities, and rejects lists that would close a dependency
// cycle. Caller holds the lock.
func (s *Session) sanitizeStackDeps(id string, deps []string) ([]string, bool) {
	var clean []string
	seen := make(map[string]bool)
	for _, dep := range deps {
		if dep == id || seen[dep] {
			continue
		}
		if _, known := s.stacks[dep]; !known {
			return nil, false
		}
		seen[dep] = true
		clean = append(clean, dep)
	}
	if s.stackDepsReach(id, clean) {
		return nil, false
	}
	return clean, true
}

// stackDepsReach reports whether any of deps can reach id through the
// existing dependency lists, which would make the assignment cyclic.
// Caller holds the lock.
func (s *Session) stackDepsReach(id string, deps []string) bool {
	visited := make(map[string]bool)
	stack := append([]string(nil), deps...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if st, ok := s.stacks[cur]; ok {
			stack = append(stack, st.DependsOn...)
		}
	}
	return false
}
