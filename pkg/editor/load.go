package editor

import (
	"fmt"

	"github.com/hollisb/cirrus/pkg/topology"
)

// Warning reports a data-integrity gap the loader recovered from rather than
// failing over. The host decides whether to log or surface these.
type Warning struct {
	EntityID string
	Message  string
}

func (w Warning) String() string {
	if w.EntityID == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.EntityID, w.Message)
}

// Load replaces the session state with the given graph and rebuilds the
// canvas from scratch. Load is trusted: connections are not re-validated
// against the rule engine. Malformed pieces are recovered best-effort —
// a connection whose endpoint never materialized is dropped, a node with an
// unknown semantic type falls back to its raw type identity — and every such
// recovery is reported as a Warning. After the structural load the view is
// framed to show all nodes.
//
// The clipboard survives a Load; the selection does not.
func (s *Session) Load(g *topology.Graph) []Warning {
	if g == nil {
		g = topology.New()
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil
	}

	var warnings []Warning
	s.surface.Clear()
	s.reset()

	for _, c := range g.Compartments {
		if _, dup := s.compartments[c.ID]; dup {
			warnings = append(warnings, Warning{EntityID: c.ID, Message: "duplicate compartment identity; later entry ignored"})
			continue
		}
		s.compartments[c.ID] = c
		s.compartmentOrder = append(s.compartmentOrder, c.ID)
	}

	for _, st := range g.Stacks {
		if _, dup := s.stacks[st.ID]; dup {
			warnings = append(warnings, Warning{EntityID: st.ID, Message: "duplicate stack identity; later entry ignored"})
			continue
		}
		s.stacks[st.ID] = cloneStack(st)
		s.stackOrder = append(s.stackOrder, st.ID)
	}

	for _, n := range g.Nodes {
		label := n.Label
		icon := ""
		if t, ok := s.types.TypeByID(n.TypeID); ok {
			if label == "" {
				label = t.DisplayName
			}
			icon = t.Icon
		} else {
			if label == "" {
				label = n.TypeID
			}
			warnings = append(warnings, Warning{EntityID: n.ID, Message: fmt.Sprintf("unresolved semantic type %q", n.TypeID)})
		}
		if err := s.surface.AddNode(n.ID, label, icon, n.Position); err != nil {
			warnings = append(warnings, Warning{EntityID: n.ID, Message: "node could not be placed: " + err.Error()})
			continue
		}
		s.nodeTypes[n.ID] = n.TypeID
		s.nodeLabels[n.ID] = label
		s.nodeProps[n.ID] = topology.CloneProperties(n.Properties)
		if n.CompartmentID != "" {
			s.nodeCompartments[n.ID] = n.CompartmentID
		}
	}

	for _, c := range g.Connections {
		if !s.surface.HasNode(c.SourceID) || !s.surface.HasNode(c.TargetID) {
			// Deliberate best-effort recovery: a dangling connection is
			// dropped instead of failing the whole load.
			warnings = append(warnings, Warning{EntityID: c.ID, Message: fmt.Sprintf("dropped connection %s -> %s: missing endpoint", c.SourceID, c.TargetID)})
			continue
		}
		label := c.Label
		if label == "" {
			label = c.KindID
		}
		if err := s.surface.AddConnection(c.ID, c.SourceID, c.TargetID, label); err != nil {
			warnings = append(warnings, Warning{EntityID: c.ID, Message: "connection could not be placed: " + err.Error()})
			continue
		}
		s.connections[c.ID] = c
		s.connOrder = append(s.connOrder, c.ID)
	}

	s.surface.ZoomToFit()
	notify := s.bump()
	s.mu.Unlock()

	notify()
	return warnings
}

// Serialize reads the session state back into a graph for persistence. It is
// a pure read: node order follows the live canvas order, positions come from
// the canvas views (origin when a view has no recorded position), properties
// and compartment references come from the side maps, and a connection whose
// relationship kind was never recorded serializes with an empty kind — a
// data-integrity signal for upstream, not an error.
func (s *Session) Serialize() *topology.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := topology.New()
	if !s.initialized {
		return g
	}

	for _, id := range s.surface.NodeOrder() {
		typeID, known := s.nodeTypes[id]
		if !known {
			continue
		}
		pos := topology.Position{}
		if v, ok := s.surface.NodeView(id); ok {
			pos = v.Position
		}
		g.Nodes = append(g.Nodes, topology.Node{
			ID:            id,
			TypeID:        typeID,
			Label:         s.nodeLabels[id],
			Position:      pos,
			Properties:    topology.CloneProperties(s.nodeProps[id]),
			CompartmentID: s.nodeCompartments[id],
		})
	}
	for _, id := range s.connOrder {
		g.Connections = append(g.Connections, s.connections[id])
	}
	for _, id := range s.compartmentOrder {
		g.Compartments = append(g.Compartments, s.compartments[id])
	}
	for _, id := range s.stackOrder {
		g.Stacks = append(g.Stacks, cloneStack(s.stacks[id]))
	}
	return g
}
