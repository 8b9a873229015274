package editor

import (
	"testing"

	"github.com/hollisb/cirrus/pkg/topology"
)

func TestAddCompartmentParentMustExist(t *testing.T) {
	s, _ := newTestSession(t)

	if _, ok := s.AddCompartment("orphan", "ghost"); ok {
		t.Error("compartment under unknown parent should be rejected")
	}

	root, ok := s.AddCompartment("root", "")
	if !ok {
		t.Fatal("AddCompartment failed")
	}
	child, ok := s.AddCompartment("child", root)
	if !ok {
		t.Fatal("nested AddCompartment failed")
	}
	if c, _ := s.Compartment(child); c.ParentID != root {
		t.Errorf("child parent = %q, want %q", c.ParentID, root)
	}
}

func TestUpdateCompartmentRejectsCycles(t *testing.T) {
	s, _ := newTestSession(t)
	a, _ := s.AddCompartment("a", "")
	b, _ := s.AddCompartment("b", a)
	c, _ := s.AddCompartment("c", b)

	// a under its grandchild c would make a its own ancestor.
	if s.UpdateCompartment(topology.Compartment{ID: a, Name: "a", ParentID: c}) {
		t.Error("reparent closing a cycle was accepted")
	}
	// Self-parenting is the degenerate cycle.
	if s.UpdateCompartment(topology.Compartment{ID: a, Name: "a", ParentID: a}) {
		t.Error("self-parenting was accepted")
	}
	// Unknown parent.
	if s.UpdateCompartment(topology.Compartment{ID: a, Name: "a", ParentID: "ghost"}) {
		t.Error("reparent under unknown compartment was accepted")
	}

	// A legal rename+reparent still works.
	if !s.UpdateCompartment(topology.Compartment{ID: c, Name: "renamed", ParentID: a}) {
		t.Fatal("legal update rejected")
	}
	got, _ := s.Compartment(c)
	if got.Name != "renamed" || got.ParentID != a {
		t.Errorf("updated compartment = %+v", got)
	}
}

// Removing a compartment reparents its dependents to the root instead of
// deleting them: child compartments, member nodes, and stacks all survive.
func TestRemoveCompartmentReparents(t *testing.T) {
	s, _ := newTestSession(t)
	parent, _ := s.AddCompartment("parent", "")
	child, _ := s.AddCompartment("child", parent)

	node, _ := s.AddNode("net/vcn", topology.Position{})
	s.SetNodeCompartment(node, parent)

	stack, _ := s.AddStack(topology.StackInstance{BlueprintID: "bp", CompartmentID: parent})

	if !s.RemoveCompartment(parent) {
		t.Fatal("RemoveCompartment failed")
	}

	if _, ok := s.Compartment(parent); ok {
		t.Error("compartment still present")
	}
	if c, _ := s.Compartment(child); c.ParentID != "" {
		t.Errorf("child not reparented to root: %+v", c)
	}
	if _, ok := s.NodeLabel(node); !ok {
		t.Fatal("member node was deleted")
	}
	if g := s.Serialize(); g.Nodes[0].CompartmentID != "" {
		t.Error("member node still references the removed compartment")
	}
	if st, _ := s.Stack(stack); st.CompartmentID != "" {
		t.Errorf("stack still references the removed compartment: %+v", st)
	}
}

func TestRemoveCompartmentClearsItsSelection(t *testing.T) {
	s, _ := newTestSession(t)
	id, _ := s.AddCompartment("x", "")
	s.SelectCompartment(id)

	s.RemoveCompartment(id)
	if !s.Selection().IsNone() {
		t.Error("selection survived removal of the selected compartment")
	}
}

func TestCompartmentsReturnsCreationOrder(t *testing.T) {
	s, _ := newTestSession(t)
	a, _ := s.AddCompartment("a", "")
	b, _ := s.AddCompartment("b", "")
	c, _ := s.AddCompartment("c", "")
	s.RemoveCompartment(b)

	got := s.Compartments()
	if len(got) != 2 || got[0].ID != a || got[1].ID != c {
		t.Errorf("unexpected order: %+v", got)
	}
}
