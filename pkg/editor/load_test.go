package editor

import (
	"strings"
	"testing"

	"github.com/hollisb/cirrus/pkg/topology"
)

func loadFixture() *topology.Graph {
	return &topology.Graph{
		Nodes: []topology.Node{
			{ID: "n1", TypeID: "net/vcn", Label: "hub", Position: topology.Position{X: 10, Y: 20},
				Properties: map[string]any{"cidr_block": "10.0.0.0/16"}, CompartmentID: "c1"},
			{ID: "n2", TypeID: "net/subnet", Position: topology.Position{X: 30, Y: 40}},
		},
		Connections: []topology.Connection{
			{ID: "e1", SourceID: "n2", TargetID: "n1", KindID: "routes_to"},
		},
		Compartments: []topology.Compartment{
			{ID: "c1", Name: "network"},
			{ID: "c2", Name: "workloads", ParentID: "c1"},
		},
		Stacks: []topology.StackInstance{
			{ID: "s1", Label: "audit", BlueprintID: "bp/audit", DependsOn: []string{"s2"},
				Parameters: map[string]topology.ParameterOverride{"days": topology.Explicit(float64(30))}},
			{ID: "s2", Label: "logging", BlueprintID: "bp/logging"},
		},
	}
}

func TestLoadSerializeRoundTrip(t *testing.T) {
	s, surface := newTestSession(t)

	warnings := s.Load(loadFixture())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if surface.ZoomCalls() != 1 {
		t.Errorf("expected one framing call after load, got %d", surface.ZoomCalls())
	}

	g := s.Serialize()

	if len(g.Nodes) != 2 || g.Nodes[0].ID != "n1" || g.Nodes[1].ID != "n2" {
		t.Fatalf("nodes did not round trip in order: %+v", g.Nodes)
	}
	n1 := g.FindNode("n1")
	if n1.Label != "hub" || n1.CompartmentID != "c1" ||
		n1.Position.X != 10 || n1.Properties["cidr_block"] != "10.0.0.0/16" {
		t.Errorf("n1 did not round trip: %+v", n1)
	}
	// A node loaded without a label picks up the type's display name.
	if n2 := g.FindNode("n2"); n2.Label != "Subnet" {
		t.Errorf("n2 label = %q, want display-name fallback", n2.Label)
	}

	if len(g.Connections) != 1 || g.Connections[0].ID != "e1" || g.Connections[0].KindID != "routes_to" {
		t.Errorf("connections did not round trip: %+v", g.Connections)
	}
	if len(g.Compartments) != 2 || g.Compartments[1].ParentID != "c1" {
		t.Errorf("compartments did not round trip: %+v", g.Compartments)
	}
	if len(g.Stacks) != 2 || g.Stacks[0].DependsOn[0] != "s2" ||
		g.Stacks[0].Parameters["days"].Value != float64(30) {
		t.Errorf("stacks did not round trip: %+v", g.Stacks)
	}
}

func TestLoadReplacesPriorState(t *testing.T) {
	s, surface := newTestSession(t)
	old, _ := s.AddNode("compute/vm", topology.Position{})
	s.SelectNode(old)

	s.Load(loadFixture())

	if surface.HasNode(old) {
		t.Error("pre-load node survived on the canvas")
	}
	if _, ok := s.NodeLabel(old); ok {
		t.Error("pre-load node survived in the side maps")
	}
	if !s.Selection().IsNone() {
		t.Error("selection survived a load")
	}
}

// The clipboard deliberately survives a load, so copy in one topology and
// paste into another works.
func TestClipboardSurvivesLoad(t *testing.T) {
	s, _ := newTestSession(t)
	src, _ := s.AddNode("net/vcn", topology.Position{})
	s.SelectNode(src)
	s.Copy()

	s.Load(loadFixture())

	if !s.HasClipboard() {
		t.Fatal("clipboard did not survive the load")
	}
	if _, ok := s.Paste(0, 0); !ok {
		t.Error("paste after load failed")
	}
}

func TestLoadDropsDanglingConnections(t *testing.T) {
	s, surface := newTestSession(t)

	g := loadFixture()
	g.Connections = append(g.Connections,
		topology.Connection{ID: "bad", SourceID: "n1", TargetID: "ghost", KindID: "routes_to"})

	warnings := s.Load(g)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if warnings[0].EntityID != "bad" || !strings.Contains(warnings[0].Message, "missing endpoint") {
		t.Errorf("unexpected warning: %+v", warnings[0])
	}
	if surface.ConnectionCount() != 1 {
		t.Errorf("canvas has %d connections, want 1", surface.ConnectionCount())
	}
	if _, ok := s.Connection("bad"); ok {
		t.Error("dangling connection was recorded anyway")
	}
}

func TestLoadWarnsOnUnresolvedType(t *testing.T) {
	s, _ := newTestSession(t)

	g := &topology.Graph{Nodes: []topology.Node{
		{ID: "n1", TypeID: "mystery/widget"},
	}}
	warnings := s.Load(g)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	// The node is still usable, labeled by its raw type identity.
	if label, _ := s.NodeLabel("n1"); label != "mystery/widget" {
		t.Errorf("label = %q", label)
	}
}

func TestLoadWarnsOnDuplicateIdentities(t *testing.T) {
	s, _ := newTestSession(t)

	g := loadFixture()
	g.Compartments = append(g.Compartments, topology.Compartment{ID: "c1", Name: "shadow"})
	g.Stacks = append(g.Stacks, topology.StackInstance{ID: "s1", Label: "shadow"})

	warnings := s.Load(g)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	// First entries win.
	if c, _ := s.Compartment("c1"); c.Name != "network" {
		t.Errorf("compartment c1 = %+v", c)
	}
	if st, _ := s.Stack("s1"); st.Label != "audit" {
		t.Errorf("stack s1 = %+v", st)
	}
}

func TestLoadNilGraphClears(t *testing.T) {
	s, _ := newTestSession(t)
	s.AddNode("net/vcn", topology.Position{})

	if warnings := s.Load(nil); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if g := s.Serialize(); len(g.Nodes) != 0 {
		t.Error("nil load did not clear the session")
	}
}

// Serialize is a pure read: the returned graph shares no mutable state with
// the session, so callers can rewrite it freely.
func TestSerializeIsPureRead(t *testing.T) {
	s, _ := newTestSession(t)
	s.Load(loadFixture())

	g := s.Serialize()
	g.Stacks[0].Parameters["days"] = topology.Explicit(float64(999))
	g.Stacks[0].DependsOn[0] = "tampered"
	g.Nodes[0].Properties["cidr_block"] = "0.0.0.0/0"

	st, _ := s.Stack("s1")
	if st.Parameters["days"].Value != float64(30) {
		t.Errorf("external mutation of the serialized graph reached session state: %+v", st.Parameters["days"])
	}
	if st.DependsOn[0] != "s2" {
		t.Errorf("serialized DependsOn aliases session state: %v", st.DependsOn)
	}
	if props, _ := s.NodeProperties("n1"); props["cidr_block"] != "10.0.0.0/16" {
		t.Error("serialized property bag aliases session state")
	}
}

// Serialize emits arrays even when empty, and never dangling references.
func TestSerializeEmptySession(t *testing.T) {
	s, _ := newTestSession(t)
	g := s.Serialize()
	if g.Nodes == nil || g.Connections == nil || g.Compartments == nil || g.Stacks == nil {
		t.Error("serialized collections must be non-nil")
	}
}
