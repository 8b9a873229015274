package topology

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: "n1", TypeID: "core/vcn", Label: "hub", Position: Position{X: 10, Y: 20},
				Properties: map[string]any{"cidr_block": "10.0.0.0/16"}},
			{ID: "n2", TypeID: "core/subnet", Label: "app", Position: Position{X: 30, Y: 40},
				CompartmentID: "c1"},
		},
		Connections: []Connection{
			{ID: "e1", SourceID: "n2", TargetID: "n1", KindID: "routes_to"},
		},
		Compartments: []Compartment{
			{ID: "c1", Name: "network"},
		},
		Stacks: []StackInstance{
			{ID: "s1", Label: "audit", BlueprintID: "bp/audit", DependsOn: []string{"s2"},
				Parameters: map[string]ParameterOverride{"days": Explicit(float64(90))}},
			{ID: "s2", Label: "logging", BlueprintID: "bp/logging"},
		},
	}
}

func TestConnectionsTouching(t *testing.T) {
	g := sampleGraph()
	g.Connections = append(g.Connections,
		Connection{ID: "e2", SourceID: "n1", TargetID: "n3", KindID: "peers_with"},
		Connection{ID: "e3", SourceID: "n3", TargetID: "n4", KindID: "peers_with"},
	)

	touching := g.ConnectionsTouching("n1")
	if len(touching) != 2 {
		t.Fatalf("expected 2 connections touching n1, got %d", len(touching))
	}
	for _, c := range touching {
		if c.SourceID != "n1" && c.TargetID != "n1" {
			t.Errorf("connection %s does not touch n1", c.ID)
		}
	}

	if got := g.ConnectionsTouching("missing"); len(got) != 0 {
		t.Errorf("expected no connections for unknown node, got %d", len(got))
	}
}

func TestFindersReturnNilForUnknown(t *testing.T) {
	g := sampleGraph()
	if g.FindNode("nope") != nil {
		t.Error("FindNode should return nil for unknown id")
	}
	if g.FindCompartment("nope") != nil {
		t.Error("FindCompartment should return nil for unknown id")
	}
	if g.FindStack("nope") != nil {
		t.Error("FindStack should return nil for unknown id")
	}
	if n := g.FindNode("n2"); n == nil || n.Label != "app" {
		t.Errorf("FindNode(n2) = %+v", n)
	}
}

// Clone must be deep enough that mutating the copy's property bags and stack
// slices leaves the original untouched.
func TestCloneIsolation(t *testing.T) {
	g := sampleGraph()
	c := g.Clone()

	c.Nodes[0].Properties["cidr_block"] = "192.168.0.0/16"
	c.Stacks[0].DependsOn[0] = "other"
	c.Stacks[0].Parameters["days"] = Explicit(float64(7))

	if g.Nodes[0].Properties["cidr_block"] != "10.0.0.0/16" {
		t.Error("clone shares node property bag with original")
	}
	if g.Stacks[0].DependsOn[0] != "s2" {
		t.Error("clone shares stack dependency slice with original")
	}
	if g.Stacks[0].Parameters["days"].Value != float64(90) {
		t.Error("clone shares stack parameter map with original")
	}
}

// The empty graph serializes with arrays, not nulls; the portal backend
// rejects null collections.
func TestEmptyGraphWireShape(t *testing.T) {
	data, err := json.Marshal(New())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("empty graph must serialize without nulls, got %s", data)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := sampleGraph()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}

	var back Graph
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	if len(back.Nodes) != 2 || len(back.Connections) != 1 ||
		len(back.Compartments) != 1 || len(back.Stacks) != 2 {
		t.Fatalf("round trip lost entities: %+v", back)
	}
	ov := back.Stacks[0].Parameters["days"]
	if ov.Kind != OverrideExplicit || ov.Value != float64(90) {
		t.Errorf("explicit override did not survive round trip: %+v", ov)
	}
}

func TestParameterOverrideConstructors(t *testing.T) {
	ex := Explicit("10.0.0.0/16")
	if ex.Kind != OverrideExplicit || ex.Value != "10.0.0.0/16" || ex.TagKey != "" {
		t.Errorf("Explicit built %+v", ex)
	}

	ref := TagRef("finance.cost-center")
	if ref.Kind != OverrideTagRef || ref.TagKey != "finance.cost-center" || ref.Value != nil {
		t.Errorf("TagRef built %+v", ref)
	}
}

func TestPositionOffset(t *testing.T) {
	p := Position{X: 10, Y: -5}.Offset(48, 48)
	if p.X != 58 || p.Y != 43 {
		t.Errorf("got %+v", p)
	}
}
