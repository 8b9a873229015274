package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/hollisb/cirrus/pkg/canvas/headless"
	"github.com/hollisb/cirrus/pkg/editor"
	"github.com/hollisb/cirrus/pkg/topology"
)

// newTestApp wires the app to a headless canvas instead of the Wails
// webview, which is the only difference from the production startup path.
func newTestApp(t *testing.T) *App {
	t.Helper()
	app := NewApp()
	if err := app.session.Init(headless.New(), app.types); err != nil {
		t.Fatalf("session init: %v", err)
	}
	t.Cleanup(app.session.Destroy)
	return app
}

// TestE2ELandingZoneExample exercises the full pipeline: console script →
// script engine → editor session → serialized graph. This is the same path
// the RunScript and SerializeGraph bindings take, but without the Wails
// runtime.
func TestE2ELandingZoneExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/landing_zone.cirrus")
	if err != nil {
		t.Fatalf("failed to read landing_zone.cirrus: %v", err)
	}

	result := app.RunScript(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	data, err := app.SerializeGraph()
	if err != nil {
		t.Fatalf("SerializeGraph: %v", err)
	}
	var g topology.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		t.Fatalf("serialized graph is not valid JSON: %v", err)
	}

	if len(g.Nodes) != 5 {
		t.Errorf("expected 5 nodes, got %d", len(g.Nodes))
	}
	if len(g.Connections) != 3 {
		t.Errorf("expected 3 connections, got %d", len(g.Connections))
	}
	if len(g.Compartments) != 3 {
		t.Errorf("expected 3 compartments, got %d", len(g.Compartments))
	}
	if len(g.Stacks) != 2 {
		t.Errorf("expected 2 stacks, got %d", len(g.Stacks))
	}

	// Spot-check the audit stack's overrides and dependency.
	var audit *topology.StackInstance
	for i := range g.Stacks {
		if g.Stacks[i].Label == "audit" {
			audit = &g.Stacks[i]
		}
	}
	if audit == nil {
		t.Fatal("audit stack missing from serialized graph")
	}
	if len(audit.DependsOn) != 1 {
		t.Errorf("audit.DependsOn = %v", audit.DependsOn)
	}
	if audit.Parameters["retention_days"].Value != float64(90) {
		t.Errorf("retention_days = %+v", audit.Parameters["retention_days"])
	}
	if audit.Parameters["cost_center"].TagKey != "finance.cost-center" {
		t.Errorf("cost_center = %+v", audit.Parameters["cost_center"])
	}

	// The serialized graph must load back without warnings.
	load := app.LoadGraph(data)
	if load.Error != "" || len(load.Warnings) != 0 {
		t.Errorf("round-trip load: error=%q warnings=%v", load.Error, load.Warnings)
	}
	again, err := app.SerializeGraph()
	if err != nil {
		t.Fatalf("SerializeGraph after reload: %v", err)
	}
	var g2 topology.Graph
	if err := json.Unmarshal([]byte(again), &g2); err != nil {
		t.Fatal(err)
	}
	if len(g2.Nodes) != len(g.Nodes) || len(g2.Connections) != len(g.Connections) ||
		len(g2.Compartments) != len(g.Compartments) || len(g2.Stacks) != len(g.Stacks) {
		t.Error("second round trip changed entity counts")
	}
}

func TestE2EInteractiveEditing(t *testing.T) {
	app := newTestApp(t)

	vcn := app.AddResource("core/vcn", 100, 100)
	subnet := app.AddResource("core/subnet", 100, 260)
	if vcn == "" || subnet == "" {
		t.Fatal("AddResource failed")
	}

	// The kind picker flow: check first, then connect with a listed kind.
	check := app.CheckConnection(subnet, vcn)
	if !check.Allowed || len(check.Kinds) == 0 {
		t.Fatalf("CheckConnection = %+v", check)
	}
	conn := app.Connect(subnet, vcn, check.Kinds[0].ID)
	if !conn.Allowed || conn.ConnectionID == "" {
		t.Fatalf("Connect = %+v", conn)
	}

	// A kind outside the permitted set is refused with a message.
	refused := app.Connect(subnet, vcn, "peers_with")
	if refused.Allowed || refused.Message == "" {
		t.Errorf("Connect with disallowed kind = %+v", refused)
	}

	// Clipboard through the bindings.
	if !app.SelectNode(vcn) || !app.Copy() {
		t.Fatal("select/copy failed")
	}
	pasted := app.Paste()
	if pasted == "" || pasted == vcn {
		t.Fatalf("Paste returned %q", pasted)
	}

	// Compartment lifecycle through the bindings.
	comp := app.AddCompartment("network", "")
	if comp == "" {
		t.Fatal("AddCompartment failed")
	}
	if !app.SetNodeCompartment(vcn, comp) {
		t.Fatal("SetNodeCompartment failed")
	}
	if !app.RemoveCompartment(comp) {
		t.Fatal("RemoveCompartment failed")
	}

	// Removing the vcn cascades its connection.
	if !app.RemoveNode(vcn) {
		t.Fatal("RemoveNode failed")
	}
	data, _ := app.SerializeGraph()
	var g topology.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		t.Fatal(err)
	}
	if len(g.ConnectionsTouching(vcn)) != 0 {
		t.Error("dangling connection survived node removal")
	}
	if g.FindNode(pasted) == nil {
		t.Error("pasted node missing after unrelated removal")
	}
}

// A plain paste lands closer to the original than a duplicate, so the two
// gestures are visually distinguishable on the canvas.
func TestPasteAndDuplicateOffsetsDiffer(t *testing.T) {
	app := newTestApp(t)

	src := app.AddResource("core/vcn", 0, 0)
	if !app.SelectNode(src) || !app.Copy() {
		t.Fatal("select/copy failed")
	}

	pasted := app.Paste()
	if pasted == "" {
		t.Fatal("Paste failed")
	}

	if !app.SelectNode(src) {
		t.Fatal("reselect failed")
	}
	duplicated := app.Duplicate()
	if duplicated == "" {
		t.Fatal("Duplicate failed")
	}

	data, err := app.SerializeGraph()
	if err != nil {
		t.Fatal(err)
	}
	var g topology.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		t.Fatal(err)
	}

	p := g.FindNode(pasted)
	if p.Position.X != editor.PasteOffset || p.Position.Y != editor.PasteOffset {
		t.Errorf("pasted node at %+v, want offset %d", p.Position, editor.PasteOffset)
	}
	d := g.FindNode(duplicated)
	if d.Position.X != editor.DuplicateOffset || d.Position.Y != editor.DuplicateOffset {
		t.Errorf("duplicated node at %+v, want offset %d", d.Position, editor.DuplicateOffset)
	}
	if p.Position == d.Position {
		t.Error("paste and duplicate landed on the same spot")
	}
}

func TestCatalogBindings(t *testing.T) {
	app := newTestApp(t)

	if len(app.ResourceTypes()) == 0 {
		t.Error("ResourceTypes returned nothing")
	}
	kinds := app.RelationshipKinds()
	if len(kinds) == 0 {
		t.Fatal("RelationshipKinds returned nothing")
	}
	for _, k := range kinds {
		if k.ID == "" || k.DisplayName == "" {
			t.Errorf("incomplete kind %+v", k)
		}
	}
}
