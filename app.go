package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/hollisb/cirrus/pkg/canvas/webview"
	"github.com/hollisb/cirrus/pkg/catalog"
	"github.com/hollisb/cirrus/pkg/editor"
	"github.com/hollisb/cirrus/pkg/rules"
	"github.com/hollisb/cirrus/pkg/script"
	"github.com/hollisb/cirrus/pkg/topology"
)

// graphChangedEvent is emitted to the frontend whenever the session mutates,
// so views outside the canvas (property panel, outline tree) can refresh.
const graphChangedEvent = "graph:changed"

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	session *editor.Session
	engine  *script.Engine
	types   *catalog.Catalog
	kinds   []catalog.RelationshipKind
}

// LoadResult is the JSON-serializable outcome of loading a graph.
type LoadResult struct {
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}

// ConnectResult reports a rule-checked connection attempt to the frontend.
type ConnectResult struct {
	ConnectionID string `json:"connectionId,omitempty"`
	Allowed      bool   `json:"allowed"`
	Message      string `json:"message,omitempty"`
}

// KindData is a JSON-serializable relationship kind for the frontend's
// kind picker.
type KindData struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RuleResult is the JSON-serializable rule-engine verdict for a candidate
// source/target pair.
type RuleResult struct {
	Allowed bool       `json:"allowed"`
	Kinds   []KindData `json:"kinds"`
	Message string     `json:"message,omitempty"`
}

// EvalErrorData is a JSON-serializable script error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ScriptResult is the full result of a console run returned to the frontend.
type ScriptResult struct {
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with an editor session, the bundled catalogs, and
// a script engine bound to both.
func NewApp() *App {
	session := editor.New()
	types := catalog.New(catalog.DefaultTypes())
	kinds := catalog.DefaultKinds()
	return &App{
		session: session,
		types:   types,
		kinds:   kinds,
		engine:  script.NewEngine(session, types, kinds),
	}
}

// startup is called by Wails on app startup. It wires the webview canvas to
// the session and forwards change notifications to the frontend.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if err := a.session.Init(webview.New(ctx), a.types); err != nil {
		log.Printf("session init: %v", err)
		return
	}
	a.session.OnChange(func() {
		runtime.EventsEmit(ctx, graphChangedEvent, a.session.Version())
	})
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	a.session.Destroy()
}

// ---------------------------------------------------------------------------
// Graph persistence
// ---------------------------------------------------------------------------

// LoadGraph replaces the session contents with the given serialized graph.
func (a *App) LoadGraph(data string) LoadResult {
	result := LoadResult{Warnings: []string{}}
	var g topology.Graph
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		log.Printf("LoadGraph: %v", err)
		result.Error = "malformed graph: " + err.Error()
		return result
	}
	for _, w := range a.session.Load(&g) {
		log.Printf("LoadGraph: %s", w)
		result.Warnings = append(result.Warnings, w.String())
	}
	return result
}

// SerializeGraph returns the current graph as JSON, the shape the portal
// persists.
func (a *App) SerializeGraph() (string, error) {
	data, err := json.Marshal(a.session.Serialize())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// ResourceTypes returns the resource-type catalog for the frontend palette.
func (a *App) ResourceTypes() []catalog.ResourceType {
	return a.types.Types()
}

// RelationshipKinds returns the relationship-kind catalog.
func (a *App) RelationshipKinds() []KindData {
	out := make([]KindData, 0, len(a.kinds))
	for _, k := range a.kinds {
		out = append(out, KindData{ID: k.ID, DisplayName: k.DisplayName})
	}
	return out
}

// ---------------------------------------------------------------------------
// Node and connection operations
// ---------------------------------------------------------------------------

// AddResource creates a node of the given type at the given position and
// returns its identity, or "" if the session is not live.
func (a *App) AddResource(typeID string, x, y float64) string {
	id, _ := a.session.AddNode(typeID, topology.Position{X: x, Y: y})
	return id
}

// RemoveNode removes a node and every connection touching it.
func (a *App) RemoveNode(id string) bool {
	return a.session.RemoveNode(id)
}

// SetNodeLabel renames a node.
func (a *App) SetNodeLabel(id, label string) bool {
	return a.session.SetNodeLabel(id, label)
}

// SetNodeProperty sets a single entry in a node's property bag.
func (a *App) SetNodeProperty(id, key string, value any) bool {
	return a.session.SetNodeProperty(id, key, value)
}

// SetNodeCompartment assigns a node to a compartment ("" unassigns).
func (a *App) SetNodeCompartment(nodeID, compartmentID string) bool {
	return a.session.SetNodeCompartment(nodeID, compartmentID)
}

// CheckConnection returns the relationship kinds permitted between two live
// nodes, for the frontend's kind picker.
func (a *App) CheckConnection(sourceID, targetID string) RuleResult {
	res := rules.Check(a.nodeType(sourceID), a.nodeType(targetID), a.kinds)
	out := RuleResult{Allowed: res.Allowed, Message: res.Message, Kinds: []KindData{}}
	for _, k := range res.Kinds {
		out.Kinds = append(out.Kinds, KindData{ID: k.ID, DisplayName: k.DisplayName})
	}
	return out
}

// Connect materializes a rule-checked connection between two nodes.
func (a *App) Connect(sourceID, targetID, kindID string) ConnectResult {
	res := rules.Check(a.nodeType(sourceID), a.nodeType(targetID), a.kinds)
	if !res.Allowed {
		return ConnectResult{Message: res.Message}
	}
	permitted := false
	for _, k := range res.Kinds {
		if k.ID == kindID || k.DisplayName == kindID {
			kindID = k.ID
			permitted = true
			break
		}
	}
	if !permitted {
		return ConnectResult{Message: "relationship kind " + kindID + " is not permitted between these types"}
	}
	id, ok := a.session.AddConnection(sourceID, targetID, kindID)
	if !ok {
		return ConnectResult{Message: "connection endpoints are not on the canvas"}
	}
	return ConnectResult{ConnectionID: id, Allowed: true}
}

// RemoveConnection removes one connection.
func (a *App) RemoveConnection(id string) bool {
	return a.session.RemoveConnection(id)
}

// nodeType resolves a live node's catalog entry, or nil when the node or its
// type is unknown.
func (a *App) nodeType(nodeID string) *catalog.ResourceType {
	typeID, ok := a.session.NodeType(nodeID)
	if !ok {
		return nil
	}
	t, ok := a.types.TypeByID(typeID)
	if !ok {
		return nil
	}
	return &t
}

// ---------------------------------------------------------------------------
// Compartments and stacks
// ---------------------------------------------------------------------------

// AddCompartment creates a compartment under the given parent ("" = root).
func (a *App) AddCompartment(name, parentID string) string {
	id, _ := a.session.AddCompartment(name, parentID)
	return id
}

// UpdateCompartment renames or reparents a compartment. Reparenting that
// would create a cycle is rejected.
func (a *App) UpdateCompartment(c topology.Compartment) bool {
	return a.session.UpdateCompartment(c)
}

// RemoveCompartment removes a compartment, reparenting its children and
// unassigning its members.
func (a *App) RemoveCompartment(id string) bool {
	return a.session.RemoveCompartment(id)
}

// AddStack places a stack instance and returns its identity.
func (a *App) AddStack(st topology.StackInstance) string {
	id, _ := a.session.AddStack(st)
	return id
}

// UpdateStack replaces a stack instance's mutable fields. Self- and cyclic
// dependencies are rejected.
func (a *App) UpdateStack(st topology.StackInstance) bool {
	return a.session.UpdateStack(st)
}

// RemoveStack removes a stack instance and strips it from every other
// instance's dependency list.
func (a *App) RemoveStack(id string) bool {
	return a.session.RemoveStack(id)
}

// ---------------------------------------------------------------------------
// Selection and clipboard
// ---------------------------------------------------------------------------

// SelectNode makes the node the sole selection.
func (a *App) SelectNode(id string) bool { return a.session.SelectNode(id) }

// SelectCompartment makes the compartment the sole selection.
func (a *App) SelectCompartment(id string) bool { return a.session.SelectCompartment(id) }

// SelectStack makes the stack instance the sole selection.
func (a *App) SelectStack(id string) bool { return a.session.SelectStack(id) }

// ClearSelection drops any selection.
func (a *App) ClearSelection() { a.session.ClearSelection() }

// RemoveSelected removes whatever is selected, with the kind's cascade.
func (a *App) RemoveSelected() bool { return a.session.RemoveSelected() }

// Copy snapshots the selected node into the clipboard.
func (a *App) Copy() bool { return a.session.Copy() }

// Cut snapshots the selected node and removes it.
func (a *App) Cut() bool { return a.session.Cut() }

// Paste materializes the clipboard at the plain-paste offset and returns the
// new node's identity.
func (a *App) Paste() string {
	id, _ := a.session.Paste(editor.PasteOffset, editor.PasteOffset)
	return id
}

// Duplicate is copy-then-paste without disturbing the clipboard.
func (a *App) Duplicate() string {
	id, _ := a.session.Duplicate()
	return id
}

// HasClipboard reports whether paste has anything to work with.
func (a *App) HasClipboard() bool { return a.session.HasClipboard() }

// ---------------------------------------------------------------------------
// Script console
// ---------------------------------------------------------------------------

// RunScript evaluates console source against the live session.
// This is the primary binding called by the frontend console.
func (a *App) RunScript(source string) ScriptResult {
	result := ScriptResult{Errors: []EvalErrorData{}}

	evalErrs, err := a.engine.Run(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded run).
		log.Printf("RunScript fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Message: e.Message})
	}
	return result
}
