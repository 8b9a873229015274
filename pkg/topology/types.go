package topology

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// Position is a 2-D canvas coordinate in diagram units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset returns the position shifted by dx and dy.
func (p Position) Offset(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// ---------------------------------------------------------------------------
// Nodes and connections
// ---------------------------------------------------------------------------

// Node represents one resource instance on the canvas.
type Node struct {
	ID            string         `json:"id"`
	TypeID        string         `json:"type_id"`                  // semantic type, resolved externally
	Label         string         `json:"label"`
	Position      Position       `json:"position"`
	Properties    map[string]any `json:"properties,omitempty"`     // type defaults + user configuration
	CompartmentID string         `json:"compartment_id,omitempty"` // empty = unassigned/root
}

// Connection is a directed edge between two node identities. KindID names a
// relationship kind from the external catalog; Label is optional display text.
type Connection struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	KindID   string `json:"kind_id"`
	Label    string `json:"label,omitempty"`
}

// ---------------------------------------------------------------------------
// Compartments
// ---------------------------------------------------------------------------

// Compartment is a named grouping container. Compartments form a forest:
// ParentID may reference another compartment but never a descendant of
// itself. An empty ParentID means the compartment sits at the root.
type Compartment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// ---------------------------------------------------------------------------
// Stack instances and parameter overrides
// ---------------------------------------------------------------------------

// OverrideKind distinguishes the two ways a blueprint parameter can be
// overridden.
type OverrideKind string

const (
	// OverrideExplicit carries a literal value.
	OverrideExplicit OverrideKind = "explicit"
	// OverrideTagRef carries a key resolved against deployment-time tags.
	OverrideTagRef OverrideKind = "tag_ref"
)

// ParameterOverride is a tagged choice between a literal value and a
// tag-resolved reference. A parameter with no override entry uses the
// blueprint default.
type ParameterOverride struct {
	Kind   OverrideKind `json:"kind"`
	Value  any          `json:"value,omitempty"`   // set when Kind == OverrideExplicit
	TagKey string       `json:"tag_key,omitempty"` // set when Kind == OverrideTagRef
}

// Explicit builds an explicit-value override.
func Explicit(value any) ParameterOverride {
	return ParameterOverride{Kind: OverrideExplicit, Value: value}
}

// TagRef builds a tag-reference override.
func TagRef(key string) ParameterOverride {
	return ParameterOverride{Kind: OverrideTagRef, TagKey: key}
}

// StackInstance is an instantiation of a reusable blueprint within the graph.
// DependsOn lists other stack instance identities and never contains the
// instance's own identity.
type StackInstance struct {
	ID            string                       `json:"id"`
	Label         string                       `json:"label"`
	Position      Position                     `json:"position"`
	BlueprintID   string                       `json:"blueprint_id"`
	CompartmentID string                       `json:"compartment_id,omitempty"`
	DependsOn     []string                     `json:"depends_on,omitempty"`
	Parameters    map[string]ParameterOverride `json:"parameters,omitempty"`
}
