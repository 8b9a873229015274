package topology

// Graph is the top-level serializable unit: every node, connection,
// compartment, and stack instance of one topology. No two entities anywhere
// in a graph share an identity string. Node order is meaningful and matches
// canvas insertion order.
type Graph struct {
	Nodes        []Node          `json:"nodes"`
	Connections  []Connection    `json:"connections"`
	Compartments []Compartment   `json:"compartments"`
	Stacks       []StackInstance `json:"stacks"`
}

// New creates an empty graph with all slices initialized, so the zero wire
// shape serializes as empty arrays rather than nulls.
func New() *Graph {
	return &Graph{
		Nodes:        []Node{},
		Connections:  []Connection{},
		Compartments: []Compartment{},
		Stacks:       []StackInstance{},
	}
}

// FindNode returns the node with the given identity, or nil.
func (g *Graph) FindNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// FindCompartment returns the compartment with the given identity, or nil.
func (g *Graph) FindCompartment(id string) *Compartment {
	for i := range g.Compartments {
		if g.Compartments[i].ID == id {
			return &g.Compartments[i]
		}
	}
	return nil
}

// FindStack returns the stack instance with the given identity, or nil.
func (g *Graph) FindStack(id string) *StackInstance {
	for i := range g.Stacks {
		if g.Stacks[i].ID == id {
			return &g.Stacks[i]
		}
	}
	return nil
}

// ConnectionsTouching returns every connection whose source or target is the
// given node identity.
func (g *Graph) ConnectionsTouching(nodeID string) []Connection {
	var out []Connection
	for _, c := range g.Connections {
		if c.SourceID == nodeID || c.TargetID == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of the graph. Property bags are copied one level
// deep, which is sufficient for the JSON-shaped values the editor stores.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes:        make([]Node, len(g.Nodes)),
		Connections:  make([]Connection, len(g.Connections)),
		Compartments: make([]Compartment, len(g.Compartments)),
		Stacks:       make([]StackInstance, len(g.Stacks)),
	}
	copy(out.Connections, g.Connections)
	copy(out.Compartments, g.Compartments)
	for i, n := range g.Nodes {
		n.Properties = CloneProperties(n.Properties)
		out.Nodes[i] = n
	}
	for i, s := range g.Stacks {
		s.DependsOn = append([]string(nil), s.DependsOn...)
		s.Parameters = CloneParameters(s.Parameters)
		out.Stacks[i] = s
	}
	return out
}

// CloneProperties copies a property bag. A nil bag stays nil.
func CloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// CloneParameters copies a stack parameter-override map. A nil map stays nil.
func CloneParameters(params map[string]ParameterOverride) map[string]ParameterOverride {
	if params == nil {
		return nil
	}
	out := make(map[string]ParameterOverride, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
