// Package catalog defines the semantic-type and relationship-kind vocabulary
// the editor resolves against. Catalog data is supplied by the host (portal
// backend, bundled fixtures) once per session; the editor never mutates it.
package catalog

// PropertySchema describes one configurable property of a resource type.
// Default, when non-nil, seeds the property bag of newly created nodes.
type PropertySchema struct {
	Name    string `json:"name"`
	Default any    `json:"default,omitempty"`
}

// ResourceType is a catalog entry describing a resource kind: display
// metadata, configurable-property schema, and the relationship kinds its
// instances may participate in. An empty AllowedKinds list means the type is
// unrestricted. Entries in AllowedKinds may carry either a kind identity or
// a kind display name; callers must accept both.
type ResourceType struct {
	ID           string           `json:"id"`
	DisplayName  string           `json:"display_name"`
	Icon         string           `json:"icon,omitempty"`
	Properties   []PropertySchema `json:"properties,omitempty"`
	AllowedKinds []string         `json:"allowed_kinds,omitempty"`
}

// Unrestricted reports whether the type carries no relationship restriction.
func (t ResourceType) Unrestricted() bool {
	return len(t.AllowedKinds) == 0
}

// DefaultProperties builds a property bag from the schema entries that carry
// a non-nil default value.
func (t ResourceType) DefaultProperties() map[string]any {
	props := make(map[string]any)
	for _, p := range t.Properties {
		if p.Default != nil {
			props[p.Name] = p.Default
		}
	}
	return props
}

// RelationshipKind is a named, directed category of connection between two
// resource instances, e.g. "routes_to".
type RelationshipKind struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Catalog is an immutable lookup over resource types.
type Catalog struct {
	types map[string]ResourceType
	order []string
}

// New builds a catalog from a list of resource types. Later entries with a
// duplicate identity overwrite earlier ones.
func New(types []ResourceType) *Catalog {
	c := &Catalog{types: make(map[string]ResourceType, len(types))}
	for _, t := range types {
		if _, seen := c.types[t.ID]; !seen {
			c.order = append(c.order, t.ID)
		}
		c.types[t.ID] = t
	}
	return c
}

// TypeByID returns the resource type with the given identity.
func (c *Catalog) TypeByID(id string) (ResourceType, bool) {
	t, ok := c.types[id]
	return t, ok
}

// Types returns all resource types in registration order.
func (c *Catalog) Types() []ResourceType {
	out := make([]ResourceType, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.types[id])
	}
	return out
}

// Len returns the number of resource types in the catalog.
func (c *Catalog) Len() int {
	return len(c.types)
}
