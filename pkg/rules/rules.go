// Package rules decides whether two typed endpoints may be joined by a given
// relationship kind. The check is a pure function over catalog data: it has
// no state and no failure modes beyond returning a structured negative
// result, so callers can run it speculatively while the user drags a
// connection.
package rules

import (
	"fmt"

	"github.com/hollisb/cirrus/pkg/catalog"
)

// Result is the outcome of a connection rule check. When Allowed is false,
// Kinds is empty and Message explains why. When Allowed is true, Kinds holds
// the relationship kinds permitted between the two endpoints, in catalog
// order, for the caller's kind-selection UI.
type Result struct {
	Allowed bool
	Kinds   []catalog.RelationshipKind
	Message string
}

// Check computes the subset of relationship kinds permitted between a source
// and a target endpoint. A nil endpoint type means the endpoint could not be
// resolved against the catalog and yields a negative result. A type with no
// restriction list is unrestricted; restriction entries are matched against
// each kind's identity or display name, since caller data may carry either.
func Check(source, target *catalog.ResourceType, kinds []catalog.RelationshipKind) Result {
	if source == nil || target == nil {
		return Result{Message: "connection endpoints could not be resolved against the type catalog"}
	}

	var permitted []catalog.RelationshipKind
	for _, kind := range kinds {
		if typeAccepts(*source, kind) && typeAccepts(*target, kind) {
			permitted = append(permitted, kind)
		}
	}

	if len(permitted) == 0 {
		return Result{
			Message: fmt.Sprintf("no relationship kinds are permitted between %q and %q",
				source.DisplayName, target.DisplayName),
		}
	}
	return Result{Allowed: true, Kinds: permitted}
}

// typeAccepts reports whether the type's restriction list admits the kind.
// An unrestricted type admits every kind.
func typeAccepts(t catalog.ResourceType, kind catalog.RelationshipKind) bool {
	if t.Unrestricted() {
		return true
	}
	for _, entry := range t.AllowedKinds {
		if entry == kind.ID || entry == kind.DisplayName {
			return true
		}
	}
	return false
}
