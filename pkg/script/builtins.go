package script

import (
	"fmt"
	"strings"
	"sync/atomic"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/hollisb/cirrus/pkg/catalog"
	"github.com/hollisb/cirrus/pkg/rules"
	"github.com/hollisb/cirrus/pkg/topology"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing editor entities through the environment
// ---------------------------------------------------------------------------

// refKind tags what a scripting reference points at.
type refKind string

const (
	refNode        refKind = "node"
	refConnection  refKind = "connection"
	refCompartment refKind = "compartment"
	refStack       refKind = "stack"
)

// sexpRef wraps an entity identity so builtins can hand entities to each
// other without exposing raw strings.
type sexpRef struct {
	kind  refKind
	id    string
	label string
}

func (r *sexpRef) SexpString(ps *zygo.PrintState) string {
	if r.label != "" {
		return fmt.Sprintf("(%s %q)", r.kind, r.label)
	}
	return fmt.Sprintf("(%s %s)", r.kind, r.id)
}
func (r *sexpRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword and value extraction helpers
// ---------------------------------------------------------------------------

// kwArgs holds a parsed mixed positional+keyword argument list. Keywords are
// the string literals produced by preprocessSource.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	out := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if str, ok := args[i].(*zygo.SexpStr); ok && strings.HasPrefix(str.S, kwPrefix) {
			name := str.S[len(kwPrefix):]
			if i+1 < len(args) {
				out.kw[name] = args[i+1]
				i += 2
			} else {
				out.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		out.positional = append(out.positional, args[i])
		i++
	}
	return out
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toAny converts a scalar Sexp into a JSON-shaped Go value for property bags
// and parameter overrides.
func toAny(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpStr:
		return v.S, nil
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected string, number, or bool, got %T (%s)", s, s.SexpString(nil))
}

func toRef(s zygo.Sexp, want refKind) (*sexpRef, error) {
	ref, ok := s.(*sexpRef)
	if !ok {
		return nil, fmt.Errorf("expected %s reference, got %T (%s)", want, s, s.SexpString(nil))
	}
	if ref.kind != want {
		return nil, fmt.Errorf("expected %s reference, got %s reference", want, ref.kind)
	}
	return ref, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the Cirrus DSL into a zygomys environment. Every
// builtin checks the cancellation flag first, so a timed-out run stops
// mutating the session as soon as its next form executes.
func (e *Engine) registerBuiltins(env *zygo.Zlisp, cancelled *atomic.Bool) {
	guard := func(name string) error {
		if cancelled.Load() {
			return fmt.Errorf("%s: script run cancelled", name)
		}
		return nil
	}

	// -----------------------------------------------------------------------
	// (resource "type-id" x y :label "edge-vcn" :compartment net)
	// -----------------------------------------------------------------------
	env.AddFunction("resource", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		if len(pa.positional) < 3 {
			return zygo.SexpNull, fmt.Errorf("resource requires a type id, x, and y")
		}
		typeID, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resource: type: %w", err)
		}
		x, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resource: x: %w", err)
		}
		y, err := toFloat64(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("resource: y: %w", err)
		}

		id, ok := e.session.AddNode(typeID, topology.Position{X: x, Y: y})
		if !ok {
			return zygo.SexpNull, fmt.Errorf("resource: session rejected node of type %q", typeID)
		}

		label := ""
		if v, has := pa.kw["label"]; has {
			label, err = toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("resource: label: %w", err)
			}
			e.session.SetNodeLabel(id, label)
		}
		if v, has := pa.kw["compartment"]; has {
			ref, err := toRef(v, refCompartment)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("resource: compartment: %w", err)
			}
			if !e.session.SetNodeCompartment(id, ref.id) {
				return zygo.SexpNull, fmt.Errorf("resource: unknown compartment %s", ref.id)
			}
		}
		return &sexpRef{kind: refNode, id: id, label: label}, nil
	})

	// -----------------------------------------------------------------------
	// (connect source target "kind-id")
	// Consults the rule engine before materializing, unlike direct session
	// calls, because scripts are authored blind.
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) < 3 {
			return zygo.SexpNull, fmt.Errorf("connect requires a source, a target, and a kind id")
		}
		src, err := toRef(args[0], refNode)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: source: %w", err)
		}
		tgt, err := toRef(args[1], refNode)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: target: %w", err)
		}
		kindID, err := toString(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: kind: %w", err)
		}

		res := rules.Check(e.resolveNodeType(src.id), e.resolveNodeType(tgt.id), e.kinds)
		if !res.Allowed {
			return zygo.SexpNull, fmt.Errorf("connect: %s", res.Message)
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
			return zygo.SexpNull, fmt.Errorf("connect: kind %q is not permitted between these types", kindID)
		}

		id, ok := e.session.AddConnection(src.id, tgt.id, kindID)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("connect: endpoints are not live on the canvas")
		}
		return &sexpRef{kind: refConnection, id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (compartment "network" :parent root)
	// -----------------------------------------------------------------------
	env.AddFunction("compartment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("compartment requires a name")
		}
		cname, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compartment: name: %w", err)
		}
		parentID := ""
		if v, has := pa.kw["parent"]; has {
			ref, err := toRef(v, refCompartment)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compartment: parent: %w", err)
			}
			parentID = ref.id
		}
		id, ok := e.session.AddCompartment(cname, parentID)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("compartment: session rejected %q", cname)
		}
		return &sexpRef{kind: refCompartment, id: id, label: cname}, nil
	})

	// -----------------------------------------------------------------------
	// (stack "blueprint-id" x y :label "audit" :compartment sec)
	// -----------------------------------------------------------------------
	env.AddFunction("stack", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		if len(pa.positional) < 3 {
			return zygo.SexpNull, fmt.Errorf("stack requires a blueprint id, x, and y")
		}
		blueprintID, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stack: blueprint: %w", err)
		}
		x, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stack: x: %w", err)
		}
		y, err := toFloat64(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("stack: y: %w", err)
		}

		st := topology.StackInstance{
			Label:       blueprintID,
			Position:    topology.Position{X: x, Y: y},
			BlueprintID: blueprintID,
		}
		if v, has := pa.kw["label"]; has {
			st.Label, err = toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stack: label: %w", err)
			}
		}
		if v, has := pa.kw["compartment"]; has {
			ref, err := toRef(v, refCompartment)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stack: compartment: %w", err)
			}
			st.CompartmentID = ref.id
		}

		id, ok := e.session.AddStack(st)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("stack: session rejected blueprint %q", blueprintID)
		}
		return &sexpRef{kind: refStack, id: id, label: st.Label}, nil
	})

	// -----------------------------------------------------------------------
	// (depends-on stack dep1 dep2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("depends_on", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("depends-on requires a stack and at least one dependency")
		}
		ref, err := toRef(args[0], refStack)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("depends-on: %w", err)
		}
		st, ok := e.session.Stack(ref.id)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("depends-on: unknown stack %s", ref.id)
		}
		for _, arg := range args[1:] {
			dep, err := toRef(arg, refStack)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("depends-on: %w", err)
			}
			st.DependsOn = append(st.DependsOn, dep.id)
		}
		if !e.session.UpdateStack(st) {
			return zygo.SexpNull, fmt.Errorf("depends-on: dependency list rejected (unknown stack or cycle)")
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (param stack "name" value)          explicit override
	// (tag-param stack "name" "tag-key")  tag-resolved override
	// -----------------------------------------------------------------------
	env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) < 3 {
			return zygo.SexpNull, fmt.Errorf("param requires a stack, a parameter name, and a value")
		}
		value, err := toAny(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: value: %w", err)
		}
		return e.setStackParam(args[0], args[1], topology.Explicit(value))
	})

	env.AddFunction("tag_param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) < 3 {
			return zygo.SexpNull, fmt.Errorf("tag-param requires a stack, a parameter name, and a tag key")
		}
		key, err := toString(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tag-param: key: %w", err)
		}
		return e.setStackParam(args[0], args[1], topology.TagRef(key))
	})

	// -----------------------------------------------------------------------
	// (label ref "text") / (set-prop node "key" value)
	// -----------------------------------------------------------------------
	env.AddFunction("label", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("label requires a node or stack and a label")
		}
		ref, ok := args[0].(*sexpRef)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("label: expected node or stack reference, got %T", args[0])
		}
		text, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("label: %w", err)
		}
		switch ref.kind {
		case refNode:
			if !e.session.SetNodeLabel(ref.id, text) {
				return zygo.SexpNull, fmt.Errorf("label: unknown node %s", ref.id)
			}
		case refStack:
			st, ok := e.session.Stack(ref.id)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("label: unknown stack %s", ref.id)
			}
			st.Label = text
			if !e.session.UpdateStack(st) {
				return zygo.SexpNull, fmt.Errorf("label: stack update rejected")
			}
		default:
			return zygo.SexpNull, fmt.Errorf("label: cannot label a %s", ref.kind)
		}
		ref.label = text
		return args[0], nil
	})

	env.AddFunction("set_prop", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := guard(name); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) < 3 {
			return zygo.SexpNull, fmt.Errorf("set-prop requires a node, a key, and a value")
		}
		ref, err := toRef(args[0], refNode)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-prop: %w", err)
		}
		key, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-prop: key: %w", err)
		}
		value, err := toAny(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-prop: value: %w", err)
		}
		if !e.session.SetNodeProperty(ref.id, key, value) {
			return zygo.SexpNull, fmt.Errorf("set-prop: unknown node %s", ref.id)
		}
		return args[0], nil
	})
}

// setStackParam applies one parameter override to a stack instance.
func (e *Engine) setStackParam(stackArg, nameArg zygo.Sexp, ov topology.ParameterOverride) (zygo.Sexp, error) {
	ref, err := toRef(stackArg, refStack)
	if err != nil {
		return zygo.SexpNull, err
	}
	paramName, err := toString(nameArg)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("parameter name: %w", err)
	}
	st, ok := e.session.Stack(ref.id)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("unknown stack %s", ref.id)
	}
	if st.Parameters == nil {
		st.Parameters = make(map[string]topology.ParameterOverride)
	}
	st.Parameters[paramName] = ov
	if !e.session.UpdateStack(st) {
		return zygo.SexpNull, fmt.Errorf("stack update rejected")
	}
	return stackArg, nil
}

// resolveNodeType looks a node's semantic type up in the catalog, or nil
// when either the node or the type is unknown.
func (e *Engine) resolveNodeType(nodeID string) *catalog.ResourceType {
	typeID, ok := e.session.NodeType(nodeID)
	if !ok {
		return nil
	}
	t, ok := e.types.TypeByID(typeID)
	if !ok {
		return nil
	}
	return &t
}
